// Package export renders a laid-out calendar as a spreadsheet or an SVG.
package export

import (
	"occupancy/internal/models"
)

var sourceColors = map[string]string{
	models.SourceAirbnb:     "#FF5A5F",
	models.SourceBookingCom: "#2F6FB5",
	models.SourceVrbo:       "#3D67FF",
	models.SourceExpedia:    "#F2B705",
	models.SourceGoogle:     "#34A853",
	models.SourceDirect:     "#6B7280",
}

const otherSourceColor = "#9CA3AF"

// SourceColor is the bar fill used for a booking source.
func SourceColor(source string) string {
	if c, ok := sourceColors[source]; ok {
		return c
	}
	return otherSourceColor
}

func barLabel(b models.Booking) string {
	return b.GuestName + " (" + b.Source + ")"
}
