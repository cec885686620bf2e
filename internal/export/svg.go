package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"occupancy/internal/calendar"
	"occupancy/internal/models"
)

type SVGOptions struct {
	LaneHeightPx int
	LabelWidthPx int
	HeaderPx     int
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.LaneHeightPx <= 0 {
		o.LaneHeightPx = models.DefaultLaneHeightPx
	}
	if o.LabelWidthPx <= 0 {
		o.LabelWidthPx = 140
	}
	if o.HeaderPx <= 0 {
		o.HeaderPx = 24
	}
	return o
}

// RenderSVG draws the snapshot with the geometry the layout engine computed:
// bar x and width come from LeftPx and WidthPx, y from the row offset plus
// TopPx.
func RenderSVG(w io.Writer, snap *calendar.Snapshot, opts SVGOptions) error {
	opts = opts.withDefaults()
	rows := snap.Rows()
	days := snap.Window.Days()
	dayWidth := snap.DayWidthPx

	height := opts.HeaderPx
	for _, rl := range rows {
		height += rl.HeightPx
	}
	width := opts.LabelWidthPx + days*dayWidth

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="11">`+"\n",
		width, height, width, height)
	fmt.Fprintf(bw, `<rect width="%d" height="%d" fill="#ffffff"/>`+"\n", width, height)

	// day headers and grid lines
	if dayWidth > 0 {
		for d := 0; d < days; d++ {
			x := opts.LabelWidthPx + d*dayWidth
			day := snap.Window.Start.AddDate(0, 0, d)
			fmt.Fprintf(bw, `<line x1="%d" y1="0" x2="%d" y2="%d" stroke="#e5e7eb"/>`+"\n", x, x, height)
			fmt.Fprintf(bw, `<text x="%d" y="%d" text-anchor="middle">%d</text>`+"\n",
				x+dayWidth/2, opts.HeaderPx-8, day.Day())
		}
	}

	y := opts.HeaderPx
	for _, rl := range rows {
		fmt.Fprintf(bw, `<g class="room" data-room="%s">`+"\n", attr(rl.Room))
		fmt.Fprintf(bw, `<line x1="0" y1="%d" x2="%d" y2="%d" stroke="#d1d5db"/>`+"\n", y, width, y)
		fmt.Fprintf(bw, `<text x="6" y="%d" font-weight="bold">%s</text>`+"\n", y+opts.LaneHeightPx/2+4, html.EscapeString(rl.Room))

		for _, bar := range rl.Bars {
			writeBar(bw, bar, opts, y, bar.Booking.ID == snap.View.SelectedBookingID)
		}
		fmt.Fprintln(bw, `</g>`)
		y += rl.HeightPx
	}

	fmt.Fprintln(bw, `</svg>`)
	return bw.Flush()
}

func writeBar(w io.Writer, bar models.Bar, opts SVGOptions, rowTop int, selected bool) {
	classes := []string{"bar"}
	if bar.ClippedStart {
		classes = append(classes, "clipped-start")
	}
	if bar.ClippedEnd {
		classes = append(classes, "clipped-end")
	}
	stroke := ""
	if selected {
		classes = append(classes, "selected")
		stroke = ` stroke="#111827" stroke-width="2"`
	}

	x := opts.LabelWidthPx + bar.LeftPx
	top := rowTop + bar.TopPx + 2
	h := max(opts.LaneHeightPx-4, 1)

	fmt.Fprintf(w, `<g class="%s" data-booking-id="%s" data-lane="%d">`, strings.Join(classes, " "), attr(bar.Booking.ID), bar.Lane)
	fmt.Fprintf(w, `<title>%s</title>`, html.EscapeString(barTitle(bar.Booking)))
	fmt.Fprintf(w, `<rect x="%d" y="%d" width="%d" height="%d" rx="3" fill="%s"%s/>`,
		x, top, bar.WidthPx, h, SourceColor(bar.Booking.Source), stroke)
	if bar.WidthPx > 0 {
		fmt.Fprintf(w, `<text x="%d" y="%d" fill="#ffffff">%s</text>`,
			x+4, top+h/2+4, html.EscapeString(bar.Booking.GuestName))
	}
	fmt.Fprintln(w, `</g>`)
}

func barTitle(b models.Booking) string {
	var sb strings.Builder
	sb.WriteString(barLabel(b))
	if b.StartDate != nil && b.EndDate != nil {
		fmt.Fprintf(&sb, ": %s to %s", b.StartDate.Format(models.DateLayout), b.EndDate.Format(models.DateLayout))
	}
	return sb.String()
}

func attr(s string) string {
	return html.EscapeString(s)
}
