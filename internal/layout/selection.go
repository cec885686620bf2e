package layout

import "occupancy/internal/models"

// ReconcileSelection keeps selectedID only while some room still shows a bar
// for it. It returns the surviving id and whether a selection was dropped.
func ReconcileSelection(selectedID string, layouts map[string]models.RoomLayout) (string, bool) {
	if selectedID == "" {
		return "", false
	}
	for _, rl := range layouts {
		if rl.HasBooking(selectedID) {
			return selectedID, false
		}
	}
	return "", true
}
