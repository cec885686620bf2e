package layout

import (
	"testing"

	"occupancy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSelection(t *testing.T) {
	e := NewEngine(Options{})
	rl, err := e.Layout([]models.Booking{
		stay(t, "a", "2024-01-02", "2024-01-05"),
		stay(t, "late", "2024-02-02", "2024-02-05"),
	}, january(), 10)
	require.NoError(t, err)
	layouts := map[string]models.RoomLayout{"Loft": rl}

	id, cleared := ReconcileSelection("a", layouts)
	assert.Equal(t, "a", id)
	assert.False(t, cleared)

	id, cleared = ReconcileSelection("late", layouts)
	assert.Empty(t, id)
	assert.True(t, cleared)

	id, cleared = ReconcileSelection("", layouts)
	assert.Empty(t, id)
	assert.False(t, cleared, "nothing was selected")
}
