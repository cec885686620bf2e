package config

import (
	"os"
	"path/filepath"
	"testing"

	"occupancy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRooms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	content := `
rooms:
  - name: "Loft"
    ids: ["1001", "loft-airbnb"]
    sort_order: 1
    color: "#ff0000"
  - name: "Attic"
    sort_order: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rooms, err := LoadRooms(path, nil)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Loft", rooms[0].Name)
	assert.Equal(t, []string{"1001", "loft-airbnb"}, rooms[0].IDs)
	assert.Equal(t, 2, rooms[1].SortOrder)
}

func TestLoadRooms_MissingFileUsesFallback(t *testing.T) {
	fallback := []models.Room{{Name: "Loft"}}

	rooms, err := LoadRooms(filepath.Join(t.TempDir(), "absent.yaml"), fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, rooms)

	_, err = LoadRooms(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadRooms_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	content := `
rooms:
  - name: "Loft"
  - name: "LOFT"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadRooms(path, nil)
	assert.ErrorContains(t, err, "duplicate room name")
}
