package config

import (
	"errors"
	"fmt"
	"os"

	"occupancy/internal/models"

	"gopkg.in/yaml.v2"
)

// LoadRooms reads a rooms file. A missing file is not an error: the rooms
// from the main config are used instead.
func LoadRooms(path string, fallback []models.Room) ([]models.Room, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := ValidateRooms(fallback); err != nil {
			return nil, err
		}
		return fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}

	var roomsConfig struct {
		Rooms []models.Room `yaml:"rooms"`
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &roomsConfig); err != nil {
		return nil, fmt.Errorf("parse rooms: %w", err)
	}
	if err := ValidateRooms(roomsConfig.Rooms); err != nil {
		return nil, fmt.Errorf("rooms file %s: %w", path, err)
	}
	return roomsConfig.Rooms, nil
}
