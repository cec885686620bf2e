package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// Room is a configured logical room. IDs lists the upstream property,
// listing or unit identifiers that belong to it.
type Room struct {
	Name      string   `yaml:"name" json:"name" validate:"required"`
	IDs       []string `yaml:"ids" json:"ids,omitempty"`
	SortOrder int      `yaml:"sort_order" json:"sort_order"`
	Color     string   `yaml:"color" json:"color,omitempty"`
}

// RoomKey is the case-folded form used to compare room names and ids.
func RoomKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Matches reports whether value names this room or one of its upstream ids.
func (r Room) Matches(value string) bool {
	key := RoomKey(value)
	if key == "" {
		return false
	}
	if RoomKey(r.Name) == key {
		return true
	}
	for _, id := range r.IDs {
		if RoomKey(id) == key {
			return true
		}
	}
	return false
}
