package normalize

import (
	"occupancy/internal/models"
)

// roomFields are checked in order for a value naming a configured room.
var roomFields = []string{
	"room", "roomname", "roomid",
	"listingname", "listingid", "listingmapid", "listing",
	"propertyid", "propertyname", "property",
	"unitid", "unitname",
}

// RoomResolver maps upstream room references to configured room names.
type RoomResolver struct {
	rooms []models.Room
}

func NewRoomResolver(rooms []models.Room) *RoomResolver {
	return &RoomResolver{rooms: rooms}
}

// Resolve returns the configured name of the first room matched by value.
func (r *RoomResolver) Resolve(value string) (string, bool) {
	for _, room := range r.rooms {
		if room.Matches(value) {
			return room.Name, true
		}
	}
	return "", false
}

func (r *RoomResolver) resolveRecord(f fields, hint string) (string, bool) {
	for _, key := range roomFields {
		if name, ok := r.Resolve(stringify(f[key])); ok {
			return name, true
		}
	}
	if hint != "" {
		return r.Resolve(hint)
	}
	return "", false
}
