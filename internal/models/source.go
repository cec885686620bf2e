package models

import "time"

// Query asks a booking source for stays touching [From, To].
type Query struct {
	From time.Time
	To   time.Time
	// Room narrows the fetch to one configured room; empty means all rooms.
	Room string
}

// Batch is what one fetch returned, before normalization.
type Batch struct {
	Records []RawRecord
	// Room is set when the fetch was scoped to a single room, so records that
	// carry no room reference still resolve.
	Room string
	// Source is the provider's default source label.
	Source string
}
