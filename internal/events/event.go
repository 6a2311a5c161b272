package events

import (
	"errors"
	"time"
)

// ErrInvalidEvent is returned when a new event fails validation
var ErrInvalidEvent = errors.New("invalid event")

// Event is a user-defined marker on the year timeline.
// The core only reads events; ids are opaque and not checked for uniqueness.
type Event struct {
	ID    string    `json:"id" yaml:"id"`
	Name  string    `json:"name" yaml:"name"`
	Date  time.Time `json:"date" yaml:"date"`
	Color string    `json:"color" yaml:"color"`
}

// NewEvent is the input for creating an event
type NewEvent struct {
	ID    string    `json:"id,omitempty"`
	Name  string    `json:"name" validate:"required"`
	Date  time.Time `json:"date" validate:"required"`
	Color string    `json:"color" validate:"omitempty,hexcolor"`
}

// PresetColors is the palette offered when creating events
var PresetColors = []string{
	"#ef4444", // red
	"#f97316", // orange
	"#f59e0b", // amber
	"#10b981", // emerald
	"#06b6d4", // cyan
	"#3b82f6", // blue
	"#8b5cf6", // violet
	"#ec4899", // pink
}

// DefaultColor is used when a new event has no color
var DefaultColor = PresetColors[0]

var wib = time.FixedZone("WIB", 7*60*60)

// DefaultEvents returns the seed list used when nothing has been saved yet
func DefaultEvents() []Event {
	return []Event{
		{ID: "1", Name: "Ramadan", Date: time.Date(2026, time.February, 20, 0, 0, 0, 0, wib), Color: "#10b981"},
		{ID: "2", Name: "Idul Fitri", Date: time.Date(2026, time.March, 21, 0, 0, 0, 0, wib), Color: "#f59e0b"},
	}
}
