package model

import (
	"time"
)

type Category string

const (
	CategoryPersonal    Category = "personal"
	CategoryGuest       Category = "guest"
	CategoryRental      Category = "rental"
	CategoryMaintenance Category = "maintenance"
)

// Booking is a committed stay on a property. Start/End form a half-open
// interval [Start, End) of UTC midnight-aligned calendar dates. A booking is
// never updated in place; date or ownership changes are delete + recreate.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	PropertyID  string    `json:"property_id" bson:"property_id" validate:"required,uuid4"`
	RequesterID string    `json:"requester_id" bson:"requester_id" validate:"required,uuid4"`
	Start       time.Time `json:"start" bson:"start" validate:"required,utc_midnight"`
	End         time.Time `json:"end" bson:"end" validate:"required,gtfield=Start,utc_midnight"`
	Category    Category  `json:"category" bson:"category" validate:"required,oneof=personal guest rental maintenance"`
	Note        string    `json:"note,omitempty" bson:"note,omitempty" validate:"max=500"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Overlaps reports whether the booking's interval intersects [start, end)
// under half-open semantics. Touching endpoints do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}
