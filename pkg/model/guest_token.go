package model

import "time"

// GuestToken is an opaque, time-boxed credential derived once from a committed
// booking's interval. The window is never recomputed after issue; committed
// booking intervals are stable, so the snapshot stays valid.
type GuestToken struct {
	Token      string    `json:"token" bson:"_id"`
	BookingID  string    `json:"booking_id" bson:"booking_id"`
	PropertyID string    `json:"property_id" bson:"property_id"`
	ValidFrom  time.Time `json:"valid_from" bson:"valid_from"`
	ValidUntil time.Time `json:"valid_until" bson:"valid_until"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Active reports whether the token may be used at the given instant.
func (t *GuestToken) Active(now time.Time) bool {
	return !now.Before(t.ValidFrom) && now.Before(t.ValidUntil)
}
