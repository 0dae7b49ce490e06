package service

import (
	"hyrra/pkg/model"
)

// ConflictResult is the verdict of the no-overlap check.
type ConflictResult struct {
	Clear bool
	// ConflictingID is the id of the first existing booking the candidate
	// collides with, ordered by start date.
	ConflictingID string
}

// CheckConflict decides whether the candidate interval may coexist with the
// existing bookings. Two intervals [a,b) and [c,d) conflict iff a < d && c < b;
// touching endpoints never conflict. Every category occupies the property, so
// every existing booking participates.
func CheckConflict(candidate *model.Booking, existing []*model.Booking) ConflictResult {
	for _, b := range existing {
		if b.ID == candidate.ID {
			continue
		}
		if b.Overlaps(candidate.Start, candidate.End) {
			return ConflictResult{Clear: false, ConflictingID: b.ID}
		}
	}
	return ConflictResult{Clear: true}
}
