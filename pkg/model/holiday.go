package model

import "time"

type Importance string

const (
	ImportanceHigh Importance = "high"
	ImportanceLow  Importance = "low"
)

// HolidayPeriod is a named, year-specific date range [Start, End) derived by
// the holiday calendar. It is never persisted; the name is the identity that
// survives a period shifting dates from one year to the next.
type HolidayPeriod struct {
	Name       string     `json:"name"`
	Year       int        `json:"year"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Importance Importance `json:"importance"`
}

// Overlaps reports whether the period intersects [start, end) under the same
// half-open semantics bookings use.
func (h *HolidayPeriod) Overlaps(start, end time.Time) bool {
	return h.Start.Before(end) && start.Before(h.End)
}

// Contains reports whether date falls inside the period.
func (h *HolidayPeriod) Contains(date time.Time) bool {
	return !date.Before(h.Start) && date.Before(h.End)
}
