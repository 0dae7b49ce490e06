package holiday

import (
	"sort"
	"time"

	"hyrra/pkg/model"
)

// Rule produces the dated period a named holiday occupies in a given year.
// Span returns a half-open [start, end) of UTC midnights. A rule may reach
// into the following January (the turn-of-year period belongs to the year it
// starts in).
type Rule struct {
	Name       string
	Importance model.Importance
	Span       func(year int) (start, end time.Time)
}

// Calendar derives holiday periods from a fixed rule table. It is pure and
// deterministic: the same year always yields the same periods.
type Calendar struct {
	rules []Rule
}

// NewCalendar returns a calendar with the default holiday table: the scarce
// periods co-owners actually fight over, fixed and movable.
func NewCalendar() *Calendar {
	return NewCalendarWithRules(DefaultRules())
}

// NewCalendarWithRules returns a calendar over a custom holiday table.
func NewCalendarWithRules(rules []Rule) *Calendar {
	return &Calendar{rules: rules}
}

// DefaultRules is the built-in holiday table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "midwinter",
			Importance: model.ImportanceHigh,
			Span: func(year int) (time.Time, time.Time) {
				return date(year, time.December, 23), date(year, time.December, 27)
			},
		},
		{
			Name:       "new-year",
			Importance: model.ImportanceHigh,
			Span: func(year int) (time.Time, time.Time) {
				return date(year, time.December, 30), date(year+1, time.January, 2)
			},
		},
		{
			// Maundy Thursday through Easter Monday, anchored on the
			// computed Easter Sunday.
			Name:       "spring-holiday",
			Importance: model.ImportanceHigh,
			Span: func(year int) (time.Time, time.Time) {
				easter := EasterSunday(year)
				return easter.AddDate(0, 0, -3), easter.AddDate(0, 0, 2)
			},
		},
		{
			// The long weekend around the first Monday of August,
			// Saturday through Monday.
			Name:       "commerce-weekend",
			Importance: model.ImportanceHigh,
			Span: func(year int) (time.Time, time.Time) {
				monday := firstWeekdayOnOrAfter(date(year, time.August, 1), time.Monday)
				return monday.AddDate(0, 0, -2), monday.AddDate(0, 0, 1)
			},
		},
		{
			// First day of summer: the first Thursday after April 18.
			Name:       "summer-opening",
			Importance: model.ImportanceLow,
			Span: func(year int) (time.Time, time.Time) {
				thursday := firstWeekdayOnOrAfter(date(year, time.April, 19), time.Thursday)
				return thursday, thursday.AddDate(0, 0, 1)
			},
		},
	}
}

// PeriodsForYear returns every holiday period attributed to the given year,
// ordered by start date.
func (c *Calendar) PeriodsForYear(year int) []model.HolidayPeriod {
	periods := make([]model.HolidayPeriod, 0, len(c.rules))
	for _, rule := range c.rules {
		start, end := rule.Span(year)
		periods = append(periods, model.HolidayPeriod{
			Name:       rule.Name,
			Year:       year,
			Start:      start,
			End:        end,
			Importance: rule.Importance,
		})
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})
	return periods
}

// Classify returns the holiday period containing the given date, or nil.
func (c *Calendar) Classify(d time.Time) *model.HolidayPeriod {
	for _, p := range c.candidatePeriods(d, d.AddDate(0, 0, 1)) {
		if p.Contains(d) {
			return &p
		}
	}
	return nil
}

// OverlappingHolidays returns every holiday period intersecting [start, end),
// ordered by importance (high first), then start date, then name. An interval
// spanning several periods yields all of them.
func (c *Calendar) OverlappingHolidays(start, end time.Time) []model.HolidayPeriod {
	var overlapping []model.HolidayPeriod
	for _, p := range c.candidatePeriods(start, end) {
		if p.Overlaps(start, end) {
			overlapping = append(overlapping, p)
		}
	}
	return overlapping
}

// OverlapsMajorHoliday returns the first holiday period intersecting
// [start, end) under the deterministic ordering, or nil when the interval
// touches no holiday.
func (c *Calendar) OverlapsMajorHoliday(start, end time.Time) *model.HolidayPeriod {
	overlapping := c.OverlappingHolidays(start, end)
	if len(overlapping) == 0 {
		return nil
	}
	return &overlapping[0]
}

// candidatePeriods collects the periods of every year that could intersect
// [start, end). The previous year is included because the turn-of-year period
// attributed to year Y extends into January of Y+1.
func (c *Calendar) candidatePeriods(start, end time.Time) []model.HolidayPeriod {
	var periods []model.HolidayPeriod
	for year := start.Year() - 1; year <= end.Year(); year++ {
		periods = append(periods, c.PeriodsForYear(year)...)
	}
	sort.Slice(periods, func(i, j int) bool {
		pi, pj := periods[i], periods[j]
		if pi.Importance != pj.Importance {
			return pi.Importance == model.ImportanceHigh
		}
		if !pi.Start.Equal(pj.Start) {
			return pi.Start.Before(pj.Start)
		}
		return pi.Name < pj.Name
	})
	return periods
}

// EasterSunday calculates Easter Sunday using the Meeus/Jones/Butcher
// algorithm. The result is a UTC midnight.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return date(year, time.Month(month), day)
}

func firstWeekdayOnOrAfter(from time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
