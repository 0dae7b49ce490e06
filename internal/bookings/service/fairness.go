package service

import (
	"context"
	"fmt"
	"time"

	"hyrra/internal/bookings/repository"
	"hyrra/pkg/logger"
	"hyrra/pkg/model"
)

// HolidayCalendar is the slice of the holiday calendar the fairness check
// needs: which named periods an interval touches.
type HolidayCalendar interface {
	OverlappingHolidays(start, end time.Time) []model.HolidayPeriod
}

// FairnessResult is the verdict of the turn-taking check for scarce holiday
// periods.
type FairnessResult struct {
	Allowed bool
	// HolidayName and PriorYear identify the period the requester already
	// held, set only when Allowed is false.
	HolidayName string
	PriorYear   int
}

// FairnessEvaluator enforces the once-every-two-years rule: a requester who
// held a named holiday period last year may not claim the same-named period
// this year. The rule is stateless beyond the booking history itself, so any
// observer can recompute a verdict from the booking log.
type FairnessEvaluator struct {
	calendar HolidayCalendar
	repo     repository.BookingRepository
	log      *logger.Logger
}

func NewFairnessEvaluator(calendar HolidayCalendar, repo repository.BookingRepository, log *logger.Logger) *FairnessEvaluator {
	return &FairnessEvaluator{
		calendar: calendar,
		repo:     repo,
		log:      log,
	}
}

// Evaluate runs the lookback for a candidate booking under the given policy.
// Fairness only gates holiday-overlapping candidates; anything else is
// allowed immediately. A candidate spanning several holiday periods is
// checked against each and denied if any one denies.
func (e *FairnessEvaluator) Evaluate(ctx context.Context, candidate *model.Booking, policy model.FairnessPolicy) (FairnessResult, error) {
	if policy.Mode != model.PolicyFairness {
		return FairnessResult{Allowed: true}, nil
	}

	// Maintenance bypasses only when the policy says so explicitly; the
	// category alone never exempts.
	if policy.MaintenanceExempt && candidate.Category == model.CategoryMaintenance {
		return FairnessResult{Allowed: true}, nil
	}

	holidays := e.calendar.OverlappingHolidays(candidate.Start, candidate.End)
	if len(holidays) == 0 {
		return FairnessResult{Allowed: true}, nil
	}

	// Prior-year bookings are fetched once per distinct lookback year; a
	// candidate over the turn of the year can touch periods of two years.
	priorBookings := map[int][]*model.Booking{}

	for _, h := range holidays {
		priorYear := h.Year - 1

		bookings, ok := priorBookings[priorYear]
		if !ok {
			var err error
			bookings, err = e.repo.FindByRequesterInYear(ctx, candidate.PropertyID, candidate.RequesterID, priorYear)
			if err != nil {
				return FairnessResult{}, fmt.Errorf("fairness lookback for %d failed: %w", priorYear, err)
			}
			priorBookings[priorYear] = bookings
		}

		if prior := e.heldHoliday(bookings, h.Name, priorYear); prior != nil {
			e.log.Info("Fairness check denied holiday claim",
				"property_id", candidate.PropertyID,
				"requester_id", candidate.RequesterID,
				"holiday", h.Name,
				"prior_year", priorYear,
				"prior_booking_id", prior.ID,
			)
			return FairnessResult{
				Allowed:     false,
				HolidayName: h.Name,
				PriorYear:   priorYear,
			}, nil
		}
	}

	return FairnessResult{Allowed: true}, nil
}

// heldHoliday returns the first prior booking overlapping the holiday with
// the given name in the given year. Name equality is the identity key: a
// movable holiday shifts dates year to year but keeps its name.
func (e *FairnessEvaluator) heldHoliday(bookings []*model.Booking, name string, year int) *model.Booking {
	for _, b := range bookings {
		for _, h := range e.calendar.OverlappingHolidays(b.Start, b.End) {
			if h.Name == name && h.Year == year {
				return b
			}
		}
	}
	return nil
}
