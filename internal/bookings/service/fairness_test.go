package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hyrra/internal/holiday"
	"hyrra/pkg/model"
)

const (
	testPropertyID  = "7f2c8a60-8a7e-4f4e-9d3a-1f2e3d4c5b6a"
	testRequesterID = "0b1d2e3f-4a5b-4c6d-8e9f-a0b1c2d3e4f5"
)

func fairnessPolicy() model.FairnessPolicy {
	return model.FairnessPolicy{Mode: model.PolicyFairness}
}

func candidateBooking(start, end time.Time) *model.Booking {
	return &model.Booking{
		PropertyID:  testPropertyID,
		RequesterID: testRequesterID,
		Start:       start,
		End:         end,
		Category:    model.CategoryPersonal,
	}
}

func newEvaluator(repo *mockBookingRepo) *FairnessEvaluator {
	return NewFairnessEvaluator(holiday.NewCalendar(), repo, testLogger())
}

// historyRepo serves a fixed booking history for any requested year.
func historyRepo(t *testing.T, history []*model.Booking) *mockBookingRepo {
	t.Helper()
	return &mockBookingRepo{
		findByRequesterInYearFn: func(_ context.Context, propertyID, requesterID string, year int) ([]*model.Booking, error) {
			if propertyID != testPropertyID || requesterID != testRequesterID {
				t.Errorf("lookback scoped to %s/%s, want %s/%s", propertyID, requesterID, testPropertyID, testRequesterID)
			}
			var out []*model.Booking
			for _, b := range history {
				if b.Start.Year() == year {
					out = append(out, b)
				}
			}
			return out, nil
		},
	}
}

func TestEvaluate_FirstComeModeSkipsLookback(t *testing.T) {
	repo := &mockBookingRepo{
		findByRequesterInYearFn: func(context.Context, string, string, int) ([]*model.Booking, error) {
			t.Fatal("first-come mode must not query booking history")
			return nil, nil
		},
	}
	e := newEvaluator(repo)

	// Midwinter dates, but the policy is first-come.
	result, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.December, 24), date(2025, time.December, 26)), model.FairnessPolicy{Mode: model.PolicyFirstCome})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Fatal("first-come mode must allow any conflict-free dates")
	}
}

func TestEvaluate_NonHolidayDatesAllowed(t *testing.T) {
	repo := &mockBookingRepo{
		findByRequesterInYearFn: func(context.Context, string, string, int) ([]*model.Booking, error) {
			t.Fatal("non-holiday dates must not query booking history")
			return nil, nil
		},
	}
	e := newEvaluator(repo)

	result, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.October, 6), date(2025, time.October, 10)), fairnessPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Fatal("fairness only gates holiday-overlapping candidates")
	}
}

func TestEvaluate_DeniesRepeatMidwinter(t *testing.T) {
	held := candidateBooking(date(2024, time.December, 24), date(2024, time.December, 26))
	held.ID = "prior"
	e := newEvaluator(historyRepo(t, []*model.Booking{held}))

	result, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.December, 23), date(2025, time.December, 27)), fairnessPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Fatal("requester held midwinter 2024, midwinter 2025 must be denied")
	}
	if result.HolidayName != "midwinter" || result.PriorYear != 2024 {
		t.Errorf("verdict = %s/%d, want midwinter/2024", result.HolidayName, result.PriorYear)
	}
}

func TestEvaluate_AllowsAfterSkippedYear(t *testing.T) {
	held := candidateBooking(date(2023, time.December, 24), date(2023, time.December, 26))
	e := newEvaluator(historyRepo(t, []*model.Booking{held}))

	result, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.December, 24), date(2025, time.December, 26)), fairnessPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Fatal("the lookback is one year only; a 2023 midwinter must not block 2025")
	}
}

// Name identity follows the holiday, not its dates. Easter fell on March 31
// in 2024 and April 20 in 2025; holding one blocks the other.
func TestEvaluate_MovableHolidayMatchedByName(t *testing.T) {
	held := candidateBooking(date(2024, time.March, 28), date(2024, time.April, 2))
	e := newEvaluator(historyRepo(t, []*model.Booking{held}))

	result, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.April, 17), date(2025, time.April, 22)), fairnessPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Fatal("spring-holiday 2024 must block spring-holiday 2025 despite different dates")
	}
	if result.HolidayName != "spring-holiday" {
		t.Errorf("holiday = %q, want spring-holiday", result.HolidayName)
	}
}

func TestEvaluate_DifferentHolidayAllowed(t *testing.T) {
	held := candidateBooking(date(2024, time.December, 24), date(2024, time.December, 26))
	e := newEvaluator(historyRepo(t, []*model.Booking{held}))

	// Held midwinter last year, wants the commerce weekend this year.
	result, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.August, 2), date(2025, time.August, 5)), fairnessPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Fatal("holding one named period must not block a different one")
	}
}

// A candidate spanning midwinter and new-year is denied if either period was
// held the year before.
func TestEvaluate_MultiHolidaySpanDeniedByAnyPeriod(t *testing.T) {
	held := candidateBooking(date(2024, time.December, 30), date(2025, time.January, 2))
	e := newEvaluator(historyRepo(t, []*model.Booking{held}))

	result, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.December, 24), date(2026, time.January, 1)), fairnessPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Fatal("span touching new-year must be denied when new-year was held last year")
	}
	if result.HolidayName != "new-year" || result.PriorYear != 2024 {
		t.Errorf("verdict = %s/%d, want new-year/2024", result.HolidayName, result.PriorYear)
	}
}

func TestEvaluate_MaintenanceExemption(t *testing.T) {
	held := candidateBooking(date(2024, time.December, 24), date(2024, time.December, 26))

	maintenance := candidateBooking(date(2025, time.December, 23), date(2025, time.December, 27))
	maintenance.Category = model.CategoryMaintenance

	e := newEvaluator(historyRepo(t, []*model.Booking{held}))

	// Without the exemption flag maintenance is held to the same rule.
	result, err := e.Evaluate(context.Background(), maintenance, fairnessPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Fatal("maintenance is not exempt unless the policy says so")
	}

	result, err = e.Evaluate(context.Background(), maintenance, model.FairnessPolicy{Mode: model.PolicyFairness, MaintenanceExempt: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Fatal("exempt maintenance must bypass the fairness check")
	}
}

func TestEvaluate_LookbackErrorPropagates(t *testing.T) {
	repo := &mockBookingRepo{
		findByRequesterInYearFn: func(context.Context, string, string, int) ([]*model.Booking, error) {
			return nil, errors.New("connection reset")
		},
	}
	e := newEvaluator(repo)

	_, err := e.Evaluate(context.Background(), candidateBooking(date(2025, time.December, 24), date(2025, time.December, 26)), fairnessPolicy())
	if err == nil {
		t.Fatal("storage failure must surface, never silently allow")
	}
}
