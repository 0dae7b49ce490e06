package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hyrra/internal/bookings/validator"
	"hyrra/internal/holiday"
	"hyrra/pkg/config"
	mongotx "hyrra/pkg/db/mongo"
	apperrors "hyrra/pkg/errors"
	"hyrra/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type schedulerFixture struct {
	repo      *mockBookingRepo
	lockRepo  *mockLockRepo
	props     *mockPropertyService
	publisher *recordingPublisher
	revoker   *mockGuestRevoker
	service   BookingService
}

func memberProperty(policy model.FairnessPolicy) *model.Property {
	return &model.Property{
		ID:       testPropertyID,
		Name:     "Lakehouse",
		OwnerIDs: []string{testRequesterID},
		Policy:   policy,
	}
}

func newSchedulerFixture(t *testing.T, property *model.Property) *schedulerFixture {
	t.Helper()

	log := testLogger()
	cfg := &config.Config{
		Log:             log,
		PropertyLockTTL: 10 * time.Second,
	}

	repo := &mockBookingRepo{}
	lockRepo := &mockLockRepo{}
	publisher := &recordingPublisher{}
	revoker := &mockGuestRevoker{}
	props := &mockPropertyService{
		getByIDFn: func(_ context.Context, id string) (*model.Property, error) {
			if property == nil || id != property.ID {
				return nil, apperrors.NotFoundWithID("Property", id)
			}
			return property, nil
		},
	}

	fairness := NewFairnessEvaluator(holiday.NewCalendar(), repo, log)
	svc := NewBookingService(
		repo,
		lockRepo,
		props,
		fairness,
		validator.NewBookingValidator(log),
		publisher,
		revoker,
		cfg,
	)

	return &schedulerFixture{
		repo:      repo,
		lockRepo:  lockRepo,
		props:     props,
		publisher: publisher,
		revoker:   revoker,
		service:   svc,
	}
}

func proposal(start, end time.Time) *model.Booking {
	return &model.Booking{
		PropertyID:  testPropertyID,
		RequesterID: testRequesterID,
		Start:       start,
		End:         end,
		Category:    model.CategoryPersonal,
	}
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000},
		},
	}
}

func TestPropose_Accepted(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	var created *model.Booking
	var lockCreated, lockReleased string
	f.repo.createFn = func(_ context.Context, b *model.Booking) error {
		b.ID = "new-booking"
		created = b
		return nil
	}
	f.lockRepo.createFn = func(_ context.Context, lock *model.PropertyLock) (*model.PropertyLock, error) {
		lockCreated = lock.ID
		return lock, nil
	}
	f.lockRepo.deleteFn = func(_ context.Context, lockID string) error {
		lockReleased = lockID
		return nil
	}

	b := proposal(date(2025, time.July, 10), date(2025, time.July, 12))
	if err := f.service.Propose(context.Background(), b); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}

	if created == nil {
		t.Fatal("booking was not persisted")
	}
	if lockCreated == "" {
		t.Fatal("property lock was never acquired")
	}
	if lockReleased != lockCreated {
		t.Errorf("lock released = %q, acquired = %q", lockReleased, lockCreated)
	}
	if len(f.publisher.created) != 1 {
		t.Fatalf("expected 1 created event, got %d", len(f.publisher.created))
	}
}

func TestPropose_RejectsOverlap(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	f.repo.findOverlappingFn = func(_ context.Context, _ string, _, _ time.Time) ([]*model.Booking, error) {
		return []*model.Booking{
			{ID: "existing", Start: date(2025, time.July, 11), End: date(2025, time.July, 14)},
		}, nil
	}
	f.repo.createFn = func(context.Context, *model.Booking) error {
		t.Fatal("conflicting proposal must not be persisted")
		return nil
	}

	err := f.service.Propose(context.Background(), proposal(date(2025, time.July, 10), date(2025, time.July, 12)))
	if err == nil {
		t.Fatal("expected conflict rejection")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
	if appErr.Details["booking_id"] != "existing" {
		t.Errorf("details booking_id = %v, want existing", appErr.Details["booking_id"])
	}
	if len(f.publisher.created) != 0 {
		t.Error("rejected proposal must not publish an event")
	}
}

// An invalid interval is rejected before any storage or lock activity.
func TestPropose_InvalidIntervalShortCircuits(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	f.lockRepo.createFn = func(context.Context, *model.PropertyLock) (*model.PropertyLock, error) {
		t.Fatal("invalid proposal must not touch the lock")
		return nil, nil
	}
	f.repo.executeTransactionFn = func(context.Context, mongotx.TransactionFunc) error {
		t.Fatal("invalid proposal must not open a transaction")
		return nil
	}

	err := f.service.Propose(context.Background(), proposal(date(2025, time.July, 12), date(2025, time.July, 10)))
	if err == nil {
		t.Fatal("expected validation rejection")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeValidation)
	}
}

func TestPropose_FairnessDenial(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFairness}))

	f.repo.findByRequesterInYearFn = func(_ context.Context, _, _ string, year int) ([]*model.Booking, error) {
		if year != 2024 {
			return nil, nil
		}
		return []*model.Booking{
			{ID: "prior", Start: date(2024, time.December, 24), End: date(2024, time.December, 26)},
		}, nil
	}
	f.repo.createFn = func(context.Context, *model.Booking) error {
		t.Fatal("denied proposal must not be persisted")
		return nil
	}

	err := f.service.Propose(context.Background(), proposal(date(2025, time.December, 23), date(2025, time.December, 27)))
	if err == nil {
		t.Fatal("expected fairness denial")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeFairnessViolation {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeFairnessViolation)
	}
	if appErr.Details["holiday"] != "midwinter" {
		t.Errorf("details holiday = %v, want midwinter", appErr.Details["holiday"])
	}
}

// Flipping the policy to first-come admits the same dates that fairness just
// denied; the policy is read fresh each proposal.
func TestPropose_PolicySwitchTakesEffectImmediately(t *testing.T) {
	property := memberProperty(model.FairnessPolicy{Mode: model.PolicyFairness})
	f := newSchedulerFixture(t, property)

	f.repo.findByRequesterInYearFn = func(_ context.Context, _, _ string, year int) ([]*model.Booking, error) {
		return []*model.Booking{
			{ID: "prior", Start: date(year, time.December, 24), End: date(year, time.December, 26)},
		}, nil
	}

	b := proposal(date(2025, time.December, 23), date(2025, time.December, 27))
	if err := f.service.Propose(context.Background(), b); err == nil {
		t.Fatal("expected fairness denial before the switch")
	}

	property.Policy = model.FairnessPolicy{Mode: model.PolicyFirstCome}
	if err := f.service.Propose(context.Background(), b); err != nil {
		t.Fatalf("expected acceptance after the switch, got %v", err)
	}
}

func TestPropose_NonMemberUnauthorized(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	b := proposal(date(2025, time.July, 10), date(2025, time.July, 12))
	b.RequesterID = "9e8d7c6b-5a4b-4c3d-8e2f-1a0b9c8d7e6f"

	err := f.service.Propose(context.Background(), b)
	if err == nil {
		t.Fatal("expected rejection for non-member")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeUnauthorized)
	}
}

func TestPropose_LockReleasedAfterRequestCancelled(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	ctx, cancel := context.WithCancel(context.Background())
	f.repo.executeTransactionFn = func(txCtx context.Context, fn mongotx.TransactionFunc) error {
		// The caller walks away mid-admission.
		cancel()
		return txCtx.Err()
	}

	released := false
	f.lockRepo.deleteFn = func(deleteCtx context.Context, lockID string) error {
		released = true
		if deleteCtx.Err() != nil {
			t.Error("lock release must not run on the cancelled request context")
		}
		return nil
	}

	_ = f.service.Propose(ctx, proposal(date(2025, time.July, 10), date(2025, time.July, 12)))
	if !released {
		t.Fatal("lock must be released even when the request context is cancelled")
	}
}

func TestPropose_LockContention(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	f.lockRepo.createFn = func(context.Context, *model.PropertyLock) (*model.PropertyLock, error) {
		return nil, duplicateKeyError()
	}
	f.repo.executeTransactionFn = func(context.Context, mongotx.TransactionFunc) error {
		t.Fatal("contended proposal must not open a transaction")
		return nil
	}

	err := f.service.Propose(context.Background(), proposal(date(2025, time.July, 10), date(2025, time.July, 12)))
	if err == nil {
		t.Fatal("expected lock contention rejection")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
}

func TestPropose_RetriesTransientStorageError(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	attempts := 0
	f.repo.executeTransactionFn = func(ctx context.Context, fn mongotx.TransactionFunc) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient write conflict")
		}
		return fn(mongo.NewSessionContext(ctx, nil))
	}

	if err := f.service.Propose(context.Background(), proposal(date(2025, time.July, 10), date(2025, time.July, 12))); err != nil {
		t.Fatalf("expected success on retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestPropose_GivesUpAfterRetry(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	attempts := 0
	f.repo.executeTransactionFn = func(context.Context, mongotx.TransactionFunc) error {
		attempts++
		return errors.New("transient write conflict")
	}

	err := f.service.Propose(context.Background(), proposal(date(2025, time.July, 10), date(2025, time.July, 12)))
	if err == nil {
		t.Fatal("expected unavailable after exhausted retries")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeUnavailable {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeUnavailable)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDelete_RequesterCancelsOwnBooking(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	stored := proposal(date(2025, time.July, 10), date(2025, time.July, 12))
	stored.ID = "22222222-2222-4222-8222-222222222222"
	f.repo.findByIDFn = func(_ context.Context, id string) (*model.Booking, error) {
		return stored, nil
	}

	if err := f.service.Delete(context.Background(), stored.ID, testRequesterID); err != nil {
		t.Fatalf("requester must be able to cancel their own booking, got %v", err)
	}
	if len(f.publisher.deleted) != 1 {
		t.Fatalf("expected 1 deleted event, got %d", len(f.publisher.deleted))
	}
}

func TestDelete_StrangerForbidden(t *testing.T) {
	property := memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome})
	property.OwnerIDs = append(property.OwnerIDs, "9e8d7c6b-5a4b-4c3d-8e2f-1a0b9c8d7e6f")
	f := newSchedulerFixture(t, property)

	stored := proposal(date(2025, time.July, 10), date(2025, time.July, 12))
	stored.ID = "22222222-2222-4222-8222-222222222222"
	f.repo.findByIDFn = func(context.Context, string) (*model.Booking, error) {
		return stored, nil
	}
	f.repo.deleteFn = func(context.Context, string) error {
		t.Fatal("unauthorized delete must not reach storage")
		return nil
	}

	// A fellow owner who is not a manager and not the requester.
	err := f.service.Delete(context.Background(), stored.ID, "9e8d7c6b-5a4b-4c3d-8e2f-1a0b9c8d7e6f")
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeForbidden)
	}
	if len(f.publisher.deleted) != 0 {
		t.Error("failed delete must not publish an event")
	}
}

func TestDelete_ManagerCancelsAnyBooking(t *testing.T) {
	const managerID = "3c2b1a09-8f7e-4d6c-9b5a-4e3d2c1b0a99"
	property := memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome})
	property.ManagerIDs = []string{managerID}
	f := newSchedulerFixture(t, property)

	stored := proposal(date(2025, time.July, 10), date(2025, time.July, 12))
	stored.ID = "22222222-2222-4222-8222-222222222222"
	f.repo.findByIDFn = func(context.Context, string) (*model.Booking, error) {
		return stored, nil
	}

	if err := f.service.Delete(context.Background(), stored.ID, managerID); err != nil {
		t.Fatalf("manager must be able to cancel any booking, got %v", err)
	}
}

func TestDelete_RevokesGuestTokens(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	stored := proposal(date(2025, time.July, 10), date(2025, time.July, 12))
	stored.ID = "22222222-2222-4222-8222-222222222222"
	f.repo.findByIDFn = func(context.Context, string) (*model.Booking, error) {
		return stored, nil
	}

	if err := f.service.Delete(context.Background(), stored.ID, testRequesterID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(f.revoker.revoked) != 1 || f.revoker.revoked[0] != stored.ID {
		t.Fatalf("revoked = %v, want [%s]", f.revoker.revoked, stored.ID)
	}
}

func TestDelete_TokenRevocationFailureDoesNotFailCancellation(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	stored := proposal(date(2025, time.July, 10), date(2025, time.July, 12))
	stored.ID = "22222222-2222-4222-8222-222222222222"
	f.repo.findByIDFn = func(context.Context, string) (*model.Booking, error) {
		return stored, nil
	}
	f.revoker.deleteForBookingFn = func(context.Context, string) error {
		return errors.New("token storage down")
	}

	if err := f.service.Delete(context.Background(), stored.ID, testRequesterID); err != nil {
		t.Fatalf("cancellation must survive a token revocation failure, got %v", err)
	}
	if len(f.publisher.deleted) != 1 {
		t.Fatalf("expected 1 deleted event, got %d", len(f.publisher.deleted))
	}
}

func TestList_RequiresProperty(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	_, _, err := f.service.List(context.Background(), "", nil, nil, 10, 0)
	if err == nil {
		t.Fatal("expected rejection without property id")
	}
}

func TestList_RejectsInvertedWindow(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	from := date(2025, time.July, 12)
	to := date(2025, time.July, 10)
	_, _, err := f.service.List(context.Background(), testPropertyID, &from, &to, 10, 0)
	if err == nil {
		t.Fatal("expected rejection for inverted window")
	}
}

func TestList_ReturnsBookingsAndCount(t *testing.T) {
	f := newSchedulerFixture(t, memberProperty(model.FairnessPolicy{Mode: model.PolicyFirstCome}))

	f.repo.findForPropertyFn = func(context.Context, string, *time.Time, *time.Time, int, int64) ([]*model.Booking, error) {
		return []*model.Booking{
			{ID: "a"}, {ID: "b"},
		}, nil
	}
	f.repo.countForPropertyFn = func(context.Context, string, *time.Time, *time.Time) (int64, error) {
		return 7, nil
	}

	bookings, total, err := f.service.List(context.Background(), testPropertyID, nil, nil, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 2 {
		t.Errorf("bookings = %d, want 2", len(bookings))
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
}
