package service

import (
	"context"
	"testing"
	"time"

	guesterrors "hyrra/internal/guestaccess/errors"
	"hyrra/pkg/config"
	apperrors "hyrra/pkg/errors"
	"hyrra/pkg/logger"
	"hyrra/pkg/model"
)

const (
	bookingID   = "22222222-2222-4222-8222-222222222222"
	requesterID = "0b1d2e3f-4a5b-4c6d-8e9f-a0b1c2d3e4f5"
	propertyID  = "7f2c8a60-8a7e-4f4e-9d3a-1f2e3d4c5b6a"
)

type mockTokenRepo struct {
	createFn           func(ctx context.Context, token *model.GuestToken) error
	findByTokenFn      func(ctx context.Context, token string) (*model.GuestToken, error)
	deleteForBookingFn func(ctx context.Context, bookingID string) error
}

func (m *mockTokenRepo) Create(ctx context.Context, token *model.GuestToken) error {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	return nil
}

func (m *mockTokenRepo) FindByToken(ctx context.Context, token string) (*model.GuestToken, error) {
	if m.findByTokenFn != nil {
		return m.findByTokenFn(ctx, token)
	}
	return nil, guesterrors.ErrNotFound
}

func (m *mockTokenRepo) DeleteForBooking(ctx context.Context, id string) error {
	if m.deleteForBookingFn != nil {
		return m.deleteForBookingFn(ctx, id)
	}
	return nil
}

type mockBookingService struct {
	getByIDFn func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingService) Propose(context.Context, *model.Booking) error { return nil }

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) List(context.Context, string, *time.Time, *time.Time, int, int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) Delete(context.Context, string, string) error { return nil }

func storedBooking() *model.Booking {
	return &model.Booking{
		ID:          bookingID,
		PropertyID:  propertyID,
		RequesterID: requesterID,
		Start:       time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC),
		Category:    model.CategoryGuest,
	}
}

func newFixture(repo *mockTokenRepo, bookings *mockBookingService) *guestTokenService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:            log,
		GuestLinkSlack: 24 * time.Hour,
	}
	return NewGuestTokenService(repo, bookings, cfg).(*guestTokenService)
}

func TestIssue_WindowIsBookingPlusSlack(t *testing.T) {
	var stored *model.GuestToken
	repo := &mockTokenRepo{
		createFn: func(_ context.Context, token *model.GuestToken) error {
			stored = token
			return nil
		},
	}
	bookings := &mockBookingService{
		getByIDFn: func(context.Context, string) (*model.Booking, error) {
			return storedBooking(), nil
		},
	}
	svc := newFixture(repo, bookings)

	token, err := svc.Issue(context.Background(), bookingID, requesterID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("token was not persisted")
	}
	if token.Token == "" {
		t.Error("token value must be set")
	}
	wantFrom := time.Date(2025, time.July, 9, 0, 0, 0, 0, time.UTC)
	wantUntil := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	if !token.ValidFrom.Equal(wantFrom) {
		t.Errorf("valid_from = %v, want %v", token.ValidFrom, wantFrom)
	}
	if !token.ValidUntil.Equal(wantUntil) {
		t.Errorf("valid_until = %v, want %v", token.ValidUntil, wantUntil)
	}
	if token.PropertyID != propertyID || token.BookingID != bookingID {
		t.Error("token must reference its booking and property")
	}
}

func TestIssue_OnlyRequesterMayIssue(t *testing.T) {
	repo := &mockTokenRepo{
		createFn: func(context.Context, *model.GuestToken) error {
			t.Fatal("forbidden issue must not persist a token")
			return nil
		},
	}
	bookings := &mockBookingService{
		getByIDFn: func(context.Context, string) (*model.Booking, error) {
			return storedBooking(), nil
		},
	}
	svc := newFixture(repo, bookings)

	_, err := svc.Issue(context.Background(), bookingID, "9e8d7c6b-5a4b-4c3d-8e2f-1a0b9c8d7e6f")
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeForbidden)
	}
}

func TestResolve_WithinWindow(t *testing.T) {
	token := &model.GuestToken{
		Token:      "tok",
		BookingID:  bookingID,
		PropertyID: propertyID,
		ValidFrom:  time.Date(2025, time.July, 9, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC),
	}
	repo := &mockTokenRepo{
		findByTokenFn: func(context.Context, string) (*model.GuestToken, error) {
			return token, nil
		},
	}
	bookings := &mockBookingService{
		getByIDFn: func(context.Context, string) (*model.Booking, error) {
			return storedBooking(), nil
		},
	}
	svc := newFixture(repo, bookings)
	svc.now = func() time.Time {
		return time.Date(2025, time.July, 11, 15, 0, 0, 0, time.UTC)
	}

	view, err := svc.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.PropertyID != propertyID {
		t.Errorf("property = %q, want %q", view.PropertyID, propertyID)
	}
	if !view.Start.Equal(storedBooking().Start) {
		t.Errorf("start = %v, want booking start", view.Start)
	}
}

// Expired and unknown tokens resolve identically so a probing caller learns
// nothing from the difference.
func TestResolve_OutsideWindowLooksUnknown(t *testing.T) {
	token := &model.GuestToken{
		Token:      "tok",
		BookingID:  bookingID,
		ValidFrom:  time.Date(2025, time.July, 9, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC),
	}
	repo := &mockTokenRepo{
		findByTokenFn: func(context.Context, string) (*model.GuestToken, error) {
			return token, nil
		},
	}
	svc := newFixture(repo, &mockBookingService{})
	svc.now = func() time.Time {
		return time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	}

	_, err := svc.Resolve(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected not found for expired token")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeNotFound)
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	svc := newFixture(&mockTokenRepo{}, &mockBookingService{})

	_, err := svc.Resolve(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected not found")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeNotFound)
	}
}

func TestResolve_CancelledBookingLooksUnknown(t *testing.T) {
	token := &model.GuestToken{
		Token:      "tok",
		BookingID:  bookingID,
		ValidFrom:  time.Date(2025, time.July, 9, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC),
	}
	repo := &mockTokenRepo{
		findByTokenFn: func(context.Context, string) (*model.GuestToken, error) {
			return token, nil
		},
	}
	svc := newFixture(repo, &mockBookingService{})
	svc.now = func() time.Time {
		return time.Date(2025, time.July, 11, 0, 0, 0, 0, time.UTC)
	}

	_, err := svc.Resolve(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected not found for cancelled booking")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeNotFound)
	}
}
