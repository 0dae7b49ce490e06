package service

import (
	"context"
	"errors"
	"time"

	bookingssvc "hyrra/internal/bookings/service"
	guesterrors "hyrra/internal/guestaccess/errors"
	"hyrra/internal/guestaccess/repository"
	"hyrra/pkg/config"
	apperrors "hyrra/pkg/errors"
	"hyrra/pkg/model"

	"github.com/google/uuid"
)

// GuestView is what a guest link resolves to: the stay itself, without the
// household's internal notes.
type GuestView struct {
	PropertyID string    `json:"property_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`
}

type GuestTokenService interface {
	Issue(ctx context.Context, bookingID string, actorID string) (*model.GuestToken, error)
	Resolve(ctx context.Context, token string) (*GuestView, error)
}

type guestTokenService struct {
	repo     repository.GuestTokenRepository
	bookings bookingssvc.BookingService
	cfg      *config.Config
	now      func() time.Time
}

func NewGuestTokenService(
	repo repository.GuestTokenRepository,
	bookings bookingssvc.BookingService,
	cfg *config.Config,
) GuestTokenService {
	return &guestTokenService{
		repo:     repo,
		bookings: bookings,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Issue mints a time-boxed access token for a committed booking. The validity
// window is the booking interval widened by the configured slack on both
// sides, snapshotted at issue time.
func (s *guestTokenService) Issue(ctx context.Context, bookingID string, actorID string) (*model.GuestToken, error) {
	if actorID == "" {
		return nil, apperrors.Unauthorized("Requester identity is required")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RequesterID != actorID {
		return nil, apperrors.Forbidden("Only the booking's requester may issue guest links")
	}

	token := &model.GuestToken{
		Token:      uuid.New().String(),
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		ValidFrom:  booking.Start.Add(-s.cfg.GuestLinkSlack),
		ValidUntil: booking.End.Add(s.cfg.GuestLinkSlack),
	}

	if err := s.repo.Create(ctx, token); err != nil {
		s.cfg.Log.Error("Failed to store guest token", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to issue guest link", err)
	}

	s.cfg.Log.Info("Guest link issued",
		"booking_id", booking.ID,
		"property_id", booking.PropertyID,
		"valid_from", token.ValidFrom,
		"valid_until", token.ValidUntil,
	)
	return token, nil
}

// Resolve looks up a token and returns the stay it grants access to. Expired,
// not-yet-valid, and unknown tokens are indistinguishable to the caller.
func (s *guestTokenService) Resolve(ctx context.Context, token string) (*GuestView, error) {
	if token == "" {
		return nil, apperrors.InvalidInput("Token cannot be empty")
	}

	stored, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, guesterrors.ErrNotFound) {
			return nil, apperrors.NotFound("Guest link")
		}
		return nil, apperrors.Internal("Failed to resolve guest link", err)
	}
	if !stored.Active(s.now()) {
		return nil, apperrors.NotFound("Guest link")
	}

	booking, err := s.bookings.GetByID(ctx, stored.BookingID)
	if err != nil {
		// The booking was cancelled after the link was issued.
		if apperrors.AsAppError(err).Code == apperrors.CodeNotFound {
			return nil, apperrors.NotFound("Guest link")
		}
		return nil, err
	}

	return &GuestView{
		PropertyID: booking.PropertyID,
		Start:      booking.Start,
		End:        booking.End,
		ValidFrom:  stored.ValidFrom,
		ValidUntil: stored.ValidUntil,
	}, nil
}
