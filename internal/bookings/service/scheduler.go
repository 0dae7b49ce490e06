package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "hyrra/internal/bookings/errors"
	"hyrra/internal/bookings/events"
	"hyrra/internal/bookings/repository"
	"hyrra/internal/bookings/validator"
	propertiessvc "hyrra/internal/properties/service"
	"hyrra/pkg/config"
	apperrors "hyrra/pkg/errors"
	"hyrra/pkg/model"
	"hyrra/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Propose(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Delete(ctx context.Context, id string, actorID string) error
}

// GuestTokenRevoker revokes every guest token issued for a booking. Satisfied
// by the guest token repository.
type GuestTokenRevoker interface {
	DeleteForBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo        repository.BookingRepository
	lockRepo    repository.PropertyLockRepository
	properties  propertiessvc.PropertyService
	fairness    *FairnessEvaluator
	validator   *validator.BookingValidator
	publisher   events.Publisher
	guestTokens GuestTokenRevoker
	cfg         *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.PropertyLockRepository,
	properties propertiessvc.PropertyService,
	fairness *FairnessEvaluator,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	guestTokens GuestTokenRevoker,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		lockRepo:    lockRepo,
		properties:  properties,
		fairness:    fairness,
		validator:   validator,
		publisher:   publisher,
		guestTokens: guestTokens,
		cfg:         cfg,
	}
}

// Propose runs the full admission pipeline for a candidate booking: validate,
// authorize, serialize on the property, then check conflicts and fairness
// inside one transaction so no competing proposal can commit between the
// check and the insert.
func (s *bookingService) Propose(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	// Policy is read fresh on every proposal. A policy switch takes effect
	// for the next proposal, never retroactively.
	property, err := s.properties.GetByID(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	if !property.IsMember(booking.RequesterID) {
		return apperrors.Unauthorized("Requester is not a member of this property")
	}

	lockID, err := s.acquirePropertyLock(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releasePropertyLock(lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release property lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.admit(ctx, booking, property.Policy)
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"property_id", booking.PropertyID,
			"requester_id", booking.RequesterID,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"property_id", booking.PropertyID,
		"requester_id", booking.RequesterID,
		"start", booking.Start,
		"end", booking.End,
	)
	s.publisher.BookingCreated(ctx, booking)
	return nil
}

// admit runs the transactional check-then-insert, retrying once on transient
// storage failures. Rule rejections (conflict, fairness) are final and never
// retried.
func (s *bookingService) admit(ctx context.Context, booking *model.Booking, policy model.FairnessPolicy) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		lastErr = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			existing, err := s.repo.FindOverlapping(sessCtx, booking.PropertyID, booking.Start, booking.End)
			if err != nil {
				return apperrors.Internal("Failed to check existing bookings", err)
			}
			if result := CheckConflict(booking, existing); !result.Clear {
				return apperrors.ConflictWithBooking(result.ConflictingID)
			}

			fairnessResult, err := s.fairness.Evaluate(sessCtx, booking, policy)
			if err != nil {
				return err
			}
			if !fairnessResult.Allowed {
				return apperrors.FairnessViolation(fairnessResult.HolidayName, fairnessResult.PriorYear)
			}

			if err := s.repo.Create(sessCtx, booking); err != nil {
				return apperrors.Internal("Failed to create booking", err)
			}
			return nil
		})
		if lastErr == nil {
			return nil
		}
		if apperrors.IsAppError(lastErr) {
			return lastErr
		}
		s.cfg.Log.Warn("Transient storage error during booking admission, retrying",
			"property_id", booking.PropertyID,
			"attempt", attempt+1,
			"error", lastErr,
		)
	}
	return apperrors.Unavailable("Booking storage")
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) List(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("Property ID is required")
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, 0, apperrors.InvalidInput("Window end must be after window start")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountForProperty(ctx, propertyID, from, to)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings",
				"property_id", propertyID,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindForProperty(ctx, propertyID, from, to, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"property_id", propertyID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Delete removes a booking. The booking's requester may always cancel their
// own stay; property managers may cancel any stay on their property.
func (s *bookingService) Delete(ctx context.Context, id string, actorID string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if actorID == "" {
		return apperrors.Unauthorized("Requester identity is required")
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.RequesterID != actorID {
		property, err := s.properties.GetByID(ctx, booking.PropertyID)
		if err != nil {
			return err
		}
		if !property.IsManager(actorID) {
			return apperrors.Forbidden("Only the requester or a property manager may cancel this booking")
		}
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to delete booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Guest links issued for the booking die with it. Revocation failure
	// never resurrects the booking; the token TTL eventually catches up.
	if err := s.guestTokens.DeleteForBooking(ctx, id); err != nil {
		s.cfg.Log.Warn("Failed to revoke guest tokens for cancelled booking", "id", id, "error", err)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id, "actor_id", actorID)
	s.publisher.BookingDeleted(ctx, booking)
	return nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if !b.Start.IsZero() {
		b.Start = b.Start.UTC()
	}
	if !b.End.IsZero() {
		b.End = b.End.UTC()
	}
	if b.Category == "" {
		b.Category = model.CategoryPersonal
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Note = sanitizer.NormalizeNote(b.Note)
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// acquirePropertyLock serializes all proposals for one property. The lock is
// advisory: a unique _id insert that concurrent proposals collide on.
func (s *bookingService) acquirePropertyLock(ctx context.Context, propertyID string) (string, error) {
	lockID := fmt.Sprintf("property_lock_%s", propertyID)

	lock := &model.PropertyLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.PropertyLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another booking for this property is in progress. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire property lock", err)
	}

	return lockID, nil
}

// releasePropertyLock runs on a fresh context: the request context may
// already be cancelled when the deferred release fires, and the lock must
// still come off. If the delete is lost anyway, the TTL index on the locks
// collection reaps the document at expires_at.
func (s *bookingService) releasePropertyLock(lockID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.lockRepo.Delete(ctx, lockID)
}
