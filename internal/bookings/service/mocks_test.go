package service

import (
	"context"
	"time"

	mongotx "hyrra/pkg/db/mongo"
	"hyrra/pkg/logger"
	"hyrra/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type mockBookingRepo struct {
	createFn                func(ctx context.Context, booking *model.Booking) error
	findByIDFn              func(ctx context.Context, id string) (*model.Booking, error)
	deleteFn                func(ctx context.Context, id string) error
	findOverlappingFn       func(ctx context.Context, propertyID string, start, end time.Time) ([]*model.Booking, error)
	findForPropertyFn       func(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, error)
	countForPropertyFn      func(ctx context.Context, propertyID string, from, to *time.Time) (int64, error)
	findByRequesterInYearFn func(ctx context.Context, propertyID, requesterID string, year int) ([]*model.Booking, error)
	executeTransactionFn    func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockBookingRepo) FindOverlapping(ctx context.Context, propertyID string, start, end time.Time) ([]*model.Booking, error) {
	if m.findOverlappingFn != nil {
		return m.findOverlappingFn(ctx, propertyID, start, end)
	}
	return nil, nil
}

func (m *mockBookingRepo) FindForProperty(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	if m.findForPropertyFn != nil {
		return m.findForPropertyFn(ctx, propertyID, from, to, limit, offset)
	}
	return nil, nil
}

func (m *mockBookingRepo) CountForProperty(ctx context.Context, propertyID string, from, to *time.Time) (int64, error) {
	if m.countForPropertyFn != nil {
		return m.countForPropertyFn(ctx, propertyID, from, to)
	}
	return 0, nil
}

func (m *mockBookingRepo) FindByRequesterInYear(ctx context.Context, propertyID, requesterID string, year int) ([]*model.Booking, error) {
	if m.findByRequesterInYearFn != nil {
		return m.findByRequesterInYearFn(ctx, propertyID, requesterID, year)
	}
	return nil, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFn != nil {
		return m.executeTransactionFn(ctx, fn)
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLockRepo struct {
	createFn func(ctx context.Context, lock *model.PropertyLock) (*model.PropertyLock, error)
	deleteFn func(ctx context.Context, lockID string) error
}

func (m *mockLockRepo) Create(ctx context.Context, lock *model.PropertyLock) (*model.PropertyLock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, lockID)
	}
	return nil
}

type mockGuestRevoker struct {
	deleteForBookingFn func(ctx context.Context, bookingID string) error
	revoked            []string
}

func (m *mockGuestRevoker) DeleteForBooking(ctx context.Context, bookingID string) error {
	m.revoked = append(m.revoked, bookingID)
	if m.deleteForBookingFn != nil {
		return m.deleteForBookingFn(ctx, bookingID)
	}
	return nil
}

type mockPropertyService struct {
	createFn       func(ctx context.Context, property *model.Property) error
	getByIDFn      func(ctx context.Context, id string) (*model.Property, error)
	updatePolicyFn func(ctx context.Context, id string, actorID string, policy model.FairnessPolicy) error
	deleteFn       func(ctx context.Context, id string, actorID string) error
}

func (m *mockPropertyService) Create(ctx context.Context, property *model.Property) error {
	if m.createFn != nil {
		return m.createFn(ctx, property)
	}
	return nil
}

func (m *mockPropertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPropertyService) UpdatePolicy(ctx context.Context, id string, actorID string, policy model.FairnessPolicy) error {
	if m.updatePolicyFn != nil {
		return m.updatePolicyFn(ctx, id, actorID, policy)
	}
	return nil
}

func (m *mockPropertyService) Delete(ctx context.Context, id string, actorID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, actorID)
	}
	return nil
}

type recordingPublisher struct {
	created []*model.Booking
	deleted []*model.Booking
}

func (p *recordingPublisher) BookingCreated(_ context.Context, booking *model.Booking) {
	p.created = append(p.created, booking)
}

func (p *recordingPublisher) BookingDeleted(_ context.Context, booking *model.Booking) {
	p.deleted = append(p.deleted, booking)
}

func (p *recordingPublisher) Close() error { return nil }
