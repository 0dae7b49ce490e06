package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	guesterrors "hyrra/internal/guestaccess/errors"
	"hyrra/pkg/config"
	"hyrra/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Guest_tokens"
)

type GuestTokenRepository interface {
	Create(ctx context.Context, token *model.GuestToken) error
	FindByToken(ctx context.Context, token string) (*model.GuestToken, error)
	DeleteForBooking(ctx context.Context, bookingID string) error
}

type mongoGuestTokenRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoGuestTokenRepository(cfg *config.Config) GuestTokenRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGuestTokenRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoGuestTokenRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoGuestTokenRepository) Create(ctx context.Context, token *model.GuestToken) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	token.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("failed to create guest token: %w", err)
	}
	return nil
}

func (r *mongoGuestTokenRepository) FindByToken(ctx context.Context, token string) (*model.GuestToken, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var result model.GuestToken
	err := r.collection.FindOne(ctx, bson.M{"_id": token}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, guesterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find guest token: %w", err)
	}

	return &result, nil
}

// DeleteForBooking removes every token issued for a booking. Called when the
// booking itself is cancelled.
func (r *mongoGuestTokenRepository) DeleteForBooking(ctx context.Context, bookingID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"booking_id": bookingID}); err != nil {
		return fmt.Errorf("failed to delete guest tokens: %w", err)
	}
	return nil
}
