package service

import (
	"context"
	"errors"

	propertieserrors "hyrra/internal/properties/errors"
	"hyrra/internal/properties/repository"
	"hyrra/internal/properties/validator"
	"hyrra/pkg/config"
	apperrors "hyrra/pkg/errors"
	"hyrra/pkg/model"
	"hyrra/pkg/sanitizer"
)

type PropertyService interface {
	Create(ctx context.Context, property *model.Property) error
	GetByID(ctx context.Context, id string) (*model.Property, error)
	UpdatePolicy(ctx context.Context, id string, actorID string, policy model.FairnessPolicy) error
	Delete(ctx context.Context, id string, actorID string) error
}

type propertyService struct {
	repo      repository.PropertyRepository
	validator *validator.PropertyValidator
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	validator *validator.PropertyValidator,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, property *model.Property) error {
	property.Name = sanitizer.NormalizeName(property.Name)
	if property.Policy.Mode == "" {
		property.Policy.Mode = model.PolicyFirstCome
	}
	if property.ManagerIDs == nil {
		property.ManagerIDs = []string{}
	}

	if err := s.validator.Validate(property); err != nil {
		s.cfg.Log.Warn("Property validation failed", "error", err)
		return apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property", "error", err)
		return apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Info("Property created successfully",
		"id", property.ID,
		"name", property.Name,
		"policy_mode", property.Policy.Mode,
		"owners", len(property.OwnerIDs),
	)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}

	return property, nil
}

// UpdatePolicy swaps the fairness policy. The change applies to the very next
// booking proposal; the scheduler never caches policy across calls.
func (s *propertyService) UpdatePolicy(ctx context.Context, id string, actorID string, policy model.FairnessPolicy) error {
	property, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !property.IsManager(actorID) {
		s.cfg.Log.Warn("Policy update rejected for non-manager",
			"property_id", id,
			"actor_id", actorID,
		)
		return apperrors.Forbidden("Only a property manager may change the booking policy")
	}

	if err := s.validator.ValidatePolicy(&policy); err != nil {
		return apperrors.Validation("Invalid policy", map[string]any{"error": err.Error()})
	}

	if err := s.repo.UpdatePolicy(ctx, id, policy); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to update property policy", "id", id, "error", err)
		return apperrors.Internal("Failed to update property policy", err)
	}

	s.cfg.Log.Info("Property policy updated",
		"id", id,
		"mode", policy.Mode,
		"maintenance_exempt", policy.MaintenanceExempt,
	)
	return nil
}

func (s *propertyService) Delete(ctx context.Context, id string, actorID string) error {
	property, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !property.IsManager(actorID) {
		return apperrors.Forbidden("Only a property manager may delete the property")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", id)
		}
		return apperrors.Internal("Failed to delete property", err)
	}

	s.cfg.Log.Info("Property deleted", "id", id)
	return nil
}
