package model

import "time"

type PolicyMode string

const (
	PolicyFairness  PolicyMode = "fairness"
	PolicyFirstCome PolicyMode = "first_come"
)

// FairnessPolicy is read fresh from storage on every booking proposal, so a
// manager flipping the mode takes effect on the next attempt.
type FairnessPolicy struct {
	Mode PolicyMode `json:"mode" bson:"mode" validate:"required,oneof=fairness first_come"`

	// MaintenanceExempt lets maintenance bookings bypass the fairness check.
	// Conflict checking is never exempt; all categories occupy the property.
	MaintenanceExempt bool `json:"maintenance_exempt" bson:"maintenance_exempt"`
}

// Property holds the co-ownership configuration the scheduling core consumes:
// who may book, who may manage, and which fairness policy applies.
type Property struct {
	ID         string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Name       string         `json:"name" bson:"name" validate:"required,min=2,max=100"`
	OwnerIDs   []string       `json:"owner_ids" bson:"owner_ids" validate:"required,min=1,dive,uuid4"`
	ManagerIDs []string       `json:"manager_ids" bson:"manager_ids" validate:"omitempty,dive,uuid4"`
	Policy     FairnessPolicy `json:"policy" bson:"policy" validate:"required"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsMember reports whether userID may book on the property.
func (p *Property) IsMember(userID string) bool {
	for _, id := range p.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return p.IsManager(userID)
}

// IsManager reports whether userID may administer the property, including
// deleting other members' bookings.
func (p *Property) IsManager(userID string) bool {
	for _, id := range p.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
