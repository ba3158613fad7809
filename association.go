package hajaro

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Partnership links a contractor to a partner company without any unit or
// work-type scope. Duties are created underneath an existing partnership.
type Partnership struct {
	ID           uuid.UUID `json:"id"`
	ContractorID uuid.UUID `json:"contractorId"`
	PartnerID    uuid.UUID `json:"partnerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Association is a duty: the contractual record scoping a partner to a set
// of work types at one unit. It decides which partner a new defect is
// auto-assigned to.
type Association struct {
	ID           uuid.UUID `json:"id"`
	ContractorID uuid.UUID `json:"contractorId"`
	PartnerID    uuid.UUID `json:"partnerId"`
	UnitID       uuid.UUID `json:"unitId"`
	WorkTypes    []string  `json:"workTypes"`
	CreatedAt    time.Time `json:"createdAt"`

	// Joined fields (populated by some queries)
	Partner *Partner `json:"partner,omitempty"`
	Unit    *Unit    `json:"unit,omitempty"`
}

// Covers returns true if workType is in this duty's scope.
func (a *Association) Covers(workType string) bool {
	for _, w := range a.WorkTypes {
		if w == workType {
			return true
		}
	}
	return false
}

// AssociationService defines operations for partnerships and duties.
// Rejecting a defect never touches these records; rejection is per-ticket,
// not a severance of the contractual relationship.
type AssociationService interface {
	// ResolveAssignment returns the duty covering a unit and work type.
	// Returns ENOTFOUND when no duty covers the pair; callers treat that
	// as "create the defect unassigned", not as a failure.
	ResolveAssignment(ctx context.Context, unitID uuid.UUID, workType string) (*Association, error)

	// AssignDuty creates a duty after checking that no existing duty
	// already covers any of the same (contractor, partner, unit,
	// work-type) tuples. Returns ECONFLICT on overlap.
	AssignDuty(ctx context.Context, duty *Association) error

	// ListDuties returns a contractor's duties, optionally narrowed to
	// one partner.
	ListDuties(ctx context.Context, contractorID uuid.UUID, partnerID *uuid.UUID) ([]*Association, error)

	// DeleteDuty removes a duty. Existing defects keep their current
	// assignment. Returns ENOTFOUND if the duty does not exist or does
	// not belong to the contractor.
	DeleteDuty(ctx context.Context, contractorID, dutyID uuid.UUID) error

	// CreatePartnership links a contractor and a partner.
	// Returns ECONFLICT if the pairing already exists.
	CreatePartnership(ctx context.Context, contractorID, partnerID uuid.UUID) (*Partnership, error)

	// ListPartnerships returns a contractor's partnerships.
	ListPartnerships(ctx context.Context, contractorID uuid.UUID) ([]*Partnership, error)
}
