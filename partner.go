package hajaro

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Partner represents a specialized repair company contracted by one or more
// contractors.
type Partner struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PartnerDefectStats is the per-bucket defect count for one partner,
// shown on the partner back-office dashboard.
type PartnerDefectStats struct {
	PartnerID    uuid.UUID `json:"partnerId"`
	NotProcessed int       `json:"notProcessed"`
	InProgress   int       `json:"inProgress"`
	Rejected     int       `json:"rejected"`
	Repaired     int       `json:"repaired"`
	Confirmed    int       `json:"confirmed"`
}

// PartnerService defines operations for partner companies.
type PartnerService interface {
	// FindPartnerByID retrieves a partner.
	// Returns ENOTFOUND if the partner does not exist.
	FindPartnerByID(ctx context.Context, id uuid.UUID) (*Partner, error)

	// ListPartnersByContractor lists the partners a contractor has a
	// partnership with.
	ListPartnersByContractor(ctx context.Context, contractorID uuid.UUID) ([]*Partner, error)

	// GetDefectStats returns the partner-admin bucket counts for a
	// partner's current defects.
	GetDefectStats(ctx context.Context, partnerID uuid.UUID) (*PartnerDefectStats, error)
}
