package hajaro

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Contractor represents a construction company. It owns the work-type
// taxonomy its residents report defects against.
type Contractor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkType is one entry in a contractor's work taxonomy, e.g. 도배 with
// details like 찢김 or 들뜸.
type WorkType struct {
	ID           uuid.UUID `json:"id"`
	ContractorID uuid.UUID `json:"contractorId"`
	Type         string    `json:"type"`
	Details      []string  `json:"details"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasDetail returns true if detail is already registered under this type.
func (w *WorkType) HasDetail(detail string) bool {
	for _, d := range w.Details {
		if d == detail {
			return true
		}
	}
	return false
}

// ContractorService defines operations for contractors and their work
// taxonomy.
type ContractorService interface {
	// FindContractorByID retrieves a contractor.
	// Returns ENOTFOUND if the contractor does not exist.
	FindContractorByID(ctx context.Context, id uuid.UUID) (*Contractor, error)

	// ListWorkTypes returns a contractor's full taxonomy.
	ListWorkTypes(ctx context.Context, contractorID uuid.UUID) ([]*WorkType, error)

	// CreateWorkType registers a new work type for a contractor.
	// Returns ECONFLICT if the type already exists.
	CreateWorkType(ctx context.Context, contractorID uuid.UUID, workType string) (*WorkType, error)

	// AddWorkDetail appends a detail to an existing work type.
	// Returns ENOTFOUND if the type does not exist and ECONFLICT if the
	// detail is already registered.
	AddWorkDetail(ctx context.Context, contractorID uuid.UUID, workType, detail string) (*WorkType, error)
}
