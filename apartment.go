package hajaro

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Complex represents an apartment complex built by a contractor.
type Complex struct {
	ID           uuid.UUID `json:"id"`
	ContractorID uuid.UUID `json:"contractorId"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Unit represents one apartment unit, identified by dong (building) and ho
// (unit number) within its complex.
type Unit struct {
	ID        uuid.UUID `json:"id"`
	ComplexID uuid.UUID `json:"complexId"`
	Dong      string    `json:"dong"`
	Ho        string    `json:"ho"`

	// Joined fields (populated by some queries)
	Complex *Complex `json:"complex,omitempty"`
}

// ApartmentService defines read operations over the complex/unit reference
// data. This data is read-only from the defect core's perspective.
type ApartmentService interface {
	// FindComplexByID retrieves a complex.
	// Returns ENOTFOUND if the complex does not exist.
	FindComplexByID(ctx context.Context, id uuid.UUID) (*Complex, error)

	// SearchComplexes finds a contractor's complexes whose name contains
	// the query string. An empty query lists all of them.
	SearchComplexes(ctx context.Context, contractorID uuid.UUID, query string) ([]*Complex, error)

	// ListDongs returns the distinct building identifiers of a complex,
	// in ascending numeric order.
	ListDongs(ctx context.Context, complexID uuid.UUID) ([]string, error)

	// ListHos returns the unit numbers within one building, in ascending
	// numeric order.
	ListHos(ctx context.Context, complexID uuid.UUID, dong string) ([]string, error)

	// FindUnitByID retrieves a unit with its complex joined.
	// Returns ENOTFOUND if the unit does not exist.
	FindUnitByID(ctx context.Context, id uuid.UUID) (*Unit, error)

	// FindUnit locates a unit by complex, dong and ho.
	// Returns ENOTFOUND if no such unit exists.
	FindUnit(ctx context.Context, complexID uuid.UUID, dong, ho string) (*Unit, error)
}
