package postgres

import (
	"context"
	"errors"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApartmentService is the PostgreSQL implementation of
// hajaro.ApartmentService.
type ApartmentService struct {
	db *DB
}

var _ hajaro.ApartmentService = (*ApartmentService)(nil)

// FindComplexByID retrieves a complex by its ID.
func (s *ApartmentService) FindComplexByID(ctx context.Context, id uuid.UUID) (*hajaro.Complex, error) {
	var c hajaro.Complex
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, contractor_id, name, address, created_at
		FROM complexes WHERE id = $1
	`, id).Scan(&c.ID, &c.ContractorID, &c.Name, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("complex not found")
		}
		return nil, hajaro.Internal("failed to find complex", err)
	}
	return &c, nil
}

// SearchComplexes finds a contractor's complexes by name substring.
func (s *ApartmentService) SearchComplexes(ctx context.Context, contractorID uuid.UUID, query string) ([]*hajaro.Complex, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, contractor_id, name, address, created_at
		FROM complexes
		WHERE contractor_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY name
	`, contractorID, query)
	if err != nil {
		return nil, hajaro.Internal("failed to search complexes", err)
	}
	defer rows.Close()

	complexes := []*hajaro.Complex{}
	for rows.Next() {
		var c hajaro.Complex
		if err := rows.Scan(&c.ID, &c.ContractorID, &c.Name, &c.Address, &c.CreatedAt); err != nil {
			return nil, hajaro.Internal("failed to scan complex", err)
		}
		complexes = append(complexes, &c)
	}
	return complexes, nil
}

// ListDongs returns the distinct buildings of a complex in numeric order.
func (s *ApartmentService) ListDongs(ctx context.Context, complexID uuid.UUID) ([]string, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT DISTINCT dong FROM units
		WHERE complex_id = $1
		ORDER BY dong::int
	`, complexID)
	if err != nil {
		return nil, hajaro.Internal("failed to list dongs", err)
	}
	defer rows.Close()

	dongs := []string{}
	for rows.Next() {
		var dong string
		if err := rows.Scan(&dong); err != nil {
			return nil, hajaro.Internal("failed to scan dong", err)
		}
		dongs = append(dongs, dong)
	}
	return dongs, nil
}

// ListHos returns the unit numbers of one building in numeric order.
func (s *ApartmentService) ListHos(ctx context.Context, complexID uuid.UUID, dong string) ([]string, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT ho FROM units
		WHERE complex_id = $1 AND dong = $2
		ORDER BY ho::int
	`, complexID, dong)
	if err != nil {
		return nil, hajaro.Internal("failed to list hos", err)
	}
	defer rows.Close()

	hos := []string{}
	for rows.Next() {
		var ho string
		if err := rows.Scan(&ho); err != nil {
			return nil, hajaro.Internal("failed to scan ho", err)
		}
		hos = append(hos, ho)
	}
	return hos, nil
}

// FindUnitByID retrieves a unit with its complex joined.
func (s *ApartmentService) FindUnitByID(ctx context.Context, id uuid.UUID) (*hajaro.Unit, error) {
	var u hajaro.Unit
	var c hajaro.Complex
	err := s.db.pool.QueryRow(ctx, `
		SELECT u.id, u.complex_id, u.dong, u.ho,
			c.contractor_id, c.name, c.address, c.created_at
		FROM units u
		JOIN complexes c ON c.id = u.complex_id
		WHERE u.id = $1
	`, id).Scan(&u.ID, &u.ComplexID, &u.Dong, &u.Ho,
		&c.ContractorID, &c.Name, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("unit not found")
		}
		return nil, hajaro.Internal("failed to find unit", err)
	}
	c.ID = u.ComplexID
	u.Complex = &c
	return &u, nil
}

// FindUnit locates a unit by complex, dong and ho.
func (s *ApartmentService) FindUnit(ctx context.Context, complexID uuid.UUID, dong, ho string) (*hajaro.Unit, error) {
	var u hajaro.Unit
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, complex_id, dong, ho FROM units
		WHERE complex_id = $1 AND dong = $2 AND ho = $3
	`, complexID, dong, ho).Scan(&u.ID, &u.ComplexID, &u.Dong, &u.Ho)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("unit not found")
		}
		return nil, hajaro.Internal("failed to find unit", err)
	}
	return &u, nil
}
