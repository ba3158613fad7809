package postgres

import (
	"context"
	"errors"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContractorService is the PostgreSQL implementation of
// hajaro.ContractorService.
type ContractorService struct {
	db *DB
}

var _ hajaro.ContractorService = (*ContractorService)(nil)

// FindContractorByID retrieves a contractor by its ID.
func (s *ContractorService) FindContractorByID(ctx context.Context, id uuid.UUID) (*hajaro.Contractor, error) {
	var c hajaro.Contractor
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM contractors WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("contractor not found")
		}
		return nil, hajaro.Internal("failed to find contractor", err)
	}
	return &c, nil
}

// ListWorkTypes returns a contractor's work taxonomy.
func (s *ContractorService) ListWorkTypes(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.WorkType, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, contractor_id, type, details, created_at
		FROM work_types
		WHERE contractor_id = $1
		ORDER BY type
	`, contractorID)
	if err != nil {
		return nil, hajaro.Internal("failed to list work types", err)
	}
	defer rows.Close()

	types := []*hajaro.WorkType{}
	for rows.Next() {
		var w hajaro.WorkType
		if err := rows.Scan(&w.ID, &w.ContractorID, &w.Type, &w.Details, &w.CreatedAt); err != nil {
			return nil, hajaro.Internal("failed to scan work type", err)
		}
		types = append(types, &w)
	}
	return types, nil
}

// CreateWorkType registers a new work type for a contractor.
func (s *ContractorService) CreateWorkType(ctx context.Context, contractorID uuid.UUID, workType string) (*hajaro.WorkType, error) {
	if workType == "" {
		return nil, hajaro.Invalid("work type is required")
	}
	w := &hajaro.WorkType{ContractorID: contractorID, Type: workType, Details: []string{}}
	err := s.db.pool.QueryRow(ctx, `
		INSERT INTO work_types (contractor_id, type, details)
		VALUES ($1, $2, '{}')
		RETURNING id, created_at
	`, contractorID, workType).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, hajaro.Conflict("work type %q already exists", workType)
		}
		if isForeignKeyViolation(err) {
			return nil, hajaro.NotFound("contractor not found")
		}
		return nil, hajaro.Internal("failed to create work type", err)
	}
	return w, nil
}

// AddWorkDetail appends a detail to an existing work type. The append is a
// single conditional UPDATE so concurrent adds cannot duplicate a detail.
func (s *ContractorService) AddWorkDetail(ctx context.Context, contractorID uuid.UUID, workType, detail string) (*hajaro.WorkType, error) {
	if detail == "" {
		return nil, hajaro.Invalid("work detail is required")
	}

	var w hajaro.WorkType
	err := s.db.pool.QueryRow(ctx, `
		UPDATE work_types
		SET details = array_append(details, $3)
		WHERE contractor_id = $1 AND type = $2 AND NOT ($3 = ANY(details))
		RETURNING id, contractor_id, type, details, created_at
	`, contractorID, workType, detail).Scan(&w.ID, &w.ContractorID, &w.Type, &w.Details, &w.CreatedAt)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, hajaro.Internal("failed to add work detail", err)
	}

	// No row updated: either the type is missing or the detail exists.
	var exists bool
	err = s.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM work_types WHERE contractor_id = $1 AND type = $2
		)
	`, contractorID, workType).Scan(&exists)
	if err != nil {
		return nil, hajaro.Internal("failed to check work type", err)
	}
	if !exists {
		return nil, hajaro.NotFound("work type %q not found", workType)
	}
	return nil, hajaro.Conflict("work detail %q already exists", detail)
}
