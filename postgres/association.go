package postgres

import (
	"context"
	"errors"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AssociationService is the PostgreSQL implementation of
// hajaro.AssociationService.
type AssociationService struct {
	db *DB
}

var _ hajaro.AssociationService = (*AssociationService)(nil)

// ResolveAssignment returns the duty covering a unit and work type, with
// the partner joined for auto-assignment at defect creation.
func (s *AssociationService) ResolveAssignment(ctx context.Context, unitID uuid.UUID, workType string) (*hajaro.Association, error) {
	query := `
		SELECT a.id, a.contractor_id, a.partner_id, a.unit_id, a.work_types, a.created_at,
			p.name, p.phone, p.created_at
		FROM associations a
		JOIN partners p ON p.id = a.partner_id
		WHERE a.unit_id = $1 AND $2 = ANY(a.work_types)
		ORDER BY a.created_at
		LIMIT 1
	`
	var a hajaro.Association
	var partner hajaro.Partner
	err := s.db.pool.QueryRow(ctx, query, unitID, workType).Scan(
		&a.ID, &a.ContractorID, &a.PartnerID, &a.UnitID, &a.WorkTypes, &a.CreatedAt,
		&partner.Name, &partner.Phone, &partner.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("no duty covers this unit and work type")
		}
		return nil, hajaro.Internal("failed to resolve assignment", err)
	}
	partner.ID = a.PartnerID
	a.Partner = &partner
	return &a, nil
}

// AssignDuty creates a duty unless an existing duty already covers any of
// the same work types for the same contractor, partner and unit.
func (s *AssociationService) AssignDuty(ctx context.Context, duty *hajaro.Association) error {
	if len(duty.WorkTypes) == 0 {
		return hajaro.Invalid("duty requires at least one work type")
	}

	var exists bool
	err := s.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM associations
			WHERE contractor_id = $1 AND partner_id = $2 AND unit_id = $3
			  AND work_types && $4
		)
	`, duty.ContractorID, duty.PartnerID, duty.UnitID, duty.WorkTypes).Scan(&exists)
	if err != nil {
		return hajaro.Internal("failed to check duty overlap", err)
	}
	if exists {
		return hajaro.Conflict("a duty already covers this unit and work type")
	}

	err = s.db.pool.QueryRow(ctx, `
		INSERT INTO associations (contractor_id, partner_id, unit_id, work_types)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, duty.ContractorID, duty.PartnerID, duty.UnitID, duty.WorkTypes).Scan(&duty.ID, &duty.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return hajaro.NotFound("referenced contractor, partner or unit does not exist")
		}
		return hajaro.Internal("failed to create duty", err)
	}
	return nil
}

// ListDuties returns a contractor's duties with unit and partner joined.
func (s *AssociationService) ListDuties(ctx context.Context, contractorID uuid.UUID, partnerID *uuid.UUID) ([]*hajaro.Association, error) {
	query := `
		SELECT a.id, a.contractor_id, a.partner_id, a.unit_id, a.work_types, a.created_at,
			p.name, u.complex_id, u.dong, u.ho
		FROM associations a
		JOIN partners p ON p.id = a.partner_id
		JOIN units u ON u.id = a.unit_id
		WHERE a.contractor_id = $1
	`
	args := []any{contractorID}
	if partnerID != nil {
		query += " AND a.partner_id = $2"
		args = append(args, *partnerID)
	}
	query += " ORDER BY a.created_at DESC"

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, hajaro.Internal("failed to list duties", err)
	}
	defer rows.Close()

	duties := []*hajaro.Association{}
	for rows.Next() {
		var a hajaro.Association
		var partnerName string
		var unit hajaro.Unit
		err := rows.Scan(
			&a.ID, &a.ContractorID, &a.PartnerID, &a.UnitID, &a.WorkTypes, &a.CreatedAt,
			&partnerName, &unit.ComplexID, &unit.Dong, &unit.Ho,
		)
		if err != nil {
			return nil, hajaro.Internal("failed to scan duty", err)
		}
		a.Partner = &hajaro.Partner{ID: a.PartnerID, Name: partnerName}
		unit.ID = a.UnitID
		a.Unit = &unit
		duties = append(duties, &a)
	}
	return duties, nil
}

// DeleteDuty removes a contractor's duty.
func (s *AssociationService) DeleteDuty(ctx context.Context, contractorID, dutyID uuid.UUID) error {
	tag, err := s.db.pool.Exec(ctx, `
		DELETE FROM associations WHERE id = $1 AND contractor_id = $2
	`, dutyID, contractorID)
	if err != nil {
		return hajaro.Internal("failed to delete duty", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.NotFound("duty not found")
	}
	return nil
}

// CreatePartnership links a contractor and a partner. The pairing is
// checked before insert and backed by a unique constraint.
func (s *AssociationService) CreatePartnership(ctx context.Context, contractorID, partnerID uuid.UUID) (*hajaro.Partnership, error) {
	var exists bool
	err := s.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM partnerships
			WHERE contractor_id = $1 AND partner_id = $2
		)
	`, contractorID, partnerID).Scan(&exists)
	if err != nil {
		return nil, hajaro.Internal("failed to check partnership", err)
	}
	if exists {
		return nil, hajaro.Conflict("partnership already exists")
	}

	p := &hajaro.Partnership{ContractorID: contractorID, PartnerID: partnerID}
	err = s.db.pool.QueryRow(ctx, `
		INSERT INTO partnerships (contractor_id, partner_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, contractorID, partnerID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, hajaro.Conflict("partnership already exists")
		}
		if isForeignKeyViolation(err) {
			return nil, hajaro.NotFound("referenced contractor or partner does not exist")
		}
		return nil, hajaro.Internal("failed to create partnership", err)
	}
	return p, nil
}

// ListPartnerships returns a contractor's partnerships.
func (s *AssociationService) ListPartnerships(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.Partnership, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, contractor_id, partner_id, created_at
		FROM partnerships
		WHERE contractor_id = $1
		ORDER BY created_at DESC
	`, contractorID)
	if err != nil {
		return nil, hajaro.Internal("failed to list partnerships", err)
	}
	defer rows.Close()

	partnerships := []*hajaro.Partnership{}
	for rows.Next() {
		var p hajaro.Partnership
		if err := rows.Scan(&p.ID, &p.ContractorID, &p.PartnerID, &p.CreatedAt); err != nil {
			return nil, hajaro.Internal("failed to scan partnership", err)
		}
		partnerships = append(partnerships, &p)
	}
	return partnerships, nil
}
