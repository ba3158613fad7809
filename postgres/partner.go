package postgres

import (
	"context"
	"errors"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PartnerService is the PostgreSQL implementation of hajaro.PartnerService.
type PartnerService struct {
	db *DB
}

var _ hajaro.PartnerService = (*PartnerService)(nil)

// FindPartnerByID retrieves a partner by its ID.
func (s *PartnerService) FindPartnerByID(ctx context.Context, id uuid.UUID) (*hajaro.Partner, error) {
	var p hajaro.Partner
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, name, phone, created_at FROM partners WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("partner not found")
		}
		return nil, hajaro.Internal("failed to find partner", err)
	}
	return &p, nil
}

// ListPartnersByContractor lists the partners with a partnership under the
// contractor.
func (s *PartnerService) ListPartnersByContractor(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.Partner, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT p.id, p.name, p.phone, p.created_at
		FROM partners p
		JOIN partnerships ps ON ps.partner_id = p.id
		WHERE ps.contractor_id = $1
		ORDER BY p.name
	`, contractorID)
	if err != nil {
		return nil, hajaro.Internal("failed to list partners", err)
	}
	defer rows.Close()

	partners := []*hajaro.Partner{}
	for rows.Next() {
		var p hajaro.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt); err != nil {
			return nil, hajaro.Internal("failed to scan partner", err)
		}
		partners = append(partners, &p)
	}
	return partners, nil
}

// GetDefectStats returns the partner dashboard bucket counts.
func (s *PartnerService) GetDefectStats(ctx context.Context, partnerID uuid.UUID) (*hajaro.PartnerDefectStats, error) {
	counts, err := s.db.DefectService.CountByStatusForPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return &hajaro.PartnerDefectStats{
		PartnerID:    partnerID,
		NotProcessed: counts[hajaro.BucketNotProcessed],
		InProgress:   counts[hajaro.BucketInProgress],
		Rejected:     counts[hajaro.BucketRejected],
		Repaired:     counts[hajaro.BucketRepaired],
		Confirmed:    counts[hajaro.BucketConfirmed],
	}, nil
}
