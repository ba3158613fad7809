package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DefectService is the PostgreSQL implementation of hajaro.DefectService.
//
// Status transitions are performed in two steps: a plain read that
// validates ownership and legality (producing the precise typed error),
// followed by a conditional UPDATE keyed on the expected current status.
// Zero rows affected after a successful validation means a concurrent
// transition won the race, which is reported as ECONFLICT.
type DefectService struct {
	db *DB
}

var _ hajaro.DefectService = (*DefectService)(nil)

const defectColumns = `
	d.id, d.contractor_id, d.complex_id, d.unit_id, d.resident_id,
	d.address, d.location, d.work_type, d.work_detail, d.work_additional_info,
	d.coordinate, d.status, d.requested_image, d.repaired_image, d.confirmed_image,
	d.requested_at, d.repaired_at, d.confirmed_at,
	d.assigned_partner_id, d.assigned_engineer_id, d.signature, d.rejected_reason`

// CreateDefect inserts a defect reported by a resident. The unit's duty
// table decides the initial status and partner assignment.
func (s *DefectService) CreateDefect(ctx context.Context, defect *hajaro.Defect) error {
	unit, err := s.db.ApartmentService.FindUnitByID(ctx, defect.UnitID)
	if err != nil {
		return err
	}
	defect.ComplexID = unit.ComplexID
	if unit.Complex != nil && defect.Address == "" {
		defect.Address = unit.Complex.Address
	}

	status := hajaro.DefectStatusPartnerNotAssigned
	var partnerID *uuid.UUID
	duty, err := s.db.AssociationService.ResolveAssignment(ctx, defect.UnitID, defect.Work.Type)
	switch {
	case err == nil:
		status = hajaro.DefectStatusPartnerAssigned
		partnerID = &duty.PartnerID
		defect.ContractorID = duty.ContractorID
	case hajaro.IsErrorCode(err, hajaro.ENOTFOUND):
		if unit.Complex != nil {
			defect.ContractorID = unit.Complex.ContractorID
		}
	default:
		return err
	}
	defect.Status = status
	defect.AssignedPartnerID = partnerID

	var coordinate []byte
	if defect.Coordinate != nil {
		coordinate, err = json.Marshal(defect.Coordinate)
		if err != nil {
			return hajaro.Internal("failed to marshal coordinate", err)
		}
	}

	query := `
		INSERT INTO defects (
			contractor_id, complex_id, unit_id, resident_id,
			address, location, work_type, work_detail, work_additional_info,
			coordinate, status, requested_image, assigned_partner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, requested_at
	`
	err = s.db.pool.QueryRow(ctx, query,
		defect.ContractorID, defect.ComplexID, defect.UnitID, defect.ResidentID,
		defect.Address, defect.Location,
		defect.Work.Type, defect.Work.Detail, defect.Work.AdditionalInfo,
		coordinate, defect.Status, defect.RequestedImage, defect.AssignedPartnerID,
	).Scan(&defect.ID, &defect.RequestedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return hajaro.NotFound("referenced unit, resident or contractor does not exist")
		}
		return hajaro.Internal("failed to create defect", err)
	}
	return nil
}

// FindDefectByID retrieves a defect with its reference data joined.
func (s *DefectService) FindDefectByID(ctx context.Context, id uuid.UUID) (*hajaro.Defect, error) {
	query := `
		SELECT ` + defectColumns + `,
			c.name, c.address,
			u.dong, u.ho,
			r.name, r.email,
			p.name,
			e.name
		FROM defects d
		JOIN complexes c ON c.id = d.complex_id
		JOIN units u ON u.id = d.unit_id
		LEFT JOIN users r ON r.id = d.resident_id
		LEFT JOIN partners p ON p.id = d.assigned_partner_id
		LEFT JOIN users e ON e.id = d.assigned_engineer_id
		WHERE d.id = $1
	`
	row := s.db.pool.QueryRow(ctx, query, id)

	var d hajaro.Defect
	var coordinate []byte
	var repairedImage, confirmedImage, signature, rejectedReason pgtype.Text
	var repairedAt, confirmedAt pgtype.Timestamptz
	var partnerID, engineerID pgtype.UUID
	var complexName, complexAddress, dong, ho string
	var residentName, residentEmail, partnerName, engineerName pgtype.Text

	err := row.Scan(
		&d.ID, &d.ContractorID, &d.ComplexID, &d.UnitID, &d.ResidentID,
		&d.Address, &d.Location, &d.Work.Type, &d.Work.Detail, &d.Work.AdditionalInfo,
		&coordinate, &d.Status, &d.RequestedImage, &repairedImage, &confirmedImage,
		&d.RequestedAt, &repairedAt, &confirmedAt,
		&partnerID, &engineerID, &signature, &rejectedReason,
		&complexName, &complexAddress, &dong, &ho,
		&residentName, &residentEmail, &partnerName, &engineerName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("defect not found")
		}
		return nil, hajaro.Internal("failed to find defect", err)
	}

	if len(coordinate) > 0 {
		d.Coordinate = &hajaro.Coordinate{}
		if err := json.Unmarshal(coordinate, d.Coordinate); err != nil {
			return nil, hajaro.Internal("failed to unmarshal coordinate", err)
		}
	}
	d.RepairedImage = textPtr(repairedImage)
	d.ConfirmedImage = textPtr(confirmedImage)
	d.Signature = textPtr(signature)
	d.RejectedReason = textPtr(rejectedReason)
	d.RepairedAt = timePtr(repairedAt)
	d.ConfirmedAt = timePtr(confirmedAt)
	d.AssignedPartnerID = uuidPtr(partnerID)
	d.AssignedEngineerID = uuidPtr(engineerID)

	d.Complex = &hajaro.Complex{ID: d.ComplexID, ContractorID: d.ContractorID, Name: complexName, Address: complexAddress}
	d.Unit = &hajaro.Unit{ID: d.UnitID, ComplexID: d.ComplexID, Dong: dong, Ho: ho}
	if residentName.Valid {
		d.Resident = &hajaro.User{ID: d.ResidentID, Name: residentName.String, Email: residentEmail.String, Role: hajaro.RoleResident}
	}
	// Absent partner and engineer stay nil and serialize as JSON null.
	if d.AssignedPartnerID != nil && partnerName.Valid {
		d.Partner = &hajaro.Partner{ID: *d.AssignedPartnerID, Name: partnerName.String}
	}
	if d.AssignedEngineerID != nil && engineerName.Valid {
		d.Engineer = &hajaro.User{ID: *d.AssignedEngineerID, Name: engineerName.String, Role: hajaro.RoleEngineer}
	}
	return &d, nil
}

// getDefect reads a defect without joins, for transition validation.
func (s *DefectService) getDefect(ctx context.Context, id uuid.UUID) (*hajaro.Defect, error) {
	query := `SELECT ` + defectColumns + ` FROM defects d WHERE d.id = $1`
	d, err := scanDefect(s.db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("defect not found")
		}
		return nil, hajaro.Internal("failed to find defect", err)
	}
	return d, nil
}

// scanDefect scans the base defect columns from a row.
func scanDefect(row pgx.Row) (*hajaro.Defect, error) {
	var d hajaro.Defect
	var coordinate []byte
	var repairedImage, confirmedImage, signature, rejectedReason pgtype.Text
	var repairedAt, confirmedAt pgtype.Timestamptz
	var partnerID, engineerID pgtype.UUID

	err := row.Scan(
		&d.ID, &d.ContractorID, &d.ComplexID, &d.UnitID, &d.ResidentID,
		&d.Address, &d.Location, &d.Work.Type, &d.Work.Detail, &d.Work.AdditionalInfo,
		&coordinate, &d.Status, &d.RequestedImage, &repairedImage, &confirmedImage,
		&d.RequestedAt, &repairedAt, &confirmedAt,
		&partnerID, &engineerID, &signature, &rejectedReason,
	)
	if err != nil {
		return nil, err
	}
	if len(coordinate) > 0 {
		d.Coordinate = &hajaro.Coordinate{}
		if err := json.Unmarshal(coordinate, d.Coordinate); err != nil {
			return nil, fmt.Errorf("failed to unmarshal coordinate: %w", err)
		}
	}
	d.RepairedImage = textPtr(repairedImage)
	d.ConfirmedImage = textPtr(confirmedImage)
	d.Signature = textPtr(signature)
	d.RejectedReason = textPtr(rejectedReason)
	d.RepairedAt = timePtr(repairedAt)
	d.ConfirmedAt = timePtr(confirmedAt)
	d.AssignedPartnerID = uuidPtr(partnerID)
	d.AssignedEngineerID = uuidPtr(engineerID)
	return &d, nil
}

// AssignPartner moves a defect onto a partner on behalf of its contractor.
func (s *DefectService) AssignPartner(ctx context.Context, contractorID, defectID, partnerID uuid.UUID) error {
	d, err := s.getDefect(ctx, defectID)
	if err != nil {
		return err
	}
	if d.ContractorID != contractorID {
		return hajaro.NotFound("defect not found")
	}
	if !hajaro.CanTransition(hajaro.RoleContractor, d.Status, hajaro.DefectStatusPartnerAssigned) {
		return hajaro.NotAllowed("cannot assign a partner to a %s defect", d.Status)
	}

	sources := hajaro.TransitionSources(hajaro.RoleContractor, hajaro.DefectStatusPartnerAssigned)
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE defects
		SET status = $1, assigned_partner_id = $2
		WHERE id = $3 AND contractor_id = $4 AND status = ANY($5)
	`, hajaro.DefectStatusPartnerAssigned, partnerID, defectID, contractorID, statusStrings(sources))
	if err != nil {
		return hajaro.Internal("failed to assign partner", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.Conflict("defect was modified concurrently")
	}
	return nil
}

// AssignEngineer schedules a defect with a specific engineer.
func (s *DefectService) AssignEngineer(ctx context.Context, partnerID, defectID, engineerID uuid.UUID) error {
	d, err := s.getDefect(ctx, defectID)
	if err != nil {
		return err
	}
	if d.AssignedPartnerID == nil || *d.AssignedPartnerID != partnerID {
		return hajaro.NotFound("defect not found")
	}
	if !hajaro.CanTransition(hajaro.RolePartnerAdmin, d.Status, hajaro.DefectStatusScheduled) {
		return hajaro.NotAllowed("cannot schedule a %s defect", d.Status)
	}

	engineer, err := s.db.UserService.FindUserByID(ctx, engineerID)
	if err != nil {
		return err
	}
	if !engineer.IsEngineer() || !engineer.BelongsToPartner(partnerID) {
		return hajaro.NotFound("engineer not found")
	}

	tag, err := s.db.pool.Exec(ctx, `
		UPDATE defects
		SET status = $1, assigned_engineer_id = $2
		WHERE id = $3 AND assigned_partner_id = $4 AND status = $5
	`, hajaro.DefectStatusScheduled, engineerID, defectID, partnerID, hajaro.DefectStatusPartnerAssigned)
	if err != nil {
		return hajaro.Internal("failed to assign engineer", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.Conflict("defect was modified concurrently")
	}
	return nil
}

// RejectByPartnerAdmin declines the whole assignment and clears the engineer.
func (s *DefectService) RejectByPartnerAdmin(ctx context.Context, partnerID, defectID uuid.UUID) error {
	d, err := s.getDefect(ctx, defectID)
	if err != nil {
		return err
	}
	if d.AssignedPartnerID == nil || *d.AssignedPartnerID != partnerID {
		return hajaro.NotFound("defect not found")
	}
	if !hajaro.InBucket(hajaro.RolePartnerAdmin, hajaro.BucketRejectAvailable, d.Status) {
		return hajaro.Forbidden("a %s defect cannot be rejected", d.Status)
	}

	sources := hajaro.TransitionSources(hajaro.RolePartnerAdmin, hajaro.DefectStatusRejected)
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE defects
		SET status = $1, assigned_engineer_id = NULL
		WHERE id = $2 AND assigned_partner_id = $3 AND status = ANY($4)
	`, hajaro.DefectStatusRejected, defectID, partnerID, statusStrings(sources))
	if err != nil {
		return hajaro.Internal("failed to reject defect", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.Conflict("defect was modified concurrently")
	}
	return nil
}

// RejectByEngineer declines one task. The engineer assignment is kept so the
// partner can see whose task was rejected.
func (s *DefectService) RejectByEngineer(ctx context.Context, engineerID, defectID uuid.UUID, reason string) error {
	d, err := s.getDefect(ctx, defectID)
	if err != nil {
		return err
	}
	if d.AssignedEngineerID == nil || *d.AssignedEngineerID != engineerID {
		return hajaro.NotFound("defect not found")
	}
	if d.Status != hajaro.DefectStatusScheduled {
		return hajaro.NotAllowed("cannot reject a %s task", d.Status)
	}

	tag, err := s.db.pool.Exec(ctx, `
		UPDATE defects
		SET status = $1, rejected_reason = $2
		WHERE id = $3 AND assigned_engineer_id = $4 AND status = $5
	`, hajaro.DefectStatusRejected, reason, defectID, engineerID, hajaro.DefectStatusScheduled)
	if err != nil {
		return hajaro.Internal("failed to reject task", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.Conflict("defect was modified concurrently")
	}
	return nil
}

// MarkRepaired completes a scheduled task, stamping the repaired image and
// timestamp. RepairedAt is written once and never reset.
func (s *DefectService) MarkRepaired(ctx context.Context, engineerID, defectID uuid.UUID, repairedImage string) error {
	d, err := s.getDefect(ctx, defectID)
	if err != nil {
		return err
	}
	if d.AssignedEngineerID == nil || *d.AssignedEngineerID != engineerID {
		return hajaro.NotFound("defect not found")
	}
	if !hajaro.CanTransition(hajaro.RoleEngineer, d.Status, hajaro.DefectStatusRepaired) {
		return hajaro.NotAllowed("cannot repair a %s defect", d.Status)
	}

	tag, err := s.db.pool.Exec(ctx, `
		UPDATE defects
		SET status = $1, repaired_image = $2, repaired_at = NOW()
		WHERE id = $3 AND assigned_engineer_id = $4 AND status = $5
	`, hajaro.DefectStatusRepaired, repairedImage, defectID, engineerID, hajaro.DefectStatusScheduled)
	if err != nil {
		return hajaro.Internal("failed to mark defect repaired", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.Conflict("defect was modified concurrently")
	}
	return nil
}

// ConfirmByResident records the resident's sign-off on a repair.
func (s *DefectService) ConfirmByResident(ctx context.Context, residentID, defectID uuid.UUID, signature string) error {
	d, err := s.getDefect(ctx, defectID)
	if err != nil {
		return err
	}
	if d.ResidentID != residentID {
		return hajaro.NotFound("defect not found")
	}
	if d.Status != hajaro.DefectStatusRepaired {
		return hajaro.NotAllowed("cannot confirm a %s defect", d.Status)
	}

	tag, err := s.db.pool.Exec(ctx, `
		UPDATE defects
		SET status = $1, signature = $2, confirmed_at = NOW()
		WHERE id = $3 AND resident_id = $4 AND status = $5
	`, hajaro.DefectStatusConfirmed, signature, defectID, residentID, hajaro.DefectStatusRepaired)
	if err != nil {
		return hajaro.Internal("failed to confirm defect", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.Conflict("defect was modified concurrently")
	}
	return nil
}

// CancelByResident withdraws a report while it is still cancelable.
func (s *DefectService) CancelByResident(ctx context.Context, residentID, defectID uuid.UUID) error {
	d, err := s.getDefect(ctx, defectID)
	if err != nil {
		return err
	}
	if d.ResidentID != residentID {
		return hajaro.NotFound("defect not found")
	}
	if !hajaro.InBucket(hajaro.RoleResident, hajaro.BucketCancelAvailable, d.Status) {
		return hajaro.NotAllowed("cannot cancel a %s defect", d.Status)
	}

	sources := hajaro.TransitionSources(hajaro.RoleResident, hajaro.DefectStatusCanceled)
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE defects
		SET status = $1
		WHERE id = $2 AND resident_id = $3 AND status = ANY($4)
	`, hajaro.DefectStatusCanceled, defectID, residentID, statusStrings(sources))
	if err != nil {
		return hajaro.Internal("failed to cancel defect", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.Conflict("defect was modified concurrently")
	}
	return nil
}

// FindDefects runs the dynamic unit-grouped query. The owner scope is
// mandatory; page counts come from a separate COUNT(DISTINCT unit) query
// over the same filter.
func (s *DefectService) FindDefects(ctx context.Context, filter hajaro.DefectFilter) (*hajaro.DefectPage, error) {
	where, args, err := buildDefectWhere(filter)
	if err != nil {
		return nil, err
	}

	countQuery := `
		SELECT COUNT(DISTINCT d.unit_id)
		FROM defects d
		JOIN units u ON u.id = d.unit_id
		JOIN complexes c ON c.id = d.complex_id
	` + where
	var unitCount int
	if err := s.db.pool.QueryRow(ctx, countQuery, args...).Scan(&unitCount); err != nil {
		return nil, hajaro.Internal("failed to count defects", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	totalPages := (unitCount + hajaro.DefaultPageSize - 1) / hajaro.DefaultPageSize

	// Page of units first, then the defects within them. Sorting by
	// complex name, dong, ho keeps pagination deterministic.
	unitQuery := fmt.Sprintf(`
		SELECT d.unit_id
		FROM defects d
		JOIN units u ON u.id = d.unit_id
		JOIN complexes c ON c.id = d.complex_id
		%s
		GROUP BY d.unit_id, c.name, u.dong, u.ho
		ORDER BY c.name, u.dong, u.ho
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	unitArgs := append(append([]any{}, args...), hajaro.DefaultPageSize, (page-1)*hajaro.DefaultPageSize)

	rows, err := s.db.pool.Query(ctx, unitQuery, unitArgs...)
	if err != nil {
		return nil, hajaro.Internal("failed to query defect units", err)
	}
	defer rows.Close()

	var unitIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, hajaro.Internal("failed to scan unit id", err)
		}
		unitIDs = append(unitIDs, id)
	}
	if len(unitIDs) == 0 {
		return &hajaro.DefectPage{Groups: []*hajaro.UnitDefectGroup{}, TotalPages: totalPages}, nil
	}

	groups, err := s.fetchUnitGroups(ctx, where, args, unitIDs)
	if err != nil {
		return nil, err
	}
	return &hajaro.DefectPage{Groups: groups, TotalPages: totalPages}, nil
}

// fetchUnitGroups loads the defects of the paged units with their joined
// reference data and groups them per unit, preserving the page order.
func (s *DefectService) fetchUnitGroups(ctx context.Context, where string, args []any, unitIDs []uuid.UUID) ([]*hajaro.UnitDefectGroup, error) {
	query := fmt.Sprintf(`
		SELECT `+defectColumns+`,
			c.name, c.address,
			u.dong, u.ho,
			r.name, r.email,
			p.name,
			e.name
		FROM defects d
		JOIN units u ON u.id = d.unit_id
		JOIN complexes c ON c.id = d.complex_id
		LEFT JOIN users r ON r.id = d.resident_id
		LEFT JOIN partners p ON p.id = d.assigned_partner_id
		LEFT JOIN users e ON e.id = d.assigned_engineer_id
		%s AND d.unit_id = ANY($%d)
		ORDER BY c.name, u.dong, u.ho, d.requested_at DESC
	`, where, len(args)+1)
	queryArgs := append(append([]any{}, args...), unitIDs)

	rows, err := s.db.pool.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, hajaro.Internal("failed to query defects", err)
	}
	defer rows.Close()

	groups := []*hajaro.UnitDefectGroup{}
	byUnit := make(map[uuid.UUID]*hajaro.UnitDefectGroup)
	for rows.Next() {
		var d hajaro.Defect
		var coordinate []byte
		var repairedImage, confirmedImage, signature, rejectedReason pgtype.Text
		var repairedAt, confirmedAt pgtype.Timestamptz
		var partnerID, engineerID pgtype.UUID
		var complexName, complexAddress, dong, ho string
		var residentName, residentEmail, partnerName, engineerName pgtype.Text

		err := rows.Scan(
			&d.ID, &d.ContractorID, &d.ComplexID, &d.UnitID, &d.ResidentID,
			&d.Address, &d.Location, &d.Work.Type, &d.Work.Detail, &d.Work.AdditionalInfo,
			&coordinate, &d.Status, &d.RequestedImage, &repairedImage, &confirmedImage,
			&d.RequestedAt, &repairedAt, &confirmedAt,
			&partnerID, &engineerID, &signature, &rejectedReason,
			&complexName, &complexAddress, &dong, &ho,
			&residentName, &residentEmail, &partnerName, &engineerName,
		)
		if err != nil {
			return nil, hajaro.Internal("failed to scan defect", err)
		}
		if len(coordinate) > 0 {
			d.Coordinate = &hajaro.Coordinate{}
			if err := json.Unmarshal(coordinate, d.Coordinate); err != nil {
				return nil, hajaro.Internal("failed to unmarshal coordinate", err)
			}
		}
		d.RepairedImage = textPtr(repairedImage)
		d.ConfirmedImage = textPtr(confirmedImage)
		d.Signature = textPtr(signature)
		d.RejectedReason = textPtr(rejectedReason)
		d.RepairedAt = timePtr(repairedAt)
		d.ConfirmedAt = timePtr(confirmedAt)
		d.AssignedPartnerID = uuidPtr(partnerID)
		d.AssignedEngineerID = uuidPtr(engineerID)
		if d.AssignedPartnerID != nil && partnerName.Valid {
			d.Partner = &hajaro.Partner{ID: *d.AssignedPartnerID, Name: partnerName.String}
		}
		if d.AssignedEngineerID != nil && engineerName.Valid {
			d.Engineer = &hajaro.User{ID: *d.AssignedEngineerID, Name: engineerName.String, Role: hajaro.RoleEngineer}
		}

		group, ok := byUnit[d.UnitID]
		if !ok {
			group = &hajaro.UnitDefectGroup{
				Complex: &hajaro.Complex{ID: d.ComplexID, ContractorID: d.ContractorID, Name: complexName, Address: complexAddress},
				Unit:    &hajaro.Unit{ID: d.UnitID, ComplexID: d.ComplexID, Dong: dong, Ho: ho},
			}
			if residentName.Valid {
				group.Resident = &hajaro.User{ID: d.ResidentID, Name: residentName.String, Email: residentEmail.String, Role: hajaro.RoleResident}
			}
			byUnit[d.UnitID] = group
			groups = append(groups, group)
		}
		group.Defects = append(group.Defects, &d)
	}
	return groups, nil
}

// buildDefectWhere assembles the WHERE clause from the filter. Exactly one
// owner scope is required so no query can cross tenants. Dong and ho values
// that fail to parse as integers are dropped; if nothing survives, the
// field is not filtered at all.
func buildDefectWhere(filter hajaro.DefectFilter) (string, []any, error) {
	where := " WHERE 1=1"
	args := []any{}

	ownerCount := 0
	if filter.ContractorID != nil {
		ownerCount++
		args = append(args, *filter.ContractorID)
		where += fmt.Sprintf(" AND d.contractor_id = $%d", len(args))
	}
	if filter.PartnerID != nil {
		ownerCount++
		args = append(args, *filter.PartnerID)
		where += fmt.Sprintf(" AND d.assigned_partner_id = $%d", len(args))
	}
	if filter.ResidentID != nil {
		ownerCount++
		args = append(args, *filter.ResidentID)
		where += fmt.Sprintf(" AND d.resident_id = $%d", len(args))
	}
	if filter.EngineerID != nil {
		ownerCount++
		args = append(args, *filter.EngineerID)
		where += fmt.Sprintf(" AND d.assigned_engineer_id = $%d", len(args))
	}
	if ownerCount != 1 {
		return "", nil, hajaro.Invalid("defect filter requires exactly one owner scope")
	}

	if len(filter.ComplexIDs) > 0 {
		args = append(args, filter.ComplexIDs)
		where += fmt.Sprintf(" AND d.complex_id = ANY($%d)", len(args))
	}
	if dongs := numericStrings(filter.Dongs); len(dongs) > 0 {
		args = append(args, dongs)
		where += fmt.Sprintf(" AND u.dong = ANY($%d)", len(args))
	}
	if hos := numericStrings(filter.Hos); len(hos) > 0 {
		args = append(args, hos)
		where += fmt.Sprintf(" AND u.ho = ANY($%d)", len(args))
	}
	if filter.WorkType != nil {
		args = append(args, *filter.WorkType)
		where += fmt.Sprintf(" AND d.work_type = $%d", len(args))
	}

	statuses := append([]hajaro.DefectStatus{}, filter.Statuses...)
	if len(filter.Buckets) > 0 {
		expanded, err := hajaro.StatusesForBuckets(filter.Role, filter.Buckets)
		if err != nil {
			return "", nil, err
		}
		statuses = append(statuses, expanded...)
	}
	if len(statuses) > 0 {
		args = append(args, statusStrings(statuses))
		where += fmt.Sprintf(" AND d.status = ANY($%d)", len(args))
	}

	if filter.RequestedFrom != nil {
		args = append(args, *filter.RequestedFrom)
		where += fmt.Sprintf(" AND d.requested_at >= $%d", len(args))
	}
	if filter.RequestedTo != nil {
		args = append(args, *filter.RequestedTo)
		where += fmt.Sprintf(" AND d.requested_at <= $%d", len(args))
	}

	return where, args, nil
}

// numericStrings normalizes dong/ho filter values through the integer
// parse, returning them as strings for comparison against the text columns.
func numericStrings(values []string) []string {
	parsed := hajaro.ParseNumericFilter(values)
	if len(parsed) == 0 {
		return nil
	}
	out := make([]string, len(parsed))
	for i, n := range parsed {
		out[i] = fmt.Sprintf("%d", n)
	}
	return out
}

// statusStrings converts statuses for use with = ANY($n).
func statusStrings(statuses []hajaro.DefectStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// FindDefectsByUnit lists a resident's defects within their own unit.
func (s *DefectService) FindDefectsByUnit(ctx context.Context, residentID, unitID uuid.UUID) ([]*hajaro.Defect, error) {
	resident, err := s.db.UserService.FindUserByID(ctx, residentID)
	if err != nil {
		return nil, err
	}
	if resident.UnitID == nil || *resident.UnitID != unitID {
		return nil, hajaro.NotFound("unit not found")
	}

	query := `
		SELECT ` + defectColumns + `
		FROM defects d
		WHERE d.unit_id = $1 AND d.resident_id = $2
		ORDER BY d.requested_at DESC
	`
	rows, err := s.db.pool.Query(ctx, query, unitID, residentID)
	if err != nil {
		return nil, hajaro.Internal("failed to query defects", err)
	}
	defer rows.Close()

	defects := []*hajaro.Defect{}
	for rows.Next() {
		d, err := scanDefect(rows)
		if err != nil {
			return nil, hajaro.Internal("failed to scan defect", err)
		}
		defects = append(defects, d)
	}
	return defects, nil
}

// CountByStatusForPartner folds raw status counts into the partner-admin
// view buckets.
func (s *DefectService) CountByStatusForPartner(ctx context.Context, partnerID uuid.UUID) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM defects
		WHERE assigned_partner_id = $1
		GROUP BY status
	`
	rows, err := s.db.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, hajaro.Internal("failed to count defects", err)
	}
	defer rows.Close()

	counts := map[string]int{
		hajaro.BucketNotProcessed: 0,
		hajaro.BucketInProgress:   0,
		hajaro.BucketRejected:     0,
		hajaro.BucketRepaired:     0,
		hajaro.BucketConfirmed:    0,
	}
	for rows.Next() {
		var status hajaro.DefectStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, hajaro.Internal("failed to scan status count", err)
		}
		for bucket := range counts {
			if hajaro.InBucket(hajaro.RolePartnerAdmin, bucket, status) {
				counts[bucket] += count
			}
		}
	}
	return counts, nil
}

// FindCriticalDefects lists a contractor's rejected and unassigned defects.
func (s *DefectService) FindCriticalDefects(ctx context.Context, contractorID uuid.UUID, page int) ([]*hajaro.Defect, int, error) {
	critical := []string{
		string(hajaro.DefectStatusRejected),
		string(hajaro.DefectStatusPartnerNotAssigned),
	}

	var total int
	err := s.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM defects
		WHERE contractor_id = $1 AND status = ANY($2)
	`, contractorID, critical).Scan(&total)
	if err != nil {
		return nil, 0, hajaro.Internal("failed to count critical defects", err)
	}

	if page < 1 {
		page = 1
	}
	query := `
		SELECT ` + defectColumns + `
		FROM defects d
		WHERE d.contractor_id = $1 AND d.status = ANY($2)
		ORDER BY d.requested_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := s.db.pool.Query(ctx, query, contractorID, critical,
		hajaro.DefaultPageSize, (page-1)*hajaro.DefaultPageSize)
	if err != nil {
		return nil, 0, hajaro.Internal("failed to query critical defects", err)
	}
	defer rows.Close()

	defects := []*hajaro.Defect{}
	for rows.Next() {
		d, err := scanDefect(rows)
		if err != nil {
			return nil, 0, hajaro.Internal("failed to scan defect", err)
		}
		defects = append(defects, d)
	}
	totalPages := (total + hajaro.DefaultPageSize - 1) / hajaro.DefaultPageSize
	return defects, totalPages, nil
}

// CountRecentByDay groups recent defect creations by day and status.
func (s *DefectService) CountRecentByDay(ctx context.Context, days int) ([]*hajaro.DailyDefectCount, error) {
	if days <= 0 {
		days = 7
	}
	query := `
		SELECT date_trunc('day', requested_at) AS day, status, COUNT(*)
		FROM defects
		WHERE requested_at >= date_trunc('day', NOW()) - make_interval(days => $1 - 1)
		GROUP BY day, status
		ORDER BY day
	`
	rows, err := s.db.pool.Query(ctx, query, days)
	if err != nil {
		return nil, hajaro.Internal("failed to query daily counts", err)
	}
	defer rows.Close()

	var result []*hajaro.DailyDefectCount
	byDay := make(map[time.Time]*hajaro.DailyDefectCount)
	for rows.Next() {
		var day time.Time
		var status hajaro.DefectStatus
		var count int
		if err := rows.Scan(&day, &status, &count); err != nil {
			return nil, hajaro.Internal("failed to scan daily count", err)
		}
		entry, ok := byDay[day]
		if !ok {
			entry = &hajaro.DailyDefectCount{Date: day, Counts: make(map[hajaro.DefectStatus]int)}
			byDay[day] = entry
			result = append(result, entry)
		}
		entry.Counts[status] += count
		entry.Total += count
	}
	return result, nil
}

// FindEngineerComplexes lists the complexes where an engineer has tasks.
func (s *DefectService) FindEngineerComplexes(ctx context.Context, engineerID uuid.UUID) ([]*hajaro.EngineerComplexSummary, error) {
	query := `
		SELECT c.id, c.contractor_id, c.name, c.address, c.created_at,
			COUNT(*) FILTER (WHERE d.status = 'SCHEDULED'),
			COUNT(*) FILTER (WHERE d.status IN ('REPAIRED', 'CONFIRMED'))
		FROM defects d
		JOIN complexes c ON c.id = d.complex_id
		WHERE d.assigned_engineer_id = $1
		GROUP BY c.id, c.contractor_id, c.name, c.address, c.created_at
		ORDER BY c.name
	`
	rows, err := s.db.pool.Query(ctx, query, engineerID)
	if err != nil {
		return nil, hajaro.Internal("failed to query engineer complexes", err)
	}
	defer rows.Close()

	summaries := []*hajaro.EngineerComplexSummary{}
	for rows.Next() {
		var cx hajaro.Complex
		var sum hajaro.EngineerComplexSummary
		err := rows.Scan(&cx.ID, &cx.ContractorID, &cx.Name, &cx.Address, &cx.CreatedAt,
			&sum.ScheduledCount, &sum.RepairedCount)
		if err != nil {
			return nil, hajaro.Internal("failed to scan complex summary", err)
		}
		sum.Complex = &cx
		summaries = append(summaries, &sum)
	}
	return summaries, nil
}

// FindEngineerTasks groups an engineer's tasks in one complex by dong then
// ho, with per-bucket counts for the task list screen.
func (s *DefectService) FindEngineerTasks(ctx context.Context, engineerID, complexID uuid.UUID, filter hajaro.DefectFilter) ([]*hajaro.DongTaskGroup, error) {
	filter.EngineerID = &engineerID
	filter.ContractorID = nil
	filter.PartnerID = nil
	filter.ResidentID = nil
	filter.ComplexIDs = []uuid.UUID{complexID}
	filter.Role = hajaro.RoleEngineer

	where, args, err := buildDefectWhere(filter)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + defectColumns + `, u.dong, u.ho
		FROM defects d
		JOIN units u ON u.id = d.unit_id
		JOIN complexes c ON c.id = d.complex_id
	` + where + `
		ORDER BY u.dong, u.ho, d.requested_at DESC
	`
	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, hajaro.Internal("failed to query engineer tasks", err)
	}
	defer rows.Close()

	groups := []*hajaro.DongTaskGroup{}
	var currentDong *hajaro.DongTaskGroup
	hoByUnit := make(map[uuid.UUID]*hajaro.HoTaskGroup)
	for rows.Next() {
		var d hajaro.Defect
		var coordinate []byte
		var repairedImage, confirmedImage, signature, rejectedReason pgtype.Text
		var repairedAt, confirmedAt pgtype.Timestamptz
		var partnerID, engID pgtype.UUID
		var dong, ho string

		err := rows.Scan(
			&d.ID, &d.ContractorID, &d.ComplexID, &d.UnitID, &d.ResidentID,
			&d.Address, &d.Location, &d.Work.Type, &d.Work.Detail, &d.Work.AdditionalInfo,
			&coordinate, &d.Status, &d.RequestedImage, &repairedImage, &confirmedImage,
			&d.RequestedAt, &repairedAt, &confirmedAt,
			&partnerID, &engID, &signature, &rejectedReason,
			&dong, &ho,
		)
		if err != nil {
			return nil, hajaro.Internal("failed to scan task", err)
		}
		if len(coordinate) > 0 {
			d.Coordinate = &hajaro.Coordinate{}
			if err := json.Unmarshal(coordinate, d.Coordinate); err != nil {
				return nil, hajaro.Internal("failed to unmarshal coordinate", err)
			}
		}
		d.RepairedImage = textPtr(repairedImage)
		d.ConfirmedImage = textPtr(confirmedImage)
		d.Signature = textPtr(signature)
		d.RejectedReason = textPtr(rejectedReason)
		d.RepairedAt = timePtr(repairedAt)
		d.ConfirmedAt = timePtr(confirmedAt)
		d.AssignedPartnerID = uuidPtr(partnerID)
		d.AssignedEngineerID = uuidPtr(engID)

		if currentDong == nil || currentDong.Dong != dong {
			currentDong = &hajaro.DongTaskGroup{Dong: dong}
			groups = append(groups, currentDong)
		}
		hoGroup, ok := hoByUnit[d.UnitID]
		if !ok {
			hoGroup = &hajaro.HoTaskGroup{Ho: ho, UnitID: d.UnitID}
			hoByUnit[d.UnitID] = hoGroup
			currentDong.Hos = append(currentDong.Hos, hoGroup)
		}
		switch d.Status {
		case hajaro.DefectStatusScheduled:
			hoGroup.ScheduledCount++
		case hajaro.DefectStatusRepaired, hajaro.DefectStatusConfirmed:
			hoGroup.RepairedCount++
		case hajaro.DefectStatusRejected:
			hoGroup.RejectedCount++
		}
		hoGroup.Defects = append(hoGroup.Defects, &d)
	}
	return groups, nil
}
