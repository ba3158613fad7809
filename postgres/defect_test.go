package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the migrated test database. Integration tests are
// skipped unless GOOSE_DBSTRING points at one.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	connString := os.Getenv("GOOSE_DBSTRING")
	if connString == "" {
		t.Skip("GOOSE_DBSTRING not set, skipping integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return NewDB(pool)
}

// fixture seeds one contractor with a complex of two units, a resident in
// each, and one partner with an engineer. Everything is removed on cleanup.
type fixture struct {
	db *DB

	contractorID uuid.UUID
	complexID    uuid.UUID
	unitID       uuid.UUID // dong 101, ho 1203
	unit2ID      uuid.UUID // dong 101, ho 1204
	partnerID    uuid.UUID

	resident  *hajaro.User
	resident2 *hajaro.User
	engineer  *hajaro.User
}

func newFixture(t *testing.T, db *DB) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{db: db}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO contractors (name) VALUES ('반석건설') RETURNING id`,
	).Scan(&f.contractorID)
	require.NoError(t, err)

	err = db.pool.QueryRow(ctx,
		`INSERT INTO partners (name, phone) VALUES ('한빛도배', '02-1234-5678') RETURNING id`,
	).Scan(&f.partnerID)
	require.NoError(t, err)

	err = db.pool.QueryRow(ctx,
		`INSERT INTO complexes (contractor_id, name, address) VALUES ($1, '반석자이', '대전 유성구') RETURNING id`,
		f.contractorID,
	).Scan(&f.complexID)
	require.NoError(t, err)

	err = db.pool.QueryRow(ctx,
		`INSERT INTO units (complex_id, dong, ho) VALUES ($1, '101', '1203') RETURNING id`,
		f.complexID,
	).Scan(&f.unitID)
	require.NoError(t, err)

	err = db.pool.QueryRow(ctx,
		`INSERT INTO units (complex_id, dong, ho) VALUES ($1, '101', '1204') RETURNING id`,
		f.complexID,
	).Scan(&f.unit2ID)
	require.NoError(t, err)

	_, err = db.pool.Exec(ctx,
		`INSERT INTO partnerships (contractor_id, partner_id) VALUES ($1, $2)`,
		f.contractorID, f.partnerID,
	)
	require.NoError(t, err)

	f.resident = f.createUser(t, hajaro.RoleResident, &f.unitID)
	f.resident2 = f.createUser(t, hajaro.RoleResident, &f.unit2ID)
	f.engineer = f.createUser(t, hajaro.RoleEngineer, nil)

	t.Cleanup(func() {
		cleanupCtx := context.Background()
		_, _ = db.pool.Exec(cleanupCtx, `DELETE FROM defects WHERE contractor_id = $1`, f.contractorID)
		_, _ = db.pool.Exec(cleanupCtx, `DELETE FROM users WHERE id = ANY($1)`,
			[]uuid.UUID{f.resident.ID, f.resident2.ID, f.engineer.ID})
		_, _ = db.pool.Exec(cleanupCtx, `DELETE FROM contractors WHERE id = $1`, f.contractorID)
		_, _ = db.pool.Exec(cleanupCtx, `DELETE FROM partners WHERE id = $1`, f.partnerID)
	})
	return f
}

func (f *fixture) createUser(t *testing.T, role hajaro.Role, unitID *uuid.UUID) *hajaro.User {
	t.Helper()
	user := &hajaro.User{
		Email:       fmt.Sprintf("%s-%s@example.com", role, uuid.New()),
		Name:        "테스트",
		Role:        role,
		UnitID:      unitID,
		ReceivePush: true,
	}
	if role == hajaro.RoleEngineer {
		user.PartnerID = &f.partnerID
	}
	require.NoError(t, f.db.UserService.CreateUser(context.Background(), user, "test-password-1"))
	return user
}

// assignDuty scopes the partner to the given work type at unit 1203.
func (f *fixture) assignDuty(t *testing.T, workType string) {
	t.Helper()
	require.NoError(t, f.db.AssociationService.AssignDuty(context.Background(), &hajaro.Association{
		ContractorID: f.contractorID,
		PartnerID:    f.partnerID,
		UnitID:       f.unitID,
		WorkTypes:    []string{workType},
	}))
}

func (f *fixture) newDefect(resident *hajaro.User) *hajaro.Defect {
	return &hajaro.Defect{
		UnitID:         *resident.UnitID,
		ResidentID:     resident.ID,
		Location:       "안방",
		Work:           hajaro.Work{Type: "도배", Detail: "찢김"},
		RequestedImage: "requested/test.jpg",
	}
}

func TestDefectService_CreateDefect_DutyAssignsPartner(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	f.assignDuty(t, "도배")
	ctx := context.Background()

	defect := f.newDefect(f.resident)
	require.NoError(t, db.DefectService.CreateDefect(ctx, defect))

	assert.Equal(t, hajaro.DefectStatusPartnerAssigned, defect.Status)
	require.NotNil(t, defect.AssignedPartnerID)
	assert.Equal(t, f.partnerID, *defect.AssignedPartnerID)
	assert.Equal(t, f.contractorID, defect.ContractorID)
	assert.Equal(t, f.complexID, defect.ComplexID)
	assert.False(t, defect.RequestedAt.IsZero())
}

func TestDefectService_CreateDefect_NoDuty(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	defect := f.newDefect(f.resident)
	require.NoError(t, db.DefectService.CreateDefect(ctx, defect))

	assert.Equal(t, hajaro.DefectStatusPartnerNotAssigned, defect.Status)
	assert.Nil(t, defect.AssignedPartnerID)
	// Falls back to the complex's contractor
	assert.Equal(t, f.contractorID, defect.ContractorID)
}

func TestDefectService_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	defect := f.newDefect(f.resident)
	require.NoError(t, db.DefectService.CreateDefect(ctx, defect))
	require.Equal(t, hajaro.DefectStatusPartnerNotAssigned, defect.Status)

	require.NoError(t, db.DefectService.AssignPartner(ctx, f.contractorID, defect.ID, f.partnerID))
	require.NoError(t, db.DefectService.AssignEngineer(ctx, f.partnerID, defect.ID, f.engineer.ID))
	require.NoError(t, db.DefectService.MarkRepaired(ctx, f.engineer.ID, defect.ID, "repaired/after.jpg"))
	require.NoError(t, db.DefectService.ConfirmByResident(ctx, f.resident.ID, defect.ID, "signature/sign.png"))

	got, err := db.DefectService.FindDefectByID(ctx, defect.ID)
	require.NoError(t, err)
	assert.Equal(t, hajaro.DefectStatusConfirmed, got.Status)
	require.NotNil(t, got.RepairedImage)
	assert.Equal(t, "repaired/after.jpg", *got.RepairedImage)
	require.NotNil(t, got.Signature)
	assert.Equal(t, "signature/sign.png", *got.Signature)
	assert.NotNil(t, got.RepairedAt)
	assert.NotNil(t, got.ConfirmedAt)
	require.NotNil(t, got.AssignedEngineerID)
	assert.Equal(t, f.engineer.ID, *got.AssignedEngineerID)

	// Terminal: no further transition is accepted
	err = db.DefectService.CancelByResident(ctx, f.resident.ID, defect.ID)
	assert.Equal(t, hajaro.ENOTALLOWED, hajaro.ErrorCode(err))
}

func TestDefectService_RejectByEngineer_KeepsAssignment(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	defect := f.newDefect(f.resident)
	require.NoError(t, db.DefectService.CreateDefect(ctx, defect))
	require.NoError(t, db.DefectService.AssignPartner(ctx, f.contractorID, defect.ID, f.partnerID))
	require.NoError(t, db.DefectService.AssignEngineer(ctx, f.partnerID, defect.ID, f.engineer.ID))

	require.NoError(t, db.DefectService.RejectByEngineer(ctx, f.engineer.ID, defect.ID, "자재 수급 불가"))

	got, err := db.DefectService.FindDefectByID(ctx, defect.ID)
	require.NoError(t, err)
	assert.Equal(t, hajaro.DefectStatusRejected, got.Status)
	require.NotNil(t, got.RejectedReason)
	assert.Equal(t, "자재 수급 불가", *got.RejectedReason)
	// The engineer stays on the record so the partner can see whose task it was
	require.NotNil(t, got.AssignedEngineerID)
	assert.Equal(t, f.engineer.ID, *got.AssignedEngineerID)
}

func TestDefectService_RejectByPartnerAdmin_ClearsEngineer(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	defect := f.newDefect(f.resident)
	require.NoError(t, db.DefectService.CreateDefect(ctx, defect))
	require.NoError(t, db.DefectService.AssignPartner(ctx, f.contractorID, defect.ID, f.partnerID))
	require.NoError(t, db.DefectService.AssignEngineer(ctx, f.partnerID, defect.ID, f.engineer.ID))

	require.NoError(t, db.DefectService.RejectByPartnerAdmin(ctx, f.partnerID, defect.ID))

	got, err := db.DefectService.FindDefectByID(ctx, defect.ID)
	require.NoError(t, err)
	assert.Equal(t, hajaro.DefectStatusRejected, got.Status)
	assert.Nil(t, got.AssignedEngineerID)
}

func TestDefectService_ConcurrentRepairAndReject(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	defect := f.newDefect(f.resident)
	require.NoError(t, db.DefectService.CreateDefect(ctx, defect))
	require.NoError(t, db.DefectService.AssignPartner(ctx, f.contractorID, defect.ID, f.partnerID))
	require.NoError(t, db.DefectService.AssignEngineer(ctx, f.partnerID, defect.ID, f.engineer.ID))

	var wg sync.WaitGroup
	var repairErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		repairErr = db.DefectService.MarkRepaired(ctx, f.engineer.ID, defect.ID, "repaired/after.jpg")
	}()
	go func() {
		defer wg.Done()
		rejectErr = db.DefectService.RejectByPartnerAdmin(ctx, f.partnerID, defect.ID)
	}()
	wg.Wait()

	// Exactly one transition wins; the loser gets a typed error, never a
	// silent overwrite.
	if repairErr == nil {
		require.Error(t, rejectErr)
	} else {
		require.NoError(t, rejectErr)
	}

	got, err := db.DefectService.FindDefectByID(ctx, defect.ID)
	require.NoError(t, err)
	if repairErr == nil {
		assert.Equal(t, hajaro.DefectStatusRepaired, got.Status)
	} else {
		assert.Equal(t, hajaro.DefectStatusRejected, got.Status)
	}
}

func TestDefectService_FindDefects_HoFilter(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	require.NoError(t, db.DefectService.CreateDefect(ctx, f.newDefect(f.resident)))
	require.NoError(t, db.DefectService.CreateDefect(ctx, f.newDefect(f.resident2)))

	page, err := db.DefectService.FindDefects(ctx, hajaro.DefectFilter{
		ContractorID: &f.contractorID,
		Role:         hajaro.RoleContractor,
		Hos:          []string{"1203"},
		Page:         1,
	})
	require.NoError(t, err)
	require.Len(t, page.Groups, 1)
	assert.Equal(t, "1203", page.Groups[0].Unit.Ho)
	require.Len(t, page.Groups[0].Defects, 1)

	// Non-numeric ho values are dropped, degrading to no ho filter at all
	page, err = db.DefectService.FindDefects(ctx, hajaro.DefectFilter{
		ContractorID: &f.contractorID,
		Role:         hajaro.RoleContractor,
		Hos:          []string{"천삼호"},
		Page:         1,
	})
	require.NoError(t, err)
	assert.Len(t, page.Groups, 2)
}

func TestDefectService_FindDefects_RequiresOwnerScope(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.DefectService.FindDefects(ctx, hajaro.DefectFilter{Role: hajaro.RoleContractor, Page: 1})
	assert.Equal(t, hajaro.EINVALID, hajaro.ErrorCode(err))
}
