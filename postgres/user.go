package postgres

import (
	"context"
	"errors"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// UserService is the PostgreSQL implementation of hajaro.UserService.
type UserService struct {
	db *DB
}

var _ hajaro.UserService = (*UserService)(nil)

const userColumns = `
	id, email, name, phone, role, contractor_id, partner_id, unit_id,
	receive_push, created_at, updated_at`

// scanUser scans the user columns from a row.
func scanUser(row pgx.Row) (*hajaro.User, error) {
	var u hajaro.User
	var contractorID, partnerID, unitID pgtype.UUID
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role,
		&contractorID, &partnerID, &unitID,
		&u.ReceivePush, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ContractorID = uuidPtr(contractorID)
	u.PartnerID = uuidPtr(partnerID)
	u.UnitID = uuidPtr(unitID)
	return &u, nil
}

// FindUserByID retrieves a user by their ID.
func (s *UserService) FindUserByID(ctx context.Context, id uuid.UUID) (*hajaro.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("user not found")
		}
		return nil, hajaro.Internal("failed to find user", err)
	}
	return u, nil
}

// FindUserByEmail retrieves a user by email.
func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*hajaro.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.db.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.NotFound("user not found")
		}
		return nil, hajaro.Internal("failed to find user", err)
	}
	return u, nil
}

// CreateUser creates an account with a bcrypt-hashed password.
func (s *UserService) CreateUser(ctx context.Context, user *hajaro.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return hajaro.Invalid("invalid password: %v", err)
	}

	query := `
		INSERT INTO users (
			email, name, phone, role, contractor_id, partner_id, unit_id,
			receive_push, password_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err = s.db.pool.QueryRow(ctx, query,
		user.Email, user.Name, user.Phone, user.Role,
		user.ContractorID, user.PartnerID, user.UnitID,
		user.ReceivePush, hash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return hajaro.Conflict("email already registered")
		}
		if isForeignKeyViolation(err) {
			return hajaro.NotFound("referenced organization or unit does not exist")
		}
		return hajaro.Internal("failed to create user", err)
	}
	return nil
}

// Authenticate verifies an email/password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*hajaro.User, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE email = $1`
	row := s.db.pool.QueryRow(ctx, query, email)

	var u hajaro.User
	var contractorID, partnerID, unitID pgtype.UUID
	var hash string
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role,
		&contractorID, &partnerID, &unitID,
		&u.ReceivePush, &u.CreatedAt, &u.UpdatedAt,
		&hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.Unauthorized("invalid credentials")
		}
		return nil, hajaro.Internal("failed to authenticate", err)
	}
	if err := auth.VerifyPassword(password, hash); err != nil {
		return nil, hajaro.Unauthorized("invalid credentials")
	}
	u.ContractorID = uuidPtr(contractorID)
	u.PartnerID = uuidPtr(partnerID)
	u.UnitID = uuidPtr(unitID)
	return &u, nil
}

// FindEngineersByPartner lists a partner's engineer accounts.
func (s *UserService) FindEngineersByPartner(ctx context.Context, partnerID uuid.UUID) ([]*hajaro.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE partner_id = $1 AND role = $2
		ORDER BY name
	`
	return s.queryUsers(ctx, query, partnerID, hajaro.RoleEngineer)
}

// FindEmployeesByPartner lists all accounts of a partner.
func (s *UserService) FindEmployeesByPartner(ctx context.Context, partnerID uuid.UUID) ([]*hajaro.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE partner_id = $1
		ORDER BY role, name
	`
	return s.queryUsers(ctx, query, partnerID)
}

// UpdateReceivePush flips a user's push opt-in.
func (s *UserService) UpdateReceivePush(ctx context.Context, id uuid.UUID, receive bool) error {
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE users SET receive_push = $1, updated_at = NOW() WHERE id = $2
	`, receive, id)
	if err != nil {
		return hajaro.Internal("failed to update push setting", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.NotFound("user not found")
	}
	return nil
}

func (s *UserService) queryUsers(ctx context.Context, query string, args ...any) ([]*hajaro.User, error) {
	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, hajaro.Internal("failed to query users", err)
	}
	defer rows.Close()

	users := []*hajaro.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, hajaro.Internal("failed to scan user", err)
		}
		users = append(users, u)
	}
	return users, nil
}
