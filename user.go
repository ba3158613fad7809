package hajaro

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents an account in any of the five roles. Residents belong to
// a unit, contractor staff to a contractor, partner admins and engineers to
// a partner.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	ContractorID *uuid.UUID `json:"contractorId,omitempty"`
	PartnerID    *uuid.UUID `json:"partnerId,omitempty"`
	UnitID       *uuid.UUID `json:"unitId,omitempty"`
	ReceivePush  bool       `json:"receivePush"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsEngineer returns true for partner engineer accounts.
func (u *User) IsEngineer() bool {
	return u.Role == RoleEngineer
}

// BelongsToPartner returns true if the user works for the given partner.
func (u *User) BelongsToPartner(partnerID uuid.UUID) bool {
	return u.PartnerID != nil && *u.PartnerID == partnerID
}

// UserService defines operations for managing accounts.
type UserService interface {
	// FindUserByID retrieves a user by their ID.
	// Returns ENOTFOUND if the user does not exist.
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindUserByEmail retrieves a user by email.
	// Returns ENOTFOUND if the user does not exist.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// CreateUser creates a new account with a hashed password.
	// Returns ECONFLICT if the email is already registered.
	CreateUser(ctx context.Context, user *User, password string) error

	// Authenticate verifies an email/password pair.
	// Returns EUNAUTHORIZED on mismatch.
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// FindEngineersByPartner lists a partner's engineer accounts.
	FindEngineersByPartner(ctx context.Context, partnerID uuid.UUID) ([]*User, error)

	// FindEmployeesByPartner lists every account belonging to a partner,
	// admins and engineers alike.
	FindEmployeesByPartner(ctx context.Context, partnerID uuid.UUID) ([]*User, error)

	// UpdateReceivePush flips the resident's push opt-in.
	// Returns ENOTFOUND if the user does not exist.
	UpdateReceivePush(ctx context.Context, id uuid.UUID, receive bool) error
}
