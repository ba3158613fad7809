// Package postgres provides PostgreSQL implementations of domain service interfaces.
package postgres

import (
	"github.com/banseok/hajaro"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the database connection pool and exposes domain services.
type DB struct {
	pool *pgxpool.Pool

	// Domain services (initialized in NewDB)
	DefectService       hajaro.DefectService
	AssociationService  hajaro.AssociationService
	ApartmentService    hajaro.ApartmentService
	ContractorService   hajaro.ContractorService
	PartnerService      hajaro.PartnerService
	UserService         hajaro.UserService
	NotificationService hajaro.NotificationService
	DeviceTokenService  hajaro.DeviceTokenService
	SessionService      hajaro.SessionService
}

// NewDB creates a new database wrapper with all services initialized.
func NewDB(pool *pgxpool.Pool) *DB {
	db := &DB{
		pool: pool,
	}

	// Initialize services with reference back to DB
	db.AssociationService = &AssociationService{db: db}
	db.DefectService = &DefectService{db: db}
	db.ApartmentService = &ApartmentService{db: db}
	db.ContractorService = &ContractorService{db: db}
	db.PartnerService = &PartnerService{db: db}
	db.UserService = &UserService{db: db}
	db.NotificationService = &NotificationService{db: db}
	db.DeviceTokenService = &DeviceTokenService{db: db}
	db.SessionService = &SessionService{db: db}

	return db
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer using service methods.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}
