package repo

import (
	"context"
	"time"

	"github.com/localserve/localserve-api/internal/domain"
)

// AccountRepository owns the users table. Challenge mutations are single
// conditional statements so concurrent issuance or consumption cannot lose
// updates or replay a consumed secret.
type AccountRepository interface {
	// Create inserts a new account inside one transaction: the duplicate
	// check and the insert are a single atomic unit, and a unique-index
	// violation still maps to domain.ErrConflict if two creates race.
	Create(ctx context.Context, acct *domain.Account) (*domain.Account, error)

	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Account, error)
	FindByEmailVerificationHash(ctx context.Context, hash string) (*domain.Account, error)

	List(ctx context.Context, limit, offset int) ([]domain.Account, error)
	UpdateProfile(ctx context.Context, id int64, req *domain.UpdateAccountRequest) (*domain.Account, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error

	// Challenge lifecycle. Set* overwrites any pending challenge of that
	// kind; Consume* succeeds only while the stored hash still matches.
	SetEmailVerification(ctx context.Context, id int64, hash string, expiresAt time.Time) error
	ConsumeEmailVerification(ctx context.Context, id int64, hash string) (bool, error)
	SetPhoneOTP(ctx context.Context, id int64, hash string, expiresAt time.Time) error
	ConsumePhoneOTP(ctx context.Context, id int64, hash string) (bool, error)
	SetPasswordReset(ctx context.Context, id int64, hash string, expiresAt time.Time) error
	// ResetPasswordByToken swaps the password hash and clears the reset
	// challenge in one statement, matched by token hash and unexpired
	// expiry. Returns nil when no pending challenge matches.
	ResetPasswordByToken(ctx context.Context, tokenHash, newPasswordHash string) (*domain.Account, error)
}

// ServiceRepository owns the catalog table.
type ServiceRepository interface {
	Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error)
	FindByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	SearchByName(ctx context.Context, name string) ([]domain.Service, error)
	Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Service, error)
	Delete(ctx context.Context, id int64) error
}

// CatalogCache is a read cache over the catalog listing. Implementations
// must fail open: a cache error never blocks a read.
type CatalogCache interface {
	GetList(ctx context.Context) ([]domain.Service, bool)
	SetList(ctx context.Context, services []domain.Service)
	Invalidate(ctx context.Context)
}
