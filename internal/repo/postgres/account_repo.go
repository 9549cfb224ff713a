package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/repo"
)

type accountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) repo.AccountRepository {
	return &accountRepository{pool: pool}
}

const accountCols = `id, role, name, email, phone, password_hash, is_email_verified, is_phone_verified,
	email_verify_hash, email_verify_expires_at, phone_otp_hash, phone_otp_expires_at,
	reset_token_hash, reset_token_expires_at, addresses, notification_prefs, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var phone *string
	err := row.Scan(
		&a.ID, &a.Role, &a.Name, &a.Email, &phone, &a.PasswordHash, &a.IsEmailVerified, &a.IsPhoneVerified,
		&a.EmailVerification.Hash, &a.EmailVerification.ExpiresAt,
		&a.PhoneOTP.Hash, &a.PhoneOTP.ExpiresAt,
		&a.PasswordReset.Hash, &a.PasswordReset.ExpiresAt,
		&a.Addresses, &a.NotificationPrefs, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		a.Phone = *phone
	}
	return &a, nil
}

func nullablePhone(phone string) *string {
	if phone == "" {
		return nil
	}
	return &phone
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *accountRepository) Create(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	const checkQ = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 OR ($2::text IS NOT NULL AND phone = $2))`
	if err := tx.QueryRow(ctx, checkQ, acct.Email, nullablePhone(acct.Phone)).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrConflict
	}

	const insertQ = `
		INSERT INTO accounts (role, name, email, phone, password_hash,
			email_verify_hash, email_verify_expires_at, addresses, notification_prefs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + accountCols

	created, err := scanAccount(tx.QueryRow(ctx, insertQ,
		acct.Role, acct.Name, acct.Email, nullablePhone(acct.Phone), acct.PasswordHash,
		acct.EmailVerification.Hash, acct.EmailVerification.ExpiresAt,
		acct.Addresses, acct.NotificationPrefs,
	))
	if err != nil {
		// Two concurrent creates can both pass the check; the unique
		// indexes on email and phone decide the loser.
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *accountRepository) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE phone = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *accountRepository) FindByEmailVerificationHash(ctx context.Context, hash string) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE email_verify_hash = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q, hash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *accountRepository) List(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + accountCols + ` FROM accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}

	return accounts, rows.Err()
}

func (r *accountRepository) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateAccountRequest) (*domain.Account, error) {
	const q = `
		UPDATE accounts
		SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			addresses = COALESCE($5, addresses),
			notification_prefs = COALESCE($6, notification_prefs),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + accountCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q, id, req.Name, req.Email, req.Phone, req.Addresses, req.Prefs))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	return a, err
}

func (r *accountRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	const q = `UPDATE accounts SET role = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, role)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM accounts WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) SetEmailVerification(ctx context.Context, id int64, hash string, expiresAt time.Time) error {
	const q = `UPDATE accounts SET email_verify_hash = $2, email_verify_expires_at = $3, updated_at = now() WHERE id = $1`
	return r.setChallenge(ctx, q, id, hash, expiresAt)
}

func (r *accountRepository) ConsumeEmailVerification(ctx context.Context, id int64, hash string) (bool, error) {
	const q = `
		UPDATE accounts
		SET is_email_verified = true, email_verify_hash = NULL, email_verify_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND email_verify_hash = $2`
	return r.consumeChallenge(ctx, q, id, hash)
}

func (r *accountRepository) SetPhoneOTP(ctx context.Context, id int64, hash string, expiresAt time.Time) error {
	const q = `UPDATE accounts SET phone_otp_hash = $2, phone_otp_expires_at = $3, updated_at = now() WHERE id = $1`
	return r.setChallenge(ctx, q, id, hash, expiresAt)
}

func (r *accountRepository) ConsumePhoneOTP(ctx context.Context, id int64, hash string) (bool, error) {
	const q = `
		UPDATE accounts
		SET is_phone_verified = true, phone_otp_hash = NULL, phone_otp_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND phone_otp_hash = $2`
	return r.consumeChallenge(ctx, q, id, hash)
}

func (r *accountRepository) SetPasswordReset(ctx context.Context, id int64, hash string, expiresAt time.Time) error {
	const q = `UPDATE accounts SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now() WHERE id = $1`
	return r.setChallenge(ctx, q, id, hash, expiresAt)
}

func (r *accountRepository) ResetPasswordByToken(ctx context.Context, tokenHash, newPasswordHash string) (*domain.Account, error) {
	const q = `
		UPDATE accounts
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE reset_token_hash = $1 AND reset_token_expires_at > now()
		RETURNING ` + accountCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q, tokenHash, newPasswordHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *accountRepository) setChallenge(ctx context.Context, q string, id int64, hash string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, hash, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) consumeChallenge(ctx context.Context, q string, id int64, hash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, hash)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
