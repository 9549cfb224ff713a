package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/repo"
)

type serviceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) repo.ServiceRepository {
	return &serviceRepository{pool: pool}
}

const serviceCols = `id, name, description, price, frequencies, unit, category, max_quantity, is_active, created_at, updated_at`

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.Price, &s.Frequencies, &s.Unit,
		&s.Category, &s.MaxQuantity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	const q = `
		INSERT INTO services (name, description, price, frequencies, unit, category, max_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q,
		req.Name, req.Description, req.Price, req.Frequencies, req.Unit, req.Category, req.MaxQuantity,
	))
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	return s, err
}

func (r *serviceRepository) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *serviceRepository) List(ctx context.Context) ([]domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services ORDER BY name`
	return r.queryServices(ctx, q)
}

func (r *serviceRepository) SearchByName(ctx context.Context, name string) ([]domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE name ILIKE '%' || $1 || '%' ORDER BY name`
	return r.queryServices(ctx, q, name)
}

func (r *serviceRepository) Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	const q = `
		UPDATE services
		SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			price = COALESCE($4, price),
			frequencies = COALESCE($5, frequencies),
			unit = COALESCE($6, unit),
			category = COALESCE($7, category),
			max_quantity = COALESCE($8, max_quantity),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q,
		id, req.Name, req.Description, req.Price, req.Frequencies, req.Unit, req.Category, req.MaxQuantity,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	return s, err
}

func (r *serviceRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.Service, error) {
	const q = `UPDATE services SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q, id, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *serviceRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM services WHERE id = $1`
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

func (r *serviceRepository) queryServices(ctx context.Context, q string, args ...any) ([]domain.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}

	return services, rows.Err()
}
