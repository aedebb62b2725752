// Package instructor implements the read-mostly Instructor repository.
package instructor

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/records-backend/internal/adapter/postgres"
	"github.com/heartmarshall/records-backend/internal/domain"
)

const entity = "instructor"

// Repo provides instructor persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new instructor repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = "id, last_name, first_name, hire_date, created_at"

const getByIDSQL = `SELECT ` + columns + ` FROM instructors WHERE id = $1`

const listSQL = `SELECT ` + columns + ` FROM instructors ORDER BY last_name, first_name, id`

const createSQL = `
INSERT INTO instructors (last_name, first_name, hire_date)
VALUES ($1, $2, $3)
RETURNING ` + columns

// GetByID returns an instructor. Returns domain.ErrNotFound if absent.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Instructor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	inst, err := scanInstructor(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &inst, nil
}

// List returns all instructors ordered by name, for administrator lookups.
func (r *Repo) List(ctx context.Context) ([]domain.Instructor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	defer rows.Close()

	result := []domain.Instructor{}
	for rows.Next() {
		inst, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("list instructors: %w", err)
		}
		result = append(result, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}

	return result, nil
}

// Create inserts an instructor.
func (r *Repo) Create(ctx context.Context, inst *domain.Instructor) (*domain.Instructor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanInstructor(q.QueryRow(ctx, createSQL, inst.LastName, inst.FirstName, domain.DateOnly(inst.HireDate)))
	if err != nil {
		return nil, postgres.MapError(err, entity, 0)
	}
	return &created, nil
}

func scanInstructor(row pgx.Row) (domain.Instructor, error) {
	var (
		inst     domain.Instructor
		hireDate time.Time
	)
	if err := row.Scan(&inst.ID, &inst.LastName, &inst.FirstName, &hireDate, &inst.CreatedAt); err != nil {
		return domain.Instructor{}, err
	}
	inst.HireDate = domain.DateOnly(hireDate)
	return inst, nil
}
