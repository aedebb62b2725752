// Package department implements the Department repository using PostgreSQL.
// Every mutation is a single conditional statement keyed on (id, version);
// the database, not the application, decides which concurrent writer wins.
package department

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	postgres "github.com/heartmarshall/records-backend/internal/adapter/postgres"
	"github.com/heartmarshall/records-backend/internal/domain"
)

const entity = "department"

const columns = "id, name, budget, start_date, administrator_id, version, created_at, updated_at"

// Repo provides department persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new department repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const getByIDSQL = `SELECT ` + columns + ` FROM departments WHERE id = $1`

const listSQL = `SELECT ` + columns + ` FROM departments ORDER BY name, id`

// GetByID returns the current department row.
// Returns domain.ErrNotFound if the row does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	d, err := scanDepartment(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &d, nil
}

// List returns all departments ordered by name.
// Returns an empty slice (not nil) when there are none.
func (r *Repo) List(ctx context.Context) ([]domain.Department, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	result := []domain.Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("list departments: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO departments (name, budget, start_date, administrator_id, version)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + columns

// Create inserts a new department at domain.InitialVersion.
// Returns a validation error if the administrator does not exist.
func (r *Repo) Create(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanDepartment(q.QueryRow(ctx, createSQL,
		d.Name, toNumeric(d.Budget), domain.DateOnly(d.StartDate), d.AdministratorID, domain.InitialVersion,
	))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, domain.NewValidationError(domain.FieldAdministratorID, "instructor does not exist")
		}
		return nil, postgres.MapError(err, entity, 0)
	}
	return &created, nil
}

// CompareAndUpdate applies patch and bumps the version by one, but only if the
// stored version still equals expectedVersion. It is one UPDATE statement, so
// among concurrent callers presenting the same version exactly one matches.
//
// On a miss the row is re-read: Current holds the authoritative record, or nil
// when the row no longer exists.
func (r *Repo) CompareAndUpdate(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch) (domain.SwapResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := r.buildUpdate(id, expectedVersion, patch).ToSql()
	if err != nil {
		return domain.SwapResult{}, fmt.Errorf("build department update: %w", err)
	}

	updated, err := scanDepartment(q.QueryRow(ctx, query, args...))
	switch {
	case err == nil:
		return domain.SwapResult{Swapped: true, Current: &updated}, nil
	case errors.Is(err, pgx.ErrNoRows):
		return r.reread(ctx, id)
	case postgres.IsForeignKeyViolation(err):
		return domain.SwapResult{}, domain.NewValidationError(domain.FieldAdministratorID, "instructor does not exist")
	default:
		return domain.SwapResult{}, postgres.MapError(err, entity, id)
	}
}

func (r *Repo) buildUpdate(id, expectedVersion int64, patch domain.DepartmentPatch) sq.UpdateBuilder {
	b := r.sb.Update("departments")

	if patch.Name != nil {
		b = b.Set("name", *patch.Name)
	}
	if patch.Budget != nil {
		b = b.Set("budget", toNumeric(*patch.Budget))
	}
	if patch.StartDate != nil {
		b = b.Set("start_date", domain.DateOnly(*patch.StartDate))
	}
	if patch.ClearAdministrator {
		b = b.Set("administrator_id", nil)
	} else if patch.AdministratorID != nil {
		b = b.Set("administrator_id", *patch.AdministratorID)
	}

	return b.
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"version": expectedVersion}).
		Suffix("RETURNING " + columns)
}

const deleteSQL = `DELETE FROM departments WHERE id = $1 AND version = $2 RETURNING ` + columns

// CompareAndDelete removes the row only if its version equals expectedVersion.
// On success Current holds the row as it was deleted. On a miss it behaves like
// CompareAndUpdate. If dependents still reference the row the store refuses the
// delete and the error wraps domain.ErrReferenced.
func (r *Repo) CompareAndDelete(ctx context.Context, id, expectedVersion int64) (domain.SwapResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	deleted, err := scanDepartment(q.QueryRow(ctx, deleteSQL, id, expectedVersion))
	switch {
	case err == nil:
		return domain.SwapResult{Swapped: true, Current: &deleted}, nil
	case errors.Is(err, pgx.ErrNoRows):
		return r.reread(ctx, id)
	default:
		return domain.SwapResult{}, postgres.MapDeleteError(err, entity, id)
	}
}

func (r *Repo) reread(ctx context.Context, id int64) (domain.SwapResult, error) {
	current, err := r.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SwapResult{}, nil
	}
	if err != nil {
		return domain.SwapResult{}, fmt.Errorf("re-read after version miss: %w", err)
	}
	return domain.SwapResult{Current: current}, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanDepartment(row pgx.Row) (domain.Department, error) {
	var (
		d         domain.Department
		budget    pgtype.Numeric
		startDate time.Time
	)

	err := row.Scan(&d.ID, &d.Name, &budget, &startDate, &d.AdministratorID, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Department{}, err
	}

	d.Budget, err = fromNumeric(budget)
	if err != nil {
		return domain.Department{}, fmt.Errorf("department %d budget: %w", d.ID, err)
	}
	d.StartDate = domain.DateOnly(startDate)

	return d, nil
}

// ---------------------------------------------------------------------------
// pgtype helpers
// ---------------------------------------------------------------------------

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, errors.New("unexpected NULL numeric")
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("non-finite numeric")
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
