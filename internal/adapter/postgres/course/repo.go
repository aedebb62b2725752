// Package course implements the Course repository using PostgreSQL.
// Courses are the dependents that keep a department from being deleted.
package course

import (
	"context"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/records-backend/internal/adapter/postgres"
	"github.com/heartmarshall/records-backend/internal/domain"
)

const entity = "course"

const columns = "id, title, credits, department_id, created_at"

// Repo provides course persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new course repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const getByIDSQL = `SELECT ` + columns + ` FROM courses WHERE id = $1`

const listByDepartmentSQL = `SELECT ` + columns + ` FROM courses WHERE department_id = $1 ORDER BY id`

const countByDepartmentSQL = `SELECT count(*) FROM courses WHERE department_id = $1`

const sampleByDepartmentSQL = `SELECT id, title FROM courses WHERE department_id = $1 ORDER BY id LIMIT $2`

const createSQL = `
INSERT INTO courses (id, title, credits, department_id)
VALUES ($1, $2, $3, $4)
RETURNING ` + columns

const deleteSQL = `DELETE FROM courses WHERE id = $1`

// GetByID returns a course by its course number.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	c, err := scanCourse(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &c, nil
}

// ListByDepartment returns the courses of a department ordered by course number.
func (r *Repo) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Course, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByDepartmentSQL, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list courses by department: %w", err)
	}
	defer rows.Close()

	result := []domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("list courses by department: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses by department: %w", err)
	}

	return result, nil
}

// CountByDepartment returns how many courses reference the department.
func (r *Repo) CountByDepartment(ctx context.Context, departmentID int64) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := q.QueryRow(ctx, countByDepartmentSQL, departmentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count courses by department: %w", err)
	}
	return count, nil
}

// SampleByDepartment returns up to limit courses of the department as
// dependents labelled "<number> <title>".
func (r *Repo) SampleByDepartment(ctx context.Context, departmentID int64, limit int) ([]domain.Dependent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, sampleByDepartmentSQL, departmentID, limit)
	if err != nil {
		return nil, fmt.Errorf("sample courses by department: %w", err)
	}
	defer rows.Close()

	result := []domain.Dependent{}
	for rows.Next() {
		var (
			id    int64
			title string
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("sample courses by department: %w", err)
		}
		result = append(result, domain.Dependent{ID: id, Label: strconv.FormatInt(id, 10) + " " + title})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sample courses by department: %w", err)
	}

	return result, nil
}

// Create inserts a course. Returns domain.ErrAlreadyExists for a duplicate
// course number and domain.ErrNotFound if the department does not exist.
func (r *Repo) Create(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanCourse(q.QueryRow(ctx, createSQL, c.ID, c.Title, c.Credits, c.DepartmentID))
	if err != nil {
		return nil, postgres.MapError(err, entity, c.ID)
	}
	return &created, nil
}

// Update changes title, credits and/or department of a course.
// Nil arguments leave the column untouched. Returns domain.ErrNotFound if the
// course, or the target department, does not exist.
func (r *Repo) Update(ctx context.Context, id int64, title *string, credits *int, departmentID *int64) (*domain.Course, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := r.sb.Update("courses").Where(sq.Eq{"id": id}).Suffix("RETURNING " + columns)
	if title != nil {
		b = b.Set("title", *title)
	}
	if credits != nil {
		b = b.Set("credits", *credits)
	}
	if departmentID != nil {
		b = b.Set("department_id", *departmentID)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course update: %w", err)
	}

	updated, err := scanCourse(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &updated, nil
}

// Delete removes a course. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapDeleteError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var c domain.Course
	if err := row.Scan(&c.ID, &c.Title, &c.Credits, &c.DepartmentID, &c.CreatedAt); err != nil {
		return domain.Course{}, err
	}
	return c, nil
}
