package testhelper

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/records-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedInstructor inserts an instructor and returns it.
func SeedInstructor(t *testing.T, pool *pgxpool.Pool) domain.Instructor {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	inst := domain.Instructor{
		LastName:  "Abercrombie-" + suffix,
		FirstName: "Kim",
		HireDate:  time.Date(1995, 3, 11, 0, 0, 0, 0, time.UTC),
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO instructors (last_name, first_name, hire_date)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		inst.LastName, inst.FirstName, inst.HireDate,
	).Scan(&inst.ID, &inst.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedInstructor: %v", err)
	}

	return inst
}

// SeedDepartment inserts a department at version 1 with the given budget.
func SeedDepartment(t *testing.T, pool *pgxpool.Pool, name string, budget int64) domain.Department {
	t.Helper()
	ctx := context.Background()

	d := domain.Department{
		Name:      name,
		Budget:    decimal.NewFromInt(budget),
		StartDate: time.Date(2007, 9, 1, 0, 0, 0, 0, time.UTC),
		Version:   domain.InitialVersion,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO departments (name, budget, start_date, version)
		 VALUES ($1, $2::numeric, $3, $4)
		 RETURNING id, created_at, updated_at`,
		d.Name, d.Budget.String(), d.StartDate, d.Version,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedDepartment: %v", err)
	}

	return d
}

// SeedCourse inserts a course under departmentID with a random course number.
func SeedCourse(t *testing.T, pool *pgxpool.Pool, departmentID int64) domain.Course {
	t.Helper()
	ctx := context.Background()

	c := domain.Course{
		ID:           1000 + rand.Int64N(1<<40),
		Title:        "Course " + uniqueSuffix(),
		Credits:      3,
		DepartmentID: departmentID,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO courses (id, title, credits, department_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		c.ID, c.Title, c.Credits, c.DepartmentID,
	).Scan(&c.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedCourse: %v", err)
	}

	return c
}

// DepartmentVersion reads the stored version directly, bypassing repositories.
func DepartmentVersion(t *testing.T, pool *pgxpool.Pool, id int64) int64 {
	t.Helper()

	var v int64
	if err := pool.QueryRow(context.Background(),
		`SELECT version FROM departments WHERE id = $1`, id,
	).Scan(&v); err != nil {
		t.Fatalf("testhelper: DepartmentVersion: %v", err)
	}
	return v
}
