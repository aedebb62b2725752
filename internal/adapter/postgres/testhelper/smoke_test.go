package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	dept := SeedDepartment(t, pool, "Smoke", 1000)
	course := SeedCourse(t, pool, dept.ID)

	var deptID int64
	err := pool.QueryRow(
		context.Background(),
		`SELECT department_id FROM courses WHERE id = $1`,
		course.ID,
	).Scan(&deptID)
	if err != nil {
		t.Fatalf("expected course in DB, got error: %v", err)
	}

	if deptID != dept.ID {
		t.Fatalf("expected department %d, got %d", dept.ID, deptID)
	}
	if v := DepartmentVersion(t, pool, dept.ID); v != 1 {
		t.Fatalf("expected seeded version 1, got %d", v)
	}
}
