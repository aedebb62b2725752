package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/records-backend/internal/domain"
	coursesvc "github.com/heartmarshall/records-backend/internal/service/course"
	departmentsvc "github.com/heartmarshall/records-backend/internal/service/department"
	instructorsvc "github.com/heartmarshall/records-backend/internal/service/instructor"
)

type seedDepartments interface {
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	CreateDepartment(ctx context.Context, input departmentsvc.CreateInput) (*domain.Department, error)
}

type seedCourses interface {
	CreateCourse(ctx context.Context, input coursesvc.CreateInput) (*domain.Course, error)
}

type seedInstructors interface {
	CreateInstructor(ctx context.Context, input instructorsvc.CreateInput) (*domain.Instructor, error)
}

// SeedResult counts what Seed inserted.
type SeedResult struct {
	Skipped     bool
	Instructors int
	Departments int
	Courses     int
}

type sampleDepartment struct {
	name      string
	budget    string
	start     time.Time
	adminLast string
	courses   []coursesvc.CreateInput
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var sampleInstructors = []instructorsvc.CreateInput{
	{LastName: "Abercrombie", FirstName: "Kim", HireDate: date(1995, 3, 11)},
	{LastName: "Fakhouri", FirstName: "Fadi", HireDate: date(2002, 7, 6)},
	{LastName: "Harui", FirstName: "Roger", HireDate: date(1998, 7, 1)},
	{LastName: "Kapoor", FirstName: "Candace", HireDate: date(2001, 1, 15)},
	{LastName: "Zheng", FirstName: "Roger", HireDate: date(2004, 2, 12)},
}

var sampleDepartments = []sampleDepartment{
	{name: "English", budget: "350000", start: date(2007, 9, 1), adminLast: "Abercrombie", courses: []coursesvc.CreateInput{
		{ID: 2021, Title: "Composition", Credits: 3},
		{ID: 2042, Title: "Literature", Credits: 4},
	}},
	{name: "Mathematics", budget: "100000", start: date(2007, 9, 1), adminLast: "Fakhouri", courses: []coursesvc.CreateInput{
		{ID: 1045, Title: "Calculus", Credits: 4},
		{ID: 3141, Title: "Trigonometry", Credits: 4},
	}},
	{name: "Engineering", budget: "350000", start: date(2007, 9, 1), adminLast: "Harui", courses: []coursesvc.CreateInput{
		{ID: 1050, Title: "Chemistry", Credits: 3},
	}},
	{name: "Economics", budget: "100000", start: date(2007, 9, 1), adminLast: "Kapoor", courses: []coursesvc.CreateInput{
		{ID: 4022, Title: "Microeconomics", Credits: 3},
		{ID: 4041, Title: "Macroeconomics", Credits: 3},
	}},
}

// Seed inserts sample instructors, departments and courses through the
// services, so every row gets its audit record. It does nothing when any
// department already exists.
func Seed(ctx context.Context, logger *slog.Logger, departments seedDepartments, courses seedCourses, instructors seedInstructors) (SeedResult, error) {
	existing, err := departments.ListDepartments(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "seed skipped, departments exist", slog.Int("departments", len(existing)))
		return SeedResult{Skipped: true}, nil
	}

	var res SeedResult
	admins := make(map[string]int64, len(sampleInstructors))
	for _, in := range sampleInstructors {
		inst, err := instructors.CreateInstructor(ctx, in)
		if err != nil {
			return res, fmt.Errorf("seed instructor %s: %w", in.LastName, err)
		}
		admins[in.LastName] = inst.ID
		res.Instructors++
	}

	for _, sd := range sampleDepartments {
		in := departmentsvc.CreateInput{
			Name:      sd.name,
			Budget:    decimal.RequireFromString(sd.budget),
			StartDate: sd.start,
		}
		if id, ok := admins[sd.adminLast]; ok {
			in.AdministratorID = &id
		}

		d, err := departments.CreateDepartment(ctx, in)
		if err != nil {
			return res, fmt.Errorf("seed department %s: %w", sd.name, err)
		}
		res.Departments++

		for _, c := range sd.courses {
			c.DepartmentID = d.ID
			if _, err := courses.CreateCourse(ctx, c); err != nil {
				return res, fmt.Errorf("seed course %d: %w", c.ID, err)
			}
			res.Courses++
		}
	}

	logger.InfoContext(ctx, "seed completed",
		slog.Int("instructors", res.Instructors),
		slog.Int("departments", res.Departments),
		slog.Int("courses", res.Courses),
	)
	return res, nil
}
