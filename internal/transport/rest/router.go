package rest

import (
	"context"
	"net/http"
	"time"
)

// Handlers groups everything the router mounts. Metrics may be nil.
type Handlers struct {
	Health      *HealthHandler
	Departments *DepartmentHandler
	Courses     *CourseHandler
	Instructors *InstructorHandler
	Metrics     http.Handler
}

// NewRouter mounts every endpoint. API handlers run with a context bounded
// by requestTimeout; zero means no bound.
func NewRouter(h Handlers, requestTimeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()

	api := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, withTimeout(requestTimeout, fn))
	}

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	api("GET /departments", h.Departments.List)
	api("POST /departments", h.Departments.Create)
	api("GET /departments/{id}", h.Departments.Get)
	api("PATCH /departments/{id}", h.Departments.Update)
	api("DELETE /departments/{id}", h.Departments.Delete)
	api("GET /departments/{id}/history", h.Departments.History)
	api("GET /departments/{id}/courses", h.Courses.ListByDepartment)

	api("POST /courses", h.Courses.Create)
	api("PATCH /courses/{id}", h.Courses.Update)
	api("DELETE /courses/{id}", h.Courses.Delete)

	api("GET /instructors", h.Instructors.List)
	api("POST /instructors", h.Instructors.Create)
	api("GET /instructors/{id}", h.Instructors.Get)

	return mux
}

func withTimeout(d time.Duration, next http.Handler) http.Handler {
	if d <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
