package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/internal/service/course"
)

type courseService interface {
	CreateCourse(ctx context.Context, input course.CreateInput) (*domain.Course, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Course, error)
	UpdateCourse(ctx context.Context, input course.UpdateInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// CourseHandler serves the course endpoints used to clear blocked deletes.
type CourseHandler struct {
	svc courseService
	log *slog.Logger
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(svc courseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{svc: svc, log: logger.With("handler", "course")}
}

// Create handles POST /courses.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	c, err := h.svc.CreateCourse(r.Context(), course.CreateInput{
		ID:           req.ID,
		Title:        req.Title,
		Credits:      req.Credits,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCourseJSON(*c))
}

// ListByDepartment handles GET /departments/{id}/courses.
func (h *CourseHandler) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	list, err := h.svc.ListByDepartment(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]CourseJSON, 0, len(list))
	for _, c := range list {
		out = append(out, newCourseJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PATCH /courses/{id}, including reassignment.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req UpdateCourseRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	c, err := h.svc.UpdateCourse(r.Context(), course.UpdateInput{
		ID:           id,
		Title:        req.Title,
		Credits:      req.Credits,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCourseJSON(*c))
}

// Delete handles DELETE /courses/{id}.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.svc.DeleteCourse(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
