package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/internal/service/instructor"
)

type instructorService interface {
	CreateInstructor(ctx context.Context, input instructor.CreateInput) (*domain.Instructor, error)
	GetInstructor(ctx context.Context, id int64) (*domain.Instructor, error)
	ListInstructors(ctx context.Context) ([]domain.Instructor, error)
}

// InstructorHandler serves the administrator lookup endpoints.
type InstructorHandler struct {
	svc instructorService
	log *slog.Logger
}

// NewInstructorHandler creates an InstructorHandler.
func NewInstructorHandler(svc instructorService, logger *slog.Logger) *InstructorHandler {
	return &InstructorHandler{svc: svc, log: logger.With("handler", "instructor")}
}

// Create handles POST /instructors.
func (h *InstructorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInstructorRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	hired, err := time.Parse(DateLayout, req.HireDate)
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError("hire_date", "must be a date formatted 2006-01-02"))
		return
	}

	inst, err := h.svc.CreateInstructor(r.Context(), instructor.CreateInput{
		LastName:  req.LastName,
		FirstName: req.FirstName,
		HireDate:  hired,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newInstructorJSON(*inst))
}

// Get handles GET /instructors/{id}.
func (h *InstructorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	inst, err := h.svc.GetInstructor(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInstructorJSON(*inst))
}

// List handles GET /instructors.
func (h *InstructorHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListInstructors(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]InstructorJSON, 0, len(list))
	for _, i := range list {
		out = append(out, newInstructorJSON(i))
	}
	writeJSON(w, http.StatusOK, out)
}
