package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/internal/service/department"
)

// departmentService defines the minimal interface needed by DepartmentHandler.
type departmentService interface {
	GetDepartment(ctx context.Context, id int64) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	CreateDepartment(ctx context.Context, input department.CreateInput) (*domain.Department, error)
	UpdateDepartment(ctx context.Context, input department.UpdateInput) (domain.WriteResult, error)
	DeleteDepartment(ctx context.Context, input department.DeleteInput) (domain.WriteResult, error)
	History(ctx context.Context, id int64, limit int) ([]domain.AuditRecord, error)
}

// DepartmentHandler serves the versioned department endpoints.
type DepartmentHandler struct {
	svc departmentService
	log *slog.Logger
}

// NewDepartmentHandler creates a DepartmentHandler.
func NewDepartmentHandler(svc departmentService, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{svc: svc, log: logger.With("handler", "department")}
}

// List handles GET /departments.
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListDepartments(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]DepartmentJSON, 0, len(list))
	for _, d := range list {
		out = append(out, NewDepartmentJSON(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /departments/{id}. The version is returned in the body
// and as the ETag.
func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	d, err := h.svc.GetDepartment(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	setETag(w, d.Version)
	writeJSON(w, http.StatusOK, NewDepartmentJSON(*d))
}

// Create handles POST /departments.
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDepartmentRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	start, err := time.Parse(DateLayout, req.StartDate)
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError(domain.FieldStartDate, "must be a date formatted 2006-01-02"))
		return
	}

	d, err := h.svc.CreateDepartment(r.Context(), department.CreateInput{
		Name:            req.Name,
		Budget:          req.Budget,
		StartDate:       start,
		AdministratorID: req.AdministratorID,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.Header().Set("Location", "/departments/"+strconv.FormatInt(d.ID, 10))
	setETag(w, d.Version)
	writeJSON(w, http.StatusCreated, NewDepartmentJSON(*d))
}

// Update handles PATCH /departments/{id}.
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req UpdateDepartmentRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	version, err := expectedVersion(r, req.ExpectedVersion)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	patch, err := req.DepartmentPatchJSON.Domain()
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.svc.UpdateDepartment(r.Context(), department.UpdateInput{
		ID:              id,
		ExpectedVersion: version,
		Patch:           patch,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeOutcome(h.log, w, r, res)
}

// Delete handles DELETE /departments/{id}. The expected version comes from
// If-Match or ?expected_version.
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	version, err := expectedVersion(r, nil)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.svc.DeleteDepartment(r.Context(), department.DeleteInput{ID: id, ExpectedVersion: version})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeOutcome(h.log, w, r, res)
}

// History handles GET /departments/{id}/history?limit=N.
func (h *DepartmentHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	records, err := h.svc.History(r.Context(), id, limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]AuditRecordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, newAuditRecordJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}
