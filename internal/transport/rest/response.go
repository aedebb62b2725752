package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/records-backend/internal/domain"
)

// Error codes carried in ErrorJSON.Error and in the 409 payloads. Clients
// switch on these, never on the human-readable message.
const (
	CodeValidation      = "validation_failed"
	CodeBadRequest      = "bad_request"
	CodeNotFound        = "not_found"
	CodeGone            = "gone"
	CodeAlreadyExists   = "already_exists"
	CodeVersionConflict = "version_conflict"
	CodeBlocked         = "blocked_by_dependents"
	CodeInternal        = "internal"
)

// ErrorJSON is the body of every non-2xx response except the 409 payloads.
type ErrorJSON struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorJSON{Error: code, Message: message})
}

// handleError maps service errors to HTTP statuses. Concurrency outcomes are
// not errors and never reach here; see writeOutcome.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorJSON{Error: CodeValidation, Message: ve.Error(), Fields: ve.Errors})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, CodeAlreadyExists, "already exists")
	case errors.Is(err, domain.ErrReferenced):
		writeError(w, http.StatusConflict, CodeBlocked, "still referenced")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

// writeOutcome renders a versioned write result.
//
//	Committed  200 with the record and its ETag (204 for a delete)
//	Conflict   409 ConflictJSON
//	Blocked    409 BlockJSON
//	Gone       410
//	NotFound   404
func writeOutcome(log *slog.Logger, w http.ResponseWriter, r *http.Request, res domain.WriteResult) {
	switch res.Outcome {
	case domain.OutcomeCommitted:
		if res.Department == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		setETag(w, res.Department.Version)
		writeJSON(w, http.StatusOK, NewDepartmentJSON(*res.Department))
	case domain.OutcomeConflict:
		writeJSON(w, http.StatusConflict, NewConflictJSON(res.Conflict))
	case domain.OutcomeBlocked:
		writeJSON(w, http.StatusConflict, NewBlockJSON(res.Block))
	case domain.OutcomeGone:
		writeError(w, http.StatusGone, CodeGone, "department was deleted by another writer")
	case domain.OutcomeNotFound:
		writeError(w, http.StatusNotFound, CodeNotFound, "department does not exist")
	default:
		handleError(log, w, r, res.Err())
	}
}
