package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/records-backend/internal/domain"
)

const expectedVersionField = "expected_version"

// pathID parses a positive int64 path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// expectedVersion collects the version token from the body, the If-Match
// header and the expected_version query parameter. Any of them may be used;
// when several are given they must agree. Zero means none was given, which
// the service rejects as a validation error.
func expectedVersion(r *http.Request, fromBody *int64) (int64, error) {
	var found []int64
	if fromBody != nil {
		found = append(found, *fromBody)
	}

	if h := r.Header.Get("If-Match"); h != "" {
		v, ok := parseETag(h)
		if !ok {
			return 0, domain.NewValidationError("If-Match", "must be a single version ETag")
		}
		found = append(found, v)
	}

	if q := r.URL.Query().Get(expectedVersionField); q != "" {
		v, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			return 0, domain.NewValidationError(expectedVersionField, "must be an integer")
		}
		found = append(found, v)
	}

	if len(found) == 0 {
		return 0, nil
	}
	for _, v := range found[1:] {
		if v != found[0] {
			return 0, domain.NewValidationError(expectedVersionField, "body, If-Match and query disagree")
		}
	}
	return found[0], nil
}

// ETag renders a version as a strong entity tag.
func ETag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

func setETag(w http.ResponseWriter, version int64) {
	w.Header().Set("ETag", ETag(version))
}

// parseETag accepts "3", W/"3" and a bare 3. Lists and "*" are refused:
// a versioned write needs exactly one version.
func parseETag(h string) (int64, bool) {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "W/")
	h = strings.Trim(h, `"`)
	v, err := strconv.ParseInt(h, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	q := r.URL.Query().Get(name)
	if q == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(q)
	if err != nil || v < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return v, nil
}
