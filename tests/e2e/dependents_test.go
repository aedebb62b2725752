//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A department with courses cannot be deleted until they are reassigned.
func TestE2E_BlockedDelete_ReassignThenDelete(t *testing.T) {
	ts := setupTestServer(t)
	d := ts.createDepartment(t, "1000")
	target := ts.createDepartment(t, "500")
	courseID := ts.createCourse(t, d.ID)
	path := "/departments/" + itoa(d.ID)

	resp, data := ts.do(t, http.MethodDelete, path, nil, ifMatch(1))
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(data))

	body := decode[errorBody](t, data)
	assert.Equal(t, "blocked_by_dependents", body.Error)
	assert.Equal(t, "COURSE", body.DependentType)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Sample, 1)
	assert.Equal(t, courseID, body.Sample[0].ID)

	// Blocking does not consume the version.
	resp, data = ts.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[departmentBody](t, data).Version)

	resp, data = ts.do(t, http.MethodPatch, "/courses/"+itoa(courseID), map[string]any{"department_id": target.ID}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = ts.do(t, http.MethodGet, "/departments/"+itoa(target.ID)+"/courses", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, data), 1)

	resp, _ = ts.do(t, http.MethodDelete, path, nil, ifMatch(1))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestE2E_CourseWithUnknownDepartment(t *testing.T) {
	ts := setupTestServer(t)

	resp, data := ts.do(t, http.MethodPost, "/courses", map[string]any{
		"id":            uniqueCourseID(),
		"title":         "Orphan",
		"credits":       3,
		"department_id": 999999999,
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))
	assert.Equal(t, "validation_failed", decode[errorBody](t, data).Error)
}
