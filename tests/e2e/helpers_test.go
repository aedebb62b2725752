//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/records-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/records-backend/internal/app"
	"github.com/heartmarshall/records-backend/internal/config"
	"github.com/heartmarshall/records-backend/internal/metrics"
)

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,PATCH,DELETE,OPTIONS",
			AllowedHeaders: "Content-Type,If-Match,X-Request-Id",
			ExposedHeaders: "ETag,X-Request-Id",
		},
		Guard: config.GuardConfig{SampleSize: 5},
		Audit: config.AuditConfig{RetentionDays: 30},
	}
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	handler, stop := app.NewHTTPHandler(logger, pool, testConfig(), metrics.New())
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		stop()
	})

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		Logger: logger,
	}
}

// do sends a JSON request and returns the response with its body read.
func (ts *testServer) do(t *testing.T, method, path string, payload any, header map[string]string) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

type departmentBody struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Budget          string `json:"budget"`
	StartDate       string `json:"start_date"`
	AdministratorID *int64 `json:"administrator_id"`
	Version         int64  `json:"version"`
}

type errorBody struct {
	Error           string `json:"error"`
	ExpectedVersion int64  `json:"expected_version"`
	CurrentVersion  int64  `json:"current_version"`
	Current         departmentBody `json:"current"`
	Fields          []struct {
		Field string `json:"field"`
	} `json:"fields"`
	DependentType string `json:"dependent_type"`
	Count         int    `json:"count"`
	Sample        []struct {
		ID    int64  `json:"id"`
		Label string `json:"label"`
	} `json:"sample"`
}

func uniqueName(prefix string) string {
	// Department names are VARCHAR(50).
	return fmt.Sprintf("%s %d", prefix, rand.Int64N(1_000_000_000))
}

func uniqueCourseID() int64 {
	return 1000 + rand.Int64N(1<<40)
}

// createDepartment posts a new department and returns it at version 1.
func (ts *testServer) createDepartment(t *testing.T, budget string) departmentBody {
	t.Helper()

	resp, data := ts.do(t, http.MethodPost, "/departments", map[string]any{
		"name":       uniqueName("Dept"),
		"budget":     json.Number(budget),
		"start_date": "2020-09-01",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	d := decode[departmentBody](t, data)
	require.EqualValues(t, 1, d.Version)
	require.Equal(t, `"1"`, resp.Header.Get("ETag"))
	require.True(t, strings.HasSuffix(resp.Header.Get("Location"), fmt.Sprintf("/departments/%d", d.ID)))
	return d
}

func (ts *testServer) createCourse(t *testing.T, departmentID int64) int64 {
	t.Helper()

	id := uniqueCourseID()
	resp, data := ts.do(t, http.MethodPost, "/courses", map[string]any{
		"id":            id,
		"title":         "Calculus",
		"credits":       4,
		"department_id": departmentID,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return id
}

func ifMatch(version int64) map[string]string {
	return map[string]string{"If-Match": fmt.Sprintf(`"%d"`, version)}
}
