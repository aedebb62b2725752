package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func probe(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func okChecks() []Check {
	return []Check{
		{Name: "database", Probe: probe(nil)},
		{Name: "schema", Probe: probe(nil)},
	}
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestLive_Always200(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("test-version", Check{Name: "database", Probe: probe(errors.New("down"))})

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     []Check
		wantCode   int
		wantStatus string
		wantDown   string
	}{
		{"all up", okChecks(), http.StatusOK, "ok", ""},
		{"no checks", nil, http.StatusOK, "ok", ""},
		{
			"database down",
			[]Check{{Name: "database", Probe: probe(errors.New("connection refused"))}, {Name: "schema", Probe: probe(nil)}},
			http.StatusServiceUnavailable, "down", "database",
		},
		{
			"not migrated",
			[]Check{{Name: "database", Probe: probe(nil)}, {Name: "schema", Probe: probe(errors.New("missing"))}},
			http.StatusServiceUnavailable, "down", "schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler("test-version", tt.checks...)
			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			resp := decodeHealth(t, rec)
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, resp.Status)
			}
			if tt.wantDown != "" && resp.Components[tt.wantDown].Status != "down" {
				t.Errorf("expected %s down, got %+v", tt.wantDown, resp.Components)
			}
		})
	}
}

func TestHealth_AllOK(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("v1.0.0", okChecks()...)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Version != "v1.0.0" {
		t.Errorf("expected version 'v1.0.0', got %q", resp.Version)
	}
	for _, name := range []string{"database", "schema"} {
		c, ok := resp.Components[name]
		if !ok {
			t.Fatalf("expected %q component in response", name)
		}
		if c.Status != "ok" || c.Latency == "" {
			t.Errorf("%s: got %+v", name, c)
		}
	}
}

func TestHealth_ComponentDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("v1.0.0",
		Check{Name: "database", Probe: probe(nil)},
		Check{Name: "schema", Probe: probe(errors.New("missing tables"))},
	)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != "down" {
		t.Errorf("expected status 'down', got %q", resp.Status)
	}
	if resp.Components["database"].Status != "ok" {
		t.Errorf("database should stay ok, got %+v", resp.Components["database"])
	}
	if c := resp.Components["schema"]; c.Status != "down" || c.Latency != "" {
		t.Errorf("schema: got %+v", c)
	}
}

func TestHealth_ProbeGetsDeadline(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	h := NewHealthHandler("v", Check{Name: "database", Probe: func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}})
	h.Health(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !hasDeadline {
		t.Error("probe context should carry a deadline")
	}
}
