// Package client talks to the records HTTP API. Client implements
// editsession.Backend, so an edit session can run against a remote server
// exactly as it runs in-process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/internal/transport/rest"
	"github.com/heartmarshall/records-backend/pkg/ctxutil"
)

const maxResponseBytes = 1 << 20

// Client calls the department endpoints. Writes are never retried: a lost
// response is reported as an error and the caller decides whether to resubmit.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "records_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetDepartment fetches the current record. Returns domain.ErrNotFound on 404.
func (c *Client) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	resp, body, err := c.do(ctx, http.MethodGet, departmentPath(id, 0), nil, 0)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeDepartment(body)
	case http.StatusNotFound:
		return nil, fmt.Errorf("department %d: %w", id, domain.ErrNotFound)
	}
	return nil, statusError(resp, body)
}

// Update sends a versioned PATCH.
func (c *Client) Update(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch) (domain.WriteResult, error) {
	req := rest.UpdateDepartmentRequest{
		ExpectedVersion:     &expectedVersion,
		DepartmentPatchJSON: rest.NewDepartmentPatchJSON(patch),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("records client: encode patch: %w", err)
	}

	resp, body, err := c.do(ctx, http.MethodPatch, departmentPath(id, 0), payload, expectedVersion)
	if err != nil {
		return domain.WriteResult{}, err
	}
	return c.outcome(id, resp, body)
}

// Delete sends a versioned DELETE.
func (c *Client) Delete(ctx context.Context, id, expectedVersion int64) (domain.WriteResult, error) {
	resp, body, err := c.do(ctx, http.MethodDelete, departmentPath(id, expectedVersion), nil, expectedVersion)
	if err != nil {
		return domain.WriteResult{}, err
	}
	return c.outcome(id, resp, body)
}

func (c *Client) outcome(id int64, resp *http.Response, body []byte) (domain.WriteResult, error) {
	switch resp.StatusCode {
	case http.StatusOK:
		d, err := decodeDepartment(body)
		if err != nil {
			return domain.WriteResult{}, err
		}
		return domain.WriteResult{Outcome: domain.OutcomeCommitted, ID: id, Department: d}, nil

	case http.StatusNoContent:
		return domain.WriteResult{Outcome: domain.OutcomeCommitted, ID: id}, nil

	case http.StatusGone:
		return domain.WriteResult{Outcome: domain.OutcomeGone, ID: id}, nil

	case http.StatusNotFound:
		if errorCode(body) != rest.CodeNotFound {
			return domain.WriteResult{}, statusError(resp, body)
		}
		return domain.WriteResult{Outcome: domain.OutcomeNotFound, ID: id}, nil

	case http.StatusConflict:
		switch errorCode(body) {
		case rest.CodeVersionConflict:
			var cj rest.ConflictJSON
			if err := json.Unmarshal(body, &cj); err != nil {
				return domain.WriteResult{}, fmt.Errorf("records client: decode conflict: %w", err)
			}
			report, err := cj.Report()
			if err != nil {
				return domain.WriteResult{}, fmt.Errorf("records client: decode conflict: %w", err)
			}
			return domain.WriteResult{Outcome: domain.OutcomeConflict, ID: id, Conflict: report}, nil

		case rest.CodeBlocked:
			var bj rest.BlockJSON
			if err := json.Unmarshal(body, &bj); err != nil {
				return domain.WriteResult{}, fmt.Errorf("records client: decode block: %w", err)
			}
			return domain.WriteResult{Outcome: domain.OutcomeBlocked, ID: id, Block: bj.Block()}, nil
		}
	}

	return domain.WriteResult{}, statusError(resp, body)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, ifMatch int64) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("records client: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ifMatch > 0 {
		req.Header.Set("If-Match", rest.ETag(ifMatch))
	}
	if id := ctxutil.RequestIDFromCtx(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "records request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("records client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("records client: read body: %w", err)
	}

	c.log.DebugContext(ctx, "records response",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)
	return resp, body, nil
}

func departmentPath(id, expectedVersion int64) string {
	p := "/departments/" + strconv.FormatInt(id, 10)
	if expectedVersion > 0 {
		p += "?expected_version=" + strconv.FormatInt(expectedVersion, 10)
	}
	return p
}

func decodeDepartment(body []byte) (*domain.Department, error) {
	var dj rest.DepartmentJSON
	if err := json.Unmarshal(body, &dj); err != nil {
		return nil, fmt.Errorf("records client: decode department: %w", err)
	}
	d, err := dj.Domain()
	if err != nil {
		return nil, fmt.Errorf("records client: decode department: %w", err)
	}
	return &d, nil
}

func errorCode(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

// statusError converts an unexpected response into an error. A 400 becomes
// a *domain.ValidationError carrying the server's field errors.
func statusError(resp *http.Response, body []byte) error {
	var e rest.ErrorJSON
	_ = json.Unmarshal(body, &e)

	if resp.StatusCode == http.StatusBadRequest && e.Error == rest.CodeValidation {
		if len(e.Fields) > 0 {
			return domain.NewValidationErrors(e.Fields)
		}
		return fmt.Errorf("records client: %s: %w", e.Message, domain.ErrValidation)
	}

	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return fmt.Errorf("records client: unexpected status %d: %s", resp.StatusCode, msg)
}
