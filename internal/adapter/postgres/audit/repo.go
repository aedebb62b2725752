// Package audit implements the Audit repository using PostgreSQL.
// It provides append-only operations for audit log records, plus the
// tombstone lookup used to tell a deleted record from one that never existed.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/records-backend/internal/adapter/postgres"
	"github.com/heartmarshall/records-backend/internal/domain"
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO audit_log (id, entity_type, entity_id, action, version, request_id, changes, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
RETURNING id, entity_type, entity_id, action, version, COALESCE(request_id, ''), changes, created_at`

// Create inserts a new audit record and returns the persisted domain.AuditRecord.
// A zero ID or CreatedAt is filled in.
func (r *Repo) Create(ctx context.Context, record domain.AuditRecord) (domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var changesJSON []byte
	if record.Changes != nil {
		var err error
		changesJSON, err = json.Marshal(record.Changes)
		if err != nil {
			return domain.AuditRecord{}, fmt.Errorf("audit_record marshal changes: %w", err)
		}
	}

	created, err := scanRecord(q.QueryRow(ctx, createSQL,
		record.ID, string(record.EntityType), record.EntityID, string(record.Action),
		record.Version, record.RequestID, changesJSON, record.CreatedAt,
	))
	if err != nil {
		return domain.AuditRecord{}, postgres.MapError(err, "audit_record", record.EntityID)
	}

	return created, nil
}

// Log creates an audit record without returning it.
// Satisfies the auditLogger interfaces of the services.
func (r *Repo) Log(ctx context.Context, record domain.AuditRecord) error {
	_, err := r.Create(ctx, record)
	return err
}

const deleteOlderThanSQL = `DELETE FROM audit_log WHERE created_at < $1`

// DeleteOlderThan prunes audit records created before cutoff and returns how
// many were removed. Pruned DELETE records stop distinguishing gone ids.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteOlderThanSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete audit_records older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const getByEntitySQL = `
SELECT id, entity_type, entity_id, action, version, COALESCE(request_id, ''), changes, created_at
FROM audit_log
WHERE entity_type = $1 AND entity_id = $2
ORDER BY created_at DESC, version DESC
LIMIT $3`

// GetByEntity returns the change history for a specific entity, ordered by
// created_at DESC, limited to `limit` records.
func (r *Repo) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID int64, limit int) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getByEntitySQL, string(entityType), entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("get audit_records by entity: %w", err)
	}
	defer rows.Close()

	records := []domain.AuditRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("get audit_records by entity: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get audit_records by entity: %w", err)
	}

	return records, nil
}

const wasDeletedSQL = `
SELECT EXISTS (
    SELECT 1 FROM audit_log
    WHERE entity_type = $1 AND entity_id = $2 AND action = 'DELETE'
)`

// WasDeleted reports whether a DELETE was ever recorded for the entity.
func (r *Repo) WasDeleted(ctx context.Context, entityType domain.EntityType, entityID int64) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var deleted bool
	if err := q.QueryRow(ctx, wasDeletedSQL, string(entityType), entityID).Scan(&deleted); err != nil {
		return false, fmt.Errorf("audit tombstone lookup %s %d: %w", entityType, entityID, err)
	}
	return deleted, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanRecord(row pgx.Row) (domain.AuditRecord, error) {
	var (
		rec        domain.AuditRecord
		entityType string
		action     string
		changes    []byte
	)

	err := row.Scan(&rec.ID, &entityType, &rec.EntityID, &action, &rec.Version, &rec.RequestID, &changes, &rec.CreatedAt)
	if err != nil {
		return domain.AuditRecord{}, err
	}
	rec.EntityType = domain.EntityType(entityType)
	rec.Action = domain.AuditAction(action)

	// changes: JSONB -> map[string]any
	if len(changes) > 0 {
		m := make(map[string]any)
		if err := json.Unmarshal(changes, &m); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("audit_record %s unmarshal changes: %w", rec.ID, err)
		}
		rec.Changes = m
	}

	return rec, nil
}
