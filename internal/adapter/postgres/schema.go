package postgres

import (
	"context"
	"errors"
	"fmt"
)

// requiredTables must exist before the API can serve writes.
var requiredTables = []string{"instructors", "departments", "courses", "audit_log"}

// ErrSchemaMissing is returned by SchemaReady when migrations have not run.
var ErrSchemaMissing = errors.New("schema not migrated")

// SchemaReady returns a probe that fails until every required table exists.
func SchemaReady(q Querier) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var missing []string
		err := q.QueryRow(ctx,
			`SELECT COALESCE(array_agg(r.name), '{}') FROM unnest($1::text[]) AS r(name) WHERE to_regclass(r.name) IS NULL`,
			requiredTables,
		).Scan(&missing)
		if err != nil {
			return fmt.Errorf("schema check: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing %v", ErrSchemaMissing, missing)
		}
		return nil
	}
}
