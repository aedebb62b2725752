package postgres

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// SlowQueryTracer is a pgx.QueryTracer that logs queries taking at least
// threshold, and every failed query at debug level.
type SlowQueryTracer struct {
	log       *slog.Logger
	threshold time.Duration
	now       func() time.Time
}

// NewSlowQueryTracer creates a SlowQueryTracer.
func NewSlowQueryTracer(logger *slog.Logger, threshold time.Duration) *SlowQueryTracer {
	return &SlowQueryTracer{
		log:       logger.With("adapter", "postgres"),
		threshold: threshold,
		now:       time.Now,
	}
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: t.now()})
}

func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.at)

	if data.Err != nil {
		t.log.DebugContext(ctx, "query failed",
			slog.String("sql", compactSQL(start.sql)),
			slog.Duration("duration", elapsed),
			slog.String("error", data.Err.Error()),
		)
		return
	}
	if elapsed >= t.threshold {
		t.log.WarnContext(ctx, "slow query",
			slog.String("sql", compactSQL(start.sql)),
			slog.Duration("duration", elapsed),
			slog.Int64("rows", data.CommandTag.RowsAffected()),
		)
	}
}

// compactSQL collapses whitespace so multi-line statements log on one line.
func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
