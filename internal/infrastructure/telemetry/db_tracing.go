package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing configuration.
type DBTracingConfig struct {
	// Enabled turns the gorm instrumentation on. Off by default so tests and
	// local runs pay nothing.
	Enabled bool
	// LogFullSQL records query variables on the spans. Keep it off outside
	// development, spans end up in external storage.
	LogFullSQL bool
	// SlowQueryThreshold marks queries slower than this with a span event.
	SlowQueryThreshold time.Duration
	// DBSystem names the database system on the spans.
	DBSystem string
}

// DefaultDBTracingConfig returns the production defaults.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:            false,
		LogFullSQL:         false,
		SlowQueryThreshold: 200 * time.Millisecond,
		DBSystem:           "postgresql",
	}
}

// DBTracing registers gorm query instrumentation: the otelgorm plugin emits
// one span per statement under the active request span, and additional
// callbacks enrich those spans with row counts and slow-query events.
type DBTracing struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracing creates a DBTracing registrar.
func NewDBTracing(cfg DBTracingConfig, logger *zap.Logger) *DBTracing {
	return &DBTracing{
		config: cfg,
		logger: logger,
	}
}

// Register installs the otelgorm plugin and the enrichment callbacks on the
// connection. A no-op when tracing is disabled. Registering twice on the same
// connection returns an error from gorm.
func (t *DBTracing) Register(db *gorm.DB) error {
	if !t.config.Enabled {
		t.logger.Info("database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(t.config.DBSystem),
	}
	if !t.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}
	if err := t.registerEnrichmentCallbacks(db); err != nil {
		return fmt.Errorf("failed to register tracing callbacks: %w", err)
	}

	t.logger.Info("database tracing enabled",
		zap.Duration("slow_query_threshold", t.config.SlowQueryThreshold),
		zap.Bool("log_full_sql", t.config.LogFullSQL),
	)
	return nil
}

type contextKey string

const queryStartTimeKey contextKey = "query_start_time"

func (t *DBTracing) registerEnrichmentCallbacks(db *gorm.DB) error {
	registrations := []func() error{
		func() error {
			return db.Callback().Create().Before("gorm:create").Register("tracing:before_create", t.markQueryStart)
		},
		func() error {
			return db.Callback().Query().Before("gorm:query").Register("tracing:before_query", t.markQueryStart)
		},
		func() error {
			return db.Callback().Update().Before("gorm:update").Register("tracing:before_update", t.markQueryStart)
		},
		func() error {
			return db.Callback().Delete().Before("gorm:delete").Register("tracing:before_delete", t.markQueryStart)
		},
		func() error {
			return db.Callback().Row().Before("gorm:row").Register("tracing:before_row", t.markQueryStart)
		},
		func() error {
			return db.Callback().Raw().Before("gorm:raw").Register("tracing:before_raw", t.markQueryStart)
		},
		func() error {
			return db.Callback().Create().After("gorm:create").Register("tracing:after_create", t.enrichSpan)
		},
		func() error {
			return db.Callback().Query().After("gorm:query").Register("tracing:after_query", t.enrichSpan)
		},
		func() error {
			return db.Callback().Update().After("gorm:update").Register("tracing:after_update", t.enrichSpan)
		},
		func() error {
			return db.Callback().Delete().After("gorm:delete").Register("tracing:after_delete", t.enrichSpan)
		},
		func() error {
			return db.Callback().Row().After("gorm:row").Register("tracing:after_row", t.enrichSpan)
		},
		func() error {
			return db.Callback().Raw().After("gorm:raw").Register("tracing:after_raw", t.enrichSpan)
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (t *DBTracing) markQueryStart(db *gorm.DB) {
	db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
}

// enrichSpan adds row counts and slow-query events to the statement span.
// Record-not-found is an expected lookup outcome, not a span error.
func (t *DBTracing) enrichSpan(db *gorm.DB) {
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	start, ok := db.Statement.Context.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > t.config.SlowQueryThreshold {
		span.AddEvent("slow query", trace.WithAttributes(
			attribute.Int64("db.elapsed_ms", elapsed.Milliseconds()),
			attribute.Int64("db.slow_query_threshold_ms", t.config.SlowQueryThreshold.Milliseconds()),
		))
	}
}
