package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracingReceipt struct {
	ID            uint `gorm:"primarykey"`
	ReceiptNumber string
}

func setupTracingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracingReceipt{}))
	return db
}

// recordedSpan starts a span backed by an in-memory recorder so the
// enrichment callbacks have something live to write to.
func recordedSpan(t *testing.T) (context.Context, trace.Span, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	ctx, span := tp.Tracer("db-tracing-test").Start(context.Background(), "statement")
	return ctx, span, sr
}

func endedSpanAttr(sr *tracetest.SpanRecorder, key string) (attribute.Value, bool) {
	for _, span := range sr.Ended() {
		for _, attr := range span.Attributes() {
			if string(attr.Key) == key {
				return attr.Value, true
			}
		}
	}
	return attribute.Value{}, false
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingRegisterDisabled(t *testing.T) {
	db := setupTracingTestDB(t)
	tr := NewDBTracing(DefaultDBTracingConfig(), zap.NewNop())

	require.NoError(t, tr.Register(db))
	assert.Empty(t, db.Config.Plugins, "disabled tracing must not install the plugin")
}

func TestDBTracingRegisterEnabled(t *testing.T) {
	db := setupTracingTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	tr := NewDBTracing(cfg, zap.NewNop())

	require.NoError(t, tr.Register(db))
	assert.NotEmpty(t, db.Config.Plugins)

	// The connection already carries the plugin and the named callbacks.
	assert.Error(t, tr.Register(db))
}

func TestDBTracingEnrichSpanRecordsRowCount(t *testing.T) {
	db := setupTracingTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThreshold = time.Minute
	tr := NewDBTracing(cfg, zap.NewNop())

	ctx, span, sr := recordedSpan(t)
	rows := []tracingReceipt{
		{ReceiptNumber: "RCT-20260827-00001"},
		{ReceiptNumber: "RCT-20260827-00002"},
		{ReceiptNumber: "RCT-20260827-00003"},
	}
	result := db.WithContext(ctx).Create(&rows)
	require.NoError(t, result.Error)

	tr.enrichSpan(result)
	span.End()

	rowsAffected, ok := endedSpanAttr(sr, "db.rows_affected")
	require.True(t, ok, "db.rows_affected attribute missing")
	assert.Equal(t, int64(3), rowsAffected.AsInt64())

	table, ok := endedSpanAttr(sr, "db.sql.table")
	require.True(t, ok, "db.sql.table attribute missing")
	assert.Equal(t, "tracing_receipts", table.AsString())
}

func TestDBTracingEnrichSpanIgnoresRecordNotFound(t *testing.T) {
	db := setupTracingTestDB(t)
	tr := NewDBTracing(DefaultDBTracingConfig(), zap.NewNop())

	ctx, span, sr := recordedSpan(t)
	var row tracingReceipt
	result := db.WithContext(ctx).First(&row, "id = ?", 999)
	require.ErrorIs(t, result.Error, gorm.ErrRecordNotFound)

	tr.enrichSpan(result)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.NotEqual(t, codes.Error, ended[0].Status().Code,
		"record-not-found is an expected lookup outcome")
}

func TestDBTracingEnrichSpanRecordsError(t *testing.T) {
	db := setupTracingTestDB(t)
	tr := NewDBTracing(DefaultDBTracingConfig(), zap.NewNop())

	ctx, span, sr := recordedSpan(t)
	result := db.WithContext(ctx).Exec("INSERT INTO missing_table VALUES (1)")
	require.Error(t, result.Error)

	tr.enrichSpan(result)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestDBTracingEnrichSpanSlowQueryEvent(t *testing.T) {
	db := setupTracingTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.SlowQueryThreshold = time.Millisecond
	tr := NewDBTracing(cfg, zap.NewNop())

	ctx, span, sr := recordedSpan(t)
	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))

	var row tracingReceipt
	result := db.WithContext(ctx).First(&row, "id = ?", 999)
	require.ErrorIs(t, result.Error, gorm.ErrRecordNotFound)

	tr.enrichSpan(result)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)

	var found bool
	for _, event := range ended[0].Events() {
		if event.Name == "slow query" {
			found = true
		}
	}
	assert.True(t, found, "slow query event missing")
}
