package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

// tracedRouter builds a router with the full tracing chain and a billing
// route, applying extra middleware between tracing and the handler.
func tracedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "billflow-test"}))
	router.Use(extra...)
	router.GET("/payments/:id/apply", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func findSpan(sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func spanAttribute(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func TestTracingDisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/receipts", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/receipts", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingCreatesRouteSpan(t *testing.T) {
	sr := setupSpanRecorder(t)
	router := tracedRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/payments/p1/apply", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	span := findSpan(sr, "GET /payments/:id/apply")
	require.NotNil(t, span, "route span not recorded")
}

func TestTracingRecordsRequestID(t *testing.T) {
	sr := setupSpanRecorder(t)
	router := tracedRouter(TracingAttributeInjector())

	req := httptest.NewRequest("GET", "/payments/p1/apply", nil)
	req.Header.Set("X-Request-ID", "req-allocation-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	span := findSpan(sr, "GET /payments/:id/apply")
	require.NotNil(t, span)

	got, ok := spanAttribute(span, "request_id")
	require.True(t, ok, "request_id attribute missing")
	assert.Equal(t, "req-allocation-42", got)
}

func TestTracingRecordsIdentityFromClaims(t *testing.T) {
	sr := setupSpanRecorder(t)

	tenantID := "7b0f4a9e-9c1a-4a39-8d6e-8f1f6a2b3c4d"
	userID := "d2c1b0a9-8f7e-6d5c-4b3a-2c1d0e9f8a7b"
	claims := func(c *gin.Context) {
		c.Set(JWTTenantIDKey, tenantID)
		c.Set(JWTUserIDKey, userID)
		c.Next()
	}
	router := tracedRouter(claims, TracingAttributeInjector())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/payments/p1/apply", nil))

	span := findSpan(sr, "GET /payments/:id/apply")
	require.NotNil(t, span)

	gotTenant, ok := spanAttribute(span, "tenant_id")
	require.True(t, ok, "tenant_id attribute missing")
	assert.Equal(t, tenantID, gotTenant)

	gotUser, ok := spanAttribute(span, "user_id")
	require.True(t, ok, "user_id attribute missing")
	assert.Equal(t, userID, gotUser)
}

func TestTracingTenantHeaderFallback(t *testing.T) {
	t.Run("UUID header is accepted", func(t *testing.T) {
		sr := setupSpanRecorder(t)
		router := tracedRouter(TracingAttributeInjector())

		req := httptest.NewRequest("GET", "/payments/p1/apply", nil)
		req.Header.Set("X-Tenant-ID", "7b0f4a9e-9c1a-4a39-8d6e-8f1f6a2b3c4d")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		span := findSpan(sr, "GET /payments/:id/apply")
		require.NotNil(t, span)

		got, ok := spanAttribute(span, "tenant_id")
		require.True(t, ok)
		assert.Equal(t, "7b0f4a9e-9c1a-4a39-8d6e-8f1f6a2b3c4d", got)
	})

	t.Run("non-UUID header is dropped", func(t *testing.T) {
		sr := setupSpanRecorder(t)
		router := tracedRouter(TracingAttributeInjector())

		req := httptest.NewRequest("GET", "/payments/p1/apply", nil)
		req.Header.Set("X-Tenant-ID", "tenant';DROP TABLE receipts;--")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		span := findSpan(sr, "GET /payments/:id/apply")
		require.NotNil(t, span)

		_, ok := spanAttribute(span, "tenant_id")
		assert.False(t, ok, "invalid tenant header must not reach the span")
	})
}

func TestGetRequestIDTruncatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/receipts", nil)
	c.Request.Header.Set("X-Request-ID", strings.Repeat("a", MaxRequestIDLength+50))

	assert.Len(t, getRequestID(c), MaxRequestIDLength)
}

func TestIsValidTenantID(t *testing.T) {
	assert.True(t, isValidTenantID("7b0f4a9e-9c1a-4a39-8d6e-8f1f6a2b3c4d"))
	assert.False(t, isValidTenantID("not-a-uuid"))
	assert.False(t, isValidTenantID(""))
	assert.False(t, isValidTenantID(strings.Repeat("a", MaxTenantIDLength+1)))
}

func TestSpanErrorMarker(t *testing.T) {
	statuses := []struct {
		status  int
		wantErr bool
		message string
	}{
		{http.StatusOK, false, ""},
		{http.StatusNotFound, true, "Not Found"},
		{http.StatusUnauthorized, true, "Unauthorized"},
		{http.StatusForbidden, true, "Forbidden"},
		{http.StatusConflict, true, "Client Error"},
		{http.StatusInternalServerError, true, "Internal Server Error"},
	}

	for _, tt := range statuses {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupSpanRecorder(t)

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "billflow-test"}))
			router.Use(SpanErrorMarker())
			router.GET("/payments", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/payments", nil))

			span := findSpan(sr, "GET /payments")
			require.NotNil(t, span)

			if tt.wantErr {
				assert.Equal(t, codes.Error, span.Status().Code)
				assert.Equal(t, tt.message, span.Status().Description)
			} else {
				assert.NotEqual(t, codes.Error, span.Status().Code)
			}
		})
	}
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "billflow-backend", cfg.ServiceName)
}
