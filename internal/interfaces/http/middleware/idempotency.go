package middleware

import (
	"net/http"
	"time"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeaderKey is the header clients send to deduplicate retries
const IdempotencyHeaderKey = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the accepted key size
const MaxIdempotencyKeyLength = 128

// IdempotencyMiddlewareConfig holds configuration for idempotency middleware
type IdempotencyMiddlewareConfig struct {
	// Store remembers processed keys
	Store shared.IdempotencyStore
	// TTL is how long a processed key is remembered
	TTL time.Duration
	// Required rejects mutating requests that carry no key when true.
	// Gateways that replay notifications should send a key; browsers
	// driving the console usually do not.
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultIdempotencyMiddlewareConfig returns default idempotency middleware configuration
func DefaultIdempotencyMiddlewareConfig(store shared.IdempotencyStore) IdempotencyMiddlewareConfig {
	return IdempotencyMiddlewareConfig{
		Store:    store,
		TTL:      24 * time.Hour,
		Required: false,
		Logger:   nil,
	}
}

// Idempotency creates idempotency middleware with default configuration
func Idempotency(store shared.IdempotencyStore) gin.HandlerFunc {
	return IdempotencyWithConfig(DefaultIdempotencyMiddlewareConfig(store))
}

// IdempotencyWithConfig deduplicates mutating requests by Idempotency-Key.
//
// The key is scoped to the tenant so two tenants can use the same key
// without colliding. A replayed key is rejected with 409 before the
// handler runs. Non-mutating methods pass through untouched.
//
// The store check is best effort: when the store errors the request
// proceeds, because the allocation engine has its own compare-and-set
// guard and availability wins here.
func IdempotencyWithConfig(cfg IdempotencyMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyHeaderKey)
		if key == "" {
			if cfg.Required {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "BAD_REQUEST",
						"message": "Idempotency-Key header is required",
					},
				})
				return
			}
			c.Next()
			return
		}

		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "BAD_REQUEST",
					"message": "Idempotency-Key is too long",
				},
			})
			return
		}

		scopedKey := key
		if tenantID := GetTenantID(c); tenantID != "" {
			scopedKey = tenantID + ":" + key
		}

		ctx := c.Request.Context()
		fresh, err := cfg.Store.MarkProcessed(ctx, scopedKey, cfg.TTL)
		if err != nil {
			log := cfg.Logger
			if log == nil {
				log = logger.FromContext(ctx)
			}
			log.Warn("Idempotency store check failed, allowing request",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_PROCESSED",
					"message": "A request with this idempotency key was already handled",
				},
			})
			return
		}

		c.Next()
	}
}
