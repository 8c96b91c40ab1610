package middleware

import (
	"net/http"
	"strings"

	"github.com/billflow/backend/internal/infrastructure/logger"
	"github.com/billflow/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys used to store tenant information in gin.Context.
const (
	TenantIDKey     = "tenant_id"
	TenantCodeKey   = "tenant_code"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantInfo holds the resolved tenant identity
type TenantInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// TenantValidator checks that a tenant exists and is active
type TenantValidator interface {
	ValidateTenant(tenantID string) (*TenantInfo, error)
}

// TenantMiddlewareConfig holds configuration for the tenant middleware
type TenantMiddlewareConfig struct {
	HeaderEnabled    bool
	JWTEnabled       bool
	SubdomainEnabled bool
	BaseDomain       string
	SkipPaths        []string
	Required         bool
	Validator        TenantValidator
	Logger           *zap.Logger
}

// DefaultTenantConfig returns the default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/api/v1/system/ping"},
		Required:      true,
	}
}

// TenantMiddleware resolves the tenant for each request. Resolution order is
// JWT claims, then the X-Tenant-ID header, then the subdomain.
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// OptionalTenantMiddleware resolves the tenant when present but lets
// tenant-less requests through
func OptionalTenantMiddleware() gin.HandlerFunc {
	cfg := DefaultTenantConfig()
	cfg.Required = false
	return TenantMiddlewareWithConfig(cfg)
}

// TenantMiddlewareWithConfig returns tenant middleware with custom configuration
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pathIsSkipped(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		tenantID, method := resolveTenantID(c, cfg)

		if tenantID != "" {
			if _, err := uuid.Parse(tenantID); err != nil {
				abortUnauthorized(c, "Invalid tenant ID format")
				return
			}
		}
		if tenantID == "" && cfg.Required {
			abortUnauthorized(c, "Tenant identification required")
			return
		}

		var tenantInfo *TenantInfo
		if tenantID != "" && cfg.Validator != nil {
			info, err := cfg.Validator.ValidateTenant(tenantID)
			if err != nil {
				tenantLogger(c, cfg).Warn("tenant validation failed",
					zap.String("tenant_id", tenantID),
					zap.Error(err),
				)
				abortUnauthorized(c, "Invalid or inactive tenant")
				return
			}
			tenantInfo = info
		}

		if tenantID != "" {
			c.Set(TenantIDKey, tenantID)
			if tenantInfo != nil {
				c.Set(TenantCodeKey, tenantInfo.Code)
			}

			// Propagate into the request context so repositories and the
			// allocation service see the tenant without touching gin.
			ctx := c.Request.Context()
			ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("tenant identified",
					zap.String("tenant_id", tenantID),
					zap.String("method", method),
				)
			}
		}

		c.Next()
	}
}

func pathIsSkipped(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
			return true
		}
	}
	return false
}

// resolveTenantID returns the tenant ID and which source supplied it.
func resolveTenantID(c *gin.Context, cfg TenantMiddlewareConfig) (string, string) {
	if cfg.JWTEnabled {
		if id := contextString(c, JWTTenantIDKey); id != "" {
			return id, "jwt"
		}
	}
	if cfg.HeaderEnabled {
		if id := c.GetHeader(TenantHeaderKey); id != "" {
			return id, "header"
		}
	}
	if cfg.SubdomainEnabled && cfg.BaseDomain != "" {
		if id := extractTenantFromSubdomain(c.Request.Host, cfg.BaseDomain); id != "" {
			return id, "subdomain"
		}
	}
	return "", ""
}

func tenantLogger(c *gin.Context, cfg TenantMiddlewareConfig) *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return logger.FromContext(c.Request.Context())
}

// extractTenantFromSubdomain maps "acme.billflow.io" with base domain
// "billflow.io" to "acme". The bare domain and "www" yield nothing.
func extractTenantFromSubdomain(host, baseDomain string) string {
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	subdomain := strings.TrimSuffix(host, "."+baseDomain)
	if subdomain == host || subdomain == "" || subdomain == "www" {
		return ""
	}
	return strings.Split(subdomain, ".")[0]
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetTenantID retrieves the tenant ID from gin.Context
func GetTenantID(c *gin.Context) string {
	return contextString(c, TenantIDKey)
}

// GetTenantUUID retrieves the tenant ID as a UUID from gin.Context
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(tenantID)
}

// GetTenantCode retrieves the tenant code from gin.Context
func GetTenantCode(c *gin.Context) string {
	return contextString(c, TenantCodeKey)
}

// MustGetTenantUUID retrieves the tenant UUID or panics. Only for handlers
// behind a required tenant middleware.
func MustGetTenantUUID(c *gin.Context) uuid.UUID {
	tenantUUID, err := GetTenantUUID(c)
	if err != nil || tenantUUID == uuid.Nil {
		panic("valid tenant_id not found in context")
	}
	return tenantUUID
}
