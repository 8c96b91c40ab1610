package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration tree.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Idempotency IdempotencyConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
	ConnMaxIdleTime int // minutes
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server and CORS settings.
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// IdempotencyConfig holds request replay protection settings.
type IdempotencyConfig struct {
	Enabled bool
	Backend string // redis, memory
	TTL     time.Duration
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0 to 1.0
	ServiceName       string
	Insecure          bool // plaintext connection, development only
}

// Load reads configuration in priority order: BILLFLOW_ environment
// variables override config.toml, which overrides built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, env vars and defaults carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("BILLFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:         appConfig(v),
		Database:    databaseConfig(v),
		Redis:       redisConfig(v),
		JWT:         jwtConfig(v),
		Log:         logConfig(v),
		HTTP:        httpConfig(v),
		Idempotency: idempotencyConfig(v),
		Telemetry:   telemetryConfig(v),
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func appConfig(v *viper.Viper) AppConfig {
	return AppConfig{
		Name: v.GetString("app.name"),
		Env:  v.GetString("app.env"),
		Port: v.GetString("app.port"),
	}
}

func databaseConfig(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString("database.host"),
		Port:            v.GetInt("database.port"),
		User:            v.GetString("database.user"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
	}
}

func redisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func jwtConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                v.GetString("jwt.secret"),
		AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		Issuer:                v.GetString("jwt.issuer"),
	}
}

func logConfig(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func httpConfig(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:      v.GetDuration("http.read_timeout"),
		WriteTimeout:     v.GetDuration("http.write_timeout"),
		IdleTimeout:      v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
		MaxBodySize:      v.GetInt64("http.max_body_size"),
		CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
	}
}

func idempotencyConfig(v *viper.Viper) IdempotencyConfig {
	return IdempotencyConfig{
		Enabled: v.GetBool("idempotency.enabled"),
		Backend: v.GetString("idempotency.backend"),
		TTL:     v.GetDuration("idempotency.ttl"),
	}
}

func telemetryConfig(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:           v.GetBool("telemetry.enabled"),
		CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
		SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
		ServiceName:       v.GetString("telemetry.service_name"),
		Insecure:          v.GetBool("telemetry.insecure"),
	}
}

func defaultString(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

func defaultInt(target *int, value int) {
	if *target == 0 {
		*target = value
	}
}

func defaultDuration(target *time.Duration, value time.Duration) {
	if *target == 0 {
		*target = value
	}
}

// applyDefaults fills every unset field. Zero values are treated as unset,
// so "explicitly zero" is not representable for numeric settings.
func (c *Config) applyDefaults() {
	defaultString(&c.App.Name, "billflow-backend")
	defaultString(&c.App.Env, "development")
	defaultString(&c.App.Port, "8080")

	defaultString(&c.Database.Host, "localhost")
	defaultInt(&c.Database.Port, 5432)
	defaultString(&c.Database.User, "postgres")
	defaultString(&c.Database.DBName, "billflow")
	defaultString(&c.Database.SSLMode, "disable")
	defaultInt(&c.Database.MaxOpenConns, 25)
	defaultInt(&c.Database.MaxIdleConns, 5)
	defaultInt(&c.Database.ConnMaxLifetime, 60)
	defaultInt(&c.Database.ConnMaxIdleTime, 30)

	defaultString(&c.Redis.Host, "localhost")
	defaultInt(&c.Redis.Port, 6379)

	defaultDuration(&c.JWT.AccessTokenExpiration, 15*time.Minute)
	defaultString(&c.JWT.Issuer, "billflow-backend")

	defaultString(&c.Log.Level, "info")
	defaultString(&c.Log.Format, "console")
	defaultString(&c.Log.Output, "stdout")

	defaultDuration(&c.HTTP.ReadTimeout, 15*time.Second)
	defaultDuration(&c.HTTP.WriteTimeout, 15*time.Second)
	defaultDuration(&c.HTTP.IdleTimeout, 60*time.Second)
	defaultInt(&c.HTTP.MaxHeaderBytes, 1<<20)
	if c.HTTP.MaxBodySize == 0 {
		c.HTTP.MaxBodySize = 10 << 20
	}
	// CORS origins get no "*" fallback. An empty list allows no cross-origin
	// requests until explicitly configured.
	if len(c.HTTP.CORSAllowMethods) == 0 {
		c.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(c.HTTP.CORSAllowHeaders) == 0 {
		c.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID", "Idempotency-Key"}
	}

	defaultString(&c.Idempotency.Backend, "redis")
	defaultDuration(&c.Idempotency.TTL, 24*time.Hour)

	defaultString(&c.Telemetry.CollectorEndpoint, "localhost:4317")
	if c.Telemetry.SamplingRatio == 0 {
		c.Telemetry.SamplingRatio = 1.0
	}
	defaultString(&c.Telemetry.ServiceName, "billflow-backend")
	// Telemetry.Insecure stays false unless set, keeping TLS on.
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Idempotency.Backend != "redis" && c.Idempotency.Backend != "memory" {
		return fmt.Errorf("idempotency.backend must be 'redis' or 'memory', got %q", c.Idempotency.Backend)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction enforces the settings that must never ship loose:
// strong JWT secret, authenticated TLS database access, durable
// idempotency keys and explicit CORS origins.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if c.Idempotency.Backend == "memory" {
		return fmt.Errorf("idempotency.backend cannot be 'memory' in production (keys must survive restarts)")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	return nil
}

// DSN builds the postgres connection URL with credentials escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
