package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var billflowEnvKeys = []string{
	"BILLFLOW_APP_NAME",
	"BILLFLOW_APP_ENV",
	"BILLFLOW_APP_PORT",
	"BILLFLOW_DATABASE_HOST",
	"BILLFLOW_DATABASE_PORT",
	"BILLFLOW_DATABASE_USER",
	"BILLFLOW_DATABASE_PASSWORD",
	"BILLFLOW_DATABASE_DBNAME",
	"BILLFLOW_DATABASE_SSLMODE",
	"BILLFLOW_DATABASE_MAX_OPEN_CONNS",
	"BILLFLOW_DATABASE_MAX_IDLE_CONNS",
	"BILLFLOW_IDEMPOTENCY_BACKEND",
	"BILLFLOW_JWT_SECRET",
}

// setEnv blanks every BILLFLOW_ key, then applies the given overrides.
// t.Setenv restores the original values when the subtest ends, and an empty
// value reads the same as unset so defaults still apply.
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	for _, key := range billflowEnvKeys {
		t.Setenv(key, "")
	}
	for key, value := range overrides {
		t.Setenv(key, value)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		setEnv(t, nil)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "billflow-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "billflow", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
	})

	t.Run("loads values from environment variables with BILLFLOW prefix", func(t *testing.T) {
		setEnv(t, map[string]string{
			"BILLFLOW_APP_NAME":                "test-app",
			"BILLFLOW_APP_ENV":                 "testing",
			"BILLFLOW_APP_PORT":                "9000",
			"BILLFLOW_DATABASE_HOST":           "testdb.local",
			"BILLFLOW_DATABASE_PORT":           "5433",
			"BILLFLOW_DATABASE_USER":           "testuser",
			"BILLFLOW_DATABASE_PASSWORD":       "testpass",
			"BILLFLOW_DATABASE_DBNAME":         "testdb",
			"BILLFLOW_DATABASE_SSLMODE":        "require",
			"BILLFLOW_DATABASE_MAX_OPEN_CONNS": "50",
			"BILLFLOW_DATABASE_MAX_IDLE_CONNS": "10",
			"BILLFLOW_IDEMPOTENCY_BACKEND":     "memory",
		})

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		setEnv(t, map[string]string{
			"BILLFLOW_DATABASE_MAX_OPEN_CONNS": "10",
			"BILLFLOW_DATABASE_MAX_IDLE_CONNS": "20",
		})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		setEnv(t, map[string]string{
			"BILLFLOW_DATABASE_MAX_OPEN_CONNS": "0",
		})

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		setEnv(t, map[string]string{
			"BILLFLOW_DATABASE_MAX_IDLE_CONNS": "-1",
		})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects unknown idempotency backend", func(t *testing.T) {
		setEnv(t, map[string]string{
			"BILLFLOW_IDEMPOTENCY_BACKEND": "dynamo",
		})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency.backend")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	productionBase := map[string]string{
		"BILLFLOW_APP_ENV":           "production",
		"BILLFLOW_JWT_SECRET":        "this-is-a-very-secure-jwt-secret-key-32chars",
		"BILLFLOW_DATABASE_PASSWORD": "secure-password",
		"BILLFLOW_DATABASE_SSLMODE":  "require",
	}

	// withBase clones the valid production env, letting a test break one
	// setting at a time.
	withBase := func(overrides map[string]string) map[string]string {
		merged := make(map[string]string, len(productionBase)+len(overrides))
		for k, v := range productionBase {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		return merged
	}

	tests := []struct {
		name      string
		overrides map[string]string
		wantErr   string
	}{
		{
			name:      "requires jwt.secret in production",
			overrides: map[string]string{"BILLFLOW_JWT_SECRET": ""},
			wantErr:   "jwt.secret is required in production",
		},
		{
			name:      "requires jwt.secret at least 32 characters in production",
			overrides: map[string]string{"BILLFLOW_JWT_SECRET": "short-secret"},
			wantErr:   "jwt.secret must be at least 32 characters",
		},
		{
			name:      "requires database.password in production",
			overrides: map[string]string{"BILLFLOW_DATABASE_PASSWORD": ""},
			wantErr:   "database.password is required in production",
		},
		{
			name:      "requires SSL enabled in production",
			overrides: map[string]string{"BILLFLOW_DATABASE_SSLMODE": "disable"},
			wantErr:   "database.sslmode cannot be 'disable' in production",
		},
		{
			name:      "rejects in-memory idempotency store in production",
			overrides: map[string]string{"BILLFLOW_IDEMPOTENCY_BACKEND": "memory"},
			wantErr:   "idempotency.backend cannot be 'memory' in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, withBase(tt.overrides))

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setEnv(t, productionBase)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	base := DatabaseConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "testuser",
		DBName:  "testdb",
		SSLMode: "disable",
	}

	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := base
		cfg.Password = "testpass"

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := base
		cfg.Password = "pass@word#123"

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		assert.NotEmpty(t, base.DSN())
	})
}
