package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/security"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("APP_ENV", "development")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "Q", cfg.QuoteNumberPrefix)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 15*time.Minute, cfg.JWTTokenTTL)
	assert.NotEmpty(t, cfg.Secret())
	assert.Empty(t, cfg.Policies)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobquote")
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("DB_MIN_CONNS", "4")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TOKEN_TTL", "1h")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("QUOTE_NUMBER_PREFIX", "JQ")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.DBMaxConns)
	assert.Equal(t, 4, cfg.DBMinConns)
	assert.Equal(t, "s3cret", cfg.Secret())
	assert.Equal(t, time.Hour, cfg.JWTTokenTTL)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, "JQ", cfg.QuoteNumberPrefix)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORAGE": "postgres", "DATABASE_URL": ""}},
		{"unknown storage", map[string]string{"STORAGE": "sqlite"}},
		{"production without secret", map[string]string{"STORAGE": "memory", "APP_ENV": "production", "JWT_SECRET": ""}},
		{"min above max", map[string]string{"STORAGE": "memory", "DB_MIN_CONNS": "8", "DB_MAX_CONNS": "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestAuthorizer_PolicyOverride(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv(security.ActionCreate.EnvKey(), `role == "engineer"`)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Contains(t, cfg.Policies, security.ActionCreate)

	authz, err := cfg.Authorizer()
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, authz.Can(ctx, security.Principal{ID: "e", Role: security.RoleEngineer}, security.ActionCreate))
	assert.False(t, authz.Can(ctx, security.Principal{ID: "s", Role: security.RoleSales}, security.ActionCreate))
}

func TestAuthorizer_InvalidPolicy(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv(security.ActionDelete.EnvKey(), `role ==`)

	cfg, err := FromEnv()
	require.NoError(t, err)

	_, err = cfg.Authorizer()
	assert.Error(t, err)
}
