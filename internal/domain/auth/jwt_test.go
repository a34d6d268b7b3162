package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/security"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken(security.Principal{ID: "eng-7", Role: security.RoleEngineer}, "eng@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "eng-7", user.UserID)
	assert.Equal(t, "engineer", user.Role)
	assert.Equal(t, "eng@example.com", user.Email)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	token, _, err := svc.GenerateAccessToken(security.Principal{ID: "u1", Role: security.RoleSales}, "")
	require.NoError(t, err)

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	_, err = other.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	cfg := DefaultJWTConfig("test-secret")
	cfg.Issuer = "someone-else"
	_, err = NewJWTService(cfg).ValidateToken(token)
	assert.Error(t, err, "wrong issuer")

	expiredCfg := DefaultJWTConfig("test-secret")
	expiredCfg.AccessTokenTTL = -time.Minute
	expired, _, err := NewJWTService(expiredCfg).GenerateAccessToken(security.Principal{ID: "u1"}, "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err, "expired")

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
