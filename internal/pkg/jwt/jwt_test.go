package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-leave-ledger"

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("emp-1", auth.RoleManager)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims := decoded.PrivateClaims()

	actor, err := ActorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, auth.Actor{EmployeeID: "emp-1", Role: auth.RoleManager}, actor)
}

func TestGenerateAccessTokenRejectsBadInput(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	_, _, err := svc.GenerateAccessToken("", auth.RoleEmployee)
	assert.ErrorIs(t, err, auth.ErrMissingIdentity)

	_, _, err = svc.GenerateAccessToken("emp-1", auth.Role("owner"))
	assert.Error(t, err)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, expiresIn, err := svc.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	employeeID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employeeID)

	access, _, err := svc.GenerateAccessToken("emp-1", auth.RoleEmployee)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	other := NewJWTService("another-secret", time.Hour)
	_, err = other.ValidateSSEToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExpiredSSEToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateSSEToken("emp-1")
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestActorFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
		want   error
	}{
		{"wrong type", map[string]interface{}{"type": "sse", "employee_id": "emp-1", "role": "admin"}, auth.ErrInvalidToken},
		{"no employee", map[string]interface{}{"type": "access", "role": "admin"}, auth.ErrMissingIdentity},
		{"unknown role", map[string]interface{}{"type": "access", "employee_id": "emp-1", "role": "root"}, auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ActorFromClaims(tt.claims)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
