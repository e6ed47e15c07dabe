package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	employeeID := int64(42)

	token, expiresAt, err := svc.GenerateAccessToken("user-1", &employeeID, user.RoleEmployee, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)

	identity, err := IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, user.RoleEmployee, identity.Role)
	require.NotNil(t, identity.EmployeeID)
	assert.Equal(t, int64(42), *identity.EmployeeID)
}

func TestIdentityFromClaims_Rejects(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"refresh token": {"type": "refresh", "user_id": "u", "role": "hr"},
		"missing role":  {"type": "access", "user_id": "u"},
		"bad employee":  {"type": "access", "user_id": "u", "role": "employee", "employee_id": true},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := IdentityFromClaims(claims)
			assert.ErrorIs(t, err, user.ErrInvalidToken)
		})
	}
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	issuer := NewJWTService("one")
	verifier := NewJWTService("two")

	token, _, err := issuer.GenerateAccessToken("u", nil, user.RoleHR, time.Hour)
	require.NoError(t, err)

	_, err = verifier.JWTAuth().Decode(token)
	assert.Error(t, err)
}
