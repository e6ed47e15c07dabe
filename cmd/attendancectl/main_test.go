package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "ctl-secret")

	out, err := runCmd(t, "token", "--user", "importer-1", "--role", "importer")
	require.NoError(t, err)

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.NotEmpty(t, body.AccessToken)

	decoded, err := jwt.NewJWTService("ctl-secret").JWTAuth().Decode(body.AccessToken)
	require.NoError(t, err)
	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)

	identity, err := jwt.IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "importer-1", identity.UserID)
	assert.Equal(t, user.RoleImporter, identity.Role)
	assert.Nil(t, identity.EmployeeID)
}

func TestTokenCommand_Rejects(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "ctl-secret")

	_, err := runCmd(t, "token", "--user", "u", "--role", "superuser")
	assert.ErrorContains(t, err, "unknown role")

	_, err = runCmd(t, "token", "--user", "u", "--ttl", "0s")
	assert.ErrorContains(t, err, "--ttl")

	_, err = runCmd(t, "token", "--role", "hr")
	assert.Error(t, err)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := runCmd(t, "token", "--user", "u")
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}

func TestRecomputeRequiresFlags(t *testing.T) {
	_, err := runCmd(t, "recompute", "--employee", "7")
	assert.ErrorContains(t, err, "date")
}

func TestOptionalHelpers(t *testing.T) {
	assert.Nil(t, optionalID(0))
	assert.Equal(t, int64(5), *optionalID(5))
	assert.Nil(t, optionalString(""))
	assert.Equal(t, "08:00", *optionalString("08:00"))
}
