package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/flashdeck/flashcards-api/internal/config"
	"github.com/flashdeck/flashcards-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// setTestEnv isolates config loading from any config.yaml or .env files
// and provides the settings every command needs.
func setTestEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("FLASHCARDS_DATABASE_URL", "postgres://flash:pw@localhost:5432/flashcards")
	t.Setenv("FLASHCARDS_AUTH_JWT_SECRET", testSecret)
	t.Setenv("FLASHCARDS_SERVER_LOG_LEVEL", "error")
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd_IssuesValidToken(t *testing.T) {
	setTestEnv(t)

	out, err := runRoot(t, "token", "--subject", "local|alice", "--nickname", "alice", "--ttl", "1h")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "local|alice", claims.Subject)
	assert.Equal(t, "alice", claims.Nickname)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestTokenCmd_RequiresSubject(t *testing.T) {
	setTestEnv(t)

	_, err := runRoot(t, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"subject"`)
}

func TestTokenCmd_RejectsIssuerMode(t *testing.T) {
	setTestEnv(t)
	t.Setenv("FLASHCARDS_AUTH_JWT_SECRET", "")
	t.Setenv("FLASHCARDS_AUTH_ISSUER_URL", "https://issuer.example.com/")
	t.Setenv("FLASHCARDS_AUTH_AUDIENCE", "https://api.example.com")

	_, err := runRoot(t, "token", "--subject", "local|alice")
	assert.ErrorIs(t, err, errIssuerMode)
}

func TestConfigFlag(t *testing.T) {
	setTestEnv(t)
	t.Setenv("FLASHCARDS_AUTH_JWT_SECRET", "")

	_, err := runRoot(t, "--config", "missing.yaml", "token", "--subject", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}
