package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/auth"
	"github.com/abduss/photocat/internal/config"
)

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	t.Setenv("PHOTOCAT_API_SECRET", "secret")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(zap.NewNop())
	cmd.SetArgs([]string{"token", "alice"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	require.NoError(t, cmd.Execute())

	cfg, err := config.Load()
	require.NoError(t, err)
	claims, err := auth.NewService(cfg.Auth).Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Contains(t, errOut.String(), "expires")
}

func TestTokenCommandWithoutSecret(t *testing.T) {
	t.Setenv("PHOTOCAT_API_SECRET", "")

	cmd := newRootCmd(zap.NewNop())
	cmd.SetArgs([]string{"token", "alice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.ErrorIs(t, cmd.Execute(), auth.ErrSecretMissing)
}

func TestUnknownBackendFailsBeforeConnecting(t *testing.T) {
	t.Setenv("PHOTOCAT_METADATA_BACKEND", "sqlite")

	cmd := newRootCmd(zap.NewNop())
	cmd.SetArgs([]string{"ingest"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metadata backend")
}

func TestDescriptionPath(t *testing.T) {
	cfg := config.Config{Metadata: config.MetadataConfig{DescriptionFile: "photoData.json"}}

	assert.Equal(t, "photoData.json", descriptionPath(nil, cfg))
	assert.Equal(t, "other.json", descriptionPath([]string{"other.json"}, cfg))
}

func TestInvalidLogLevelFailsBeforeRunning(t *testing.T) {
	t.Setenv("PHOTOCAT_API_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "loud")

	cmd := newRootCmd(zap.NewNop())
	cmd.SetArgs([]string{"token", "alice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}
