package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.App.Env)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.Equal(t, "memory", cfg.OAuth.StateStore)
	require.Equal(t, "15m", cfg.JWT.AccessTTL)
	require.Equal(t, 10, cfg.Rate.Login.Limit)
	require.Equal(t, 8, cfg.Security.PasswordPolicy.MinLength)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "demoapp", cfg.App.Name)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: myapp
  env: prod
server:
  addr: ":9090"
oauth:
  default_redirect_url: https://app.example.com/done
  google:
    enabled: true
    client_id: gid
    client_secret: gsecret
    redirect_uri: https://api.example.com/cb
    scopes: [email, profile]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "myapp", cfg.App.Name)
	require.Equal(t, "prod", cfg.App.Env)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "https://app.example.com/done", cfg.OAuth.DefaultRedirectURL)
	require.True(t, cfg.OAuth.Google.Enabled)
	require.Equal(t, []string{"email", "profile"}, cfg.OAuth.Google.Scopes)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: ["), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600))

	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestProviderEnvAutoEnables(t *testing.T) {
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "gid")
	t.Setenv("OAUTH_GOOGLE_CLIENT_SECRET", "gsecret")
	t.Setenv("OAUTH_GOOGLE_REDIRECT_URI", "https://api.example.com/cb")
	t.Setenv("OAUTH_GOOGLE_SCOPES", "email, profile,")

	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.OAuth.Google.Enabled, "credentials in env switch the provider on")
	require.Equal(t, "gid", cfg.OAuth.Google.ClientID)
	require.Equal(t, []string{"email", "profile"}, cfg.OAuth.Google.Scopes)
	require.False(t, cfg.OAuth.Facebook.Enabled)
}

func TestProviderEnabledFlagWinsOverCredentials(t *testing.T) {
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "gid")
	t.Setenv("OAUTH_GOOGLE_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	require.False(t, cfg.OAuth.Google.Enabled)
}

func TestDurationOr(t *testing.T) {
	require.Equal(t, time.Minute, DurationOr("", time.Minute))
	require.Equal(t, time.Minute, DurationOr("bogus", time.Minute))
	require.Equal(t, time.Minute, DurationOr("-5s", time.Minute))
	require.Equal(t, 90*time.Second, DurationOr("90s", time.Minute))
}
