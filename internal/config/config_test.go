package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_MAX_AGE", "")
	t.Setenv("SESSION_UPDATE_AGE", "")
	t.Setenv("SESSION_COOKIE_NAME", "")
	t.Setenv("CONFIG_FILE", "")

	cfg := Load()

	require.Equal(t, 30*24*time.Hour, cfg.SessionMaxAge)
	require.Equal(t, 24*time.Hour, cfg.SessionUpdateAge)
	require.Equal(t, "sharpexec.session-token.v1", cfg.SessionCookieName)
	require.NotEmpty(t, cfg.SessionSecret, "dev gets a fallback secret")
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFallbackSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	cfg := Load()

	require.True(t, cfg.IsProduction())
	require.Empty(t, cfg.SessionSecret)
	require.Error(t, cfg.Validate())
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "go duration", value: "36h", want: 36 * time.Hour},
		{name: "plain seconds", value: "60", want: time.Minute},
		{name: "garbage falls back", value: "soon", want: time.Second},
		{name: "empty falls back", value: "", want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			require.Equal(t, tt.want, getEnvDuration("TEST_DURATION", time.Second))
		})
	}
}

func TestValidate_UpdateAgeMustBeBelowMaxAge(t *testing.T) {
	cfg := Config{
		SessionSecret:     "s",
		SessionCookieName: "c",
		SessionMaxAge:     time.Hour,
		SessionUpdateAge:  2 * time.Hour,
		LoginRateLimit:    5,
		LoginRateWindow:   time.Minute,
	}

	require.Error(t, cfg.Validate())

	cfg.SessionUpdateAge = 10 * time.Minute
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	body := `
env: test
session:
  secret: from-file
  max_age: 48h
  update_age: 1h
login_throttle:
  limit: 9
public_paths:
  - /
  - /admin/login
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()

	require.Equal(t, "test", cfg.Env)
	require.Equal(t, "from-file", cfg.SessionSecret)
	require.Equal(t, 48*time.Hour, cfg.SessionMaxAge)
	require.Equal(t, time.Hour, cfg.SessionUpdateAge)
	require.Equal(t, 9, cfg.LoginRateLimit)
	require.Equal(t, []string{"/", "/admin/login"}, cfg.PublicPaths)
}

func TestSplitCSV(t *testing.T) {
	require.Nil(t, splitCSV(""))
	require.Equal(t, []string{"/a", "/b*"}, splitCSV(" /a , ,/b* "))
}
