package oauth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/burnick/demoapp-sub000/internal/config"
)

func registryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.OAuth.Google = config.ProviderConfig{
		Enabled:      true,
		ClientID:     "google-client",
		ClientSecret: "google-secret",
		RedirectURI:  "https://api.example.com/v1/auth/social/google/callback",
	}
	cfg.OAuth.Facebook = config.ProviderConfig{
		Enabled:      true,
		ClientID:     "fb-client",
		ClientSecret: "fb-secret",
		RedirectURI:  "https://api.example.com/v1/auth/social/facebook/callback",
	}
	return cfg
}

func TestParseProvider(t *testing.T) {
	t.Parallel()

	p, err := ParseProvider("Google")
	require.NoError(t, err)
	require.Equal(t, ProviderGoogle, p)

	p, err = ParseProvider("  facebook ")
	require.NoError(t, err)
	require.Equal(t, ProviderFacebook, p)

	_, err = ParseProvider("github")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRegistryDefaultsApplied(t *testing.T) {
	t.Parallel()
	r := NewRegistry(registryConfig())

	pc, err := r.Provider("google")
	require.NoError(t, err)
	require.Equal(t, "https://oauth2.googleapis.com/token", pc.TokenURL)
	require.Equal(t, []string{"openid", "email", "profile"}, pc.Scopes)

	pc, err = r.Provider("facebook")
	require.NoError(t, err)
	require.Equal(t, "https://graph.facebook.com/me", pc.UserInfoURL)
}

func TestRegistryConfigOverridesEndpoints(t *testing.T) {
	t.Parallel()
	cfg := registryConfig()
	cfg.OAuth.Google.TokenURL = "http://127.0.0.1:9999/token"
	cfg.OAuth.Google.Scopes = []string{"email"}

	r := NewRegistry(cfg)
	pc, err := r.Provider("google")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9999/token", pc.TokenURL)
	require.Equal(t, []string{"email"}, pc.Scopes)
}

func TestRegistryDisablesMisconfiguredProvider(t *testing.T) {
	t.Parallel()
	cfg := registryConfig()
	cfg.OAuth.Facebook.ClientSecret = ""

	r := NewRegistry(cfg)

	_, err := r.Provider("facebook")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	// Google is untouched.
	require.True(t, r.IsEnabled("google"))

	st := r.Status()
	require.True(t, st.Initialized)
	require.Equal(t, []string{"google"}, st.EnabledProviders)
	require.Equal(t, 2, st.TotalProviders)
}

func TestRegistryUninitialized(t *testing.T) {
	t.Parallel()
	r := NewRegistry(&config.Config{})

	_, err := r.Provider("google")
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)

	require.False(t, r.Status().Initialized)
	require.Empty(t, r.AvailableProviders())
}

func TestRegistryUnknownProviderBeatsUninitialized(t *testing.T) {
	t.Parallel()
	r := NewRegistry(&config.Config{})

	// An unknown name is the caller's fault even when the registry is down.
	_, err := r.Provider("twitter")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAvailableProvidersOrder(t *testing.T) {
	t.Parallel()
	r := NewRegistry(registryConfig())

	infos := r.AvailableProviders()
	require.Len(t, infos, 2)
	require.Equal(t, "google", infos[0].Name)
	require.Equal(t, "Google", infos[0].DisplayName)
	require.Equal(t, "facebook", infos[1].Name)
}

func TestRegistryReinitialize(t *testing.T) {
	t.Parallel()
	r := NewRegistry(registryConfig())
	require.True(t, r.IsEnabled("facebook"))

	cfg := registryConfig()
	cfg.OAuth.Facebook.Enabled = false
	r.Reinitialize(cfg)

	require.False(t, r.IsEnabled("facebook"))
	require.True(t, r.IsEnabled("google"))
}
