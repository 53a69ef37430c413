package oauth

import (
	"sort"
	"strings"
	"sync"

	"github.com/burnick/demoapp-sub000/internal/config"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

// Provider is the closed set of supported identity providers.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// Providers lists every member of the closed enum, in display order.
var Providers = []Provider{ProviderGoogle, ProviderFacebook}

// ParseProvider maps a request string onto the enum. Unknown names return a
// ValidationError so handlers can answer 4xx without consulting the registry.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderFacebook:
		return ProviderFacebook, nil
	default:
		return "", validationErr("OAuth provider %q is not supported", s)
	}
}

// ProviderConfig is the resolved, immutable configuration of one provider.
type ProviderConfig struct {
	Name         Provider
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	RedirectURI  string
	Scopes       []string
	Enabled      bool
}

// ProviderInfo is the public descriptor returned to clients.
type ProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IconURL     string `json:"icon_url,omitempty"`
}

// RegistryStatus is the operational snapshot of the registry.
type RegistryStatus struct {
	Initialized      bool     `json:"initialized"`
	EnabledProviders []string `json:"enabled_providers"`
	TotalProviders   int      `json:"total_providers"`
}

// Well-known endpoints and defaults per provider. Config may override the
// URLs (useful to point tests at an httptest server).
var providerDefaults = map[Provider]ProviderConfig{
	ProviderGoogle: {
		AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     "https://oauth2.googleapis.com/token",
		UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
		Scopes:       []string{"openid", "email", "profile"},
	},
	ProviderFacebook: {
		AuthorizeURL: "https://www.facebook.com/v19.0/dialog/oauth",
		TokenURL:     "https://graph.facebook.com/v19.0/oauth/access_token",
		UserInfoURL:  "https://graph.facebook.com/me",
		Scopes:       []string{"email", "public_profile"},
	},
}

var providerDisplay = map[Provider]ProviderInfo{
	ProviderGoogle: {
		Name:        "google",
		DisplayName: "Google",
		IconURL:     "https://www.google.com/favicon.ico",
	},
	ProviderFacebook: {
		Name:        "facebook",
		DisplayName: "Facebook",
		IconURL:     "https://www.facebook.com/favicon.ico",
	},
}

// Registry holds the parsed provider configurations. It is built once at
// startup; a broken or empty configuration leaves it "not initialized"
// instead of failing the process, so the rest of the API keeps serving.
type Registry struct {
	mu          sync.RWMutex
	providers   map[Provider]ProviderConfig
	initialized bool
}

// NewRegistry parses the configuration immediately. Never returns an error:
// see Initialize.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{}
	r.Initialize(cfg)
	return r
}

// Initialize (re)parses provider settings from cfg. Providers with missing
// credentials are disabled with a warning rather than aborting startup.
func (r *Registry) Initialize(cfg *config.Config) {
	log := logger.L().With(logger.Component("oauth.registry"))

	parsed := make(map[Provider]ProviderConfig, len(Providers))
	if cfg != nil {
		parsed[ProviderGoogle] = resolveProvider(ProviderGoogle, cfg.OAuth.Google)
		parsed[ProviderFacebook] = resolveProvider(ProviderFacebook, cfg.OAuth.Facebook)
	}

	enabled := 0
	for name, pc := range parsed {
		if !pc.Enabled {
			continue
		}
		if pc.ClientID == "" || pc.ClientSecret == "" || pc.RedirectURI == "" {
			log.Warn("provider misconfigured, disabling",
				logger.Provider(string(name)),
				logger.Bool("has_client_id", pc.ClientID != ""),
				logger.Bool("has_client_secret", pc.ClientSecret != ""),
				logger.Bool("has_redirect_uri", pc.RedirectURI != ""),
			)
			pc.Enabled = false
			parsed[name] = pc
			continue
		}
		enabled++
	}

	r.mu.Lock()
	r.providers = parsed
	r.initialized = enabled > 0
	r.mu.Unlock()

	if enabled == 0 {
		log.Warn("no OAuth providers enabled, social login unavailable")
	} else {
		log.Info("OAuth providers initialized", logger.Count(enabled))
	}
}

// Reinitialize clears and re-parses, e.g. on config hot reload.
func (r *Registry) Reinitialize(cfg *config.Config) { r.Initialize(cfg) }

func resolveProvider(name Provider, pc config.ProviderConfig) ProviderConfig {
	def := providerDefaults[name]
	out := ProviderConfig{
		Name:         name,
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		AuthorizeURL: pc.AuthorizeURL,
		TokenURL:     pc.TokenURL,
		UserInfoURL:  pc.UserInfoURL,
		RedirectURI:  pc.RedirectURI,
		Scopes:       pc.Scopes,
		Enabled:      pc.Enabled,
	}
	if out.AuthorizeURL == "" {
		out.AuthorizeURL = def.AuthorizeURL
	}
	if out.TokenURL == "" {
		out.TokenURL = def.TokenURL
	}
	if out.UserInfoURL == "" {
		out.UserInfoURL = def.UserInfoURL
	}
	if len(out.Scopes) == 0 {
		out.Scopes = append([]string(nil), def.Scopes...)
	}
	return out
}

// Provider returns the configuration for an enabled provider. Unknown or
// disabled providers yield a ValidationError; an uninitialized registry
// yields a ConfigurationError.
func (r *Registry) Provider(name string) (ProviderConfig, error) {
	p, err := ParseProvider(name)
	if err != nil {
		return ProviderConfig{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return ProviderConfig{}, configErr("OAuth service is not initialized")
	}
	pc, ok := r.providers[p]
	if !ok || !pc.Enabled {
		return ProviderConfig{}, validationErr("OAuth provider %q is not enabled", name)
	}
	return pc, nil
}

// IsEnabled reports whether the named provider is configured and enabled.
func (r *Registry) IsEnabled(name string) bool {
	_, err := r.Provider(name)
	return err == nil
}

// AvailableProviders lists enabled providers with their display metadata.
func (r *Registry) AvailableProviders() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderInfo, 0, len(r.providers))
	for _, name := range Providers {
		if pc, ok := r.providers[name]; ok && pc.Enabled {
			out = append(out, providerDisplay[name])
		}
	}
	return out
}

// Status returns the registry snapshot for introspection endpoints.
func (r *Registry) Status() RegistryStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var enabled []string
	for name, pc := range r.providers {
		if pc.Enabled {
			enabled = append(enabled, string(name))
		}
	}
	sort.Strings(enabled)
	return RegistryStatus{
		Initialized:      r.initialized,
		EnabledProviders: enabled,
		TotalProviders:   len(r.providers),
	}
}
