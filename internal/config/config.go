package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the whole service configuration. It is loaded once at startup
// from an optional YAML file and then overlaid with environment variables.
type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns int32 `yaml:"max_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		Audience   string `yaml:"audience"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
		// SigningKey is a base64-encoded ed25519 seed (32 bytes).
		// Empty means an ephemeral key is generated at boot (dev only).
		SigningKey string `yaml:"signing_key"`
	} `yaml:"jwt"`

	OAuth struct {
		// memory | cache. Memory keeps state in-process (single instance);
		// cache delegates to the configured cache backend so multiple
		// instances can share state.
		StateStore string `yaml:"state_store"`
		// DefaultRedirectURL is where users land after login when the
		// client did not supply a redirect of its own.
		DefaultRedirectURL string         `yaml:"default_redirect_url"`
		Google             ProviderConfig `yaml:"google"`
		Facebook           ProviderConfig `yaml:"facebook"`
	} `yaml:"oauth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Social struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"social"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		// auto | starttls | ssl | none
		TLS string `yaml:"tls"`
	} `yaml:"smtp"`

	Security struct {
		PasswordPolicy struct {
			MinLength    int  `yaml:"min_length"`
			RequireUpper bool `yaml:"require_upper"`
			RequireDigit bool `yaml:"require_digit"`
		} `yaml:"password_policy"`
	} `yaml:"security"`
}

// ProviderConfig carries the per-provider OAuth settings. Endpoint URLs are
// optional in YAML; the oauth package fills in the well-known defaults.
type ProviderConfig struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthorizeURL string   `yaml:"authorize_url"`
	TokenURL     string   `yaml:"token_url"`
	UserInfoURL  string   `yaml:"userinfo_url"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes"`
}

// Load reads the YAML file at path (if it exists), applies environment
// overrides and fills defaults. A missing file is not an error: env-only
// deployments are supported.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	sets := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setb := func(dst *bool, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	seti := func(dst *int, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	sets(&c.App.Env, "APP_ENV")
	sets(&c.Log.Level, "LOG_LEVEL")
	sets(&c.Server.Addr, "SERVER_ADDR")
	sets(&c.Storage.Driver, "STORAGE_DRIVER")
	sets(&c.Storage.DSN, "DATABASE_DSN")
	sets(&c.Cache.Kind, "CACHE_KIND")
	sets(&c.Cache.Redis.Addr, "REDIS_ADDR")
	seti(&c.Cache.Redis.DB, "REDIS_DB")
	sets(&c.JWT.Issuer, "JWT_ISSUER")
	sets(&c.JWT.SigningKey, "JWT_SIGNING_KEY")
	sets(&c.OAuth.StateStore, "OAUTH_STATE_STORE")
	sets(&c.OAuth.DefaultRedirectURL, "OAUTH_DEFAULT_REDIRECT_URL")
	sets(&c.SMTP.Host, "SMTP_HOST")
	seti(&c.SMTP.Port, "SMTP_PORT")
	sets(&c.SMTP.Username, "SMTP_USERNAME")
	sets(&c.SMTP.Password, "SMTP_PASSWORD")
	sets(&c.SMTP.From, "SMTP_FROM")

	applyProviderEnv(&c.OAuth.Google, "GOOGLE")
	applyProviderEnv(&c.OAuth.Facebook, "FACEBOOK")

	// Enabled flags last, so OAUTH_X_ENABLED=false can switch a provider
	// off even when credentials are present.
	setb(&c.OAuth.Google.Enabled, "OAUTH_GOOGLE_ENABLED")
	setb(&c.OAuth.Facebook.Enabled, "OAUTH_FACEBOOK_ENABLED")
}

func applyProviderEnv(p *ProviderConfig, name string) {
	prefix := "OAUTH_" + name + "_"
	if v := os.Getenv(prefix + "CLIENT_ID"); v != "" {
		p.ClientID = v
		p.Enabled = true
	}
	if v := os.Getenv(prefix + "CLIENT_SECRET"); v != "" {
		p.ClientSecret = v
	}
	if v := os.Getenv(prefix + "REDIRECT_URI"); v != "" {
		p.RedirectURI = v
	}
	if v := os.Getenv(prefix + "SCOPES"); v != "" {
		var scopes []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
		p.Scopes = scopes
	}
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "demoapp"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns <= 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "5m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "demoapp:"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "http://localhost:8080"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "demoapp"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "720h"
	}
	if c.OAuth.StateStore == "" {
		c.OAuth.StateStore = "memory"
	}
	if c.OAuth.DefaultRedirectURL == "" {
		c.OAuth.DefaultRedirectURL = "http://localhost:3000/auth/callback"
	}
	if c.Rate.Login.Limit <= 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Social.Limit <= 0 {
		c.Rate.Social.Limit = 30
	}
	if c.Rate.Social.Window == "" {
		c.Rate.Social.Window = "1m"
	}
	if c.Security.PasswordPolicy.MinLength <= 0 {
		c.Security.PasswordPolicy.MinLength = 8
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
}

// DurationOr parses s as a duration, returning def when empty or invalid.
func DurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
