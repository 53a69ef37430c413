package oauth

import (
	"context"
	"time"

	"github.com/burnick/demoapp-sub000/internal/metrics"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
	"github.com/burnick/demoapp-sub000/internal/store"
)

// SessionTokens are the local session credentials issued after a
// successful reconciliation. Values are owned by the token issuer.
type SessionTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenIssuer is the external collaborator that mints local sessions.
type TokenIssuer interface {
	IssueSession(ctx context.Context, u *store.User) (*SessionTokens, error)
}

// WelcomeNotifier is notified once per newly created account. Failures are
// the notifier's problem; the login flow never waits on it.
type WelcomeNotifier interface {
	SendWelcome(email, name string)
}

// AuthUser is the caller-facing slice of the local user record.
type AuthUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// AuthResult is returned to the caller after a completed callback.
type AuthResult struct {
	User      AuthUser      `json:"user"`
	Tokens    SessionTokens `json:"tokens"`
	IsNewUser bool          `json:"is_new_user"`
	// RedirectURL echoes the post-login landing page bound to the state,
	// or the configured default.
	RedirectURL string `json:"redirect_url,omitempty"`
}

// CallbackRequest carries the provider redirect parameters.
type CallbackRequest struct {
	Provider  string
	Code      string
	State     string
	Error     string
	ErrorDesc string
}

// ServiceStatus is the introspection snapshot of the whole bridge.
type ServiceStatus struct {
	Initialized      bool     `json:"initialized"`
	EnabledProviders []string `json:"enabled_providers"`
	TotalProviders   int      `json:"total_providers"`
	StateStoreSize   int      `json:"state_store_size"`
}

// Service is the third-party OAuth bridge: it issues authorization URLs,
// drives the callback exchange and reconciles external identities against
// the local user store.
type Service struct {
	registry   *Registry
	states     StateRepository
	client     *Client
	reconciler Reconciler
	tokens     TokenIssuer
	welcome    WelcomeNotifier

	defaultRedirectURL string
}

// ServiceDeps wires the service. Welcome may be nil.
type ServiceDeps struct {
	Registry           *Registry
	States             StateRepository
	Client             *Client
	Reconciler         Reconciler
	Tokens             TokenIssuer
	Welcome            WelcomeNotifier
	DefaultRedirectURL string
}

func NewService(d ServiceDeps) *Service {
	c := d.Client
	if c == nil {
		c = NewClient()
	}
	return &Service{
		registry:           d.Registry,
		states:             d.States,
		client:             c,
		reconciler:         d.Reconciler,
		tokens:             d.Tokens,
		welcome:            d.Welcome,
		defaultRedirectURL: d.DefaultRedirectURL,
	}
}

// AvailableProviders lists enabled providers for client display.
func (s *Service) AvailableProviders() []ProviderInfo {
	return s.registry.AvailableProviders()
}

// IsProviderEnabled reports whether the named provider can start a flow.
func (s *Service) IsProviderEnabled(name string) bool {
	return s.registry.IsEnabled(name)
}

// DefaultRedirectURL returns the configured post-login landing page for
// callers that did not supply one.
func (s *Service) DefaultRedirectURL() string { return s.defaultRedirectURL }

// AuthorizationURL issues a state bound to provider and redirectURL and
// returns the provider authorize URL carrying it.
func (s *Service) AuthorizationURL(ctx context.Context, provider, redirectURL string) (string, error) {
	pc, err := s.registry.Provider(provider)
	if err != nil {
		return "", err
	}

	key, err := s.states.Generate(ctx, pc.Name, redirectURL)
	if err != nil {
		return "", authErr(err, "failed to issue state")
	}
	return BuildAuthorizationURL(pc, key)
}

// HandleCallback validates the returned state, exchanges the code, fetches
// and normalizes the profile, reconciles it locally and issues session
// tokens. Every failure surfaces as one of the package error kinds.
func (s *Service) HandleCallback(ctx context.Context, req CallbackRequest) (*AuthResult, error) {
	log := logger.From(ctx).With(logger.Component("oauth.service"), logger.Provider(req.Provider))

	// Provider-side denial short-circuits everything else.
	if req.Error != "" {
		log.Warn("provider reported error",
			logger.String("error", req.Error),
			logger.String("description", req.ErrorDesc),
		)
		return nil, &AuthenticationError{Message: "OAuth provider returned error: " + req.Error}
	}

	pc, err := s.registry.Provider(req.Provider)
	if err != nil {
		return nil, err
	}

	st, ok := s.states.Consume(ctx, req.State)
	if !ok {
		return nil, validationErr("Invalid or expired OAuth state parameter")
	}
	// Guards against a state token replayed across providers.
	if st.Provider != pc.Name {
		log.Warn("state provider mismatch",
			logger.String("state_provider", string(st.Provider)),
		)
		return nil, validationErr("OAuth state provider mismatch")
	}

	res, err := s.completeLogin(ctx, pc, st, req.Code)
	if err != nil {
		metrics.SocialLogin(string(pc.Name), "failure")
		switch err.(type) {
		case *ValidationError, *AuthenticationError, *ConfigurationError:
			return nil, err
		default:
			// Never leak provider- or storage-specific error types.
			log.Error("callback failed", logger.Err(err))
			return nil, authErr(err, "OAuth authentication failed")
		}
	}

	metrics.SocialLogin(string(pc.Name), "success")
	return res, nil
}

func (s *Service) completeLogin(ctx context.Context, pc ProviderConfig, st State, code string) (*AuthResult, error) {
	log := logger.From(ctx).With(logger.Component("oauth.service"), logger.Provider(string(pc.Name)))

	tokens, err := s.client.ExchangeCode(ctx, pc, code)
	if err != nil {
		return nil, authErr(err, "OAuth authentication failed")
	}

	raw, err := s.client.FetchUserInfo(ctx, pc, tokens.AccessToken)
	if err != nil {
		return nil, authErr(err, "OAuth authentication failed")
	}

	info, err := Normalize(pc.Name, raw)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		log.Error("provider returned no email",
			logger.String("provider_user_id", info.ProviderUserID),
		)
		return nil, authErr(nil, "OAuth provider did not return an email address")
	}

	user, isNew, err := s.reconciler.Reconcile(ctx, info)
	if err != nil {
		return nil, authErr(err, "OAuth authentication failed")
	}

	session, err := s.tokens.IssueSession(ctx, user)
	if err != nil {
		return nil, authErr(err, "OAuth authentication failed")
	}

	if isNew && s.welcome != nil {
		// Fire and forget; the notifier logs its own failures.
		go s.welcome.SendWelcome(user.Email, user.Name)
	}

	redirect := st.RedirectURL
	if redirect == "" {
		redirect = s.defaultRedirectURL
	}

	log.Info("oauth login completed",
		logger.UserID(user.ID),
		logger.Bool("is_new_user", isNew),
	)

	return &AuthResult{
		User: AuthUser{
			ID:            user.ID,
			Email:         user.Email,
			Name:          user.Name,
			AvatarURL:     user.AvatarURL,
			EmailVerified: user.EmailVerified,
		},
		Tokens:      *session,
		IsNewUser:   isNew,
		RedirectURL: redirect,
	}, nil
}

// Status exposes registry and state-store figures for ops.
func (s *Service) Status() ServiceStatus {
	rs := s.registry.Status()
	return ServiceStatus{
		Initialized:      rs.Initialized,
		EnabledProviders: rs.EnabledProviders,
		TotalProviders:   rs.TotalProviders,
		StateStoreSize:   s.states.Count(),
	}
}

// StateCount exposes the live state count (metrics gauge).
func (s *Service) StateCount() int { return s.states.Count() }

// Shutdown stops the state sweeper and clears held states.
func (s *Service) Shutdown() { s.states.Close() }
