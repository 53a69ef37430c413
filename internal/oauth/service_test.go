package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/burnick/demoapp-sub000/internal/config"
	"github.com/burnick/demoapp-sub000/internal/store"
	memstore "github.com/burnick/demoapp-sub000/internal/store/memory"
)

type fakeIssuer struct{ fail bool }

func (f fakeIssuer) IssueSession(ctx context.Context, u *store.User) (*SessionTokens, error) {
	if f.fail {
		return nil, context.DeadlineExceeded
	}
	return &SessionTokens{
		AccessToken:  "access-" + u.ID,
		RefreshToken: "refresh-" + u.ID,
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	}, nil
}

type welcomeRecorder struct{ ch chan string }

func newWelcomeRecorder() *welcomeRecorder {
	return &welcomeRecorder{ch: make(chan string, 1)}
}

func (w *welcomeRecorder) SendWelcome(email, name string) { w.ch <- email }

func (w *welcomeRecorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case email := <-w.ch:
		return email
	case <-time.After(2 * time.Second):
		t.Fatal("welcome notification never arrived")
		return ""
	}
}

// fakeProvider stands in for Google's token and userinfo endpoints.
func fakeProvider(t *testing.T, profile string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-at","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer provider-at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profile))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type serviceFixture struct {
	svc     *Service
	states  *memoryStateRepository
	users   *memstore.Store
	welcome *welcomeRecorder
}

func newServiceFixture(t *testing.T, profile string) *serviceFixture {
	t.Helper()
	srv := fakeProvider(t, profile)

	cfg := registryConfig()
	cfg.OAuth.Google.TokenURL = srv.URL + "/token"
	cfg.OAuth.Google.UserInfoURL = srv.URL + "/userinfo"

	states := newMemoryStateRepository(time.Now)
	users := memstore.New()
	welcome := newWelcomeRecorder()

	svc := NewService(ServiceDeps{
		Registry:           NewRegistry(cfg),
		States:             states,
		Reconciler:         &StoreReconciler{Users: users},
		Tokens:             fakeIssuer{},
		Welcome:            welcome,
		DefaultRedirectURL: "http://localhost:3000/auth/callback",
	})
	return &serviceFixture{svc: svc, states: states, users: users, welcome: welcome}
}

// stateFromAuthURL starts a flow and pulls the bound state key back out of
// the authorize URL, the way a browser would carry it to the provider.
func stateFromAuthURL(t *testing.T, svc *Service, provider, redirect string) string {
	t.Helper()
	raw, err := svc.AuthorizationURL(context.Background(), provider, redirect)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestHandleCallbackNewUser(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)
	ctx := context.Background()

	state := stateFromAuthURL(t, f.svc, "google", "https://app.example.com/welcome")

	res, err := f.svc.HandleCallback(ctx, CallbackRequest{
		Provider: "google",
		Code:     "good-code",
		State:    state,
	})
	require.NoError(t, err)

	require.True(t, res.IsNewUser)
	require.Equal(t, "ada@example.com", res.User.Email, "reconciliation lowercases the address")
	require.Equal(t, "Ada Lovelace", res.User.Name)
	require.True(t, res.User.EmailVerified)
	require.Equal(t, "https://app.example.com/welcome", res.RedirectURL)
	require.NotEmpty(t, res.Tokens.AccessToken)
	require.NotEmpty(t, res.Tokens.RefreshToken)

	// The account was persisted without a local credential.
	u, err := f.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.False(t, u.HasPassword())
	require.Equal(t, "google", u.Provider)
	require.Equal(t, "108012345", u.ProviderUserID)

	require.Equal(t, "ada@example.com", f.welcome.wait(t))
}

func TestHandleCallbackExistingUser(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &store.User{
		Email: "ada@example.com",
		Name:  "Ada",
	}))

	state := stateFromAuthURL(t, f.svc, "google", "")
	res, err := f.svc.HandleCallback(ctx, CallbackRequest{
		Provider: "google",
		Code:     "good-code",
		State:    state,
	})
	require.NoError(t, err)

	require.False(t, res.IsNewUser)
	require.Equal(t, "http://localhost:3000/auth/callback", res.RedirectURL, "empty bound redirect falls back to the default")

	// No duplicate account, no welcome mail.
	_, total, err := f.users.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	select {
	case <-f.welcome.ch:
		t.Fatal("existing users must not get a welcome mail")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandleCallbackProviderError(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)

	_, err := f.svc.HandleCallback(context.Background(), CallbackRequest{
		Provider: "google",
		Error:    "access_denied",
	})
	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
	require.Contains(t, ae.Error(), "access_denied")
}

func TestHandleCallbackUnknownState(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)

	_, err := f.svc.HandleCallback(context.Background(), CallbackRequest{
		Provider: "google",
		Code:     "good-code",
		State:    "deadbeefdeadbeefdeadbeefdeadbeef",
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Error(), "Invalid or expired OAuth state")
}

func TestHandleCallbackStateReplay(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)
	ctx := context.Background()

	state := stateFromAuthURL(t, f.svc, "google", "")
	_, err := f.svc.HandleCallback(ctx, CallbackRequest{Provider: "google", Code: "good-code", State: state})
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(ctx, CallbackRequest{Provider: "google", Code: "good-code", State: state})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestHandleCallbackProviderMismatch(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)
	ctx := context.Background()

	// A state issued for facebook presented on the google callback.
	key, err := f.states.Generate(ctx, ProviderFacebook, "")
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(ctx, CallbackRequest{
		Provider: "google",
		Code:     "good-code",
		State:    key,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Error(), "provider mismatch")
}

func TestHandleCallbackBadCode(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)
	ctx := context.Background()

	state := stateFromAuthURL(t, f.svc, "google", "")
	_, err := f.svc.HandleCallback(ctx, CallbackRequest{
		Provider: "google",
		Code:     "stolen-code",
		State:    state,
	})
	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)

	// The state was still burned.
	require.Equal(t, 0, f.states.Count())
}

func TestHandleCallbackMissingEmail(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, `{"id":"108012345","name":"No Email"}`)
	ctx := context.Background()

	state := stateFromAuthURL(t, f.svc, "google", "")
	_, err := f.svc.HandleCallback(ctx, CallbackRequest{
		Provider: "google",
		Code:     "good-code",
		State:    state,
	})
	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
	require.Contains(t, ae.Error(), "email")
}

func TestHandleCallbackDisabledProvider(t *testing.T) {
	t.Parallel()
	cfg := registryConfig()
	cfg.OAuth.Facebook.Enabled = false

	svc := NewService(ServiceDeps{
		Registry: NewRegistry(cfg),
		States:   newMemoryStateRepository(time.Now),
	})

	_, err := svc.HandleCallback(context.Background(), CallbackRequest{
		Provider: "facebook",
		Code:     "good-code",
		State:    "irrelevant",
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Error(), "not enabled")
}

func TestAuthorizationURLDisabledProvider(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.OAuth.Google = config.ProviderConfig{Enabled: true, ClientID: "id", ClientSecret: "secret", RedirectURI: "https://x/cb"}

	svc := NewService(ServiceDeps{
		Registry: NewRegistry(cfg),
		States:   newMemoryStateRepository(time.Now),
	})

	_, err := svc.AuthorizationURL(context.Background(), "facebook", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestServiceStatus(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t, googlePayload)

	stateFromAuthURL(t, f.svc, "google", "")
	stateFromAuthURL(t, f.svc, "google", "")

	st := f.svc.Status()
	require.True(t, st.Initialized)
	require.Equal(t, 2, st.StateStoreSize)
	require.Contains(t, st.EnabledProviders, "google")
	require.Equal(t, 2, f.svc.StateCount())

	f.svc.Shutdown()
	require.Equal(t, 0, f.svc.StateCount())
}
