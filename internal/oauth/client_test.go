package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExchangeCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))

		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		require.Equal(t, "google-client", r.PostFormValue("client_id"))
		require.Equal(t, "google-secret", r.PostFormValue("client_secret"))
		require.Equal(t, "https://api.example.com/cb", r.PostFormValue("redirect_uri"))
		require.Equal(t, "auth-code-1", r.PostFormValue("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3599}`))
	}))
	defer srv.Close()

	pc := ProviderConfig{
		Name:         ProviderGoogle,
		ClientID:     "google-client",
		ClientSecret: "google-secret",
		RedirectURI:  "https://api.example.com/cb",
		TokenURL:     srv.URL,
	}

	tr, err := NewClient().ExchangeCode(context.Background(), pc, "auth-code-1")
	require.NoError(t, err)
	require.Equal(t, "at-1", tr.AccessToken)
	require.Equal(t, "Bearer", tr.TokenType)
}

func TestExchangeCodeErrorPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Code was already redeemed."}`))
	}))
	defer srv.Close()

	pc := ProviderConfig{Name: ProviderGoogle, TokenURL: srv.URL}
	_, err := NewClient().ExchangeCode(context.Background(), pc, "used-code")

	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
	require.Contains(t, ae.Error(), "invalid_grant")
}

func TestExchangeCodeNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	pc := ProviderConfig{Name: ProviderGoogle, TokenURL: srv.URL}
	_, err := NewClient().ExchangeCode(context.Background(), pc, "code")

	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
}

func TestExchangeCodeMissingAccessToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	pc := ProviderConfig{Name: ProviderGoogle, TokenURL: srv.URL}
	_, err := NewClient().ExchangeCode(context.Background(), pc, "code")

	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
}

func TestFetchUserInfoGoogle(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		require.Empty(t, r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","email":"a@example.com"}`))
	}))
	defer srv.Close()

	pc := ProviderConfig{Name: ProviderGoogle, UserInfoURL: srv.URL}
	raw, err := NewClient().FetchUserInfo(context.Background(), pc, "at-1")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"1","email":"a@example.com"}`, string(raw))
}

func TestFetchUserInfoFacebookRequestsFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "id,email,name,first_name,last_name,picture", r.URL.Query().Get("fields"))
		require.Equal(t, "Bearer fb-at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"fb-1"}`))
	}))
	defer srv.Close()

	pc := ProviderConfig{Name: ProviderFacebook, UserInfoURL: srv.URL}
	_, err := NewClient().FetchUserInfo(context.Background(), pc, "fb-at")
	require.NoError(t, err)
}

func TestFetchUserInfoRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token."}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	pc := ProviderConfig{Name: ProviderGoogle, UserInfoURL: srv.URL}
	_, err := NewClient().FetchUserInfo(context.Background(), pc, "expired")

	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
}
