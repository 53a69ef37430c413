package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/burnick/demoapp-sub000/internal/oauth"
	"github.com/burnick/demoapp-sub000/internal/store"
)

func TestFromDomainTaxonomy(t *testing.T) {
	t.Parallel()

	app := FromDomain(&oauth.ValidationError{Message: "Invalid or expired OAuth state parameter"})
	require.Equal(t, http.StatusBadRequest, app.HTTPStatus)
	require.Equal(t, "Invalid or expired OAuth state parameter", app.Detail)

	app = FromDomain(&oauth.ConfigurationError{Message: "OAuth service is not initialized"})
	require.Equal(t, http.StatusServiceUnavailable, app.HTTPStatus)

	app = FromDomain(&oauth.AuthenticationError{Message: "token endpoint error: invalid_grant"})
	require.Equal(t, http.StatusUnauthorized, app.HTTPStatus)
	require.Equal(t, "OAuth authentication failed.", app.Message)
	// The provider-side detail never reaches the envelope.
	require.Empty(t, app.Detail)

	require.Equal(t, http.StatusNotFound, FromDomain(store.ErrNotFound).HTTPStatus)
	require.Equal(t, http.StatusConflict, FromDomain(store.ErrConflict).HTTPStatus)
	require.Equal(t, http.StatusInternalServerError, FromDomain(errors.New("boom")).HTTPStatus)
}

func TestWriteErrorEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, ErrOAuthFailed.WithCause(errors.New("exchange: connection refused")))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "OAUTH_FAILED", body["code"])
	require.Equal(t, "OAuth authentication failed.", body["message"])
	// The cause is for logs only.
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWriteErrorWrapsPlainErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("sql: database is closed"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "sql:")
}

func TestWithDetailCopies(t *testing.T) {
	t.Parallel()

	detailed := ErrBadRequest.WithDetail("state required")
	require.Equal(t, "state required", detailed.Detail)
	require.Empty(t, ErrBadRequest.Detail, "base vars must stay untouched")

	caused := ErrNotFound.WithCause(errors.New("x"))
	require.Nil(t, ErrNotFound.Err)
	require.Error(t, caused.Err)
}
