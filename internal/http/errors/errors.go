// Package errors defines the HTTP error envelope and the mapping from
// domain errors to responses.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/burnick/demoapp-sub000/internal/oauth"
	"github.com/burnick/demoapp-sub000/internal/store"
)

// errorResponse controls exactly which fields reach the client.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError writes an HTTP response for the given error. Plain errors are
// wrapped as generic internal errors first.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// FromDomain maps domain-layer errors onto the HTTP envelope.
// AuthenticationError details stay out of the response on purpose; the
// caller logs them.
func FromDomain(err error) *AppError {
	var ve *oauth.ValidationError
	if errors.As(err, &ve) {
		return ErrBadRequest.WithDetail(ve.Message)
	}
	var ce *oauth.ConfigurationError
	if errors.As(err, &ce) {
		return ErrServiceUnavailable.WithDetail(ce.Message)
	}
	var ae *oauth.AuthenticationError
	if errors.As(err, &ae) {
		return ErrOAuthFailed.WithCause(err)
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound.WithCause(err)
	}
	if errors.Is(err, store.ErrConflict) {
		return ErrConflict.WithCause(err)
	}
	return FromError(err)
}
