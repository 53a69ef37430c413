// Package oauth holds the token introspection and revocation endpoints.
// Both are reserved surface: routed but not implemented yet.
package oauth

import (
	"net/http"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
)

type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

// Introspect handles POST /v1/oauth/introspect.
// TODO: implement RFC 7662 introspection once opaque access tokens land.
func (c *Controller) Introspect(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteError(w, httperrors.ErrNotImplemented)
}

// Revoke handles POST /v1/oauth/revoke.
func (c *Controller) Revoke(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteError(w, httperrors.ErrNotImplemented)
}
