// Package social exposes the third-party OAuth endpoints.
package social

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	"github.com/burnick/demoapp-sub000/internal/http/helpers"
	"github.com/burnick/demoapp-sub000/internal/oauth"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

// Controller handles provider discovery, flow start and callback.
type Controller struct {
	service *oauth.Service
}

func NewController(service *oauth.Service) *Controller {
	return &Controller{service: service}
}

// ProvidersResponse is the JSON body for GET /v1/auth/social/providers.
type ProvidersResponse struct {
	Providers []oauth.ProviderInfo `json:"providers"`
}

// StartResponse carries the authorization URL the client must follow.
type StartResponse struct {
	Provider         string `json:"provider"`
	AuthorizationURL string `json:"authorization_url"`
}

// Providers handles GET /v1/auth/social/providers.
func (c *Controller) Providers(w http.ResponseWriter, r *http.Request) {
	providers := c.service.AvailableProviders()
	if providers == nil {
		providers = []oauth.ProviderInfo{}
	}
	helpers.WriteJSON(w, http.StatusOK, ProvidersResponse{Providers: providers})
}

// Start handles GET /v1/auth/social/{provider}/start. It issues a state
// and returns the provider authorization URL.
func (c *Controller) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("social.Start"),
		logger.Provider(provider),
	)

	redirectURL := strings.TrimSpace(r.URL.Query().Get("redirect_url"))
	if redirectURL == "" {
		redirectURL = c.service.DefaultRedirectURL()
	}

	authURL, err := c.service.AuthorizationURL(ctx, provider, redirectURL)
	if err != nil {
		log.Warn("start rejected", logger.Err(err))
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, StartResponse{
		Provider:         provider,
		AuthorizationURL: authURL,
	})
}

// Callback handles GET /v1/auth/social/{provider}/callback: the provider
// redirect carrying code/state (or an error parameter).
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("social.Callback"),
		logger.Provider(provider),
	)

	q := r.URL.Query()
	req := oauth.CallbackRequest{
		Provider:  provider,
		Code:      strings.TrimSpace(q.Get("code")),
		State:     strings.TrimSpace(q.Get("state")),
		Error:     strings.TrimSpace(q.Get("error")),
		ErrorDesc: strings.TrimSpace(q.Get("error_description")),
	}

	if req.Error == "" {
		if req.State == "" {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("state required"))
			return
		}
		if req.Code == "" {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("code required"))
			return
		}
	}

	result, err := c.service.HandleCallback(ctx, req)
	if err != nil {
		// The taxonomy decides the status; details stay in the logs.
		log.Warn("callback rejected", logger.Err(err))
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}

// Status handles GET /v1/auth/social/status for ops introspection.
func (c *Controller) Status(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Status())
}
