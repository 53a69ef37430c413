// Package router assembles the HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/auth"
	healthctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/health"
	oauthctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/oauth"
	socialctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/social"
	usersctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/users"
	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	mw "github.com/burnick/demoapp-sub000/internal/http/middlewares"
	"github.com/burnick/demoapp-sub000/internal/metrics"
	"github.com/burnick/demoapp-sub000/internal/rate"
	"github.com/burnick/demoapp-sub000/internal/token"
)

// Deps carries everything the router mounts.
type Deps struct {
	Social *socialctrl.Controller
	Auth   *authctrl.Controller
	Users  *usersctrl.Controller
	Health *healthctrl.Controller
	OAuth  *oauthctrl.Controller

	Issuer *token.Issuer

	// Limiters are optional; nil disables limiting for that group.
	LoginLimiter  rate.Limiter
	SocialLimiter rate.Limiter

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// New builds the chi router with the full middleware stack.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())
	r.Use(mw.WithSecurityHeaders())
	r.Use(metrics.WithMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(mw.WithNoStore())

			r.Group(func(r chi.Router) {
				r.Use(mw.WithRateLimit(d.LoginLimiter, mw.IPOnlyRateKey))
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
			})
			r.Post("/refresh", d.Auth.Refresh)
			r.Post("/logout", d.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAuth(d.Issuer))
				r.Get("/me", d.Auth.Me)
			})

			r.Route("/social", func(r chi.Router) {
				r.Use(mw.WithRateLimit(d.SocialLimiter, mw.IPPathRateKey))
				r.Get("/providers", d.Social.Providers)
				r.Get("/status", d.Social.Status)
				r.Get("/{provider}/start", d.Social.Start)
				r.Get("/{provider}/callback", d.Social.Callback)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(mw.RequireAuth(d.Issuer))
			r.Post("/", d.Users.Create)
			r.Get("/", d.Users.List)
			r.Get("/{id}", d.Users.Get)
			r.Patch("/{id}", d.Users.Update)
			r.Delete("/{id}", d.Users.Delete)
		})

		r.Route("/oauth", func(r chi.Router) {
			r.Post("/introspect", d.OAuth.Introspect)
			r.Post("/revoke", d.OAuth.Revoke)
		})
	})

	return r
}
