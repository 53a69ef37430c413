// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/burnick/demoapp-sub000/internal/http/helpers"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

// Check probes one dependency; nil error means ready.
type Check func(ctx context.Context) error

// Controller aggregates the readiness checks.
type Controller struct {
	checks map[string]Check
}

func NewController(checks map[string]Check) *Controller {
	return &Controller{checks: checks}
}

// Healthz handles GET /healthz. Always 200 while the process is up.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz. 503 when any dependency check fails.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(ctx); err != nil {
			logger.From(ctx).Warn("readiness check failed",
				logger.Component("health"),
				logger.String("check", name),
				logger.Err(err),
			)
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	helpers.WriteJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": results,
	})
}
