// Package auth exposes local registration, login and session endpoints.
package auth

import (
	"net/http"
	"time"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	"github.com/burnick/demoapp-sub000/internal/http/helpers"
	"github.com/burnick/demoapp-sub000/internal/http/middlewares"
	authsvc "github.com/burnick/demoapp-sub000/internal/http/services/auth"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
	"github.com/burnick/demoapp-sub000/internal/store"
)

type Controller struct {
	service *authsvc.Service
}

func NewController(service *authsvc.Service) *Controller {
	return &Controller{service: service}
}

// UserResponse is the public projection of a user record.
type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	AvatarURL     string    `json:"avatar,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	HasPassword   bool      `json:"has_password"`
	Provider      string    `json:"provider,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		AvatarURL:     u.AvatarURL,
		EmailVerified: u.EmailVerified,
		HasPassword:   u.HasPassword(),
		Provider:      u.Provider,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	User   UserResponse `json:"user"`
	Tokens any          `json:"tokens"`
}

// Register handles POST /v1/auth/register.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Register"))

	var req registerRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	u, tokens, err := c.service.Register(ctx, authsvc.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		log.Warn("register rejected", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, sessionResponse{
		User:   toUserResponse(u),
		Tokens: tokens,
	})
}

// Login handles POST /v1/auth/login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Login"))

	var req loginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	u, tokens, err := c.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Warn("login rejected", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, sessionResponse{
		User:   toUserResponse(u),
		Tokens: tokens,
	})
}

// Refresh handles POST /v1/auth/refresh.
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	tokens, err := c.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

// Logout handles POST /v1/auth/logout. Always 204.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	c.service.Logout(req.RefreshToken)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/auth/me for the authenticated subject.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	u, err := c.service.Me(ctx, userID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
