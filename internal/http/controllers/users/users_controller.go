// Package users exposes the administrative user CRUD endpoints.
package users

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	"github.com/burnick/demoapp-sub000/internal/http/helpers"
	userssvc "github.com/burnick/demoapp-sub000/internal/http/services/users"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
	"github.com/burnick/demoapp-sub000/internal/store"
)

type Controller struct {
	service *userssvc.Service
}

func NewController(service *userssvc.Service) *Controller {
	return &Controller{service: service}
}

type userResponse struct {
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

func toUserResponse(u *store.User) userResponse {
	return userResponse{
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

type createRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type updateRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar"`
	Password  *string `json:"password"`
}

type listResponse struct {
	Users  []userResponse `json:"users"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Create handles POST /v1/users.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("users.Create"))

	var req createRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	u, err := c.service.Create(ctx, userssvc.CreateInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		log.Warn("create rejected", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// Get handles GET /v1/users/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := c.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// List handles GET /v1/users with limit/offset pagination.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	users, total, err := c.service.List(ctx, limit, offset)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	helpers.WriteJSON(w, http.StatusOK, listResponse{
		Users:  out,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Update handles PATCH /v1/users/{id}.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("users.Update"))

	var req updateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	u, err := c.service.Update(ctx, chi.URLParam(r, "id"), userssvc.UpdateInput{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Password:  req.Password,
	})
	if err != nil {
		log.Warn("update rejected", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// Delete handles DELETE /v1/users/{id}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
