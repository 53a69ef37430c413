// Package users implements the administrative user CRUD.
package users

import (
	"context"
	"errors"
	"strings"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
	"github.com/burnick/demoapp-sub000/internal/security/password"
	"github.com/burnick/demoapp-sub000/internal/store"
)

type CreateInput struct {
	Email    string
	Name     string
	Password string
}

type UpdateInput struct {
	Name      *string
	AvatarURL *string
	Password  *string
}

// Service wraps the user store with validation and error mapping.
type Service struct {
	users  store.UserStore
	policy password.Policy
	params password.Params
}

func NewService(users store.UserStore, policy password.Policy) *Service {
	return &Service{users: users, policy: policy, params: password.Default}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*store.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return nil, httperrors.ErrMissingFields
	}

	u := &store.User{
		Email: in.Email,
		Name:  strings.TrimSpace(in.Name),
	}
	if in.Password != "" {
		if ok, reasons := s.policy.Validate(in.Password); !ok {
			return nil, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(reasons, ", "))
		}
		hash, err := password.Hash(s.params, in.Password)
		if err != nil {
			return nil, httperrors.ErrInternalServerError.WithCause(err)
		}
		u.PasswordHash = &hash
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, httperrors.ErrEmailAlreadyInUse
		}
		return nil, httperrors.ErrInternalServerError.WithCause(err)
	}

	logger.From(ctx).Info("user created",
		logger.Component("users.service"),
		logger.UserID(u.ID),
	)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*store.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperrors.ErrUserNotFound
		}
		return nil, httperrors.ErrInternalServerError.WithCause(err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*store.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, httperrors.ErrInternalServerError.WithCause(err)
	}
	return users, total, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*store.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperrors.ErrUserNotFound
		}
		return nil, httperrors.ErrInternalServerError.WithCause(err)
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	if in.Password != nil {
		if ok, reasons := s.policy.Validate(*in.Password); !ok {
			return nil, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(reasons, ", "))
		}
		hash, err := password.Hash(s.params, *in.Password)
		if err != nil {
			return nil, httperrors.ErrInternalServerError.WithCause(err)
		}
		u.PasswordHash = &hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, httperrors.ErrEmailAlreadyInUse
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperrors.ErrUserNotFound
		}
		return nil, httperrors.ErrInternalServerError.WithCause(err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.ErrUserNotFound
		}
		return httperrors.ErrInternalServerError.WithCause(err)
	}
	logger.From(ctx).Info("user deleted",
		logger.Component("users.service"),
		logger.UserID(id),
	)
	return nil
}
