// Package auth implements local registration and password login on top of
// the user store and the token issuer.
package auth

import (
	"context"
	"errors"
	"strings"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	"github.com/burnick/demoapp-sub000/internal/oauth"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
	"github.com/burnick/demoapp-sub000/internal/security/password"
	"github.com/burnick/demoapp-sub000/internal/store"
	"github.com/burnick/demoapp-sub000/internal/token"
)

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Service drives the password-based auth flows.
type Service struct {
	users   store.UserStore
	issuer  *token.Issuer
	policy  password.Policy
	params  password.Params
	welcome oauth.WelcomeNotifier
}

func NewService(users store.UserStore, issuer *token.Issuer, policy password.Policy, welcome oauth.WelcomeNotifier) *Service {
	return &Service{
		users:   users,
		issuer:  issuer,
		policy:  policy,
		params:  password.Default,
		welcome: welcome,
	}
}

// Register creates a local account and issues its first session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*store.User, *oauth.SessionTokens, error) {
	log := logger.From(ctx).With(logger.Component("auth.service"), logger.Op("Register"))

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, nil, httperrors.ErrMissingFields
	}
	if ok, reasons := s.policy.Validate(in.Password); !ok {
		return nil, nil, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(reasons, ", "))
	}

	hash, err := password.Hash(s.params, in.Password)
	if err != nil {
		return nil, nil, httperrors.ErrInternalServerError.WithCause(err)
	}

	u := &store.User{
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: &hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, httperrors.ErrEmailAlreadyInUse
		}
		return nil, nil, httperrors.ErrInternalServerError.WithCause(err)
	}

	tokens, err := s.issuer.IssueSession(ctx, u)
	if err != nil {
		return nil, nil, httperrors.ErrInternalServerError.WithCause(err)
	}

	if s.welcome != nil {
		go s.welcome.SendWelcome(u.Email, u.Name)
	}

	log.Info("user registered", logger.UserID(u.ID))
	return u, tokens, nil
}

// Login verifies the local credential and issues a session. OAuth-only
// accounts fail with the same generic error as a wrong password.
func (s *Service) Login(ctx context.Context, email, plain string) (*store.User, *oauth.SessionTokens, error) {
	log := logger.From(ctx).With(logger.Component("auth.service"), logger.Op("Login"))

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plain == "" {
		return nil, nil, httperrors.ErrMissingFields
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, httperrors.ErrInvalidCredentials
		}
		return nil, nil, httperrors.ErrInternalServerError.WithCause(err)
	}

	if !u.HasPassword() || !password.Verify(plain, *u.PasswordHash) {
		log.Warn("login rejected", logger.UserID(u.ID))
		return nil, nil, httperrors.ErrInvalidCredentials
	}

	tokens, err := s.issuer.IssueSession(ctx, u)
	if err != nil {
		return nil, nil, httperrors.ErrInternalServerError.WithCause(err)
	}

	log.Info("user logged in", logger.UserID(u.ID))
	return u, tokens, nil
}

// Refresh rotates a refresh token into a new session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*oauth.SessionTokens, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, httperrors.ErrMissingFields
	}
	tokens, err := s.issuer.Refresh(ctx, refreshToken, s.users.GetByID)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) || errors.Is(err, token.ErrInvalidToken) {
			return nil, httperrors.ErrTokenInvalid
		}
		return nil, httperrors.ErrInternalServerError.WithCause(err)
	}
	return tokens, nil
}

// Logout drops the refresh token. Idempotent.
func (s *Service) Logout(refreshToken string) {
	if strings.TrimSpace(refreshToken) != "" {
		s.issuer.Revoke(refreshToken)
	}
}

// Me returns the account for the authenticated subject.
func (s *Service) Me(ctx context.Context, userID string) (*store.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperrors.ErrUserNotFound
		}
		return nil, httperrors.ErrInternalServerError.WithCause(err)
	}
	return u, nil
}
