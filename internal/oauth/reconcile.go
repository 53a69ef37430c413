package oauth

import (
	"context"
	"errors"

	"github.com/burnick/demoapp-sub000/internal/observability/logger"
	"github.com/burnick/demoapp-sub000/internal/store"
)

// Reconciler matches a normalized external identity to a local account, or
// creates one.
type Reconciler interface {
	// Reconcile returns the resolved user and whether it was just created.
	Reconcile(ctx context.Context, info *UserInfo) (*store.User, bool, error)
}

// StoreReconciler reconciles against a UserStore by normalized email.
// Accounts created here carry no password hash: they are OAuth-only until
// the user sets a local credential through the regular password flow.
type StoreReconciler struct {
	Users store.UserStore
}

func (r *StoreReconciler) Reconcile(ctx context.Context, info *UserInfo) (*store.User, bool, error) {
	log := logger.From(ctx).With(logger.Component("oauth.reconcile"), logger.Provider(string(info.Provider)))

	u, err := r.Users.GetByEmail(ctx, info.Email)
	if err == nil {
		log.Debug("existing user matched", logger.UserID(u.ID))
		return u, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	u = &store.User{
		Email:          info.Email,
		Name:           info.Name,
		AvatarURL:      info.AvatarURL,
		EmailVerified:  info.EmailVerified,
		PasswordHash:   nil,
		Provider:       string(info.Provider),
		ProviderUserID: info.ProviderUserID,
	}
	if err := r.Users.Create(ctx, u); err != nil {
		return nil, false, err
	}

	log.Info("oauth user created",
		logger.UserID(u.ID),
		logger.Email(u.Email),
	)
	return u, true, nil
}
