package oauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/burnick/demoapp-sub000/internal/store"
	memstore "github.com/burnick/demoapp-sub000/internal/store/memory"
)

func TestReconcileCreatesOAuthOnlyAccount(t *testing.T) {
	t.Parallel()
	users := memstore.New()
	r := &StoreReconciler{Users: users}
	ctx := context.Background()

	u, isNew, err := r.Reconcile(ctx, &UserInfo{
		Email:          "Ada@Example.com",
		Name:           "Ada Lovelace",
		AvatarURL:      "https://example.com/a.jpg",
		EmailVerified:  true,
		Provider:       ProviderGoogle,
		ProviderUserID: "108012345",
	})
	require.NoError(t, err)
	require.True(t, isNew)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "ada@example.com", u.Email)
	require.Nil(t, u.PasswordHash)
	require.False(t, u.HasPassword())
	require.Equal(t, "google", u.Provider)
	require.Equal(t, "108012345", u.ProviderUserID)
}

func TestReconcileMatchesByEmailCaseInsensitive(t *testing.T) {
	t.Parallel()
	users := memstore.New()
	ctx := context.Background()

	hash := "$argon2id$..."
	require.NoError(t, users.Create(ctx, &store.User{
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: &hash,
	}))

	r := &StoreReconciler{Users: users}
	u, isNew, err := r.Reconcile(ctx, &UserInfo{
		Email:          "ADA@EXAMPLE.COM",
		Name:           "Ada Lovelace",
		Provider:       ProviderFacebook,
		ProviderUserID: "fb-1",
	})
	require.NoError(t, err)
	require.False(t, isNew)
	// The existing record wins; the provider profile does not overwrite it.
	require.Equal(t, "Ada", u.Name)
	require.True(t, u.HasPassword())
}

type failingUserStore struct {
	store.UserStore
	err error
}

func (f failingUserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	return nil, f.err
}

func TestReconcilePropagatesStoreErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection reset")
	r := &StoreReconciler{Users: failingUserStore{err: boom}}

	_, _, err := r.Reconcile(context.Background(), &UserInfo{Email: "a@example.com"})
	require.ErrorIs(t, err, boom)
}
