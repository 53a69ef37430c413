package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	"github.com/burnick/demoapp-sub000/internal/security/password"
	memstore "github.com/burnick/demoapp-sub000/internal/store/memory"
)

func testService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(memstore.New(), password.Policy{MinLength: 8})
	svc.params = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}
	return svc
}

func TestCreateWithoutPassword(t *testing.T) {
	t.Parallel()
	svc := testService(t)

	u, err := svc.Create(context.Background(), CreateInput{Email: "A@Example.com", Name: " Ada "})
	require.NoError(t, err)
	require.Equal(t, "a@example.com", u.Email)
	require.Equal(t, "Ada", u.Name)
	require.False(t, u.HasPassword())
}

func TestCreateValidations(t *testing.T) {
	t.Parallel()
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{})
	require.ErrorIs(t, err, httperrors.ErrMissingFields)

	_, err = svc.Create(ctx, CreateInput{Email: "a@example.com", Password: "weak"})
	appErr, ok := err.(*httperrors.AppError)
	require.True(t, ok)
	require.Equal(t, "PASSWORD_TOO_WEAK", appErr.Code)

	_, err = svc.Create(ctx, CreateInput{Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Email: "a@example.com"})
	require.ErrorIs(t, err, httperrors.ErrEmailAlreadyInUse)
}

func TestGetAndDelete(t *testing.T) {
	t.Parallel()
	svc := testService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Email: "a@example.com"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	require.ErrorIs(t, err, httperrors.ErrUserNotFound)
	require.ErrorIs(t, svc.Delete(ctx, u.ID), httperrors.ErrUserNotFound)
}

func TestUpdatePartial(t *testing.T) {
	t.Parallel()
	svc := testService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Email: "a@example.com", Name: "Ada"})
	require.NoError(t, err)

	name := "Ada Lovelace"
	got, err := svc.Update(ctx, u.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", got.Name)
	require.False(t, got.HasPassword(), "untouched fields stay put")

	pass := "long enough password"
	got, err = svc.Update(ctx, u.ID, UpdateInput{Password: &pass})
	require.NoError(t, err)
	require.True(t, got.HasPassword())

	weak := "weak"
	_, err = svc.Update(ctx, u.ID, UpdateInput{Password: &weak})
	appErr, ok := err.(*httperrors.AppError)
	require.True(t, ok)
	require.Equal(t, "PASSWORD_TOO_WEAK", appErr.Code)

	_, err = svc.Update(ctx, "ghost", UpdateInput{Name: &name})
	require.ErrorIs(t, err, httperrors.ErrUserNotFound)
}

func TestListClampsLimit(t *testing.T) {
	t.Parallel()
	svc := testService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Create(ctx, CreateInput{Email: email})
		require.NoError(t, err)
	}

	users, total, err := svc.List(ctx, 0, -5)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, users, 3)

	users, total, err = svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, users, 1)
}
