package oauth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const googlePayload = `{
	"id": "108012345",
	"email": "Ada@Example.com",
	"verified_email": true,
	"name": "Ada Lovelace",
	"given_name": "Ada",
	"family_name": "Lovelace",
	"picture": "https://lh3.googleusercontent.com/a/photo.jpg"
}`

const facebookPayload = `{
	"id": "fb-777",
	"email": "grace@example.com",
	"name": "Grace Hopper",
	"first_name": "Grace",
	"last_name": "Hopper",
	"picture": {"data": {"url": "https://graph.facebook.com/fb-777/picture"}}
}`

func TestNormalizeGoogle(t *testing.T) {
	t.Parallel()

	info, err := Normalize(ProviderGoogle, []byte(googlePayload))
	require.NoError(t, err)

	require.Equal(t, "108012345", info.ID)
	require.Equal(t, "108012345", info.ProviderUserID)
	require.Equal(t, "Ada@Example.com", info.Email, "normalization does not rewrite the address; reconciliation lowercases")
	require.Equal(t, "Ada Lovelace", info.Name)
	require.Equal(t, "Ada", info.FirstName)
	require.Equal(t, "Lovelace", info.LastName)
	require.Equal(t, "https://lh3.googleusercontent.com/a/photo.jpg", info.AvatarURL)
	require.Equal(t, ProviderGoogle, info.Provider)
	require.True(t, info.EmailVerified)
}

func TestNormalizeFacebook(t *testing.T) {
	t.Parallel()

	info, err := Normalize(ProviderFacebook, []byte(facebookPayload))
	require.NoError(t, err)

	require.Equal(t, "fb-777", info.ProviderUserID)
	require.Equal(t, "grace@example.com", info.Email)
	require.Equal(t, "Grace", info.FirstName)
	require.Equal(t, "https://graph.facebook.com/fb-777/picture", info.AvatarURL)
	require.Equal(t, ProviderFacebook, info.Provider)
	// The Graph API never reports verification status.
	require.False(t, info.EmailVerified)
}

func TestNormalizeDeterministic(t *testing.T) {
	t.Parallel()

	a, err := Normalize(ProviderGoogle, []byte(googlePayload))
	require.NoError(t, err)
	b, err := Normalize(ProviderGoogle, []byte(googlePayload))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNormalizeMissingOptionalFields(t *testing.T) {
	t.Parallel()

	info, err := Normalize(ProviderFacebook, []byte(`{"id":"fb-1","name":"No Email"}`))
	require.NoError(t, err)
	require.Empty(t, info.Email)
	require.Empty(t, info.AvatarURL)
}

func TestNormalizeMalformedPayload(t *testing.T) {
	t.Parallel()

	_, err := Normalize(ProviderGoogle, []byte(`{"id":`))
	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
}

func TestNormalizeUnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := Normalize(Provider("github"), []byte(`{}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
