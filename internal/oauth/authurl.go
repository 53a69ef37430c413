package oauth

import (
	"net/url"
	"strings"
)

// BuildAuthorizationURL composes the provider's authorize endpoint with the
// standard Authorization Code Grant parameters plus any provider-specific
// extras. No I/O happens here; the state token is issued by the caller.
func BuildAuthorizationURL(pc ProviderConfig, state string) (string, error) {
	u, err := url.Parse(pc.AuthorizeURL)
	if err != nil {
		return "", configErr("provider %q authorize URL invalid: %v", pc.Name, err)
	}

	q := u.Query()
	q.Set("client_id", pc.ClientID)
	q.Set("redirect_uri", pc.RedirectURI)
	q.Set("scope", strings.Join(pc.Scopes, " "))
	q.Set("response_type", "code")
	q.Set("state", state)

	switch pc.Name {
	case ProviderGoogle:
		// Force a refresh token and re-consent on every login.
		q.Set("access_type", "offline")
		q.Set("prompt", "consent")
	case ProviderFacebook:
		// no extras
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}
