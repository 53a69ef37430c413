package oauth

import "encoding/json"

// UserInfo is the provider-agnostic profile produced fresh on every
// callback. It is the only bridge between provider payloads and the local
// user record and is never persisted.
type UserInfo struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	AvatarURL      string   `json:"avatar,omitempty"`
	Provider       Provider `json:"provider"`
	ProviderUserID string   `json:"provider_user_id"`
	EmailVerified  bool     `json:"email_verified"`
}

// googleProfile is the shape of Google's oauth2/v2 userinfo payload.
type googleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// facebookProfile is the shape of the Graph API /me payload with the
// explicitly requested fields.
type facebookProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// Normalize maps a raw provider payload onto UserInfo. The switch is
// exhaustive over the provider enum; reaching the default branch means a
// provider was added without updating this mapping, which is a programming
// error surfaced as a ValidationError (provider validity was already
// checked upstream).
func Normalize(p Provider, raw []byte) (*UserInfo, error) {
	switch p {
	case ProviderGoogle:
		var gp googleProfile
		if err := json.Unmarshal(raw, &gp); err != nil {
			return nil, authErr(err, "failed to decode google profile")
		}
		return &UserInfo{
			ID:             gp.ID,
			Email:          gp.Email,
			Name:           gp.Name,
			FirstName:      gp.GivenName,
			LastName:       gp.FamilyName,
			AvatarURL:      gp.Picture,
			Provider:       ProviderGoogle,
			ProviderUserID: gp.ID,
			EmailVerified:  gp.VerifiedEmail,
		}, nil

	case ProviderFacebook:
		var fp facebookProfile
		if err := json.Unmarshal(raw, &fp); err != nil {
			return nil, authErr(err, "failed to decode facebook profile")
		}
		return &UserInfo{
			ID:             fp.ID,
			Email:          fp.Email,
			Name:           fp.Name,
			FirstName:      fp.FirstName,
			LastName:       fp.LastName,
			AvatarURL:      fp.Picture.Data.URL,
			Provider:       ProviderFacebook,
			ProviderUserID: fp.ID,
			// The Graph API does not report verification status.
			EmailVerified: false,
		}, nil

	default:
		return nil, validationErr("no profile mapping for provider %q", p)
	}
}
