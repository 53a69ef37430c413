package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

// Client talks to provider token and userinfo endpoints. Calls are bounded
// by the HTTP client timeout so an unresponsive provider cannot stall a
// callback indefinitely. No retries: a failed step ends the flow and the
// user restarts with a fresh authorization URL.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: 10 * time.Second}}
}

// NewClientWithHTTP is for tests that need a custom transport.
func NewClientWithHTTP(h *http.Client) *Client {
	return &Client{http: h}
}

// TokenResponse is the provider's answer to the code exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// ExchangeCode swaps the authorization code for an access token via a form
// POST to the provider's token endpoint.
func (c *Client) ExchangeCode(ctx context.Context, pc ProviderConfig, code string) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Component("oauth.client"), logger.Provider(string(pc.Name)))

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", pc.ClientID)
	form.Set("client_secret", pc.ClientSecret)
	form.Set("redirect_uri", pc.RedirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("token exchange request failed", logger.Err(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		log.Error("token exchange rejected",
			logger.Status(resp.StatusCode),
			logger.String("body", string(body)),
		)
		return nil, authErr(nil, "token endpoint returned "+resp.Status)
	}

	var tr TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, authErr(err, "failed to decode token response")
	}
	if tr.Error != "" {
		log.Error("token exchange error payload",
			logger.String("error", tr.Error),
			logger.String("description", tr.ErrorDesc),
		)
		return nil, authErr(nil, "token endpoint error: "+tr.Error)
	}
	if tr.AccessToken == "" {
		return nil, authErr(nil, "no access_token in token response")
	}
	return &tr, nil
}

// FetchUserInfo retrieves the raw profile with a Bearer token. Facebook
// does not return a full profile by default, so the fields are requested
// explicitly.
func (c *Client) FetchUserInfo(ctx context.Context, pc ProviderConfig, accessToken string) ([]byte, error) {
	log := logger.From(ctx).With(logger.Component("oauth.client"), logger.Provider(string(pc.Name)))

	endpoint := pc.UserInfoURL
	if pc.Name == ProviderFacebook {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, configErr("provider %q userinfo URL invalid: %v", pc.Name, err)
		}
		q := u.Query()
		q.Set("fields", "id,email,name,first_name,last_name,picture")
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("userinfo request failed", logger.Err(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		log.Error("userinfo rejected",
			logger.Status(resp.StatusCode),
			logger.String("body", string(body)),
		)
		return nil, authErr(nil, "userinfo endpoint returned "+resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
