// Package token mints local sessions: EdDSA access tokens plus opaque
// refresh tokens whose digests live in the cache.
package token

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/burnick/demoapp-sub000/internal/cache"
	"github.com/burnick/demoapp-sub000/internal/oauth"
	tokens "github.com/burnick/demoapp-sub000/internal/security/token"
	"github.com/burnick/demoapp-sub000/internal/store"
)

const refreshPrefix = "auth:refresh:"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the validated access-token payload handed to middleware.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

type refreshRecord struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs access tokens with an ed25519 key and tracks refresh tokens
// by digest. It satisfies oauth.TokenIssuer.
type Issuer struct {
	iss        string
	aud        string
	accessTTL  time.Duration
	refreshTTL time.Duration

	priv ed25519.PrivateKey
	pub  ed25519.PublicKey

	store cache.Cache
	now   func() time.Time
}

// Options configures the issuer. SigningSeed is an unpadded or padded
// base64 ed25519 seed; empty means a fresh ephemeral key, which invalidates
// all sessions on restart.
type Options struct {
	Issuer      string
	Audience    string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	SigningSeed string
	Store       cache.Cache
}

func NewIssuer(opts Options) (*Issuer, error) {
	if opts.Store == nil {
		return nil, errors.New("token: refresh store is required")
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 720 * time.Hour
	}

	var priv ed25519.PrivateKey
	if opts.SigningSeed != "" {
		seed, err := decodeSeed(opts.SigningSeed)
		if err != nil {
			return nil, fmt.Errorf("token: bad signing seed: %w", err)
		}
		priv = ed25519.NewKeyFromSeed(seed)
	} else {
		_, p, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		priv = p
	}

	return &Issuer{
		iss:        opts.Issuer,
		aud:        opts.Audience,
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		priv:       priv,
		pub:        priv.Public().(ed25519.PublicKey),
		store:      opts.Store,
		now:        time.Now,
	}, nil
}

func decodeSeed(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			if len(b) != ed25519.SeedSize {
				return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(b))
			}
			return b, nil
		}
	}
	return nil, errors.New("seed is not valid base64")
}

// IssueSession mints the access/refresh pair for a reconciled user.
func (i *Issuer) IssueSession(ctx context.Context, u *store.User) (*oauth.SessionTokens, error) {
	now := i.now().UTC()
	exp := now.Add(i.accessTTL)

	claims := jwtv5.MapClaims{
		"iss":   i.iss,
		"sub":   u.ID,
		"aud":   i.aud,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   exp.Unix(),
		"email": u.Email,
		"name":  u.Name,
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["typ"] = "JWT"
	access, err := tk.SignedString(i.priv)
	if err != nil {
		return nil, err
	}

	refresh, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	rec, err := json.Marshal(refreshRecord{
		UserID:    u.ID,
		ExpiresAt: now.Add(i.refreshTTL),
	})
	if err != nil {
		return nil, err
	}
	i.store.Set(refreshPrefix+tokens.SHA256Base64URL(refresh), rec, i.refreshTTL)

	return &oauth.SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
	}, nil
}

// Refresh rotates the pair: the presented refresh token is consumed and a
// new session is issued for its user.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string, lookup func(ctx context.Context, id string) (*store.User, error)) (*oauth.SessionTokens, error) {
	key := refreshPrefix + tokens.SHA256Base64URL(refreshToken)
	raw, ok := i.store.Get(key)
	if !ok {
		return nil, ErrInvalidToken
	}
	// Single use; a replay after this point fails.
	i.store.Delete(key)

	var rec refreshRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, ErrInvalidToken
	}
	if i.now().UTC().After(rec.ExpiresAt) {
		return nil, ErrExpiredToken
	}

	u, err := lookup(ctx, rec.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return i.IssueSession(ctx, u)
}

// Revoke drops a refresh token if present.
func (i *Issuer) Revoke(refreshToken string) {
	i.store.Delete(refreshPrefix + tokens.SHA256Base64URL(refreshToken))
}

// ParseAccess validates the signature and the standard time claims and
// returns the subject claims.
func (i *Issuer) ParseAccess(tokenStr string) (*Claims, error) {
	tok, err := jwtv5.Parse(tokenStr, func(t *jwtv5.Token) (any, error) {
		return i.pub, nil
	}, jwtv5.WithValidMethods([]string{"EdDSA"}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if i.iss != "" {
		if iss, _ := mc["iss"].(string); iss != i.iss {
			return nil, ErrInvalidToken
		}
	}

	c := &Claims{}
	c.Subject, _ = mc["sub"].(string)
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	if c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
