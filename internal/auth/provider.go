package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/utils"
)

// maxUserInfoBody bounds the userinfo response read.
const maxUserInfoBody = 1 << 20

// Provider is the external identity provider.
type Provider interface {
	// AuthCodeURL is where the browser is sent to sign in.
	AuthCodeURL(state, redirectURL string) string
	// Identify exchanges the callback code and returns who signed in.
	Identify(ctx context.Context, code, redirectURL string) (domain.Identity, error)
}

// OAuthConfig holds the client credentials and provider endpoints.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

// OAuthProvider is an OpenID Connect style provider reached through x/oauth2.
type OAuthProvider struct {
	cfg         oauth2.Config
	userInfoURL string
}

// NewOAuthProvider returns a provider requesting the openid, email and profile scopes.
func NewOAuthProvider(c OAuthConfig) *OAuthProvider {
	return &OAuthProvider{
		cfg: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.AuthURL,
				TokenURL: c.TokenURL,
			},
		},
		userInfoURL: c.UserInfoURL,
	}
}

// config returns a copy bound to the callback URL of the current request.
func (p *OAuthProvider) config(redirectURL string) *oauth2.Config {
	cfg := p.cfg
	cfg.RedirectURL = redirectURL
	return &cfg
}

func (p *OAuthProvider) AuthCodeURL(state, redirectURL string) string {
	return p.config(redirectURL).AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *OAuthProvider) Identify(ctx context.Context, code, redirectURL string) (domain.Identity, error) {
	cfg := p.config(redirectURL)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("oauth exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := cfg.Client(ctx, token).Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxUserInfoBody)
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(body)
		return domain.Identity{}, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(body).Decode(&info); err != nil {
		return domain.Identity{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return domain.Identity{}, fmt.Errorf("userinfo is missing sub or email")
	}

	return domain.Identity{
		ID:        info.Sub,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

// CallbackURL is the absolute OAuth redirect target for this request.
// The base comes from Origin, then X-Forwarded-Host, then Host.
func CallbackURL(r *http.Request) string {
	return baseURL(r) + "/auth/callback"
}

func baseURL(r *http.Request) string {
	if origin := strings.TrimRight(r.Header.Get("Origin"), "/"); origin != "" && origin != "null" {
		if strings.Contains(origin, "://") {
			return origin
		}
		return scheme(r) + "://" + origin
	}

	// X-Forwarded-Host may list every hop, the first one is the client facing host
	host := utils.FirstHop(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = strings.TrimSpace(r.Host)
	}
	return scheme(r) + "://" + host
}

func scheme(r *http.Request) string {
	if proto := strings.ToLower(utils.FirstHop(r.Header.Get("X-Forwarded-Proto"))); proto != "" {
		return proto
	}
	return "https"
}
