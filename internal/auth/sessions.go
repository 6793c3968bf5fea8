package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

const (
	SessionCookie = "smartmark_session"
	StateCookie   = "smartmark_oauth_state"

	stateTTL = 10 * time.Minute
)

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Identity returns who the session belongs to.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		ID:        c.Subject,
		Email:     c.Email,
		Name:      c.Name,
		AvatarURL: c.Picture,
	}
}

// Sessions issues, resolves and revokes session cookies.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoked Revocations
	now     func() time.Time
}

func NewSessions(secret []byte, ttl time.Duration, secure bool, revoked Revocations) *Sessions {
	return &Sessions{
		secret:  secret,
		ttl:     ttl,
		secure:  secure,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a session for id and sets it on the response.
func (s *Sessions) Issue(w http.ResponseWriter, id domain.Identity) (*Claims, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.AvatarURL,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return claims, nil
}

// Resolve returns the claims of the request's session.
// A missing, malformed or expired cookie yields ErrNoSession.
func (s *Sessions) Resolve(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}

	claims, err := s.parse(c.Value)
	if err != nil {
		return nil, errors.Join(ErrNoSession, err)
	}

	revoked, err := s.revoked.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

func (s *Sessions) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("session token without subject or id")
	}
	return claims, nil
}

// Revoke blocks the session until it would have expired.
func (s *Sessions) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(s.now()))
}

// Clear drops the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// NewState sets a fresh OAuth state cookie and returns its value.
func (s *Sessions) NewState(w http.ResponseWriter) string {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return state
}

// CheckState compares the callback state with the cookie and clears the cookie.
func (s *Sessions) CheckState(w http.ResponseWriter, r *http.Request) error {
	c, err := r.Cookie(StateCookie)
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
	})

	if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
		return ErrStateMismatch
	}
	return nil
}
