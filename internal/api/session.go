package api

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// expirySkew treats a token as expired slightly before the server would.
const expirySkew = 10 * time.Second

// Credential is the persisted form of a session.
type Credential struct {
	Username    string
	AccessToken string
	TokenType   string
	Expiry      time.Time
	CreatedAt   time.Time
}

// CredentialStore persists the session credential between runs.
// Load returns (nil, nil) when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (*Credential, error)
	Save(ctx context.Context, cred *Credential) error
	Clear(ctx context.Context) error
}

// Session is the explicit credential held by the Client.
type Session struct {
	token   *oauth2.Token
	subject string
}

// NewSession builds a Session from an issued token. The access token is
// expected to be a JWT; its subject and expiry are read without verifying
// the signature, which stays the backend's job. An opaque token is accepted
// with no known expiry.
func NewSession(tok *oauth2.Token) *Session {
	s := &Session{token: tok}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err != nil {
		return s
	}
	if sub, err := claims.GetSubject(); err == nil {
		s.subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && tok.Expiry.IsZero() {
		s.token.Expiry = exp.Time
	}
	return s
}

// SessionFromCredential restores a Session persisted with Credential.
func SessionFromCredential(c *Credential) *Session {
	s := NewSession(&oauth2.Token{
		AccessToken: c.AccessToken,
		TokenType:   c.TokenType,
		Expiry:      c.Expiry,
	})
	if s.subject == "" {
		s.subject = c.Username
	}
	return s
}

// Token returns the underlying OAuth2 token.
func (s *Session) Token() *oauth2.Token { return s.token }

// Subject returns the username the token was issued for.
func (s *Session) Subject() string { return s.subject }

// Expiry returns the token expiry, zero when unknown.
func (s *Session) Expiry() time.Time { return s.token.Expiry }

// Valid reports whether the session can still be used at now.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.token == nil || strings.TrimSpace(s.token.AccessToken) == "" {
		return false
	}
	if s.token.Expiry.IsZero() {
		return true
	}
	return now.Add(expirySkew).Before(s.token.Expiry)
}

// Credential converts the session into its persisted form.
func (s *Session) Credential(now time.Time) *Credential {
	return &Credential{
		Username:    s.subject,
		AccessToken: s.token.AccessToken,
		TokenType:   s.token.TokenType,
		Expiry:      s.token.Expiry,
		CreatedAt:   now,
	}
}
