// Package auth implements the fixed allow-list login and bearer sessions.
//
// Passwords are compared in plain text. Hardening this is out of scope.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("usuário ou senha inválidos")
	// ErrUnauthenticated is returned for missing or unknown session tokens.
	ErrUnauthenticated = errors.New("authentication required")
)

// User is one allow-list entry.
type User struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	Name     string `yaml:"name" json:"name"`
}

// DefaultUsers is the built-in allow-list.
func DefaultUsers() []User {
	return []User{
		{Username: "admin", Password: "admin123", Name: "Administrador"},
		{Username: "corretor", Password: "imob2024", Name: "Corretor"},
	}
}

// Session is a logged-in user.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Authenticator checks credentials and tracks sessions in memory.
type Authenticator struct {
	users map[string]User

	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// New returns an Authenticator over users. Usernames match case-insensitively.
func New(users []User) *Authenticator {
	m := make(map[string]User, len(users))
	for _, u := range users {
		m[strings.ToLower(strings.TrimSpace(u.Username))] = u
	}
	return &Authenticator{users: m, sessions: make(map[string]Session), now: time.Now}
}

// Login opens a session for a valid username and password.
func (a *Authenticator) Login(username, password string) (Session, error) {
	u, ok := a.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok || u.Password != password {
		return Session{}, ErrInvalidCredentials
	}
	s := Session{
		Token:     uuid.NewString(),
		Username:  strings.ToLower(u.Username),
		Name:      u.Name,
		CreatedAt: a.now().UTC(),
	}
	a.mu.Lock()
	a.sessions[s.Token] = s
	a.mu.Unlock()
	return s, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (a *Authenticator) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// Lookup returns the session for token.
func (a *Authenticator) Lookup(token string) (Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.sessions[token]
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	return s, nil
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session placed by the middleware.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
