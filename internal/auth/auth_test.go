package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	a := New(DefaultUsers())

	s, err := a.Login(" Admin ", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", s.Username)
	assert.NotEmpty(t, s.Token)

	_, err = a.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login("ghost", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessions(t *testing.T) {
	a := New(DefaultUsers())
	s, err := a.Login("corretor", "imob2024")
	require.NoError(t, err)

	got, err := a.Lookup(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "corretor", got.Username)

	other, err := a.Login("corretor", "imob2024")
	require.NoError(t, err)
	assert.NotEqual(t, s.Token, other.Token)

	a.Logout(s.Token)
	_, err = a.Lookup(s.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = a.Lookup(other.Token)
	assert.NoError(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), "header %q", tt.header)
	}
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), Session{Username: "admin"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "admin", s.Username)
}
