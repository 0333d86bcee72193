package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/auth"
	"github.com/dvloznov/imobcontrol/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuth(t *testing.T) {
	authn := auth.New(auth.DefaultUsers())
	session, err := authn.Login("admin", "admin123")
	require.NoError(t, err)

	var seen string
	h := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := auth.FromContext(r.Context())
		seen = s.Username
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", seen)
}

func TestRequireConfirmation(t *testing.T) {
	h := RequireConfirmation(ok)

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"missing", "/api/properties/1", "", http.StatusPreconditionRequired},
		{"header", "/api/properties/1", "true", http.StatusOK},
		{"header any case", "/api/properties/1", "TRUE", http.StatusOK},
		{"query", "/api/properties/1?confirm=true", "", http.StatusOK},
		{"false", "/api/properties/1?confirm=false", "false", http.StatusPreconditionRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(ConfirmHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/restore", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), ConfirmHeader)
}
