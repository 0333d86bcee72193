package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/auth"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	authn *auth.Authenticator
	log   zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authn *auth.Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authn: authn, log: log}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authn.Login(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.log.Warn().Str("username", req.Username).Msg("Login rejected")
		middleware.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.log.Info().Str("user", session.Username).Msg("User logged in")
	middleware.WriteJSON(w, http.StatusOK, session)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authn.Logout(auth.BearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}
