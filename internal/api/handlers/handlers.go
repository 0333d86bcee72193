// Package handlers implements the HTTP endpoints of the API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/auth"
	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/logger"
	"github.com/dvloznov/imobcontrol/internal/portfolio"
)

const maxJSONBody = 10 << 20

// StoreResolver finds the portfolio a user works on. *portfolio.Registry
// satisfies it.
type StoreResolver interface {
	Key(user string) string
	Store(ctx context.Context, user string) (*portfolio.Store, error)
}

func sessionUser(r *http.Request) string {
	s, _ := auth.FromContext(r.Context())
	return s.Username
}

// storeFor writes a 500 and returns false when the user's store can't be opened.
func storeFor(w http.ResponseWriter, r *http.Request, stores StoreResolver) (*portfolio.Store, bool) {
	s, err := stores.Store(r.Context(), sessionUser(r))
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to open portfolio")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to open portfolio")
		return nil, false
	}
	return s, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			middleware.WriteError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// writeStoreError maps portfolio errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, portfolio.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Property not found")
	case errors.Is(err, portfolio.ErrRecordIndex):
		middleware.WriteError(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, portfolio.ErrDuplicateID):
		middleware.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidProperty):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Portfolio operation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Portfolio operation failed")
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// HealthHandler reports liveness.
type HealthHandler struct {
	aiConfigured bool
	log          zerolog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(aiConfigured bool, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{aiConfigured: aiConfigured, log: log}
}
