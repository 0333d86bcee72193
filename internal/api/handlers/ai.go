package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/ai"
	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

// AIService is the part of the AI gateway the API exposes. *ai.Gateway
// satisfies it. Every call answers with text even when the model fails.
type AIService interface {
	Describe(ctx context.Context, req ai.DescribeRequest) string
	FindImages(ctx context.Context, query string) []string
	Chat(ctx context.Context, message string, props []domain.Property, history []ai.Turn) string
}

// AIHandler handles the assistant endpoints.
type AIHandler struct {
	gateway AIService
	stores  StoreResolver
	log     zerolog.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(gateway AIService, stores StoreResolver, log zerolog.Logger) *AIHandler {
	return &AIHandler{gateway: gateway, stores: stores, log: log}
}

// Describe handles POST /api/ai/describe
func (h *AIHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req ai.DescribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"description": h.gateway.Describe(r.Context(), req),
	})
}

// Images handles POST /api/ai/images
func (h *AIHandler) Images(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "query is required")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"images": h.gateway.FindImages(r.Context(), req.Query),
	})
}

// Chat handles POST /api/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string    `json:"message"`
		History []ai.Turn `json:"history"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"reply": h.gateway.Chat(r.Context(), req.Message, store.List(), req.History),
	})
}
