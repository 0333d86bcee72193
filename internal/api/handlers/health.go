package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"ai":     h.aiConfigured,
	})
}

// ListLeads handles GET /api/leads
func ListLeads(w http.ResponseWriter, r *http.Request) {
	leads := domain.SampleLeads()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leads": leads,
		"count": len(leads),
	})
}
