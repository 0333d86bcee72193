package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/backup"
	"github.com/dvloznov/imobcontrol/internal/logger"
)

const maxBackupSize = 50 << 20

// BackupStatusSource reports automatic backup state per storage key.
// *backup.Manager satisfies it.
type BackupStatusSource interface {
	Status(key string) (backup.Status, bool)
}

// BackupHandler handles manual backup, restore and backup status.
type BackupHandler struct {
	stores StoreResolver
	status BackupStatusSource
	now    func() time.Time
	log    zerolog.Logger
}

// NewBackupHandler creates a new backup handler. status may be nil when
// automatic backups are off.
func NewBackupHandler(stores StoreResolver, status BackupStatusSource, log zerolog.Logger) *BackupHandler {
	return &BackupHandler{stores: stores, status: status, now: time.Now, log: log}
}

// Download handles GET /api/backup
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	now := h.now()
	data, err := backup.Export(store.List(), now)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to export backup")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export backup")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, backup.Filename(now)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Restore handles POST /api/restore
//
// The whole portfolio is replaced by the document's properties. Invalid
// documents answer 400 with the message shown to the user.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupSize))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read backup")
		return
	}
	props, err := backup.Parse(data)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	if err := store.Restore(r.Context(), props); err != nil {
		writeStoreError(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Int("property_count", len(props)).Msg("Portfolio restored from backup")
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"restored": len(props),
	})
}

// Status handles GET /api/backup/status
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	key := h.stores.Key(sessionUser(r))
	resp := struct {
		Enabled bool `json:"enabled"`
		backup.Status
	}{Status: backup.Status{Key: key}}

	if h.status != nil {
		resp.Status, resp.Enabled = h.status.Status(key)
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
