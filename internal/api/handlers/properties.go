package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/jobs"
	"github.com/dvloznov/imobcontrol/internal/logger"
)

const maxStatementSize = 20 << 20

// BlobPutter stores uploaded statements.
type BlobPutter interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// PropertiesHandler handles the property and financial record endpoints.
type PropertiesHandler struct {
	stores    StoreResolver
	jobs      jobs.JobStore
	blobs     BlobPutter
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewPropertiesHandler creates a new properties handler. blobs and publisher
// may be nil, which disables statement uploads.
func NewPropertiesHandler(stores StoreResolver, jobStore jobs.JobStore, blobs BlobPutter, publisher jobs.Publisher, log zerolog.Logger) *PropertiesHandler {
	return &PropertiesHandler{
		stores:    stores,
		jobs:      jobStore,
		blobs:     blobs,
		publisher: publisher,
		log:       log,
	}
}

// ListProperties handles GET /api/properties
func (h *PropertiesHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	props := store.List()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"properties": props,
		"count":      len(props),
	})
}

// CreateProperty handles POST /api/properties
func (h *PropertiesHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var p domain.Property
	if !decodeJSON(w, r, &p) {
		return
	}
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}

	added, err := store.Add(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Str("property_id", added.ID).Msg("Property added")
	middleware.WriteJSON(w, http.StatusCreated, added)
}

// GetProperty handles GET /api/properties/{id}
func (h *PropertiesHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	p, err := store.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// UpdateProperty handles PUT /api/properties/{id}
func (h *PropertiesHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	var p domain.Property
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")

	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	updated, err := store.Update(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Str("property_id", updated.ID).Msg("Property updated")
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteProperty handles DELETE /api/properties/{id}
func (h *PropertiesHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Str("property_id", id).Msg("Property deleted")
	w.WriteHeader(http.StatusNoContent)
}

type recordsRequest struct {
	Records []domain.FinancialRecord `json:"records"`
}

// AddRecords handles POST /api/properties/{id}/records
func (h *PropertiesHandler) AddRecords(w http.ResponseWriter, r *http.Request) {
	var req recordsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Records) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "At least one record is required")
		return
	}
	h.appendRecords(w, r, req.Records)
}

// DeleteRecord handles DELETE /api/properties/{id}/records/{index}
func (h *PropertiesHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Record index must be a number")
		return
	}
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	p, err := store.DeleteRecord(r.Context(), r.PathValue("id"), index)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// ImportRecords handles POST /api/properties/{id}/records/import
//
// The body names either a completed extraction job, whose staged records are
// imported, or carries the records the user reviewed.
func (h *PropertiesHandler) ImportRecords(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID   string                   `json:"jobId"`
		Records []domain.FinancialRecord `json:"records"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.JobID == "" {
		if len(req.Records) == 0 {
			middleware.WriteError(w, http.StatusBadRequest, "jobId or records is required")
			return
		}
		h.appendRecords(w, r, req.Records)
		return
	}

	if h.jobs == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Statement extraction is disabled")
		return
	}
	ctx := r.Context()
	job, err := h.jobs.GetJob(ctx, req.JobID)
	if err != nil || job.Owner != sessionUser(r) || job.PropertyID != r.PathValue("id") {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.Status != jobs.JobStatusCompleted {
		middleware.WriteError(w, http.StatusConflict, fmt.Sprintf("Job is %s, only completed jobs can be imported", job.Status))
		return
	}

	// Claim the job before touching the property so a concurrent import of
	// the same job can't add its records twice.
	job, err = h.jobs.TransitionJob(ctx, job.JobID, jobs.JobStatusCompleted, jobs.JobStatusImported)
	if errors.Is(err, jobs.ErrJobStatusChanged) {
		middleware.WriteError(w, http.StatusConflict, "Job is already being imported")
		return
	}
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("job_id", req.JobID).Msg("Failed to claim job for import")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to import job")
		return
	}

	records := job.Records
	if len(req.Records) > 0 {
		records = req.Records
	}
	if len(records) == 0 {
		middleware.WriteError(w, http.StatusUnprocessableEntity, "No records were found in the statement")
		return
	}
	if !h.appendRecords(w, r, records) {
		h.releaseJob(ctx, job.JobID)
	}
}

// releaseJob hands a claimed job back so the import can be retried.
func (h *PropertiesHandler) releaseJob(ctx context.Context, jobID string) {
	if _, err := h.jobs.TransitionJob(ctx, jobID, jobs.JobStatusImported, jobs.JobStatusCompleted); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to release job after import error")
	}
}

func (h *PropertiesHandler) appendRecords(w http.ResponseWriter, r *http.Request, records []domain.FinancialRecord) bool {
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return false
	}
	p, err := store.AddRecords(r.Context(), r.PathValue("id"), records)
	if err != nil {
		writeStoreError(w, r, err)
		return false
	}
	log := logger.FromContext(r.Context())
	log.Info().
		Str("property_id", p.ID).
		Int("record_count", len(records)).
		Msg("Records added")
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"property": p,
		"added":    len(records),
	})
	return true
}

// UploadStatement handles POST /api/properties/{id}/statements
//
// The statement is either the raw request body (its Content-Type is the
// document type) or the "file" field of a multipart form. It is stored as a
// blob and an extraction job is queued; the response is the job.
func (h *PropertiesHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil || h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Statement extraction is disabled")
		return
	}
	ctx := r.Context()
	log := logger.FromContext(ctx)

	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return
	}
	propertyID := r.PathValue("id")
	if _, err := store.Get(propertyID); err != nil {
		writeStoreError(w, r, err)
		return
	}

	data, filename, contentType, err := readStatement(w, r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	objectName := fmt.Sprintf("statements/%s/%s-%s", propertyID, uuid.New().String(), filename)
	uri, err := h.blobs.Put(ctx, objectName, contentType, data)
	if err != nil {
		log.Error().Err(err).Str("object_name", objectName).Msg("Failed to store statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store statement")
		return
	}

	job := &jobs.ExtractRecordsJob{
		Owner:       sessionUser(r),
		PropertyID:  propertyID,
		DocumentURI: uri,
		MIMEType:    contentType,
	}
	if err := h.publisher.PublishExtractRecords(ctx, job); err != nil {
		log.Error().Err(err).Str("document_uri", uri).Msg("Failed to enqueue extraction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction")
		return
	}

	log.Info().
		Str("job_id", job.JobID).
		Str("property_id", propertyID).
		Str("document_uri", uri).
		Msg("Statement extraction enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, job)
}

func readStatement(w http.ResponseWriter, r *http.Request) (data []byte, filename, contentType string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxStatementSize)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", "", fmt.Errorf("file field is required: %w", err)
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
		}
		contentType = header.Header.Get("Content-Type")
		filename = header.Filename
	} else {
		data, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
		}
		contentType = mediaType
		filename = r.Header.Get("X-Filename")
	}

	if len(data) == 0 {
		return nil, "", "", errors.New("statement is empty")
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
		if i := strings.IndexByte(contentType, ';'); i >= 0 {
			contentType = contentType[:i]
		}
	}
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "" || filename == "." || filename == "/" {
		filename = "statement"
	}
	return data, filename, contentType, nil
}
