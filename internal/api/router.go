// Package api assembles the HTTP API.
package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/api/handlers"
	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/auth"
	"github.com/dvloznov/imobcontrol/internal/jobs"
)

// Deps are the collaborators of the API. Blobs, Publisher, Backups and PDF
// are optional; the endpoints that need them answer with an error when nil.
type Deps struct {
	Log       zerolog.Logger
	Auth      *auth.Authenticator
	Stores    handlers.StoreResolver
	Jobs      jobs.JobStore
	Publisher jobs.Publisher
	Blobs     handlers.BlobPutter
	AI        handlers.AIService
	AIEnabled bool
	Backups   handlers.BackupStatusSource
	PDF       handlers.PDFPrinter
}

// NewRouter returns the API handler with middleware applied.
func NewRouter(d Deps) http.Handler {
	log := d.Log

	authHandler := handlers.NewAuthHandler(d.Auth, log)
	healthHandler := handlers.NewHealthHandler(d.AIEnabled, log)
	propertiesHandler := handlers.NewPropertiesHandler(d.Stores, d.Jobs, d.Blobs, d.Publisher, log)
	dashboardHandler := handlers.NewDashboardHandler(d.Stores, d.PDF, log)
	backupHandler := handlers.NewBackupHandler(d.Stores, d.Backups, log)
	aiHandler := handlers.NewAIHandler(d.AI, d.Stores, log)

	authed := middleware.Auth(d.Auth)
	protect := func(h http.HandlerFunc) http.Handler {
		return authed(h)
	}
	confirm := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireConfirmation(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.Handle("POST /api/logout", protect(authHandler.Logout))

	// Properties and records
	mux.Handle("GET /api/properties", protect(propertiesHandler.ListProperties))
	mux.Handle("POST /api/properties", protect(propertiesHandler.CreateProperty))
	mux.Handle("GET /api/properties/{id}", protect(propertiesHandler.GetProperty))
	mux.Handle("PUT /api/properties/{id}", protect(propertiesHandler.UpdateProperty))
	mux.Handle("DELETE /api/properties/{id}", confirm(propertiesHandler.DeleteProperty))
	mux.Handle("POST /api/properties/{id}/records", protect(propertiesHandler.AddRecords))
	mux.Handle("DELETE /api/properties/{id}/records/{index}", confirm(propertiesHandler.DeleteRecord))
	mux.Handle("POST /api/properties/{id}/records/import", protect(propertiesHandler.ImportRecords))
	mux.Handle("POST /api/properties/{id}/statements", protect(propertiesHandler.UploadStatement))

	// Jobs
	if d.Jobs != nil {
		jobsHandler := handlers.NewJobsHandler(d.Jobs, log)
		mux.Handle("GET /api/jobs", protect(jobsHandler.ListJobs))
		mux.Handle("GET /api/jobs/{id}", protect(jobsHandler.GetJob))
	}

	// Dashboard
	mux.Handle("GET /api/dashboard", protect(dashboardHandler.Dashboard))
	mux.Handle("GET /api/dashboard/report", protect(dashboardHandler.Report))

	// Backup
	mux.Handle("GET /api/backup", protect(backupHandler.Download))
	mux.Handle("GET /api/backup/status", protect(backupHandler.Status))
	mux.Handle("POST /api/restore", confirm(backupHandler.Restore))

	// AI
	mux.Handle("POST /api/ai/describe", protect(aiHandler.Describe))
	mux.Handle("POST /api/ai/images", protect(aiHandler.Images))
	mux.Handle("POST /api/ai/chat", protect(aiHandler.Chat))

	mux.Handle("GET /api/leads", protect(handlers.ListLeads))

	return middleware.RequestID(
		middleware.Recovery(log)(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)
}
