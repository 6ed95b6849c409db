package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalyses "github.com/permitpro/permitpro/internal/application/analyses"
	domai "github.com/permitpro/permitpro/internal/domain/ai"
	"github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/uploads"
	"github.com/permitpro/permitpro/internal/middleware"
)

type Router struct {
	svc     *appanalyses.Service
	uploads uploads.Repository
}

func NewRouter(svc *appanalyses.Service, uploadRepo uploads.Repository) http.Handler {
	r := &Router{svc: svc, uploads: uploadRepo}
	mux := chi.NewRouter()

	mux.Use(middleware.LoggingMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/uploads/{uploadID}/analyze", r.wrap(r.handleTriggerAnalysis))
		rt.Get("/uploads/{uploadID}/analysis", r.wrap(r.handleAnalysisByUpload))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, appanalyses.ErrAnalysisInFlight):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, domai.ErrNotConfigured):
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/{tenant}/uploads/{uploadID}/analyze
// Runs the pipeline in the background and returns immediately; the record's
// status reports progress. A second trigger while one is running conflicts.
func (r *Router) handleTriggerAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	uploadID := uploads.UploadID(chi.URLParam(req, "uploadID"))
	userID := req.Header.Get("X-User-ID")

	upload, err := r.uploads.Get(req.Context(), tenant, uploadID)
	if err != nil {
		return err
	}

	err = r.svc.StartAnalysis(upload, userID, func(id analysis.AnalysisID, err error) {
		if err != nil {
			log.Printf("background analysis error for tenant=%s upload=%s: %v", tenant, uploadID, err)
			return
		}
		log.Printf("analysis finished: tenant=%s upload=%s analysis=%s", tenant, uploadID, id)
	})
	if err != nil {
		return err
	}

	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"uploadId": string(uploadID),
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/uploads/{uploadID}/analysis
func (r *Router) handleAnalysisByUpload(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	uploadID := chi.URLParam(req, "uploadID")

	rec, err := r.svc.LatestByUpload(req.Context(), tenant, uploadID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no analysis for upload %s: %w", uploadID, sql.ErrNoRows)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

// GET /v1/{tenant}/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	rec, err := r.svc.Get(req.Context(), tenant, analysis.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}
