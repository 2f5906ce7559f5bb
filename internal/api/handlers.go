// Package api provides HTTP API handlers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/newsguardai/newsguard/internal/config"
	"github.com/newsguardai/newsguard/internal/engine"
	"github.com/newsguardai/newsguard/internal/models"
	"github.com/newsguardai/newsguard/internal/storage"
)

// maxUploadBytes caps file submissions.
const maxUploadBytes = 10 << 20

// Handler contains all HTTP handlers.
type Handler struct {
	engine *engine.Engine
	kv     storage.KV
	cfg    *config.Config
}

// NewHandler creates a new handler.
func NewHandler(eng *engine.Engine, kv storage.KV, cfg *config.Config) *Handler {
	return &Handler{
		engine: eng,
		kv:     kv,
		cfg:    cfg,
	}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// AnalyzeText handles inline text analysis requests.
func (h *Handler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Model    string `json:"model"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	model, lang := h.resolvePrefs(r, req.Model, req.Language)

	result, err := h.engine.SubmitText(r.Context(), req.Text, model, lang)
	if errors.Is(err, engine.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Text analysis failed")
		writeError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// AnalyzeFile accepts a multipart upload and enqueues it for analysis.
func (h *Handler) AnalyzeFile(w http.ResponseWriter, r *http.Request) {
	// Headroom covers multipart framing; the per-file check below enforces
	// the real limit.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the 10 MiB limit")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the 10 MiB limit")
		return
	}

	model, lang := h.resolvePrefs(r, r.FormValue("model"), r.FormValue("language"))

	job, err := h.engine.SubmitFile(r.Context(), header.Filename, data, model, lang)
	if errors.Is(err, engine.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to enqueue file")
		writeError(w, http.StatusInternalServerError, "Failed to enqueue file")
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

// GetQueue returns the job queue snapshot.
func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Queue().Snapshot())
}

// GetJob returns one job by ID.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := h.engine.Queue().Job(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CancelJob removes a pending job. Processing and finished jobs cannot be
// cancelled.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.engine.Queue().Job(id); !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if !h.engine.Queue().Remove(id) {
		writeError(w, http.StatusConflict, "Only pending jobs can be cancelled")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory returns the analysis history, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": h.engine.History().Entries(),
	})
}

// DeleteHistoryEntry removes one history entry. Deleting is idempotent.
func (h *Handler) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	h.engine.History().Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// ClearHistory removes all history entries.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.engine.History().Clear()
	w.WriteHeader(http.StatusNoContent)
}

// ExportHistory serves the history log as a JSON or CSV download.
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "csv":
		data, err := h.engine.History().ExportCSV(h.cfg.History.CSVPreviewChars)
		if err != nil {
			log.Error().Err(err).Msg("CSV export failed")
			writeError(w, http.StatusInternalServerError, "Export failed")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
		w.Write(data)
	case "", "json":
		data, err := h.engine.History().ExportJSON()
		if err != nil {
			log.Error().Err(err).Msg("JSON export failed")
			writeError(w, http.StatusInternalServerError, "Export failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="history.json"`)
		w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "Unsupported format; use json or csv")
	}
}

// GetPreferences returns the persisted model/language selections.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.loadPrefs(r))
}

// UpdatePreferences persists new model/language selections.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if prefs.Model == "" || prefs.Language == "" {
		writeError(w, http.StatusBadRequest, "Model and language are required")
		return
	}

	if err := storage.SavePreferences(r.Context(), h.kv, prefs); err != nil {
		log.Error().Err(err).Msg("Failed to save preferences")
		writeError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) loadPrefs(r *http.Request) models.Preferences {
	return storage.LoadPreferences(r.Context(), h.kv, models.Preferences{
		Model:    models.Model(h.cfg.Defaults.Model),
		Language: models.Language(h.cfg.Defaults.Language),
	})
}

// resolvePrefs fills missing model/language selectors from the persisted
// preferences.
func (h *Handler) resolvePrefs(r *http.Request, model, lang string) (models.Model, models.Language) {
	prefs := h.loadPrefs(r)
	m := models.Model(model)
	if m == "" {
		m = prefs.Model
	}
	l := models.Language(lang)
	if l == "" {
		l = prefs.Language
	}
	return m, l
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
