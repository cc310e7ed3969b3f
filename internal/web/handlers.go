package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/spotify-track-popularity/internal/auth"
	"github.com/justestif/spotify-track-popularity/internal/spotify"
)

// TrackFetcher looks up a single track. *spotify.Client satisfies it.
type TrackFetcher interface {
	GetTrackInfo(ctx context.Context, trackID string) (*spotify.Track, error)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	tracks                TrackFetcher
	templates             *Templates
	logger                *log.Logger
	credentialsConfigured bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tracks TrackFetcher, templates *Templates, logger *log.Logger, credentialsConfigured bool) *Handlers {
	return &Handlers{
		tracks:                tracks,
		templates:             templates,
		logger:                logger,
		credentialsConfigured: credentialsConfigured,
	}
}

// Home renders the dashboard (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	data := HomePageData{
		PageData: PageData{
			Title:       "Spotify Track Popularity",
			CurrentPath: r.URL.Path,
		},
		CredentialsConfigured: h.credentialsConfigured,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "home", data); err != nil {
		h.logger.Error("rendering dashboard", "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// Track returns track metadata as JSON (GET /api/track/{trackID}).
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")

	track, err := h.tracks.GetTrackInfo(r.Context(), trackID)
	if err != nil {
		var fetchErr *spotify.Error
		var authErr *auth.Error
		if errors.As(err, &fetchErr) || errors.As(err, &authErr) {
			h.logger.Info("track lookup failed", "track_id", trackID, "error", err,
				"request_id", middleware.GetReqID(r.Context()))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("unexpected track lookup error", "track_id", trackID, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgUnexpected)
		return
	}

	writeData(w, track)
}

// Health reports that the process is serving (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound handles requests that match no route.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}

// MethodNotAllowed handles requests whose path matches but method does not.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
