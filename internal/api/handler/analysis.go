package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sgoulden/vibecheck/internal/analysis"
	mw "github.com/sgoulden/vibecheck/internal/api/middleware"
	"github.com/sgoulden/vibecheck/internal/api/response"
	"github.com/sgoulden/vibecheck/internal/spotify"
	"github.com/sgoulden/vibecheck/internal/store"
	"github.com/sgoulden/vibecheck/pkg/models"
)

// Analyzer defines the analysis operations the handlers depend on.
type Analyzer interface {
	Begin(ctx context.Context, userID uuid.UUID) (*analysis.BeginResult, error)
	Poll(ctx context.Context, userID uuid.UUID) (*models.Analysis, error)
	GetResult(ctx context.Context, userID uuid.UUID) (*analysis.Result, error)
}

// NewBeginAnalysisHandler returns an http.HandlerFunc for
// POST /api/v1/music/analysis/begin.
func NewBeginAnalysisHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		result, err := svc.Begin(r.Context(), userID)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}

		response.Accepted(w, result)
	}
}

// NewAnalysisStatusHandler returns an http.HandlerFunc for
// GET /api/v1/music/analysis/status.
func NewAnalysisStatusHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		a, err := svc.Poll(r.Context(), userID)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}

		response.JSON(w, statusResponse{
			AnalysisID:   a.ID.String(),
			Status:       a.Status,
			ErrorMessage: a.ErrorMessage,
			CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
			StartedAt:    formatTimePtr(a.StartedAt),
			CompletedAt:  formatTimePtr(a.CompletedAt),
		})
	}
}

// NewAnalysisResultHandler returns an http.HandlerFunc for
// GET /api/v1/music/analysis/result.
func NewAnalysisResultHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		result, err := svc.GetResult(r.Context(), userID)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}

		response.JSON(w, result)
	}
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "No analysis found", nil)
	case errors.Is(err, analysis.ErrNotCompleted):
		response.Error(w, http.StatusConflict, "NOT_COMPLETED",
			"The analysis has not completed yet", nil)
	case errors.Is(err, analysis.ErrIncompleteResult):
		response.Error(w, http.StatusInternalServerError, "INTEGRITY_ERROR",
			"The analysis result is missing fields", nil)
	case errors.Is(err, spotify.ErrUpstreamAuth):
		response.Error(w, http.StatusBadGateway, "SPOTIFY_AUTH_FAILED",
			"Spotify rejected the stored credentials", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

type statusResponse struct {
	AnalysisID   string  `json:"analysis_id"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
	CreatedAt    string  `json:"created_at"`
	StartedAt    *string `json:"started_at,omitempty"`
	CompletedAt  *string `json:"completed_at,omitempty"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
