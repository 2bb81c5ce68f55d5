package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sgoulden/vibecheck/internal/analysis"
	"github.com/sgoulden/vibecheck/internal/api/response"
	"github.com/sgoulden/vibecheck/internal/store"
)

// SharedResultGetter resolves a share token to a public analysis result.
type SharedResultGetter interface {
	GetPublicResult(ctx context.Context, shareToken string) (*analysis.PublicResult, error)
}

// NewSharedResultHandler returns an http.HandlerFunc for
// GET /api/v1/public/share/{token}. Unknown and incomplete tokens are
// indistinguishable to the caller.
func NewSharedResultHandler(svc SharedResultGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if token == "" {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Shared result not found", nil)
			return
		}

		result, err := svc.GetPublicResult(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Shared result not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, result)
	}
}
