package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	mw "github.com/sgoulden/vibecheck/internal/api/middleware"
	"github.com/sgoulden/vibecheck/internal/api/response"
	"github.com/sgoulden/vibecheck/internal/auth"
	"github.com/sgoulden/vibecheck/internal/spotify"
	"github.com/sgoulden/vibecheck/internal/store"
	"github.com/sgoulden/vibecheck/pkg/models"
)

// Authenticator defines the OAuth flow the auth handlers depend on.
type Authenticator interface {
	LoginURL(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, code, state string) (string, *models.User, error)
}

// UserLookup fetches a user by ID for the /me endpoint.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// NewLoginHandler returns an http.HandlerFunc for GET /api/v1/auth/login.
// It redirects the browser to Spotify's consent page.
func NewLoginHandler(svc Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loginURL, err := svc.LoginURL(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Could not start the login flow", nil)
			return
		}
		http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
	}
}

// NewCallbackHandler returns an http.HandlerFunc for GET /api/v1/auth/callback.
// On success it redirects to the frontend with the session token; on failure
// it redirects with an error code the frontend can display.
func NewCallbackHandler(svc Authenticator, frontendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errCode := r.URL.Query().Get("error"); errCode != "" {
			redirectWithError(w, r, frontendURL, "access_denied")
			return
		}

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			redirectWithError(w, r, frontendURL, "invalid_callback")
			return
		}

		token, _, err := svc.HandleCallback(r.Context(), code, state)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidState):
				redirectWithError(w, r, frontendURL, "invalid_state")
			case errors.Is(err, spotify.ErrUpstreamAuth):
				redirectWithError(w, r, frontendURL, "spotify_auth_failed")
			default:
				redirectWithError(w, r, frontendURL, "login_failed")
			}
			return
		}

		target, _ := url.Parse(frontendURL)
		target.Path = "/auth/callback"
		q := target.Query()
		q.Set("token", token)
		target.RawQuery = q.Encode()
		http.Redirect(w, r, target.String(), http.StatusTemporaryRedirect)
	}
}

// NewMeHandler returns an http.HandlerFunc for GET /api/v1/auth/me.
func NewMeHandler(users UserLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, meResponse{
			ID:          user.ID.String(),
			SpotifyID:   user.SpotifyID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Country:     user.Country,
			ImageURL:    user.ImageURL,
		})
	}
}

type meResponse struct {
	ID          string  `json:"id"`
	SpotifyID   string  `json:"spotify_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	Country     *string `json:"country,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func redirectWithError(w http.ResponseWriter, r *http.Request, frontendURL, code string) {
	target, _ := url.Parse(frontendURL)
	target.Path = "/auth/callback"
	q := target.Query()
	q.Set("error", code)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusTemporaryRedirect)
}
