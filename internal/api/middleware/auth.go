package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sgoulden/vibecheck/internal/api/response"
)

// SessionVerifier validates a session token and returns the user it belongs to.
type SessionVerifier interface {
	VerifySession(tokenString string) (uuid.UUID, error)
}

// Auth provides session-token authentication middleware.
type Auth struct {
	sessions SessionVerifier
}

// NewAuth creates a new Auth middleware.
func NewAuth(sessions SessionVerifier) *Auth {
	return &Auth{sessions: sessions}
}

// Authenticate validates the Bearer session token and sets the user ID in
// the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		userID, err := a.sessions.VerifySession(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired session", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
