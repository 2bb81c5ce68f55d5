package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	mw "github.com/sgoulden/vibecheck/internal/api/middleware"
	"github.com/sgoulden/vibecheck/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth        *mw.Auth
	RateLimit   *mw.RateLimit
	CORSOrigins []string

	HealthHandler   http.HandlerFunc
	LoginHandler    http.HandlerFunc
	CallbackHandler http.HandlerFunc
	MeHandler       http.HandlerFunc

	BeginAnalysisHandler  http.HandlerFunc
	AnalysisStatusHandler http.HandlerFunc
	AnalysisResultHandler http.HandlerFunc

	SharedResultHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/auth/login", orNotImplemented(deps.LoginHandler))
	r.Get("/api/v1/auth/callback", orNotImplemented(deps.CallbackHandler))
	r.Get("/api/v1/public/share/{token}", orNotImplemented(deps.SharedResultHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/auth/me", orNotImplemented(deps.MeHandler))

		r.Post("/api/v1/music/analysis/begin", orNotImplemented(deps.BeginAnalysisHandler))
		r.Get("/api/v1/music/analysis/status", orNotImplemented(deps.AnalysisStatusHandler))
		r.Get("/api/v1/music/analysis/result", orNotImplemented(deps.AnalysisResultHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
