package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"membershipevents/internal/delivery/http/controllers"
	"membershipevents/internal/delivery/http/middleware"
	"membershipevents/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Every inscription route requires a bearer token.
func NewRouter(inscriptions *controllers.InscriptionController, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Inscriptions
	mux.HandleFunc("POST /events/{eventID}/inscriptions", auth(inscriptions.Register))
	mux.HandleFunc("GET /events/{eventID}/inscriptions", auth(inscriptions.ListByEvent))
	mux.HandleFunc("DELETE /inscriptions/{inscriptionID}", auth(inscriptions.Cancel))
	mux.HandleFunc("GET /me/inscriptions", auth(inscriptions.ListMine))

	// Admin
	mux.HandleFunc("POST /admin/inscriptions/resync", auth(inscriptions.Resync))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with CORS and request logging.
func NewHandler(mux *http.ServeMux, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux))
}
