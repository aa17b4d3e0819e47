package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(authController *controllers.AuthController, eventController *controllers.EventController, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/logout", requireAuth(authController.Logout))
	mux.HandleFunc("GET /auth/me", requireAuth(authController.Me))

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/rsvp", requireAuth(eventController.ToggleRSVP))

	// Current identity
	mux.HandleFunc("GET /me/events", requireAuth(eventController.MyRSVPs))
	mux.HandleFunc("GET /me/stats", requireAuth(eventController.MyStats))
	mux.HandleFunc("GET /me/notifications", requireAuth(eventController.MyNotifications))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
