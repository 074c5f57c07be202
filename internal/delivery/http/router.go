package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"synathrozo/internal/delivery/http/controllers"
	"synathrozo/internal/delivery/http/middleware"
	"synathrozo/internal/domain"
)

// RouterDeps are the controllers and collaborators the API router wires.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string
	Events         *controllers.EventController
	Invitations    *controllers.InvitationController
	RSVP           *controllers.RSVPController
	Health         *controllers.HealthController
}

// NewRouter initializes the API handler: routes, auth, CORS and request logging.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)

	// Public
	mux.HandleFunc("GET /templates", d.Events.ListTemplates)
	mux.HandleFunc("GET /rsvp/{token}", d.RSVP.GetInvitation)
	mux.HandleFunc("POST /rsvp/{token}/open", d.RSVP.MarkOpened)
	mux.HandleFunc("POST /rsvp/{token}", d.RSVP.Respond)
	mux.HandleFunc("GET /health", d.Health.Health)
	mux.HandleFunc("GET /health/email", d.Health.EmailHealth)

	// Events
	mux.HandleFunc("POST /events", auth(d.Events.CreateEvent))
	mux.HandleFunc("GET /events", auth(d.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(d.Events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(d.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(d.Events.DeleteEvent))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(d.Invitations.CreateInvitations))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(d.Invitations.ListInvitations))
	mux.HandleFunc("POST /events/{eventID}/invitations/send", auth(d.Invitations.SendInvitations))
	mux.HandleFunc("GET /events/{eventID}/stats", auth(d.Invitations.Stats))
	mux.HandleFunc("DELETE /invitations/{invitationID}", auth(d.Invitations.DeleteInvitation))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(d.Logger, middleware.CORS(d.AllowedOrigins, mux))
}

// NewEmailFunctionRouter initializes the email function handler.
func NewEmailFunctionRouter(logger *slog.Logger, email *controllers.EmailController) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("OPTIONS /send-invitation-email", email.Preflight)
	mux.HandleFunc("POST /send-invitation-email", email.SendInvitationEmail)
	return middleware.LoggingMiddleware(logger, mux)
}
