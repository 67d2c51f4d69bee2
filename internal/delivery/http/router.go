package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"venuebooking/internal/delivery/http/controllers"
	"venuebooking/internal/delivery/http/middleware"
	"venuebooking/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Venue        *controllers.VenueController
	Event        *controllers.EventController
	Admin        *controllers.AdminController
	Registration *controllers.RegistrationController
	User         *controllers.UserController
}

// RouterOptions carries the optional infrastructure routes and middleware. A nil Limiter disables rate limiting.
type RouterOptions struct {
	Limiter *middleware.RateLimiter
	Health  http.HandlerFunc
	Metrics http.Handler
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, opts RouterOptions, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier, logger)
	limit := func(next http.HandlerFunc) http.HandlerFunc {
		if opts.Limiter == nil {
			return next
		}
		return opts.Limiter.Limit(next)
	}
	// Writes are limited per user; the limiter runs after auth so it can see the principal.
	write := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(limit(next))
	}

	// Users
	mux.HandleFunc("POST /users/signup", limit(c.User.SignUp))
	mux.HandleFunc("POST /users/login", limit(c.User.Login))
	mux.HandleFunc("GET /users/me", requireAuth(c.User.GetMe))
	mux.HandleFunc("DELETE /users/{userID}", write(c.User.DeleteUser))
	mux.HandleFunc("GET /users/me/events/hosted", requireAuth(c.Event.ListHostedEvents))
	mux.HandleFunc("GET /users/me/events/participating", requireAuth(c.Registration.ListParticipatingEvents))
	mux.HandleFunc("GET /users/me/events/volunteering", requireAuth(c.Registration.ListVolunteeringEvents))
	mux.HandleFunc("GET /users/me/events/attended", requireAuth(c.Registration.ListAttendedEvents))

	// Venues
	mux.HandleFunc("GET /venues", c.Venue.ListVenues)
	mux.HandleFunc("GET /venues/{venueID}", c.Venue.GetVenue)
	mux.HandleFunc("POST /venues", write(c.Venue.CreateVenue))
	mux.HandleFunc("PUT /venues/{venueID}", write(c.Venue.UpdateVenue))
	mux.HandleFunc("DELETE /venues/{venueID}", write(c.Venue.DeleteVenue))

	// Events
	// Venue reads are public; event reads need a signed-in user.
	mux.HandleFunc("GET /events", requireAuth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(c.Event.GetEvent))
	mux.HandleFunc("POST /events", write(c.Event.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", write(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", write(c.Event.DeleteEvent))

	// Registration and attendance
	mux.HandleFunc("POST /events/{eventID}/participants", write(c.Registration.RegisterParticipant))
	mux.HandleFunc("GET /events/{eventID}/participants", requireAuth(c.Registration.ListParticipants))
	mux.HandleFunc("POST /events/{eventID}/volunteers", write(c.Registration.RegisterVolunteer))
	mux.HandleFunc("POST /events/{eventID}/attendance/{userID}", write(c.Registration.MarkAttendance))

	// Review
	mux.HandleFunc("GET /admin/events/pending", requireAuth(c.Admin.ListPendingEvents))
	mux.HandleFunc("GET /admin/events/{eventID}/availability", requireAuth(c.Admin.CheckAvailability))
	mux.HandleFunc("PATCH /admin/events/{eventID}/status", write(c.Admin.SetEventStatus))

	// Operations
	if opts.Health != nil {
		mux.HandleFunc("GET /health", opts.Health)
	}
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
