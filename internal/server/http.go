package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest/middleware"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer creates and configures the HTTP server with all routes.
// Read endpoints for the public catalog are unauthenticated; everything
// else goes through JWT validation and principal resolution, with
// ownership gates on owner-only mutations. Services re-check authorization
// themselves, so the middleware is an early rejection, not the only one.
func NewHTTPServer(
	config Config,
	healthHandler *rest.HealthHandler,
	usersHandler *rest.UsersHandler,
	pharmaciesHandler *rest.PharmaciesHandler,
	medicinesHandler *rest.MedicinesHandler,
	reservationsHandler *rest.ReservationsHandler,
	jwtMiddleware *middleware.JWTMiddleware,
	principalResolver *middleware.PrincipalResolver,
	authzMiddleware *middleware.AuthorizationMiddleware,
	m *metrics.Metrics,
	log logger.Logger,
) *http.Server {
	r := chi.NewRouter()

	// Must be registered on the mux so the route context is populated by
	// the time the pattern is read after the handler runs.
	r.Use(withObservability(m, log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(api chi.Router) {
		// Health and metrics
		api.Get("/health/live", healthHandler.GetLiveness)
		api.Get("/health/ready", healthHandler.GetReadiness)
		api.Method("GET", "/metrics", promhttp.Handler())

		// Public catalog (read-only)
		api.Get("/pharmacies", pharmaciesHandler.ListPharmacies)
		api.Get("/pharmacies/{id}", pharmaciesHandler.GetPharmacy)
		api.Get("/medicines", medicinesHandler.ListMedicines)
		api.Get("/medicines/{id}", medicinesHandler.GetMedicine)

		// Registration needs a valid token but no principal, since the
		// internal user row doesn't exist yet
		api.Group(func(jwtOnly chi.Router) {
			jwtOnly.Use(jwtMiddleware.Middleware)
			jwtOnly.Post("/users", usersHandler.RegisterUser)
		})

		// Everything else requires a resolved principal
		api.Group(func(protected chi.Router) {
			protected.Use(jwtMiddleware.Middleware)
			protected.Use(principalResolver.Middleware)

			protected.Get("/users/me", usersHandler.GetCurrentUser)
			protected.Get("/users/{id}", usersHandler.GetUser)

			// Pharmacy mutations; ownership gates read the current
			// persisted owner
			protected.Post("/pharmacies", pharmaciesHandler.CreatePharmacy)
			protected.With(authzMiddleware.RequireOwnership("pharmacies", "id")).
				Put("/pharmacies/{id}", pharmaciesHandler.UpdatePharmacy)
			protected.With(authzMiddleware.RequireOwnership("pharmacies", "id")).
				Delete("/pharmacies/{id}", pharmaciesHandler.DeletePharmacy)
			protected.With(authzMiddleware.RequireOwnership("pharmacies", "id")).
				Post("/pharmacies/{id}/verify", pharmaciesHandler.SetVerified)
			protected.With(authzMiddleware.RequireOwnership("pharmacies", "id")).
				Get("/pharmacies/{id}/reservations", reservationsHandler.ListPharmacyReservations)

			// Medicine mutations; ownership is transitive through the pharmacy
			protected.Post("/medicines", medicinesHandler.CreateMedicine)
			protected.With(authzMiddleware.RequireOwnership("medicines", "id")).
				Put("/medicines/{id}", medicinesHandler.UpdateMedicine)
			protected.With(authzMiddleware.RequireOwnership("medicines", "id")).
				Delete("/medicines/{id}", medicinesHandler.DeleteMedicine)
			protected.With(authzMiddleware.RequireOwnership("medicines", "id")).
				Post("/medicines/{id}/availability", medicinesHandler.SetAvailability)

			// Reservations; relation checks happen in the service because
			// both the requester and the servicing pharmacy owner are
			// legitimate actors
			protected.Get("/reservations", reservationsHandler.ListReservations)
			protected.Post("/reservations", reservationsHandler.CreateReservation)
			protected.Get("/reservations/{id}", reservationsHandler.GetReservation)
			protected.Delete("/reservations/{id}", reservationsHandler.DeleteReservation)
			protected.Post("/reservations/{id}/status", reservationsHandler.SetStatus)
		})
	})

	return &http.Server{
		Addr:         config.ServerAddress,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// withObservability adds request logging and metrics
func withObservability(m *metrics.Metrics, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Use chi's response writer wrapper to capture status code and bytes written
			wrr := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrr, r)

			duration := time.Since(start)

			// Use the matched route pattern to keep metric cardinality bounded
			route := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrr.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

			var userID string
			if principal, ok := middleware.GetPrincipal(r.Context()); ok {
				userID = principal.ID.String()
			}

			log.Info(r.Context(), "HTTP request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrr.Status(),
				"duration_ms", duration.Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"user_id", userID,
			)
		})
	}
}
