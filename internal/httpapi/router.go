package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface of the booking engine.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/availability", handler.GetAvailability)

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", handler.CreateReservation)
		r.Post("/guest", handler.CreateGuestReservation)
		r.Get("/me", handler.ListMyReservations)
		r.Get("/guest", handler.ListGuestReservations)
		r.Patch("/{id}/cancel", handler.CancelReservation)
	})

	r.Get("/notifications/me", handler.ListMyNotifications)

	r.Patch("/admin/reservations/{id}/status", handler.AdminSetStatus)

	return r
}
