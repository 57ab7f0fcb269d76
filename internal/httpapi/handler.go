// Package httpapi is the thin HTTP layer over the booking service.
// Controllers only decode, delegate and encode; every rule lives in the
// service.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/repository"
	"github.com/pawcare-app/booking-engine/internal/service/booking"
)

// Identity headers. Authentication happens upstream; these carry the
// already-authenticated caller.
const (
	headerUserID  = "X-User-ID"
	headerGuestID = "X-Guest-ID"
)

type Handler struct {
	service       *booking.Service
	notifications repository.NotificationRepository
}

func NewHandler(service *booking.Service, notifications repository.NotificationRepository) *Handler {
	return &Handler{service: service, notifications: notifications}
}

// GetAvailability handles GET /availability.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hours, err := h.service.GetAvailability(r.Context(),
		q.Get("locationId"),
		model.ServiceType(q.Get("serviceType")),
		q.Get("date"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

// CreateReservation handles POST /reservations for registered users.
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	identity, err := userIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.create(w, r, identity)
}

// CreateGuestReservation handles POST /reservations/guest.
func (h *Handler) CreateGuestReservation(w http.ResponseWriter, r *http.Request) {
	identity, err := guestIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.create(w, r, identity)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, identity model.Identity) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewValidationError("invalid request body"))
		return
	}

	reservations, err := h.service.CreateReservation(r.Context(), req.toInput(identity))
	if err != nil {
		writeError(w, err)
		return
	}

	if len(reservations) == 1 {
		writeJSON(w, http.StatusCreated, toReservationResponse(&reservations[0]))
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponses(reservations))
}

// ListMyReservations handles GET /reservations/me.
func (h *Handler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	identity, err := userIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.list(w, r, identity)
}

// ListGuestReservations handles GET /reservations/guest.
func (h *Handler) ListGuestReservations(w http.ResponseWriter, r *http.Request) {
	identity, err := guestIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.list(w, r, identity)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, identity model.Identity) {
	q := r.URL.Query()
	scope := model.ListScope(q.Get("scope"))

	var status *model.ReservationStatus
	if raw := q.Get("status"); raw != "" {
		s := model.ReservationStatus(raw)
		status = &s
	}

	reservations, err := h.service.ListReservations(r.Context(), identity, scope, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponses(reservations))
}

// ListMyNotifications handles GET /notifications/me: the caller's in-app
// notification records, newest first. Either identity header works.
func (h *Handler) ListMyNotifications(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.notifications.GetByUserID(r.Context(), identity.Key())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationResponses(records))
}

// CancelReservation handles PATCH /reservations/{id}/cancel for owners.
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reservation, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(reservation))
}

// AdminSetStatus handles PATCH /admin/reservations/{id}/status.
func (h *Handler) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewValidationError("invalid request body"))
		return
	}

	reservation, err := h.service.AdminSetStatus(r.Context(), chi.URLParam(r, "id"), model.ReservationStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(reservation))
}

func userIdentity(r *http.Request) (model.Identity, error) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		return model.Identity{}, model.NewValidationError("missing "+headerUserID+" header", "userId")
	}
	return model.NewUserIdentity(userID), nil
}

func guestIdentity(r *http.Request) (model.Identity, error) {
	guestID := r.Header.Get(headerGuestID)
	if guestID == "" {
		return model.Identity{}, model.NewValidationError("missing "+headerGuestID+" header", "guestId")
	}
	if _, err := uuid.Parse(guestID); err != nil {
		return model.Identity{}, model.NewValidationError("guest identifier must be a UUID", "guestId")
	}
	return model.NewGuestIdentity(guestID), nil
}

// callerIdentity accepts either identity header, user taking precedence.
func callerIdentity(r *http.Request) (model.Identity, error) {
	if r.Header.Get(headerUserID) != "" {
		return userIdentity(r)
	}
	return guestIdentity(r)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Message, Fields: validationErr.Fields})
		return
	}

	var notFoundErr *model.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundErr.Error()})
		return
	}

	var capacityErr *model.CapacityConflictError
	if errors.As(err, &capacityErr) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: capacityErr.Error()})
		return
	}

	var stateErr *model.StateConflictError
	if errors.As(err, &stateErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: stateErr.Error()})
		return
	}

	log.Printf("Internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
