// Package booking implements the appointment slot booking engine:
// availability computation, capacity reservation, cancellation, and
// administrative status transitions.
package booking

import (
	"context"
	"log"
	"time"

	"github.com/pawcare-app/booking-engine/internal/cache"
	"github.com/pawcare-app/booking-engine/internal/catalog"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/notifier"
	"github.com/pawcare-app/booking-engine/internal/repository"
	"github.com/pawcare-app/booking-engine/internal/schedule"
)

const dispatchTimeout = 10 * time.Second

// Service is the booking orchestrator. All correctness under concurrency is
// pushed down to the datastore's transaction and conditional-write
// primitives; the service itself holds no locks and no state.
type Service struct {
	tx              repository.TxRunner
	locationRepo    repository.LocationRepository
	inventoryRepo   repository.SlotInventoryRepository
	reservationRepo repository.ReservationRepository
	petRepo         repository.PetRepository
	catalog         catalog.Resolver
	dispatcher      notifier.Dispatcher
	cache           cache.Cache
	clock           schedule.Clock
}

// NewService wires the orchestrator. cache may be nil (availability caching
// disabled); dispatcher may be notifier.Nop when notifications are off.
func NewService(
	tx repository.TxRunner,
	locationRepo repository.LocationRepository,
	inventoryRepo repository.SlotInventoryRepository,
	reservationRepo repository.ReservationRepository,
	petRepo repository.PetRepository,
	resolver catalog.Resolver,
	dispatcher notifier.Dispatcher,
	availabilityCache cache.Cache,
	clock schedule.Clock,
) *Service {
	return &Service{
		tx:              tx,
		locationRepo:    locationRepo,
		inventoryRepo:   inventoryRepo,
		reservationRepo: reservationRepo,
		petRepo:         petRepo,
		catalog:         resolver,
		dispatcher:      dispatcher,
		cache:           availabilityCache,
		clock:           clock,
	}
}

// activeLocation loads a location and checks it accepts bookings.
func (s *Service) activeLocation(ctx context.Context, locationID string) (*model.ServiceLocation, error) {
	location, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !location.IsActive {
		return nil, model.NewStateConflictError("location is not accepting bookings")
	}
	return location, nil
}

// dispatchStatusChange hands the event to the dispatcher on a separate
// goroutine after the transaction committed. Failures are logged and
// swallowed; they never affect the booking outcome.
func (s *Service) dispatchStatusChange(reservation *model.Reservation) {
	event := model.StatusChangeEvent{
		ReservationID: reservation.ID,
		LocationID:    reservation.LocationID,
		PetName:       reservation.PetName,
		Status:        reservation.Status,
		StartsAt:      reservation.StartsAt,
		StartLabel:    schedule.LabelAt(reservation.StartsAt),
		CreatedAt:     s.clock.Now(),
	}
	if reservation.UserID != nil {
		event.UserID = *reservation.UserID
	}
	if reservation.GuestID != nil {
		event.GuestID = *reservation.GuestID
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := s.dispatcher.DispatchStatusChange(ctx, event); err != nil {
			log.Printf("Failed to dispatch status change for reservation %s: %v", event.ReservationID, err)
		}
	}()
}

// ListReservations returns the caller's reservations for the given scope
// with an optional status filter.
func (s *Service) ListReservations(ctx context.Context, identity model.Identity, scope model.ListScope, status *model.ReservationStatus) ([]model.Reservation, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if scope == "" {
		scope = model.ScopeAll
	}
	if !scope.Valid() {
		return nil, model.NewValidationError("scope must be upcoming, past or all", "scope")
	}
	if status != nil && !status.Valid() {
		return nil, model.NewValidationError("unknown status filter", "status")
	}
	return s.reservationRepo.List(ctx, identity, scope, status, s.clock.Now())
}
