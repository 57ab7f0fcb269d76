package booking

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pawcare-app/booking-engine/internal/catalog"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/schedule"
)

// ServiceSelection is one requested service/option pair.
type ServiceSelection struct {
	ServiceType model.ServiceType
	OptionKey   string
}

// PetDetails is the pet/owner data supplied inline with the request. For
// registered users, fields left empty are filled from the saved pet profile.
type PetDetails struct {
	OwnerName  string
	OwnerPhone string
	PetName    string
	PetType    string
	PetAge     *int
	PetGender  string
}

// CreateReservationInput is a booking request: one or more sequential
// services starting at the given date and hour. Service N occupies the hour
// starting N hours after the first.
type CreateReservationInput struct {
	Identity   model.Identity
	LocationID string
	Selections []ServiceSelection
	Date       string // YYYY-MM-DD in the service timezone
	Hour       int
	Meridiem   string // empty for a 24-hour value, else AM/PM
	Pet        PetDetails
	Comment    string
}

// plannedService is one selection resolved to its slot, room and catalog
// entry.
type plannedService struct {
	selection ServiceSelection
	resolved  *catalog.Selection
	roomType  model.RoomType
	slotStart time.Time
	capacity  int
}

// CreateReservation validates the request and atomically reserves one
// inventory unit per requested service while inserting the reservation
// rows. Either every service books or none does; partial success is never
// visible. Returns the created reservations ordered by start time.
func (s *Service) CreateReservation(ctx context.Context, input CreateReservationInput) ([]model.Reservation, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "BookingService.CreateReservation")
	defer seg.Close(nil)

	if err := input.Identity.Validate(); err != nil {
		return nil, err
	}
	if len(input.Selections) == 0 {
		return nil, model.NewValidationError("at least one service must be selected", "services")
	}

	location, err := s.activeLocation(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	planned, err := s.planServices(ctx, location, input)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.resolvePetSnapshot(ctx, input)
	if err != nil {
		return nil, err
	}

	// Fast-fail pre-check outside the transaction: a request against an
	// already-full slot should not pay transaction overhead. The
	// authoritative check is the conditional increment below.
	if err := s.precheckCapacity(ctx, input.LocationID, planned); err != nil {
		return nil, err
	}

	reservations := make([]model.Reservation, 0, len(planned))
	err = s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		instants := make([]time.Time, 0, len(planned))
		for _, p := range planned {
			instants = append(instants, p.slotStart)
		}

		// One actor may not hold two BOOKED reservations at the same
		// instant, even via near-simultaneous requests; checked inside the
		// same transaction as the inserts.
		clash, err := s.reservationRepo.FindBookedAt(ctx, tx, input.Identity, instants)
		if err != nil {
			return err
		}
		if clash != nil {
			return model.NewCapacityConflictError("you already have a booking", schedule.LabelAt(*clash))
		}

		now := s.clock.Now()
		for _, p := range planned {
			key := model.SlotKey{
				LocationID: input.LocationID,
				RoomType:   p.roomType,
				SlotStart:  p.slotStart,
			}
			if err := s.inventoryRepo.ReserveUnit(ctx, tx, key, p.capacity); err != nil {
				var capErr *model.CapacityConflictError
				if errors.As(err, &capErr) {
					return model.NewCapacityConflictError("slot is fully booked", schedule.LabelAt(p.slotStart))
				}
				return err
			}

			reservation := buildReservation(input, p, snapshot, now)
			if err := s.reservationRepo.Create(ctx, tx, &reservation); err != nil {
				var capErr *model.CapacityConflictError
				if errors.As(err, &capErr) {
					return model.NewCapacityConflictError(capErr.Message, schedule.LabelAt(p.slotStart))
				}
				return err
			}
			reservations = append(reservations, reservation)
		}
		return nil
	})
	if err != nil {
		seg.Close(err)
		return nil, err
	}

	for i := range reservations {
		s.dispatchStatusChange(&reservations[i])
	}
	return reservations, nil
}

// planServices resolves each selection against the catalog and computes the
// hour it consumes, validating the booking window and working hours per
// consumed hour. An unresolvable selection fails the whole request.
func (s *Service) planServices(ctx context.Context, location *model.ServiceLocation, input CreateReservationInput) ([]plannedService, error) {
	base, err := schedule.AbsoluteSlot(input.Date, input.Hour, input.Meridiem)
	if err != nil {
		return nil, err
	}
	baseHour := base.In(schedule.Location()).Hour()
	now := s.clock.Now()

	planned := make([]plannedService, 0, len(input.Selections))
	for i, selection := range input.Selections {
		slot := schedule.SlotAt(base, baseHour+i)

		if err := schedule.ValidateBookingWindow(slot, now); err != nil {
			return nil, err
		}
		if err := schedule.ValidateWorkingHours(slot); err != nil {
			return nil, err
		}

		roomType, err := selection.ServiceType.RoomType()
		if err != nil {
			return nil, err
		}

		resolved, err := s.catalog.ResolveSelection(ctx, selection.ServiceType, selection.OptionKey)
		if err != nil {
			return nil, err
		}

		planned = append(planned, plannedService{
			selection: selection,
			resolved:  resolved,
			roomType:  roomType,
			slotStart: slot,
			capacity:  location.CapacityFor(roomType),
		})
	}
	return planned, nil
}

// resolvePetSnapshot builds the pet/owner snapshot frozen onto the
// reservation, preferring the saved pet profile of registered users and
// failing with every still-missing field named.
func (s *Service) resolvePetSnapshot(ctx context.Context, input CreateReservationInput) (model.PetSnapshot, error) {
	snapshot := model.PetSnapshot{
		OwnerName:  input.Pet.OwnerName,
		OwnerPhone: input.Pet.OwnerPhone,
		PetName:    input.Pet.PetName,
		PetType:    input.Pet.PetType,
		PetGender:  input.Pet.PetGender,
	}
	if input.Pet.PetAge != nil {
		snapshot.PetAge = *input.Pet.PetAge
		snapshot.PetAgeSet = true
	}

	if !input.Identity.IsGuest() {
		profile, err := s.petRepo.FindDefaultOrLatestPet(ctx, input.Identity.UserID)
		if err != nil {
			return model.PetSnapshot{}, err
		}
		snapshot = snapshot.MergeProfile(profile, s.clock.Now())
	}

	if missing := snapshot.MissingFields(); len(missing) > 0 {
		return model.PetSnapshot{}, model.NewValidationError("missing pet details", missing...)
	}
	return snapshot, nil
}

// precheckCapacity reads current inventory for every consumed hour and fails
// on the first slot already at capacity, naming its local time.
func (s *Service) precheckCapacity(ctx context.Context, locationID string, planned []plannedService) error {
	slotsByRoom := make(map[model.RoomType][]time.Time)
	for _, p := range planned {
		slotsByRoom[p.roomType] = append(slotsByRoom[p.roomType], p.slotStart)
	}

	counts := make(map[model.RoomType]map[time.Time]int, len(slotsByRoom))
	for roomType, slots := range slotsByRoom {
		c, err := s.inventoryRepo.BookedCounts(ctx, locationID, roomType, slots)
		if err != nil {
			return err
		}
		counts[roomType] = c
	}

	for _, p := range planned {
		if p.capacity < 1 {
			return model.NewCapacityConflictError("no capacity configured for this room type", schedule.LabelAt(p.slotStart))
		}
		if counts[p.roomType][p.slotStart.UTC()] >= p.capacity {
			return model.NewCapacityConflictError("slot is fully booked", schedule.LabelAt(p.slotStart))
		}
	}
	return nil
}

func buildReservation(input CreateReservationInput, p plannedService, snapshot model.PetSnapshot, now time.Time) model.Reservation {
	reservation := model.Reservation{
		ID:               uuid.NewString(),
		LocationID:       input.LocationID,
		ServiceType:      p.selection.ServiceType,
		ServiceOptionKey: p.selection.OptionKey,
		ServiceNameEn:    p.resolved.NameEn,
		ServiceNameAr:    p.resolved.NameAr,
		OptionNameEn:     p.resolved.OptionNameEn,
		OptionNameAr:     p.resolved.OptionNameAr,
		RoomType:         p.roomType,
		StartsAt:         p.slotStart,
		EndsAt:           p.slotStart.Add(schedule.SlotDuration),
		Status:           model.StatusBooked,
		ServicePrice:     p.resolved.Price,
		Currency:         p.resolved.Currency,
		OwnerName:        snapshot.OwnerName,
		OwnerPhone:       snapshot.OwnerPhone,
		PetName:          snapshot.PetName,
		PetType:          snapshot.PetType,
		PetAge:           snapshot.PetAge,
		PetGender:        snapshot.PetGender,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.Identity.IsGuest() {
		guestID := input.Identity.GuestID
		reservation.GuestID = &guestID
	} else {
		userID := input.Identity.UserID
		reservation.UserID = &userID
	}
	if input.Comment != "" {
		comment := input.Comment
		reservation.Comment = &comment
	}
	return reservation
}
