package model

import (
	"time"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusBooked     ReservationStatus = "BOOKED"
	StatusCancelled  ReservationStatus = "CANCELLED"
	StatusCompleted  ReservationStatus = "COMPLETED"
	StatusInProgress ReservationStatus = "IN_PROGRESS"
	StatusNoShow     ReservationStatus = "NO_SHOW"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusCancelled, StatusCompleted, StatusInProgress, StatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether a reservation in state s may move to next.
// Only BOOKED reservations transition; the four other states are terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s != StatusBooked {
		return false
	}
	switch next {
	case StatusCancelled, StatusCompleted, StatusInProgress, StatusNoShow:
		return true
	}
	return false
}

// Identity identifies the actor behind a booking: a registered user or an
// anonymous guest, mutually exclusive.
type Identity struct {
	UserID  string
	GuestID string
}

// NewUserIdentity returns an identity for a registered user.
func NewUserIdentity(userID string) Identity {
	return Identity{UserID: userID}
}

// NewGuestIdentity returns an identity for an anonymous guest.
func NewGuestIdentity(guestID string) Identity {
	return Identity{GuestID: guestID}
}

// Key returns the single identifier held by the identity.
func (i Identity) Key() string {
	if i.UserID != "" {
		return i.UserID
	}
	return i.GuestID
}

// IsGuest reports whether the identity belongs to an anonymous guest.
func (i Identity) IsGuest() bool {
	return i.UserID == "" && i.GuestID != ""
}

// Validate checks that exactly one of user id or guest id is set.
func (i Identity) Validate() error {
	if (i.UserID == "") == (i.GuestID == "") {
		return NewValidationError("exactly one of user id or guest id must be set", "identity")
	}
	return nil
}

// Reservation is one customer's occupancy of one room type for one hour.
// Service and option names plus price are snapshotted at booking time so
// later catalog edits do not alter history. Rows are never deleted.
type Reservation struct {
	ID               string            `db:"id"`
	UserID           *string           `db:"user_id"`
	GuestID          *string           `db:"guest_id"`
	LocationID       string            `db:"location_id"`
	ServiceType      ServiceType       `db:"service_type"`
	ServiceOptionKey string            `db:"service_option_key"`
	ServiceNameEn    string            `db:"service_name_en"`
	ServiceNameAr    string            `db:"service_name_ar"`
	OptionNameEn     string            `db:"option_name_en"`
	OptionNameAr     string            `db:"option_name_ar"`
	RoomType         RoomType          `db:"room_type"`
	StartsAt         time.Time         `db:"starts_at"`
	EndsAt           time.Time         `db:"ends_at"`
	Status           ReservationStatus `db:"status"`
	CancelledAt      *time.Time        `db:"cancelled_at"`
	ServicePrice     float64           `db:"service_price"`
	Currency         string            `db:"currency"`
	OwnerName        string            `db:"owner_name"`
	OwnerPhone       string            `db:"owner_phone"`
	PetName          string            `db:"pet_name"`
	PetType          string            `db:"pet_type"`
	PetAge           int               `db:"pet_age"`
	PetGender        string            `db:"pet_gender"`
	Comment          *string           `db:"comment"`
	CreatedAt        time.Time         `db:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at"`
}

// Identity returns the actor the reservation belongs to.
func (r *Reservation) Identity() Identity {
	if r.UserID != nil {
		return Identity{UserID: *r.UserID}
	}
	if r.GuestID != nil {
		return Identity{GuestID: *r.GuestID}
	}
	return Identity{}
}

// ListScope selects which reservations a listing returns relative to now.
type ListScope string

const (
	ScopeUpcoming ListScope = "upcoming"
	ScopePast     ListScope = "past"
	ScopeAll      ListScope = "all"
)

// Valid reports whether s is a known listing scope.
func (s ListScope) Valid() bool {
	switch s {
	case ScopeUpcoming, ScopePast, ScopeAll:
		return true
	}
	return false
}
