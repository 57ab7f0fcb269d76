package model

import (
	"fmt"
	"time"
)

// NotificationType classifies a notification record.
type NotificationType string

const (
	// NotificationTypeReservation marks reservation lifecycle notifications.
	NotificationTypeReservation NotificationType = "reservation"
)

// StatusChangeEvent is emitted after a reservation changes status. It is
// handed to the notification dispatcher after commit; delivery is
// fire-and-forget and never affects the booking outcome.
type StatusChangeEvent struct {
	ReservationID string            `json:"reservation_id"`
	UserID        string            `json:"user_id,omitempty"`
	GuestID       string            `json:"guest_id,omitempty"`
	LocationID    string            `json:"location_id"`
	PetName       string            `json:"pet_name"`
	Status        ReservationStatus `json:"status"`
	StartsAt      time.Time         `json:"starts_at"`
	StartLabel    string            `json:"start_label"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NotificationRecord is a persisted in-app notification.
type NotificationRecord struct {
	ID        int              `db:"id"`
	UserID    string           `db:"user_id"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	IsRead    bool             `db:"is_read"`
	Type      NotificationType `db:"type"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// ToNotificationRecord renders the event as an in-app notification. The
// message shows the slot's local-time label, not the raw instant.
func (e StatusChangeEvent) ToNotificationRecord() NotificationRecord {
	var title, message string
	switch e.Status {
	case StatusBooked:
		title = "Reservation confirmed"
		message = fmt.Sprintf("Your appointment for %s at %s is booked.", e.PetName, e.StartLabel)
	case StatusCancelled:
		title = "Reservation cancelled"
		message = fmt.Sprintf("Your appointment for %s at %s has been cancelled.", e.PetName, e.StartLabel)
	default:
		title = "Reservation updated"
		message = fmt.Sprintf("Your appointment for %s at %s is now %s.", e.PetName, e.StartLabel, e.Status)
	}

	userID := e.UserID
	if userID == "" {
		userID = e.GuestID
	}

	return NotificationRecord{
		UserID:    userID,
		Title:     title,
		Message:   message,
		IsRead:    false,
		Type:      NotificationTypeReservation,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.CreatedAt,
	}
}
