package model

import "time"

// ServiceType is the kind of appointment a customer books.
type ServiceType string

const (
	ServiceGrooming  ServiceType = "GROOMING"
	ServiceShowering ServiceType = "SHOWERING"
	ServiceClinic    ServiceType = "CLINIC"
)

// RoomType is the physical resource category a service consumes.
type RoomType string

const (
	RoomGrooming RoomType = "GROOMING_ROOM"
	RoomClinic   RoomType = "CLINIC_ROOM"
)

// RoomType maps a service type to the room it occupies. Grooming and
// showering share the grooming rooms; check-ups use the clinic rooms.
func (s ServiceType) RoomType() (RoomType, error) {
	switch s {
	case ServiceGrooming, ServiceShowering:
		return RoomGrooming, nil
	case ServiceClinic:
		return RoomClinic, nil
	}
	return "", NewValidationError("unknown service type: "+string(s), "serviceType")
}

// ServiceLocation is a physical site with per-room-type capacity. Managed by
// admin CRUD elsewhere; read-only inside the booking engine.
type ServiceLocation struct {
	ID                   string    `db:"id"`
	Name                 string    `db:"name"`
	GroomingRoomCapacity int       `db:"grooming_room_capacity"`
	ClinicRoomCapacity   int       `db:"clinic_room_capacity"`
	IsActive             bool      `db:"is_active"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// CapacityFor returns the configured capacity for the given room type.
func (l *ServiceLocation) CapacityFor(room RoomType) int {
	if room == RoomClinic {
		return l.ClinicRoomCapacity
	}
	return l.GroomingRoomCapacity
}

// SlotKey uniquely identifies one inventory row: a room type at a location
// for one hour-aligned instant.
type SlotKey struct {
	LocationID string
	RoomType   RoomType
	SlotStart  time.Time
}

// SlotInventory is the per-slot capacity counter, the atomic unit of
// contention. A row exists only once a first booking created it; absence
// means zero bookings. Rows are never deleted.
type SlotInventory struct {
	LocationID  string    `db:"location_id"`
	RoomType    RoomType  `db:"room_type"`
	SlotStart   time.Time `db:"slot_start"`
	Capacity    int       `db:"capacity"`
	BookedCount int       `db:"booked_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// HourAvailability is one hour of the availability report.
type HourAvailability struct {
	Hour      int    `json:"hour"`
	Label     string `json:"label"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
	Available bool   `json:"available"`
}
