package httpapi

import (
	"time"

	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/schedule"
	"github.com/pawcare-app/booking-engine/internal/service/booking"
)

type serviceSelectionRequest struct {
	ServiceType string `json:"service_type"`
	OptionKey   string `json:"service_option_key"`
}

type petDetailsRequest struct {
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone"`
	PetName    string `json:"pet_name"`
	PetType    string `json:"pet_type"`
	PetAge     *int   `json:"pet_age"`
	PetGender  string `json:"pet_gender"`
}

// createReservationRequest accepts either a single selection (top-level
// service fields) or a list of sequential selections.
type createReservationRequest struct {
	LocationID  string                    `json:"location_id"`
	ServiceType string                    `json:"service_type"`
	OptionKey   string                    `json:"service_option_key"`
	Services    []serviceSelectionRequest `json:"services"`
	Date        string                    `json:"date"`
	Hour        int                       `json:"hour"`
	Meridiem    string                    `json:"meridiem"`
	Pet         petDetailsRequest         `json:"pet"`
	Comment     string                    `json:"comment"`
}

func (r createReservationRequest) toInput(identity model.Identity) booking.CreateReservationInput {
	selections := make([]booking.ServiceSelection, 0, len(r.Services)+1)
	for _, s := range r.Services {
		selections = append(selections, booking.ServiceSelection{
			ServiceType: model.ServiceType(s.ServiceType),
			OptionKey:   s.OptionKey,
		})
	}
	if len(selections) == 0 && r.ServiceType != "" {
		selections = append(selections, booking.ServiceSelection{
			ServiceType: model.ServiceType(r.ServiceType),
			OptionKey:   r.OptionKey,
		})
	}

	return booking.CreateReservationInput{
		Identity:   identity,
		LocationID: r.LocationID,
		Selections: selections,
		Date:       r.Date,
		Hour:       r.Hour,
		Meridiem:   r.Meridiem,
		Pet: booking.PetDetails{
			OwnerName:  r.Pet.OwnerName,
			OwnerPhone: r.Pet.OwnerPhone,
			PetName:    r.Pet.PetName,
			PetType:    r.Pet.PetType,
			PetAge:     r.Pet.PetAge,
			PetGender:  r.Pet.PetGender,
		},
		Comment: r.Comment,
	}
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type reservationResponse struct {
	ID               string     `json:"id"`
	LocationID       string     `json:"location_id"`
	ServiceType      string     `json:"service_type"`
	ServiceOptionKey string     `json:"service_option_key"`
	ServiceNameEn    string     `json:"service_name_en"`
	ServiceNameAr    string     `json:"service_name_ar"`
	OptionNameEn     string     `json:"option_name_en"`
	OptionNameAr     string     `json:"option_name_ar"`
	RoomType         string     `json:"room_type"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           time.Time  `json:"ends_at"`
	StartLabel       string     `json:"start_label"`
	Status           string     `json:"status"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	ServicePrice     float64    `json:"service_price"`
	Currency         string     `json:"currency"`
	OwnerName        string     `json:"owner_name"`
	OwnerPhone       string     `json:"owner_phone"`
	PetName          string     `json:"pet_name"`
	PetType          string     `json:"pet_type"`
	PetAge           int        `json:"pet_age"`
	PetGender        string     `json:"pet_gender"`
	Comment          string     `json:"comment,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toReservationResponse(r *model.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:               r.ID,
		LocationID:       r.LocationID,
		ServiceType:      string(r.ServiceType),
		ServiceOptionKey: r.ServiceOptionKey,
		ServiceNameEn:    r.ServiceNameEn,
		ServiceNameAr:    r.ServiceNameAr,
		OptionNameEn:     r.OptionNameEn,
		OptionNameAr:     r.OptionNameAr,
		RoomType:         string(r.RoomType),
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		StartLabel:       schedule.LabelAt(r.StartsAt),
		Status:           string(r.Status),
		CancelledAt:      r.CancelledAt,
		ServicePrice:     r.ServicePrice,
		Currency:         r.Currency,
		OwnerName:        r.OwnerName,
		OwnerPhone:       r.OwnerPhone,
		PetName:          r.PetName,
		PetType:          r.PetType,
		PetAge:           r.PetAge,
		PetGender:        r.PetGender,
		CreatedAt:        r.CreatedAt,
	}
	if r.Comment != nil {
		resp.Comment = *r.Comment
	}
	return resp
}

func toReservationResponses(reservations []model.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, toReservationResponse(&reservations[i]))
	}
	return out
}

type notificationResponse struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponses(records []model.NotificationRecord) []notificationResponse {
	out := make([]notificationResponse, 0, len(records))
	for _, record := range records {
		out = append(out, notificationResponse{
			ID:        record.ID,
			Title:     record.Title,
			Message:   record.Message,
			IsRead:    record.IsRead,
			Type:      string(record.Type),
			CreatedAt: record.CreatedAt,
		})
	}
	return out
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}
