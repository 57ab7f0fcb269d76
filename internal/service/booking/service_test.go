package booking

import (
	"time"

	"github.com/pawcare-app/booking-engine/internal/catalog"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/schedule"
)

const (
	testLocationID = "loc-zamalek"
	testGuestID    = "3f1e9d4c-8a2b-4c5d-9e6f-7a8b9c0d1e2f"
	testUserID     = "user-100"
)

// testEnv wires the booking service over the in-memory fakes. The clock is
// pinned to Sunday 2025-06-01 09:00 in the service timezone.
type testEnv struct {
	service      *Service
	inventory    *fakeInventoryRepo
	reservations *fakeReservationRepo
	locations    *fakeLocationRepo
	pets         *fakePetRepo
	dispatcher   *recordingDispatcher
	clock        fixedClock
}

func newTestEnv() *testEnv {
	clock := fixedClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, schedule.Location())}

	locations := &fakeLocationRepo{locations: map[string]*model.ServiceLocation{
		testLocationID: {
			ID:                   testLocationID,
			Name:                 "Zamalek Branch",
			GroomingRoomCapacity: 2,
			ClinicRoomCapacity:   1,
			IsActive:             true,
		},
		"loc-closed": {
			ID:                   "loc-closed",
			Name:                 "Closed Branch",
			GroomingRoomCapacity: 2,
			ClinicRoomCapacity:   1,
			IsActive:             false,
		},
	}}

	selections := map[string]*catalog.Selection{
		"GROOMING/full_groom": {
			ServiceType:  model.ServiceGrooming,
			OptionKey:    "full_groom",
			NameEn:       "Grooming",
			NameAr:       "العناية الكاملة",
			OptionNameEn: "Full Groom",
			OptionNameAr: "عناية كاملة",
			Price:        300,
			Currency:     "EGP",
		},
		"SHOWERING/basic_shower": {
			ServiceType:  model.ServiceShowering,
			OptionKey:    "basic_shower",
			NameEn:       "Showering",
			NameAr:       "الاستحمام",
			OptionNameEn: "Basic Shower",
			OptionNameAr: "استحمام أساسي",
			Price:        150,
			Currency:     "EGP",
		},
		"CLINIC/checkup": {
			ServiceType:  model.ServiceClinic,
			OptionKey:    "checkup",
			NameEn:       "Clinic",
			NameAr:       "العيادة",
			OptionNameEn: "Check-up",
			OptionNameAr: "كشف",
			Price:        400,
			Currency:     "EGP",
		},
	}

	inventory := newFakeInventoryRepo()
	reservations := newFakeReservationRepo()
	pets := &fakePetRepo{}
	dispatcher := newRecordingDispatcher()
	tx := &fakeTxRunner{inventory: inventory, reservations: reservations}

	service := NewService(
		tx,
		locations,
		inventory,
		reservations,
		pets,
		&fakeCatalog{selections: selections},
		dispatcher,
		nil,
		clock,
	)

	return &testEnv{
		service:      service,
		inventory:    inventory,
		reservations: reservations,
		locations:    locations,
		pets:         pets,
		dispatcher:   dispatcher,
		clock:        clock,
	}
}

func intPtr(v int) *int { return &v }

// validGuestInput is a grooming booking for Wednesday 2025-06-04 at 11:00,
// inside both the booking window and the working hours.
func validGuestInput() CreateReservationInput {
	return CreateReservationInput{
		Identity:   model.NewGuestIdentity(testGuestID),
		LocationID: testLocationID,
		Selections: []ServiceSelection{{ServiceType: model.ServiceGrooming, OptionKey: "full_groom"}},
		Date:       "2025-06-04",
		Hour:       11,
		Pet: PetDetails{
			OwnerName:  "Mona Hassan",
			OwnerPhone: "+201001234567",
			PetName:    "Luna",
			PetType:    "cat",
			PetAge:     intPtr(3),
			PetGender:  "female",
		},
	}
}

func slotAtCairo(date string, hour int) time.Time {
	day, err := time.ParseInLocation("2006-01-02", date, schedule.Location())
	if err != nil {
		panic(err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, schedule.Location())
}
