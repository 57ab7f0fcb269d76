package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/schedule"
)

const availabilityCacheTTL = 10 * time.Second

// GetAvailability reports, per working hour of the given date, how much
// room-type capacity is left at the location. Read-only and lock-free;
// slight staleness versus concurrent bookings is fine because the
// authoritative check happens at booking time.
func (s *Service) GetAvailability(ctx context.Context, locationID string, serviceType model.ServiceType, dateISO string) ([]model.HourAvailability, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "BookingService.GetAvailability")
	defer seg.Close(nil)

	roomType, err := serviceType.RoomType()
	if err != nil {
		return nil, err
	}

	day, err := schedule.AbsoluteSlot(dateISO, 0, "")
	if err != nil {
		return nil, err
	}

	location, err := s.activeLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	capacity := location.CapacityFor(roomType)

	cacheKey := ""
	if s.cache != nil {
		cacheKey = s.cache.GenerateKey("availability",
			fmt.Sprintf("%s:%s:%s", locationID, roomType, dateISO))
		if cached, err := s.cache.Get(ctx, cacheKey); err != nil {
			log.Printf("Failed to read availability cache: %v", err)
		} else if cached != "" {
			var hours []model.HourAvailability
			if err := json.Unmarshal([]byte(cached), &hours); err == nil {
				return hours, nil
			}
		}
	}

	startHour, endHour := schedule.WorkingHours(day)
	slots := make([]time.Time, 0, endHour-startHour)
	for hour := startHour; hour < endHour; hour++ {
		slots = append(slots, schedule.SlotAt(day, hour))
	}

	counts, err := s.inventoryRepo.BookedCounts(ctx, locationID, roomType, slots)
	if err != nil {
		seg.Close(err)
		return nil, err
	}

	hours := make([]model.HourAvailability, 0, len(slots))
	for i, slot := range slots {
		hour := startHour + i
		booked := counts[slot.UTC()]
		remaining := capacity - booked
		if remaining < 0 {
			remaining = 0
		}
		hours = append(hours, model.HourAvailability{
			Hour:      hour,
			Label:     schedule.SlotLabel(hour),
			Capacity:  capacity,
			Booked:    booked,
			Remaining: remaining,
			Available: remaining > 0,
		})
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(hours); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(encoded), availabilityCacheTTL); err != nil {
				log.Printf("Failed to write availability cache: %v", err)
			}
		}
	}

	return hours, nil
}
