// Package schedule converts between the fixed service timezone
// (Africa/Cairo) and absolute instants, and knows the per-weekday working
// hours of the locations. Pure functions, no I/O.
package schedule

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pawcare-app/booking-engine/internal/model"
)

const (
	// Slots are one hour long and aligned to the hour in the service
	// timezone.
	SlotDuration = time.Hour

	openHourDefault = 10
	openHourLateDay = 14
	closeHour       = 22

	// MaxAdvanceDays is how far ahead a booking may be placed.
	MaxAdvanceDays = 15
)

var cairo *time.Location

func init() {
	loc, err := time.LoadLocation("Africa/Cairo")
	if err != nil {
		// time/tzdata is linked in, so this only happens on a broken build.
		log.Fatalf("failed to load service timezone: %v", err)
	}
	cairo = loc
}

// Location returns the service timezone.
func Location() *time.Location {
	return cairo
}

// Clock supplies the current time. Injected so window checks are testable.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// WorkingHours returns the open (inclusive) and close (exclusive) hours for
// the given date in the service timezone. Thursday and Friday open late at
// 14:00; every other day opens at 10:00; all days close at 22:00.
func WorkingHours(date time.Time) (start, end int) {
	switch date.In(cairo).Weekday() {
	case time.Thursday, time.Friday:
		return openHourLateDay, closeHour
	default:
		return openHourDefault, closeHour
	}
}

// Hour24 normalizes an hour specification to a 24-hour value. With an empty
// meridiem the hour is taken as-is (0-23); with "AM"/"PM" it is taken as a
// 12-hour value (1-12).
func Hour24(hour int, meridiem string) (int, error) {
	if meridiem == "" {
		if hour < 0 || hour > 23 {
			return 0, model.NewValidationError(fmt.Sprintf("hour %d out of range 0-23", hour), "hour")
		}
		return hour, nil
	}

	if hour < 1 || hour > 12 {
		return 0, model.NewValidationError(fmt.Sprintf("hour %d out of range 1-12", hour), "hour")
	}
	switch strings.ToUpper(meridiem) {
	case "AM":
		if hour == 12 {
			return 0, nil
		}
		return hour, nil
	case "PM":
		if hour == 12 {
			return 12, nil
		}
		return hour + 12, nil
	}
	return 0, model.NewValidationError("meridiem must be AM or PM", "meridiem")
}

// AbsoluteSlot resolves an ISO date plus an hour specification to the
// hour-aligned absolute instant in the service timezone.
func AbsoluteSlot(dateISO string, hour int, meridiem string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateISO, cairo)
	if err != nil {
		return time.Time{}, model.NewValidationError("date must be formatted YYYY-MM-DD", "date")
	}
	h, err := Hour24(hour, meridiem)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, cairo), nil
}

// SlotAt returns the hour-aligned instant for the given date and 24-hour
// value. Built from calendar components rather than duration arithmetic so
// slots stay hour-aligned across DST transitions.
func SlotAt(date time.Time, hour24 int) time.Time {
	local := date.In(cairo)
	return time.Date(local.Year(), local.Month(), local.Day(), hour24, 0, 0, 0, cairo)
}

// SlotLabel formats a 24-hour value as the user-facing "h:mm AM" label.
func SlotLabel(hour24 int) string {
	return time.Date(2000, 1, 1, hour24, 0, 0, 0, cairo).Format("3:04 PM")
}

// LabelAt formats an instant as its user-facing slot label in the service
// timezone. Error text shows these labels, never raw UTC offsets.
func LabelAt(t time.Time) string {
	return t.In(cairo).Format("3:04 PM")
}

// ValidateBookingWindow rejects slots before the start of the current hour
// and dates more than MaxAdvanceDays in the future.
func ValidateBookingWindow(slot, now time.Time) error {
	localNow := now.In(cairo)
	currentHour := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), localNow.Hour(), 0, 0, 0, cairo)
	if slot.Before(currentHour) {
		return model.NewValidationError("booking time is in the past", "date")
	}

	limit := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, cairo).
		AddDate(0, 0, MaxAdvanceDays+1)
	if !slot.Before(limit) {
		return model.NewValidationError(
			fmt.Sprintf("bookings may be placed at most %d days ahead", MaxAdvanceDays), "date")
	}
	return nil
}

// ValidateWorkingHours rejects slots outside the working-hour window of
// their day.
func ValidateWorkingHours(slot time.Time) error {
	local := slot.In(cairo)
	start, end := WorkingHours(local)
	if local.Hour() < start || local.Hour() >= end {
		return model.NewValidationError(
			fmt.Sprintf("slot %s is outside working hours (%s - %s)",
				LabelAt(slot), SlotLabel(start), SlotLabel(end)), "hour")
	}
	return nil
}
