package schedule

import (
	"testing"
	"time"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, cairo)
}

func TestWorkingHours(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart int
		wantEnd   int
	}{
		{"Sunday", at(2025, time.June, 1, 0), 10, 22},
		{"Wednesday", at(2025, time.June, 4, 0), 10, 22},
		{"Thursday opens late", at(2025, time.June, 5, 0), 14, 22},
		{"Friday opens late", at(2025, time.June, 6, 0), 14, 22},
		{"Saturday", at(2025, time.June, 7, 0), 10, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WorkingHours(tt.date)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("WorkingHours() = %d, %d, want %d, %d", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestHour24(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		meridiem string
		want     int
		wantErr  bool
	}{
		{"24h midnight", 0, "", 0, false},
		{"24h evening", 19, "", 19, false},
		{"24h out of range", 24, "", 0, true},
		{"24h negative", -1, "", 0, true},
		{"11 AM", 11, "AM", 11, false},
		{"12 AM is midnight", 12, "AM", 0, false},
		{"12 PM is noon", 12, "PM", 12, false},
		{"3 PM", 3, "PM", 15, false},
		{"lowercase meridiem", 3, "pm", 15, false},
		{"12h zero", 0, "AM", 0, true},
		{"12h thirteen", 13, "PM", 0, true},
		{"bad meridiem", 3, "XM", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hour24(tt.hour, tt.meridiem)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Hour24(%d, %q) error = %v, wantErr %v", tt.hour, tt.meridiem, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Hour24(%d, %q) = %d, want %d", tt.hour, tt.meridiem, got, tt.want)
			}
		})
	}
}

func TestAbsoluteSlot(t *testing.T) {
	got, err := AbsoluteSlot("2025-06-04", 11, "AM")
	if err != nil {
		t.Fatalf("AbsoluteSlot() error = %v", err)
	}
	want := at(2025, time.June, 4, 11)
	if !got.Equal(want) {
		t.Errorf("AbsoluteSlot() = %v, want %v", got, want)
	}

	if _, err := AbsoluteSlot("04/06/2025", 11, ""); err == nil {
		t.Error("AbsoluteSlot() accepted a malformed date")
	}
	if _, err := AbsoluteSlot("2025-06-04", 25, ""); err == nil {
		t.Error("AbsoluteSlot() accepted hour 25")
	}
}

func TestSlotAt_StaysHourAlignedAcrossDST(t *testing.T) {
	// Egypt springs forward on the last Friday of April 2025.
	transitionDay := at(2025, time.April, 25, 0)
	slot := SlotAt(transitionDay, 15)
	if slot.Hour() != 15 {
		t.Errorf("SlotAt() local hour = %d on DST day, want 15", slot.Hour())
	}
	if slot.Minute() != 0 {
		t.Errorf("SlotAt() minute = %d, want 0", slot.Minute())
	}
}

func TestSlotLabel(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "12:00 AM"},
		{10, "10:00 AM"},
		{11, "11:00 AM"},
		{12, "12:00 PM"},
		{14, "2:00 PM"},
		{21, "9:00 PM"},
	}
	for _, tt := range tests {
		if got := SlotLabel(tt.hour); got != tt.want {
			t.Errorf("SlotLabel(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestLabelAt(t *testing.T) {
	// A UTC instant must still be labelled in the service timezone.
	utc := at(2025, time.June, 4, 11).UTC()
	if got := LabelAt(utc); got != "11:00 AM" {
		t.Errorf("LabelAt() = %q, want 11:00 AM", got)
	}
}

func TestValidateBookingWindow(t *testing.T) {
	now := at(2025, time.June, 1, 9).Add(30 * time.Minute)

	tests := []struct {
		name    string
		slot    time.Time
		wantErr bool
	}{
		{"earlier hour today", at(2025, time.June, 1, 8), true},
		{"current hour is allowed", at(2025, time.June, 1, 9), false},
		{"later today", at(2025, time.June, 1, 15), false},
		{"fifteen days ahead", at(2025, time.June, 16, 11), false},
		{"last slot of the window", at(2025, time.June, 16, 23), false},
		{"sixteen days ahead", at(2025, time.June, 17, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBookingWindow(tt.slot, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBookingWindow(%v) error = %v, wantErr %v", tt.slot, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorkingHours(t *testing.T) {
	tests := []struct {
		name    string
		slot    time.Time
		wantErr bool
	}{
		{"Wednesday opening hour", at(2025, time.June, 4, 10), false},
		{"Wednesday last hour", at(2025, time.June, 4, 21), false},
		{"Wednesday before opening", at(2025, time.June, 4, 9), true},
		{"Wednesday at close", at(2025, time.June, 4, 22), true},
		{"Thursday morning is closed", at(2025, time.June, 5, 11), true},
		{"Thursday afternoon is open", at(2025, time.June, 5, 14), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkingHours(tt.slot)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWorkingHours(%v) error = %v, wantErr %v", tt.slot, err, tt.wantErr)
			}
		})
	}
}
