// Package schedule provides appointment slot availability per doctor and day.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider returns the bookable slots for a doctor on a date. Slots are
// ordered "HH:MM - HH:MM" strings; the list may be empty.
type Provider interface {
	AvailableSlots(ctx context.Context, doctor, date string, durationMins int) ([]string, error)
}

// defaultStartTimes is offered when the doctor or day has no configured
// schedule, so the conversation can always move forward.
var defaultStartTimes = []string{"09:00", "10:00", "11:00"}

// StaticProvider serves slots from fixed per-doctor weekday schedules.
type StaticProvider struct {
	schedules map[string]map[time.Weekday][]string
}

// NewStaticProvider creates a provider with the clinic's standing doctor
// schedules.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		schedules: map[string]map[time.Weekday][]string{
			"dr. smith": {
				time.Monday:    {"09:00", "10:00", "11:00", "14:00", "15:00"},
				time.Tuesday:   {"09:00", "10:30", "11:30", "14:30", "15:30"},
				time.Wednesday: {"10:00", "11:00", "14:00", "15:00", "16:00"},
				time.Thursday:  {"09:30", "10:30", "14:00", "15:30"},
				time.Friday:    {"09:00", "10:00", "11:00", "14:00"},
			},
			"dr. johnson": {
				time.Monday:    {"10:00", "11:00", "15:00", "16:00"},
				time.Tuesday:   {"09:00", "14:00", "15:00", "16:00"},
				time.Wednesday: {"09:30", "10:30", "14:30", "15:30"},
				time.Thursday:  {"10:00", "11:00", "15:00", "16:00"},
				time.Friday:    {"09:00", "10:00", "14:00", "15:00"},
			},
		},
	}
}

// AvailableSlots renders each scheduled start time as a bounded interval of
// the requested duration. Unknown doctors and unscheduled days get the
// default start times rather than an empty list.
func (p *StaticProvider) AvailableSlots(ctx context.Context, doctor, date string, durationMins int) ([]string, error) {
	if durationMins <= 0 {
		return nil, fmt.Errorf("schedule: invalid duration %d", durationMins)
	}

	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid date %q: %w", date, err)
	}

	starts := defaultStartTimes
	if days, ok := p.schedules[strings.ToLower(strings.TrimSpace(doctor))]; ok {
		if scheduled, ok := days[day.Weekday()]; ok {
			starts = scheduled
		}
	}

	slots := make([]string, 0, len(starts))
	for _, start := range starts {
		end, err := addMinutes(start, durationMins)
		if err != nil {
			return nil, fmt.Errorf("schedule: bad start time %q: %w", start, err)
		}
		slots = append(slots, fmt.Sprintf("%s - %s", start, end))
	}
	return slots, nil
}

// SlotStart extracts the starting time from a "HH:MM - HH:MM" slot string.
func SlotStart(slot string) (string, bool) {
	parts := strings.SplitN(slot, "-", 2)
	if len(parts) == 0 {
		return "", false
	}
	start := strings.TrimSpace(parts[0])
	if _, err := time.Parse("15:04", start); err != nil {
		return "", false
	}
	return start, true
}

func addMinutes(hhmm string, minutes int) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", err
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04"), nil
}

// Ensure interface compliance
var _ Provider = (*StaticProvider)(nil)
