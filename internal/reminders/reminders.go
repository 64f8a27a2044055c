// Package reminders schedules and dispatches the pre-visit reminder
// sequence for booked appointments.
package reminders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-scheduler/internal/records"
)

// Delivery channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Descriptor statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// Actions a reminder asks the patient to take.
const (
	ActionNone            = ""
	ActionConfirmAttend   = "complete_forms_and_confirm_attendance"
	ActionConfirmOrCancel = "complete_forms_and_confirm_or_give_cancel_reason"
)

// Descriptor is one scheduled reminder for an appointment. Recipient
// details are denormalized in so the dispatch loop never has to resolve
// the appointment record.
type Descriptor struct {
	ID             string    `json:"id"`
	AppointmentID  string    `json:"appointment_id"`
	PatientName    string    `json:"patient_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Channel        string    `json:"channel"`
	SendAt         time.Time `json:"send_at"`
	Offset         string    `json:"offset"`
	Message        string    `json:"message"`
	RequiredAction string    `json:"required_action"`
	Status         string    `json:"status"`
}

// BuildSchedule derives the three-step reminder sequence for a confirmed
// appointment: a courtesy email a week out, a forms-and-attendance SMS the
// day before, and a final email two hours ahead asking the patient to
// confirm or give a reason for cancelling.
func BuildSchedule(rec records.Record, start time.Time) []Descriptor {
	return []Descriptor{
		{
			ID:             uuid.NewString(),
			AppointmentID:  rec.AppointmentID,
			PatientName:    rec.PatientName,
			Email:          rec.Email,
			Phone:          rec.Phone,
			Channel:        ChannelEmail,
			SendAt:         start.Add(-7 * 24 * time.Hour),
			Offset:         "7d",
			Message:        fmt.Sprintf("Your appointment with %s is coming up on %s at %s.", rec.Doctor, rec.Date, rec.Time),
			RequiredAction: ActionNone,
			Status:         StatusPending,
		},
		{
			ID:             uuid.NewString(),
			AppointmentID:  rec.AppointmentID,
			PatientName:    rec.PatientName,
			Email:          rec.Email,
			Phone:          rec.Phone,
			Channel:        ChannelSMS,
			SendAt:         start.Add(-24 * time.Hour),
			Offset:         "1d",
			Message:        fmt.Sprintf("Reminder: appointment %s tomorrow at %s with %s. Please complete your intake forms and confirm attendance.", rec.AppointmentID, rec.Time, rec.Doctor),
			RequiredAction: ActionConfirmAttend,
			Status:         StatusPending,
		},
		{
			ID:             uuid.NewString(),
			AppointmentID:  rec.AppointmentID,
			PatientName:    rec.PatientName,
			Email:          rec.Email,
			Phone:          rec.Phone,
			Channel:        ChannelEmail,
			SendAt:         start.Add(-2 * time.Hour),
			Offset:         "2h",
			Message:        fmt.Sprintf("Your appointment %s starts at %s. Please complete any outstanding forms and confirm, or let us know why you need to cancel.", rec.AppointmentID, rec.Time),
			RequiredAction: ActionConfirmOrCancel,
			Status:         StatusPending,
		},
	}
}

// AppointmentStart resolves the wall-clock start of a recorded
// appointment from its date and slot strings.
func AppointmentStart(rec records.Record) (time.Time, error) {
	slotStart, _, _ := strings.Cut(rec.Time, "-")
	start, err := time.Parse("2006-01-02 15:04", rec.Date+" "+strings.TrimSpace(slotStart))
	if err != nil {
		return time.Time{}, fmt.Errorf("reminders: bad appointment time %q %q: %w", rec.Date, rec.Time, err)
	}
	return start.UTC(), nil
}
