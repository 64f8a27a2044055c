// Package records persists confirmed appointment records into daily
// collections (append-or-create, keyed by the calendar day).
package records

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection name prefixes.
const (
	AppointmentsPrefix     = "appointments"
	CalendarBookingsPrefix = "calendar_bookings"
)

// StatusConfirmed is the terminal status written on every booked record.
const StatusConfirmed = "Confirmed"

// Record is an immutable snapshot of a confirmed appointment.
type Record struct {
	AppointmentID string    `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Doctor        string    `json:"doctor"`
	DurationMins  int       `json:"duration_mins"`
	PatientType   string    `json:"patient_type"` // "New" or "Returning"
	Insurance     string    `json:"insurance"`
	MemberID      string    `json:"member_id"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAppointmentID generates a reference like "APT1A2B3C4D": a short,
// human-quotable prefix of a UUID.
func NewAppointmentID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "APT" + strings.ToUpper(id[:8])
}

// DailyCollection derives the collection name for a prefix and day, e.g.
// "appointments_20250602".
func DailyCollection(prefix string, day time.Time) string {
	return prefix + "_" + day.Format("20060102")
}
