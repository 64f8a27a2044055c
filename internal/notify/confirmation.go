package notify

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-scheduler/internal/records"
)

const confirmationTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Appointment Confirmed</h2>
  <p>Dear %s,</p>
  <p>Your appointment has been booked. Please keep your reference handy.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Appointment ID</b></td><td>%s</td></tr>
    <tr><td><b>Date</b></td><td>%s</td></tr>
    <tr><td><b>Time</b></td><td>%s</td></tr>
    <tr><td><b>Doctor</b></td><td>%s</td></tr>
    <tr><td><b>Duration</b></td><td>%d minutes</td></tr>
  </table>
  %s
  <p>If you need to reschedule, reply to this email or contact the front desk.</p>
  <p>Thank you,<br>%s</p>
</body>
</html>`

const formsNote = `<p>The attached intake forms must be completed before your visit. Please bring them with you or submit them in advance.</p>`

// ConfirmationEmail builds the booking confirmation for a record. New
// patients get the intake forms attached and a note asking for them to be
// filled in before the visit.
func ConfirmationEmail(rec records.Record, clinicName string, forms []Attachment) EmailMessage {
	note := ""
	if len(forms) > 0 {
		note = formsNote
	}

	body := fmt.Sprintf(confirmationTemplate,
		rec.PatientName,
		rec.AppointmentID,
		rec.Date,
		rec.Time,
		rec.Doctor,
		rec.DurationMins,
		note,
		clinicName,
	)

	return EmailMessage{
		To:          rec.Email,
		ToName:      rec.PatientName,
		Subject:     fmt.Sprintf("Appointment Confirmed - %s", rec.AppointmentID),
		Body:        body,
		HTML:        true,
		Attachments: forms,
	}
}

// ReminderEmail builds a reminder message for a record.
func ReminderEmail(rec records.Record, message string) EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body style=\"font-family: Arial, sans-serif; color: #333;\">")
	fmt.Fprintf(&b, "<p>Dear %s,</p>", rec.PatientName)
	fmt.Fprintf(&b, "<p>%s</p>", message)
	fmt.Fprintf(&b, "<p><b>Appointment %s</b>: %s at %s with %s.</p>", rec.AppointmentID, rec.Date, rec.Time, rec.Doctor)
	fmt.Fprintf(&b, "</body></html>")

	return EmailMessage{
		To:      rec.Email,
		ToName:  rec.PatientName,
		Subject: fmt.Sprintf("Appointment Reminder - %s", rec.AppointmentID),
		Body:    b.String(),
		HTML:    true,
	}
}
