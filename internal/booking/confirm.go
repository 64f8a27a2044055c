package booking

import (
	"context"
	"sync"

	"github.com/wolfman30/clinic-scheduler/internal/calendar"
	"github.com/wolfman30/clinic-scheduler/internal/notify"
	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/internal/reminders"
	"github.com/wolfman30/clinic-scheduler/internal/session"
)

// confirm assembles the final appointment record and fans out the side
// effects: persistence, calendar booking, confirmation email, and reminder
// scheduling. The steps are independent and best-effort; the appointment
// is Confirmed once the record is assembled, whatever happens downstream.
func (m *Machine) confirm(ctx context.Context, s *session.Session) records.Record {
	now := m.nowFunc().UTC()
	rec := records.Record{
		AppointmentID: records.NewAppointmentID(),
		PatientName:   s.Patient.DisplayName(),
		Date:          s.Appointment.Date,
		Time:          s.Appointment.SelectedSlot,
		Doctor:        s.Appointment.Doctor,
		DurationMins:  s.Appointment.DurationMins,
		PatientType:   patientType(s.Patient),
		Insurance:     s.Patient.InsuranceCompany,
		MemberID:      s.Patient.MemberID,
		Email:         s.Patient.Email,
		Phone:         s.Patient.Phone,
		Status:        records.StatusConfirmed,
		CreatedAt:     now,
	}

	type step struct {
		name string
		run  func(context.Context) error
	}
	steps := []step{
		{"persist", func(ctx context.Context) error {
			return m.records.Append(ctx, records.DailyCollection(records.AppointmentsPrefix, now), rec)
		}},
		{"calendar", func(ctx context.Context) error {
			return m.calendar.Book(ctx, calendar.BookingRequest{
				AppointmentID: rec.AppointmentID,
				PatientName:   rec.PatientName,
				PatientEmail:  rec.Email,
				Doctor:        rec.Doctor,
				Date:          rec.Date,
				Slot:          rec.Time,
				DurationMins:  rec.DurationMins,
			})
		}},
		{"reminders", func(ctx context.Context) error {
			start, err := reminders.AppointmentStart(rec)
			if err != nil {
				return err
			}
			return m.reminders.Create(ctx, reminders.BuildSchedule(rec, start))
		}},
	}
	if rec.Email != "" {
		steps = append(steps, step{"email", func(ctx context.Context) error {
			return m.sendConfirmationEmail(ctx, rec)
		}})
	}

	var wg sync.WaitGroup
	for _, st := range steps {
		wg.Add(1)
		go func(st step) {
			defer wg.Done()
			if err := st.run(ctx); err != nil {
				m.logger.Error("confirmation step failed",
					"session_id", s.ID,
					"appointment_id", rec.AppointmentID,
					"step", st.name,
					"error", err)
				m.metrics.ObserveStepFailure(st.name)
			}
		}(st)
	}
	wg.Wait()

	m.logger.Info("appointment booked",
		"session_id", s.ID,
		"appointment_id", rec.AppointmentID,
		"doctor", rec.Doctor,
		"date", rec.Date,
		"slot", rec.Time,
		"patient_type", rec.PatientType)
	return rec
}

// sendConfirmationEmail sends the booking confirmation. New patients get
// the clinic's intake forms attached.
func (m *Machine) sendConfirmationEmail(ctx context.Context, rec records.Record) error {
	var forms []notify.Attachment
	if rec.PatientType == "New" {
		loaded, err := notify.LoadForms(m.formsDir)
		if err != nil {
			m.logger.Warn("failed to load intake forms", "appointment_id", rec.AppointmentID, "error", err)
		} else {
			forms = loaded
		}
	}
	return m.email.Send(ctx, notify.ConfirmationEmail(rec, m.clinicName, forms))
}
