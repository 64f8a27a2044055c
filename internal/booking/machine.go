// Package booking implements the conversational state machine that walks a
// patient from greeting to a confirmed appointment.
package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/clinic-scheduler/internal/calendar"
	"github.com/wolfman30/clinic-scheduler/internal/directory"
	"github.com/wolfman30/clinic-scheduler/internal/extract"
	"github.com/wolfman30/clinic-scheduler/internal/notify"
	"github.com/wolfman30/clinic-scheduler/internal/observability/metrics"
	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/internal/reminders"
	"github.com/wolfman30/clinic-scheduler/internal/schedule"
	"github.com/wolfman30/clinic-scheduler/internal/session"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Visit durations in minutes, decided once at the lookup stage.
const (
	DurationReturningMins = 30
	DurationNewMins       = 60
)

var affirmativeTokens = map[string]bool{
	"yes": true, "y": true, "confirm": true, "ok": true, "sure": true,
}

var negativeTokens = map[string]bool{
	"no": true, "n": true, "cancel": true,
}

var noInsuranceTokens = map[string]bool{
	"none": true, "no": true, "no insurance": true,
}

// Machine advances booking conversations. It is logically single-threaded
// per session; concurrency happens only across independent sessions and
// inside the confirmation fan-out.
type Machine struct {
	extractor  extract.Extractor
	directory  directory.Directory
	slots      schedule.Provider
	records    records.Store
	calendar   calendar.Client
	email      notify.EmailSender
	reminders  reminders.Store
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
	clinicName string
	formsDir   string
	nowFunc    func() time.Time
}

// Config wires the machine's collaborators. Extractor, Directory, Slots,
// Records, Calendar, Email, and Reminders are required.
type Config struct {
	Extractor  extract.Extractor
	Directory  directory.Directory
	Slots      schedule.Provider
	Records    records.Store
	Calendar   calendar.Client
	Email      notify.EmailSender
	Reminders  reminders.Store
	Metrics    *metrics.BookingMetrics
	Logger     *logging.Logger
	ClinicName string
	FormsDir   string
}

// NewMachine creates a booking state machine.
func NewMachine(cfg Config) *Machine {
	if cfg.Extractor == nil {
		panic("booking: extractor cannot be nil")
	}
	if cfg.Directory == nil {
		panic("booking: directory cannot be nil")
	}
	if cfg.Slots == nil {
		panic("booking: slot provider cannot be nil")
	}
	if cfg.Records == nil {
		panic("booking: record store cannot be nil")
	}
	if cfg.Calendar == nil {
		panic("booking: calendar client cannot be nil")
	}
	if cfg.Email == nil {
		panic("booking: email sender cannot be nil")
	}
	if cfg.Reminders == nil {
		panic("booking: reminder store cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clinicName := cfg.ClinicName
	if clinicName == "" {
		clinicName = "the clinic"
	}
	return &Machine{
		extractor:  cfg.Extractor,
		directory:  cfg.Directory,
		slots:      cfg.Slots,
		records:    cfg.Records,
		calendar:   cfg.Calendar,
		email:      cfg.Email,
		reminders:  cfg.Reminders,
		metrics:    cfg.Metrics,
		logger:     logger,
		clinicName: clinicName,
		formsDir:   cfg.FormsDir,
		nowFunc:    time.Now,
	}
}

// Advance processes one user message and returns the assistant's reply.
// Every input yields a non-empty response and a defined next stage;
// collaborator failures degrade to a re-prompt or a logged warning, never
// to a crash.
func (m *Machine) Advance(ctx context.Context, s *session.Session, text string) string {
	started := m.nowFunc()
	fromStage := s.Stage

	s.Append(session.SpeakerUser, text)
	reply := m.dispatch(ctx, s, strings.TrimSpace(text))
	if reply == "" {
		reply = promptApology()
	}
	s.Append(session.SpeakerAssistant, reply)

	m.metrics.ObserveMessage(string(fromStage), "ok")
	if s.Stage != fromStage {
		m.metrics.ObserveTransition(string(fromStage), string(s.Stage))
	}
	m.metrics.ObserveTurnLatency(string(fromStage), time.Since(started).Seconds())
	return reply
}

func (m *Machine) dispatch(ctx context.Context, s *session.Session, text string) string {
	switch s.Stage {
	case session.StageGreeting, session.StageLookup:
		return m.handleGreeting(ctx, s, text)
	case session.StageScheduling:
		return m.handleScheduling(ctx, s, text)
	case session.StageSlotSelection:
		return m.handleSlotSelection(s, text)
	case session.StageInsurance:
		return m.handleInsurance(ctx, s, text)
	case session.StageConfirmation:
		return m.handleConfirmation(ctx, s, text)
	case session.StageBooked:
		// A terminal session starts over on the next message.
		s.Reset()
		return m.handleGreeting(ctx, s, text)
	default:
		m.logger.Error("unknown stage", "session_id", s.ID, "stage", s.Stage)
		s.Stage = session.StageGreeting
		return promptGreeting()
	}
}

// handleGreeting collects name, date of birth, and doctor preference, then
// runs the directory lookup in the same turn so the patient is not asked to
// wait for an extra message.
func (m *Machine) handleGreeting(ctx context.Context, s *session.Session, text string) string {
	fields, err := m.extractor.Extract(ctx, text, extract.GreetingSchema)
	if err != nil {
		m.logger.Warn("greeting extraction failed", "session_id", s.ID, "error", err)
	}
	s.MergePatient(session.Patient{
		Name:   fields.Name,
		DOB:    fields.DOB,
		Doctor: fields.Doctor,
	})

	missing := missingGreetingFields(s.Patient)
	if len(missing) > 0 {
		s.Stage = session.StageGreeting
		return promptMissingFields(missing)
	}

	s.Stage = session.StageLookup
	return m.lookupPatient(ctx, s)
}

func (m *Machine) lookupPatient(ctx context.Context, s *session.Session) string {
	rec, err := m.directory.Lookup(ctx, s.Patient.Name, s.Patient.DOB)
	switch {
	case err == nil:
		s.MergePatient(session.Patient{
			PatientID:        rec.PatientID,
			FirstName:        rec.FirstName,
			LastName:         rec.LastName,
			Phone:            rec.Phone,
			Email:            rec.Email,
			InsuranceCompany: rec.InsuranceCompany,
			MemberID:         rec.MemberID,
		})
		s.Patient.Returning = true
		s.Appointment.DurationMins = DurationReturningMins
	case errors.Is(err, directory.ErrNotFound):
		s.Patient.Returning = false
		s.Appointment.DurationMins = DurationNewMins
	default:
		// An unreachable directory is treated as not-found, not a crash.
		m.logger.Error("directory lookup failed", "session_id", s.ID, "error", err)
		s.Patient.Returning = false
		s.Appointment.DurationMins = DurationNewMins
	}

	s.Appointment.Doctor = s.Patient.Doctor
	s.Stage = session.StageScheduling
	return promptScheduling(s.Patient, s.Appointment.DurationMins)
}

func (m *Machine) handleScheduling(ctx context.Context, s *session.Session, text string) string {
	fields, err := m.extractor.Extract(ctx, text, extract.SchedulingSchema)
	if err != nil {
		m.logger.Warn("scheduling extraction failed", "session_id", s.ID, "error", err)
	}
	date := fields.Date
	if date == "" {
		return promptSchedulingRetry()
	}

	slots, err := m.slots.AvailableSlots(ctx, s.Appointment.Doctor, date, s.Appointment.DurationMins)
	if err != nil {
		m.logger.Error("slot provider failed", "session_id", s.ID, "date", date, "error", err)
		return promptSlotsUnavailable()
	}
	if len(slots) == 0 {
		return promptNoSlots(date)
	}

	s.Appointment.Date = date
	s.Appointment.AvailableSlots = slots
	s.Appointment.SelectedSlot = ""
	s.Stage = session.StageSlotSelection
	return promptSlotList(date, s.Appointment.Doctor, slots)
}

// handleSlotSelection accepts only a 1-based index into the most recently
// offered slot list. Rejection never mutates the appointment.
func (m *Machine) handleSlotSelection(s *session.Session, text string) string {
	count := len(s.Appointment.AvailableSlots)
	if count == 0 {
		s.Stage = session.StageScheduling
		return promptSchedulingRetry()
	}

	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return promptSlotNotANumber(count)
	}
	if n < 1 || n > count {
		return promptSlotOutOfRange(count)
	}

	s.Appointment.SelectedSlot = s.Appointment.AvailableSlots[n-1]
	s.Stage = session.StageInsurance
	return promptInsurance(s.Patient)
}

func (m *Machine) handleInsurance(ctx context.Context, s *session.Session, text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if noInsuranceTokens[normalized] {
		s.Patient.InsuranceCompany = "None"
		s.Patient.MemberID = "None"
		s.Stage = session.StageConfirmation
		return promptConfirmation(s)
	}

	fields, err := m.extractor.Extract(ctx, text, extract.InsuranceSchema)
	if err != nil {
		m.logger.Warn("insurance extraction failed", "session_id", s.ID, "error", err)
	}

	switch {
	case fields.InsuranceCompany != "" && fields.MemberID != "":
		s.Patient.InsuranceCompany = fields.InsuranceCompany
		s.Patient.MemberID = fields.MemberID
	case fields.InsuranceCompany != "":
		s.Patient.InsuranceCompany = fields.InsuranceCompany
		s.Patient.MemberID = "Pending"
	default:
		// Extraction never blocks the booking; the front desk verifies later.
		s.Patient.InsuranceCompany = strings.TrimSpace(text)
		s.Patient.MemberID = "Pending"
	}

	s.Stage = session.StageConfirmation
	return promptConfirmation(s)
}

func (m *Machine) handleConfirmation(ctx context.Context, s *session.Session, text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	switch {
	case affirmativeTokens[normalized]:
		rec := m.confirm(ctx, s)
		s.Stage = session.StageBooked
		m.metrics.ObserveConfirmation(rec.PatientType)
		return promptBooked(rec)
	case negativeTokens[normalized]:
		s.Appointment.SelectedSlot = ""
		s.Appointment.AvailableSlots = nil
		s.Appointment.Date = ""
		s.Stage = session.StageScheduling
		return promptReschedule()
	default:
		return promptConfirmationRetry()
	}
}

func missingGreetingFields(p session.Patient) []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "your full name")
	}
	if p.DOB == "" {
		missing = append(missing, "your date of birth (YYYY-MM-DD)")
	}
	if p.Doctor == "" {
		missing = append(missing, "which doctor you would like to see")
	}
	return missing
}

func patientType(p session.Patient) string {
	if p.Returning {
		return "Returning"
	}
	return "New"
}
