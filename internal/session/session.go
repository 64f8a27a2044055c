package session

import (
	"strings"
	"time"
)

// Stage identifies the current step of a booking conversation. Inputs are
// interpreted relative to the stage, and transitions happen only through the
// booking state machine.
type Stage string

const (
	StageGreeting      Stage = "greeting"
	StageLookup        Stage = "patient_lookup"
	StageScheduling    Stage = "scheduling"
	StageSlotSelection Stage = "slot_selection"
	StageInsurance     Stage = "insurance"
	StageConfirmation  Stage = "confirmation"
	StageBooked        Stage = "booked"
)

// Speaker identifies who produced a history entry.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Entry is one line of conversation history. History is append-only.
type Entry struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Patient accumulates patient fields over the conversation. Fields only ever
// gain information: a later extraction overwrites a field only with a
// non-empty value (see Merge).
type Patient struct {
	PatientID        string `json:"patient_id,omitempty"`
	Name             string `json:"name,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	DOB              string `json:"dob,omitempty"`
	Doctor           string `json:"doctor,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	InsuranceCompany string `json:"insurance_company,omitempty"`
	MemberID         string `json:"member_id,omitempty"`
	Returning        bool   `json:"returning"`
}

// Appointment accumulates booking fields. DurationMins is decided once at
// the lookup stage and never recomputed for the session.
type Appointment struct {
	Date           string   `json:"date,omitempty"`
	Doctor         string   `json:"doctor,omitempty"`
	DurationMins   int      `json:"duration_mins,omitempty"`
	AvailableSlots []string `json:"available_slots,omitempty"`
	SelectedSlot   string   `json:"selected_slot,omitempty"`
}

// Session is the mutable state of one in-progress booking conversation.
type Session struct {
	ID          string      `json:"id"`
	Stage       Stage       `json:"stage"`
	Patient     Patient     `json:"patient"`
	Appointment Appointment `json:"appointment"`
	History     []Entry     `json:"history"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// New creates a fresh session at the greeting stage.
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Stage:     StageGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a history entry. Existing entries are never rewritten.
func (s *Session) Append(speaker Speaker, text string) {
	s.History = append(s.History, Entry{
		Speaker: speaker,
		Text:    text,
		At:      time.Now().UTC(),
	})
	s.UpdatedAt = time.Now().UTC()
}

// Reset returns the session to a fresh greeting state while keeping its ID
// and history. Used after a booking completes or on an explicit user reset.
func (s *Session) Reset() {
	s.Stage = StageGreeting
	s.Patient = Patient{}
	s.Appointment = Appointment{}
	s.UpdatedAt = time.Now().UTC()
}

// MergePatient copies non-empty incoming fields over the current patient.
// Empty incoming fields never erase stored information.
func (s *Session) MergePatient(in Patient) {
	dst := &s.Patient
	if in.PatientID != "" {
		dst.PatientID = in.PatientID
	}
	if in.Name != "" {
		dst.Name = in.Name
	}
	if in.FirstName != "" {
		dst.FirstName = in.FirstName
	}
	if in.LastName != "" {
		dst.LastName = in.LastName
	}
	if in.DOB != "" {
		dst.DOB = in.DOB
	}
	if in.Doctor != "" {
		dst.Doctor = in.Doctor
	}
	if in.Phone != "" {
		dst.Phone = in.Phone
	}
	if in.Email != "" {
		dst.Email = in.Email
	}
	if in.InsuranceCompany != "" {
		dst.InsuranceCompany = in.InsuranceCompany
	}
	if in.MemberID != "" {
		dst.MemberID = in.MemberID
	}
}

// DisplayName returns the best available patient name for prompts and
// records: first/last when the directory filled them in, otherwise the name
// as extracted from conversation.
func (p Patient) DisplayName() string {
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full != "" {
		return full
	}
	return p.Name
}
