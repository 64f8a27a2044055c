// Package calendar submits confirmed appointments to an external calendar
// system. Submission is best-effort: a calendar outage never blocks a
// booking confirmation.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// BookingRequest describes the appointment to place on the calendar.
type BookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	PatientName   string `json:"patient_name"`
	PatientEmail  string `json:"patient_email"`
	Doctor        string `json:"doctor"`
	Date          string `json:"date"`
	Slot          string `json:"slot"`
	DurationMins  int    `json:"duration_mins"`
}

// Client books an appointment on an external calendar.
type Client interface {
	Book(ctx context.Context, req BookingRequest) error
}

// CalendlyClient books through the Calendly API using a personal access
// token and a preconfigured event type.
type CalendlyClient struct {
	httpClient    *http.Client
	baseURL       string
	token         string
	eventTypeUUID string
	logger        *logging.Logger
}

// NewCalendlyClient creates a Calendly-backed calendar client. Returns nil
// when no token is configured so callers can fall back to another sink.
func NewCalendlyClient(token, eventTypeUUID string, logger *logging.Logger) *CalendlyClient {
	if token == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendlyClient{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		baseURL:       "https://api.calendly.com",
		token:         token,
		eventTypeUUID: eventTypeUUID,
		logger:        logger,
	}
}

// Book submits a scheduling request for the configured event type.
func (c *CalendlyClient) Book(ctx context.Context, req BookingRequest) error {
	payload := map[string]any{
		"event_type": fmt.Sprintf("%s/event_types/%s", c.baseURL, c.eventTypeUUID),
		"invitee": map[string]string{
			"name":  req.PatientName,
			"email": req.PatientEmail,
		},
		"start_date": req.Date,
		"start_time": req.Slot,
		"metadata": map[string]string{
			"appointment_id": req.AppointmentID,
			"doctor":         req.Doctor,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("calendar: failed to marshal booking %s: %w", req.AppointmentID, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scheduling_requests", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calendar: failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calendar: calendly request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("calendar: calendly returned status %d", resp.StatusCode)
	}

	c.logger.Info("calendar: booking submitted", "appointment_id", req.AppointmentID, "status", resp.StatusCode)
	return nil
}

// RecordingClient appends calendar bookings to the record store's daily
// calendar collection, mirroring the clinic's exportable booking sheet.
type RecordingClient struct {
	store  records.Store
	logger *logging.Logger
}

// NewRecordingClient creates a record-store-backed calendar client.
func NewRecordingClient(store records.Store, logger *logging.Logger) *RecordingClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordingClient{store: store, logger: logger}
}

// Book appends the booking under today's calendar collection.
func (c *RecordingClient) Book(ctx context.Context, req BookingRequest) error {
	collection := records.DailyCollection(records.CalendarBookingsPrefix, time.Now().UTC())
	rec := records.Record{
		AppointmentID: req.AppointmentID,
		PatientName:   req.PatientName,
		Date:          req.Date,
		Time:          req.Slot,
		Doctor:        req.Doctor,
		DurationMins:  req.DurationMins,
		Email:         req.PatientEmail,
		Status:        records.StatusConfirmed,
		CreatedAt:     time.Now().UTC(),
	}
	if err := c.store.Append(ctx, collection, rec); err != nil {
		return fmt.Errorf("calendar: failed to record booking %s: %w", req.AppointmentID, err)
	}
	c.logger.Info("calendar: booking recorded", "appointment_id", req.AppointmentID, "collection", collection)
	return nil
}

// StubClient logs bookings without submitting them anywhere.
type StubClient struct {
	logger *logging.Logger
}

// NewStubClient creates a no-op calendar client.
func NewStubClient(logger *logging.Logger) *StubClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubClient{logger: logger}
}

// Book logs but does not submit.
func (c *StubClient) Book(ctx context.Context, req BookingRequest) error {
	c.logger.Info("stub calendar client: would book", "appointment_id", req.AppointmentID, "date", req.Date, "slot", req.Slot)
	return nil
}

// Ensure interface compliance
var _ Client = (*CalendlyClient)(nil)
var _ Client = (*RecordingClient)(nil)
var _ Client = (*StubClient)(nil)
