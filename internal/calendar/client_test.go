package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-scheduler/internal/records"
)

func sampleBooking() BookingRequest {
	return BookingRequest{
		AppointmentID: "APT1A2B3C4D",
		PatientName:   "John Doe",
		PatientEmail:  "john@example.com",
		Doctor:        "Dr. Smith",
		Date:          "2025-06-03",
		Slot:          "09:00 - 09:30",
		DurationMins:  30,
	}
}

func TestCalendlyClientBook(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scheduling_requests", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewCalendlyClient("test-token", "evt-123", nil)
	client.baseURL = srv.URL

	require.NoError(t, client.Book(context.Background(), sampleBooking()))

	invitee, ok := captured["invitee"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "John Doe", invitee["name"])
	assert.Equal(t, "2025-06-03", captured["start_date"])
	assert.Equal(t, "09:00 - 09:30", captured["start_time"])
}

func TestCalendlyClientBookServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewCalendlyClient("test-token", "evt-123", nil)
	client.baseURL = srv.URL

	err := client.Book(context.Background(), sampleBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewCalendlyClientWithoutToken(t *testing.T) {
	assert.Nil(t, NewCalendlyClient("", "evt-123", nil))
}

func TestRecordingClientBook(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	store := records.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	client := NewRecordingClient(store, nil)
	require.NoError(t, client.Book(context.Background(), sampleBooking()))

	collection := records.DailyCollection(records.CalendarBookingsPrefix, time.Now().UTC())
	got, err := store.List(context.Background(), collection)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "APT1A2B3C4D", got[0].AppointmentID)
	assert.Equal(t, "09:00 - 09:30", got[0].Time)
	assert.Equal(t, records.StatusConfirmed, got[0].Status)
}

func TestStubClientBook(t *testing.T) {
	client := NewStubClient(nil)
	require.NoError(t, client.Book(context.Background(), sampleBooking()))
}
