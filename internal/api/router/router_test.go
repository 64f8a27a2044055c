package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-scheduler/internal/booking"
	"github.com/wolfman30/clinic-scheduler/internal/calendar"
	"github.com/wolfman30/clinic-scheduler/internal/directory"
	"github.com/wolfman30/clinic-scheduler/internal/extract"
	"github.com/wolfman30/clinic-scheduler/internal/notify"
	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/internal/reminders"
	"github.com/wolfman30/clinic-scheduler/internal/schedule"
	"github.com/wolfman30/clinic-scheduler/internal/session"
)

func newTestRouter(t *testing.T) (http.Handler, records.Store, reminders.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	recStore := records.NewRedisStore(client)
	remStore := reminders.NewRedisStore(client)

	machine := booking.NewMachine(booking.Config{
		Extractor:  extract.NewRuleExtractor(),
		Directory:  directory.NewInMemoryDirectory(directory.SeedPatients()),
		Slots:      schedule.NewStaticProvider(),
		Records:    recStore,
		Calendar:   calendar.NewRecordingClient(recStore, nil),
		Email:      notify.NewStubEmailSender(nil),
		Reminders:  remStore,
		ClinicName: "Downtown Clinic",
	})
	handler := booking.NewHandler(machine, session.NewMemoryStore(), nil)

	return New(&Config{
		BookingHandler: handler,
		RecordStore:    recStore,
		ReminderStore:  remStore,
	}), recStore, remStore
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestConversationRouteMounted(t *testing.T) {
	r, _, _ := newTestRouter(t)
	body := `{"text": "Hi, I'm John Doe, born 1990-01-01, Dr. Smith"}`
	req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp booking.MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(session.StageScheduling), resp.Stage)
}

func TestAdminTodayRecords(t *testing.T) {
	r, recStore, _ := newTestRouter(t)
	now := time.Now().UTC()
	rec := records.Record{
		AppointmentID: "APT1A2B3C4D",
		PatientName:   "John Doe",
		Status:        records.StatusConfirmed,
		CreatedAt:     now,
	}
	require.NoError(t, recStore.Append(context.Background(), records.DailyCollection(records.AppointmentsPrefix, now), rec))

	req := httptest.NewRequest(http.MethodGet, "/admin/records/today", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Collection string           `json:"collection"`
		Records    []records.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "APT1A2B3C4D", resp.Records[0].AppointmentID)
}

func TestAdminTodayRecordsEmpty(t *testing.T) {
	r, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/calendar/today", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"records":[]`)
}

func TestAdminReminders(t *testing.T) {
	r, _, remStore := newTestRouter(t)
	rec := records.Record{
		AppointmentID: "APT1A2B3C4D",
		PatientName:   "John Doe",
		Date:          "2025-06-10",
		Time:          "09:00 - 09:30",
		Doctor:        "Dr. Smith",
		Email:         "john@example.com",
	}
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, remStore.Create(context.Background(), reminders.BuildSchedule(rec, start)))

	req := httptest.NewRequest(http.MethodGet, "/admin/reminders/APT1A2B3C4D", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		AppointmentID string                 `json:"appointment_id"`
		Reminders     []reminders.Descriptor `json:"reminders"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Reminders, 3)
	assert.Equal(t, "7d", resp.Reminders[0].Offset)
}
