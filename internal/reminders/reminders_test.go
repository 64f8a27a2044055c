package reminders

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-scheduler/internal/notify"
	"github.com/wolfman30/clinic-scheduler/internal/records"
)

func sampleRecord() records.Record {
	return records.Record{
		AppointmentID: "APT1A2B3C4D",
		PatientName:   "John Doe",
		Date:          "2025-06-10",
		Time:          "09:00 - 09:30",
		Doctor:        "Dr. Smith",
		DurationMins:  30,
		Email:         "john@example.com",
		Phone:         "+919876543210",
		Status:        records.StatusConfirmed,
	}
}

func TestBuildSchedule(t *testing.T) {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	schedule := BuildSchedule(sampleRecord(), start)
	require.Len(t, schedule, 3)

	week := schedule[0]
	assert.Equal(t, ChannelEmail, week.Channel)
	assert.Equal(t, start.Add(-7*24*time.Hour), week.SendAt)
	assert.Equal(t, ActionNone, week.RequiredAction)
	assert.Equal(t, "7d", week.Offset)

	day := schedule[1]
	assert.Equal(t, ChannelSMS, day.Channel)
	assert.Equal(t, start.Add(-24*time.Hour), day.SendAt)
	assert.Equal(t, ActionConfirmAttend, day.RequiredAction)
	assert.Contains(t, day.Message, "intake forms")

	hours := schedule[2]
	assert.Equal(t, ChannelEmail, hours.Channel)
	assert.Equal(t, start.Add(-2*time.Hour), hours.SendAt)
	assert.Equal(t, ActionConfirmOrCancel, hours.RequiredAction)

	for _, d := range schedule {
		assert.Equal(t, StatusPending, d.Status)
		assert.Equal(t, "APT1A2B3C4D", d.AppointmentID)
		assert.Equal(t, "john@example.com", d.Email)
		assert.Equal(t, "+919876543210", d.Phone)
		assert.NotEmpty(t, d.ID)
	}
}

func TestAppointmentStart(t *testing.T) {
	start, err := AppointmentStart(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), start)

	bad := sampleRecord()
	bad.Time = "whenever"
	_, err = AppointmentStart(bad)
	require.Error(t, err)
}

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)
	return NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestStoreCreateAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	schedule := BuildSchedule(sampleRecord(), start)

	require.NoError(t, store.Create(ctx, schedule))

	got, err := store.ListForAppointment(ctx, "APT1A2B3C4D")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "7d", got[0].Offset)
	assert.Equal(t, "1d", got[1].Offset)
	assert.Equal(t, "2h", got[2].Offset)
}

func TestStoreDueAndMarkSent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	schedule := BuildSchedule(sampleRecord(), start)
	require.NoError(t, store.Create(ctx, schedule))

	// The day before the appointment: 7d and 1d are due, 2h is not.
	due, err := store.Due(ctx, start.Add(-23*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)

	for _, d := range due {
		require.NoError(t, store.MarkSent(ctx, d.ID))
	}

	due, err = store.Due(ctx, start.Add(-23*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = store.Due(ctx, start)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "2h", due[0].Offset)

	got, err := store.ListForAppointment(ctx, "APT1A2B3C4D")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, got[0].Status)
	assert.Equal(t, StatusSent, got[1].Status)
	assert.Equal(t, StatusPending, got[2].Status)
}

func TestStoreMarkSentUnknown(t *testing.T) {
	store := newTestStore(t)
	err := store.MarkSent(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkerDispatchDue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, BuildSchedule(sampleRecord(), start)))

	email := notify.NewStubEmailSender(nil)
	sms := notify.NewStubSMSSender(nil)
	worker := NewWorker(store, email, sms, time.Minute, nil)
	worker.nowFunc = func() time.Time { return start.Add(-time.Hour) }

	sent, err := worker.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Len(t, email.Sent, 2)
	assert.Len(t, sms.Sent, 1)
	assert.Equal(t, "+919876543210", sms.Sent[0].To)

	// Second pass sends nothing.
	sent, err = worker.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
}
