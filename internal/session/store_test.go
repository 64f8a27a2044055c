package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	sess := New("conv-1")
	sess.Stage = StageSlotSelection
	sess.Patient.Name = "John Doe"
	sess.Patient.DOB = "1990-01-01"
	sess.Appointment.DurationMins = 30
	sess.Appointment.AvailableSlots = []string{"09:00 - 09:30", "10:00 - 10:30"}
	sess.Append(SpeakerUser, "tomorrow works")

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, StageSlotSelection, got.Stage)
	assert.Equal(t, "John Doe", got.Patient.Name)
	assert.Equal(t, 30, got.Appointment.DurationMins)
	assert.Equal(t, sess.Appointment.AvailableSlots, got.Appointment.AvailableSlots)
	require.Len(t, got.History, 1)
	assert.Equal(t, SpeakerUser, got.History[0].Speaker)
}

func TestRedisStoreMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("conv-2")))
	require.NoError(t, store.Delete(ctx, "conv-2"))

	_, err := store.Get(ctx, "conv-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("conv-3")
	sess.Appointment.AvailableSlots = []string{"09:00 - 10:00"}
	require.NoError(t, store.Save(ctx, sess))

	// Mutating the original after save must not affect the stored copy.
	sess.Appointment.AvailableSlots[0] = "mutated"
	got, err := store.Get(ctx, "conv-3")
	require.NoError(t, err)
	assert.Equal(t, "09:00 - 10:00", got.Appointment.AvailableSlots[0])

	// Mutating a loaded copy must not affect a later load.
	got.Stage = StageBooked
	again, err := store.Get(ctx, "conv-3")
	require.NoError(t, err)
	assert.Equal(t, StageGreeting, again.Stage)
}

func TestMergePatientNeverErases(t *testing.T) {
	sess := New("conv-4")
	sess.MergePatient(Patient{Name: "John Doe", DOB: "1990-01-01", Doctor: "Dr. Smith"})
	sess.MergePatient(Patient{InsuranceCompany: "Max Bupa"})

	assert.Equal(t, "John Doe", sess.Patient.Name)
	assert.Equal(t, "1990-01-01", sess.Patient.DOB)
	assert.Equal(t, "Dr. Smith", sess.Patient.Doctor)
	assert.Equal(t, "Max Bupa", sess.Patient.InsuranceCompany)
}

func TestResetKeepsIDAndHistory(t *testing.T) {
	sess := New("conv-5")
	sess.Stage = StageBooked
	sess.Patient.Name = "Jane Smith"
	sess.Append(SpeakerAssistant, "confirmed")

	sess.Reset()

	assert.Equal(t, "conv-5", sess.ID)
	assert.Equal(t, StageGreeting, sess.Stage)
	assert.Empty(t, sess.Patient.Name)
	assert.Len(t, sess.History, 1)
}

func TestDisplayName(t *testing.T) {
	p := Patient{Name: "john doe"}
	assert.Equal(t, "john doe", p.DisplayName())

	p.FirstName = "John"
	p.LastName = "Doe"
	assert.Equal(t, "John Doe", p.DisplayName())
}
