package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a reminder id does not exist.
var ErrNotFound = errors.New("reminders: not found")

// Store persists reminder descriptors and answers due-time queries.
type Store interface {
	Create(ctx context.Context, descriptors []Descriptor) error
	ListForAppointment(ctx context.Context, appointmentID string) ([]Descriptor, error)
	Due(ctx context.Context, now time.Time) ([]Descriptor, error)
	MarkSent(ctx context.Context, id string) error
}

// RedisStore keeps each descriptor as a JSON hash entry plus a sorted set
// ordered by send time for due queries.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed reminder store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("reminders: redis client cannot be nil")
	}
	return &RedisStore{client: client}
}

const (
	dueKey = "reminders:due"
)

func reminderKey(id string) string {
	return fmt.Sprintf("reminder:%s", id)
}

func appointmentKey(appointmentID string) string {
	return fmt.Sprintf("reminders:appointment:%s", appointmentID)
}

// Create stores the descriptors and indexes them by send time and
// appointment.
func (s *RedisStore) Create(ctx context.Context, descriptors []Descriptor) error {
	pipe := s.client.TxPipeline()
	for _, d := range descriptors {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("reminders: failed to marshal %s: %w", d.ID, err)
		}
		pipe.Set(ctx, reminderKey(d.ID), data, 0)
		pipe.ZAdd(ctx, dueKey, redis.Z{Score: float64(d.SendAt.Unix()), Member: d.ID})
		pipe.RPush(ctx, appointmentKey(d.AppointmentID), d.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reminders: failed to create schedule: %w", err)
	}
	return nil
}

// ListForAppointment returns the appointment's reminders in schedule order.
func (s *RedisStore) ListForAppointment(ctx context.Context, appointmentID string) ([]Descriptor, error) {
	ids, err := s.client.LRange(ctx, appointmentKey(appointmentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reminders: failed to list for %s: %w", appointmentID, err)
	}
	return s.fetch(ctx, ids)
}

// Due returns all pending reminders whose send time is at or before now.
func (s *RedisStore) Due(ctx context.Context, now time.Time) ([]Descriptor, error) {
	ids, err := s.client.ZRangeByScore(ctx, dueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.Unix()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("reminders: failed to query due reminders: %w", err)
	}
	all, err := s.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}
	due := all[:0]
	for _, d := range all {
		if d.Status == StatusPending {
			due = append(due, d)
		}
	}
	return due, nil
}

// MarkSent flips the descriptor to sent and drops it from the due index.
func (s *RedisStore) MarkSent(ctx context.Context, id string) error {
	data, err := s.client.Get(ctx, reminderKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("reminders: failed to load %s: %w", id, err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("reminders: failed to decode %s: %w", id, err)
	}
	d.Status = StatusSent
	updated, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("reminders: failed to marshal %s: %w", id, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, reminderKey(id), updated, 0)
	pipe.ZRem(ctx, dueKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reminders: failed to mark %s sent: %w", id, err)
	}
	return nil
}

func (s *RedisStore) fetch(ctx context.Context, ids []string) ([]Descriptor, error) {
	descriptors := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, reminderKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("reminders: failed to load %s: %w", id, err)
		}
		var d Descriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("reminders: failed to decode %s: %w", id, err)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// Ensure interface compliance
var _ Store = (*RedisStore)(nil)
