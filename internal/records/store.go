package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store appends records to named collections and reads them back. Append
// creates the collection when it does not exist.
type Store interface {
	Append(ctx context.Context, collection string, rec Record) error
	List(ctx context.Context, collection string) ([]Record, error)
}

// RedisStore keeps each collection as a list of JSON records.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed record store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("records: redis client cannot be nil")
	}
	return &RedisStore{client: client}
}

func collectionKey(collection string) string {
	return fmt.Sprintf("records:%s", collection)
}

// Append pushes the record onto the collection's list.
func (s *RedisStore) Append(ctx context.Context, collection string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("records: failed to marshal %s: %w", rec.AppointmentID, err)
	}
	if err := s.client.RPush(ctx, collectionKey(collection), data).Err(); err != nil {
		return fmt.Errorf("records: failed to append to %s: %w", collection, err)
	}
	return nil
}

// List returns the collection's records in insertion order.
func (s *RedisStore) List(ctx context.Context, collection string) ([]Record, error) {
	raw, err := s.client.LRange(ctx, collectionKey(collection), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("records: failed to read %s: %w", collection, err)
	}

	recs := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("records: failed to decode record in %s: %w", collection, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Ensure interface compliance
var _ Store = (*RedisStore)(nil)
