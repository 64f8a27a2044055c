package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore persists records as JSONB rows keyed by collection name.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("records: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB allows injecting mocks for tests.
func NewPostgresStoreWithDB(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertRecordSQL = `INSERT INTO appointment_records (collection, appointment_id, payload, created_at)
VALUES ($1, $2, $3, $4)`

const listRecordsSQL = `SELECT payload FROM appointment_records WHERE collection = $1 ORDER BY id`

// Append inserts the record into the collection.
func (s *PostgresStore) Append(ctx context.Context, collection string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("records: failed to marshal %s: %w", rec.AppointmentID, err)
	}
	if _, err := s.db.Exec(ctx, insertRecordSQL, collection, rec.AppointmentID, payload, rec.CreatedAt); err != nil {
		return fmt.Errorf("records: failed to append to %s: %w", collection, err)
	}
	return nil
}

// List returns the collection's records in insertion order.
func (s *PostgresStore) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.Query(ctx, listRecordsSQL, collection)
	if err != nil {
		return nil, fmt.Errorf("records: failed to read %s: %w", collection, err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("records: failed to scan record in %s: %w", collection, err)
		}
		var rec Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("records: failed to decode record in %s: %w", collection, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: failed to read %s: %w", collection, err)
	}
	return recs, nil
}

// Ensure interface compliance
var _ Store = (*PostgresStore)(nil)
