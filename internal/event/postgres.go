package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists events in PostgreSQL. A unique index on
// (aggregate_id, version) guarantees the per-aggregate sequence stays
// gap-free even with concurrent appenders.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed event store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append assigns versions following the aggregate's current head and inserts
// all events in one transaction.
func (s *PostgresStore) Append(ctx context.Context, aggregateKind, aggregateID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var head int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1`,
		aggregateID).Scan(&head); err != nil {
		return err
	}

	now := time.Now().UTC()
	for i, e := range events {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		recordedAt := e.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = now
		}
		_, err := tx.Exec(ctx, `INSERT INTO events
            (id, type, aggregate_kind, aggregate_id, version, payload, correlation_id, causation_id, recorded_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, string(e.Type), aggregateKind, aggregateID, head+int64(i)+1,
			e.Payload, e.CorrelationID, nullable(e.CausationID), recordedAt.UTC())
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrVersionGap
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

// Read returns the aggregate's events with version greater than fromVersion,
// in version order.
func (s *PostgresStore) Read(ctx context.Context, aggregateID string, fromVersion int64) ([]Event, error) {
	rows, err := s.db.Query(ctx, `SELECT id, type, aggregate_kind, aggregate_id, version, payload, correlation_id, causation_id, recorded_at
        FROM events WHERE aggregate_id = $1 AND version > $2 ORDER BY version`, aggregateID, fromVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReadByCorrelation returns every event recorded for one payout attempt, in
// recording order.
func (s *PostgresStore) ReadByCorrelation(ctx context.Context, correlationID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `SELECT id, type, aggregate_kind, aggregate_id, version, payload, correlation_id, causation_id, recorded_at
        FROM events WHERE correlation_id = $1 ORDER BY recorded_at, version`, correlationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var eventType, kind string
		var causation *string
		var recordedAt time.Time
		if err := rows.Scan(&e.ID, &eventType, &kind, &e.AggregateID, &e.Version, &e.Payload, &e.CorrelationID, &causation, &recordedAt); err != nil {
			return nil, err
		}
		e.Type = Type(eventType)
		e.AggregateKind = kind
		if causation != nil {
			e.CausationID = *causation
		}
		e.RecordedAt = recordedAt.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
