package job

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists jobs in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed job store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a job record.
func (s *PostgresStore) Create(ctx context.Context, j Job) error {
	jobID, err := uuid.Parse(j.ID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO jobs (id, client_id, contractor_id, amount, currency, paid, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		jobID, j.ClientID, j.ContractorID, j.Amount, j.Currency, j.Paid, j.CreatedAt.UTC())
	return err
}

// Get fetches a job by identifier.
func (s *PostgresStore) Get(ctx context.Context, id string) (Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return Job{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, client_id, contractor_id, amount, currency, paid, paid_at, lock_holder, lock_expiry, created_at
        FROM jobs WHERE id = $1`, jobID)

	var j Job
	var idVal uuid.UUID
	var createdAt time.Time
	if err := row.Scan(&idVal, &j.ClientID, &j.ContractorID, &j.Amount, &j.Currency, &j.Paid, &j.PaidAt, &j.LockHolder, &j.LockExpiry, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	j.ID = idVal.String()
	j.CreatedAt = createdAt.UTC()
	return j, nil
}

// MarkPaid flips the paid flag, conditional on it being unset.
func (s *PostgresStore) MarkPaid(ctx context.Context, id string, at time.Time) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `UPDATE jobs SET paid = TRUE, paid_at = $2
        WHERE id = $1 AND paid = FALSE`, jobID, at.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyPaid
	}
	return nil
}

// UnmarkPaid reverts the paid flag during compensation.
func (s *PostgresStore) UnmarkPaid(ctx context.Context, id string) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.db.Exec(ctx, `UPDATE jobs SET paid = FALSE, paid_at = NULL WHERE id = $1`, jobID)
	return err
}

// SetLock records the lock holder and expiry on the job row.
func (s *PostgresStore) SetLock(ctx context.Context, id, holder string, expiry time.Time) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.db.Exec(ctx, `UPDATE jobs SET lock_holder = $2, lock_expiry = $3 WHERE id = $1`,
		jobID, holder, expiry.UTC())
	return err
}

// ClearLock removes the recorded lock holder.
func (s *PostgresStore) ClearLock(ctx context.Context, id string) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.db.Exec(ctx, `UPDATE jobs SET lock_holder = NULL, lock_expiry = NULL WHERE id = $1`, jobID)
	return err
}
