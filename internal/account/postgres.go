package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists accounts in PostgreSQL using version-checked writes.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed account store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts an account record.
func (s *PostgresStore) Create(ctx context.Context, acc Account) error {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO accounts (id, owner_id, role, currency, balance, version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		accountID, acc.OwnerID, string(acc.Role), acc.Currency, acc.Balance, acc.Version, acc.CreatedAt.UTC())
	return err
}

// Get fetches an account by identifier.
func (s *PostgresStore) Get(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, owner_id, role, currency, balance, version, created_at
        FROM accounts WHERE id = $1`, accountID)

	var acc Account
	var idVal uuid.UUID
	var role string
	var createdAt time.Time
	if err := row.Scan(&idVal, &acc.OwnerID, &role, &acc.Currency, &acc.Balance, &acc.Version, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	acc.ID = idVal.String()
	acc.Role = Role(role)
	acc.CreatedAt = createdAt.UTC()
	return acc, nil
}

// ApplyDelta performs the conditional balance write. The WHERE clause encodes
// both the version check and the non-negative balance invariant, so a zero
// rows-affected result needs a follow-up read to classify the rejection.
func (s *PostgresStore) ApplyDelta(ctx context.Context, id string, delta int64, expectedVersion int64) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}

	row := s.db.QueryRow(ctx, `UPDATE accounts
        SET balance = balance + $2, version = version + 1
        WHERE id = $1 AND version = $3 AND balance + $2 >= 0
        RETURNING id, owner_id, role, currency, balance, version, created_at`,
		accountID, delta, expectedVersion)

	var acc Account
	var idVal uuid.UUID
	var role string
	var createdAt time.Time
	err = row.Scan(&idVal, &acc.OwnerID, &role, &acc.Currency, &acc.Balance, &acc.Version, &createdAt)
	if err == nil {
		acc.ID = idVal.String()
		acc.Role = Role(role)
		acc.CreatedAt = createdAt.UTC()
		return acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Account{}, err
	}

	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return Account{}, getErr
	}
	if current.Version != expectedVersion {
		return Account{}, ErrVersionConflict
	}
	if current.Balance+delta < 0 {
		return Account{}, ErrInsufficientFunds
	}
	// Version matched and funds were sufficient on the re-read, so the
	// original row moved under us between the two statements.
	return Account{}, ErrVersionConflict
}
