package party

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the party does not exist.
var ErrNotFound = errors.New("party not found")

// Repository persists party records.
type Repository interface {
	Create(ctx context.Context, p Party) error
	FindByID(ctx context.Context, id string) (Party, error)
}

// PostgresRepository stores parties in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a party record.
func (r *PostgresRepository) Create(ctx context.Context, p Party) error {
	partyID, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO parties (id, name, role, jurisdiction, secret_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		partyID, p.Name, p.Role, p.Jurisdiction, p.SecretHash, p.CreatedAt.UTC())
	return err
}

// FindByID fetches a party by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Party, error) {
	partyID, err := uuid.Parse(id)
	if err != nil {
		return Party{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, role, jurisdiction, secret_hash, created_at
        FROM parties WHERE id = $1`, partyID)

	var p Party
	var idVal uuid.UUID
	var createdAt time.Time
	if err := row.Scan(&idVal, &p.Name, &p.Role, &p.Jurisdiction, &p.SecretHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Party{}, ErrNotFound
		}
		return Party{}, err
	}
	p.ID = idVal.String()
	p.CreatedAt = createdAt.UTC()
	return p, nil
}
