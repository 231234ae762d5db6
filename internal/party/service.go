package party

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/workpay/workpay/internal/account"
)

// ErrInvalidKey indicates the presented API key failed verification.
var ErrInvalidKey = errors.New("invalid api key")

// Service manages party registration and API key verification. Registration
// also provisions the party's account with the role matching its side of the
// payout.
type Service struct {
	repo     Repository
	accounts account.Store
}

// NewService creates a party service.
func NewService(repo Repository, accounts account.Store) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// RegisterInput captures data required to register a party.
type RegisterInput struct {
	Name         string
	Role         string
	Jurisdiction string
	Currency     string
}

// Registration is returned once; the API key is not recoverable afterwards.
type Registration struct {
	Party     Party
	AccountID string
	APIKey    string
}

// Register creates a party, its account, and a one-time API key.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Registration, error) {
	role := account.Role(input.Role)
	if role != account.RoleClient && role != account.RoleContractor {
		return Registration{}, fmt.Errorf("role must be %q or %q", account.RoleClient, account.RoleContractor)
	}
	if strings.TrimSpace(input.Name) == "" {
		return Registration{}, errors.New("name is required")
	}

	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Registration{}, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	p := Party{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Role:         input.Role,
		Jurisdiction: input.Jurisdiction,
		SecretHash:   hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Registration{}, err
	}

	acc := account.Account{
		ID:        uuid.NewString(),
		OwnerID:   p.ID,
		Role:      role,
		Currency:  currency,
		Balance:   0,
		Version:   0,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return Registration{}, err
	}

	return Registration{
		Party:     p,
		AccountID: acc.ID,
		APIKey:    p.ID + "." + secret,
	}, nil
}

// Authenticate verifies an API key of the form "<party id>.<secret>".
func (s *Service) Authenticate(ctx context.Context, apiKey string) (Party, error) {
	id, secret, ok := strings.Cut(apiKey, ".")
	if !ok {
		return Party{}, ErrInvalidKey
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Party{}, ErrInvalidKey
	}
	if err := bcrypt.CompareHashAndPassword(p.SecretHash, []byte(secret)); err != nil {
		return Party{}, ErrInvalidKey
	}
	return p, nil
}
