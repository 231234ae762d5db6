package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Type enumerates the domain events recorded during a payout attempt.
type Type string

const (
	TypeTransferInitiated   Type = "transfer_initiated"
	TypeBalanceDebited      Type = "balance_debited"
	TypeBalanceCredited     Type = "balance_credited"
	TypeUnitMarkedPaid      Type = "unit_marked_paid"
	TypeTransferCompensated Type = "transfer_compensated"
)

// Aggregate kinds recorded in the log.
const (
	KindAccount = "account"
	KindJob     = "job"
)

// ErrVersionGap indicates an append would break the gap-free per-aggregate
// version sequence, which means a concurrent writer got there first.
var ErrVersionGap = errors.New("event version gap")

// Event is one immutable entry in the append-only log. CorrelationID links
// every event of one payout attempt; CausationID references the event that
// triggered this one.
type Event struct {
	ID            string
	Type          Type
	AggregateKind string
	AggregateID   string
	Version       int64
	Payload       json.RawMessage
	CorrelationID string
	CausationID   string
	RecordedAt    time.Time
}

// Store is the append-only event log. Versions are assigned by the store,
// strictly increasing and gap-free per aggregate. Events are never mutated or
// deleted.
type Store interface {
	Append(ctx context.Context, aggregateKind, aggregateID string, events []Event) error
	Read(ctx context.Context, aggregateID string, fromVersion int64) ([]Event, error)
	ReadByCorrelation(ctx context.Context, correlationID string) ([]Event, error)
}

// TransferPayload is the payload shape shared by payout lifecycle events.
type TransferPayload struct {
	JobID        string `json:"job_id"`
	PayerID      string `json:"payer_id"`
	PayeeID      string `json:"payee_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency,omitempty"`
	Reason       string `json:"reason,omitempty"`
	AfterBalance int64  `json:"after_balance,omitempty"`
	AfterVersion int64  `json:"after_version,omitempty"`
}

// MarshalPayload encodes a payload, panicking only on programmer error since
// TransferPayload cannot fail to marshal.
func MarshalPayload(p TransferPayload) json.RawMessage {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	return raw
}
