package job

import "time"

// Job is a unit of work a client pays a contractor for. Amount is fixed at
// creation. Paid transitions false to true exactly once. The lock columns
// mirror the distributed lock so a crashed holder is visible in the store
// until the lock TTL elapses.
type Job struct {
	ID           string
	ClientID     string
	ContractorID string
	Amount       int64
	Currency     string
	Paid         bool
	PaidAt       *time.Time
	LockHolder   *string
	LockExpiry   *time.Time
	CreatedAt    time.Time
}
