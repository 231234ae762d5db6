package account

import "time"

// Role describes which side of a payout an account may take.
type Role string

const (
	// RoleClient marks an account that funds payouts.
	RoleClient Role = "client"
	// RoleContractor marks an account that receives payouts.
	RoleContractor Role = "contractor"
)

// Account is a balance holder. Balance is stored in minor currency units and
// never goes negative. Version increments by exactly one on every accepted
// mutation and is the basis for the optimistic write protocol.
type Account struct {
	ID        string
	OwnerID   string
	Role      Role
	Currency  string
	Balance   int64
	Version   int64
	CreatedAt time.Time
}
