package compliance

import "context"

// Check describes one payout leg to validate before any saga starts.
type Check struct {
	Amount       int64
	Jurisdiction string
	Role         string
}

// Result is the oracle's verdict. A non-compliant result is a fail-fast
// precondition: the coordinator reports it without mutating any state.
type Result struct {
	Compliant  bool
	Violations []string
}

// Validator is the compliance oracle consumed by the payout coordinator.
// Jurisdiction rule content is outside the core; the coordinator only
// depends on this contract.
type Validator interface {
	Validate(ctx context.Context, check Check) (Result, error)
}

// AllowAll approves every check. Used in development mode and tests.
type AllowAll struct{}

// Validate always returns a compliant result.
func (AllowAll) Validate(context.Context, Check) (Result, error) {
	return Result{Compliant: true}, nil
}
