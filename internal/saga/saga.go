// Package saga sequences a pipeline of steps with compensating actions,
// approximating atomicity across independently mutable resources. A failed
// step triggers a best-effort reverse compensation walk; compensation
// failures are recorded, never re-thrown.
package saga

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Status tracks a transaction through its lifecycle. Terminal states are
// StatusCompleted and StatusCompensated.
type Status string

const (
	StatusPending     Status = "pending"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCompensated Status = "compensated"
)

// Step pairs an execute action with the action that semantically undoes it.
// Compensate may be nil for steps that mutate nothing. Compensations are
// best-effort: they are not assumed idempotent or retry-safe.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// CompensationError records one failed compensation in the walk.
type CompensationError struct {
	Step string
	Err  error
}

func (e CompensationError) Error() string {
	return fmt.Sprintf("compensate %s: %v", e.Step, e.Err)
}

// Transaction is one saga attempt. It lives only for the duration of the
// attempt; the event log is the durable record.
type Transaction struct {
	ID          string
	Steps       []Step
	CurrentStep int
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Result reports the terminal outcome of a run.
type Result struct {
	TransactionID    string
	Status           Status
	FailedStep       string
	Err              error
	CompensationErrs []CompensationError
}

// New creates a pending transaction over the given steps.
func New(steps []Step) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:        uuid.NewString(),
		Steps:     steps,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Run executes the steps in order. On the first failure it compensates the
// previously completed steps in reverse order and lands on
// StatusCompensated regardless of whether individual compensations
// succeeded. Once a step's Execute begins it runs to completion or failure;
// only the unstarted remainder of the pipeline is skipped.
func (t *Transaction) Run(ctx context.Context, logger *slog.Logger) Result {
	t.transition(StatusInProgress)

	for i, step := range t.Steps {
		t.CurrentStep = i
		if err := step.Execute(ctx); err != nil {
			logger.Warn("saga step failed",
				"saga_id", t.ID, "step", step.Name, "error", err)
			t.transition(StatusFailed)

			compErrs := t.compensate(ctx, i-1, logger)
			t.transition(StatusCompensated)
			return Result{
				TransactionID:    t.ID,
				Status:           StatusCompensated,
				FailedStep:       step.Name,
				Err:              err,
				CompensationErrs: compErrs,
			}
		}
		t.CurrentStep = i + 1
	}

	t.transition(StatusCompleted)
	return Result{TransactionID: t.ID, Status: StatusCompleted}
}

// compensate walks completed steps from `from` down to zero. Failures are
// collected and logged but never halt the walk.
func (t *Transaction) compensate(ctx context.Context, from int, logger *slog.Logger) []CompensationError {
	var errs []CompensationError
	for i := from; i >= 0; i-- {
		step := t.Steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			logger.Error("saga compensation failed",
				"saga_id", t.ID, "step", step.Name, "error", err)
			errs = append(errs, CompensationError{Step: step.Name, Err: err})
		}
	}
	return errs
}

func (t *Transaction) transition(status Status) {
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
}
