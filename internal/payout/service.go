package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workpay/workpay/internal/account"
	"github.com/workpay/workpay/internal/compliance"
	"github.com/workpay/workpay/internal/event"
	"github.com/workpay/workpay/internal/job"
	"github.com/workpay/workpay/internal/lock"
	"github.com/workpay/workpay/internal/notification"
	"github.com/workpay/workpay/internal/rates"
	"github.com/workpay/workpay/internal/saga"
)

// Outcome classifies the result of one payout attempt for the caller.
type Outcome string

const (
	// OutcomeSucceeded means the full pipeline completed.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeRejected means a fail-fast precondition failed before any saga
	// step ran; no state was touched.
	OutcomeRejected Outcome = "failed_precondition"
	// OutcomeContended means the job lock was held elsewhere. Transient;
	// nothing executed, the caller may retry later.
	OutcomeContended Outcome = "contended"
	// OutcomeRolledBack means a saga step failed and completed steps were
	// compensated.
	OutcomeRolledBack Outcome = "failed_rolled_back"
)

// PayRequest identifies one payout: which job, which accounts, how much.
type PayRequest struct {
	JobID               string
	ClientAccountID     string
	ContractorAccountID string
	Amount              int64
	Jurisdiction        string
}

// Result is the structured answer callers get. Reason is set for every
// non-succeeded outcome; callers never see raw driver errors.
type Result struct {
	Outcome       Outcome
	CorrelationID string
	Reason        string
	SagaStatus    saga.Status
}

// Coordinator wires the lock service, the optimistic account mutator, the job
// store and the event log into the end-to-end "pay a job" operation. All
// dependencies arrive through the constructor; there is no framework
// container.
type Coordinator struct {
	accounts  account.Store
	mutator   *account.Mutator
	jobs      job.Store
	locks     lock.Locker
	events    event.Store
	converter rates.Converter
	validator compliance.Validator
	notifier  notification.Notifier
	logger    *slog.Logger
	lockTTL   time.Duration
}

// NewCoordinator constructs a payout coordinator.
func NewCoordinator(
	accounts account.Store,
	mutator *account.Mutator,
	jobs job.Store,
	locks lock.Locker,
	events event.Store,
	converter rates.Converter,
	validator compliance.Validator,
	notifier notification.Notifier,
	logger *slog.Logger,
	lockTTL time.Duration,
) *Coordinator {
	return &Coordinator{
		accounts:  accounts,
		mutator:   mutator,
		jobs:      jobs,
		locks:     locks,
		events:    events,
		converter: converter,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
		lockTTL:   lockTTL,
	}
}

// PayJob runs one payout attempt. Preconditions are checked fail-fast before
// the saga starts since they mutate nothing and need no compensation. The
// returned error is reserved for infrastructure faults during those checks;
// every outcome of the saga itself is reported through Result.
func (c *Coordinator) PayJob(ctx context.Context, req PayRequest) (Result, error) {
	correlationID := uuid.NewString()
	log := c.logger.With("correlation_id", correlationID, "job_id", req.JobID)

	j, payee, rejection, err := c.checkPreconditions(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if rejection != "" {
		log.Info("payout rejected", "reason", rejection)
		return Result{Outcome: OutcomeRejected, CorrelationID: correlationID, Reason: rejection}, nil
	}

	pipeline := c.buildPipeline(req, j, payee, correlationID, log)
	tx := saga.New(pipeline.steps)
	log.Info("payout started", "saga_id", tx.ID, "amount", req.Amount)

	res := tx.Run(ctx, log)

	// The lock is released on every exit path, not only via the saga's
	// compensation walk. Releasing twice is harmless: the token only
	// matches once.
	if pipeline.lockToken != "" {
		if err := c.locks.Release(ctx, req.JobID, pipeline.lockToken); err != nil {
			log.Error("lock release failed", "error", err)
		}
		if err := c.jobs.ClearLock(ctx, req.JobID); err != nil {
			log.Warn("clear lock record failed", "error", err)
		}
	}

	switch res.Status {
	case saga.StatusCompleted:
		log.Info("payout completed", "saga_id", tx.ID)
		c.notify(ctx, notification.KindPayoutCompleted, correlationID,
			fmt.Sprintf("job %s paid: %d to %s", req.JobID, req.Amount, req.ContractorAccountID))
		return Result{Outcome: OutcomeSucceeded, CorrelationID: correlationID, SagaStatus: res.Status}, nil

	default:
		if errors.Is(res.Err, lock.ErrNotAcquired) {
			log.Info("payout contended")
			return Result{
				Outcome:       OutcomeContended,
				CorrelationID: correlationID,
				Reason:        "job is being paid elsewhere, retry later",
				SagaStatus:    res.Status,
			}, nil
		}

		c.recordCompensation(ctx, req, correlationID, res, log)
		return Result{
			Outcome:       OutcomeRolledBack,
			CorrelationID: correlationID,
			Reason:        failureReason(res),
			SagaStatus:    res.Status,
		}, nil
	}
}

// checkPreconditions validates the request without mutating anything. A
// non-empty rejection string means the attempt must not start. On success it
// returns the job and the payee account, which later steps need for the
// currency conversion.
func (c *Coordinator) checkPreconditions(ctx context.Context, req PayRequest) (job.Job, account.Account, string, error) {
	var none account.Account

	if req.Amount <= 0 {
		return job.Job{}, none, "amount must be positive", nil
	}

	j, err := c.jobs.Get(ctx, req.JobID)
	if errors.Is(err, job.ErrNotFound) {
		return job.Job{}, none, "job not found", nil
	}
	if err != nil {
		return job.Job{}, none, "", fmt.Errorf("load job: %w", err)
	}
	if j.Paid {
		return job.Job{}, none, "job already paid", nil
	}
	if j.Amount != req.Amount {
		return job.Job{}, none, "amount does not match job", nil
	}

	payer, err := c.accounts.Get(ctx, req.ClientAccountID)
	if errors.Is(err, account.ErrNotFound) {
		return job.Job{}, none, "payer account not found", nil
	}
	if err != nil {
		return job.Job{}, none, "", fmt.Errorf("load payer: %w", err)
	}
	if payer.Role != account.RoleClient {
		return job.Job{}, none, "payer account is not a client account", nil
	}

	payee, err := c.accounts.Get(ctx, req.ContractorAccountID)
	if errors.Is(err, account.ErrNotFound) {
		return job.Job{}, none, "payee account not found", nil
	}
	if err != nil {
		return job.Job{}, none, "", fmt.Errorf("load payee: %w", err)
	}
	if payee.Role != account.RoleContractor {
		return job.Job{}, none, "payee account is not a contractor account", nil
	}

	if payer.Balance < req.Amount {
		return job.Job{}, none, "insufficient funds", nil
	}

	verdict, err := c.validator.Validate(ctx, compliance.Check{
		Amount:       req.Amount,
		Jurisdiction: req.Jurisdiction,
		Role:         string(payer.Role),
	})
	if err != nil {
		return job.Job{}, none, "", fmt.Errorf("compliance check: %w", err)
	}
	if !verdict.Compliant {
		return job.Job{}, none, "not compliant: " + joinViolations(verdict.Violations), nil
	}

	return j, payee, "", nil
}

// pipelineState carries the values produced by earlier steps that later
// steps and compensations need.
type pipelineState struct {
	steps     []saga.Step
	lockToken string
}

func (c *Coordinator) buildPipeline(req PayRequest, j job.Job, payee account.Account, correlationID string, log *slog.Logger) *pipelineState {
	state := &pipelineState{}

	var (
		debited    account.Account
		credited   account.Account
		conversion rates.Conversion
	)

	state.steps = []saga.Step{
		{
			Name: "acquire_job_lock",
			Execute: func(ctx context.Context) error {
				token, err := c.locks.Acquire(ctx, req.JobID, c.lockTTL)
				if err != nil {
					if errors.Is(err, lock.ErrNotAcquired) {
						log.Info("lock refused")
					}
					return err
				}
				state.lockToken = token
				log.Info("lock acquired", "token", token)
				if err := c.jobs.SetLock(ctx, req.JobID, token, time.Now().UTC().Add(c.lockTTL)); err != nil {
					log.Warn("record lock holder failed", "error", err)
				}
				return nil
			},
			// The coordinator releases unconditionally after the saga, so
			// the compensation here only has to exist for completeness.
			Compensate: func(ctx context.Context) error {
				return c.locks.Release(ctx, req.JobID, state.lockToken)
			},
		},
		{
			Name: "verify_payer_balance",
			Execute: func(ctx context.Context) error {
				current, err := c.accounts.Get(ctx, req.ClientAccountID)
				if err != nil {
					return err
				}
				if current.Balance < req.Amount {
					return account.ErrInsufficientFunds
				}
				return nil
			},
			// Nothing was mutated; nothing to undo.
		},
		{
			Name: "debit_payer",
			Execute: func(ctx context.Context) error {
				acc, err := c.mutator.UpdateWithRetry(ctx, req.ClientAccountID, -req.Amount)
				if err != nil {
					return err
				}
				debited = acc
				log.Info("payer debited", "account_id", acc.ID, "balance", acc.Balance, "version", acc.Version)
				return nil
			},
			Compensate: func(ctx context.Context) error {
				_, err := c.mutator.UpdateWithRetry(ctx, req.ClientAccountID, req.Amount)
				return err
			},
		},
		{
			Name: "credit_payee",
			Execute: func(ctx context.Context) error {
				conv, err := c.converter.Convert(ctx, req.Amount, j.Currency, payee.Currency)
				if err != nil {
					return fmt.Errorf("convert amount: %w", err)
				}
				conversion = conv
				acc, err := c.mutator.UpdateWithRetry(ctx, req.ContractorAccountID, conv.Amount)
				if err != nil {
					return err
				}
				credited = acc
				log.Info("payee credited", "account_id", acc.ID, "balance", acc.Balance, "version", acc.Version)
				return nil
			},
			Compensate: func(ctx context.Context) error {
				_, err := c.mutator.UpdateWithRetry(ctx, req.ContractorAccountID, -conversion.Amount)
				return err
			},
		},
		{
			Name: "mark_job_paid",
			Execute: func(ctx context.Context) error {
				return c.jobs.MarkPaid(ctx, req.JobID, time.Now().UTC())
			},
			Compensate: func(ctx context.Context) error {
				return c.jobs.UnmarkPaid(ctx, req.JobID)
			},
		},
		{
			Name: "append_domain_events",
			Execute: func(ctx context.Context) error {
				return c.appendAttemptEvents(ctx, req, correlationID, debited, credited, conversion)
			},
			// The log is append-only; the rollback record is the
			// transfer_compensated event the coordinator appends itself.
		},
	}

	return state
}

// appendAttemptEvents records the attempt's event trail: the initiating event
// on the job stream, debit and credit on the account streams, and the paid
// marker on the job stream. Causation links each event to the one before it.
func (c *Coordinator) appendAttemptEvents(ctx context.Context, req PayRequest, correlationID string, debited, credited account.Account, conversion rates.Conversion) error {
	initiated := event.Event{
		ID:   uuid.NewString(),
		Type: event.TypeTransferInitiated,
		Payload: event.MarshalPayload(event.TransferPayload{
			JobID:   req.JobID,
			PayerID: req.ClientAccountID,
			PayeeID: req.ContractorAccountID,
			Amount:  req.Amount,
		}),
		CorrelationID: correlationID,
	}
	debitEvent := event.Event{
		ID:   uuid.NewString(),
		Type: event.TypeBalanceDebited,
		Payload: event.MarshalPayload(event.TransferPayload{
			JobID:        req.JobID,
			PayerID:      req.ClientAccountID,
			Amount:       req.Amount,
			AfterBalance: debited.Balance,
			AfterVersion: debited.Version,
		}),
		CorrelationID: correlationID,
		CausationID:   initiated.ID,
	}
	creditEvent := event.Event{
		ID:   uuid.NewString(),
		Type: event.TypeBalanceCredited,
		Payload: event.MarshalPayload(event.TransferPayload{
			JobID:        req.JobID,
			PayeeID:      req.ContractorAccountID,
			Amount:       conversion.Amount,
			AfterBalance: credited.Balance,
			AfterVersion: credited.Version,
		}),
		CorrelationID: correlationID,
		CausationID:   debitEvent.ID,
	}
	paidEvent := event.Event{
		ID:   uuid.NewString(),
		Type: event.TypeUnitMarkedPaid,
		Payload: event.MarshalPayload(event.TransferPayload{
			JobID:  req.JobID,
			Amount: req.Amount,
		}),
		CorrelationID: correlationID,
		CausationID:   creditEvent.ID,
	}

	if err := c.events.Append(ctx, event.KindJob, req.JobID, []event.Event{initiated, paidEvent}); err != nil {
		return fmt.Errorf("append job events: %w", err)
	}
	if err := c.events.Append(ctx, event.KindAccount, req.ClientAccountID, []event.Event{debitEvent}); err != nil {
		return fmt.Errorf("append payer events: %w", err)
	}
	if err := c.events.Append(ctx, event.KindAccount, req.ContractorAccountID, []event.Event{creditEvent}); err != nil {
		return fmt.Errorf("append payee events: %w", err)
	}
	return nil
}

// recordCompensation appends the transfer_compensated audit event and pushes
// residual compensation failures to the reconciliation channel. Compensation
// failures are terminal here: the saga stays compensated, nothing re-throws.
func (c *Coordinator) recordCompensation(ctx context.Context, req PayRequest, correlationID string, res saga.Result, log *slog.Logger) {
	compensated := event.Event{
		Type: event.TypeTransferCompensated,
		Payload: event.MarshalPayload(event.TransferPayload{
			JobID:   req.JobID,
			PayerID: req.ClientAccountID,
			PayeeID: req.ContractorAccountID,
			Amount:  req.Amount,
			Reason:  failureReason(res),
		}),
		CorrelationID: correlationID,
	}
	if err := c.events.Append(ctx, event.KindJob, req.JobID, []event.Event{compensated}); err != nil {
		log.Error("append compensation event failed", "error", err)
	}

	log.Warn("payout rolled back", "saga_id", res.TransactionID, "failed_step", res.FailedStep, "error", res.Err)

	if len(res.CompensationErrs) > 0 {
		for _, compErr := range res.CompensationErrs {
			log.Error("compensation left residual state", "step", compErr.Step, "error", compErr.Err)
		}
		c.notify(ctx, notification.KindReconciliationNeeded, correlationID,
			fmt.Sprintf("job %s: %d compensation(s) failed, manual reconciliation required", req.JobID, len(res.CompensationErrs)))
	}
}

func (c *Coordinator) notify(ctx context.Context, kind, correlationID, body string) {
	if c.notifier == nil {
		return
	}
	_ = c.notifier.Send(ctx, notification.Message{Kind: kind, CorrelationID: correlationID, Body: body})
}

func failureReason(res saga.Result) string {
	if res.Err == nil {
		return "payout failed"
	}
	return fmt.Sprintf("step %s failed: %v", res.FailedStep, res.Err)
}

func joinViolations(violations []string) string {
	out := ""
	for i, v := range violations {
		if i > 0 {
			out += "; "
		}
		out += v
	}
	return out
}
