package event

import "encoding/json"

// AccountState is the projection of an account's event stream.
type AccountState struct {
	AccountID string
	Balance   int64
	Mutations int
	Version   int64
}

// JobState is the projection of a job's event stream.
type JobState struct {
	JobID   string
	Paid    bool
	Version int64
}

// ReplayAccount folds an account stream into its projected state. Replay is a
// pure function of the events: no store access, no side effects.
func ReplayAccount(accountID string, events []Event) AccountState {
	state := AccountState{AccountID: accountID}
	for _, e := range events {
		var p TransferPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			continue
		}
		switch e.Type {
		case TypeBalanceDebited:
			state.Balance -= p.Amount
			state.Mutations++
		case TypeBalanceCredited:
			state.Balance += p.Amount
			state.Mutations++
		}
		state.Version = e.Version
	}
	return state
}

// ReplayJob folds a job stream into its projected state.
func ReplayJob(jobID string, events []Event) JobState {
	state := JobState{JobID: jobID}
	for _, e := range events {
		switch e.Type {
		case TypeUnitMarkedPaid:
			state.Paid = true
		case TypeTransferCompensated:
			state.Paid = false
		}
		state.Version = e.Version
	}
	return state
}
