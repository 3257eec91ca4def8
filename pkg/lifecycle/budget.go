// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

// BudgetMode selects how a stabilization budget is counted.
type BudgetMode string

const (
	// BudgetAttempts counts remaining poll turns.
	BudgetAttempts BudgetMode = "attempts"
	// BudgetTimeout counts remaining seconds of stabilization wall clock.
	BudgetTimeout BudgetMode = "timeout"
)

// BudgetPolicy is the per-resource stabilization configuration.
type BudgetPolicy struct {
	Mode BudgetMode
	// Limit is the initial number of attempts, or seconds for BudgetTimeout.
	Limit int
	// InitialDelay is the delay requested after the mutating call, in seconds.
	InitialDelay int
	// PollDelay is the fixed callback delay between polls, in seconds.
	PollDelay int
}

// Start returns the budget for a freshly initiated operation.
func (p BudgetPolicy) Start() Budget {
	mode := p.Mode
	if mode == "" {
		mode = BudgetAttempts
	}
	return Budget{Mode: mode, Remaining: p.Limit, Delay: p.PollDelay}
}

// Budget bounds the number of poll turns. It is a value: Next returns a new
// budget and never modifies the receiver.
type Budget struct {
	Mode BudgetMode `json:"mode"`
	// Remaining is remainingAttempts or remainingTimeoutSeconds depending on Mode.
	Remaining int `json:"remaining"`
	// Delay is the fixed callback delay in seconds.
	Delay int `json:"delay"`
}

// Next computes the budget after one more non-terminal poll and the delay to
// request before that poll. exhausted is true when no poll may be scheduled;
// the returned budget and delay are then meaningless.
//
// Attempt-counted: next = remaining-1, exhausted when next <= 0.
// Time-bounded: exhausted when remaining <= 0, otherwise
// delay = min(remaining, Delay) and next = remaining-delay, so the last poll
// lands exactly on the end of the budget.
func (b Budget) Next() (next Budget, delay int, exhausted bool) {
	next = b
	switch b.Mode {
	case BudgetTimeout:
		if b.Remaining <= 0 {
			return b, 0, true
		}
		delay = b.Delay
		if b.Remaining < delay {
			delay = b.Remaining
		}
		if delay <= 0 {
			// A zero fixed delay would never drain the budget.
			delay = b.Remaining
		}
		next.Remaining = b.Remaining - delay
		return next, delay, false
	default:
		next.Remaining = b.Remaining - 1
		if next.Remaining <= 0 {
			return next, 0, true
		}
		return next, b.Delay, false
	}
}
