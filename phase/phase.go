// Package phase decides when an evaluation step has been passed and moves
// accounts through their steps to the funded stage.
package phase

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/ledger"
)

var (
	ErrAlreadyFunded = errors.New("account is already funded")
	ErrNoStepConfig  = errors.New("no step configuration")
)

// PhasePassed is emitted the first time an account's phase P/L reaches
// the profit target of its current step.
type PhasePassed struct {
	AccountID string  `json:"accountId"`
	Step      int     `json:"step"`
	PnL       float64 `json:"pnl"`
	Target    float64 `json:"target"`
	// Final is set when passing Step completes the evaluation.
	Final bool `json:"final"`
}

// Progress describes how far the current step is from its target.
type Progress struct {
	Step   int
	PnL    float64
	Target float64
}

func (p Progress) Reached() bool { return p.PnL >= p.Target }

// Measure sums the P/L of the account's trades in its current stage.
func Measure(acct account.Account, trades []ledger.Trade) (Progress, error) {
	if acct.IsFunded {
		return Progress{}, ErrAlreadyFunded
	}
	if !acct.HasStep(acct.CurrentStep) {
		return Progress{}, fmt.Errorf("step %d: %w", acct.CurrentStep, ErrNoStepConfig)
	}
	return Progress{
		Step:   acct.CurrentStep,
		PnL:    ledger.Sum(ledger.InPhase(trades, acct.ID, acct.Stage())),
		Target: acct.ProfitTargetAmount(acct.CurrentStep),
	}, nil
}

// Check runs pass detection after a ledger mutation. When the target is
// reached and the step has not fired before, it marks the step as passed
// and returns the event. Otherwise acct is returned unchanged and the
// event is nil.
func Check(acct account.Account, trades []ledger.Trade) (account.Account, *PhasePassed) {
	p, err := Measure(acct, trades)
	if err != nil {
		return acct, nil
	}
	if !p.Reached() || acct.LastPassedStep >= acct.CurrentStep {
		return acct, nil
	}

	acct.LastPassedStep = acct.CurrentStep
	return acct, &PhasePassed{
		AccountID: acct.ID,
		Step:      p.Step,
		PnL:       p.PnL,
		Target:    p.Target,
		Final:     acct.Type.IsFinalStep(acct.CurrentStep),
	}
}

// Advance moves acct to its next step, or to funded when no next step is
// configured. Every phase restarts from the starting balance.
func Advance(acct account.Account, now time.Time) (account.Account, error) {
	if acct.IsFunded {
		return acct, ErrAlreadyFunded
	}

	next := acct.CurrentStep + 1
	if next <= 3 && acct.HasStep(next) {
		acct.CurrentStep = next
	} else {
		acct.IsFunded = true
	}

	acct.Balance = acct.StartingBalance
	acct.DailyStartingBalance = acct.StartingBalance
	acct.LastResetDate = account.Day(now)
	return acct, nil
}
