// Package engine owns a workspace in memory and exposes the operations
// that mutate it. Every mutation applies the ledger change, the phase
// check and the risk recompute before returning.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/ledger"
	"github.com/rustyeddy/edgetracker/phase"
	"github.com/rustyeddy/edgetracker/pkg/id"
	"github.com/rustyeddy/edgetracker/risk"
)

var ErrAccountNotFound = errors.New("account not found")

type Options struct {
	// ReevaluateOnEdit runs the phase check after an edit to a trade in
	// the account's live phase. Off by default.
	ReevaluateOnEdit bool
	// RiskLimits are stamped on every account created by the engine.
	RiskLimits account.RiskLimits

	IDs id.Generator
	Now func() time.Time
	// Logger must be set; pass zerolog.Nop() to discard.
	Logger zerolog.Logger
}

// DefaultOptions uses ULIDs, the wall clock, the default risk limits and
// the global logger.
func DefaultOptions() Options {
	return Options{
		RiskLimits: account.DefaultRiskLimits(),
		IDs:        id.NewULID(),
		Now:        time.Now,
		Logger:     log.Logger,
	}
}

type Engine struct {
	accounts []account.Account
	ledger   *ledger.Ledger
	selected string
	tab      string

	reevaluateOnEdit bool
	limits           account.RiskLimits
	ids              id.Generator
	now              func() time.Time
	log              zerolog.Logger
}

// Result is returned by trade mutations. PhasePassed is nil unless the
// mutation pushed the phase P/L over its target for the first time.
type Result struct {
	Trade       ledger.Trade       `json:"trade"`
	Account     account.Account    `json:"account"`
	PhasePassed *phase.PhasePassed `json:"phasePassed,omitempty"`
	Risk        risk.Status        `json:"risk"`
}

// New builds an engine over a loaded workspace. Zero-valued options fall
// back to DefaultOptions.
func New(ws journal.Workspace, opts Options) *Engine {
	def := DefaultOptions()
	if opts.IDs == nil {
		opts.IDs = def.IDs
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if opts.RiskLimits == (account.RiskLimits{}) {
		opts.RiskLimits = def.RiskLimits
	}

	e := &Engine{
		ledger:           ledger.New(ws.Trades),
		selected:         ws.LastActiveAccountID,
		tab:              ws.LastActiveTab,
		reevaluateOnEdit: opts.ReevaluateOnEdit,
		limits:           opts.RiskLimits,
		ids:              opts.IDs,
		now:              opts.Now,
		log:              opts.Logger.With().Str("component", "engine").Logger(),
	}
	for _, a := range ws.Accounts {
		e.accounts = append(e.accounts, a.Clone())
	}
	return e
}

// ReevaluatesOnEdit reports whether EditTrade runs the phase check.
func (e *Engine) ReevaluatesOnEdit() bool { return e.reevaluateOnEdit }

// CreateAccount validates cfg and adds a fresh step 1 account. The first
// account created becomes the selected one.
func (e *Engine) CreateAccount(cfg account.Config) (account.Account, error) {
	a, err := account.New(e.ids.New(), cfg, e.limits, e.now())
	if err != nil {
		return account.Account{}, fmt.Errorf("create account: %w", err)
	}

	e.accounts = append(e.accounts, a)
	if _, ok := e.find(e.selected); !ok {
		e.selected = a.ID
	}

	e.log.Info().
		Str("account", a.ID).
		Str("name", a.Name).
		Stringer("type", a.Type).
		Float64("starting_balance", a.StartingBalance).
		Msg("account created")
	return a.Clone(), nil
}

// RecordTrade logs a new trade against d.AccountID, falling back to the
// selected account and then the first account.
func (e *Engine) RecordTrade(d ledger.Draft) (Result, error) {
	i, ok := e.resolve(d.AccountID)
	if !ok {
		return Result{}, fmt.Errorf("record trade: %w", ledger.ErrNoActiveAccount)
	}

	now := e.now()
	acct := e.accounts[i].Clone()
	if ledger.RollDay(&acct, now) {
		e.log.Debug().
			Str("account", acct.ID).
			Str("day", acct.LastResetDate).
			Float64("daily_starting_balance", acct.DailyStartingBalance).
			Msg("trading day rolled over")
	}

	t, updated, err := e.ledger.Record(&acct, e.ids.New(), d, now)
	if err != nil {
		return Result{}, fmt.Errorf("record trade: %w", err)
	}

	updated, passed := phase.Check(updated, e.ledger.Trades())
	e.accounts[i] = updated

	e.log.Debug().
		Str("account", updated.ID).
		Str("trade", t.ID).
		Stringer("outcome", t.Outcome).
		Float64("profit", t.ProfitAmount).
		Float64("balance", updated.Balance).
		Int("phase", t.Phase).
		Msg("trade recorded")
	e.logPassed(passed)

	st := e.riskStatus(updated)
	return Result{Trade: t, Account: updated.Clone(), PhasePassed: passed, Risk: st}, nil
}

// EditTrade replaces the fields of trade tradeID. The trade keeps its
// account and phase; the account balance moves by the profit difference.
func (e *Engine) EditTrade(tradeID string, d ledger.Draft) (Result, error) {
	old, err := e.ledger.Get(tradeID)
	if err != nil {
		return Result{}, fmt.Errorf("edit trade: %w", err)
	}
	i, ok := e.find(old.AccountID)
	if !ok {
		return Result{}, fmt.Errorf("edit trade %q: account %q: %w", tradeID, old.AccountID, ErrAccountNotFound)
	}

	t, updated, err := e.ledger.Edit(e.accounts[i].Clone(), tradeID, d, e.now())
	if err != nil {
		return Result{}, fmt.Errorf("edit trade: %w", err)
	}

	var passed *phase.PhasePassed
	if e.reevaluateOnEdit && t.Phase == updated.Stage() {
		updated, passed = phase.Check(updated, e.ledger.Trades())
	}
	e.accounts[i] = updated

	e.log.Debug().
		Str("account", updated.ID).
		Str("trade", t.ID).
		Float64("old_profit", old.ProfitAmount).
		Float64("new_profit", t.ProfitAmount).
		Float64("balance", updated.Balance).
		Msg("trade edited")
	e.logPassed(passed)

	st := e.riskStatus(updated)
	return Result{Trade: t, Account: updated.Clone(), PhasePassed: passed, Risk: st}, nil
}

// AdvancePhase moves the account to its next step, or to funded after
// the last one, and restarts its balance from the starting balance.
func (e *Engine) AdvancePhase(accountID string) (account.Account, error) {
	i, ok := e.find(accountID)
	if !ok {
		return account.Account{}, fmt.Errorf("advance phase %q: %w", accountID, ErrAccountNotFound)
	}

	updated, err := phase.Advance(e.accounts[i].Clone(), e.now())
	if err != nil {
		return account.Account{}, fmt.Errorf("advance phase %q: %w", accountID, err)
	}
	e.accounts[i] = updated

	e.log.Info().
		Str("account", updated.ID).
		Int("step", updated.CurrentStep).
		Bool("funded", updated.IsFunded).
		Msg("phase advanced")
	return updated.Clone(), nil
}

// CurrentRiskStatus evaluates the risk guard for accountID over today's
// trades. An empty id means the selected account.
func (e *Engine) CurrentRiskStatus(accountID string) (risk.Status, error) {
	i, ok := e.find(accountID)
	if accountID == "" {
		i, ok = e.resolve("")
	}
	if !ok {
		return risk.Status{}, fmt.Errorf("risk status %q: %w", accountID, ErrAccountNotFound)
	}
	return risk.EvaluateAccount(e.accounts[i], e.ledger.Trades(), e.now()), nil
}

func (e *Engine) riskStatus(a account.Account) risk.Status {
	st := risk.EvaluateAccount(a, e.ledger.Trades(), e.now())
	if st.Severity != risk.None {
		e.log.Warn().
			Str("account", a.ID).
			Stringer("severity", st.Severity).
			Str("code", st.Code).
			Msg(st.Message)
	}
	return st
}

func (e *Engine) logPassed(p *phase.PhasePassed) {
	if p == nil {
		return
	}
	e.log.Info().
		Str("account", p.AccountID).
		Int("step", p.Step).
		Float64("pnl", p.PnL).
		Float64("target", p.Target).
		Bool("final", p.Final).
		Msg("phase passed")
}

func (e *Engine) find(accountID string) (int, bool) {
	if accountID == "" {
		return 0, false
	}
	for i, a := range e.accounts {
		if a.ID == accountID {
			return i, true
		}
	}
	return 0, false
}

// resolve picks the account a trade goes to: the explicit id, else the
// selected account, else the first one.
func (e *Engine) resolve(accountID string) (int, bool) {
	if accountID != "" {
		return e.find(accountID)
	}
	if i, ok := e.find(e.selected); ok {
		return i, true
	}
	if len(e.accounts) > 0 {
		return 0, true
	}
	return 0, false
}
