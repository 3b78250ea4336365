// Package report derives read-only views of a workspace: the phase
// dashboard, the strategy matrix and the P/L calendar.
package report

import (
	"math"
	"time"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/ledger"
	"gonum.org/v1/gonum/stat"
)

// Fallbacks used when an account does not configure the value.
const (
	defaultProfitTarget  = 10.0
	defaultDailyDrawdown = 5.0
	defaultMaxDrawdown   = 10.0
)

// Point is one step of an equity curve.
type Point struct {
	Date    time.Time `json:"date"`
	TradeID string    `json:"tradeId,omitempty"`
	Balance float64   `json:"balance"`
}

// Summary is the dashboard view of one account phase.
type Summary struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	Phase       int    `json:"phase"`

	Trades     int     `json:"trades"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	BreakEvens int     `json:"breakEvens"`
	WinRate    float64 `json:"winRate"`
	AvgWin     float64 `json:"avgWin"`
	AvgLoss    float64 `json:"avgLoss"`

	PnL             float64 `json:"pnl"`
	TodayPnL        float64 `json:"todayPnl"`
	ProfitTarget    float64 `json:"profitTarget"`
	MaxDailyLoss    float64 `json:"maxDailyLoss"`
	MaxDrawdown     float64 `json:"maxDrawdown"`
	CurrentDrawdown float64 `json:"currentDrawdown"`
	// Progress is the share of the profit target reached, 0..100.
	Progress float64 `json:"progress"`

	IsCurrent  bool    `json:"isCurrent"`
	CanAdvance bool    `json:"canAdvance"`
	Equity     []Point `json:"equity"`
}

// Summarize builds the dashboard for phase of acct. A phase of 0 means
// the account's current stage.
func Summarize(acct account.Account, trades []ledger.Trade, phase int, now time.Time) Summary {
	if phase == 0 {
		phase = acct.Stage()
	}
	inPhase := ledger.InPhase(trades, acct.ID, phase)

	s := Summary{
		AccountID:   acct.ID,
		AccountName: acct.Name,
		Phase:       phase,
		Trades:      len(inPhase),
		PnL:         ledger.Sum(inPhase),
		TodayPnL:    ledger.Sum(ledger.OnDay(inPhase, acct.ID, account.Day(now))),
	}

	var wins, losses []float64
	for _, t := range inPhase {
		switch t.Outcome {
		case ledger.Win:
			s.Wins++
			wins = append(wins, t.ProfitAmount)
		case ledger.Loss:
			s.Losses++
			losses = append(losses, t.ProfitAmount)
		case ledger.BreakEven:
			s.BreakEvens++
		case ledger.Pending:
		}
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	if len(wins) > 0 {
		s.AvgWin = stat.Mean(wins, nil)
	}
	if len(losses) > 0 {
		s.AvgLoss = stat.Mean(losses, nil)
	}

	cfg := phaseConfig(acct, phase)
	s.ProfitTarget = acct.StartingBalance * orDefault(cfg.ProfitTarget, defaultProfitTarget) / 100
	s.MaxDailyLoss = acct.DailyStartingBalance * orDefault(cfg.DailyDrawdownLimit, defaultDailyDrawdown) / 100
	s.MaxDrawdown = acct.StartingBalance * orDefault(acct.MaxDrawdownPercent, defaultMaxDrawdown) / 100
	s.CurrentDrawdown = math.Abs(math.Min(0, s.PnL))
	if s.ProfitTarget > 0 {
		s.Progress = math.Min(100, math.Max(0, s.PnL/s.ProfitTarget*100))
	}

	s.IsCurrent = phase == acct.Stage()
	s.CanAdvance = s.IsCurrent && !acct.IsFunded && s.PnL >= s.ProfitTarget

	s.Equity = make([]Point, 0, len(inPhase)+1)
	bal := acct.StartingBalance
	s.Equity = append(s.Equity, Point{Balance: bal})
	for _, t := range inPhase {
		bal += t.ProfitAmount
		s.Equity = append(s.Equity, Point{Date: t.Date, TradeID: t.ID, Balance: bal})
	}
	return s
}

// phaseConfig returns the step targets that apply to phase. Funded
// trading keeps the limits of the final step.
func phaseConfig(acct account.Account, phase int) account.StepConfig {
	if phase == account.Funded {
		for step := 3; step >= 1; step-- {
			if c := acct.StepConfig(step); c != nil {
				return *c
			}
		}
	}
	if c := acct.StepConfig(phase); c != nil {
		return *c
	}
	return account.StepConfig{}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
