package risk

import (
	"fmt"
	"time"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/ledger"
)

// Severity of the current risk guard alert.
type Severity int

const (
	None Severity = iota
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case None:
		return "none"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	}
	return "unknown"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*s = None
	case "warning":
		*s = Warning
	case "critical":
		*s = Critical
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// Alert codes.
const (
	CodeTradeLimit = "DAILY_TRADE_LIMIT"
	CodeLossLimit  = "DAILY_LOSS_LIMIT"
	CodeLossStreak = "LOSS_STREAK"
)

// Status is the single alert the guard reports for an account's day.
type Status struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message"`

	TradesToday int `json:"tradesToday"`
	LossesToday int `json:"lossesToday"`
	Streak      int `json:"streak"`
}

// Locked reports whether the trader should stop executing for the day.
func (s Status) Locked() bool { return s.Severity == Critical }

// LossStreak counts losses walking back from the most recent trade. Only
// a win ends the streak; break-even and pending trades are skipped.
func LossStreak(trades []ledger.Trade) int {
	streak := 0
	for i := len(trades) - 1; i >= 0; i-- {
		switch trades[i].Outcome {
		case ledger.Loss:
			streak++
		case ledger.Win:
			return streak
		case ledger.BreakEven, ledger.Pending:
		}
	}
	return streak
}

// Evaluate classifies one day of trades, given in record order, against
// limits. Checks run in priority order and the first match wins. A limit
// of zero or less disables its check.
func Evaluate(limits account.RiskLimits, today []ledger.Trade) Status {
	st := Status{
		TradesToday: len(today),
		Streak:      LossStreak(today),
	}
	for _, t := range today {
		if t.Outcome == ledger.Loss {
			st.LossesToday++
		}
	}

	switch {
	case limits.MaxTradesPerDay > 0 && st.TradesToday >= limits.MaxTradesPerDay:
		st.Severity = Critical
		st.Code = CodeTradeLimit
		st.Message = fmt.Sprintf("Daily Trade Limit (%d) reached. Execution locked.", limits.MaxTradesPerDay)
	case limits.MaxLossesPerDay > 0 && st.LossesToday >= limits.MaxLossesPerDay:
		st.Severity = Critical
		st.Code = CodeLossLimit
		st.Message = fmt.Sprintf("Daily Loss Limit (%d) reached. Risk Guard active.", limits.MaxLossesPerDay)
	case limits.MaxConsecutiveLosses > 0 && st.Streak >= limits.MaxConsecutiveLosses:
		st.Severity = Warning
		st.Code = CodeLossStreak
		st.Message = fmt.Sprintf("Loss Streak: %d in a row. Take a 30-min break.", st.Streak)
	default:
		st.Severity = None
	}
	return st
}

// EvaluateAccount runs the guard over acct's trades dated on now's UTC day.
func EvaluateAccount(acct account.Account, trades []ledger.Trade, now time.Time) Status {
	return Evaluate(acct.RiskLimits, ledger.OnDay(trades, acct.ID, account.Day(now)))
}
