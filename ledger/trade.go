package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Outcome is the result of a trade as logged by the trader.
type Outcome int

const (
	Pending Outcome = iota
	Win
	Loss
	BreakEven
)

var outcomeNames = [...]string{
	Pending:   "pending",
	Win:       "win",
	Loss:      "loss",
	BreakEven: "be",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "":
		return Pending, nil
	case "win":
		return Win, nil
	case "loss":
		return Loss, nil
	case "be", "breakeven", "break-even":
		return BreakEven, nil
	}
	return Pending, fmt.Errorf("unknown outcome %q", s)
}

func (o Outcome) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(outcomeNames) {
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// NormalizeProfit forces amount to agree in sign with outcome: losses are
// negative, wins non-negative, break-evens zero. Pending amounts pass
// through untouched.
func NormalizeProfit(o Outcome, amount float64) float64 {
	switch o {
	case Loss:
		return -math.Abs(amount)
	case Win:
		return math.Abs(amount)
	case BreakEven:
		return 0
	case Pending:
		return amount
	}
	return amount
}

// Trade is a single execution log entry. Phase is stamped when the trade
// is recorded and never changes afterwards.
type Trade struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	Date         time.Time `json:"date"`
	Symbol       string    `json:"symbol"`
	Strategy     string    `json:"strategy"`
	EntryModel   string    `json:"entryModel"`
	Confluences  []string  `json:"confluences"`
	EntryPrice   float64   `json:"entryPrice"`
	StopLoss     float64   `json:"stopLoss"`
	TakeProfit   float64   `json:"takeProfit"`
	Outcome      Outcome   `json:"outcome"`
	ProfitAmount float64   `json:"profitAmount"`
	Notes        string    `json:"notes,omitempty"`
	Phase        int       `json:"phase"`
}

// Draft carries the user supplied fields of a trade. ProfitAmount may be
// given as a raw magnitude; it is normalized against Outcome.
type Draft struct {
	AccountID    string    `json:"accountId,omitempty"`
	Date         time.Time `json:"date"`
	Symbol       string    `json:"symbol"`
	Strategy     string    `json:"strategy"`
	EntryModel   string    `json:"entryModel"`
	Confluences  []string  `json:"confluences"`
	EntryPrice   float64   `json:"entryPrice"`
	StopLoss     float64   `json:"stopLoss"`
	TakeProfit   float64   `json:"takeProfit"`
	Outcome      Outcome   `json:"outcome"`
	ProfitAmount float64   `json:"profitAmount"`
	Notes        string    `json:"notes,omitempty"`
}

// validate rejects prices and amounts that are not finite numbers.
func (d Draft) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"profitAmount", d.ProfitAmount},
		{"entryPrice", d.EntryPrice},
		{"stopLoss", d.StopLoss},
		{"takeProfit", d.TakeProfit},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be a finite number, got %v: %w", f.name, f.v, ErrInvalidDraft)
		}
	}
	return nil
}

// apply copies the draft onto t, filling the same defaults the journal
// form uses for blank fields.
func (d Draft) apply(t *Trade, now time.Time) {
	t.Date = d.Date
	if t.Date.IsZero() {
		t.Date = now
	}
	t.Date = t.Date.UTC()
	t.Symbol = orDefault(strings.ToUpper(strings.TrimSpace(d.Symbol)), "UNKNOWN")
	t.Strategy = orDefault(strings.TrimSpace(d.Strategy), "No Strategy")
	t.EntryModel = orDefault(strings.TrimSpace(d.EntryModel), "No Model")
	t.Confluences = cleanConfluences(d.Confluences)
	t.EntryPrice = d.EntryPrice
	t.StopLoss = d.StopLoss
	t.TakeProfit = d.TakeProfit
	t.Outcome = d.Outcome
	t.ProfitAmount = NormalizeProfit(d.Outcome, d.ProfitAmount)
	t.Notes = d.Notes
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func cleanConfluences(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
