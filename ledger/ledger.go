package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/shopspring/decimal"
)

var (
	ErrNoActiveAccount = errors.New("no active account")
	ErrTradeNotFound   = errors.New("trade not found")
	ErrInvalidDraft    = errors.New("invalid trade")
)

// Ledger is the append-only record of trades for a workspace. Trades are
// kept in the order they were recorded.
type Ledger struct {
	trades []Trade
	index  map[string]int
}

func New(trades []Trade) *Ledger {
	l := &Ledger{index: make(map[string]int, len(trades))}
	for _, t := range trades {
		l.index[t.ID] = len(l.trades)
		l.trades = append(l.trades, t)
	}
	return l
}

func (l *Ledger) Len() int { return len(l.trades) }

// Get returns a copy of the trade with the given id.
func (l *Ledger) Get(id string) (Trade, error) {
	i, ok := l.index[id]
	if !ok {
		return Trade{}, fmt.Errorf("trade %q: %w", id, ErrTradeNotFound)
	}
	return clone(l.trades[i]), nil
}

// Trades returns a copy of every trade in record order.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	for i, t := range l.trades {
		out[i] = clone(t)
	}
	return out
}

// Record appends a trade built from d to acct's ledger and returns it with
// the updated account. The trade is stamped with the account's stage and
// the balance moves by the normalized profit. acct is not modified.
func (l *Ledger) Record(acct *account.Account, id string, d Draft, now time.Time) (Trade, account.Account, error) {
	if acct == nil {
		return Trade{}, account.Account{}, ErrNoActiveAccount
	}
	if _, dup := l.index[id]; dup {
		return Trade{}, account.Account{}, fmt.Errorf("trade %q already recorded", id)
	}
	if err := d.validate(); err != nil {
		return Trade{}, account.Account{}, err
	}

	t := Trade{
		ID:        id,
		AccountID: acct.ID,
		Phase:     acct.Stage(),
	}
	d.apply(&t, now)

	updated := *acct
	updated.Balance = addMoney(updated.Balance, t.ProfitAmount)

	l.index[t.ID] = len(l.trades)
	l.trades = append(l.trades, t)

	return clone(t), updated, nil
}

// Edit replaces the financial and descriptive fields of trade id with d.
// The balance moves by the difference between the new and old profit; the
// trade's account and phase are preserved.
func (l *Ledger) Edit(acct account.Account, id string, d Draft, now time.Time) (Trade, account.Account, error) {
	i, ok := l.index[id]
	if !ok {
		return Trade{}, account.Account{}, fmt.Errorf("trade %q: %w", id, ErrTradeNotFound)
	}
	old := l.trades[i]
	if old.AccountID != acct.ID {
		return Trade{}, account.Account{}, fmt.Errorf("trade %q belongs to account %q, not %q", id, old.AccountID, acct.ID)
	}
	if err := d.validate(); err != nil {
		return Trade{}, account.Account{}, fmt.Errorf("trade %q: %w", id, err)
	}

	t := Trade{
		ID:        old.ID,
		AccountID: old.AccountID,
		Phase:     old.Phase,
	}
	d.apply(&t, now)
	if d.Date.IsZero() {
		t.Date = old.Date
	}

	diff := subMoney(t.ProfitAmount, old.ProfitAmount)
	acct.Balance = addMoney(acct.Balance, diff)

	l.trades[i] = t
	return clone(t), acct, nil
}

// RollDay starts a new trading day for acct when now falls on a later UTC
// day than its last reset: the daily starting balance becomes the current
// balance. It reports whether a roll happened.
func RollDay(acct *account.Account, now time.Time) bool {
	day := account.Day(now)
	if acct.LastResetDate != "" && day <= acct.LastResetDate {
		return false
	}
	acct.DailyStartingBalance = acct.Balance
	acct.LastResetDate = day
	return true
}

func addMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

func subMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}

// Sum adds the profit of every trade.
func Sum(trades []Trade) float64 {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.ProfitAmount))
	}
	return total.InexactFloat64()
}

func clone(t Trade) Trade {
	if t.Confluences != nil {
		t.Confluences = append(make([]string, 0, len(t.Confluences)), t.Confluences...)
	}
	return t
}
