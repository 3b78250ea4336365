package ledger

import "github.com/rustyeddy/edgetracker/account"

// ForAccount keeps the trades of one account, preserving order.
func ForAccount(trades []Trade, accountID string) []Trade {
	return filter(trades, func(t Trade) bool { return t.AccountID == accountID })
}

// InPhase keeps the trades of one account stamped with phase.
func InPhase(trades []Trade, accountID string, phase int) []Trade {
	return filter(trades, func(t Trade) bool {
		return t.AccountID == accountID && t.Phase == phase
	})
}

// OnDay keeps the trades of one account dated on the UTC day
// (YYYY-MM-DD).
func OnDay(trades []Trade, accountID, day string) []Trade {
	return filter(trades, func(t Trade) bool {
		return t.AccountID == accountID && account.Day(t.Date) == day
	})
}

func filter(trades []Trade, keep func(Trade) bool) []Trade {
	var out []Trade
	for _, t := range trades {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
