package engine

import (
	"fmt"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/ledger"
)

// Select makes accountID the default target for new trades.
func (e *Engine) Select(accountID string) error {
	if _, ok := e.find(accountID); !ok {
		return fmt.Errorf("select %q: %w", accountID, ErrAccountNotFound)
	}
	e.selected = accountID
	e.log.Debug().Str("account", accountID).Msg("account selected")
	return nil
}

// Selected returns the account new trades go to when none is named.
func (e *Engine) Selected() (account.Account, bool) {
	i, ok := e.resolve("")
	if !ok {
		return account.Account{}, false
	}
	return e.accounts[i].Clone(), true
}

// SetTab records the UI tab to restore on the next load.
func (e *Engine) SetTab(tab string) { e.tab = tab }

func (e *Engine) Accounts() []account.Account {
	out := make([]account.Account, len(e.accounts))
	for i, a := range e.accounts {
		out[i] = a.Clone()
	}
	return out
}

func (e *Engine) Account(accountID string) (account.Account, error) {
	i, ok := e.find(accountID)
	if !ok {
		return account.Account{}, fmt.Errorf("account %q: %w", accountID, ErrAccountNotFound)
	}
	return e.accounts[i].Clone(), nil
}

// Trade returns a copy of one trade.
func (e *Engine) Trade(tradeID string) (ledger.Trade, error) {
	return e.ledger.Get(tradeID)
}

// Trades returns every trade in record order.
func (e *Engine) Trades() []ledger.Trade {
	return e.ledger.Trades()
}

// Snapshot returns the workspace to hand to a journal.Store.
func (e *Engine) Snapshot() journal.Workspace {
	selected := e.selected
	if _, ok := e.find(selected); !ok {
		selected = ""
	}
	return journal.Workspace{
		Trades:              e.ledger.Trades(),
		Accounts:            e.Accounts(),
		LastActiveAccountID: selected,
		LastActiveTab:       e.tab,
	}
}
