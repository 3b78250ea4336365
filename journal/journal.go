// Package journal persists workspaces: the accounts and trade log of one
// user, plus the UI's last selection. The engine never calls it; callers
// load a workspace before an operation and save it afterwards.
package journal

import (
	"context"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/ledger"
)

// Workspace is the full persisted state of one user.
type Workspace struct {
	Trades              []ledger.Trade    `json:"trades"`
	Accounts            []account.Account `json:"accounts"`
	LastActiveAccountID string            `json:"lastActiveAccountId"`
	LastActiveTab       string            `json:"lastActiveTab"`
}

// Store loads and saves workspaces keyed by user identity. Loading a user
// that has never saved returns an empty workspace.
type Store interface {
	Load(ctx context.Context, userID string) (Workspace, error)
	Save(ctx context.Context, userID string, ws Workspace) error
	Close() error
}
