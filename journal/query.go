package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rustyeddy/edgetracker/ledger"
)

const tradeColumns = `trade_id, account_id, date, symbol, strategy, entry_model, confluences,
	entry_price, stop_loss, take_profit, outcome, profit_amount, notes, phase`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(row scanner) (ledger.Trade, error) {
	var (
		t       ledger.Trade
		date    string
		conf    string
		outcome string
	)
	if err := row.Scan(
		&t.ID,
		&t.AccountID,
		&date,
		&t.Symbol,
		&t.Strategy,
		&t.EntryModel,
		&conf,
		&t.EntryPrice,
		&t.StopLoss,
		&t.TakeProfit,
		&outcome,
		&t.ProfitAmount,
		&t.Notes,
		&t.Phase,
	); err != nil {
		return ledger.Trade{}, err
	}

	var err error
	if t.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
		return ledger.Trade{}, fmt.Errorf("trade %q date: %w", t.ID, err)
	}
	if t.Outcome, err = ledger.ParseOutcome(outcome); err != nil {
		return ledger.Trade{}, fmt.Errorf("trade %q: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(conf), &t.Confluences); err != nil {
		return ledger.Trade{}, fmt.Errorf("trade %q confluences: %w", t.ID, err)
	}
	if t.Confluences == nil {
		t.Confluences = []string{}
	}
	return t, nil
}

func (j *SQLite) queryTrades(ctx context.Context, where string, args ...any) ([]ledger.Trade, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+tradeColumns+` FROM trades `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single stored trade by ID.
func (j *SQLite) GetTrade(ctx context.Context, userID, tradeID string) (ledger.Trade, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE user_id = ? AND trade_id = ?`, userID, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return ledger.Trade{}, fmt.Errorf("trade %q: %w", tradeID, ledger.ErrTradeNotFound)
		}
		return ledger.Trade{}, err
	}
	return t, nil
}

// ListTradesOnDay returns the stored trades of one account dated on the
// given UTC calendar day (YYYY-MM-DD), in record order.
func (j *SQLite) ListTradesOnDay(ctx context.Context, userID, accountID, day string) ([]ledger.Trade, error) {
	return j.queryTrades(ctx, `
		WHERE user_id = ? AND account_id = ? AND substr(date, 1, 10) = ?
		ORDER BY seq ASC`, userID, accountID, day)
}
