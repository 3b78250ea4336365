package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/ledger"

	_ "github.com/mattn/go-sqlite3"
)

// dateLayout keeps trade dates sortable and lets day queries match on the
// YYYY-MM-DD prefix.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) Load(ctx context.Context, userID string) (Workspace, error) {
	var ws Workspace

	err := j.db.QueryRowContext(ctx, `
		SELECT last_active_account_id, last_active_tab
		FROM workspaces
		WHERE user_id = ?`, userID).Scan(&ws.LastActiveAccountID, &ws.LastActiveTab)
	if err != nil && err != sql.ErrNoRows {
		return Workspace{}, fmt.Errorf("load workspace: %w", err)
	}

	if ws.Accounts, err = j.loadAccounts(ctx, userID); err != nil {
		return Workspace{}, fmt.Errorf("load accounts: %w", err)
	}
	if ws.Trades, err = j.queryTrades(ctx, `WHERE user_id = ? ORDER BY seq ASC`, userID); err != nil {
		return Workspace{}, fmt.Errorf("load trades: %w", err)
	}
	return ws, nil
}

// Save replaces everything stored for userID with ws in one transaction.
func (j *SQLite) Save(ctx context.Context, userID string, ws Workspace) (err error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"accounts", "trades"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, a := range ws.Accounts {
		if err = insertAccount(ctx, tx, userID, i, a); err != nil {
			return fmt.Errorf("save account %q: %w", a.ID, err)
		}
	}
	for i, t := range ws.Trades {
		if err = insertTrade(ctx, tx, userID, i, t); err != nil {
			return fmt.Errorf("save trade %q: %w", t.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workspaces (user_id, last_active_account_id, last_active_tab, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			last_active_account_id = excluded.last_active_account_id,
			last_active_tab = excluded.last_active_tab,
			saved_at = excluded.saved_at`,
		userID, ws.LastActiveAccountID, ws.LastActiveTab, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func insertAccount(ctx context.Context, tx *sql.Tx, userID string, pos int, a account.Account) error {
	typ, err := a.Type.MarshalText()
	if err != nil {
		return err
	}
	s2p, s2d := optionalStep(a.StepTargets.Step2)
	s3p, s3d := optionalStep(a.StepTargets.Step3)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts
		(user_id, account_id, position, name, type, starting_balance, balance, daily_starting_balance,
		 max_drawdown_pct, step1_profit_target, step1_daily_drawdown, step2_profit_target,
		 step2_daily_drawdown, step3_profit_target, step3_daily_drawdown, current_step,
		 last_passed_step, is_funded, last_reset_date, max_losses_per_day, max_consecutive_losses,
		 daily_profit_goal, max_trades_per_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, a.ID, pos, a.Name, string(typ), a.StartingBalance, a.Balance, a.DailyStartingBalance,
		a.MaxDrawdownPercent, a.StepTargets.Step1.ProfitTarget, a.StepTargets.Step1.DailyDrawdownLimit,
		s2p, s2d, s3p, s3d, a.CurrentStep,
		a.LastPassedStep, a.IsFunded, a.LastResetDate, a.RiskLimits.MaxLossesPerDay,
		a.RiskLimits.MaxConsecutiveLosses, a.RiskLimits.DailyProfitGoal, a.RiskLimits.MaxTradesPerDay,
	)
	return err
}

func optionalStep(c *account.StepConfig) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.ProfitTarget, Valid: true},
		sql.NullFloat64{Float64: c.DailyDrawdownLimit, Valid: true}
}

func insertTrade(ctx context.Context, tx *sql.Tx, userID string, seq int, t ledger.Trade) error {
	conf, err := json.Marshal(t.Confluences)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO trades
		(user_id, trade_id, seq, account_id, date, symbol, strategy, entry_model, confluences,
		 entry_price, stop_loss, take_profit, outcome, profit_amount, notes, phase)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, t.ID, seq, t.AccountID, t.Date.UTC().Format(dateLayout), t.Symbol, t.Strategy,
		t.EntryModel, string(conf), t.EntryPrice, t.StopLoss, t.TakeProfit, t.Outcome.String(),
		t.ProfitAmount, t.Notes, t.Phase,
	)
	return err
}

func (j *SQLite) loadAccounts(ctx context.Context, userID string) ([]account.Account, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT account_id, name, type, starting_balance, balance, daily_starting_balance,
		       max_drawdown_pct, step1_profit_target, step1_daily_drawdown, step2_profit_target,
		       step2_daily_drawdown, step3_profit_target, step3_daily_drawdown, current_step,
		       last_passed_step, is_funded, last_reset_date, max_losses_per_day,
		       max_consecutive_losses, daily_profit_goal, max_trades_per_day
		FROM accounts
		WHERE user_id = ?
		ORDER BY position ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []account.Account
	for rows.Next() {
		var (
			a                  account.Account
			typ                string
			s2p, s2d, s3p, s3d sql.NullFloat64
		)
		if err := rows.Scan(
			&a.ID, &a.Name, &typ, &a.StartingBalance, &a.Balance, &a.DailyStartingBalance,
			&a.MaxDrawdownPercent, &a.StepTargets.Step1.ProfitTarget, &a.StepTargets.Step1.DailyDrawdownLimit,
			&s2p, &s2d, &s3p, &s3d, &a.CurrentStep,
			&a.LastPassedStep, &a.IsFunded, &a.LastResetDate, &a.RiskLimits.MaxLossesPerDay,
			&a.RiskLimits.MaxConsecutiveLosses, &a.RiskLimits.DailyProfitGoal, &a.RiskLimits.MaxTradesPerDay,
		); err != nil {
			return nil, err
		}
		if a.Type, err = account.ParseType(typ); err != nil {
			return nil, fmt.Errorf("account %q: %w", a.ID, err)
		}
		a.StepTargets.Step2 = stepFromNull(s2p, s2d)
		a.StepTargets.Step3 = stepFromNull(s3p, s3d)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func stepFromNull(p, d sql.NullFloat64) *account.StepConfig {
	if !p.Valid {
		return nil
	}
	return &account.StepConfig{ProfitTarget: p.Float64, DailyDrawdownLimit: d.Float64}
}
