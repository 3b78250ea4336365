package journal

const Schema = `
CREATE TABLE IF NOT EXISTS workspaces (
	user_id TEXT PRIMARY KEY,
	last_active_account_id TEXT NOT NULL DEFAULT '',
	last_active_tab TEXT NOT NULL DEFAULT '',
	saved_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	user_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	starting_balance REAL NOT NULL,
	balance REAL NOT NULL,
	daily_starting_balance REAL NOT NULL,
	max_drawdown_pct REAL NOT NULL,
	step1_profit_target REAL NOT NULL,
	step1_daily_drawdown REAL NOT NULL,
	step2_profit_target REAL,
	step2_daily_drawdown REAL,
	step3_profit_target REAL,
	step3_daily_drawdown REAL,
	current_step INTEGER NOT NULL,
	last_passed_step INTEGER NOT NULL DEFAULT 0,
	is_funded INTEGER NOT NULL DEFAULT 0,
	last_reset_date TEXT NOT NULL DEFAULT '',
	max_losses_per_day INTEGER NOT NULL,
	max_consecutive_losses INTEGER NOT NULL,
	daily_profit_goal REAL NOT NULL,
	max_trades_per_day INTEGER NOT NULL,
	PRIMARY KEY (user_id, account_id)
);

CREATE TABLE IF NOT EXISTS trades (
	user_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	account_id TEXT NOT NULL,
	date TEXT NOT NULL,
	symbol TEXT NOT NULL,
	strategy TEXT NOT NULL,
	entry_model TEXT NOT NULL,
	confluences TEXT NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	outcome TEXT NOT NULL,
	profit_amount REAL NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	phase INTEGER NOT NULL,
	PRIMARY KEY (user_id, trade_id)
);

CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades(user_id, date);
CREATE INDEX IF NOT EXISTS idx_trades_user_account ON trades(user_id, account_id, phase);
`
