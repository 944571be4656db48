// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	strategy TEXT NOT NULL,
	contract TEXT NOT NULL DEFAULT '',
	option_type TEXT NOT NULL DEFAULT '',
	opened_at DATETIME NOT NULL,
	closed_at DATETIME,
	entry REAL NOT NULL,
	stop REAL NOT NULL,
	target REAL NOT NULL,
	size INTEGER NOT NULL,
	confidence REAL NOT NULL,
	outcome TEXT NOT NULL DEFAULT 'OPEN',
	pnl REAL NOT NULL DEFAULT 0,
	features TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy);
CREATE INDEX IF NOT EXISTS idx_trades_opened ON trades(opened_at);
`
