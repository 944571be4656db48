package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"autotrader/ml"
	"autotrader/trade"
)

// SQLite journals trades to a single-file database. database/sql serializes
// access, so one journal can be shared across goroutines.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Save(t *trade.Trade, features ml.Features) error {
	feat, err := json.Marshal(features)
	if err != nil {
		return err
	}

	_, err = j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, strategy, contract, option_type, opened_at, entry, stop, target, size, confidence, outcome, pnl, features)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, t.Strategy, t.Contract, t.OptionType,
		t.OpenedAt, t.Entry, t.Stop, t.Target, t.Size, t.Confidence,
		t.Outcome.String(), t.PnL, string(feat),
	)
	return err
}

func (j *SQLite) UpdateOutcome(id string, outcome trade.Outcome, pnl float64) error {
	res, err := j.db.Exec(`
		UPDATE trades
		SET outcome = ?, pnl = ?, closed_at = CURRENT_TIMESTAMP
		WHERE trade_id = ?`,
		outcome.String(), pnl, id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trade %q not found", id)
	}
	return nil
}

func (j *SQLite) Expectancy(strategy string) (float64, error) {
	query := `SELECT pnl FROM trades WHERE outcome != 'OPEN'`
	args := []any{}
	if strategy != All {
		query += ` AND strategy = ?`
		args = append(args, strategy)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var pnls []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return 0, err
		}
		pnls = append(pnls, p)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return expectancy(pnls), nil
}

func (j *SQLite) TradeCount() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&n)
	return n, err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
