package saver

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/brettelliot/azul/internal/model"
)

// SQLiteFile is the database file name inside the output directory.
const SQLiteFile = "azul.db"

// SQLiteSink stores every symbol in one SQLite database, one table per granularity.
type SQLiteSink struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLite opens (or creates) <dir>/azul.db and runs migrations.
func OpenSQLite(dir string) (*SQLiteSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, SQLiteFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL so readers can query while a download is running.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteSink{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func table(g model.Granularity) string {
	if g == model.Daily {
		return "daily_bars"
	}
	return "minute_bars"
}

func (s *SQLiteSink) migrate() error {
	var stmts []string
	for _, g := range []model.Granularity{model.Minute, model.Daily} {
		t := table(g)
		stmts = append(stmts,
			`CREATE TABLE IF NOT EXISTS `+t+` (
				symbol   TEXT    NOT NULL,
				date     TEXT    NOT NULL,
				open     REAL,
				high     REAL,
				low      REAL,
				close    REAL,
				volume   INTEGER,
				dividend REAL,
				split    REAL,
				PRIMARY KEY (symbol, date)
			)`,
		)
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

// Path returns the database file.
func (s *SQLiteSink) Path() string { return s.path }

// Write replaces every stored row of the symbol in one transaction.
func (s *SQLiteSink) Write(g model.Granularity, symbol string, bars model.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	t := table(g)
	if _, err := tx.Exec(`DELETE FROM `+t+` WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("clear %s %s: %w", t, symbol, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO ` + t + ` (symbol, date, open, high, low, close, volume, dividend, split)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range toRecords(bars, g) {
		if _, err := stmt.Exec(symbol, r.Date, r.Open, r.High, r.Low, r.Close, r.Volume, r.Dividend, r.Split); err != nil {
			return fmt.Errorf("insert %s %s %s: %w", t, symbol, r.Date, err)
		}
	}
	return tx.Commit()
}

// Load returns the symbol's rows ordered by date.
func (s *SQLiteSink) Load(g model.Granularity, symbol string) (model.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := table(g)
	rows, err := s.db.Query(`SELECT date, open, high, low, close, volume, dividend, split
		FROM `+t+` WHERE symbol = ? ORDER BY date`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []record
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.Date, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume, &r.Dividend, &r.Split); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("load %s %s: %w", t, symbol, fs.ErrNotExist)
	}
	return fromRecords(recs)
}

func (s *SQLiteSink) Close() error { return s.db.Close() }
