package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	//sqlite driver
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore archives snapshots in a single table, one row per item.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			number INTEGER,
			raw TEXT NOT NULL,
			PRIMARY KEY (name, position)
		)
	`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces every item stored under name.
func (s *SQLiteStore) Save(ctx context.Context, name string, items []json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("clearing snapshot %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshots (name, position, number, raw)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, name, i, itemNumber(item), string(item)); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Load(ctx context.Context, name string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT raw FROM snapshots WHERE name = ? ORDER BY position ASC`,
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []json.RawMessage
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		items = append(items, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return items, nil
}

// itemNumber pulls the issue/PR number out for ad hoc queries on the archive.
func itemNumber(item json.RawMessage) sql.NullInt64 {
	var probe struct {
		Number *int64 `json:"number"`
	}
	if err := json.Unmarshal(item, &probe); err != nil || probe.Number == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *probe.Number, Valid: true}
}
