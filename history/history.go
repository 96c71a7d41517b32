// Package history records finished conversions in a SQL database. Postgres
// (postgres:// or postgresql:// DSNs) and SQLite (sqlite:// or sqlite3://
// DSNs, or a plain file path) are supported.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type Record struct {
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Sheets    int       `json:"sheets"`
	Rows      int       `json:"rows"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db     *sql.DB
	driver string
}

var ErrUnsupportedDSN = errors.New("unsupported history DSN")

var schemas = map[string]string{
	"postgres": `CREATE TABLE IF NOT EXISTS conversions (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	source TEXT NOT NULL,
	sheet_count INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	byte_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
	"sqlite3": `CREATE TABLE IF NOT EXISTS conversions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	source TEXT NOT NULL,
	sheet_count INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	byte_count INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
)`,
}

// Open connects to the database named by dsn and creates the conversions
// table if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source, err := splitDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func splitDSN(dsn string) (driver, source string, err error) {
	switch {
	case dsn == "":
		return "", "", ErrUnsupportedDSN
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite3://"):
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite3://"), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedDSN, dsn[:strings.Index(dsn, "://")])
	default:
		return "sqlite3", dsn, nil
	}
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemas[s.driver]); err != nil {
		return fmt.Errorf("create conversions table: %w", err)
	}
	return nil
}

func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	query := s.rebind(`INSERT INTO conversions (name, source, sheet_count, row_count, byte_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, rec.Name, rec.Source, rec.Sheets, rec.Rows, rec.Bytes, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

// Recent returns at most limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := s.rebind(`SELECT name, source, sheet_count, row_count, byte_count, created_at FROM conversions ORDER BY created_at DESC, id DESC LIMIT ?`)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Source, &rec.Sheets, &rec.Rows, &rec.Bytes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites '?' placeholders to the $n form Postgres expects.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
