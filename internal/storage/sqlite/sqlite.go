// Package sqlite provides a SQLite-backed implementation of the
// storage.DeliveryLog interface using database/sql.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DAN6256/EmailServer/internal/storage"
	"github.com/DAN6256/EmailServer/internal/types"

	// Side-effect only: registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.DeliveryLog.
// A single *sql.DB is a pool and is safe for concurrent use, which
// matters here because both booking emails are recorded at once.
type SQLite struct {
	Db *sql.DB
}

var _ storage.DeliveryLog = (*SQLite)(nil)

// New opens the SQLite database at path, creating the parent directory
// and the deliveries table when they do not exist yet.
func New(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// sql.Open only validates the DSN; the first real connection happens
	// on the first query.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent, safe on every startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS deliveries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			kind        TEXT    NOT NULL,
			recipient   TEXT    NOT NULL,
			subject     TEXT    NOT NULL,
			transport   TEXT    NOT NULL,
			status      TEXT    NOT NULL,
			error       TEXT    NOT NULL DEFAULT '',
			provider_id TEXT    NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// RecordDelivery inserts one attempt. CreatedAt defaults to now and is
// stored as unix milliseconds.
func (s *SQLite) RecordDelivery(ctx context.Context, d types.Delivery) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		`INSERT INTO deliveries (kind, recipient, subject, transport, status, error, provider_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("RecordDelivery: prepare: %w", err)
	}
	defer stmt.Close()

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	// Argument order matches the ? order in the SQL.
	result, err := stmt.ExecContext(ctx,
		d.Kind, d.Recipient, d.Subject, d.Transport, d.Status, d.Error, d.ProviderID,
		createdAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("RecordDelivery: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("RecordDelivery: last insert id: %w", err)
	}

	return lastID, nil
}

// GetDeliveryByID fetches exactly one attempt by primary key.
func (s *SQLite) GetDeliveryByID(ctx context.Context, id int64) (types.Delivery, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		`SELECT id, kind, recipient, subject, transport, status, error, provider_id, created_at
		 FROM deliveries WHERE id = ? LIMIT 1`,
	)
	if err != nil {
		return types.Delivery{}, fmt.Errorf("GetDeliveryByID: prepare: %w", err)
	}
	defer stmt.Close()

	d, err := scanDelivery(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Delivery{}, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
		}
		return types.Delivery{}, fmt.Errorf("GetDeliveryByID: scan: %w", err)
	}

	return d, nil
}

// GetDeliveries returns up to limit attempts, newest first. A limit of
// zero or less returns every row.
func (s *SQLite) GetDeliveries(ctx context.Context, limit int) ([]types.Delivery, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	stmt, err := s.Db.PrepareContext(ctx,
		`SELECT id, kind, recipient, subject, transport, status, error, provider_id, created_at
		 FROM deliveries ORDER BY id DESC LIMIT ?`,
	)
	if err != nil {
		return nil, fmt.Errorf("GetDeliveries: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("GetDeliveries: query: %w", err)
	}
	defer rows.Close()

	// Empty, not nil: encodes as [] rather than null.
	deliveries := make([]types.Delivery, 0)

	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("GetDeliveries: scan row: %w", err)
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetDeliveries: rows iteration: %w", err)
	}

	return deliveries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row scanner) (types.Delivery, error) {
	var (
		d         types.Delivery
		createdAt int64
	)
	if err := row.Scan(
		&d.ID,
		&d.Kind,
		&d.Recipient,
		&d.Subject,
		&d.Transport,
		&d.Status,
		&d.Error,
		&d.ProviderID,
		&createdAt,
	); err != nil {
		return types.Delivery{}, err
	}
	d.CreatedAt = time.UnixMilli(createdAt).UTC()
	return d, nil
}
