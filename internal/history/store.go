// Package history persists completed scan results so the UI and exporter
// can list past recognitions. SQLite keeps the store embeddable on-device.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/0xKimutai/IDSnap/internal/common"
)

// Record is the persisted shape of one successful recognition.
type Record struct {
	ID        uuid.UUID
	CreatedAt time.Time
	ImageRef  string
	Format    string
	Fields    map[string]string
	RawText   string
	Score     float64
	Level     string
}

// Store manages the scan-history SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the history database at path and ensures the schema
// exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &Store{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	image_ref  TEXT NOT NULL,
	format     TEXT NOT NULL,
	fields     TEXT NOT NULL,
	raw_text   TEXT NOT NULL,
	score      REAL NOT NULL,
	level      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at DESC);`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a record. A zero ID gets a fresh UUID; a zero CreatedAt gets
// the current UTC time. Returns the stored record.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return Record{}, fmt.Errorf("encode fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, created_at, image_ref, format, fields, raw_text, score, level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.CreatedAt.Format(time.RFC3339), rec.ImageRef,
		rec.Format, string(fieldsJSON), rec.RawText, rec.Score, rec.Level,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert scan: %w", err)
	}
	s.logger.Debug("history.saved", "id", rec.ID, "format", rec.Format)
	return rec, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, image_ref, format, fields, raw_text, score, level
		 FROM scans WHERE id = ?`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("scan %s: %w", id, common.ErrNotFound)
	}
	return rec, err
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, created_at, image_ref, format, fields, raw_text, score, level
	          FROM scans ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var id, createdAt, fieldsJSON string
	if err := row.Scan(&id, &createdAt, &rec.ImageRef, &rec.Format,
		&fieldsJSON, &rec.RawText, &rec.Score, &rec.Level); err != nil {
		return Record{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Record{}, fmt.Errorf("corrupt scan id %q: %w", id, err)
	}
	rec.ID = parsed
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Record{}, fmt.Errorf("corrupt scan timestamp %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return Record{}, fmt.Errorf("decode fields: %w", err)
	}
	return rec, nil
}
