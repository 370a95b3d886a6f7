package corpus

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store manages corpus persistence backed by SQLite. A file lock on the
// data directory keeps a second process from writing the same database.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the corpus database in dataDir.
func Open(dataDir string) (*Store, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data directory not configured")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	lock := flock.New(filepath.Join(dataDir, "corpus.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire corpus lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("corpus at %s is in use by another process", dataDir)
	}

	dbPath := filepath.Join(dataDir, "corpus.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath, lock: lock}, nil
}

// Close closes the database connection and releases the directory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Add inserts a record, assigning an ID and creation time when absent, and
// returns the stored record.
func (s *Store) Add(ctx context.Context, record Record) (Record, error) {
	if !record.Valid() {
		return Record{}, errors.New("record has no fingerprint")
	}
	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (id, fingerprint, phash, owner_id, asset_ref, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		strings.ToLower(record.Fingerprint),
		record.PHash,
		record.OwnerID,
		record.AssetRef,
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	return record, nil
}

// All returns every corpus record, newest first.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fingerprint, phash, owner_id, asset_ref, created_at
         FROM assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Fingerprint, &rec.PHash, &rec.OwnerID, &rec.AssetRef, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Remove deletes a record by ID.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %q not found", id)
	}
	return nil
}

// Count returns the number of corpus records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// UpsertProfile stores the display name for an owner.
func (s *Store) UpsertProfile(ctx context.Context, ownerID, displayName string) error {
	if strings.TrimSpace(ownerID) == "" {
		return errors.New("owner id cannot be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (owner_id, display_name) VALUES (?, ?)
         ON CONFLICT(owner_id) DO UPDATE SET display_name = excluded.display_name`,
		ownerID, displayName)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Profiles returns the display-name mapping for the given owner IDs.
// Owners without a profile are simply absent from the result.
func (s *Store) Profiles(ctx context.Context, ownerIDs []string) (map[string]string, error) {
	if len(ownerIDs) == 0 {
		return map[string]string{}, nil
	}
	placeholders := strings.Repeat("?,", len(ownerIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ownerIDs))
	for i, id := range ownerIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id, display_name FROM profiles WHERE owner_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(ownerIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
