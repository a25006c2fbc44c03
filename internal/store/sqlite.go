package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"philately/catalog/internal/domain"
)

const stampsSchema = `
CREATE TABLE IF NOT EXISTS stamps (
	id   TEXT PRIMARY KEY,
	data TEXT NOT NULL
)`

// SQLite is the durable Store implementation. Records are stored as JSON
// blobs keyed by id; the implicit rowid gives stable insertion order, and an
// upsert keeps the original rowid so re-inserting never reorders pages.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the catalog database and applies the
// WAL/busy-timeout pragmas. A failure here is ErrStorageUnavailable: the
// environment has no working persistent storage and the caller should run
// memory-only.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	if _, err := db.Exec(stampsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	log.Infof("✅ Opened catalog store at %s", path)
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) BulkInsert(ctx context.Context, records []domain.StampRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO stamps (id, data)
	VALUES ($1, $2)
	ON CONFLICT (id)
	DO UPDATE SET data = $2`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode stamp %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, string(data)); err != nil {
			return fmt.Errorf("failed to save stamp %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}
	return nil
}

func (s *SQLite) GetPage(ctx context.Context, offset, limit int) ([]domain.StampRecord, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM stamps ORDER BY rowid LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read stamp page: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, false, err
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	return records, offset+len(records) < total, nil
}

func (s *SQLite) GetAll(ctx context.Context) ([]domain.StampRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM stamps ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan stamps: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLite) GetByID(ctx context.Context, id string) (domain.StampRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM stamps WHERE id = $1`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return domain.StampRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.StampRecord{}, fmt.Errorf("failed to read stamp %s: %w", id, err)
	}
	var rec domain.StampRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domain.StampRecord{}, fmt.Errorf("failed to decode stamp %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stamps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stamps: %w", err)
	}
	return n, nil
}

func (s *SQLite) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stamps`); err != nil {
		return fmt.Errorf("failed to clear stamps: %w", err)
	}
	return nil
}

func (s *SQLite) Recreate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS stamps`); err != nil {
		return fmt.Errorf("failed to drop stamps table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, stampsSchema); err != nil {
		return fmt.Errorf("failed to recreate stamps table: %w", err)
	}
	log.Warnf("🔄 Recreated catalog store schema at %s", s.path)
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]domain.StampRecord, error) {
	records := make([]domain.StampRecord, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan stamp row: %w", err)
		}
		var rec domain.StampRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode stamp row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while reading stamp rows: %w", err)
	}
	return records, nil
}
