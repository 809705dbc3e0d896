package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

const (
	tableJobs  = "jobs"
	tableTypes = "types"
)

// SQLiteStore keeps JSON payloads in two id-keyed tables.
type SQLiteStore struct {
	db *sql.DB
}

// Open returns a SQLite-backed store for path. An empty path, or a database
// that cannot be opened or migrated, yields NopStore.
func Open(ctx context.Context, path string) Store {
	path = strings.TrimSpace(path)
	if path == "" {
		log.Info().Msg("store_disabled")
		return NopStore{}
	}
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("store_unavailable_starting_empty")
		return NopStore{}
	}
	log.Info().Str("path", path).Msg("store_opened")
	return s
}

// OpenSQLite opens the database file at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open handle and creates missing tables.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, table := range []string{tableJobs, tableTypes} {
		query := `CREATE TABLE IF NOT EXISTS ` + table + ` (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveJob(ctx context.Context, job registry.Job) error {
	return s.put(ctx, tableJobs, job.ID, job)
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, id string) error {
	return s.delete(ctx, tableJobs, id)
}

// LoadJobs returns every decodable job; corrupt rows are logged and skipped.
func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]registry.Job, error) {
	var out []registry.Job
	err := s.scan(ctx, tableJobs, func(id string, payload []byte) error {
		var job registry.Job
		if err := json.Unmarshal(payload, &job); err != nil {
			return err
		}
		if job.ID == "" {
			job.ID = id
		}
		out = append(out, job)
		return nil
	})
	return out, err
}

func (s *SQLiteStore) SaveType(ctx context.Context, t registry.CapabilityType) error {
	return s.put(ctx, tableTypes, t.ID, t)
}

func (s *SQLiteStore) DeleteType(ctx context.Context, id string) error {
	return s.delete(ctx, tableTypes, id)
}

// LoadTypes returns every decodable type; corrupt rows are logged and skipped.
func (s *SQLiteStore) LoadTypes(ctx context.Context) ([]registry.CapabilityType, error) {
	var out []registry.CapabilityType
	err := s.scan(ctx, tableTypes, func(id string, payload []byte) error {
		var t registry.CapabilityType
		if err := json.Unmarshal(payload, &t); err != nil {
			return err
		}
		if t.ID == "" {
			t.ID = id
		}
		out = append(out, t)
		return nil
	})
	return out, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) put(ctx context.Context, table, id string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record %q: %w", table, id, err)
	}
	query := `INSERT INTO ` + table + ` (id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, query, id, string(payload), updatedAt); err != nil {
		return fmt.Errorf("save %s record %q: %w", table, id, err)
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, table, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete %s record %q: %w", table, id, err)
	}
	return nil
}

func (s *SQLiteStore) scan(ctx context.Context, table string, decode func(id string, payload []byte) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM `+table+` ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id      string
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			log.Warn().Err(err).Str("table", table).Msg("store_row_unreadable")
			continue
		}
		if err := decode(id, []byte(payload)); err != nil {
			log.Warn().Err(err).Str("table", table).Str("id", id).Msg("store_row_corrupt_skipped")
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	return nil
}
