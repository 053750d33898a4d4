package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/ryan/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// NewID returns a fresh ULID string. Safe for concurrent use.
func (s *SQLiteStore) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id          TEXT NOT NULL,
		user_id     TEXT NOT NULL,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT 'general',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (user_id, key)
	);
	CREATE INDEX IF NOT EXISTS idx_memories_user_category ON memories(user_id, category);
	CREATE INDEX IF NOT EXISTS idx_memories_updated ON memories(updated_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.Entry, error) {
	if p.User == "" || p.Key == "" {
		return nil, fmt.Errorf("put: user and key are required")
	}
	now := time.Now().UTC()
	category := p.Category
	if category == "" {
		category = model.DefaultCategory
	}

	// A single upsert keeps concurrent writers to one key from interleaving.
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO memories (id, user_id, key, value, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET
		   value = excluded.value,
		   category = excluded.category,
		   updated_at = excluded.updated_at
		 RETURNING id, user_id, key, value, category, created_at, updated_at`,
		s.NewID(), p.User, p.Key, p.Value, category,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))

	e, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("upsert memory: %w", err)
	}
	return &e, nil
}

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, key, value, category, created_at, updated_at
		 FROM memories WHERE user_id = ? AND key = ?`, p.User, p.Key)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, p.User, p.Key)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Entry, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{p.User}

	if p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, p.Category)
	}

	query := `SELECT id, user_id, key, value, category, created_at, updated_at
	          FROM memories WHERE ` + strings.Join(where, " AND ") + ` ORDER BY key`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE user_id = ? AND key = ?`, p.User, p.Key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, p.User, p.Key)
	}
	return nil
}

func (s *SQLiteStore) Wipe(ctx context.Context, user string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE user_id = ?`, user)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var createdAt, updatedAt string

	err := row.Scan(&e.ID, &e.UserID, &e.Key, &e.Value, &e.Category, &createdAt, &updatedAt)
	if err != nil {
		return e, err
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return e, nil
}
