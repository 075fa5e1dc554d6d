package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// SQLiteStore keeps cache entries in the cache_entries table.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

func NewSQLiteStore(db *sql.DB, logger *log.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var (
		value    []byte
		storedAt int64
		ttl      int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, stored_at, ttl_seconds FROM cache_entries WHERE key = ?",
		key,
	).Scan(&value, &storedAt, &ttl)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Printf("Error reading cache entry %s: %v", key, err)
		}
		return nil, false
	}

	if !valid(s.now(), time.Unix(storedAt, 0), time.Duration(ttl)*time.Second) {
		return nil, false
	}
	return value, true
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, stored_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			stored_at = excluded.stored_at,
			ttl_seconds = excluded.ttl_seconds
	`, key, value, s.now().Unix(), int64(ttl/time.Second))
	if err != nil {
		return fmt.Errorf("storing cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key LIKE ?", Namespace+"%")
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Printf("Cleared %d cache entries", n)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (s *SQLiteStore) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE stored_at + ttl_seconds <= ?",
		s.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}
