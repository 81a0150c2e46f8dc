package cache

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"wikigame/pkg/db"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// SQLiteCache implements Cacher using pkg/db. Entries expire after ttl.
type SQLiteCache struct {
	db  *db.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache creates a new cache. A non-positive ttl keeps entries until pruned.
func NewSQLiteCache(d *db.DB, ttl time.Duration) *SQLiteCache {
	return &SQLiteCache{db: d, ttl: ttl, now: time.Now}
}

func (c *SQLiteCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var (
		val     []byte
		expires sql.NullString
	)
	err := c.db.QueryRowContext(ctx, "SELECT value, expires_at FROM cache WHERE key = ?", key).Scan(&val, &expires)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	if expires.Valid && expires.String < db.FormatTime(c.now()) {
		return nil, false
	}
	return val, true
}

func (c *SQLiteCache) SetCache(ctx context.Context, key string, val []byte) error {
	now := c.now()
	var expires any
	if c.ttl > 0 {
		expires = db.FormatTime(now.Add(c.ttl))
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, val, db.FormatTime(now), expires)
	return err
}

// Nop is a Cacher that never stores anything.
type Nop struct{}

func (Nop) GetCache(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) SetCache(context.Context, string, []byte) error  { return nil }
