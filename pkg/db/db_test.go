package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"wikigame/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	d.Close()

	// Re-opening runs migrations again and must be idempotent.
	d, err = db.Init(path)
	if err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	d.Close()
}

func TestPrune(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	now := time.Now()
	rows := []struct {
		key       string
		createdAt time.Time
		expiresAt any
	}{
		{"fresh", now, db.FormatTime(now.Add(time.Hour))},
		{"expired", now, db.FormatTime(now.Add(-time.Minute))},
		{"ancient", now.Add(-48 * time.Hour), nil},
	}
	for _, r := range rows {
		_, err := d.Exec("INSERT INTO cache (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)",
			r.key, []byte("x"), db.FormatTime(r.createdAt), r.expiresAt)
		if err != nil {
			t.Fatalf("insert %s: %v", r.key, err)
		}
	}

	n, err := d.PruneExpired(now)
	if err != nil || n != 1 {
		t.Fatalf("PruneExpired() = %d, %v; want 1, nil", n, err)
	}
	n, err = d.PruneCache(24 * time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("PruneCache() = %d, %v; want 1, nil", n, err)
	}

	var left string
	if err := d.QueryRow("SELECT key FROM cache").Scan(&left); err != nil {
		t.Fatal(err)
	}
	if left != "fresh" {
		t.Errorf("expected only 'fresh' to remain, got %q", left)
	}
}
