package localdb

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDir(filepath.Join(t.TempDir(), "nested"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestOpen(t *testing.T) {
	d := newTestDB(t)

	var journalMode string
	if err := d.SQL().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	var fk int
	if err := d.SQL().QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	for _, table := range []string{"save_attempts", "save_ops", "visits"} {
		var name string
		err := d.SQL().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geodua.db")

	d, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := d.SQL().Exec(`INSERT INTO visits (chapter_id, visited_at) VALUES (1, ?)`, FormatTime(time.Now())); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	d2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = d2.Close() }()

	var n int
	if err := d2.SQL().QueryRow(`SELECT COUNT(*) FROM visits`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("visits = %d, want 1", n)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 8, time.FixedZone("x", 3600))
	got, err := ParseTime(FormatTime(now))
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("ParseTime = %v, want %v", got, now)
	}

	none, err := ParseNullableTime(sql.NullString{})
	if err != nil || none != nil {
		t.Fatalf("ParseNullableTime(null) = %v, %v", none, err)
	}
}
