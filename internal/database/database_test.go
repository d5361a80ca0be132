package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *HistoryDB {
	t.Helper()
	db, err := NewHistoryDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewHistoryDBCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "history.db")
	db, err := NewHistoryDB(path)
	if err != nil {
		t.Fatalf("NewHistoryDB failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Database file was not created: %v", err)
	}
}

func TestWALModeEnabled(t *testing.T) {
	db := newTestDB(t)

	var mode string
	if err := db.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %s, want wal", mode)
	}
}

func TestRecordEventRoundtrip(t *testing.T) {
	db := newTestDB(t)

	err := db.RecordEvent("DELETE", "/data/dup.txt", 1024,
		"5d41402abc4b2a76b9719d911017c592", "first", "/data/keep.txt", "")
	if err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	events, err := db.GetRecentEvents(10)
	if err != nil {
		t.Fatalf("GetRecentEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	e := events[0]
	if e.Action != "DELETE" {
		t.Errorf("Action = %s", e.Action)
	}
	if e.Path != "/data/dup.txt" || e.FileName != "dup.txt" {
		t.Errorf("Path = %s, FileName = %s", e.Path, e.FileName)
	}
	if e.Size != 1024 {
		t.Errorf("Size = %d", e.Size)
	}
	if e.Digest != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("Digest = %s", e.Digest)
	}
	if e.KeepPolicy != "first" || e.KeeperPath != "/data/keep.txt" {
		t.Errorf("KeepPolicy = %s, KeeperPath = %s", e.KeepPolicy, e.KeeperPath)
	}
	if time.Since(e.Timestamp) > time.Minute {
		t.Errorf("Timestamp too old: %s", e.Timestamp)
	}
}

func TestQueryFilters(t *testing.T) {
	db := newTestDB(t)

	seed := []struct {
		action string
		path   string
		size   int64
		digest string
	}{
		{"KEEP", "/data/a.txt", 100, "aaaa"},
		{"DELETE", "/data/b.txt", 100, "aaaa"},
		{"DELETE", "/data/big.bin", 5000, "bbbb"},
		{"SKIP", "/etc/passwd", 0, "aaaa"},
		{"ERROR", "/data/locked.txt", 100, "cccc"},
	}
	for _, s := range seed {
		if err := db.RecordEvent(s.action, s.path, s.size, s.digest, "first", "/data/a.txt", ""); err != nil {
			t.Fatalf("RecordEvent failed: %v", err)
		}
	}

	deletes, err := db.GetEventsByAction("DELETE")
	if err != nil {
		t.Fatalf("GetEventsByAction failed: %v", err)
	}
	if len(deletes) != 2 {
		t.Errorf("Expected 2 DELETE events, got %d", len(deletes))
	}

	byDigest, err := db.GetEventsByDigest("aaaa")
	if err != nil {
		t.Fatalf("GetEventsByDigest failed: %v", err)
	}
	if len(byDigest) != 3 {
		t.Errorf("Expected 3 events for digest aaaa, got %d", len(byDigest))
	}

	byPath, err := db.GetEventsByPath("/data/%")
	if err != nil {
		t.Fatalf("GetEventsByPath failed: %v", err)
	}
	if len(byPath) != 4 {
		t.Errorf("Expected 4 events under /data, got %d", len(byPath))
	}

	largest, err := db.GetLargestDeletions(1)
	if err != nil {
		t.Fatalf("GetLargestDeletions failed: %v", err)
	}
	if len(largest) != 1 || largest[0].Path != "/data/big.bin" {
		t.Errorf("Unexpected largest deletion: %v", largest)
	}
}

func TestHistoryStats(t *testing.T) {
	db := newTestDB(t)

	for _, s := range []struct {
		action string
		size   int64
	}{
		{"KEEP", 100},
		{"DELETE", 100},
		{"DELETE", 200},
		{"SKIP", 0},
		{"ERROR", 50},
	} {
		if err := db.RecordEvent(s.action, "/data/f.txt", s.size, "dddd", "first", "", ""); err != nil {
			t.Fatalf("RecordEvent failed: %v", err)
		}
	}

	stats, err := db.GetHistoryStats(7)
	if err != nil {
		t.Fatalf("GetHistoryStats failed: %v", err)
	}
	if stats.TotalDeleted != 2 || stats.TotalKept != 1 || stats.TotalSkipped != 1 || stats.TotalErrors != 1 {
		t.Errorf("Counts = deleted:%d kept:%d skipped:%d errors:%d",
			stats.TotalDeleted, stats.TotalKept, stats.TotalSkipped, stats.TotalErrors)
	}
	if stats.TotalSpaceFreed != 300 {
		t.Errorf("TotalSpaceFreed = %d, want 300", stats.TotalSpaceFreed)
	}
	if stats.ByAction["DELETE"] != 2 {
		t.Errorf("ByAction = %v", stats.ByAction)
	}
}

func TestDeleteOldRecords(t *testing.T) {
	db := newTestDB(t)

	if err := db.RecordEvent("DELETE", "/data/f.txt", 10, "eeee", "first", "", ""); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	// Fresh records survive a 30-day cutoff
	removed, err := db.DeleteOldRecords(30)
	if err != nil {
		t.Fatalf("DeleteOldRecords failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed, got %d", removed)
	}

	// A cutoff in the future removes everything
	removed, err = db.DeleteOldRecords(-1)
	if err != nil {
		t.Fatalf("DeleteOldRecords failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
}
