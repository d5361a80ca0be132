package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestPoolMatchesSequential verifies the pool produces the same
// index-aligned results as sequential hashing, whatever the completion
// order
func TestPoolMatchesSequential(t *testing.T) {
	tmpDir := t.TempDir()
	computer := NewComputer(0, MD5)

	var paths []string
	for i := 0; i < 20; i++ {
		path := filepath.Join(tmpDir, fmt.Sprintf("file%02d.txt", i))
		content := fmt.Sprintf("content-%d", i%5)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		paths = append(paths, path)
	}

	pool, err := NewPool(computer, 4)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	defer pool.Release()

	results := pool.SumAll(paths)
	if len(results) != len(paths) {
		t.Fatalf("Expected %d results, got %d", len(paths), len(results))
	}

	for i, res := range results {
		if res.Err != nil {
			t.Errorf("Unexpected error for %s: %v", res.Path, res.Err)
			continue
		}
		if res.Path != paths[i] {
			t.Errorf("Result %d not index-aligned: got %s, want %s", i, res.Path, paths[i])
		}
		want, err := computer.Sum(paths[i])
		if err != nil {
			t.Fatalf("Sequential sum failed: %v", err)
		}
		if res.Digest != want {
			t.Errorf("Pool digest mismatch for %s: %s vs %s", res.Path, res.Digest, want)
		}
	}
}

// TestPoolReportsErrors verifies a missing file settles as an error
// result without disturbing the others
func TestPoolReportsErrors(t *testing.T) {
	tmpDir := t.TempDir()
	computer := NewComputer(0, MD5)

	good := filepath.Join(tmpDir, "good.txt")
	if err := os.WriteFile(good, []byte("ok"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	missing := filepath.Join(tmpDir, "missing.txt")

	pool, err := NewPool(computer, 2)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	defer pool.Release()

	results := pool.SumAll([]string{good, missing})
	if results[0].Err != nil {
		t.Errorf("Expected success for %s, got %v", good, results[0].Err)
	}
	if results[1].Err == nil {
		t.Errorf("Expected error for %s, got nil", missing)
	}
}
