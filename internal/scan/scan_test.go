package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// TestScanPartitionsBySize verifies files are grouped by byte size in
// enumeration order
func TestScanPartitionsBySize(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "a.txt"), "x")
	writeFile(t, filepath.Join(tmpDir, "b.txt"), "y")
	writeFile(t, filepath.Join(tmpDir, "c.txt"), "yy")

	scanner := NewScanner(nil, false)
	groups, scanned := scanner.Scan(tmpDir)

	if scanned != 3 {
		t.Errorf("Expected 3 scanned files, got %d", scanned)
	}
	if groups.Len() != 2 {
		t.Errorf("Expected 2 size groups, got %d", groups.Len())
	}

	one := groups.Members(1)
	if len(one) != 2 {
		t.Fatalf("Expected 2 files of size 1, got %d", len(one))
	}
	if one[0].Path != filepath.Join(tmpDir, "a.txt") || one[1].Path != filepath.Join(tmpDir, "b.txt") {
		t.Errorf("Size-1 group not in enumeration order: %v", one)
	}

	two := groups.Members(2)
	if len(two) != 1 {
		t.Errorf("Expected 1 file of size 2, got %d", len(two))
	}
}

// TestScanDescendsSubdirectories verifies recursive traversal
func TestScanDescendsSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "sub", "deeper")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	writeFile(t, filepath.Join(tmpDir, "top.txt"), "data")
	writeFile(t, filepath.Join(sub, "nested.txt"), "data")

	scanner := NewScanner(nil, false)
	_, scanned := scanner.Scan(tmpDir)

	if scanned != 2 {
		t.Errorf("Expected 2 scanned files, got %d", scanned)
	}
}

// TestScanSkipsSymlinks proves the follow_symlinks=false contract:
// links are neither traversed nor yielded, and never counted as scanned
func TestScanSkipsSymlinks(t *testing.T) {
	tmpDir := t.TempDir()

	target := filepath.Join(tmpDir, "real.txt")
	writeFile(t, target, "content")

	if err := os.Symlink(target, filepath.Join(tmpDir, "link.txt")); err != nil {
		t.Skipf("Cannot create symlinks on this system: %v", err)
	}

	linkedDir := filepath.Join(tmpDir, "realdir")
	if err := os.Mkdir(linkedDir, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	writeFile(t, filepath.Join(linkedDir, "inside.txt"), "content")
	if err := os.Symlink(linkedDir, filepath.Join(tmpDir, "dirlink")); err != nil {
		t.Fatalf("Failed to create directory symlink: %v", err)
	}

	scanner := NewScanner(nil, false)
	groups, scanned := scanner.Scan(tmpDir)

	// real.txt and realdir/inside.txt only
	if scanned != 2 {
		t.Errorf("Expected 2 scanned files with symlinks skipped, got %d", scanned)
	}
	for _, size := range groups.Sizes() {
		for _, rec := range groups.Members(size) {
			if rec.Path == filepath.Join(tmpDir, "link.txt") {
				t.Errorf("Symlink was enumerated: %s", rec.Path)
			}
		}
	}
}

// TestScanFollowsSymlinks verifies symlinked files and directories are
// included when following is enabled
func TestScanFollowsSymlinks(t *testing.T) {
	tmpDir := t.TempDir()

	target := filepath.Join(tmpDir, "real.txt")
	writeFile(t, target, "content")
	if err := os.Symlink(target, filepath.Join(tmpDir, "link.txt")); err != nil {
		t.Skipf("Cannot create symlinks on this system: %v", err)
	}

	scanner := NewScanner(nil, true)
	_, scanned := scanner.Scan(tmpDir)

	// real.txt plus the link resolving to it
	if scanned != 2 {
		t.Errorf("Expected 2 scanned files with symlinks followed, got %d", scanned)
	}
}

// TestScanUnreadableDirWarns verifies a directory that cannot be listed
// produces a structured warning instead of aborting
func TestScanUnreadableDirWarns(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("Permission checks are bypassed for root")
	}

	tmpDir := t.TempDir()
	locked := filepath.Join(tmpDir, "locked")
	if err := os.Mkdir(locked, 0o000); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	defer os.Chmod(locked, 0o755)

	writeFile(t, filepath.Join(tmpDir, "ok.txt"), "data")

	scanner := NewScanner(nil, false)
	_, scanned := scanner.Scan(tmpDir)

	if scanned != 1 {
		t.Errorf("Expected 1 scanned file, got %d", scanned)
	}

	warnings := scanner.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].Kind != WarnStat || warnings[0].Path != locked {
		t.Errorf("Unexpected warning: %+v", warnings[0])
	}
}
