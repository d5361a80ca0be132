package safety

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDeleteTarget(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	inside := filepath.Join(tmpDir, "dup.txt")
	if err := os.WriteFile(inside, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	v := NewValidator([]string{tmpDir}, nil)

	cases := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"inside allowed root", inside, nil},
		{"missing but inside root", filepath.Join(tmpDir, "gone.txt"), nil},
		{"root filesystem", "/", ErrProtectedPath},
		{"etc", "/etc/passwd", ErrProtectedPath},
		{"usr", "/usr/bin/ls", ErrProtectedPath},
		{"own state directory", "/var/lib/md5-dedupe/history.db", ErrProtectedPath},
		{"own config directory", "/etc/md5-dedupe/config.yaml", ErrProtectedPath},
		{"outside allowed roots", "/home/someone/file.txt", ErrOutsideAllowed},
		{"traversal inside root", tmpDir + "/sub/../dup.txt", ErrTraversal},
		{"empty path", "", ErrInvalidPath},
		{"whitespace path", "   ", ErrInvalidPath},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateDeleteTarget(tc.path)
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDeleteTarget(%q) = %v, want nil", tc.path, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateDeleteTarget(%q) = %v, want %v", tc.path, err, tc.wantErr)
			}
		})
	}
}

// TestValidateDeleteTargetSymlinkEscape verifies a symlink pointing out
// of the allowed roots is rejected even though its own path is inside
func TestValidateDeleteTargetSymlinkEscape(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	outside, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}
	target := filepath.Join(outside, "target.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create target: %v", err)
	}

	link := filepath.Join(tmpDir, "sneaky.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("Cannot create symlinks on this system: %v", err)
	}

	v := NewValidator([]string{tmpDir}, nil)
	if err := v.ValidateDeleteTarget(link); !errors.Is(err, ErrSymlinkEscape) {
		t.Errorf("ValidateDeleteTarget(symlink out of root) = %v, want ErrSymlinkEscape", err)
	}
}

func TestExtraProtectedPaths(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}
	snapshots := filepath.Join(tmpDir, ".snapshots")

	v := NewValidator([]string{tmpDir}, []string{snapshots})

	if err := v.ValidateDeleteTarget(filepath.Join(snapshots, "daily", "f.txt")); !errors.Is(err, ErrProtectedPath) {
		t.Errorf("Expected ErrProtectedPath under extra protected path, got %v", err)
	}
	if err := v.ValidateDeleteTarget(filepath.Join(tmpDir, "normal.txt")); err != nil {
		t.Errorf("Expected nil outside protected path, got %v", err)
	}
}

func TestHasPathPrefix(t *testing.T) {
	cases := []struct {
		path, prefix string
		want         bool
	}{
		{"/data/files/a.txt", "/data/files", true},
		{"/data/files", "/data/files", true},
		{"/data/files2/a.txt", "/data/files", false},
		{"/data", "/data/files", false},
		{"/", "/", true},
	}
	for _, tc := range cases {
		if got := hasPathPrefix(tc.path, tc.prefix); got != tc.want {
			t.Errorf("hasPathPrefix(%q, %q) = %v, want %v", tc.path, tc.prefix, got, tc.want)
		}
	}
}
