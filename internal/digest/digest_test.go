package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// TestSumMD5KnownValue verifies the rendered digest against a known MD5
func TestSumMD5KnownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	writeFile(t, path, "hello")

	c := NewComputer(0, MD5)
	got, err := c.Sum(path)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}

	want := "5d41402abc4b2a76b9719d911017c592"
	if got != want {
		t.Errorf("Sum = %s, want %s", got, want)
	}
}

// TestSumMultiChunk forces multi-chunk digesting with a tiny injectable
// chunk size and checks the result matches single-chunk hashing
func TestSumMultiChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	writeFile(t, path, strings.Repeat("abcdef", 100))

	whole, err := NewComputer(0, MD5).Sum(path)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}

	chunked, err := NewComputer(7, MD5).Sum(path)
	if err != nil {
		t.Fatalf("Chunked sum failed: %v", err)
	}

	if whole != chunked {
		t.Errorf("Chunk size changed the digest: %s vs %s", whole, chunked)
	}
}

// TestSumDigestWidths verifies fixed-width hex rendering per algorithm
func TestSumDigestWidths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	writeFile(t, path, "some content")

	md5Sum, err := NewComputer(0, MD5).Sum(path)
	if err != nil {
		t.Fatalf("MD5 sum failed: %v", err)
	}
	if len(md5Sum) != 32 {
		t.Errorf("MD5 digest width = %d, want 32", len(md5Sum))
	}

	xxhSum, err := NewComputer(0, XXH64).Sum(path)
	if err != nil {
		t.Fatalf("XXH64 sum failed: %v", err)
	}
	if len(xxhSum) != 16 {
		t.Errorf("XXH64 digest width = %d, want 16", len(xxhSum))
	}
}

// TestSumMissingFile verifies an open failure returns an error
func TestSumMissingFile(t *testing.T) {
	c := NewComputer(0, MD5)
	if _, err := c.Sum(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

// TestParseAlgorithm validates algorithm names
func TestParseAlgorithm(t *testing.T) {
	if algo, err := ParseAlgorithm(""); err != nil || algo != MD5 {
		t.Errorf("ParseAlgorithm(\"\") = %v, %v; want md5 default", algo, err)
	}
	if algo, err := ParseAlgorithm("xxh64"); err != nil || algo != XXH64 {
		t.Errorf("ParseAlgorithm(xxh64) = %v, %v", algo, err)
	}
	if _, err := ParseAlgorithm("sha256"); err == nil {
		t.Error("Expected error for unsupported algorithm")
	}
}
