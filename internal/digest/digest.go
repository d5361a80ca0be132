package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// DefaultChunkSize is the read buffer size for streaming a file through
// the hash. Injectable so tests can force multi-chunk digesting of tiny
// fixtures.
const DefaultChunkSize = 1 << 20 // 1 MiB

// Algorithm selects the content-signature function
type Algorithm string

const (
	// MD5 is the default. It is a content-equality proxy, not a
	// cryptographic integrity check; only accidental collision
	// probability matters here.
	MD5 Algorithm = "md5"
	// XXH64 is a faster non-cryptographic alternative
	XXH64 Algorithm = "xxh64"
)

// ParseAlgorithm validates an algorithm name from config
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", MD5:
		return MD5, nil
	case XXH64:
		return XXH64, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q (valid: md5, xxh64)", s)
	}
}

// Computer streams files through a fixed-size buffer into an incremental
// hash and renders the digest as a fixed-width lowercase hex string
type Computer struct {
	chunkSize int
	algorithm Algorithm
}

// NewComputer creates a Computer; zero chunkSize and empty algorithm
// select the defaults
func NewComputer(chunkSize int, algorithm Algorithm) *Computer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if algorithm == "" {
		algorithm = MD5
	}
	return &Computer{chunkSize: chunkSize, algorithm: algorithm}
}

// ChunkSize returns the configured read buffer size
func (c *Computer) ChunkSize() int {
	return c.chunkSize
}

// Sum computes the content signature of the file at path.
// A file that cannot be opened or read partway returns an error; the
// caller excludes it from grouping rather than aborting the run.
func (c *Computer) Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := c.newHash()
	buf := make([]byte, c.chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Computer) newHash() hash.Hash {
	if c.algorithm == XXH64 {
		return xxhash.New()
	}
	return md5.New()
}
