package dedupe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/evgensr/md5-dedupe/internal/cleanup"
	"github.com/evgensr/md5-dedupe/internal/database"
	"github.com/evgensr/md5-dedupe/internal/digest"
	"github.com/evgensr/md5-dedupe/internal/metrics"
	"github.com/evgensr/md5-dedupe/internal/resolve"
	"github.com/evgensr/md5-dedupe/internal/safety"
	"github.com/evgensr/md5-dedupe/internal/scan"
)

// ErrNotDirectory is returned when the scan root does not exist or is
// not a directory. It is a configuration error: nothing has been
// traversed or mutated when it is reported.
var ErrNotDirectory = errors.New("root is not a directory")

// Options configures one deduplication run
type Options struct {
	Root           string
	Policy         resolve.KeepPolicy
	DryRun         bool
	Verbose        bool
	FollowSymlinks bool
	ChunkSize      int
	Algorithm      digest.Algorithm
	HashWorkers    int
	ProtectedPaths []string
	Logger         *log.Logger
	DB             *database.HistoryDB
	Throttle       func() // called between size groups
}

// Result aggregates one run's outcome
type Result struct {
	Stats    Stats
	Warnings []scan.Warning
}

// ValidateRoot checks the scan root before any traversal begins and
// returns it in absolute, cleaned form
func ValidateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return abs, nil
}

// Run executes one full deduplication pass: enumerate and partition by
// size, digest only sizes with two or more members, select keepers, and
// remove (or simulate removing) the duplicates.
//
// Per-file failures surface as warnings in the Result; only an invalid
// root or cancellation aborts the run.
func Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	root, err := ValidateRoot(opts.Root)
	if err != nil {
		return res, err
	}

	if opts.FollowSymlinks {
		logger.Printf("WARNING: following symlinks can traverse cycles; no cycle detection is performed")
	}

	// Scanning + grouping
	scanner := scan.NewScanner(logger, opts.FollowSymlinks)
	groups, scanned := scanner.Scan(root)
	res.Stats.Scanned = scanned
	metrics.FilesScannedTotal.Add(float64(scanned))

	// Hashing + resolving
	computer := digest.NewComputer(opts.ChunkSize, opts.Algorithm)
	resolver := resolve.NewResolver(computer, opts.Policy, logger)
	if opts.Throttle != nil {
		resolver.SetThrottle(opts.Throttle)
	}
	if opts.HashWorkers > 1 {
		pool, err := digest.NewPool(computer, opts.HashWorkers)
		if err != nil {
			return res, fmt.Errorf("create hash pool: %w", err)
		}
		defer pool.Release()
		resolver.SetPool(pool)
		metrics.HashWorkersActive.Set(float64(opts.HashWorkers))
	}

	sets, hashed, err := resolver.Resolve(ctx, groups)
	res.Stats.Hashed = hashed
	metrics.FilesHashedTotal.Add(float64(hashed))
	if err != nil {
		res.Warnings = collectWarnings(scanner, resolver, nil)
		return res, err
	}

	// Deleting
	cleaner := cleanup.NewCleaner(logger, opts.DryRun, opts.Verbose, opts.Policy, opts.DB)
	cleaner.SetValidator(safety.NewValidator([]string{root}, opts.ProtectedPaths))
	removed, freed := cleaner.Execute(sets)
	res.Stats.Removed = removed
	res.Stats.FreedBytes = freed

	res.Warnings = collectWarnings(scanner, resolver, cleaner)
	for _, w := range res.Warnings {
		if w.Kind == scan.WarnStat || w.Kind == scan.WarnRead {
			metrics.RecordWarning(string(w.Kind))
		}
	}

	return res, nil
}

func collectWarnings(s *scan.Scanner, r *resolve.Resolver, c *cleanup.Cleaner) []scan.Warning {
	var out []scan.Warning
	out = append(out, s.Warnings()...)
	out = append(out, r.Warnings()...)
	if c != nil {
		out = append(out, c.Warnings()...)
	}
	return out
}
