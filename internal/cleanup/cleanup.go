package cleanup

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/evgensr/md5-dedupe/internal/database"
	"github.com/evgensr/md5-dedupe/internal/fsops"
	"github.com/evgensr/md5-dedupe/internal/metrics"
	"github.com/evgensr/md5-dedupe/internal/resolve"
	"github.com/evgensr/md5-dedupe/internal/safety"
	"github.com/evgensr/md5-dedupe/internal/scan"

	"github.com/prometheus/client_golang/prometheus"
)

// CleanupLogger interface for structured logging in cleanup
type CleanupLogger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// cleanupStdLogger wraps standard log.Logger to implement CleanupLogger interface
type cleanupStdLogger struct {
	*log.Logger
}

func (l *cleanupStdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *cleanupStdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *cleanupStdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for cleanup metrics
type Metrics interface {
	DuplicatesRemovedTotal() prometheus.Counter
	BytesFreedTotal() prometheus.Counter
	WarningsTotal() *prometheus.CounterVec
}

// cleanupMetrics wraps global metrics to implement Metrics interface
type cleanupMetrics struct{}

func (m *cleanupMetrics) DuplicatesRemovedTotal() prometheus.Counter {
	return metrics.DuplicatesRemovedTotal
}

func (m *cleanupMetrics) BytesFreedTotal() prometheus.Counter {
	return metrics.BytesFreedTotal
}

func (m *cleanupMetrics) WarningsTotal() *prometheus.CounterVec {
	return metrics.WarningsTotal
}

// Cleaner removes resolved duplicates (or simulates removal in dry-run)
// and accumulates the removed/freed counters.
type Cleaner struct {
	logger    CleanupLogger
	metrics   Metrics
	deleter   fsops.Deleter
	validator *safety.Validator
	db        *database.HistoryDB
	dryRun    bool
	verbose   bool
	policy    resolve.KeepPolicy
	warnings  []scan.Warning
}

// NewCleaner creates a new Cleaner instance
func NewCleaner(logger *log.Logger, dryRun, verbose bool, policy resolve.KeepPolicy, db *database.HistoryDB) *Cleaner {
	cleanupLogger := &cleanupStdLogger{Logger: logger}
	if logger == nil {
		cleanupLogger.Logger = log.Default()
	}
	return &Cleaner{
		logger:  cleanupLogger,
		metrics: &cleanupMetrics{},
		deleter: fsops.OSDeleter{},
		dryRun:  dryRun,
		verbose: verbose,
		policy:  policy,
		db:      db,
	}
}

// SetDeleter replaces the filesystem deleter (tests)
func (c *Cleaner) SetDeleter(d fsops.Deleter) {
	c.deleter = d
}

// SetValidator installs a safety validator for delete targets
func (c *Cleaner) SetValidator(v *safety.Validator) {
	c.validator = v
}

// Warnings returns the structured warning events collected so far
func (c *Cleaner) Warnings() []scan.Warning {
	return c.warnings
}

// Execute processes every duplicate set in order: the keeper is logged
// and recorded, each duplicate is deleted (or simulated). Per-file
// failures are warnings; the run always continues.
func (c *Cleaner) Execute(sets []resolve.DuplicateSet) (int, int64) {
	removed := 0
	var freed int64

	for _, set := range sets {
		if c.verbose {
			c.logStructured("KEEP", set.Keeper.Path, set.Keeper.Size, set.Digest)
		}
		c.record("KEEP", set.Keeper.Path, set.Keeper.Size, set.Digest, "", "")

		for _, dup := range set.Duplicates {
			if c.validator != nil {
				if err := c.validator.ValidateDeleteTarget(dup.Path); err != nil {
					c.warn(scan.WarnSkip, dup.Path, err)
					c.logStructured("SKIP", dup.Path, dup.Size, set.Digest)
					c.record("SKIP", dup.Path, dup.Size, set.Digest, set.Keeper.Path, err.Error())
					continue
				}
			}

			// Best-effort size at deletion time; stat failure just means
			// this file contributes 0 to freed bytes
			size := statSize(dup.Path)

			if c.dryRun {
				removed++
				freed += size
				if c.verbose {
					c.logStructured("DRY_RUN", dup.Path, size, set.Digest)
				}
				c.record("DRY_RUN", dup.Path, size, set.Digest, set.Keeper.Path, "")
				c.metrics.DuplicatesRemovedTotal().Inc()
				c.metrics.BytesFreedTotal().Add(float64(size))
				continue
			}

			if err := c.deleter.Remove(dup.Path); err != nil {
				// Left in place, never retried
				c.warn(scan.WarnDelete, dup.Path, err)
				c.logStructured("ERROR", dup.Path, size, set.Digest)
				c.record("ERROR", dup.Path, size, set.Digest, set.Keeper.Path, err.Error())
				continue
			}

			removed++
			freed += size
			if c.verbose {
				c.logStructured("DELETE", dup.Path, size, set.Digest)
			}
			c.record("DELETE", dup.Path, size, set.Digest, set.Keeper.Path, "")

			c.metrics.DuplicatesRemovedTotal().Inc()
			c.metrics.BytesFreedTotal().Add(float64(size))
		}
	}

	c.logger.Info("Cleanup complete",
		"duplicate_sets", len(sets),
		"removed", removed,
		"freed_bytes", freed,
		"dry_run", c.dryRun,
	)

	return removed, freed
}

// statSize returns the file's size or 0 when it cannot be determined
func statSize(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (c *Cleaner) warn(kind scan.WarningKind, path string, err error) {
	c.warnings = append(c.warnings, scan.Warning{Kind: kind, Path: path, Err: err})
	c.metrics.WarningsTotal().WithLabelValues(string(kind)).Inc()
	c.logger.Error("Cleanup warning", "kind", string(kind), "path", path, "error", err)
}

// record writes an event to the history database when one is configured
func (c *Cleaner) record(action, path string, size int64, digest, keeper, errMsg string) {
	if c.db == nil {
		return
	}
	if err := c.db.RecordEvent(action, path, size, digest, c.policy.String(), keeper, errMsg); err != nil {
		// Don't fail cleanup if DB write fails
		c.logger.Error("Failed to record to database", "error", err)
	}
}

// logStructured logs with structured format: timestamp, action, path, size, digest
func (c *Cleaner) logStructured(action, path string, size int64, digest string) {
	logEntry := fmt.Sprintf("[%s] %s path=%s size=%d",
		time.Now().UTC().Format(time.RFC3339),
		action,
		path,
		size,
	)

	if digest != "" {
		escaped := strings.ReplaceAll(digest, `"`, `\"`)
		logEntry += fmt.Sprintf(` digest="%s"`, escaped)
	}

	c.logger.Info(logEntry)
}
