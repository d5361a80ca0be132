package scheduler

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/evgensr/md5-dedupe/internal/config"
	"github.com/evgensr/md5-dedupe/internal/database"
	"github.com/evgensr/md5-dedupe/internal/dedupe"
	"github.com/evgensr/md5-dedupe/internal/disk"
	"github.com/evgensr/md5-dedupe/internal/limiter"
	"github.com/evgensr/md5-dedupe/internal/metrics"
)

// RunOnce executes a single dedupe cycle and returns its stats
func RunOnce(ctx context.Context, cfg *config.Config, logger *log.Logger, db *database.HistoryDB) (dedupe.Stats, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return dedupe.Stats{}, errors.New("nil config")
	}

	select {
	case <-ctx.Done():
		return dedupe.Stats{}, ctx.Err()
	default:
	}

	var cpuLimiter *limiter.CPULimiter
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		cpuLimiter = limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent)
	}

	start := time.Now()
	metrics.RecordRun()
	updateFreeSpaceMetric(cfg.Root, logger)

	opts := dedupe.Options{
		Root:           cfg.Root,
		Policy:         cfg.KeepPolicy(),
		DryRun:         cfg.DryRun,
		Verbose:        cfg.Verbose,
		FollowSymlinks: cfg.FollowSymlinks,
		ChunkSize:      cfg.Hashing.ChunkSizeBytes,
		Algorithm:      cfg.HashAlgorithm(),
		HashWorkers:    cfg.Hashing.Workers,
		ProtectedPaths: cfg.ProtectedPaths,
		Logger:         logger,
		DB:             db,
	}
	if cpuLimiter != nil {
		opts.Throttle = cpuLimiter.Throttle
	}

	res, err := dedupe.Run(ctx, opts)
	if err != nil {
		metrics.ErrorsTotal.Inc()
		return res.Stats, err
	}

	updateFreeSpaceMetric(cfg.Root, logger)

	elapsed := time.Since(start).Seconds()
	metrics.RunDuration.Observe(elapsed)

	logger.Printf("cycle complete: scanned=%d hashed=%d removed=%d freed=%d bytes warnings=%d duration=%.3fs",
		res.Stats.Scanned, res.Stats.Hashed, res.Stats.Removed, res.Stats.FreedBytes, len(res.Warnings), elapsed)
	return res.Stats, nil
}

// Run executes dedupe cycles on the configured interval until the
// context is cancelled. A signal on trigger starts a cycle immediately.
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger, db *database.HistoryDB, trigger <-chan os.Signal) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	if _, err := RunOnce(ctx, cfg, logger, db); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := RunOnce(ctx, cfg, logger, db); err != nil {
				logger.Printf("error running cycle: %v", err)
			}
		case sig := <-trigger:
			logger.Printf("cycle triggered by %v", sig)
			if _, err := RunOnce(ctx, cfg, logger, db); err != nil {
				logger.Printf("error running cycle: %v", err)
			}
		}
	}
}

// updateFreeSpaceMetric records the root's free-space percentage
func updateFreeSpaceMetric(root string, logger *log.Logger) {
	freePercent, err := disk.GetFreePercent(root)
	if err != nil {
		logger.Printf("failed to get disk usage for %s: %v", root, err)
		return
	}
	metrics.UpdateFreeSpace(root, freePercent)
}
