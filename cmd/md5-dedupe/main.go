package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evgensr/md5-dedupe/internal/config"
	"github.com/evgensr/md5-dedupe/internal/database"
	"github.com/evgensr/md5-dedupe/internal/dedupe"
	"github.com/evgensr/md5-dedupe/internal/exitcodes"
	"github.com/evgensr/md5-dedupe/internal/logging"
	"github.com/evgensr/md5-dedupe/internal/metrics"
	"github.com/evgensr/md5-dedupe/internal/resolve"
	"github.com/evgensr/md5-dedupe/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to optional configuration file")
	root := flag.String("root", ".", "Root directory to scan for duplicates")
	keep := flag.String("keep", "first", "Which file to keep in a duplicate set (first|oldest|newest)")
	dryRun := flag.Bool("dry-run", false, "Report what would be deleted without deleting anything")
	verbose := flag.Bool("verbose", false, "Per-decision progress output (KEEP/DUPE lines, warnings)")
	followSymlinks := flag.Bool("follow-symlinks", false, "Follow symlinks (careful: can traverse cycles)")
	daemon := flag.Bool("daemon", false, "Keep running, deduplicating on the configured interval")
	flag.Parse()

	// Load configuration; flags set on the command line override it
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to load config: %v\n", err)
			os.Exit(exitcodes.InvalidConfig)
		}
	} else {
		cfg = config.Default()
	}
	applyFlagOverrides(cfg, *root, *keep, *dryRun, *verbose, *followSymlinks)

	// Validate policy and root before touching anything
	if _, err := resolve.ParseKeepPolicy(cfg.Keep); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitcodes.InvalidConfig)
	}
	absRoot, err := dedupe.ValidateRoot(cfg.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitcodes.InvalidConfig)
	}
	cfg.Root = absRoot

	logger := logging.NewWithConfig(cfg)

	logger.Printf("md5-dedupe starting: root=%s keep=%s dry_run=%v follow_symlinks=%v",
		cfg.Root, cfg.Keep, cfg.DryRun, cfg.FollowSymlinks)
	if cfg.DryRun {
		logger.Println("DRY RUN MODE: No files will be deleted")
	}

	// Initialize metrics (Prometheus)
	metrics.Init()
	trigger := make(chan os.Signal, 1)
	metrics.SetTriggerChannel(trigger)
	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	// Initialize database for deletion history
	var db *database.HistoryDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening history database: %s", cfg.DatabasePath)
		db, err = database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if *daemon {
		logger.Printf("Daemon mode: deduplicating every %s", cfg.Interval())
		if err := scheduler.Run(ctx, cfg, logger, db, trigger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("ERROR: Scheduler failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		logger.Println("md5-dedupe stopped")
		return
	}

	stats, err := scheduler.RunOnce(ctx, cfg, logger, db)
	if err != nil {
		logger.Printf("ERROR: Dedupe failed: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}

	fmt.Printf("Done. Scanned: %d, hashed: %d, duplicates removed: %d, freed: %s\n",
		stats.Scanned, stats.Hashed, stats.Removed, dedupe.HumanBytes(stats.FreedBytes))
	if cfg.DryRun {
		fmt.Println("(Dry run: nothing was deleted.)")
	}
}

// applyFlagOverrides lets explicitly passed flags win over the config file
func applyFlagOverrides(cfg *config.Config, root, keep string, dryRun, verbose, followSymlinks bool) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["root"] {
		cfg.Root = root
	}
	if set["keep"] {
		cfg.Keep = keep
	}
	if set["dry-run"] {
		cfg.DryRun = dryRun
	}
	if set["verbose"] {
		cfg.Verbose = verbose
	}
	if set["follow-symlinks"] {
		cfg.FollowSymlinks = followSymlinks
	}
}
