package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dedupe run metrics
var (
	// RunDuration tracks how long dedupe cycles take
	RunDuration prometheus.Histogram

	// FilesScannedTotal tracks files successfully statted during enumeration
	FilesScannedTotal prometheus.Counter

	// FilesHashedTotal tracks successful digest computations
	FilesHashedTotal prometheus.Counter

	// DuplicatesRemovedTotal tracks duplicates removed (or simulated in dry-run)
	DuplicatesRemovedTotal prometheus.Counter

	// BytesFreedTotal tracks total bytes freed across all runs
	BytesFreedTotal prometheus.Counter

	// LastRunTimestamp records Unix timestamp of the last run
	LastRunTimestamp prometheus.Gauge

	// WarningsTotal tracks non-fatal per-file failures by kind
	WarningsTotal *prometheus.CounterVec

	// ErrorsTotal tracks run-level errors
	ErrorsTotal prometheus.Counter

	// FreeSpacePercent tracks free disk space for the scan root
	FreeSpacePercent *prometheus.GaugeVec

	// HashWorkersActive tracks the configured digest worker count
	HashWorkersActive prometheus.Gauge
)

// initDedupeMetrics initializes all dedupe metrics
func initDedupeMetrics() {
	RunDuration = NewDurationHistogram(
		"mddedupe_run_duration_seconds",
		"Duration of dedupe cycles in seconds.",
	)

	FilesScannedTotal = NewCounter(
		"mddedupe_files_scanned_total",
		"Total number of files scanned.",
	)

	FilesHashedTotal = NewCounter(
		"mddedupe_files_hashed_total",
		"Total number of file digests computed.",
	)

	DuplicatesRemovedTotal = NewCounter(
		"mddedupe_duplicates_removed_total",
		"Total number of duplicate files removed (counts dry-run simulations).",
	)

	BytesFreedTotal = NewBytesCounter(
		"mddedupe_bytes_freed_total",
		"Total bytes freed by duplicate removal.",
	)

	LastRunTimestamp = NewGauge(
		"mddedupe_last_run_timestamp",
		"Timestamp of the last dedupe run (Unix epoch seconds).",
	)

	WarningsTotal = NewCounterVec(
		"mddedupe_warnings_total",
		"Total non-fatal per-file warnings by kind (stat, read, delete, skip).",
		[]string{"kind"},
	)

	ErrorsTotal = NewCounter(
		"mddedupe_errors_total",
		"Total run-level errors.",
	)

	FreeSpacePercent = NewGaugeVec(
		"mddedupe_free_space_percent",
		"Free disk space percentage for the scan root.",
		[]string{"path"},
	)

	HashWorkersActive = NewGauge(
		"mddedupe_hash_workers",
		"Configured number of concurrent digest workers.",
	)
}

// registerDedupeMetrics registers all metrics with Prometheus
func registerDedupeMetrics() {
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(FilesScannedTotal)
	prometheus.MustRegister(FilesHashedTotal)
	prometheus.MustRegister(DuplicatesRemovedTotal)
	prometheus.MustRegister(BytesFreedTotal)
	prometheus.MustRegister(LastRunTimestamp)
	prometheus.MustRegister(WarningsTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(FreeSpacePercent)
	prometheus.MustRegister(HashWorkersActive)
}

// RecordRun updates the last run timestamp to current time
func RecordRun() {
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordWarning increments the warning counter for a kind
func RecordWarning(kind string) {
	WarningsTotal.WithLabelValues(kind).Inc()
}

// UpdateFreeSpace records the free-space percentage for a path
func UpdateFreeSpace(path string, percent float64) {
	FreeSpacePercent.WithLabelValues(path).Set(percent)
}
