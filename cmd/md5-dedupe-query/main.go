package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/evgensr/md5-dedupe/internal/database"
	"github.com/evgensr/md5-dedupe/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "/var/lib/md5-dedupe/history.db", "Path to dedupe history database")
	recent := flag.Int("recent", 0, "Show N most recent events")
	stats := flag.Bool("stats", false, "Show deduplication statistics")
	action := flag.String("action", "", "Filter by action (KEEP, DELETE, DRY_RUN, SKIP, ERROR)")
	digest := flag.String("digest", "", "Show every decision about one content digest")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest removed duplicates")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := database.NewHistoryDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *digest != "":
		showByDigest(db, *digest, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  md5-dedupe-query --recent 10          # Show 10 most recent events")
		fmt.Println("  md5-dedupe-query --stats              # Show deduplication statistics")
		fmt.Println("  md5-dedupe-query --action DELETE      # Show removed duplicates only")
		fmt.Println("  md5-dedupe-query --digest <md5>       # Show history of one digest")
		fmt.Println("  md5-dedupe-query --path '/data/%'     # Show events under /data")
		fmt.Println("  md5-dedupe-query --largest 10         # Show 10 largest removals")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.HistoryDB, days int, jsonOutput bool) {
	stats, err := db.GetHistoryStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Deduplication Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Duplicates Removed: %d\n", stats.TotalDeleted)
	fmt.Printf("Keepers Recorded:   %d\n", stats.TotalKept)
	fmt.Printf("Skipped:            %d\n", stats.TotalSkipped)
	fmt.Printf("Errors:             %d\n", stats.TotalErrors)
	fmt.Printf("Space Freed:        %s\n\n", formatBytes(stats.TotalSpaceFreed))

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *database.HistoryDB, limit int, jsonOutput bool) {
	events, err := db.GetRecentEvents(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent events: %v", err)
	}
	output(events, jsonOutput)
}

func showByAction(db *database.HistoryDB, action string, jsonOutput bool) {
	events, err := db.GetEventsByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}
	output(events, jsonOutput)
}

func showByDigest(db *database.HistoryDB, digest string, jsonOutput bool) {
	events, err := db.GetEventsByDigest(digest)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by digest: %v", err)
	}
	output(events, jsonOutput)
}

func showByPath(db *database.HistoryDB, pattern string, jsonOutput bool) {
	events, err := db.GetEventsByPath(pattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}
	output(events, jsonOutput)
}

func showLargest(db *database.HistoryDB, limit int, jsonOutput bool) {
	events, err := db.GetLargestDeletions(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to query largest deletions: %v", err)
	}
	output(events, jsonOutput)
}

func output(events []database.Event, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.MarshalIndent(events, "", "  ")
		fmt.Println(string(data))
		return
	}
	printEvents(events)
}

func printEvents(events []database.Event) {
	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tACTION\tSIZE\tDIGEST\tPATH")
	for _, e := range events {
		digest := e.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Action,
			formatBytes(e.Size),
			digest,
			e.Path,
		)
	}
	w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
