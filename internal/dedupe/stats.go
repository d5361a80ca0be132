package dedupe

import "fmt"

// Stats are the run-scoped counters returned to the caller. In dry-run
// mode Removed and FreedBytes report what would have happened.
type Stats struct {
	Scanned    int
	Hashed     int
	Removed    int
	FreedBytes int64
}

// Add merges two partial results. Merging is commutative and
// associative so parallel stages can combine per-group stats without a
// shared counter.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Scanned:    s.Scanned + o.Scanned,
		Hashed:     s.Hashed + o.Hashed,
		Removed:    s.Removed + o.Removed,
		FreedBytes: s.FreedBytes + o.FreedBytes,
	}
}

// HumanBytes renders a byte count for the run summary
func HumanBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	x := float64(n)
	i := 0
	for x >= 1024 && i < len(units)-1 {
		x /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", x, units[i])
}
