package database

import (
	"database/sql"
	"time"
)

const eventColumns = `id, timestamp, action, path, file_name, size,
	       digest, keep_policy, keeper_path, error_message`

// GetRecentEvents returns the N most recent events
func (d *HistoryDB) GetRecentEvents(limit int) ([]Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM dedup_events
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return d.queryEvents(query, limit)
}

// GetEventsByAction returns events filtered by action type
func (d *HistoryDB) GetEventsByAction(action string) ([]Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM dedup_events
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return d.queryEvents(query, action)
}

// GetEventsByPath returns events matching a path pattern
func (d *HistoryDB) GetEventsByPath(pathPattern string) ([]Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM dedup_events
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`

	return d.queryEvents(query, pathPattern)
}

// GetEventsByDigest returns every recorded decision about one content
// signature, keepers and duplicates alike
func (d *HistoryDB) GetEventsByDigest(digest string) ([]Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM dedup_events
	WHERE digest = ?
	ORDER BY timestamp DESC
	`

	return d.queryEvents(query, digest)
}

// GetLargestDeletions returns the N largest removed duplicates by size
func (d *HistoryDB) GetLargestDeletions(limit int) ([]Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM dedup_events
	WHERE action = 'DELETE'
	ORDER BY size DESC
	LIMIT ?
	`

	return d.queryEvents(query, limit)
}

// GetTotalSpaceFreed returns total bytes freed in a time range
func (d *HistoryDB) GetTotalSpaceFreed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM dedup_events
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// GetEventCountByAction returns count of operations grouped by action
func (d *HistoryDB) GetEventCountByAction() (map[string]int, error) {
	query := `
	SELECT action, COUNT(*)
	FROM dedup_events
	GROUP BY action
	`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// HistoryStats holds aggregated statistics
type HistoryStats struct {
	TotalDeleted    int
	TotalKept       int
	TotalSkipped    int
	TotalErrors     int
	TotalSpaceFreed int64
	ByAction        map[string]int
	StartDate       time.Time
	EndDate         time.Time
}

// GetHistoryStats returns comprehensive statistics for a time period
func (d *HistoryDB) GetHistoryStats(days int) (*HistoryStats, error) {
	since := time.Now().AddDate(0, 0, -days)
	now := time.Now()

	stats := &HistoryStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'KEEP' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM dedup_events
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalDeleted, &stats.TotalKept, &stats.TotalSkipped, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	stats.TotalSpaceFreed, err = d.GetTotalSpaceFreed(since, now)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = d.GetEventCountByAction()
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days (for cleanup)
func (d *HistoryDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`
		DELETE FROM dedup_events WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryEvents is a helper function to execute queries and scan results
func (d *HistoryDB) queryEvents(query string, args ...interface{}) ([]Event, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var digest, policy, keeper, errMsg sql.NullString

		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Action, &e.Path, &e.FileName,
			&e.Size, &digest, &policy, &keeper, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		e.Digest = digest.String
		e.KeepPolicy = policy.String
		e.KeeperPath = keeper.String
		e.ErrorMessage = errMsg.String

		events = append(events, e)
	}

	return events, rows.Err()
}
