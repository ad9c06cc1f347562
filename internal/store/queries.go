package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lumen-desktop/lumen/internal/desktop"
)

// App snapshot operations

// ReplaceApps replaces the application snapshot wholesale with the entries
// from a completed scan. The replacement runs in one transaction so readers
// never observe a half-written snapshot.
func (s *Store) ReplaceApps(entries []*desktop.Entry, scannedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM apps"); err != nil {
		return fmt.Errorf("failed to clear app snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO apps (id, name, exec, icon, descriptor_path, terminal, hidden, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := scannedAt.Format(time.RFC3339)
	for _, e := range entries {
		if _, err := stmt.Exec(e.ID, e.Name, e.Exec, e.Icon, e.Path, e.Terminal, e.Hidden, ts); err != nil {
			return fmt.Errorf("failed to insert app %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit app snapshot: %w", err)
	}
	return nil
}

// GetApp retrieves a snapshot row by identifier.
func (s *Store) GetApp(id string) (*App, error) {
	query := `
		SELECT id, name, exec, icon, descriptor_path, terminal, hidden, scanned_at
		FROM apps
		WHERE id = ?
	`

	var app App
	var scannedAt string

	err := s.db.QueryRow(query, id).Scan(
		&app.ID,
		&app.Name,
		&app.Exec,
		&app.Icon,
		&app.DescriptorPath,
		&app.Terminal,
		&app.Hidden,
		&scannedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("app %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app %s: %w", id, err)
	}

	app.ScannedAt, err = time.Parse(time.RFC3339, scannedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scanned_at for %s: %w", id, err)
	}
	return &app, nil
}

// ListApps returns the full snapshot ordered by identifier.
func (s *Store) ListApps() ([]*App, error) {
	query := `
		SELECT id, name, exec, icon, descriptor_path, terminal, hidden, scanned_at
		FROM apps
		ORDER BY id
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	var apps []*App
	for rows.Next() {
		var app App
		var scannedAt string

		if err := rows.Scan(
			&app.ID,
			&app.Name,
			&app.Exec,
			&app.Icon,
			&app.DescriptorPath,
			&app.Terminal,
			&app.Hidden,
			&scannedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan app row: %w", err)
		}

		app.ScannedAt, err = time.Parse(time.RFC3339, scannedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse scanned_at for %s: %w", app.ID, err)
		}
		apps = append(apps, &app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}
	return apps, nil
}

// Launch event operations

// RecordLaunch inserts one launch event for the given application.
func (s *Store) RecordLaunch(appID string, at time.Time) error {
	query := `INSERT INTO launch_events (app_id, launched_at) VALUES (?, ?)`
	if _, err := s.db.Exec(query, appID, at.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record launch for %s: %w", appID, err)
	}
	return nil
}

// UsageCounts returns the number of launch events per application since the
// given time. Applications with no events are absent from the map.
func (s *Store) UsageCounts(since time.Time) (map[string]int, error) {
	query := `
		SELECT app_id, COUNT(*)
		FROM launch_events
		WHERE launched_at >= ?
		GROUP BY app_id
	`

	rows, err := s.db.Query(query, since.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan usage count row: %w", err)
		}
		counts[id] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage counts: %w", err)
	}
	return counts, nil
}

// LastUsed returns the timestamp of the most recent launch event for an
// application. Returns nil if the application has never been launched.
func (s *Store) LastUsed(appID string) (*time.Time, error) {
	query := `
		SELECT launched_at
		FROM launch_events
		WHERE app_id = ?
		ORDER BY launched_at DESC
		LIMIT 1
	`

	var ts string
	err := s.db.QueryRow(query, appID).Scan(&ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last use for %s: %w", appID, err)
	}

	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return &t, nil
}

// PruneEvents removes launch events older than the given cutoff and returns
// the number removed. Called periodically so the usage window stays bounded.
func (s *Store) PruneEvents(before time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM launch_events WHERE launched_at < ?`,
		before.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune launch events: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// EventCount returns the total number of launch events recorded.
func (s *Store) EventCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM launch_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}

// ListStats returns per-application launch statistics since the given time,
// joined with the snapshot so rows carry display names. Applications that
// have events but fell out of the snapshot are reported under their bare
// identifier.
func (s *Store) ListStats(since time.Time) ([]*AppStats, error) {
	query := `
		SELECT e.app_id, COALESCE(a.name, ''), COUNT(*), MAX(e.launched_at)
		FROM launch_events e
		LEFT JOIN apps a ON a.id = e.app_id
		WHERE e.launched_at >= ?
		GROUP BY e.app_id
		ORDER BY COUNT(*) DESC, e.app_id
	`

	rows, err := s.db.Query(query, since.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []*AppStats
	for rows.Next() {
		var st AppStats
		var last string
		if err := rows.Scan(&st.AppID, &st.Name, &st.Launches, &last); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		if st.Name == "" {
			st.Name = st.AppID
		}
		t, err := time.Parse(time.RFC3339, last)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last-used timestamp: %w", err)
		}
		st.LastUsed = &t
		stats = append(stats, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}
	return stats, nil
}
