package store

import "time"

// App is a row of the scanned application snapshot. The snapshot exists so
// stats and status commands can label identifiers with display names without
// re-walking descriptor directories; the live Index is the source of truth
// during a session.
type App struct {
	ID             string
	Name           string
	Exec           string
	Icon           string
	DescriptorPath string
	Terminal       bool
	Hidden         bool
	ScannedAt      time.Time
}

// LaunchEvent records one successful application launch.
type LaunchEvent struct {
	AppID      string
	LaunchedAt time.Time
}

// AppStats summarizes launch activity for one application.
type AppStats struct {
	AppID    string
	Name     string
	Launches int
	LastUsed *time.Time
}
