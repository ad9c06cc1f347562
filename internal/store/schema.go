package store

// launch_events carries no foreign key to apps: events must survive a rescan
// in which an application is temporarily absent (e.g. a package being
// upgraded), so the identifier is a free-standing key.
const schema = `
CREATE TABLE IF NOT EXISTS apps (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    exec TEXT NOT NULL,
    icon TEXT,
    descriptor_path TEXT NOT NULL,
    terminal BOOLEAN NOT NULL DEFAULT 0,
    hidden BOOLEAN NOT NULL DEFAULT 0,
    scanned_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS launch_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    app_id TEXT NOT NULL,
    launched_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_launch_app ON launch_events(app_id);
CREATE INDEX IF NOT EXISTS idx_launch_time ON launch_events(launched_at);
`
