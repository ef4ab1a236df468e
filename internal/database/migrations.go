package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS reviews (
    review_id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    rating INTEGER NOT NULL,
    text TEXT,
    date TEXT NOT NULL,
    username TEXT,
    thumbs_up INTEGER DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS period_analysis (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    period_type TEXT NOT NULL,
    period_label TEXT NOT NULL,
    period_start TEXT NOT NULL,
    period_end TEXT NOT NULL,
    total_reviews INTEGER DEFAULT 0,
    rating_1 INTEGER DEFAULT 0,
    rating_2 INTEGER DEFAULT 0,
    rating_3 INTEGER DEFAULT 0,
    rating_4 INTEGER DEFAULT 0,
    rating_5 INTEGER DEFAULT 0,
    avg_rating REAL DEFAULT 0.0,
    reviews_with_text INTEGER DEFAULT 0,
    reviews_without_text INTEGER DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now')),
    UNIQUE(period_type, period_label)
);

CREATE TABLE IF NOT EXISTS themes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    period_type TEXT NOT NULL,
    period_label TEXT NOT NULL,
    theme TEXT NOT NULL,
    sentiment TEXT NOT NULL CHECK(sentiment IN ('positive', 'negative')),
    mention_count INTEGER DEFAULT 0,
    sample_reviews TEXT,
    confidence REAL DEFAULT 0.0,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS app_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_runs (
    run_id TEXT PRIMARY KEY,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    months_analyzed INTEGER DEFAULT 0,
    months_skipped INTEGER DEFAULT 0,
    quarters INTEGER DEFAULT 0,
    years INTEGER DEFAULT 0,
    force_rerun INTEGER DEFAULT 0,
    finished_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reviews_date ON reviews(date);
CREATE INDEX IF NOT EXISTS idx_period_analysis_period ON period_analysis(period_type, period_label);
CREATE INDEX IF NOT EXISTS idx_themes_period ON themes(period_type, period_label);
CREATE INDEX IF NOT EXISTS idx_runs_finished ON analysis_runs(finished_at);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
