package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database for one application.
// Each tracked app owns its own database file, so data never mixes between apps.
type DB struct {
	conn *sql.DB
	path string
}

// PathForApp returns the database file path for an app inside dataDir.
// e.g. "com.spotify.music" -> "<dataDir>/com_spotify_music.db"
func PathForApp(dataDir, appID string) string {
	safe := strings.NewReplacer(".", "_", " ", "_", "/", "_").Replace(appID)
	return filepath.Join(dataDir, safe+".db")
}

// Open creates or opens an app's SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// OpenApp opens the database for an app inside dataDir.
func OpenApp(dataDir, appID string) (*DB, error) {
	return Open(PathForApp(dataDir, appID))
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// ListApps scans dataDir and returns metadata for every app database found.
// Unreadable files are skipped.
func ListApps(dataDir string) ([]AppInfo, error) {
	entries, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var apps []AppInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		db, err := Open(filepath.Join(dataDir, entry.Name()))
		if err != nil {
			continue
		}
		info, err := db.AppInfo()
		db.Close()
		if err != nil || info.AppID == "" {
			continue
		}
		apps = append(apps, info)
	}
	return apps, nil
}

// DeleteApp removes an app's entire database file.
// Returns the number of reviews that were stored, 0 if the app had no data.
func DeleteApp(dataDir, appID string) (int, error) {
	path := PathForApp(dataDir, appID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}

	db, err := Open(path)
	if err != nil {
		return 0, err
	}
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM reviews").Scan(&count); err != nil {
		db.Close()
		return 0, fmt.Errorf("counting reviews: %w", err)
	}
	db.Close()

	// WAL sidecar files go with the main file.
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return count, fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return count, nil
}
