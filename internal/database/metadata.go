package database

import (
	"database/sql"
	"strconv"
)

// InitMetadata seeds the app_metadata table for a new app.
// Safe to call repeatedly: existing keys are left untouched.
func (db *DB) InitMetadata(appID, appName, store string) error {
	defaults := [][2]string{
		{MetaAppID, appID},
		{MetaAppName, appName},
		{MetaStore, store},
		{MetaLastAnalyzedDate, ""},
		{MetaLastAnalyzedWeek, ""},
		{MetaTotalReviewsStored, "0"},
		{MetaAnalysisComplete, "false"},
	}
	for _, kv := range defaults {
		if _, err := db.conn.Exec(
			"INSERT OR IGNORE INTO app_metadata (key, value) VALUES (?, ?)",
			kv[0], kv[1],
		); err != nil {
			return err
		}
	}
	return nil
}

// SetMetadata stores a single metadata value, creating the key if needed.
func (db *DB) SetMetadata(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO app_metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMetadata returns one metadata value, or empty string if the key is absent.
func (db *DB) GetMetadata(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(
		"SELECT value FROM app_metadata WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Metadata returns all metadata for the app as a map.
func (db *DB) Metadata() (map[string]string, error) {
	rows, err := db.conn.Query("SELECT key, value FROM app_metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

// AppInfo reads the stored metadata into an AppInfo summary.
func (db *DB) AppInfo() (AppInfo, error) {
	meta, err := db.Metadata()
	if err != nil {
		return AppInfo{}, err
	}
	total, _ := strconv.Atoi(meta[MetaTotalReviewsStored])
	return AppInfo{
		AppID:            meta[MetaAppID],
		AppName:          meta[MetaAppName],
		Store:            meta[MetaStore],
		LastAnalyzedDate: meta[MetaLastAnalyzedDate],
		TotalReviews:     total,
		AnalysisComplete: meta[MetaAnalysisComplete] == "true",
	}, nil
}
