package database

import "encoding/json"

// ReplaceThemes replaces all themes for one period with a fresh set.
// Old rows for the period are deleted first so no stale partial themes
// survive a re-analysis. Runs in a single transaction.
func (db *DB) ReplaceThemes(periodType, periodLabel string, themes []Theme) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM themes WHERE period_type = ? AND period_label = ?",
		periodType, periodLabel,
	); err != nil {
		return err
	}

	for _, t := range themes {
		samples, err := json.Marshal(t.SampleReviews)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO themes
			(period_type, period_label, theme, sentiment, mention_count, sample_reviews, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			periodType, periodLabel, t.Name, t.Sentiment, t.MentionCount,
			string(samples), t.Confidence,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetThemes returns the themes for one period, ordered by mention count descending.
func (db *DB) GetThemes(periodType, periodLabel string) ([]Theme, error) {
	rows, err := db.conn.Query(
		`SELECT id, period_type, period_label, theme, sentiment, mention_count,
		sample_reviews, confidence, created_at
		FROM themes WHERE period_type = ? AND period_label = ?
		ORDER BY mention_count DESC, theme ASC`,
		periodType, periodLabel,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []Theme
	for rows.Next() {
		var t Theme
		var samples *string
		if err := rows.Scan(&t.ID, &t.PeriodType, &t.PeriodLabel, &t.Name, &t.Sentiment,
			&t.MentionCount, &samples, &t.Confidence, &t.CreatedAt); err != nil {
			return nil, err
		}
		if samples != nil && *samples != "" {
			// Sample quotes are stored as a JSON array; a corrupt value
			// degrades to no quotes rather than failing the read.
			json.Unmarshal([]byte(*samples), &t.SampleReviews)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// CountThemes returns the total number of stored theme rows.
func (db *DB) CountThemes() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM themes").Scan(&count)
	return count, err
}
