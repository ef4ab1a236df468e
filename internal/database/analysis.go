package database

import "database/sql"

// UpsertPeriodAnalysis inserts or replaces the analysis row for a period.
// Uniqueness is (period_type, period_label): recomputing overwrites, never duplicates.
func (db *DB) UpsertPeriodAnalysis(pa PeriodAnalysis) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO period_analysis
		(period_type, period_label, period_start, period_end,
		 total_reviews, rating_1, rating_2, rating_3, rating_4, rating_5,
		 avg_rating, reviews_with_text, reviews_without_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pa.PeriodType, pa.PeriodLabel, pa.PeriodStart, pa.PeriodEnd,
		pa.TotalReviews, pa.Rating1, pa.Rating2, pa.Rating3, pa.Rating4, pa.Rating5,
		pa.AvgRating, pa.ReviewsWithText, pa.ReviewsWithoutText,
	)
	return err
}

// GetPeriodAnalysis returns the analysis row for one period, or nil if absent.
func (db *DB) GetPeriodAnalysis(periodType, periodLabel string) (*PeriodAnalysis, error) {
	row := db.conn.QueryRow(
		selectPeriodAnalysis+" WHERE period_type = ? AND period_label = ?",
		periodType, periodLabel,
	)
	pa, err := scanPeriodAnalysis(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pa, nil
}

// GetPeriodAnalyses returns all analysis rows of one period type,
// ordered chronologically by period start.
func (db *DB) GetPeriodAnalyses(periodType string) ([]PeriodAnalysis, error) {
	rows, err := db.conn.Query(
		selectPeriodAnalysis+" WHERE period_type = ? ORDER BY period_start ASC",
		periodType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []PeriodAnalysis
	for rows.Next() {
		pa, err := scanPeriodAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *pa)
	}
	return analyses, rows.Err()
}

// GetAnalyzedMonths returns the monthly period labels that already have an
// analysis row, ordered chronologically. This is the incremental-run watermark.
func (db *DB) GetAnalyzedMonths() ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT period_label FROM period_analysis WHERE period_type = 'monthly' ORDER BY period_start ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// ClearAnalysis deletes all analysis and theme rows but keeps raw reviews.
// The watermark metadata is reset in the same transaction so a failed purge
// never leaves the completion flag pointing at deleted data.
func (db *DB) ClearAnalysis() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM period_analysis"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM themes"); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"UPDATE app_metadata SET value = '' WHERE key = ?", MetaLastAnalyzedDate,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"UPDATE app_metadata SET value = 'false' WHERE key = ?", MetaAnalysisComplete,
	); err != nil {
		return err
	}
	return tx.Commit()
}

const selectPeriodAnalysis = `SELECT id, period_type, period_label, period_start, period_end,
	total_reviews, rating_1, rating_2, rating_3, rating_4, rating_5,
	avg_rating, reviews_with_text, reviews_without_text, created_at
	FROM period_analysis`

func scanPeriodAnalysis(scan func(...any) error) (*PeriodAnalysis, error) {
	var pa PeriodAnalysis
	if err := scan(&pa.ID, &pa.PeriodType, &pa.PeriodLabel, &pa.PeriodStart, &pa.PeriodEnd,
		&pa.TotalReviews, &pa.Rating1, &pa.Rating2, &pa.Rating3, &pa.Rating4, &pa.Rating5,
		&pa.AvgRating, &pa.ReviewsWithText, &pa.ReviewsWithoutText, &pa.CreatedAt); err != nil {
		return nil, err
	}
	return &pa, nil
}
