package database

import (
	"database/sql"
	"strings"
)

// InsertReview inserts a review. Returns true if it was inserted,
// false if a review with the same ID already exists (idempotent re-ingestion).
func (db *DB) InsertReview(r Review) (bool, error) {
	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO reviews (review_id, source, rating, text, date, username, thumbs_up)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ReviewID, r.Source, r.Rating, r.Text, r.Date, r.Username, r.ThumbsUp,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetReviewsForPeriod returns reviews within [start, end] inclusive,
// ordered oldest first. Dates are YYYY-MM-DD strings.
func (db *DB) GetReviewsForPeriod(start, end string) ([]Review, error) {
	rows, err := db.conn.Query(
		`SELECT review_id, source, rating, text, date, username, thumbs_up, created_at
		FROM reviews WHERE date >= ? AND date <= ? ORDER BY date ASC, review_id ASC`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

// CountReviewsForPeriod counts reviews within [start, end] without loading them.
func (db *DB) CountReviewsForPeriod(start, end string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM reviews WHERE date >= ? AND date <= ?", start, end,
	).Scan(&count)
	return count, err
}

// CountReviews returns the total number of stored reviews.
func (db *DB) CountReviews() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM reviews").Scan(&count)
	return count, err
}

// ReviewDateRange returns the earliest and latest review dates.
// Both are empty strings when no reviews are stored.
func (db *DB) ReviewDateRange() (first, last string, err error) {
	var minDate, maxDate sql.NullString
	err = db.conn.QueryRow("SELECT MIN(date), MAX(date) FROM reviews").Scan(&minDate, &maxDate)
	if err != nil {
		return "", "", err
	}
	return minDate.String, maxDate.String, nil
}

func scanReviews(rows *sql.Rows) ([]Review, error) {
	var reviews []Review
	for rows.Next() {
		var r Review
		var username sql.NullString
		if err := rows.Scan(&r.ReviewID, &r.Source, &r.Rating, &r.Text,
			&r.Date, &username, &r.ThumbsUp, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Username = username.String
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// HasText reports whether the review carries non-empty text after trimming.
func (r Review) HasText() bool {
	return r.Text != nil && strings.TrimSpace(*r.Text) != ""
}
