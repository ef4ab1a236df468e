package database

import "database/sql"

// InsertRun records a completed analysis run.
func (db *DB) InsertRun(run AnalysisRun) error {
	force := 0
	if run.ForceRerun {
		force = 1
	}
	_, err := db.conn.Exec(
		`INSERT INTO analysis_runs
		(run_id, start_date, end_date, months_analyzed, months_skipped, quarters, years, force_rerun)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartDate, run.EndDate,
		run.MonthsAnalyzed, run.MonthsSkipped, run.Quarters, run.Years, force,
	)
	return err
}

// LastRun returns the most recent analysis run, or nil if none exist.
func (db *DB) LastRun() (*AnalysisRun, error) {
	row := db.conn.QueryRow(
		`SELECT run_id, start_date, end_date, months_analyzed, months_skipped,
		quarters, years, force_rerun, finished_at
		FROM analysis_runs ORDER BY finished_at DESC, run_id DESC LIMIT 1`,
	)

	var run AnalysisRun
	var force int
	err := row.Scan(&run.RunID, &run.StartDate, &run.EndDate,
		&run.MonthsAnalyzed, &run.MonthsSkipped, &run.Quarters, &run.Years,
		&force, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.ForceRerun = force != 0
	return &run, nil
}

// GetStats returns aggregate statistics for the app's database.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM reviews", &s.TotalReviews},
		{"SELECT COUNT(*) FROM reviews WHERE text IS NOT NULL AND TRIM(text) != ''", &s.ReviewsWithText},
		{"SELECT COUNT(*) FROM period_analysis WHERE period_type = 'monthly'", &s.MonthlyPeriods},
		{"SELECT COUNT(*) FROM themes", &s.Themes},
		{"SELECT COUNT(*) FROM analysis_runs", &s.Runs},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}
