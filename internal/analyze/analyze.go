// Package analyze drives the incremental period-analysis run for one app:
// month-by-month extraction for unanalyzed months, then quarterly and yearly
// summaries derived from the stored monthly results.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/TobiSchelling/seagull/internal/database"
	"github.com/TobiSchelling/seagull/internal/llm"
	"github.com/TobiSchelling/seagull/internal/period"
	"github.com/TobiSchelling/seagull/internal/stats"
	"github.com/TobiSchelling/seagull/internal/themes"
)

// Progress reports one completed unit of work (a month, quarter, week or year).
// The total is fixed at the start of the run.
type Progress func(current, total int, message string)

// Options configures a single analysis run.
type Options struct {
	StartDate     string
	EndDate       string
	ForceRerun    bool
	IncludeWeekly bool
	Progress      Progress
}

// Result summarizes a completed run.
type Result struct {
	RunID          string
	MonthsAnalyzed int
	MonthsSkipped  int
	Quarters       int
	Years          int
	Weeks          int
}

// Analyzer runs the analysis pipeline against one app's database.
type Analyzer struct {
	db        *database.DB
	extractor *themes.Extractor
	minSample int
}

// New creates an analyzer. The provider may be nil, in which case months are
// summarized statistically but no themes are extracted. A temperature of 0 or
// less selects the extractor's default.
func New(db *database.DB, provider llm.Provider, minSample int, temperature float64) *Analyzer {
	if minSample <= 0 {
		minSample = themes.DefaultMinSample
	}
	var extractor *themes.Extractor
	if provider != nil {
		extractor = themes.NewExtractor(provider, minSample, temperature)
	}
	return &Analyzer{db: db, extractor: extractor, minSample: minSample}
}

// Run executes the full analysis for [StartDate, EndDate].
//
// Months already covered by the watermark are skipped unless ForceRerun is set,
// which first purges all prior analysis rows. Quarters and years are always
// recomputed: their statistics come straight from stored reviews and their
// themes from rolling up the persisted monthly themes, so no extra model calls
// happen. The run is strictly sequential; a model failure costs one month its
// themes, while storage and partition failures abort the run before any
// watermark update.
func (a *Analyzer) Run(ctx context.Context, opts Options) (*Result, error) {
	months, err := period.Months(opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, err
	}
	quarters, err := period.Quarters(opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, err
	}
	years, err := period.Years(opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, err
	}
	var weeks []period.Range
	if opts.IncludeWeekly {
		weeks, err = period.Weeks(opts.StartDate, opts.EndDate)
		if err != nil {
			return nil, err
		}
	}

	analyzed := make(map[string]bool)
	if opts.ForceRerun {
		log.Println("Force rerun: clearing prior analysis")
		if err := a.db.ClearAnalysis(); err != nil {
			return nil, fmt.Errorf("clearing prior analysis: %w", err)
		}
	} else {
		labels, err := a.db.GetAnalyzedMonths()
		if err != nil {
			return nil, fmt.Errorf("reading analyzed months: %w", err)
		}
		for _, label := range labels {
			analyzed[label] = true
		}
	}

	var toAnalyze []period.Range
	for _, m := range months {
		if !analyzed[m.Label] {
			toAnalyze = append(toAnalyze, m)
		}
	}
	skipped := len(months) - len(toAnalyze)
	if skipped > 0 {
		log.Printf("Skipping %d already-analyzed months", skipped)
	}

	total := len(toAnalyze) + len(quarters) + len(years) + len(weeks)
	current := 0
	report := func(message string) {
		current++
		log.Printf("%s (%d/%d)", message, current, total)
		if opts.Progress != nil {
			opts.Progress(current, total, message)
		}
	}

	for _, m := range toAnalyze {
		report("Monthly: " + m.Label)
		if err := a.processMonth(ctx, m); err != nil {
			return nil, err
		}
	}

	for _, q := range quarters {
		report("Quarterly: " + q.Label)
		if err := a.processAggregate(period.Quarterly, q, months); err != nil {
			return nil, err
		}
	}

	for _, y := range years {
		report("Yearly: " + y.Label)
		if err := a.processAggregate(period.Yearly, y, months); err != nil {
			return nil, err
		}
	}

	for _, w := range weeks {
		report("Weekly: " + w.Label)
		if err := a.processStatsOnly(period.Weekly, w); err != nil {
			return nil, err
		}
	}

	if err := a.db.SetMetadata(database.MetaLastAnalyzedDate, opts.EndDate); err != nil {
		return nil, fmt.Errorf("updating watermark: %w", err)
	}
	if err := a.db.SetMetadata(database.MetaAnalysisComplete, "true"); err != nil {
		return nil, fmt.Errorf("updating watermark: %w", err)
	}
	if len(weeks) > 0 {
		if err := a.db.SetMetadata(database.MetaLastAnalyzedWeek, weeks[len(weeks)-1].End); err != nil {
			return nil, fmt.Errorf("updating watermark: %w", err)
		}
	}

	result := &Result{
		RunID:          uuid.NewString(),
		MonthsAnalyzed: len(toAnalyze),
		MonthsSkipped:  skipped,
		Quarters:       len(quarters),
		Years:          len(years),
		Weeks:          len(weeks),
	}
	if err := a.db.InsertRun(database.AnalysisRun{
		RunID:          result.RunID,
		StartDate:      opts.StartDate,
		EndDate:        opts.EndDate,
		MonthsAnalyzed: result.MonthsAnalyzed,
		MonthsSkipped:  result.MonthsSkipped,
		Quarters:       result.Quarters,
		Years:          result.Years,
		ForceRerun:     opts.ForceRerun,
	}); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	log.Printf("Analysis complete: %d new months (%d skipped), %d quarters, %d years",
		result.MonthsAnalyzed, result.MonthsSkipped, result.Quarters, result.Years)
	return result, nil
}

// processMonth runs the full pipeline for one month: stats, extraction,
// significance filtering, persistence.
func (a *Analyzer) processMonth(ctx context.Context, m period.Range) error {
	reviews, err := a.db.GetReviewsForPeriod(m.Start, m.End)
	if err != nil {
		return fmt.Errorf("reading reviews for %s: %w", m.Label, err)
	}
	if len(reviews) == 0 {
		log.Printf("No reviews for %s, skipping", m.Label)
		return nil
	}

	pa := database.PeriodAnalysis{
		PeriodType:  period.Monthly,
		PeriodLabel: m.Label,
		PeriodStart: m.Start,
		PeriodEnd:   m.End,
		RatingStats: stats.Compute(reviews),
	}
	if err := a.db.UpsertPeriodAnalysis(pa); err != nil {
		return fmt.Errorf("storing stats for %s: %w", m.Label, err)
	}
	log.Printf("Rating stats for %s: avg=%.2f, total=%d", m.Label, pa.AvgRating, pa.TotalReviews)

	textReviews := themes.UsableText(reviews)
	if len(textReviews) == 0 || a.extractor == nil {
		return nil
	}

	extraction, err := a.extractor.Extract(ctx, reviews)
	if err != nil {
		// One month losing its themes is not fatal to the run. A parse
		// failure carries the raw response for inspection.
		var parseErr *themes.ParseError
		if errors.As(err, &parseErr) {
			log.Printf("Model returned non-conforming output for %s: %.200s", m.Label, parseErr.Raw)
		} else {
			log.Printf("Theme extraction failed for %s: %v", m.Label, err)
		}
		return nil
	}

	var significant []database.Theme
	for _, t := range extraction.Themes {
		if themes.IsSignificant(t.MentionCount, len(textReviews), a.minSample) {
			significant = append(significant, t)
		} else {
			log.Printf("Dropped theme %q for %s: %d mentions below threshold",
				t.Name, m.Label, t.MentionCount)
		}
	}

	if len(significant) > 0 {
		if err := a.db.ReplaceThemes(period.Monthly, m.Label, significant); err != nil {
			return fmt.Errorf("storing themes for %s: %w", m.Label, err)
		}
		log.Printf("Stored %d themes for %s", len(significant), m.Label)
	}
	return nil
}

// processAggregate computes fresh statistics for a quarter or year and rolls
// up the persisted monthly themes it fully contains.
func (a *Analyzer) processAggregate(periodType string, r period.Range, months []period.Range) error {
	if err := a.processStatsOnly(periodType, r); err != nil {
		return err
	}

	var monthly []database.Theme
	for _, m := range months {
		if !m.Within(r.Start, r.End) {
			continue
		}
		ts, err := a.db.GetThemes(period.Monthly, m.Label)
		if err != nil {
			return fmt.Errorf("reading themes for %s: %w", m.Label, err)
		}
		monthly = append(monthly, ts...)
	}

	aggregated := themes.RollUp(monthly)
	if len(aggregated) == 0 {
		return nil
	}
	if err := a.db.ReplaceThemes(periodType, r.Label, aggregated); err != nil {
		return fmt.Errorf("storing aggregated themes for %s: %w", r.Label, err)
	}
	return nil
}

// processStatsOnly stores rating statistics for a period without any model
// call. Periods with no reviews get no row.
func (a *Analyzer) processStatsOnly(periodType string, r period.Range) error {
	reviews, err := a.db.GetReviewsForPeriod(r.Start, r.End)
	if err != nil {
		return fmt.Errorf("reading reviews for %s: %w", r.Label, err)
	}
	if len(reviews) == 0 {
		return nil
	}

	pa := database.PeriodAnalysis{
		PeriodType:  periodType,
		PeriodLabel: r.Label,
		PeriodStart: r.Start,
		PeriodEnd:   r.End,
		RatingStats: stats.Compute(reviews),
	}
	if err := a.db.UpsertPeriodAnalysis(pa); err != nil {
		return fmt.Errorf("storing stats for %s: %w", r.Label, err)
	}
	return nil
}
