// Package ingest stores review records produced by the external collectors.
// The collectors themselves (Google Play and Apple App Store clients) live
// upstream; this package only consumes their exported records.
package ingest

import (
	"log"
	"strconv"

	"github.com/TobiSchelling/seagull/internal/database"
	"github.com/TobiSchelling/seagull/internal/period"
)

// Supplier produces review records for ingestion.
type Supplier interface {
	Reviews() ([]database.Review, error)
}

// Result holds the results of an ingestion run.
type Result struct {
	TotalFound int
	NewReviews int
	Duplicates int
	Skipped    int
	Sources    map[string]int
}

// Ingestor writes supplied reviews into an app's database.
type Ingestor struct {
	db *database.DB
}

// New creates a new ingestor.
func New(db *database.DB) *Ingestor {
	return &Ingestor{db: db}
}

// Ingest validates and stores all reviews from the supplier.
// Re-ingesting the same records is a no-op: duplicates by review ID are
// silently skipped, so incremental collector runs never double-count.
func (i *Ingestor) Ingest(s Supplier) (*Result, error) {
	reviews, err := s.Reviews()
	if err != nil {
		return nil, err
	}

	r := &Result{Sources: make(map[string]int)}
	r.TotalFound = len(reviews)

	for _, review := range reviews {
		normalized, ok := normalize(review)
		if !ok {
			r.Skipped++
			continue
		}

		inserted, err := i.db.InsertReview(normalized)
		if err != nil {
			return nil, err
		}
		if inserted {
			r.NewReviews++
			r.Sources[normalized.Source]++
		} else {
			r.Duplicates++
		}
	}

	total, err := i.db.CountReviews()
	if err != nil {
		return nil, err
	}
	if err := i.db.SetMetadata(database.MetaTotalReviewsStored, strconv.Itoa(total)); err != nil {
		return nil, err
	}

	log.Printf("Ingestion complete: %d found, %d new, %d duplicates, %d skipped",
		r.TotalFound, r.NewReviews, r.Duplicates, r.Skipped)
	return r, nil
}

// normalize validates one record and trims its date to day resolution.
// Records with no ID, an unknown source, an out-of-range rating, or an
// unparseable date are rejected.
func normalize(r database.Review) (database.Review, bool) {
	if r.ReviewID == "" {
		return r, false
	}
	if r.Source != database.SourceGooglePlay && r.Source != database.SourceAppleAppStore {
		log.Printf("Skipping review %s: unknown source %q", r.ReviewID, r.Source)
		return r, false
	}
	if r.Rating < 1 || r.Rating > 5 {
		log.Printf("Skipping review %s: rating %d out of range", r.ReviewID, r.Rating)
		return r, false
	}

	// Collectors export full ISO timestamps; the pipeline only needs the day.
	if len(r.Date) > 10 {
		r.Date = r.Date[:10]
	}
	if _, err := period.ParseDate(r.Date); err != nil {
		log.Printf("Skipping review %s: %v", r.ReviewID, err)
		return r, false
	}
	return r, true
}
