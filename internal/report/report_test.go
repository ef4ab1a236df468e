package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/TobiSchelling/seagull/internal/database"
	"github.com/TobiSchelling/seagull/internal/period"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.InitMetadata("com.example.app", "Example App", "google_play"); err != nil {
		t.Fatalf("init metadata failed: %v", err)
	}
	return db
}

func TestBuildNoAnalysis(t *testing.T) {
	db := testDB(t)

	out, err := Build(db)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(out, "# Review Analysis: Example App") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "No analysis has been run") {
		t.Errorf("missing empty-state message:\n%s", out)
	}
}

func TestBuildFullReport(t *testing.T) {
	db := testDB(t)

	labels := []string{"2025-04", "2025-05", "2025-06", "2025-07"}
	for _, label := range labels {
		err := db.UpsertPeriodAnalysis(database.PeriodAnalysis{
			PeriodType:  period.Monthly,
			PeriodLabel: label,
			PeriodStart: label + "-01",
			PeriodEnd:   label + "-28",
			RatingStats: database.RatingStats{TotalReviews: 10, AvgRating: 4.1, Rating5: 6},
		})
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}
	db.UpsertPeriodAnalysis(database.PeriodAnalysis{
		PeriodType: period.Quarterly, PeriodLabel: "2025-Q2",
		PeriodStart: "2025-04-01", PeriodEnd: "2025-06-30",
		RatingStats: database.RatingStats{TotalReviews: 30, AvgRating: 4.1},
	})
	db.ReplaceThemes(period.Monthly, "2025-07", []database.Theme{
		{Name: "battery drain", Sentiment: "negative", MentionCount: 7,
			SampleReviews: []string{"drains too fast"}, Confidence: 0.9},
	})
	db.ReplaceThemes(period.Monthly, "2025-04", []database.Theme{
		{Name: "old theme", Sentiment: "positive", MentionCount: 5, Confidence: 0.5},
	})

	out, err := Build(db)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !strings.Contains(out, "## Monthly Ratings") {
		t.Error("missing monthly table")
	}
	if !strings.Contains(out, "## Quarterly Ratings") {
		t.Error("missing quarterly table")
	}
	if !strings.Contains(out, "| 2025-06 | 10 | 4.10 |") {
		t.Errorf("missing monthly row:\n%s", out)
	}
	if !strings.Contains(out, "## Themes: 2025-07") {
		t.Error("missing recent theme section")
	}
	if !strings.Contains(out, "battery drain") || !strings.Contains(out, "> drains too fast") {
		t.Error("missing theme details")
	}
	// Only the three most recent months get theme sections; 2025-04 is too old.
	if strings.Contains(out, "old theme") {
		t.Error("theme section shown for month outside the recent window")
	}
}
