package database

// Known review sources.
const (
	SourceGooglePlay    = "google_play"
	SourceAppleAppStore = "apple_app_store"
)

// Metadata keys stored in app_metadata.
const (
	MetaAppID              = "app_id"
	MetaAppName            = "app_name"
	MetaStore              = "store"
	MetaLastAnalyzedDate   = "last_analyzed_date"
	MetaLastAnalyzedWeek   = "last_analyzed_week_ending"
	MetaTotalReviewsStored = "total_reviews_stored"
	MetaAnalysisComplete   = "seagull_analysis_complete"
)

// Review represents a single user review from an app store.
type Review struct {
	ReviewID  string
	Source    string // "google_play" or "apple_app_store"
	Rating    int    // 1 to 5 stars
	Text      *string
	Date      string // YYYY-MM-DD
	Username  string
	ThumbsUp  int
	CreatedAt *string
}

// RatingStats holds the deterministic rating aggregation for one period.
type RatingStats struct {
	TotalReviews       int     `json:"total_reviews"`
	AvgRating          float64 `json:"avg_rating"`
	Rating1            int     `json:"rating_1"`
	Rating2            int     `json:"rating_2"`
	Rating3            int     `json:"rating_3"`
	Rating4            int     `json:"rating_4"`
	Rating5            int     `json:"rating_5"`
	ReviewsWithText    int     `json:"reviews_with_text"`
	ReviewsWithoutText int     `json:"reviews_without_text"`
}

// PeriodAnalysis is the stored summary of all reviews in one period.
type PeriodAnalysis struct {
	ID          int64  `json:"id"`
	PeriodType  string `json:"period_type"`
	PeriodLabel string `json:"period_label"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	RatingStats
	CreatedAt *string `json:"created_at,omitempty"`
}

// Theme is one topic extracted from text reviews for one period.
type Theme struct {
	ID            int64    `json:"id"`
	PeriodType    string   `json:"period_type"`
	PeriodLabel   string   `json:"period_label"`
	Name          string   `json:"theme"`
	Sentiment     string   `json:"sentiment"` // "positive" or "negative"
	MentionCount  int      `json:"mention_count"`
	SampleReviews []string `json:"sample_reviews"`
	Confidence    float64  `json:"confidence"`
	CreatedAt     *string  `json:"created_at,omitempty"`
}

// AnalysisRun records one completed orchestrator run.
type AnalysisRun struct {
	RunID          string
	StartDate      string
	EndDate        string
	MonthsAnalyzed int
	MonthsSkipped  int
	Quarters       int
	Years          int
	ForceRerun     bool
	FinishedAt     *string
}

// AppInfo summarizes one tracked application, read from its metadata.
type AppInfo struct {
	AppID            string `json:"app_id"`
	AppName          string `json:"app_name"`
	Store            string `json:"store"`
	LastAnalyzedDate string `json:"last_analyzed_date"`
	TotalReviews     int    `json:"total_reviews"`
	AnalysisComplete bool   `json:"analysis_complete"`
}

// Stats contains aggregate statistics for one app's database.
type Stats struct {
	TotalReviews    int
	ReviewsWithText int
	MonthlyPeriods  int
	Themes          int
	Runs            int
}
