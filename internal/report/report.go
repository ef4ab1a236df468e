// Package report composes a markdown summary of an app's stored analysis.
// Everything comes from persisted rows; no model calls, no recomputation.
package report

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/seagull/internal/database"
	"github.com/TobiSchelling/seagull/internal/period"
)

// maxThemePeriods limits how many recent monthly theme sections the report shows.
const maxThemePeriods = 3

// Build renders the full markdown report for one app.
func Build(db *database.DB) (string, error) {
	info, err := db.AppInfo()
	if err != nil {
		return "", err
	}

	monthly, err := db.GetPeriodAnalyses(period.Monthly)
	if err != nil {
		return "", err
	}

	var sections []string
	sections = append(sections, header(info))

	if len(monthly) == 0 {
		sections = append(sections, "No analysis has been run for this app yet.")
		return strings.Join(sections, "\n\n"), nil
	}

	sections = append(sections, statsTable("Monthly Ratings", monthly))

	quarterly, err := db.GetPeriodAnalyses(period.Quarterly)
	if err != nil {
		return "", err
	}
	if len(quarterly) > 0 {
		sections = append(sections, statsTable("Quarterly Ratings", quarterly))
	}

	yearly, err := db.GetPeriodAnalyses(period.Yearly)
	if err != nil {
		return "", err
	}
	if len(yearly) > 0 {
		sections = append(sections, statsTable("Yearly Ratings", yearly))
	}

	themeSections, err := recentThemes(db, monthly)
	if err != nil {
		return "", err
	}
	sections = append(sections, themeSections...)

	return strings.Join(sections, "\n\n"), nil
}

func header(info database.AppInfo) string {
	name := info.AppName
	if name == "" {
		name = info.AppID
	}
	lines := []string{
		fmt.Sprintf("# Review Analysis: %s", name),
		"",
		fmt.Sprintf("- **App ID**: %s", info.AppID),
		fmt.Sprintf("- **Store**: %s", info.Store),
		fmt.Sprintf("- **Reviews stored**: %d", info.TotalReviews),
	}
	if info.LastAnalyzedDate != "" {
		lines = append(lines, fmt.Sprintf("- **Analyzed through**: %s", info.LastAnalyzedDate))
	}
	return strings.Join(lines, "\n")
}

func statsTable(title string, analyses []database.PeriodAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	b.WriteString("| Period | Reviews | Avg | 1★ | 2★ | 3★ | 4★ | 5★ | With text |\n")
	b.WriteString("|--------|---------|-----|----|----|----|----|----|-----------|\n")
	for _, pa := range analyses {
		fmt.Fprintf(&b, "| %s | %d | %.2f | %d | %d | %d | %d | %d | %d |\n",
			pa.PeriodLabel, pa.TotalReviews, pa.AvgRating,
			pa.Rating1, pa.Rating2, pa.Rating3, pa.Rating4, pa.Rating5,
			pa.ReviewsWithText)
	}
	return strings.TrimRight(b.String(), "\n")
}

// recentThemes renders theme sections for the most recent monthly periods.
func recentThemes(db *database.DB, monthly []database.PeriodAnalysis) ([]string, error) {
	start := len(monthly) - maxThemePeriods
	if start < 0 {
		start = 0
	}

	var sections []string
	for _, pa := range monthly[start:] {
		themes, err := db.GetThemes(period.Monthly, pa.PeriodLabel)
		if err != nil {
			return nil, err
		}
		if len(themes) == 0 {
			continue
		}
		sections = append(sections, themeSection(pa.PeriodLabel, themes))
	}
	return sections, nil
}

func themeSection(label string, themes []database.Theme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Themes: %s\n", label)
	for _, t := range themes {
		marker := "+"
		if t.Sentiment == "negative" {
			marker = "-"
		}
		fmt.Fprintf(&b, "\n**[%s] %s** — %d mentions (confidence %.2f)\n",
			marker, t.Name, t.MentionCount, t.Confidence)
		for _, quote := range t.SampleReviews {
			fmt.Fprintf(&b, "> %s\n", quote)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
