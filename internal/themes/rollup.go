package themes

import (
	"math"
	"sort"

	"github.com/TobiSchelling/seagull/internal/database"
)

// maxRollupSamples caps the pooled sample quotes on an aggregated theme.
const maxRollupSamples = 5

// RollUp merges already-extracted monthly themes into one aggregated list for a
// quarter or year without another model call. Themes are grouped by exact
// (name, sentiment): mention counts are summed, sample quotes pooled (first 5),
// and confidence averaged over the contributing months. The result is sorted by
// summed mention count descending, with name as a deterministic tiebreak.
//
// An empty input yields an empty result, not an error.
func RollUp(monthly []database.Theme) []database.Theme {
	type group struct {
		theme       database.Theme
		confidences []float64
	}

	type key struct {
		name      string
		sentiment string
	}

	groups := make(map[key]*group)
	var order []key
	for _, t := range monthly {
		k := key{t.Name, t.Sentiment}
		g, ok := groups[k]
		if !ok {
			g = &group{theme: database.Theme{Name: t.Name, Sentiment: t.Sentiment}}
			groups[k] = g
			order = append(order, k)
		}
		g.theme.MentionCount += t.MentionCount
		if len(g.theme.SampleReviews) < maxRollupSamples {
			for _, s := range t.SampleReviews {
				g.theme.SampleReviews = append(g.theme.SampleReviews, s)
				if len(g.theme.SampleReviews) == maxRollupSamples {
					break
				}
			}
		}
		g.confidences = append(g.confidences, t.Confidence)
	}

	var merged []database.Theme
	for _, k := range order {
		g := groups[k]
		sum := 0.0
		for _, c := range g.confidences {
			sum += c
		}
		g.theme.Confidence = round2(sum / float64(len(g.confidences)))
		merged = append(merged, g.theme)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].MentionCount != merged[j].MentionCount {
			return merged[i].MentionCount > merged[j].MentionCount
		}
		return merged[i].Name < merged[j].Name
	})
	return merged
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
