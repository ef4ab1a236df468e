package themes

// DefaultMinSample is the minimum mention count for a theme to be reportable.
const DefaultMinSample = 5

// IsSignificant decides whether a theme has enough mentions to be worth
// reporting. A theme mentioned twice in 5000 reviews is noise; one mentioned
// 50 times is a signal.
//
// Below minSample the theme is never significant. Otherwise it must appear in
// at least 1% of the period's text reviews, or at least minSample times.
// With zero text reviews the proportion is treated as 0.
//
// This is a practical prevalence filter, not a statistical hypothesis test.
// The 1%-or-minSample rule is kept exactly as-is for compatibility with
// historical analysis outputs.
func IsSignificant(mentionCount, totalTextReviews, minSample int) bool {
	if mentionCount < minSample {
		return false
	}
	proportion := 0.0
	if totalTextReviews > 0 {
		proportion = float64(mentionCount) / float64(totalTextReviews)
	}
	return proportion >= 0.01 || mentionCount >= minSample
}
