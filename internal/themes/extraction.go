// Package themes extracts and aggregates review themes. Extraction is the only
// expensive step in the system: one model call per month of text reviews.
// Everything else here is deterministic.
package themes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"unicode/utf8"

	"github.com/TobiSchelling/seagull/internal/database"
	"github.com/TobiSchelling/seagull/internal/llm"
)

const (
	// batchLimit caps how many text reviews go into one prompt. Enough signal,
	// manageable context.
	batchLimit = 200

	// quoteLimit truncates each review's text inside the prompt.
	quoteLimit = 500

	// maxSampleReviews caps the verbatim quotes kept per extracted theme.
	maxSampleReviews = 3

	// defaultTemperature keeps extraction output stable across runs.
	defaultTemperature = 0.1
)

const extractionSystemPrompt = `You are a rigorous app review analyst. Your job is to extract themes (topics) from user reviews.

RULES — follow these exactly:
1. A "theme" is a specific topic users talk about (e.g., "battery drain", "login issues", "music recommendations").
2. Classify each theme as "positive" or "negative" based on how users feel about it.
3. Count how many reviews mention each theme.
4. For each theme, include 2-3 direct quotes from actual reviews as evidence.
5. Do NOT invent themes. Only report what users actually say.
6. Do NOT paraphrase beyond recognition. Use the customer's own words when possible.
7. If a theme has fewer than the minimum sample size, exclude it.
8. Themes should be specific and actionable, not vague (e.g., "slow loading on startup" not just "performance").

CRITICAL NAMING RULES — follow strictly:
9. Theme names MUST be lowercase, 2-4 words maximum (e.g., "app crashing", "slow loading", "great content").
10. NEVER use filler words like "issues with", "problems with", "quality of". Go straight to the noun/verb.
11. NEVER add qualifiers like "or freezing", "or not opening". Pick ONE canonical short name.
12. If two themes overlap (e.g., "app crashing" and "app freezing"), MERGE them into one theme.
13. Use the SIMPLEST, most GENERAL label. Examples:
    - GOOD: "app crashing" | BAD: "app crashing or freezing", "app crashing or not opening"
    - GOOD: "subscription cost" | BAD: "subscription requirements", "subscription problems", "subscription issues"
    - GOOD: "quality content" | BAD: "high-quality news content", "informative news content", "quality of content"
    - GOOD: "too many ads" | BAD: "excessive advertisements", "too many ads appearing"
14. The same concept MUST always use the SAME name, regardless of which batch you analyze.

Respond in this exact JSON format:
{
    "themes": [
        {
            "theme": "short descriptive name (2-4 words, lowercase)",
            "sentiment": "positive" or "negative",
            "mention_count": number,
            "sample_reviews": ["exact quote 1", "exact quote 2"],
            "confidence": 0.0 to 1.0
        }
    ],
    "total_reviews_analyzed": number,
    "reviews_with_no_clear_theme": number
}`

// Extraction is the validated result of one theme-extraction call.
type Extraction struct {
	Themes        []database.Theme
	TotalAnalyzed int
	NoClearTheme  int
}

// ParseError reports that the model's response did not conform to the
// expected structure. It carries the raw text so callers can inspect or log
// what came back; a malformed response is never silently an empty theme list.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "invalid JSON response from model"
}

// Extractor builds bounded prompts and extracts themes via a text-understanding
// provider.
type Extractor struct {
	provider    llm.Provider
	minSample   int
	temperature float64
}

// NewExtractor creates a theme extractor. A temperature of 0 or less selects
// the default.
func NewExtractor(provider llm.Provider, minSample int, temperature float64) *Extractor {
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &Extractor{provider: provider, minSample: minSample, temperature: temperature}
}

// UsableText returns the reviews whose text survives trimming with more than
// 3 characters. These are the reviews worth sending for analysis, and their
// count is the population the significance filter measures against.
func UsableText(reviews []database.Review) []database.Review {
	var usable []database.Review
	for _, r := range reviews {
		if r.Text != nil && utf8.RuneCountInString(strings.TrimSpace(*r.Text)) > 3 {
			usable = append(usable, r)
		}
	}
	return usable
}

// Extract sends one period's reviews for theme extraction.
// Reviews without usable text are filtered out first; if none remain the
// provider is not invoked at all and an empty Extraction is returned.
// A non-conforming response yields a *ParseError, never an empty theme list.
func (e *Extractor) Extract(ctx context.Context, reviews []database.Review) (*Extraction, error) {
	textReviews := UsableText(reviews)
	if len(textReviews) == 0 {
		return &Extraction{}, nil
	}

	// Oldest-first ordering from the input is preserved; no resampling.
	if len(textReviews) > batchLimit {
		textReviews = textReviews[:batchLimit]
	}

	var lines []string
	for i, r := range textReviews {
		text := strings.TrimSpace(*r.Text)
		// Limits are in characters, not bytes; byte slicing would split runes.
		if utf8.RuneCountInString(text) > quoteLimit {
			text = string([]rune(text)[:quoteLimit])
		}
		lines = append(lines, fmt.Sprintf("[Review %d] Rating: %d/5 | %q", i+1, r.Rating, text))
	}

	userPrompt := fmt.Sprintf(`Analyze these %d app reviews and extract the main themes.
Minimum sample size for a theme to be reported: %d mentions.

REVIEWS:
%s`, len(lines), e.minSample, strings.Join(lines, "\n"))

	log.Printf("Sending %d reviews for theme extraction...", len(lines))
	responseText, err := e.provider.Complete(ctx, extractionSystemPrompt, userPrompt, e.temperature, true)
	if err != nil {
		return nil, err
	}

	parsed := llm.ParseJSONResponse(responseText)
	if parsed == nil {
		return nil, &ParseError{Raw: responseText}
	}

	return parseExtraction(parsed), nil
}

// parseExtraction validates the response shape, clamping fields to the contract.
// Entries missing a name or with an unknown sentiment are dropped.
func parseExtraction(parsed map[string]any) *Extraction {
	result := &Extraction{
		TotalAnalyzed: getInt(parsed, "total_reviews_analyzed", 0),
		NoClearTheme:  getInt(parsed, "reviews_with_no_clear_theme", 0),
	}

	raw, ok := parsed["themes"].([]any)
	if !ok {
		return result
	}

	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		name := strings.ToLower(strings.TrimSpace(getString(obj, "theme", "")))
		if name == "" {
			continue
		}

		sentiment := strings.ToLower(getString(obj, "sentiment", ""))
		if sentiment != "positive" && sentiment != "negative" {
			continue
		}

		count := getInt(obj, "mention_count", 0)
		if count < 0 {
			count = 0
		}

		confidence := getFloat(obj, "confidence", 0)
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}

		var samples []string
		if arr, ok := obj["sample_reviews"].([]any); ok {
			for _, v := range arr {
				if s, ok := v.(string); ok && s != "" {
					samples = append(samples, s)
				}
				if len(samples) == maxSampleReviews {
					break
				}
			}
		}

		result.Themes = append(result.Themes, database.Theme{
			Name:          name,
			Sentiment:     sentiment,
			MentionCount:  count,
			SampleReviews: samples,
			Confidence:    confidence,
		})
	}

	return result
}

func getString(m map[string]any, key, fallback string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func getInt(m map[string]any, key string, fallback int) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return int(i)
			}
		}
	}
	return fallback
}

func getFloat(m map[string]any, key string, fallback float64) float64 {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		}
	}
	return fallback
}
