package themes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/TobiSchelling/seagull/internal/database"
)

func ptr(s string) *string { return &s }

// mockProvider returns a canned response and records what it was asked.
type mockProvider struct {
	response   string
	err        error
	calls      int
	lastPrompt string
	lastTemp   float64
}

func (m *mockProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, expectJSON bool) (string, error) {
	m.calls++
	m.lastPrompt = userPrompt
	m.lastTemp = temperature
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return true }

func TestUsableText(t *testing.T) {
	reviews := []database.Review{
		{ReviewID: "a", Text: ptr("love this app")},
		{ReviewID: "b", Text: nil},
		{ReviewID: "c", Text: ptr("   ")},
		{ReviewID: "d", Text: ptr("ok")},
		{ReviewID: "e", Text: ptr("  four  ")},
	}

	usable := UsableText(reviews)
	if len(usable) != 2 {
		t.Fatalf("expected 2 usable reviews, got %d", len(usable))
	}
	if usable[0].ReviewID != "a" || usable[1].ReviewID != "e" {
		t.Errorf("unexpected usable set: %s, %s", usable[0].ReviewID, usable[1].ReviewID)
	}
}

func TestExtractNoUsableText(t *testing.T) {
	mock := &mockProvider{response: `{"themes": []}`}
	ex := NewExtractor(mock, DefaultMinSample, 0)

	result, err := ex.Extract(context.Background(), []database.Review{
		{ReviewID: "a", Rating: 5},
		{ReviewID: "b", Rating: 1, Text: ptr("no")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 0 {
		t.Errorf("expected no provider calls for textless reviews, got %d", mock.calls)
	}
	if len(result.Themes) != 0 {
		t.Errorf("expected no themes, got %+v", result.Themes)
	}
}

func TestExtractParsesResponse(t *testing.T) {
	mock := &mockProvider{response: `{
		"themes": [
			{"theme": "Battery Drain", "sentiment": "negative", "mention_count": 12,
			 "sample_reviews": ["drains so fast", "dead by noon", "battery killer", "one too many"],
			 "confidence": 1.5},
			{"theme": "great content", "sentiment": "positive", "mention_count": 8,
			 "sample_reviews": ["love the shows"], "confidence": 0.8},
			{"theme": "", "sentiment": "negative", "mention_count": 3, "confidence": 0.5},
			{"theme": "weird one", "sentiment": "mixed", "mention_count": 5, "confidence": 0.5}
		],
		"total_reviews_analyzed": 20,
		"reviews_with_no_clear_theme": 4
	}`}
	ex := NewExtractor(mock, DefaultMinSample, 0)

	result, err := ex.Extract(context.Background(), []database.Review{
		{ReviewID: "a", Rating: 1, Text: ptr("battery drains so fast")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", mock.calls)
	}

	if len(result.Themes) != 2 {
		t.Fatalf("expected 2 valid themes (empty name and bad sentiment dropped), got %d", len(result.Themes))
	}
	battery := result.Themes[0]
	if battery.Name != "battery drain" {
		t.Errorf("expected lowercased name, got %q", battery.Name)
	}
	if battery.Confidence != 1.0 {
		t.Errorf("expected confidence clamped to 1.0, got %v", battery.Confidence)
	}
	if len(battery.SampleReviews) != 3 {
		t.Errorf("expected samples capped at 3, got %d", len(battery.SampleReviews))
	}
	if result.TotalAnalyzed != 20 || result.NoClearTheme != 4 {
		t.Errorf("unexpected counters: %d analyzed, %d no clear theme", result.TotalAnalyzed, result.NoClearTheme)
	}
}

func TestExtractParseError(t *testing.T) {
	mock := &mockProvider{response: "I could not produce JSON, sorry."}
	ex := NewExtractor(mock, DefaultMinSample, 0)

	_, err := ex.Extract(context.Background(), []database.Review{
		{ReviewID: "a", Rating: 3, Text: ptr("mediocre at best")},
	})
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Raw != mock.response {
		t.Errorf("expected raw response preserved, got %q", parseErr.Raw)
	}
}

func TestExtractProviderError(t *testing.T) {
	mock := &mockProvider{err: errors.New("connection refused")}
	ex := NewExtractor(mock, DefaultMinSample, 0)

	_, err := ex.Extract(context.Background(), []database.Review{
		{ReviewID: "a", Rating: 3, Text: ptr("mediocre at best")},
	})
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		t.Error("provider error should not be a ParseError")
	}
}

func TestExtractPromptShape(t *testing.T) {
	mock := &mockProvider{response: `{"themes": [], "total_reviews_analyzed": 2, "reviews_with_no_clear_theme": 2}`}
	ex := NewExtractor(mock, 7, 0)

	long := strings.Repeat("x", 600)
	_, err := ex.Extract(context.Background(), []database.Review{
		{ReviewID: "a", Rating: 4, Text: ptr("solid app overall")},
		{ReviewID: "b", Rating: 2, Text: ptr(long)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(mock.lastPrompt, "[Review 1] Rating: 4/5") {
		t.Errorf("prompt missing numbered review line:\n%s", mock.lastPrompt)
	}
	if !strings.Contains(mock.lastPrompt, "Minimum sample size for a theme to be reported: 7") {
		t.Error("prompt missing minimum sample size")
	}
	if strings.Contains(mock.lastPrompt, long) {
		t.Error("expected long review text truncated in prompt")
	}
}

func TestExtractTemperature(t *testing.T) {
	mock := &mockProvider{response: `{"themes": []}`}
	reviews := []database.Review{{ReviewID: "a", Rating: 3, Text: ptr("decent enough")}}

	ex := NewExtractor(mock, DefaultMinSample, 0.7)
	if _, err := ex.Extract(context.Background(), reviews); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastTemp != 0.7 {
		t.Errorf("expected configured temperature 0.7, got %v", mock.lastTemp)
	}

	ex = NewExtractor(mock, DefaultMinSample, 0)
	if _, err := ex.Extract(context.Background(), reviews); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastTemp != 0.1 {
		t.Errorf("expected default temperature 0.1, got %v", mock.lastTemp)
	}
}

func TestUsableTextCountsCharacters(t *testing.T) {
	reviews := []database.Review{
		{ReviewID: "a", Text: ptr("すばらしい")}, // 5 characters, 15 bytes
		{ReviewID: "b", Text: ptr("良い")},    // 2 characters
	}

	usable := UsableText(reviews)
	if len(usable) != 1 || usable[0].ReviewID != "a" {
		t.Errorf("expected only the 5-character review usable, got %d", len(usable))
	}
}

func TestExtractMultibyteTruncation(t *testing.T) {
	mock := &mockProvider{response: `{"themes": []}`}
	ex := NewExtractor(mock, DefaultMinSample, 0)

	short := strings.Repeat("あ", 200) // 600 bytes, well under the character limit
	long := strings.Repeat("い", 520)
	_, err := ex.Extract(context.Background(), []database.Review{
		{ReviewID: "a", Rating: 4, Text: ptr(short)},
		{ReviewID: "b", Rating: 2, Text: ptr(long)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(mock.lastPrompt, short) {
		t.Error("expected 200-character review kept whole")
	}
	if strings.Contains(mock.lastPrompt, strings.Repeat("い", 501)) {
		t.Error("expected 520-character review truncated to 500")
	}
	if !strings.Contains(mock.lastPrompt, strings.Repeat("い", 500)) {
		t.Error("expected 500 whole characters of the long review in the prompt")
	}
	if !utf8.ValidString(mock.lastPrompt) {
		t.Error("prompt contains a split rune")
	}
}

func TestExtractBatchLimit(t *testing.T) {
	mock := &mockProvider{response: `{"themes": []}`}
	ex := NewExtractor(mock, DefaultMinSample, 0)

	var reviews []database.Review
	for i := 0; i < 250; i++ {
		reviews = append(reviews, database.Review{ReviewID: "r", Rating: 3, Text: ptr("some review text")})
	}

	if _, err := ex.Extract(context.Background(), reviews); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(mock.lastPrompt, "[Review 201]") {
		t.Error("expected prompt capped at 200 reviews")
	}
	if !strings.Contains(mock.lastPrompt, "[Review 200]") {
		t.Error("expected 200th review present in prompt")
	}
}
