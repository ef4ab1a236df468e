package period

import (
	"testing"
	"time"
)

func TestMonthsSpansRange(t *testing.T) {
	months, err := Months("2025-06-15", "2025-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}

	expected := []Range{
		{"2025-06", "2025-06-01", "2025-06-30"},
		{"2025-07", "2025-07-01", "2025-07-31"},
		{"2025-08", "2025-08-01", "2025-08-31"},
	}
	for i, want := range expected {
		if months[i] != want {
			t.Errorf("month %d: expected %+v, got %+v", i, want, months[i])
		}
	}
}

func TestMonthsSingleMonth(t *testing.T) {
	months, err := Months("2025-02-10", "2025-02-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 1 {
		t.Fatalf("expected 1 month, got %d", len(months))
	}
	if months[0].Label != "2025-02" {
		t.Errorf("expected label 2025-02, got %s", months[0].Label)
	}
	if months[0].End != "2025-02-28" {
		t.Errorf("expected end 2025-02-28, got %s", months[0].End)
	}
}

func TestMonthsLeapYear(t *testing.T) {
	months, err := Months("2024-02-01", "2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if months[0].End != "2024-02-29" {
		t.Errorf("expected end 2024-02-29, got %s", months[0].End)
	}
}

func TestMonthsNoGapsNoOverlaps(t *testing.T) {
	months, err := Months("2023-11-20", "2025-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(months); i++ {
		prevEnd, _ := ParseDate(months[i-1].End)
		start, _ := ParseDate(months[i].Start)
		if !start.Equal(prevEnd.AddDate(0, 0, 1)) {
			t.Errorf("gap or overlap between %s and %s", months[i-1].Label, months[i].Label)
		}
	}
	if months[0].Start != "2023-11-01" {
		t.Errorf("expected first bucket to start 2023-11-01, got %s", months[0].Start)
	}
	if months[len(months)-1].End != "2025-03-31" {
		t.Errorf("expected last bucket to end 2025-03-31, got %s", months[len(months)-1].End)
	}
}

func TestQuarters(t *testing.T) {
	quarters, err := Quarters("2025-06-01", "2025-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quarters) != 2 {
		t.Fatalf("expected 2 quarters, got %d", len(quarters))
	}
	if quarters[0].Label != "2025-Q2" || quarters[1].Label != "2025-Q3" {
		t.Errorf("unexpected labels: %s, %s", quarters[0].Label, quarters[1].Label)
	}
	if quarters[1].Start != "2025-07-01" || quarters[1].End != "2025-09-30" {
		t.Errorf("unexpected Q3 bounds: %s to %s", quarters[1].Start, quarters[1].End)
	}
}

func TestQuartersYearBoundary(t *testing.T) {
	quarters, err := Quarters("2024-11-15", "2025-02-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quarters) != 2 {
		t.Fatalf("expected 2 quarters, got %d", len(quarters))
	}
	if quarters[0].Label != "2024-Q4" || quarters[1].Label != "2025-Q1" {
		t.Errorf("unexpected labels: %s, %s", quarters[0].Label, quarters[1].Label)
	}
	if quarters[0].End != "2024-12-31" {
		t.Errorf("expected Q4 end 2024-12-31, got %s", quarters[0].End)
	}
}

func TestYears(t *testing.T) {
	years, err := Years("2024-06-01", "2025-02-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(years) != 2 {
		t.Fatalf("expected 2 years, got %d", len(years))
	}
	if years[0].Label != "2024" || years[1].Label != "2025" {
		t.Errorf("unexpected labels: %s, %s", years[0].Label, years[1].Label)
	}
	if years[0].Start != "2024-01-01" || years[0].End != "2024-12-31" {
		t.Errorf("unexpected 2024 bounds: %s to %s", years[0].Start, years[0].End)
	}
}

func TestWeeksAnchoredToSunday(t *testing.T) {
	// 2025-06-04 is a Wednesday; its bucket extends back to Sunday 2025-06-01.
	weeks, err := Weeks("2025-06-04", "2025-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	if weeks[0].Label != "W2025-06-01" {
		t.Errorf("expected label W2025-06-01, got %s", weeks[0].Label)
	}
	if weeks[0].Start != "2025-06-01" || weeks[0].End != "2025-06-07" {
		t.Errorf("unexpected first week bounds: %s to %s", weeks[0].Start, weeks[0].End)
	}

	for _, w := range weeks {
		start, _ := ParseDate(w.Start)
		end, _ := ParseDate(w.End)
		if start.Weekday() != time.Sunday {
			t.Errorf("week %s does not start on Sunday", w.Label)
		}
		if end.Sub(start) != 6*24*time.Hour {
			t.Errorf("week %s is not 7 days", w.Label)
		}
	}
}

func TestEndBeforeStart(t *testing.T) {
	if _, err := Months("2025-06-01", "2025-05-01"); err == nil {
		t.Error("expected error for end before start")
	}
}

func TestInvalidDate(t *testing.T) {
	if _, err := Months("June 2025", "2025-08-31"); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := Quarters("2025-06-01", "not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestWithin(t *testing.T) {
	june := Range{Label: "2025-06", Start: "2025-06-01", End: "2025-06-30"}
	if !june.Within("2025-04-01", "2025-06-30") {
		t.Error("expected June to be within Q2")
	}
	if june.Within("2025-06-15", "2025-06-30") {
		t.Error("expected June not to be within a partial month")
	}
}
