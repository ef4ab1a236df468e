// Package period divides date ranges into contiguous, non-overlapping calendar
// buckets. Every period label in the system is derived here and nowhere else,
// so labels persisted by the analyzer always match labels used for roll-up lookups.
package period

import (
	"fmt"
	"time"
)

// Period kinds.
const (
	Weekly    = "weekly"
	Monthly   = "monthly"
	Quarterly = "quarterly"
	Yearly    = "yearly"
)

const dateLayout = "2006-01-02"

// Range is one calendar bucket with its canonical label.
// Start and End are inclusive YYYY-MM-DD dates.
type Range struct {
	Label string
	Start string
	End   string
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Today returns today's date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(dateLayout)
}

func parseRange(startDate, endDate string) (start, end time.Time, err error) {
	start, err = ParseDate(startDate)
	if err != nil {
		return
	}
	end, err = ParseDate(endDate)
	if err != nil {
		return
	}
	if end.Before(start) {
		err = fmt.Errorf("end date %s before start date %s", endDate, startDate)
	}
	return
}

// Months splits a date range into calendar months. The start is normalized to
// the first of its month, so every bucket spans a full month:
//
//	Months("2025-06-15", "2025-08-31") ->
//	  {2025-06, 2025-06-01, 2025-06-30}
//	  {2025-07, 2025-07-01, 2025-07-31}
//	  {2025-08, 2025-08-01, 2025-08-31}
func Months(startDate, endDate string) ([]Range, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var months []Range
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !current.After(end) {
		next := current.AddDate(0, 1, 0)
		months = append(months, Range{
			Label: current.Format("2006-01"),
			Start: current.Format(dateLayout),
			End:   next.AddDate(0, 0, -1).Format(dateLayout),
		})
		current = next
	}
	return months, nil
}

// Quarters splits a date range into calendar quarters
// (Jan-Mar, Apr-Jun, Jul-Sep, Oct-Dec), labeled YYYY-Qn.
func Quarters(startDate, endDate string) ([]Range, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var quarters []Range
	q := (int(start.Month()) - 1) / 3
	current := time.Date(start.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	for !current.After(end) {
		next := current.AddDate(0, 3, 0)
		quarters = append(quarters, Range{
			Label: fmt.Sprintf("%d-Q%d", current.Year(), (int(current.Month())-1)/3+1),
			Start: current.Format(dateLayout),
			End:   next.AddDate(0, 0, -1).Format(dateLayout),
		})
		current = next
	}
	return quarters, nil
}

// Years splits a date range into calendar years, labeled YYYY.
func Years(startDate, endDate string) ([]Range, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var years []Range
	for year := start.Year(); year <= end.Year(); year++ {
		years = append(years, Range{
			Label: fmt.Sprintf("%d", year),
			Start: fmt.Sprintf("%d-01-01", year),
			End:   fmt.Sprintf("%d-12-31", year),
		})
	}
	return years, nil
}

// Weeks splits a date range into 7-day buckets anchored to Sunday.
// The bucket containing the start date is extended backward to its Sunday.
// Labels are "W" + the anchor date.
func Weeks(startDate, endDate string) ([]Range, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	current := start.AddDate(0, 0, -int(start.Weekday()))
	var weeks []Range
	for !current.After(end) {
		weeks = append(weeks, Range{
			Label: "W" + current.Format(dateLayout),
			Start: current.Format(dateLayout),
			End:   current.AddDate(0, 0, 6).Format(dateLayout),
		})
		current = current.AddDate(0, 0, 7)
	}
	return weeks, nil
}

// Within reports whether the bucket lies entirely inside [start, end].
// Used to pick the monthly buckets a quarter or year subsumes.
func (r Range) Within(start, end string) bool {
	return r.Start >= start && r.End <= end
}
