package schedule

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the compact date format used by schedule endpoints (e.g. "20261019")
const DateLayout = "20060102"

// DefaultNoScheduleMarker is the text the theater site renders when a date has no showtimes
const DefaultNoScheduleMarker = "조회 가능한 상영시간이 없습니다"

// DefaultMinLength is the trimmed character count a usable schedule must exceed
const DefaultMinLength = 200

// Query identifies one schedule lookup
type Query struct {
	Date      time.Time
	TheaterID string
}

// DateParam returns the query date formatted for schedule endpoints
func (q Query) DateParam() string {
	return q.Date.Format(DateLayout)
}

// Document is what a fetch returned for a Query.
// Raw is the response body as received; Text is the line-oriented form fed to extraction.
type Document struct {
	Query Query
	Raw   string
	Text  string
	URL   string
}

// Body returns Raw, or Text when the fetcher kept no raw form
func (d Document) Body() string {
	if d.Raw != "" {
		return d.Raw
	}
	return d.Text
}

// UsabilityCheck decides whether a fetched document holds a real schedule
type UsabilityCheck struct {
	NoScheduleMarker string
	MinLength        int
}

// DefaultUsabilityCheck returns the check used against the theater site
func DefaultUsabilityCheck() UsabilityCheck {
	return UsabilityCheck{
		NoScheduleMarker: DefaultNoScheduleMarker,
		MinLength:        DefaultMinLength,
	}
}

// IsUsable reports whether the fetched body lacks the no-schedule marker and is long enough
func (c UsabilityCheck) IsUsable(doc Document) bool {
	body := doc.Body()
	if c.NoScheduleMarker != "" && strings.Contains(body, c.NoScheduleMarker) {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(body)) > c.MinLength
}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Window returns start plus every day up to windowDays later, inclusive.
// A negative windowDays is treated as zero.
func Window(start time.Time, windowDays int) []time.Time {
	if windowDays < 0 {
		windowDays = 0
	}
	start = Day(start)
	dates := make([]time.Time, 0, windowDays+1)
	for i := 0; i <= windowDays; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}
