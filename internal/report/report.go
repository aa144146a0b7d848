package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/cgv-watch/internal/extract"
)

// Status classifies a run outcome
type Status string

const (
	StatusOK               Status = "ok"
	StatusNoSchedule       Status = "no_schedule"
	StatusExtractionFailed Status = "extraction_failed"
)

// DateLayout is the date format used in subjects
const DateLayout = "2006-01-02"

// NoLinesMarker replaces the matched-line dump when nothing mentioned the hall
const NoLinesMarker = "(매칭된 줄 없음)"

// Outcome describes what one run observed
type Outcome struct {
	Label     string    `json:"label"` // e.g. "CGV 광주상무 1관"
	Hall      string    `json:"hall"`
	CheckedAt time.Time `json:"checked_at"`

	// ScheduleDate is the date whose schedule was read; zero means CheckedAt
	ScheduleDate time.Time `json:"schedule_date,omitempty"`

	Fetched    bool   `json:"fetched"`
	FetchError string `json:"fetch_error,omitempty"`
	ExampleURL string `json:"example_url,omitempty"`
	WindowDays int    `json:"window_days,omitempty"`

	Result extract.Result `json:"result"`
}

// Status reports how the run went
func (o *Outcome) Status() Status {
	switch {
	case !o.Fetched:
		return StatusNoSchedule
	case len(o.Result.Titles) == 0:
		return StatusExtractionFailed
	default:
		return StatusOK
	}
}

// Date returns the date shown in the subject
func (o *Outcome) Date() time.Time {
	if o.ScheduleDate.IsZero() {
		return o.CheckedAt
	}
	return o.ScheduleDate
}

// Subject formats "[label] 스케줄 체크 (YYYY-MM-DD)"
func Subject(label string, date time.Time) string {
	return fmt.Sprintf("[%s] 스케줄 체크 (%s)", label, date.Format(DateLayout))
}

// Build returns the subject and body for o
func Build(o *Outcome) (string, string) {
	subject := Subject(o.Label, o.Date())

	var body string
	switch o.Status() {
	case StatusNoSchedule:
		body = noScheduleBody(o)
	case StatusExtractionFailed:
		body = extractionFailedBody(o)
	default:
		body = titleList(o.Result.Titles)
	}

	return subject, body
}

func titleList(titles []string) string {
	lines := make([]string, len(titles))
	for i, title := range titles {
		lines[i] = "- " + title
	}
	return strings.Join(lines, "\n")
}

func noScheduleBody(o *Outcome) string {
	var b strings.Builder

	if o.WindowDays > 0 {
		fmt.Fprintf(&b, "%d일 범위에서 상영시간표를 가져오지 못했습니다.\n", o.WindowDays)
	} else {
		b.WriteString("상영시간표를 가져오지 못했습니다.\n")
	}
	if o.FetchError != "" {
		fmt.Fprintf(&b, "\n오류: %s\n", o.FetchError)
	}
	if o.ExampleURL != "" {
		fmt.Fprintf(&b, "\n요청 예시: %s\n", o.ExampleURL)
	}

	return strings.TrimRight(b.String(), "\n")
}

func extractionFailedBody(o *Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s 상영작 추출 실패\n\n", o.Hall)
	b.WriteString("매칭된 줄:\n")
	if len(o.Result.Lines) == 0 {
		b.WriteString(NoLinesMarker)
	} else {
		b.WriteString(strings.Join(o.Result.Lines, "\n"))
	}
	if o.ExampleURL != "" {
		fmt.Fprintf(&b, "\n\n요청: %s", o.ExampleURL)
	}

	return b.String()
}
