package render

import (
	"fmt"
	"time"
)

// StepKind identifies a page interaction
type StepKind string

const (
	StepNavigate  StepKind = "navigate"
	StepWait      StepKind = "wait"
	StepClickText StepKind = "click_text"
	StepScroll    StepKind = "scroll"
)

// DefaultClickTimeout bounds each click attempt
const DefaultClickTimeout = 5 * time.Second

// Step is one interaction. Labels are tried in order for click steps.
type Step struct {
	Kind     StepKind
	URL      string
	Duration time.Duration
	Labels   []string
	Timeout  time.Duration
	Distance int
}

// Navigate loads url
func Navigate(url string) Step {
	return Step{Kind: StepNavigate, URL: url}
}

// Wait pauses for d
func Wait(d time.Duration) Step {
	return Step{Kind: StepWait, Duration: d}
}

// ClickText clicks the first element showing one of labels, each attempt bounded by timeout
func ClickText(timeout time.Duration, labels ...string) Step {
	return Step{Kind: StepClickText, Labels: labels, Timeout: timeout}
}

// Scroll scrolls the page down by distance pixels
func Scroll(distance int) Step {
	return Step{Kind: StepScroll, Distance: distance}
}

func (s Step) String() string {
	switch s.Kind {
	case StepNavigate:
		return fmt.Sprintf("navigate %s", s.URL)
	case StepWait:
		return fmt.Sprintf("wait %s", s.Duration)
	case StepClickText:
		return fmt.Sprintf("click %q", s.Labels)
	case StepScroll:
		return fmt.Sprintf("scroll %dpx", s.Distance)
	}
	return string(s.Kind)
}

// TheaterSteps opens the cinema page, selects the theater by name and scrolls
// the timetable into view
func TheaterSteps(pageURL, theaterName string) []Step {
	return []Step{
		Navigate(pageURL),
		Wait(4 * time.Second),
		ClickText(DefaultClickTimeout, "CGV"+theaterName, theaterName),
		Wait(2 * time.Second),
		ClickText(DefaultClickTimeout, "상영시간표", "시간표"),
		Wait(2 * time.Second),
		Scroll(3000),
		Wait(1 * time.Second),
	}
}
