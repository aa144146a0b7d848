package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/cgv-watch/internal/config"
	"github.com/pfrederiksen/cgv-watch/internal/extract"
	"github.com/pfrederiksen/cgv-watch/internal/report"
	"github.com/pfrederiksen/cgv-watch/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// textWriter is implemented by every printable result
type textWriter interface {
	writeText(w io.Writer) error
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result textWriter, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return result.writeText(w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// RunOutput summarizes a full check
type RunOutput struct {
	CheckedAt    time.Time     `json:"checked_at"`
	Status       report.Status `json:"status"`
	Label        string        `json:"label"`
	ScheduleDate string        `json:"schedule_date,omitempty"`
	Titles       []string      `json:"titles"`
	MatchedLines []string      `json:"matched_lines,omitempty"`
	ExampleURL   string        `json:"example_url,omitempty"`
	FetchError   string        `json:"fetch_error,omitempty"`
	Delivered    bool          `json:"delivered"`
}

func newRunOutput(o *report.Outcome, delivered bool) *RunOutput {
	out := &RunOutput{
		CheckedAt:    o.CheckedAt.UTC(),
		Status:       o.Status(),
		Label:        o.Label,
		Titles:       o.Result.Titles,
		MatchedLines: o.Result.Lines,
		ExampleURL:   o.ExampleURL,
		FetchError:   o.FetchError,
		Delivered:    delivered,
	}
	if out.Titles == nil {
		out.Titles = []string{}
	}
	if o.Fetched {
		out.ScheduleDate = o.Date().Format(report.DateLayout)
	}
	return out
}

func (r *RunOutput) writeText(w io.Writer) error {
	switch r.Status {
	case report.StatusNoSchedule:
		fmt.Fprintf(w, "%s: no usable schedule", r.Label)
		if r.FetchError != "" {
			fmt.Fprintf(w, " (%s)", r.FetchError)
		}
		fmt.Fprintln(w)
	case report.StatusExtractionFailed:
		fmt.Fprintf(w, "%s %s: no titles extracted from %d matched lines\n", r.Label, r.ScheduleDate, len(r.MatchedLines))
	default:
		fmt.Fprintf(w, "%s %s:\n", r.Label, r.ScheduleDate)
		for _, title := range r.Titles {
			fmt.Fprintf(w, "  - %s\n", title)
		}
		fmt.Fprintf(w, "\nTotal: %d titles\n", len(r.Titles))
	}

	if !r.Delivered {
		fmt.Fprintln(w, "Report was not delivered.")
	}
	return nil
}

// ProbeAttempt is one probed date
type ProbeAttempt struct {
	Date   string `json:"date"`
	Usable bool   `json:"usable"`
	Error  string `json:"error,omitempty"`
}

// ProbeOutput lists every probed date and the farthest usable one
type ProbeOutput struct {
	TheaterID  string         `json:"theater_id"`
	WindowDays int            `json:"window_days"`
	Found      bool           `json:"found"`
	Date       string         `json:"date,omitempty"`
	URL        string         `json:"url,omitempty"`
	Attempts   []ProbeAttempt `json:"attempts"`
}

func newProbeOutput(cfg *config.Config, result schedule.ProbeResult) *ProbeOutput {
	out := &ProbeOutput{
		TheaterID:  cfg.TheaterID,
		WindowDays: cfg.WindowDays,
		Found:      result.Found,
		Attempts:   make([]ProbeAttempt, 0, len(result.Attempts)),
	}
	if result.Found {
		out.Date = result.Date.Format(report.DateLayout)
		out.URL = result.Document.URL
	}
	for _, a := range result.Attempts {
		attempt := ProbeAttempt{Date: a.Date.Format(report.DateLayout), Usable: a.Usable}
		if a.Err != nil {
			attempt.Error = a.Err.Error()
		}
		out.Attempts = append(out.Attempts, attempt)
	}
	return out
}

func (p *ProbeOutput) writeText(w io.Writer) error {
	for _, a := range p.Attempts {
		switch {
		case a.Error != "":
			fmt.Fprintf(w, "%s  error: %s\n", a.Date, a.Error)
		case a.Usable:
			fmt.Fprintf(w, "%s  usable\n", a.Date)
		default:
			fmt.Fprintf(w, "%s  no schedule\n", a.Date)
		}
	}

	if !p.Found {
		fmt.Fprintf(w, "\nNo usable date within %d days.\n", p.WindowDays)
		return nil
	}
	fmt.Fprintf(w, "\nFarthest usable date: %s\n", p.Date)
	if p.URL != "" {
		fmt.Fprintf(w, "URL: %s\n", p.URL)
	}
	return nil
}

// ExtractOutput holds titles extracted from a local document
type ExtractOutput struct {
	Hall string `json:"hall"`
	extract.Result
}

func (e *ExtractOutput) writeText(w io.Writer) error {
	if len(e.Titles) == 0 {
		fmt.Fprintf(w, "No titles extracted for %s.\n", e.Hall)
		if len(e.Lines) == 0 {
			fmt.Fprintln(w, "No lines matched.")
			return nil
		}
		fmt.Fprintln(w, "Matched lines:")
		for _, line := range e.Lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
		return nil
	}

	for _, title := range e.Titles {
		fmt.Fprintf(w, "- %s\n", title)
	}
	fmt.Fprintf(w, "\nTotal: %d titles\n", len(e.Titles))
	return nil
}
