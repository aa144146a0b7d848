package schedule

import (
	"time"
)

// FetchFunc returns the schedule document for one date.
// A non-nil error means a transport failure, distinct from an empty document.
type FetchFunc func(date time.Time) (Document, error)

// UsableFunc judges a fetched document
type UsableFunc func(doc Document) bool

// Attempt records the outcome of probing a single date
type Attempt struct {
	Date   time.Time `json:"date"`
	Err    error     `json:"-"`
	Usable bool      `json:"usable"`
}

// Failed reports whether the fetch for this date failed
func (a Attempt) Failed() bool {
	return a.Err != nil
}

// ProbeResult holds the farthest usable date found in a window.
// Found is false when no date in the window yielded a usable document.
type ProbeResult struct {
	Found    bool
	Date     time.Time
	Document Document
	Attempts []Attempt
}

// Probe fetches every date in the window in ascending order and returns the last usable one.
// Fetch errors skip the date without retry. The scan never stops early, so a later usable
// date always overwrites an earlier one.
func Probe(start time.Time, windowDays int, fetch FetchFunc, usable UsableFunc) ProbeResult {
	var result ProbeResult

	for _, date := range Window(start, windowDays) {
		doc, err := fetch(date)
		if err != nil {
			result.Attempts = append(result.Attempts, Attempt{Date: date, Err: err})
			continue
		}

		ok := usable(doc)
		result.Attempts = append(result.Attempts, Attempt{Date: date, Usable: ok})
		if !ok {
			continue
		}

		result.Found = true
		result.Date = date
		result.Document = doc
	}

	return result
}
