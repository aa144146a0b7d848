package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// candidateFormat matches one leading title character followed by up to %d more.
const candidateFormat = `[가-힣A-Za-z0-9][가-힣A-Za-z0-9 :\-()·'’!,.]{1,%d}`

const (
	trimSet       = " -:,."
	lineSeparator = " "
	minTitleRunes = 2
)

// DefaultBlacklist holds navigation and booking words that show up next to titles
var DefaultBlacklist = []string{"예매", "상영시간표", "관람", "좌석", "극장", "CGV", "로그인", "확인"}

// Options configures one extraction
type Options struct {
	HallMarker     string
	Blacklist      []string
	MaxTitleLength int // also bounds the candidate pattern
	MaxTitles      int
	MaxLines       int // cap on matched lines kept for diagnostics
}

// RenderedPreset returns options for text read from a rendered browser page
func RenderedPreset(hall string) Options {
	return Options{
		HallMarker:     hall,
		Blacklist:      DefaultBlacklist,
		MaxTitleLength: 60,
		MaxTitles:      20,
		MaxLines:       30,
	}
}

// SchedulePreset returns options for documents fetched from the schedule endpoint
func SchedulePreset(hall string) Options {
	return Options{
		HallMarker:     hall,
		Blacklist:      DefaultBlacklist,
		MaxTitleLength: 80,
		MaxTitles:      15,
		MaxLines:       30,
	}
}

// Result holds the extracted titles and the hall lines they came from
type Result struct {
	Titles []string `json:"titles"`
	Lines  []string `json:"matched_lines"`
}

// Empty reports whether no title survived extraction
func (r Result) Empty() bool {
	return len(r.Titles) == 0
}

// Extractor runs extractions with a fixed set of options
type Extractor struct {
	opts    Options
	pattern *regexp.Regexp
}

// New creates an Extractor. MaxTitleLength must be between 1 and 1000.
func New(opts Options) (*Extractor, error) {
	if opts.MaxTitleLength < 1 || opts.MaxTitleLength > 1000 {
		return nil, fmt.Errorf("max title length out of range: %d", opts.MaxTitleLength)
	}
	pattern, err := regexp.Compile(fmt.Sprintf(candidateFormat, opts.MaxTitleLength))
	if err != nil {
		return nil, fmt.Errorf("compiling candidate pattern: %w", err)
	}
	return &Extractor{opts: opts, pattern: pattern}, nil
}

// Options returns the extractor's configuration
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract returns titles found on lines that mention the hall marker.
// It never fails; a document without matching lines yields an empty Result.
func (e *Extractor) Extract(text string) Result {
	lines := MatchLines(text, e.opts.HallMarker)

	titles := make([]string, 0)
	seen := make(map[string]bool)
	for _, candidate := range e.pattern.FindAllString(strings.Join(lines, lineSeparator), -1) {
		title := strings.Trim(candidate, trimSet)
		if !e.keep(title) || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}

	return Result{
		Titles: capSlice(titles, e.opts.MaxTitles),
		Lines:  capSlice(lines, e.opts.MaxLines),
	}
}

// keep applies the length bounds and the blacklist
func (e *Extractor) keep(title string) bool {
	n := utf8.RuneCountInString(title)
	if n < minTitleRunes || n > e.opts.MaxTitleLength {
		return false
	}
	return !Blacklisted(title, e.opts.Blacklist)
}

// MatchLines returns trimmed, non-empty lines of text containing marker, in document order
func MatchLines(text, marker string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Blacklisted reports whether any blacklist word appears anywhere inside s.
// A short word inside a longer title disqualifies the whole title.
func Blacklisted(s string, blacklist []string) bool {
	for _, word := range blacklist {
		if word != "" && strings.Contains(s, word) {
			return true
		}
	}
	return false
}

func capSlice(items []string, max int) []string {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}
