package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cgv-watch/internal/schedule"
)

const (
	ScheduleURLTemplate = "http://www.cgv.co.kr/common/showtimes/iframeTheater.aspx?theatercode={theater}&date={date}"
	UserAgent           = "cgv-watch/1.0 (github.com/pfrederiksen/cgv-watch)"
	Timeout             = 15 * time.Second
	maxBodyBytes        = 5 << 20
)

// ErrUnexpectedStatus is returned when the schedule endpoint answers with a non-200 status
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Scraper fetches schedule documents for one theater
type Scraper struct {
	client      *http.Client
	urlTemplate string
	theaterID   string
}

// New creates a Scraper. An empty urlTemplate selects ScheduleURLTemplate and a
// zero timeout selects Timeout.
func New(theaterID, urlTemplate string, timeout time.Duration) *Scraper {
	if urlTemplate == "" {
		urlTemplate = ScheduleURLTemplate
	}
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		urlTemplate: urlTemplate,
		theaterID:   theaterID,
	}
}

// Query builds the schedule query for a date
func (s *Scraper) Query(date time.Time) schedule.Query {
	return schedule.Query{Date: date, TheaterID: s.theaterID}
}

// RequestURL returns the endpoint URL for a query
func (s *Scraper) RequestURL(q schedule.Query) string {
	r := strings.NewReplacer("{theater}", q.TheaterID, "{date}", q.DateParam())
	return r.Replace(s.urlTemplate)
}

// FetchSchedule fetches and flattens the schedule document for a query
func (s *Scraper) FetchSchedule(ctx context.Context, q schedule.Query) (schedule.Document, error) {
	url := s.RequestURL(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return schedule.Document{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return schedule.Document{}, fmt.Errorf("fetching schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return schedule.Document{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return schedule.Document{}, fmt.Errorf("reading schedule: %w", err)
	}

	text, err := documentText(bytes.NewReader(raw))
	if err != nil {
		return schedule.Document{}, err
	}

	return schedule.Document{Query: q, Raw: string(raw), Text: text, URL: url}, nil
}

// FetchFunc adapts the scraper to the date probe
func (s *Scraper) FetchFunc(ctx context.Context) schedule.FetchFunc {
	return func(date time.Time) (schedule.Document, error) {
		return s.FetchSchedule(ctx, s.Query(date))
	}
}

// documentText parses HTML and returns it as newline separated text
func documentText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	if lines := showtimeLines(doc); len(lines) > 0 {
		return strings.Join(lines, "\n"), nil
	}

	return plainText(doc), nil
}

// showtimeLines flattens the theater showtime layout into one line per auditorium block
func showtimeLines(doc *goquery.Document) []string {
	lines := make([]string, 0)

	doc.Find(".col-times").Each(func(i int, movie *goquery.Selection) {
		title := spacedText(movie.Find(".info-movie strong").First())

		movie.Find(".type-hall").Each(func(j int, hall *goquery.Selection) {
			parts := make([]string, 0, 3)
			for _, part := range []string{
				title,
				spacedText(hall.Find(".info-hall")),
				spacedText(hall.Find(".info-timetable")),
			} {
				if part != "" {
					parts = append(parts, part)
				}
			}
			if len(parts) > 0 {
				lines = append(lines, strings.Join(parts, " "))
			}
		})
	})

	return lines
}

// collapse folds runs of whitespace into single spaces
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
