package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/cgv-watch/internal/schedule"
)

const showtimePage = `
<html>
<body>
	<div class="sect-showtimes">
		<ul>
			<li>
				<div class="col-times">
					<div class="info-movie">
						<span class="ico-grade grade-12">12</span>
						<a href="/movies/detail-view/?midx=1"><strong>
							듄: 파트2
						</strong></a>
						<i>상영중</i>
					</div>
					<div class="type-hall">
						<div class="info-hall">
							<ul><li>2D</li><li>1관 3층</li><li>총 172석</li></ul>
						</div>
						<div class="info-timetable">
							<ul><li><a><em>10:00</em></a></li><li><a><em>13:20</em></a></li></ul>
						</div>
					</div>
					<div class="type-hall">
						<div class="info-hall">
							<ul><li>IMAX</li><li>2관 4층</li></ul>
						</div>
						<div class="info-timetable">
							<ul><li><a><em>11:00</em></a></li></ul>
						</div>
					</div>
				</div>
			</li>
			<li>
				<div class="col-times">
					<div class="info-movie"><strong>Wicked</strong></div>
					<div class="type-hall">
						<div class="info-hall"><ul><li>1관 3층</li></ul></div>
						<div class="info-timetable"><ul><li><em>19:00</em></li></ul></div>
					</div>
				</div>
			</li>
		</ul>
	</div>
</body>
</html>`

func TestFetchSchedule(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantError  error
		wantLines  []string
	}{
		{
			name:       "showtime layout flattened per hall",
			body:       showtimePage,
			statusCode: http.StatusOK,
			wantLines: []string{
				"듄: 파트2 2D 1관 3층 총 172석 10:00 13:20",
				"듄: 파트2 IMAX 2관 4층 11:00",
				"Wicked 1관 3층 19:00",
			},
		},
		{
			name:       "generic page keeps block lines",
			body:       `<html><body><script>var x = "1관";</script><p>1관 <b>영화A</b></p><div>2관 영화B</div></body></html>`,
			statusCode: http.StatusOK,
			wantLines:  []string{"1관 영화A", "2관 영화B"},
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantError:  ErrUnexpectedStatus,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantError:  ErrUnexpectedStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "cgv-watch") {
					t.Errorf("User-Agent = %q, should contain 'cgv-watch'", userAgent)
				}
				gotQuery = r.URL.RawQuery

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := New("0193", server.URL+"/showtimes?theatercode={theater}&date={date}", time.Second)
			date := time.Date(2026, time.October, 23, 0, 0, 0, 0, time.UTC)

			doc, err := s.FetchSchedule(context.Background(), s.Query(date))

			if gotQuery != "theatercode=0193&date=20261023" {
				t.Errorf("query = %q", gotQuery)
			}

			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Fatalf("FetchSchedule() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchSchedule() unexpected error: %v", err)
			}

			if got := strings.Split(doc.Text, "\n"); strings.Join(got, "|") != strings.Join(tt.wantLines, "|") {
				t.Errorf("document lines = %q, want %q", got, tt.wantLines)
			}
			if !doc.Query.Date.Equal(date) {
				t.Errorf("document date = %v, want %v", doc.Query.Date, date)
			}
			if !strings.HasPrefix(doc.URL, server.URL) {
				t.Errorf("document URL = %q", doc.URL)
			}
		})
	}
}

func TestFetchSchedule_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	s := New("0193", url+"?d={date}", time.Second)
	_, err := s.FetchSchedule(context.Background(), s.Query(time.Now()))
	if err == nil {
		t.Fatal("expected transport error from closed server")
	}
	if errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("transport failure reported as status error: %v", err)
	}
}

func TestFetchFunc_FeedsProbe(t *testing.T) {
	start := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("date") {
		case "20261019", "20261020":
			w.Write([]byte(showtimePage))
		case "20261021":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.Write([]byte(`<html><body><p>` + schedule.DefaultNoScheduleMarker + `</p></body></html>`))
		}
	}))
	defer server.Close()

	s := New("0193", server.URL+"?theatercode={theater}&date={date}", time.Second)
	result := schedule.Probe(start, 3, s.FetchFunc(context.Background()), schedule.DefaultUsabilityCheck().IsUsable)

	if !result.Found {
		t.Fatal("expected a usable date")
	}
	if want := start.AddDate(0, 0, 1); !result.Date.Equal(want) {
		t.Errorf("farthest date = %v, want %v", result.Date, want)
	}
	if !result.Attempts[2].Failed() {
		t.Error("502 response should count as a failed fetch")
	}
}

func TestFetchSchedule_KeepsRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(showtimePage))
	}))
	defer server.Close()

	s := New("0193", server.URL+"?date={date}", time.Second)
	doc, err := s.FetchSchedule(context.Background(), s.Query(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("FetchSchedule() error: %v", err)
	}

	if doc.Raw != showtimePage {
		t.Error("Raw should hold the response body unchanged")
	}
	// Three hall lines are far below the length threshold on their own.
	if n := len([]rune(doc.Text)); n > schedule.DefaultMinLength {
		t.Fatalf("flattened text is %d runes, expected a short document", n)
	}
	if !schedule.DefaultUsabilityCheck().IsUsable(doc) {
		t.Error("a schedule with two films should be usable under the default check")
	}
}

func TestRequestURL(t *testing.T) {
	s := New("0193", "", 0)
	got := s.RequestURL(s.Query(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)))
	want := "http://www.cgv.co.kr/common/showtimes/iframeTheater.aspx?theatercode=0193&date=20261019"
	if got != want {
		t.Errorf("RequestURL() = %q, want %q", got, want)
	}
}

func TestNew(t *testing.T) {
	s := New("0193", "", 0)

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.client == nil {
		t.Error("scraper client is nil")
	}
	if s.client.Timeout != Timeout {
		t.Errorf("client timeout = %v, want %v", s.client.Timeout, Timeout)
	}
	if s.urlTemplate != ScheduleURLTemplate {
		t.Errorf("scraper urlTemplate = %q, want %q", s.urlTemplate, ScheduleURLTemplate)
	}
}
