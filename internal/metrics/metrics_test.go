package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New()

	if got := testutil.ToFloat64(r.FarthestOffset); got != -1 {
		t.Errorf("initial FarthestOffset = %v, want -1", got)
	}

	r.FetchAttempts.WithLabelValues("error").Inc()
	r.FetchAttempts.WithLabelValues("usable").Add(2)
	r.TitlesExtracted.Set(7)

	if got := testutil.ToFloat64(r.FetchAttempts.WithLabelValues("usable")); got != 2 {
		t.Errorf("usable attempts = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(r.FetchAttempts); got != 2 {
		t.Errorf("fetch attempt series = %d, want 2", got)
	}

	start := time.Date(2026, time.October, 19, 7, 0, 0, 0, time.UTC)
	r.Finish(start, start.Add(1500*time.Millisecond))
	if got := testutil.ToFloat64(r.RunDuration); got != 1.5 {
		t.Errorf("RunDuration = %v, want 1.5", got)
	}
	if got := testutil.ToFloat64(r.LastRun); got != float64(start.Unix()+1) {
		t.Errorf("LastRun = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.TitlesExtracted.Set(3)
	r.Notifications.WithLabelValues("success").Inc()

	path := filepath.Join(t.TempDir(), "cgv_watch.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"cgv_watch_titles_extracted 3",
		`cgv_watch_notifications_total{result="success"} 1`,
		"# TYPE cgv_watch_run_duration_seconds gauge",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
