package watch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/cgv-watch/internal/config"
	"github.com/pfrederiksen/cgv-watch/internal/extract"
	"github.com/pfrederiksen/cgv-watch/internal/logger"
	"github.com/pfrederiksen/cgv-watch/internal/metrics"
	"github.com/pfrederiksen/cgv-watch/internal/notifier"
	"github.com/pfrederiksen/cgv-watch/internal/render"
	"github.com/pfrederiksen/cgv-watch/internal/report"
	"github.com/pfrederiksen/cgv-watch/internal/schedule"
)

// ScheduleSource fetches schedule documents by date
type ScheduleSource interface {
	Query(date time.Time) schedule.Query
	RequestURL(q schedule.Query) string
	FetchFunc(ctx context.Context) schedule.FetchFunc
}

// PageRenderer renders the cinema page
type PageRenderer interface {
	Render(ctx context.Context, steps []render.Step) (*render.Page, error)
	SetLogger(l *logger.Logger)
}

// Runner performs watch runs
type Runner struct {
	cfg      *config.Config
	source   ScheduleSource
	renderer PageRenderer
	notifier notifier.Notifier
	metrics  *metrics.Recorder
	log      *logger.Logger

	now   func() time.Time
	newID func() string
}

// Option customizes a Runner
type Option func(*Runner)

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithIDs sets the run ID generator
func WithIDs(newID func() string) Option {
	return func(r *Runner) { r.newID = newID }
}

// WithMetrics records into m instead of a fresh recorder
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// New creates a Runner. source is required in http mode and renderer in browser mode.
func New(cfg *config.Config, source ScheduleSource, renderer PageRenderer, n notifier.Notifier, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		source:   source,
		renderer: renderer,
		notifier: n,
		metrics:  metrics.New(),
		log:      logger.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the recorder for this runner
func (r *Runner) Metrics() *metrics.Recorder {
	return r.metrics
}

// Probe scans the date window and returns the farthest usable schedule
func (r *Runner) Probe(ctx context.Context) (schedule.ProbeResult, error) {
	if r.source == nil {
		return schedule.ProbeResult{}, fmt.Errorf("no schedule source configured")
	}

	start := schedule.Day(r.now())
	fetch := r.source.FetchFunc(ctx)
	check := r.cfg.UsabilityCheck()

	result := schedule.Probe(start, r.cfg.WindowDays, func(date time.Time) (schedule.Document, error) {
		doc, err := fetch(date)
		if err != nil {
			r.log.Warn("Schedule fetch failed, skipping date", logger.Fields{
				"date":  date.Format(schedule.DateLayout),
				"error": err.Error(),
			})
		}
		return doc, err
	}, check.IsUsable)

	for _, attempt := range result.Attempts {
		switch {
		case attempt.Failed():
			r.metrics.FetchAttempts.WithLabelValues("error").Inc()
		case attempt.Usable:
			r.metrics.FetchAttempts.WithLabelValues("usable").Inc()
		default:
			r.metrics.FetchAttempts.WithLabelValues("unusable").Inc()
		}
	}

	if result.Found {
		r.metrics.FarthestOffset.Set(dayOffset(start, result.Date))
		r.log.Info("Found farthest usable date", logger.Fields{
			"date":     result.Date.Format(schedule.DateLayout),
			"attempts": len(result.Attempts),
		})
	} else {
		r.log.Warn("No usable date in window", logger.Fields{
			"window_days": r.cfg.WindowDays,
			"attempts":    len(result.Attempts),
		})
	}

	return result, nil
}

// Collect fetches the schedule and extracts titles without notifying
func (r *Runner) Collect(ctx context.Context) (*report.Outcome, error) {
	ex, err := extract.New(r.cfg.ExtractOptions())
	if err != nil {
		return nil, fmt.Errorf("configuring extractor: %w", err)
	}

	outcome := &report.Outcome{
		Label:     r.cfg.Label(),
		Hall:      r.cfg.HallMarker,
		CheckedAt: r.now(),
	}

	var text string
	switch r.cfg.Mode {
	case config.ModeBrowser:
		text, err = r.collectRendered(ctx, outcome)
	default:
		text, err = r.collectSchedule(ctx, outcome)
	}
	if err != nil {
		return nil, err
	}

	if outcome.Fetched {
		outcome.Result = ex.Extract(text)
		if outcome.Result.Empty() {
			r.log.Warn("No titles extracted", logger.Fields{
				"hall":          r.cfg.HallMarker,
				"matched_lines": len(outcome.Result.Lines),
			})
		}
	}

	r.metrics.TitlesExtracted.Set(float64(len(outcome.Result.Titles)))
	r.metrics.MatchedLines.Set(float64(len(outcome.Result.Lines)))

	return outcome, nil
}

func (r *Runner) collectSchedule(ctx context.Context, outcome *report.Outcome) (string, error) {
	probe, err := r.Probe(ctx)
	if err != nil {
		return "", err
	}

	outcome.WindowDays = r.cfg.WindowDays
	if !probe.Found {
		outcome.ExampleURL = r.source.RequestURL(r.source.Query(schedule.Day(outcome.CheckedAt)))
		return "", nil
	}

	outcome.Fetched = true
	outcome.ScheduleDate = probe.Date
	outcome.ExampleURL = probe.Document.URL
	return probe.Document.Text, nil
}

func (r *Runner) collectRendered(ctx context.Context, outcome *report.Outcome) (string, error) {
	if r.renderer == nil {
		return "", fmt.Errorf("no page renderer configured")
	}

	r.renderer.SetLogger(r.log)
	steps := render.TheaterSteps(r.cfg.PageURL, r.cfg.TheaterName)
	page, err := r.renderer.Render(ctx, steps)
	if err != nil {
		r.metrics.FetchAttempts.WithLabelValues("error").Inc()
		r.log.Error("Rendering page failed", logger.Fields{"url": r.cfg.PageURL}, err)
		outcome.FetchError = err.Error()
		outcome.ExampleURL = r.cfg.PageURL
		return "", nil
	}

	r.metrics.FetchAttempts.WithLabelValues("usable").Inc()
	r.metrics.FarthestOffset.Set(0)
	outcome.Fetched = true
	return page.Text, nil
}

// Run collects, reports and delivers one check.
// The returned error is non-nil only when delivery failed.
func (r *Runner) Run(ctx context.Context) (*report.Outcome, error) {
	started := r.now()
	runID := r.newID()
	r.log = r.log.With(logger.Fields{"run_id": runID})

	r.log.Info("Starting check", logger.Fields{
		"mode":    string(r.cfg.Mode),
		"theater": r.cfg.Label(),
	})

	outcome, err := r.Collect(ctx)
	if err != nil {
		return nil, err
	}

	subject, body := report.Build(outcome)
	msg := notifier.Message{ID: runID, Subject: subject, Body: body}

	err = r.notifier.Notify(ctx, msg)
	if err != nil {
		r.metrics.Notifications.WithLabelValues("failure").Inc()
		r.log.Error("Delivering report failed", logger.Fields{"channel": r.notifier.Name()}, err)
	} else {
		r.metrics.Notifications.WithLabelValues("success").Inc()
		r.log.Info("Report delivered", logger.Fields{
			"channel": r.notifier.Name(),
			"status":  string(outcome.Status()),
			"titles":  len(outcome.Result.Titles),
		})
	}

	r.metrics.Finish(started, r.now())
	if r.cfg.MetricsFile != "" {
		if werr := r.metrics.WriteTextfile(r.cfg.MetricsFile); werr != nil {
			r.log.Warn("Writing metrics failed", logger.Fields{"path": r.cfg.MetricsFile, "error": werr.Error()})
		}
	}

	if err != nil {
		return outcome, fmt.Errorf("delivering report: %w", err)
	}
	return outcome, nil
}

func dayOffset(start, date time.Time) float64 {
	return math.Round(date.Sub(start).Hours() / 24)
}
