package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/cgv-watch/internal/logger"
)

const (
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"
	UserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
)

// ErrUnknownDriver is returned for an unsupported driver name
var ErrUnknownDriver = errors.New("unknown browser driver")

// Driver performs single browser interactions on one page
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Wait(ctx context.Context, d time.Duration) error
	ClickText(ctx context.Context, label string, timeout time.Duration) error
	Scroll(ctx context.Context, distance int) error
	BodyText(ctx context.Context) (string, error)
	Close() error
}

// OpenFunc starts a browser session
type OpenFunc func(ctx context.Context) (Driver, error)

// Page is the outcome of a render
type Page struct {
	Text    string
	Clicked []string // label used by each click step, empty when every label failed
}

// Renderer runs interaction steps against a fresh browser session
type Renderer struct {
	open OpenFunc
	log  *logger.Logger
}

// New creates a Renderer for the named driver
func New(driver string) (*Renderer, error) {
	switch driver {
	case "", DriverChromedp:
		return NewWithOpener(openChromedp), nil
	case DriverPlaywright:
		return NewWithOpener(openPlaywright), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
}

// NewWithOpener creates a Renderer over a custom session opener
func NewWithOpener(open OpenFunc) *Renderer {
	return &Renderer{open: open, log: logger.Default()}
}

// SetLogger directs step warnings to l
func (r *Renderer) SetLogger(l *logger.Logger) {
	r.log = l
}

// Render runs steps and returns the body text.
// Navigation failures abort; click and scroll failures do not.
func (r *Renderer) Render(ctx context.Context, steps []Step) (*Page, error) {
	driver, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			r.log.Warn("Closing browser failed", logger.Fields{"error": err.Error()})
		}
	}()

	page := &Page{}
	for _, step := range steps {
		switch step.Kind {
		case StepNavigate:
			if err := driver.Navigate(ctx, step.URL); err != nil {
				return nil, fmt.Errorf("navigating to %s: %w", step.URL, err)
			}
		case StepWait:
			if err := driver.Wait(ctx, step.Duration); err != nil {
				return nil, fmt.Errorf("waiting: %w", err)
			}
		case StepClickText:
			page.Clicked = append(page.Clicked, r.clickFirst(ctx, driver, step))
		case StepScroll:
			if err := driver.Scroll(ctx, step.Distance); err != nil {
				r.log.Warn("Scroll failed, continuing", logger.Fields{"distance": step.Distance, "error": err.Error()})
			}
		default:
			r.log.Warn("Skipping unknown step", logger.Fields{"step": string(step.Kind)})
		}
	}

	text, err := driver.BodyText(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading body text: %w", err)
	}
	page.Text = text

	return page, nil
}

// clickFirst tries each label in order and returns the one that worked
func (r *Renderer) clickFirst(ctx context.Context, driver Driver, step Step) string {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = DefaultClickTimeout
	}

	for _, label := range step.Labels {
		err := driver.ClickText(ctx, label, timeout)
		if err == nil {
			r.log.Debug("Clicked", logger.Fields{"label": label})
			return label
		}
		r.log.Debug("Click attempt failed", logger.Fields{"label": label, "error": err.Error()})
	}

	r.log.Warn("No click label matched, continuing", logger.Fields{"labels": step.Labels})
	return ""
}
