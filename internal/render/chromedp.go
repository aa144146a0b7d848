package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

type chromedpDriver struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

func openChromedp(ctx context.Context) (Driver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "ko-KR"),
		chromedp.UserAgent(UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Launch the browser before any step runs.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, err
	}

	return &chromedpDriver{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

func (d *chromedpDriver) Navigate(ctx context.Context, url string) error {
	return chromedp.Run(d.ctx, chromedp.Navigate(url))
}

func (d *chromedpDriver) Wait(ctx context.Context, wait time.Duration) error {
	return chromedp.Run(d.ctx, chromedp.Sleep(wait))
}

func (d *chromedpDriver) ClickText(ctx context.Context, label string, timeout time.Duration) error {
	stepCtx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()

	return chromedp.Run(stepCtx, chromedp.Click(textXPath(label), chromedp.BySearch, chromedp.NodeVisible))
}

func (d *chromedpDriver) Scroll(ctx context.Context, distance int) error {
	return chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", distance), nil))
}

func (d *chromedpDriver) BodyText(ctx context.Context) (string, error) {
	var text string
	err := chromedp.Run(d.ctx, chromedp.Text("body", &text, chromedp.ByQuery))
	return text, err
}

func (d *chromedpDriver) Close() error {
	d.cancelTab()
	d.cancelAlloc()
	return nil
}

// textXPath selects the innermost elements whose own text contains label
func textXPath(label string) string {
	return fmt.Sprintf("//*[contains(normalize-space(text()), %s)]", xpathLiteral(label))
}

// xpathLiteral quotes s for use in an XPath 1.0 expression
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
