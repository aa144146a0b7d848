package render

import (
	"context"
	"errors"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

type playwrightDriver struct {
	pw      *pw.Playwright
	browser pw.Browser
	page    pw.Page
}

func openPlaywright(ctx context.Context) (Driver, error) {
	instance, err := pw.Run()
	if err != nil {
		return nil, err
	}

	browser, err := instance.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
	})
	if err != nil {
		return nil, errors.Join(err, instance.Stop())
	}

	page, err := browser.NewPage(pw.BrowserNewPageOptions{
		UserAgent: pw.String(UserAgent),
		Locale:    pw.String("ko-KR"),
	})
	if err != nil {
		return nil, errors.Join(err, browser.Close(), instance.Stop())
	}

	return &playwrightDriver{pw: instance, browser: browser, page: page}, nil
}

func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	_, err := d.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (d *playwrightDriver) Wait(ctx context.Context, wait time.Duration) error {
	d.page.WaitForTimeout(float64(wait.Milliseconds()))
	return ctx.Err()
}

func (d *playwrightDriver) ClickText(ctx context.Context, label string, timeout time.Duration) error {
	return d.page.GetByText(label).First().Click(pw.LocatorClickOptions{
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
}

func (d *playwrightDriver) Scroll(ctx context.Context, distance int) error {
	return d.page.Mouse().Wheel(0, float64(distance))
}

func (d *playwrightDriver) BodyText(ctx context.Context) (string, error) {
	return d.page.Locator("body").InnerText()
}

func (d *playwrightDriver) Close() error {
	return errors.Join(d.browser.Close(), d.pw.Stop())
}
