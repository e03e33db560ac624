// Package snapshot opens a written report in headless Chrome and captures it as a PNG.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"airbnb-report/utils"
)

// payloadDaysJS counts the dates in the embedded day payload, proving the page parsed
const payloadDaysJS = `Object.keys(JSON.parse(document.getElementById("day-details-data").textContent || "{}")).length`

// Options controls the browser capture
type Options struct {
	Timeout    time.Duration // per attempt
	MaxRetries int
	Width      int
	Height     int
}

// Capturer takes full-page screenshots of report files
type Capturer struct {
	opts   Options
	logger *utils.Logger
}

// NewCapturer creates a new Capturer
func NewCapturer(opts Options, logger *utils.Logger) *Capturer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 2
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 900
	}
	return &Capturer{opts: opts, logger: logger}
}

// newContext creates a fresh chromedp context (one browser, one tab)
func (c *Capturer) newContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.WindowSize(c.opts.Width, c.opts.Height),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

// Capture renders reportPath and writes a full-page PNG to pngPath. wantDays is the
// number of dates the page payload must carry; a mismatch fails the attempt.
func (c *Capturer) Capture(ctx context.Context, reportPath, pngPath string, wantDays int) error {
	pageURL, err := FileURL(reportPath)
	if err != nil {
		return err
	}

	var shot []byte
	err = utils.RetryWithBackoff(ctx, c.opts.MaxRetries, func(ctx context.Context) error {
		browserCtx, cancel := c.newContext(ctx)
		defer cancel()
		browserCtx, cancelTimeout := context.WithTimeout(browserCtx, c.opts.Timeout)
		defer cancelTimeout()

		var days int
		if err := chromedp.Run(browserCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Evaluate(payloadDaysJS, &days),
		); err != nil {
			return fmt.Errorf("failed to load report: %w", err)
		}
		if err := checkPayloadDays(days, wantDays); err != nil {
			return err
		}
		if err := chromedp.Run(browserCtx, chromedp.FullScreenshot(&shot, 100)); err != nil {
			return fmt.Errorf("failed to capture screenshot: %w", err)
		}
		return nil
	}, c.logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pngPath), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(pngPath, shot, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	c.logger.Info("Snapshot saved to: %s (%d bytes)", pngPath, len(shot))
	return nil
}

// FileURL turns a local path into an absolute file:// URL
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve report path: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

func checkPayloadDays(got, want int) error {
	if got != want {
		return fmt.Errorf("report payload has %d days, expected %d", got, want)
	}
	return nil
}
