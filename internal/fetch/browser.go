// Package fetch - browser.go renders JavaScript-heavy pages in headless Chrome.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// Shorter pages are likely client-rendered and are retried in a browser.
const MinContentLength = 500

// ShouldUseBrowser returns true if the extracted text is too short.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages with a local Chrome/Chromium through chromedp.
type ChromeRenderer struct {
	// Settle is how long to wait after the body is ready for scripts to render.
	Settle time.Duration
	Logger *slog.Logger
}

// NewChromeRenderer creates a renderer with a 2s settle delay.
func NewChromeRenderer(logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromeRenderer{Settle: 2 * time.Second, Logger: logger}
}

// Render navigates to url and returns the outer HTML once scripts have run.
// The deadline of ctx bounds the whole browser session.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	r.Logger.Debug("rendering page in headless browser", "url", url)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	r.Logger.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}
