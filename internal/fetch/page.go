package fetch

import (
	"context"
	"log/slog"
)

// PageFetcher fetches a posting page and returns its readable text. With a
// Renderer configured, pages whose HTTP text is too short are rendered in a
// browser within the same context deadline.
type PageFetcher struct {
	Options  *Options
	Renderer Renderer
	Logger   *slog.Logger
}

// NewPageFetcher creates a fetcher. renderer may be nil to disable the browser fallback.
func NewPageFetcher(opts *Options, renderer Renderer, logger *slog.Logger) *PageFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PageFetcher{Options: opts, Renderer: renderer, Logger: logger}
}

// Text fetches url and extracts the main posting text.
// A non-success status or transport failure returns a *Error.
func (f *PageFetcher) Text(ctx context.Context, url string) (string, error) {
	res, err := URL(ctx, url, f.Options)
	if err != nil {
		return "", err
	}

	platform := DetectPlatform(url)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	text, err := ExtractMainText(res.HTML, content, noise...)
	if err != nil {
		return "", &Error{URL: url, Message: "failed to parse page", Cause: err}
	}
	if f.Renderer == nil || !ShouldUseBrowser(text) {
		return text, nil
	}

	html, err := f.Renderer.Render(ctx, url)
	if err != nil {
		f.Logger.Warn("browser fallback failed, keeping HTTP text", "url", url, "error", err)
		return text, nil
	}
	rendered, err := ExtractMainText(html, content, noise...)
	if err != nil || len(rendered) <= len(text) {
		return text, nil
	}
	return rendered, nil
}
