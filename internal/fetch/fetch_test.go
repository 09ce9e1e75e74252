package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, u := range []string{"not-a-valid-url", "ftp://example.com/file", "javascript:alert(1)"} {
		_, err := URL(context.Background(), u, nil)
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr, u)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{Timeout: 20 * time.Millisecond, UserAgent: DefaultUserAgent})
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "HTTP request failed", fetchErr.Message)
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Main Content</h1>
				<p>This is the   important text.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Main Content\nThis is the important text.", text)
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><div>Some content here.</div><script>var x = 1;</script></body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Some content here.", text)
}

func TestExtractMainText_BlockElementsSeparated(t *testing.T) {
	html := `<main><ul><li>Go</li><li>SQL</li></ul><p>Line one<br>Line two</p></main>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Go\nSQL\nLine one\nLine two", text)
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Sidebar junk</div>
			<div class="job-description">
				<h2>Requirements</h2>
				<p>5 years experience in Go</p>
				<div class="eeo-statement">Equal opportunity employer</div>
			</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, JobPostingSelectors(), PlatformNoiseSelectors(PlatformUnknown)...)
	require.NoError(t, err)
	assert.Contains(t, text, "Requirements")
	assert.Contains(t, text, "5 years experience")
	assert.NotContains(t, text, "Sidebar junk")
	assert.NotContains(t, text, "Equal opportunity")
}

type stubRenderer struct {
	html  string
	err   error
	calls int
}

func (s *stubRenderer) Render(context.Context, string) (string, error) {
	s.calls++
	return s.html, s.err
}

func pageServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func TestPageFetcher_LongPageSkipsBrowser(t *testing.T) {
	long := strings.Repeat("Design and operate services. ", 40)
	server := pageServer("<main><p>" + long + "</p></main>")
	defer server.Close()

	renderer := &stubRenderer{}
	f := NewPageFetcher(nil, renderer, nil)

	text, err := f.Text(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Design and operate services.")
	assert.Equal(t, 0, renderer.calls)
}

func TestPageFetcher_ShortPageUsesBrowser(t *testing.T) {
	server := pageServer(`<div id="root">Loading...</div>`)
	defer server.Close()

	rendered := "<main><p>" + strings.Repeat("Rendered posting text. ", 40) + "</p></main>"
	renderer := &stubRenderer{html: rendered}
	f := NewPageFetcher(nil, renderer, nil)

	text, err := f.Text(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Rendered posting text.")
	assert.Equal(t, 1, renderer.calls)
}

func TestPageFetcher_BrowserFailureKeepsHTTPText(t *testing.T) {
	server := pageServer(`<main>Short text</main>`)
	defer server.Close()

	f := NewPageFetcher(nil, &stubRenderer{err: errors.New("chrome not installed")}, nil)

	text, err := f.Text(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Short text", text)
}

func TestPageFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewPageFetcher(nil, nil, nil).Text(context.Background(), server.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("   short   "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}
