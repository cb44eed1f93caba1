// Package fetch downloads presentations from URLs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ScormAgent/1.0)"

// DefaultMaxBytes caps a download when Options.MaxBytes is zero.
const DefaultMaxBytes = 50 * 1024 * 1024

// Result holds a downloaded file.
type Result struct {
	URL         string // final URL after following a landing page link
	Filename    string
	ContentType string
	StatusCode  int
	Data        []byte
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrTooLarge is wrapped by Error when a response exceeds Options.MaxBytes.
var ErrTooLarge = errors.New("response exceeds size limit")

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
	// Extensions are the file suffixes followed from an HTML landing page
	Extensions []string
	Client     *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
		MaxBytes:   DefaultMaxBytes,
		Extensions: []string{".pptx", ".potx", ".ppsx"},
	}
}

// Download retrieves a file. When the URL serves an HTML page, the first link on it to a
// file with one of opts.Extensions is followed once.
func Download(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	result, err := get(ctx, urlStr, opts)
	if err != nil {
		return result, err
	}

	if !isHTML(result.ContentType) {
		return result, nil
	}

	link, err := findFileLink(result, opts.Extensions)
	if err != nil {
		return result, err
	}
	return get(ctx, link, opts)
}

func get(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	result := &Result{
		URL:         resp.Request.URL.String(),
		Filename:    filename(resp),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return result, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}
	if int64(len(data)) > limit {
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("more than %d bytes", limit), Cause: ErrTooLarge}
	}
	result.Data = data
	return result, nil
}

// findFileLink returns the absolute URL of the first anchor whose path ends in one of extensions.
func findFileLink(page *Result, extensions []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page.Data)))
	if err != nil {
		return "", &Error{URL: page.URL, Message: "failed to parse HTML", Cause: err}
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		return "", &Error{URL: page.URL, Message: "invalid page URL", Cause: err}
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		target := base.ResolveReference(ref)
		ext := strings.ToLower(path.Ext(target.Path))
		for _, want := range extensions {
			if ext == want {
				found = target.String()
				return false
			}
		}
		return true
	})

	if found == "" {
		return "", &Error{URL: page.URL, Message: "page is HTML and links to no presentation"}
	}
	return found, nil
}

// filename prefers Content-Disposition, then the last path segment.
func filename(resp *http.Response) string {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return path.Base(params["filename"])
		}
	}
	name := path.Base(resp.Request.URL.Path)
	if name == "/" || name == "." {
		return "download"
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mediaType == "text/html" || mediaType == "application/xhtml+xml")
}
