// Package fetcher retrieves the remote sample application manifest that is
// stored verbatim in the generated tree.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultHTTPClient is the default HTTP client used by RemoteFetcher
// This can be overridden for testing
var defaultHTTPClient = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("too many redirects")
		}
		return nil
	},
}

const (
	// Default timeout for a single HTTP attempt
	defaultHTTPTimeout = 10 * time.Second
	// Default delay before the first retry
	defaultRetryInterval = 500 * time.Millisecond
)

// ErrUnexpectedStatus is returned when the server answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Options holds configuration for the fetcher
type Options struct {
	// Timeout bounds every attempt, including reading the body
	Timeout time.Duration
	// Retries is the number of extra attempts after the first one
	Retries int
	// RetryInterval is the initial backoff between attempts
	RetryInterval time.Duration
}

// DefaultOptions returns the default fetcher options
func DefaultOptions() *Options {
	return &Options{
		Timeout:       defaultHTTPTimeout,
		Retries:       0,
		RetryInterval: defaultRetryInterval,
	}
}

// Result is what the server returned on the last attempt
type Result struct {
	URL        string
	StatusCode int
	Status     string
	Body       []byte
	Attempts   int
}

// OK reports whether the last attempt got a 2xx response
func (r *Result) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// RemoteFetcher downloads a single HTTP/HTTPS resource
type RemoteFetcher struct {
	source string
	opts   *Options
	client *http.Client
}

// isValidURL checks if a string is a valid URL
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// NewRemoteFetcher creates a new RemoteFetcher
func NewRemoteFetcher(source string, opts *Options, client *http.Client) (*RemoteFetcher, error) {
	if !isValidURL(source) {
		return nil, fmt.Errorf("invalid URL: %s", source)
	}

	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHTTPTimeout
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}

	// Use provided client or default client if not provided
	if client == nil {
		client = defaultHTTPClient
	}

	return &RemoteFetcher{
		source: source,
		opts:   opts,
		client: client,
	}, nil
}

// Source returns the URL being fetched
func (f *RemoteFetcher) Source() string {
	return f.source
}

// Fetch downloads the resource. Transport errors and 5xx responses are
// retried up to Options.Retries times; other statuses are final.
//
// The returned Result is never nil. When err is not nil it holds the response
// of the final attempt, or no response at all (StatusCode zero, nil Body) when
// that attempt failed in transport, so callers can decide what to do with it.
func (f *RemoteFetcher) Fetch(ctx context.Context) (*Result, error) {
	last := &Result{URL: f.source}
	attempts := 0

	operation := func() error {
		attempts++
		res, err := f.do(ctx)
		if err != nil {
			// no response on this attempt; drop whatever an earlier one returned
			*last = Result{URL: f.source}
			return err
		}
		*last = *res
		if res.OK() {
			return nil
		}
		statusErr := fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status)
		if res.StatusCode >= http.StatusInternalServerError {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.opts.RetryInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(f.opts.Retries)), ctx)

	err := backoff.Retry(operation, policy)
	last.Attempts = attempts
	if err != nil {
		return last, fmt.Errorf("fetch %s failed after %d attempt(s): %w", f.source, attempts, err)
	}
	return last, nil
}

// do performs a single GET bounded by the per-attempt timeout
func (f *RemoteFetcher) do(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.source, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/yaml,text/yaml,text/plain")
	req.Header.Set("User-Agent", "meshgen/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Result{
		URL:        f.source,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}, nil
}
