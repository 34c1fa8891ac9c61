package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/pluginrelease/pkg/buildinfo"
	"github.com/matzehuels/pluginrelease/pkg/observability"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client performs GET requests against an update site.
type Client struct {
	http      *http.Client
	userAgent string
	policy    Policy
}

// NewClient creates a Client. An empty userAgent uses [buildinfo.UserAgent].
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = buildinfo.UserAgent()
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		userAgent: userAgent,
		policy:    DefaultPolicy(),
	}
}

// WithPolicy returns a copy of c that retries with p.
func (c *Client) WithPolicy(p Policy) *Client {
	cc := *c
	cc.policy = p
	return &cc
}

// Get fetches rawURL and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var data []byte
	err := c.policy.Retry(ctx, func() error {
		body, err := c.doRequest(ctx, rawURL)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(body)
		if err != nil {
			return Retryable(fmt.Errorf("%w: read %s: %v", ErrNetwork, rawURL, err))
		}
		return nil
	})
	return data, err
}

// Download fetches rawURL into dest. The file is written to a temporary
// name first and renamed, so dest never holds a partial download.
func (c *Client) Download(ctx context.Context, rawURL, dest string) error {
	data, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	return WriteFileAtomic(dest, data)
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	host, path := splitURL(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func splitURL(u *url.URL) (host, path string) {
	return u.Host, u.Path
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
