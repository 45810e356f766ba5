package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/multiki/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default total request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodySize is the default maximum response body size (8MB)
	DefaultMaxBodySize = 8 << 20
	// DefaultUserAgent is the default User-Agent header
	DefaultUserAgent = "Multiki/1.0"
)

// ErrBodyTooLarge reports a response body over Config.MaxBodySize.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Config contains configuration options for the HTTP client.
type Config struct {
	// Timeout bounds the whole request including the body read (default: 30s)
	Timeout time.Duration
	// UserAgent is the User-Agent header to send
	UserAgent string
	// MaxBodySize is the maximum response body size in bytes
	MaxBodySize int64
	// RateLimit is the minimum duration between requests (0 = no limit)
	RateLimit time.Duration
}

// Client fetches raw page bytes. It never retries.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
		logger:      logger,
	}

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.RateLimit), 1)
	}

	return c
}

// Fetch performs one GET and returns the response body.
// Every failure, including non-2xx statuses and timeouts, is a *domain.UnreachableError.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.UnreachableError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.UnreachableError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")

	c.logger.Debug("fetching", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("fetch failed", "url", url, "error", err)
		return nil, &domain.UnreachableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("fetch returned error status", "url", url, "status", resp.StatusCode)
		return nil, &domain.UnreachableError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &domain.UnreachableError{URL: url, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if int64(len(body)) > c.maxBodySize {
		c.logger.Error("response body too large", "url", url, "limit", c.maxBodySize)
		return nil, &domain.UnreachableError{URL: url, Err: fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, c.maxBodySize)}
	}

	c.logger.Debug("fetched", "url", url, "bytes", len(body))
	return body, nil
}
