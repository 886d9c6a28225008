// Package tmdb is a rate-limited client for The Movie Database API, the
// metadata source behind search, browse and the home rows.
package tmdb

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cinewave/cinewave/internal/ratelimit"
)

// DefaultImageBaseURL is the image CDN used when none is configured.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	defaultTimeout = 10 * time.Second
	defaultRPS     = 20.0
	defaultBurst   = 10

	limiterKey = "tmdb"
	maxBody    = 4 << 20
)

// Config configures the client. Zero values fall back to the public API defaults.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Region       string
	Timeout      time.Duration
	RPS          float64
	Burst        int
}

// Client is a rate-limited TMDB API client.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	language string
	region   string
	images   Images
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// New creates a new TMDB client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}

	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		region:   cfg.Region,
		images:   NewImages(cfg.ImageBaseURL),
		limiter:  ratelimit.New(cfg.RPS, cfg.Burst),
		logger:   logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Images returns the image URL builder for this client.
func (c *Client) Images() Images {
	return c.images
}

// get executes a GET request with rate limiting and decodes the JSON body into dest.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, dest any) error {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return wrapError(op, path, 0, fmt.Errorf("rate limit wait: %w", err))
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	if c.language != "" {
		query.Set("language", c.language)
	}
	if c.region != "" {
		query.Set("region", c.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return wrapError(op, path, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CineWave/1.0")

	c.logger.Debug("tmdb request", "op", op, "path", path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("tmdb request timed out", "op", op, "path", path, "elapsed", time.Since(start))
			return wrapError(op, path, 0, fmt.Errorf("%w: %w", ErrTimeout, err))
		}
		return wrapError(op, path, 0, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if isTimeout(err) {
			return wrapError(op, path, resp.StatusCode, fmt.Errorf("%w: %w", ErrTimeout, err))
		}
		return wrapError(op, path, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if err := c.checkStatus(op, path, resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Warn("tmdb returned a malformed payload", "op", op, "path", path, "error", err)
		return wrapError(op, path, resp.StatusCode, fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	return nil
}

// checkStatus maps non-2xx responses to sentinel errors. Each class gets
// its own diagnostic so a bad key is not mistaken for a missing title.
func (c *Client) checkStatus(op, path string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		c.logger.Error("tmdb rejected the API key; check TMDB_API_KEY", "op", op, "path", path)
		return wrapError(op, path, status, ErrUnauthorized)
	case status == http.StatusNotFound:
		c.logger.Warn("tmdb resource not found", "op", op, "path", path)
		return wrapError(op, path, status, ErrNotFound)
	case status == http.StatusTooManyRequests:
		c.logger.Warn("tmdb rate limit reached", "op", op, "path", path)
		return wrapError(op, path, status, ErrRateLimited)
	case status == http.StatusBadRequest:
		return wrapError(op, path, status, ErrBadRequest)
	case status >= 500:
		c.logger.Warn("tmdb server error", "op", op, "path", path, "status", status)
		return wrapError(op, path, status, ErrServer)
	default:
		return wrapError(op, path, status, fmt.Errorf("unexpected status %d: %s", status, truncate(body, 200)))
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
