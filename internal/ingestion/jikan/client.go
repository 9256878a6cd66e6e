package jikan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animeschedule/internal/shared"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.jikan.moe/v4"

	// Jikan allows 3 requests per second and 60 per minute; stay well under.
	defaultRequestsPerSecond = 1.0
	defaultPageDelay         = time.Second

	// Retry configuration
	defaultMaxRetries     = 5
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 32 * time.Second
)

type ClientConfig struct {
	BaseURL           string
	RequestsPerSecond float64
	PageDelay         time.Duration
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	HTTPClient        *http.Client
}

// Client pages through the currently airing season feed one request at a
// time.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	pageDelay   time.Duration
	maxRetries  int
	initial     time.Duration
	maxBackoff  time.Duration
	logger      zerolog.Logger
}

func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = defaultPageDelay
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  cfg.HTTPClient,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		pageDelay:   cfg.PageDelay,
		maxRetries:  cfg.MaxRetries,
		initial:     cfg.InitialBackoff,
		maxBackoff:  cfg.MaxBackoff,
		logger:      logger,
	}
}

// FetchSnapshot collects every page of the currently airing feed. Pages are
// discarded if ctx is cancelled part way; the caller sees ctx.Err().
func (c *Client) FetchSnapshot(ctx context.Context) ([]Anime, error) {
	var records []Anime

	for page := 1; ; page++ {
		if page > 1 {
			if err := sleepCtx(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}

		result, err := c.FetchPage(ctx, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: page %d: %v", shared.ErrUpstreamUnavailable, page, err)
		}

		if len(result.Data) == 0 {
			if page == 1 {
				return nil, fmt.Errorf("%w: first page returned no records", shared.ErrUpstreamUnavailable)
			}
			break
		}
		records = append(records, result.Data...)

		c.logger.Debug().
			Int("page", page).
			Int("last_page", result.Pagination.LastVisiblePage).
			Int("records", len(result.Data)).
			Msg("fetched catalog page")

		if !result.Pagination.HasNextPage {
			break
		}
	}

	return records, nil
}

// FetchPage performs one paced request with retry on network errors, 429
// and 5xx.
func (c *Client) FetchPage(ctx context.Context, page int) (*SeasonPage, error) {
	endpoint := fmt.Sprintf("%s/seasons/now?continuing&page=%d", c.baseURL, page)

	var lastErr error
	delay := c.initial

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		result, retryAfter, err := c.do(ctx, endpoint)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.maxRetries {
			break
		}

		wait := delay
		if retryAfter > 0 {
			wait = retryAfter
		}
		c.logger.Warn().
			Err(err).
			Int("page", page).
			Int("attempt", attempt+1).
			Dur("retry_in", wait).
			Msg("catalog request failed, retrying")

		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
		delay = minDuration(delay*2, c.maxBackoff)
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

type permanentError struct {
	status int
	body   string
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.status, e.body)
}

func (c *Client) do(ctx context.Context, endpoint string) (*SeasonPage, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, &permanentError{body: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if shouldRetry(resp.StatusCode) {
			return nil, parseRetryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, 0, &permanentError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var page SeasonPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, 0, fmt.Errorf("failed to decode page: %w", err)
	}
	return &page, 0, nil
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// minDuration returns the smaller of two durations
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
