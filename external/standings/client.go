package standings

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/singleflight"

	"github.com/jamwil123/pool-tracker/internal/domain/standing"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
	"github.com/jamwil123/pool-tracker/internal/platform/resilience"
	"github.com/jamwil123/pool-tracker/internal/usecase"
)

const (
	DefaultURL      = "https://scrapecleaguetable-wbv6pvivda-nw.a.run.app/"
	maxResponseSize = 2 << 20
)

var errStandingsTransient = crerr.New("standings upstream transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	URL            string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the division table from the league scraper.
type Client struct {
	httpClient *http.Client
	url        string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
	now        func() time.Time
}

var _ standing.Source = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	target := strings.TrimSpace(cfg.URL)
	if target == "" {
		target = DefaultURL
	}

	return &Client{
		httpClient: httpClient,
		url:        target,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		now:        time.Now,
	}
}

// Breaker exposes the circuit breaker so callers can observe state changes.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// FetchRaw makes one request and hands back whatever the upstream answered.
func (c *Client) FetchRaw(ctx context.Context) (standing.RawResponse, error) {
	if err := c.breaker.Allow(); err != nil {
		return standing.RawResponse{}, fmt.Errorf("%w: standings upstream is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	resp, err := c.get(ctx)
	c.record(err)
	if err != nil {
		return standing.RawResponse{}, err
	}
	return resp, nil
}

// FetchTable fetches and parses the table, retrying transient failures. Concurrent callers
// share one upstream request.
func (c *Client) FetchTable(ctx context.Context) (standing.Table, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "standings circuit breaker rejected request", "state", c.breaker.State())
		return standing.Table{}, fmt.Errorf("%w: standings upstream is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	out, err, _ := c.flight.Do(c.url, func() (any, error) {
		resp, reqErr := c.executeRequest(ctx)
		c.record(reqErr)
		return resp, reqErr
	})
	if err != nil {
		return standing.Table{}, err
	}

	resp, ok := out.(standing.RawResponse)
	if !ok {
		return standing.Table{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	if isHTML(resp.ContentType) {
		table, err := parseHTMLTable(resp.Body)
		if err != nil {
			return standing.Table{}, fmt.Errorf("parse standings html: %w", err)
		}
		return c.withDefaults(table), nil
	}

	table, err := parsePayload(resp.Body)
	if err != nil {
		return standing.Table{}, fmt.Errorf("decode standings payload: %w", err)
	}
	return c.withDefaults(table), nil
}

func (c *Client) executeRequest(ctx context.Context) (standing.RawResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.get(ctx)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case isRetryableStatus(resp.StatusCode):
			lastErr = fmt.Errorf("%w: upstream status=%d body=%s", errStandingsTransient, resp.StatusCode, abbreviateBody(resp.Body))
		default:
			return standing.RawResponse{}, fmt.Errorf("upstream status=%d body=%s", resp.StatusCode, abbreviateBody(resp.Body))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return standing.RawResponse{}, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("standings request failed")
	}
	c.logger.WarnContext(ctx, "standings request failed", "url", c.url, "error", lastErr)
	return standing.RawResponse{}, lastErr
}

func (c *Client) get(ctx context.Context) (standing.RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return standing.RawResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return standing.RawResponse{}, fmt.Errorf("%w: send request: %v", errStandingsTransient, err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseSize)); err != nil {
		return standing.RawResponse{}, fmt.Errorf("%w: read response body: %v", errStandingsTransient, err)
	}

	return standing.RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        append([]byte(nil), buf.B...),
	}, nil
}

func (c *Client) record(err error) {
	if err != nil && stderrors.Is(err, errStandingsTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func (c *Client) withDefaults(table standing.Table) standing.Table {
	if table.ScrapedAt == "" {
		table.ScrapedAt = c.now().UTC().Format(time.RFC3339)
	}
	return table
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html"
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
