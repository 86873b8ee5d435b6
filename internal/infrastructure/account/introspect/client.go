package introspect

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/jamwil123/pool-tracker/internal/domain/user"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
	"github.com/jamwil123/pool-tracker/internal/platform/resilience"
	"github.com/jamwil123/pool-tracker/internal/usecase"
)

const (
	DefaultIntrospectPath   = "/v1/auth/introspect"
	defaultCacheMaxEntries  = 10000
	maxIntrospectBodyLength = 1 << 20
)

var errAuthTransient = crerr.New("auth introspection transient failure")

type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	IntrospectPath  string
	AdminKey        string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	CircuitBreaker  resilience.CircuitBreakerConfig
	Logger          *logging.Logger
}

// Client resolves bearer tokens into principals through the auth service introspection
// endpoint. Active tokens are cached by their sha256 digest.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
	cache         *principalCache
	flight        singleflight.Group
}

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
		httpClient.Timeout = 5 * time.Second
	}

	path := cfg.IntrospectPath
	if strings.TrimSpace(path) == "" {
		path = DefaultIntrospectPath
	}
	maxEntries := cfg.CacheMaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultCacheMaxEntries
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, path),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		logger:        logger,
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		cache:         newPrincipalCache(cfg.CacheTTL, maxEntries),
	}
}

func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.cache.Get(key); ok {
		return principal, nil
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "auth circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: auth service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	out, err, _ := c.flight.Do(key, func() (any, error) {
		principal, reqErr := c.introspect(ctx, token)
		c.record(reqErr)
		if reqErr != nil {
			return nil, reqErr
		}
		c.cache.Set(key, principal)
		return principal, nil
	})
	if err != nil {
		if stderrors.Is(err, errAuthTransient) {
			return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return user.Principal{}, err
	}

	principal, ok := out.(user.Principal)
	if !ok {
		return user.Principal{}, fmt.Errorf("unexpected introspection payload type %T", out)
	}
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, crerr.Wrapf(errAuthTransient, "request introspection: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIntrospectBodyLength))
	if err != nil {
		return user.Principal{}, crerr.Wrapf(errAuthTransient, "read introspect response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		c.logger.WarnContext(ctx, "auth service rejected admin key", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: auth service rejected introspection credentials", usecase.ErrDependencyUnavailable)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "auth introspection failed", "status_code", resp.StatusCode)
		return user.Principal{}, crerr.Wrapf(errAuthTransient, "introspection status=%d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return user.Principal{}, fmt.Errorf("auth introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

func (c *Client) record(err error) {
	if err != nil && stderrors.Is(err, errAuthTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
