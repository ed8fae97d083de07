// internal/affiliate/client.go
//
// Bol.com Marketing Catalog API client.
//
// Context
// -------
// The admin import screen searches Bol.com and copies a hit into the
// catalog; the storefront itself never calls out.  Every request needs a
// bearer token from the client-credentials flow.  Tokens are cached and
// refreshed 30 s before they expire.
//
// Workflow
// --------
//  1. Wait on the token-bucket limiter (the partner API is rate limited).
//  2. Run the call inside the circuit breaker so a dead upstream fails fast.
//  3. Retry 5xx, 429, and network errors with exponential backoff.  A 401
//     drops the cached token and is not retried.
//
// Notes
// -----
// • Country is "NL" or "BE"; empty falls back to Config.Country.
// • Oxford commas, two spaces after periods.

package affiliate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yanizio/productpraat/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.bol.com/marketing/catalog/v1"
	DefaultAuthURL = "https://login.bol.com/token"

	// CountryNL and CountryBE are the two partner shops.
	CountryNL = "NL"
	CountryBE = "BE"

	tokenSlack = 30 * time.Second
)

var (
	// ErrUnauthorized is returned when Bol.com rejects the credentials.
	ErrUnauthorized = errors.New("affiliate: unauthorized")

	// ErrNotFound is returned by GetProduct for an unknown EAN.
	ErrNotFound = errors.New("affiliate: product not found")

	// ErrNotConfigured is returned when no client id or secret is set.
	ErrNotConfigured = errors.New("affiliate: credentials not configured")
)

// StatusError carries an unexpected upstream status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("affiliate: bol.com status %d: %s", e.Code, e.Body)
}

// Config configures a Client.
type Config struct {
	ClientID     string
	ClientSecret string
	SiteCode     string
	Country      string
	BaseURL      string
	AuthURL      string

	// RatePerSecond and Burst feed the limiter; zero means 5 rps, burst 5.
	RatePerSecond float64
	Burst         int

	// MaxElapsed bounds retries of one call; zero means 10 s.
	MaxElapsed time.Duration

	HTTPClient *http.Client
}

// Client talks to the Bol.com partner API.  Safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// New builds a Client, filling defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.Country == "" {
		cfg.Country = CountryNL
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 10 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "bol-api",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= 5 && float64(c.TotalFailures)/float64(c.Requests) >= 0.6
			},
			IsSuccessful: func(err error) bool {
				// Client-side mistakes say nothing about upstream health.
				return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				zap.L().Warn("circuit breaker state changed",
					zap.String("circuit", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		now: time.Now,
	}
}

// Configured reports whether credentials are present.  Nil-safe.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

//
// token
//

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expires.Add(-tokenSlack)) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.AuthURL+"?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("affiliate: token request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return "", statusError(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("affiliate: decode token: %w", err)
	}
	c.token = tr.AccessToken
	c.expires = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

//
// catalog calls
//

// SearchProducts runs a catalog search.  page is 1-based.
func (c *Client) SearchProducts(ctx context.Context, query string, page, pageSize int, country string) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	q := url.Values{
		"search-term":    {query},
		"page":           {strconv.Itoa(page)},
		"page-size":      {strconv.Itoa(pageSize)},
		"country-code":   {c.country(country)},
		"include-image":  {"true"},
		"include-offer":  {"true"},
		"include-rating": {"true"},
	}
	var out SearchResult
	if err := c.get(ctx, "search", "/products/search", q, &out); err != nil {
		return nil, err
	}
	for i := range out.Results {
		out.Results[i].AffiliateLink = c.AffiliateLink(out.Results[i].URL, out.Results[i].Title)
	}
	return &out, nil
}

// GetProduct fetches one product by EAN.
func (c *Client) GetProduct(ctx context.Context, ean, country string) (*Product, error) {
	q := url.Values{
		"country-code":           {c.country(country)},
		"include-specifications": {"true"},
		"include-image":          {"true"},
		"include-offer":          {"true"},
		"include-rating":         {"true"},
	}
	var out Product
	if err := c.get(ctx, "product", "/products/"+url.PathEscape(ean), q, &out); err != nil {
		return nil, err
	}
	out.AffiliateLink = c.AffiliateLink(out.URL, out.Title)
	return &out, nil
}

func (c *Client) country(cc string) string {
	if cc == "" {
		return c.cfg.Country
	}
	return cc
}

// get performs one limited, breaker-guarded, retried GET and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	call := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.doGet(ctx, path, q, out)
		})
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = c.cfg.MaxElapsed
	err := backoff.Retry(call, backoff.WithContext(b, ctx))

	outcome := "ok"
	if err != nil {
		outcome = "error"
		zap.L().Warn("bol.com request failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
	}
	metrics.AffiliateAPIRequestsTotal.WithLabelValues(op, outcome).Inc()
	return err
}

func (c *Client) doGet(ctx context.Context, path string, q url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "nl")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		c.dropToken()
		return ErrUnauthorized
	default:
		return statusError(resp)
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Code: resp.StatusCode, Body: string(body)}
}

// retryable reports whether err is worth another attempt.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var (
		syn *json.SyntaxError
		typ *json.UnmarshalTypeError
		se  *StatusError
	)
	if errors.As(err, &syn) || errors.As(err, &typ) {
		return false
	}
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return true
}
