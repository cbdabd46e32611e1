package overpass

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/camatlas/camatlas/internal/resilience"
)

// DefaultEndpoints are public Overpass instances, tried in order.
var DefaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
}

// LatLon is a point coordinate pair in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one OSM feature from a query result. Nodes carry Lat/Lon
// directly; ways and relations carry only a Center when the query asked for
// one.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *LatLon           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type response struct {
	Remark   string    `json:"remark"`
	Elements []Element `json:"elements"`
}

// Options configures a Client.
type Options struct {
	Endpoints  []string
	Timeout    time.Duration // per-request HTTP timeout
	MaxRetries int           // extra attempts across endpoints
	Backoff    time.Duration // initial retry backoff; zero means 5s
	Limiter    *rate.Limiter // shared politeness limiter; nil = unlimited
}

// Client executes Overpass queries with endpoint failover, retry and rate
// limiting. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoints  []string
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates an Overpass client.
func NewClient(opts Options) *Client {
	endpoints := opts.Endpoints
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 200 * time.Second
	}
	retries := opts.MaxRetries
	if retries <= 0 {
		retries = 2
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoints:  endpoints,
		maxRetries: retries,
		backoff:    backoff,
		limiter:    opts.Limiter,
	}
}

// Query executes a built query and returns the raw elements. Attempts
// rotate across endpoints; transient failures are retried with backoff.
func (c *Client) Query(ctx context.Context, query string) ([]Element, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "overpass: rate limit")
		}
	}

	attempt := 0
	cfg := resilience.RetryConfig{
		MaxAttempts:    c.maxRetries + 1,
		InitialBackoff: c.backoff,
		Multiplier:     2.0,
		OnRetry:        resilience.RetryLogger("overpass", "query"),
	}

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]Element, error) {
		endpoint := c.endpoints[attempt%len(c.endpoints)]
		attempt++
		return c.queryOnce(ctx, endpoint, query)
	})
}

func (c *Client) queryOnce(ctx context.Context, endpoint, query string) ([]Element, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "overpass: request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("overpass: %s returned status %d", endpoint, resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, resilience.Transient(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "overpass: read body"))
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "overpass: parse response")
	}

	// A 200 with a runtime-error remark means the query hit a server-side
	// limit; treat it like any other failed attempt.
	if strings.Contains(parsed.Remark, "runtime error") {
		zap.L().Warn("overpass runtime error", zap.String("remark", parsed.Remark))
		return nil, resilience.Transient(eris.Errorf("overpass: %s", parsed.Remark))
	}

	return parsed.Elements, nil
}
