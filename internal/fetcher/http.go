package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/camatlas/camatlas/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RateLimiters map[string]*rate.Limiter // per-host; hosts not listed get defaultLimit
	Progress     bool                     // draw a console progress bar on DownloadToFile
}

const defaultLimit = rate.Limit(20)

// HTTPFetcher implements Fetcher over net/http with retry and per-host
// rate limiting.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	limiters map[string]*rate.Limiter
	fallback *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "camatlas/1.0"
	}
	limiters := make(map[string]*rate.Limiter, len(opts.RateLimiters))
	for host, lim := range opts.RateLimiters {
		limiters[host] = lim
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: limiters,
		fallback: rate.NewLimiter(defaultLimit, int(defaultLimit)),
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return f.fallback
	}
	if lim, ok := f.limiters[u.Host]; ok {
		return lim
	}
	return f.fallback
}

// Download fetches the URL and returns the response body. The caller owns
// the body and must close it.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// DownloadToFile fetches the URL into path, drawing a progress bar when
// enabled and the server reports a content length.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL, path string) (int64, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: create %s", path)
	}
	defer out.Close() //nolint:errcheck

	var dst io.Writer = out
	if f.opts.Progress && resp.ContentLength > 0 {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
		dst = io.MultiWriter(out, bar)
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, eris.Wrapf(err, "fetcher: write %s", path)
	}
	return n, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	lim := f.limiterFor(rawURL)

	cfg := resilience.RetryConfig{
		MaxAttempts:    f.opts.MaxRetries,
		InitialBackoff: time.Second,
		OnRetry:        resilience.RetryLogger("http", rawURL),
	}

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*http.Response, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limit")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: build request %s", rawURL)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, resilience.Transient(eris.Wrapf(err, "fetcher: get %s", rawURL))
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			respErr := eris.Errorf("fetcher: %s returned status %d", rawURL, resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				zap.L().Warn("retryable http status",
					zap.String("url", rawURL),
					zap.Int("status", resp.StatusCode),
				)
				return nil, resilience.Transient(respErr)
			}
			return nil, respErr
		}

		return resp, nil
	})
}
