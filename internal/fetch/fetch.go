// Package fetch retrieves remote subscription and rule text. The decode
// pipeline itself never does I/O; this is its only collaborator that touches
// the network.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/subweave/subweave/internal/model"
)

type Options struct {
	Timeout      time.Duration // per attempt; default 15s
	MaxBytes     int64         // default 5 MiB
	MaxRedirects int           // default 5
	Retries      uint64        // extra attempts on transient failure; default 2
	Delay        time.Duration // minimum spacing between network requests
	CacheTTL     time.Duration // 0 disables the response cache
	UserAgent    string
}

type FetchError struct {
	AppError model.AppError
	Cause    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

var (
	errTooManyRedirects  = errors.New("too many redirects")
	errRedirectBadScheme = errors.New("redirect target scheme is not http/https")
)

// Client fetches text over HTTP with retry, pacing and an optional TTL cache.
//
// The inter-request delay is an explicit option rather than an ambient sleep:
// pacing is the caller's policy, not pipeline behavior. The cache exists for
// the periodic-refresh mode so an unchanged source is not re-downloaded every
// tick.
type Client struct {
	opt   Options
	http  *http.Client
	cache *gocache.Cache

	mu   sync.Mutex
	last time.Time
}

func NewClient(opt Options) *Client {
	if opt.Timeout == 0 {
		opt.Timeout = 15 * time.Second
	}
	if opt.MaxBytes == 0 {
		opt.MaxBytes = 5 * 1024 * 1024
	}
	if opt.MaxRedirects == 0 {
		opt.MaxRedirects = 5
	}
	if opt.Retries == 0 {
		opt.Retries = 2
	}
	if opt.UserAgent == "" {
		opt.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}

	c := &Client{opt: opt}
	c.http = &http.Client{
		Timeout: opt.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > opt.MaxRedirects {
				return errTooManyRedirects
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return errRedirectBadScheme
			}
			return nil
		},
	}
	if opt.CacheTTL > 0 {
		c.cache = gocache.New(opt.CacheTTL, 2*opt.CacheTTL)
	}
	return c
}

// Text fetches one URL and returns its body as UTF-8 text. Transient failures
// (network errors, 5xx) are retried with exponential backoff; malformed URLs,
// 4xx and oversized or non-UTF-8 bodies are permanent.
func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(rawURL); ok {
			return cached.(string), nil
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil || u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "INVALID_ARGUMENT",
				Message: "仅允许 http/https URL",
				Stage:   "fetch_sub",
				URL:     rawURL,
			},
			Cause: err,
		}
	}

	var body string
	attempt := func() error {
		c.pace()
		var err error
		body, err = c.once(ctx, rawURL)
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.opt.Retries), ctx)
	if err := backoff.Retry(attempt, bo); err != nil {
		return "", err
	}

	if c.cache != nil {
		c.cache.SetDefault(rawURL, body)
	}
	return body, nil
}

// pace enforces the configured minimum spacing between network requests.
func (c *Client) pace() {
	if c.opt.Delay <= 0 {
		return
	}
	c.mu.Lock()
	wait := c.opt.Delay - time.Since(c.last)
	c.last = time.Now().Add(wait)
	c.mu.Unlock()
	if wait > 0 {
		time.Sleep(wait)
	}
}

func (c *Client) once(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", backoff.Permanent(c.fail("INVALID_ARGUMENT", "请求 URL 不合法", rawURL, err))
	}
	req.Header.Set("User-Agent", c.opt.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, errTooManyRedirects) || errors.Is(err, errRedirectBadScheme) {
			return "", backoff.Permanent(c.fail("FETCH_FAILED", "重定向不合法", rawURL, err))
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() || errors.Is(err, context.DeadlineExceeded) {
			return "", c.fail("FETCH_TIMEOUT", "拉取远程资源超时", rawURL, err)
		}
		return "", c.fail("FETCH_FAILED", "拉取远程资源失败", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := c.fail("FETCH_FAILED", fmt.Sprintf("上游返回非 2xx 状态码：%d", resp.StatusCode), rawURL, nil)
		if resp.StatusCode >= 500 {
			return "", e
		}
		return "", backoff.Permanent(e)
	}

	// Read at most MaxBytes+1 to detect overflow deterministically.
	b, err := io.ReadAll(io.LimitReader(resp.Body, c.opt.MaxBytes+1))
	if err != nil {
		return "", c.fail("FETCH_FAILED", "读取上游响应失败", rawURL, err)
	}
	if int64(len(b)) > c.opt.MaxBytes {
		return "", backoff.Permanent(c.fail("TOO_LARGE", fmt.Sprintf("远程资源过大（>%d bytes）", c.opt.MaxBytes), rawURL, nil))
	}
	if !utf8.Valid(b) {
		return "", backoff.Permanent(c.fail("FETCH_INVALID_UTF8", "远程资源不是合法 UTF-8 文本", rawURL, nil))
	}
	return string(b), nil
}

func (c *Client) fail(code, message, rawURL string, cause error) *FetchError {
	return &FetchError{
		AppError: model.AppError{
			Code:    code,
			Message: message,
			Stage:   "fetch_sub",
			URL:     rawURL,
		},
		Cause: cause,
	}
}
