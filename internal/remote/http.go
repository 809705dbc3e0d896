package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

// HTTPConfig shapes the outbound HTTP client.
type HTTPConfig struct {
	Timeout time.Duration
	// RateLimit is outbound calls per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:   10 * time.Second,
		RateLimit: 200,
		RateBurst: 50,
	}
}

func (c HTTPConfig) WithDefaults() HTTPConfig {
	d := DefaultHTTPConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = d.RateBurst
	}
	return c
}

// HTTPClient is the net/http implementation of Client.
type HTTPClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	cfg = cfg.WithDefaults()
	c := &HTTPClient{
		http: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return c
}

func (c *HTTPClient) Call(ctx context.Context, req Request) (Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	fail := func(err error) (Response, error) {
		return Response{}, &TransportError{Method: method, URL: req.URL, Err: err}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(err)
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return fail(err)
	}
	if req.Body != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fail(err)
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return fail(err)
	}
	return Response{StatusCode: httpResp.StatusCode, Body: payload}, nil
}
