// Package portalapi is the HTTP client for the remote health portal API.
//
// It implements both portalapi.Caller (authenticated data calls) and
// portalapi.Authenticator (login and registration). It never retries; a
// client-side rate limiter only delays requests.
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/healthportal-app/portal-client/internal/platform/logging"
	"github.com/healthportal-app/portal-client/internal/platform/metrics"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

const (
	requestIDHeader = "X-Request-ID"

	// Error bodies larger than this are not worth parsing.
	maxErrorBody = 64 << 10
)

type Options struct {
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	Timeout    time.Duration

	// RateLimit is requests per second; zero disables the limiter.
	RateLimit float64
	RateBurst int

	Logger  *slog.Logger
	Metrics metrics.Recorder
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
	metrics metrics.Recorder
}

func New(baseURL string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	var rec metrics.Recorder = metrics.Nop{}
	if opts.Metrics != nil {
		rec = opts.Metrics
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		limiter: limiter,
		log:     logging.OrDefault(opts.Logger),
		metrics: rec,
	}
}

// Call implements portalapi.Caller.
func (c *Client) Call(ctx context.Context, req portalapi.Request, credential string, out any) error {
	route := portalapi.RouteLabel(req.Path)

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", req.Method, route, err)
		}
		body = bytes.NewReader(b)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s %s: rate limiter: %w", portalapi.ErrTransport, req.Method, route, err)
		}
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.Method, route, err)
	}
	reqID := uuid.NewString()
	hr.Header.Set(requestIDHeader, reqID)
	hr.Header.Set("Accept", "application/json")
	if body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		hr.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.http.Do(hr)
	if err != nil {
		c.metrics.RecordAPITransportError(route)
		c.log.WarnContext(ctx, "portal api unreachable",
			slog.String("method", req.Method),
			slog.String("route", route),
			slog.String("request_id", reqID),
			slog.Any("err", err),
		)
		return fmt.Errorf("%w: %s %s: %w", portalapi.ErrTransport, req.Method, route, err)
	}
	defer func() { _ = resp.Body.Close() }()

	latency := time.Since(start)
	c.metrics.RecordAPICall(route, resp.StatusCode, latency)
	c.log.DebugContext(ctx, "portal api call",
		slog.String("method", req.Method),
		slog.String("route", route),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", latency),
		slog.String("request_id", reqID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &portalapi.Error{Status: resp.StatusCode, Message: detailMessage(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s %s response: empty body", req.Method, route)
		}
		return fmt.Errorf("decode %s %s response: %w", req.Method, route, err)
	}
	return nil
}

// detailMessage extracts the server's "detail" field. FastAPI sends either a
// string or a list of validation issues, each carrying "msg".
func detailMessage(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &env) != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		return strings.TrimSpace(s)
	}

	var issues []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(env.Detail, &issues) == nil {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			if m := strings.TrimSpace(is.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

var _ portalapi.Caller = (*Client)(nil)
