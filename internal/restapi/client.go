package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_restaurant/pkg/circuitbreaker"
	"github.com/fjod/go_restaurant/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 10 << 20 // 10MB

// Client talks to the restaurant REST API.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	log     *slog.Logger
}

type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Breaker circuitbreaker.Config
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	log := logger.OrDefault(opts.Logger)
	bc := opts.Breaker
	if bc.Name == "" {
		bc = circuitbreaker.DefaultConfig("restaurant-api")
	}
	bc.IsFailure = countsAgainstUpstream
	bc.Logger = log

	return &Client{
		baseURL: u,
		token:   opts.Token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		cb:  circuitbreaker.New[[]byte](bc),
		log: log,
	}, nil
}

// Get fetches path relative to the base URL and returns the raw body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path, query)
	})
}

// GetJSON fetches path and decodes the body into out, unwrapping a {"data": {...}} envelope.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := DecodeData(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("restaurant api: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("restaurant api: %s: read body: %w", path, err)
	}
	c.log.DebugContext(ctx, "restaurant api call",
		"path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Path: path, Body: truncate(string(body), 512)}
	}
	return body, nil
}

// DecodeData decodes raw into out. When raw is an object whose "data" member
// is itself an object, that member is decoded instead.
func DecodeData(raw []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		if d := strings.TrimSpace(string(env.Data)); strings.HasPrefix(d, "{") {
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(raw, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
