package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBody limita lo que se lee de una respuesta (un JWKS es chico).
	DefaultMaxBody int64 = 1 << 20
)

// Client envuelve *http.Client para los adapters que hablan con terceros
// (p.ej. el JWKS publicado por un cliente GNAP).
type Client struct {
	HTTP      *http.Client
	MaxBody   int64
	UserAgent string
}

func New(timeout time.Duration) *Client {
	return NewWithTransport(timeout, nil)
}

// NewWithTransport permite inyectar un Transport (p.ej. para tests).
func NewWithTransport(timeout time.Duration, tr http.RoundTripper) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tr == nil {
		tr = http.DefaultTransport
	}
	return &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		MaxBody:   DefaultMaxBody,
		UserAgent: "gnap-as",
	}
}

// HTTPError representa una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Get trae rawURL (absoluta, http/https) y devuelve el body.
func (c *Client) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, map[string]string{"Accept": accept})
}

func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string) ([]byte, error) {
	if c == nil || c.HTTP == nil {
		return nil, errors.New("httpclient: nil client")
	}
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range headers {
		if strings.TrimSpace(k) == "" || v == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	limit := c.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	return raw, nil
}

func checkURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("httpclient: invalid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("httpclient: url must be absolute http(s): %q", rawURL)
	}
	return nil
}
