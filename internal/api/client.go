// Package api talks to the pitch backend over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is where the development backend listens.
const DefaultBaseURL = "http://localhost:5000/api"

// ErrStatus is returned for any non-2xx response.
var ErrStatus = errors.New("unexpected response status")

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: http.DefaultClient,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.base }

// WavFileURL addresses the recording at index.
func (c *Client) WavFileURL(index int) string {
	return c.base + "/get-wav-file?index=" + strconv.Itoa(index)
}

func (c *Client) PitchAudioURL() string { return c.base + "/get-pitch-audio" }

func (c *Client) PitchJSONURL() string { return c.base + "/get-pitch-json" }

func (c *Client) IconURL(name string) string {
	return c.base + "/get-icon/" + url.PathEscape(name)
}

// FetchBytes GETs rawURL and returns the body.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL)
}

// FetchJSON GETs rawURL and decodes the body into v.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

type switchResponse struct {
	CurrentIndex *int `json:"currentIndex"`
}

// SwitchWavFile advances the backend to the next recording and returns its
// index.
func (c *Client) SwitchWavFile(ctx context.Context) (int, error) {
	u := c.base + "/switch-wav-file"
	body, err := c.do(ctx, http.MethodPost, u)
	if err != nil {
		return 0, err
	}
	var resp switchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode %s: %w", u, err)
	}
	if resp.CurrentIndex == nil {
		return 0, fmt.Errorf("decode %s: missing currentIndex", u)
	}
	return *resp.CurrentIndex, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	c.log.Debug("backend request", "method", method, "url", rawURL, "status", resp.StatusCode,
		"bytes", len(body), "request_id", reqID, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: %w: %d", method, rawURL, ErrStatus, resp.StatusCode)
	}
	return body, nil
}
