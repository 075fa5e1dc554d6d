package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	securitynet "crdashboard/internal/security/netutil"
)

var (
	ErrNotConfigured    = errors.New("remote target not configured")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrBodyTooLarge     = errors.New("response body too large")
)

const (
	DefaultRawBaseURL = "https://raw.githubusercontent.com"
	DefaultAPIBaseURL = "https://api.github.com"

	// Snapshot files are loaded fully into memory.
	maxBodyBytes = 5 << 20
)

// ConnectionStatus is the outcome of a connectivity check.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusNotFound     ConnectionStatus = "not_found"
	StatusError        ConnectionStatus = "error"
	StatusUnconfigured ConnectionStatus = "unconfigured"
)

type ClientConfig struct {
	RawBaseURL string
	APIBaseURL string
	UserAgent  string
	Timeout    time.Duration
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		RawBaseURL: DefaultRawBaseURL,
		APIBaseURL: DefaultAPIBaseURL,
		UserAgent:  "crdashboard/dev",
		Timeout:    15 * time.Second,
	}
}

// Client talks to the GitHub raw content host and the contents API.
type Client struct {
	cfg    ClientConfig
	client *http.Client
	logger *log.Logger
}

func NewClient(cfg ClientConfig, logger *log.Logger) *Client {
	if cfg.RawBaseURL == "" {
		cfg.RawBaseURL = DefaultRawBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.RawBaseURL = strings.TrimRight(cfg.RawBaseURL, "/")
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: cfg.Timeout, Transport: transport, CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		}},
	}
}

// ListDirectory returns the entries of dir on the target's branch.
func (c *Client) ListDirectory(ctx context.Context, t Target, dir string) ([]Entry, error) {
	if !t.Configured() {
		return nil, ErrNotConfigured
	}
	u := joinURL(c.cfg.APIBaseURL, "repos", t.Owner, t.Repository, "contents", dir)
	if t.Branch != "" {
		u += "?ref=" + url.QueryEscape(t.Branch)
	}

	body, err := c.get(ctx, t, u)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding listing of %s: %w", dir, err)
	}
	return entries, nil
}

// FetchFile returns the raw bytes of path on the target's branch.
func (c *Client) FetchFile(ctx context.Context, t Target, path string) ([]byte, error) {
	if !t.Configured() {
		return nil, ErrNotConfigured
	}
	return c.get(ctx, t, joinURL(c.cfg.RawBaseURL, t.Owner, t.Repository, t.branch(), path))
}

// CheckRepository probes the repository metadata endpoint.
func (c *Client) CheckRepository(ctx context.Context, t Target) ConnectionStatus {
	if !t.Configured() {
		return StatusUnconfigured
	}
	_, err := c.get(ctx, t, joinURL(c.cfg.APIBaseURL, "repos", t.Owner, t.Repository))
	var se *HTTPStatusError
	switch {
	case err == nil:
		return StatusConnected
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		return StatusNotFound
	default:
		c.logger.Printf("Connection check for %s failed: %v", t, err)
		return StatusError
	}
}

// HTTPStatusError carries the HTTP status of a failed request.
type HTTPStatusError struct {
	Code int
	URL  string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%v %d from %s", ErrUnexpectedStatus, e.Code, e.URL)
}

func (e *HTTPStatusError) Unwrap() error { return ErrUnexpectedStatus }

func (c *Client) get(ctx context.Context, t Target, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if err := securitynet.CheckHost(req.URL.Hostname()); err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if t.Token != "" {
		req.Header.Set("Authorization", "token "+t.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPStatusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", rawURL, err)
	}
	if len(body) > maxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// joinURL appends path parts to base, escaping each segment.
func joinURL(base string, parts ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, p := range parts {
		for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
			if seg == "" {
				continue
			}
			b.WriteByte('/')
			b.WriteString(url.PathEscape(seg))
		}
	}
	return b.String()
}
