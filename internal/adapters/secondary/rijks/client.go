package rijks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"rijks-verifier/internal/config"
	"rijks-verifier/internal/core/domain"
	ports "rijks-verifier/internal/core/ports/output"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a collection API client. Every request gets its own
// timeout from cfg.
func NewClient(cfg *config.RijksConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: cfg.UserAgent,
	}
}

var _ ports.CollectionAPI = (*Client)(nil)

// Get issues a GET and reads the whole body. Non-2xx statuses are returned
// as responses, not errors.
func (c *Client) Get(ctx context.Context, rawURL string) (*ports.APIResponse, error) {
	redacted := RedactURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.ConstructionError{Path: redacted, Err: unwrapURLError(err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{URL: redacted, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{URL: redacted, Err: fmt.Errorf("read body: %w", err)}
	}

	log.WithFields(log.Fields{
		"method":     http.MethodGet,
		"url":        redacted,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
		"bytes":      len(body),
	}).Debug("collection api request")

	return &ports.APIResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// unwrapURLError drops the *url.Error wrapper, whose message embeds the full
// URL including the API key.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// RedactURL masks the key query parameter so URLs can be logged and
// reported.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Get(domain.ParamKey) == "" {
		return rawURL
	}
	q.Set(domain.ParamKey, "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
