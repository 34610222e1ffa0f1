// Package storyapi is the HTTP client for the remote story API.
//
// All business rules (validation, persistence, authorization) live in the
// API server. This client only shapes requests, unwraps the {status, body}
// envelope and reports failures as domain errors with code EUPSTREAM.
package storyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DukeRupert/storyshelf/internal/domain"
	"github.com/DukeRupert/storyshelf/internal/metrics"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Config holds client settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	RateBurst int

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to the story API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a story API client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("storyapi: invalid base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		http:    httpClient,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// ListStories fetches one page of stories.
//
// Only an envelope status of 200 counts as success; anything else is an
// EUPSTREAM error and the caller keeps whatever it displayed before.
func (c *Client) ListStories(ctx context.Context, page int) (domain.StoryPage, error) {
	const op = "storyapi.ListStories"

	path := "/story/list?page=" + strconv.Itoa(page)
	var env envelope[domain.StoryPage]
	if err := c.doJSON(ctx, op, http.MethodGet, path, "", nil, &env); err != nil {
		return domain.StoryPage{}, err
	}
	if env.Status != http.StatusOK {
		c.countOutcome(op, "bad_status")
		return domain.StoryPage{}, domain.Errorf(domain.EUPSTREAM, op, "Story API answered with status %d", env.Status)
	}
	return env.Body.Data, nil
}

// GetStory fetches a single story for the edit form.
func (c *Client) GetStory(ctx context.Context, id int64) (domain.Story, error) {
	const op = "storyapi.GetStory"

	var env envelope[domain.Story]
	if err := c.doJSON(ctx, op, http.MethodGet, "/story/detail/"+formatID(id), "", nil, &env); err != nil {
		return domain.Story{}, err
	}
	switch env.Status {
	case http.StatusOK:
		return env.Body.Data, nil
	case http.StatusNotFound:
		c.countOutcome(op, "bad_status")
		return domain.Story{}, domain.NotFound(op, "story", formatID(id))
	default:
		c.countOutcome(op, "bad_status")
		return domain.Story{}, domain.Errorf(domain.EUPSTREAM, op, "Story API answered with status %d", env.Status)
	}
}

// DeleteStory deletes a story with the admin's bearer token. Any 2xx
// response is success; the response body is not inspected.
func (c *Client) DeleteStory(ctx context.Context, token string, id int64) error {
	const op = "storyapi.DeleteStory"
	return c.doJSON(ctx, op, http.MethodDelete, "/story/delete/"+formatID(id), token, nil, nil)
}

// CreateStory creates a story from the form input.
func (c *Client) CreateStory(ctx context.Context, token string, in domain.StoryInput) error {
	const op = "storyapi.CreateStory"
	return c.doJSON(ctx, op, http.MethodPost, "/story/create", token, in, nil)
}

// UpdateStory updates a story from the form input.
func (c *Client) UpdateStory(ctx context.Context, token string, id int64, in domain.StoryInput) error {
	const op = "storyapi.UpdateStory"
	return c.doJSON(ctx, op, http.MethodPut, "/story/update/"+formatID(id), token, in, nil)
}

// doJSON performs one request. A non-2xx HTTP status is an error. When out
// is non-nil the body is decoded into it.
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		c.countOutcome(op, "error")
		return domain.Wrap(err, domain.ERATELIMIT, op, "Story API request was not sent")
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return domain.Internal(err, op, "failed to encode request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return domain.Internal(err, op, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.countOutcome(op, "error")
		c.logger.Error("story API request failed", "op", op, "method", method, "path", path, "error", err)
		return domain.Upstream(err, op, "Story API request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.countOutcome(op, "error")
		return domain.Upstream(err, op, "failed to read story API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.countOutcome(op, "bad_status")
		c.logger.Error("story API returned error status",
			"op", op,
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return statusError(op, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.countOutcome(op, "error")
			c.logger.Error("story API returned malformed body", "op", op, "path", path, "error", err)
			return domain.Upstream(err, op, "Story API returned a malformed response")
		}
	}

	c.countOutcome(op, "ok")
	return nil
}

func (c *Client) countOutcome(op, outcome string) {
	metrics.UpstreamRequestsTotal.WithLabelValues(op, outcome).Inc()
}

// statusError maps an HTTP error status from the API onto a domain error.
func statusError(op string, status int, raw []byte) error {
	message := envelopeMessage(raw)

	switch status {
	case http.StatusUnauthorized:
		return domain.Unauthorized(op, "The story API rejected your credential")
	case http.StatusForbidden:
		return domain.Errorf(domain.EFORBIDDEN, op, "You are not allowed to do that")
	case http.StatusNotFound:
		return domain.Errorf(domain.ENOTFOUND, op, "Story not found")
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		if message == "" {
			message = "The story API rejected the input"
		}
		return domain.Invalid(op, message)
	default:
		return domain.Errorf(domain.EUPSTREAM, op, "Story API answered with HTTP %d", status)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
