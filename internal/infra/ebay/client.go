// Package ebay wraps the marketplace Sell APIs: inventory, offers,
// account policies, and taxonomy. Auth, rate limiting, and the
// eventual-consistency verification loop live here; everything above
// this package works with decoded payload types.
package ebay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"booklister/internal/pkg/backoff"
	"booklister/internal/pkg/config"
	"booklister/internal/pkg/errs"
)

type Client struct {
	httpClient    *http.Client
	baseURL       string
	marketplaceID string
	tokens        TokenProvider
	backoff       backoff.Policy
	tracer        Tracer
}

func NewClient(cfg config.EbayConfig, tokens TokenProvider, policy backoff.Policy, tracer Tracer) *Client {
	if tracer == nil {
		tracer = NopTracer{}
	}
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:       cfg.BaseURL(),
		marketplaceID: cfg.Marketplace,
		tokens:        tokens,
		backoff:       policy,
		tracer:        tracer,
	}
}

func (c *Client) MarketplaceID() string {
	return c.marketplaceID
}

// do executes one API call. 401/403 triggers a single token refresh and
// retry; 429 and 5xx are retried under the backoff policy, honoring
// Retry-After when the upstream supplies one.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errs.Wrap(err, "failed to encode request body")
		}
	}

	refreshed := false
	attempt := 0
	for {
		attempt++

		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return err
		}

		status, respBody, retryHeader, err := c.roundTrip(ctx, method, path, payload, token)
		if err != nil {
			return err
		}

		switch {
		case status >= 200 && status < 300:
			if out != nil && len(respBody) > 0 {
				if err := json.Unmarshal(respBody, out); err != nil {
					return errs.Wrap(err, "failed to decode response body")
				}
			}
			return nil

		case (status == http.StatusUnauthorized || status == http.StatusForbidden) && !refreshed:
			refreshed = true
			if _, err := c.tokens.Refresh(ctx); err != nil {
				return err
			}
			attempt-- // auth retry does not consume a backoff attempt
			continue

		case status == http.StatusTooManyRequests && attempt < c.backoff.MaxAttempts:
			slog.Warn("rate limited by upstream", "path", path, "attempt", attempt)
			if err := c.backoff.SleepAtLeast(ctx, attempt, retryAfter(retryHeader)); err != nil {
				return err
			}
			continue

		case status >= 500 && attempt < c.backoff.MaxAttempts:
			slog.Warn("upstream server error, retrying", "path", path, "status", status, "attempt", attempt)
			if err := c.backoff.Sleep(ctx, attempt); err != nil {
				return err
			}
			continue

		default:
			return &APIError{StatusCode: status, Message: firstErrorMessage(respBody), Body: respBody}
		}
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, string, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, "", errs.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Language", "en-US")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, "", errs.Wrap(err, "request to upstream failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", errs.Wrap(err, "failed to read response body")
	}

	return resp.StatusCode, respBody, resp.Header.Get("Retry-After"), nil
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
