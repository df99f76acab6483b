// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package webhook posts the summary of a finished batch to a URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/runbatch"
)

const (
	// DefaultTimeout bounds each attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 2

	// StatusSuccess means every package completed.
	StatusSuccess = "success"
	// StatusPartial means at least one package failed.
	StatusPartial = "partial"
)

var (
	// ErrPost is returned when the payload could not be delivered.
	ErrPost = errors.New("failed to post webhook")
	// ErrEncode is returned when the payload cannot be encoded.
	ErrEncode = errors.New("failed to encode webhook payload")
)

// Payload is the JSON body sent to the webhook.
type Payload struct {
	BatchID        string           `json:"batch_id"`
	Operation      string           `json:"operation"`
	Status         string           `json:"status"`
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
	Failed         int              `json:"failed"`
	Packages       runbatch.Results `json:"packages"`
	ElapsedSeconds uint64           `json:"elapsed_seconds"`
}

// NewPayload summarises results. status is partial when anything failed.
func NewPayload(operation string, results runbatch.Results, elapsed time.Duration) Payload {
	completed, failed := results.Counts()

	status := StatusSuccess
	if failed > 0 {
		status = StatusPartial
	}

	pkgs := results
	if pkgs == nil {
		pkgs = runbatch.Results{}
	}

	return Payload{
		BatchID:        uuid.New().String(),
		Operation:      operation,
		Status:         status,
		Total:          len(results),
		Completed:      completed,
		Failed:         failed,
		Packages:       pkgs,
		ElapsedSeconds: uint64(max(elapsed, 0) / time.Second),
	}
}

// Client posts payloads.
type Client struct {
	http *retryablehttp.Client
}

// ClientOption configures a Client.
type ClientOption func(*retryablehttp.Client)

// WithRetries sets the number of retries and the wait bounds between them.
func WithRetries(n int, waitMin, waitMax time.Duration) ClientOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *retryablehttp.Client) {
		c.HTTPClient.Timeout = d
	}
}

// NewClient creates a Client that logs retries through the logger in ctx.
func NewClient(ctx context.Context, opts ...ClientOption) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = DefaultRetries
	c.HTTPClient.Timeout = DefaultTimeout
	c.Logger = ctxlog.Logger(ctx)

	for _, opt := range opts {
		opt(c)
	}

	return &Client{http: c}
}

// Post sends p as JSON to url. Any non-2xx answer is an error.
func (c *Client) Post(ctx context.Context, url string, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Join(ErrPost, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Brim-Batch-Id", p.BatchID)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrPost, err)
	}

	defer resp.Body.Close() //nolint:errcheck

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Join(ErrPost, fmt.Errorf("unexpected status %s", resp.Status))
	}

	ctxlog.Info(ctx, "webhook delivered", "url", url, "batch_id", p.BatchID, "status", p.Status)

	return nil
}
