// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package gong

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/callvista/callsight/transcript"
)

const (
	// apiTimeFormat is the timestamp layout the call listing endpoint expects.
	apiTimeFormat = "2006-01-02T15:04:05.000Z"

	defaultRetryElapsed = 30 * time.Second
)

// ErrTranscriptNotFound indicates the transcript endpoint returned no
// transcript for the requested call.
var ErrTranscriptNotFound = errors.New("transcript not found")

// Client calls the Gong REST API using basic auth credentials.
type Client struct {
	baseURL    string
	accessKey  string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Gong API client.
func NewClient(baseURL, accessKey, secret string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    baseURL,
		accessKey:  accessKey,
		secret:     secret,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default().With("component", "gong"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ListCalls fetches all calls that started within [from, to], following the
// pagination cursor until the listing is exhausted.
func (c *Client) ListCalls(ctx context.Context, from, to time.Time) ([]Call, error) {
	var all []Call
	cursor := ""

	for {
		query := url.Values{}
		query.Set("fromDateTime", from.UTC().Format(apiTimeFormat))
		query.Set("toDateTime", to.UTC().Format(apiTimeFormat))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var page callsResponse
		if err := c.doJSON(ctx, http.MethodGet, "/v2/calls?"+query.Encode(), nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Calls...)
		c.logger.Debug("fetched call page",
			"pageSize", page.Records.CurrentPageSize,
			"totalRecords", page.Records.TotalRecords,
			"retrieved", len(all))

		cursor = page.Records.Cursor
		if cursor == "" {
			break
		}
	}

	c.logger.Info("retrieved calls", "count", len(all))
	return all, nil
}

// GetTranscript fetches the transcript for one call, returned as speaker
// turns ready for normalization.
func (c *Client) GetTranscript(ctx context.Context, callId string) ([]transcript.Turn, error) {
	var req transcriptRequest
	req.Filter.CallIds = []string{callId}

	var resp transcriptResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/calls/transcript", &req, &resp); err != nil {
		return nil, err
	}

	turns := resp.turns(callId)
	if turns == nil {
		return nil, fmt.Errorf("%w: call %s", ErrTranscriptNotFound, callId)
	}
	return turns, nil
}

// doJSON performs one API request with exponential-backoff retry. Client
// errors (4xx) are permanent; server errors and transport failures retry.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, target any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	op := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.SetBasicAuth(c.accessKey, c.secret)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("gong api %s %s: status %d: %s", method, path, resp.StatusCode, respBody))
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("gong api %s %s: status %d", method, path, resp.StatusCode)
		}

		return json.Unmarshal(respBody, target)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = defaultRetryElapsed
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}
