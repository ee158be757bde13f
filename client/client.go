// Package client is a typed HTTP client for the agent hub API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agent-hub/entities"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// APIError carries a non-2xx response the client does not map itself.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CommandStatus is the answer to a status lookup. Response is set when the
// server holds a result record; Pending is set when the command is queued
// or awaiting its result.
type CommandStatus struct {
	Pending  bool
	Response *entities.CommandResponse
}

func (c *Client) Agents(ctx context.Context, onlineOnly bool, minutes *int) ([]entities.AgentIdentity, error) {
	q := url.Values{}
	q.Set("onlineOnly", strconv.FormatBool(onlineOnly))
	if minutes != nil {
		q.Set("minutes", strconv.Itoa(*minutes))
	}
	var out []entities.AgentIdentity
	if _, err := c.do(ctx, http.MethodGet, "/api/Admin/agents?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Agent(ctx context.Context, agentID string) (*entities.AgentIdentity, error) {
	var out entities.AgentIdentity
	if _, err := c.do(ctx, http.MethodGet, "/api/Admin/agents/"+url.PathEscape(agentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Queue submits cmd and returns the command id assigned by the server.
func (c *Client) Queue(ctx context.Context, cmd entities.CommandRequest) (string, error) {
	var out struct {
		CommandID string `json:"commandId"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/Command", cmd, &out); err != nil {
		return "", err
	}
	return out.CommandID, nil
}

func (c *Client) Status(ctx context.Context, commandID string) (*CommandStatus, error) {
	var resp entities.CommandResponse
	code, err := c.do(ctx, http.MethodGet, "/api/Command/"+url.PathEscape(commandID), nil, &resp)
	if err != nil {
		return nil, err
	}
	if code == http.StatusAccepted {
		return &CommandStatus{Pending: true}, nil
	}
	return &CommandStatus{Pending: resp.Status == entities.StatusPending, Response: &resp}, nil
}

func (c *Client) MetricsSummary(ctx context.Context, agentID string) (map[string]any, error) {
	var out map[string]any
	if _, err := c.do(ctx, http.MethodGet, "/api/Admin/agents/"+url.PathEscape(agentID)+"/metrics/aggregated", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out == nil || resp.StatusCode == http.StatusAccepted {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
