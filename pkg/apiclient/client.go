// Package apiclient is the typed client for the ingest API, used by the
// worker and the operator CLI commands.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Illustar0/oneMonitor/pkg/model"
)

// Client talks to the ingest API with a static shared-secret credential.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates an ingest API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Status model.Status    `json:"status"`
	Msg    any             `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// do issues one API request and decodes the response envelope. Any
// non-success status, HTTP or envelope level, is reported as an error;
// callers treat all failures uniformly.
func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%s %s: status %d, undecodable body", method, path, resp.StatusCode)
	}
	if env.Status != model.StatusSuccess {
		return nil, fmt.Errorf("%s %s: api returned %s: %v", method, path, env.Status, env.Msg)
	}
	return env.Data, nil
}

// ListRooms fetches the remote room registry.
func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	data, err := c.do(ctx, http.MethodGet, "/rooms", nil)
	if err != nil {
		return nil, err
	}
	var rooms []model.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("parse rooms data: %w", err)
	}
	return rooms, nil
}

// CreateRoom registers a room and provisions its reading table.
func (c *Client) CreateRoom(ctx context.Context, room model.Room) error {
	_, err := c.do(ctx, http.MethodPost, "/rooms", room)
	return err
}

// UpdateRoom overwrites a room's metadata.
func (c *Client) UpdateRoom(ctx context.Context, room model.Room) error {
	_, err := c.do(ctx, http.MethodPut, "/rooms/"+url.PathEscape(room.ID), room)
	return err
}

// DeleteRoom removes a room and its reading table.
func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(id), nil)
	return err
}

// AppendReading submits one balance observation for a room.
func (c *Client) AppendReading(ctx context.Context, id string, reading model.Reading) error {
	_, err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(id), reading)
	return err
}

// ListReadings fetches a room's full time series.
func (c *Client) ListReadings(ctx context.Context, id string) ([]model.Reading, error) {
	data, err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var readings []model.Reading
	if err := json.Unmarshal(data, &readings); err != nil {
		return nil, fmt.Errorf("parse readings data: %w", err)
	}
	return readings, nil
}
