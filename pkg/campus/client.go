// Package campus talks to the campus account service that exposes
// per-room prepaid electricity balances.
package campus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client authenticates against the campus account service. Sessions expire
// server-side, so callers log in once per poll cycle instead of caching a
// session across cycles.
type Client struct {
	BaseURL    string
	Usercode   string
	Password   string
	HTTPClient *http.Client
}

// NewClient creates a campus account client.
func NewClient(baseURL, usercode, password string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Usercode: usercode,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Session is an authenticated view of the campus account service.
type Session struct {
	client *Client
	token  string
}

type loginRequest struct {
	Usercode string `json:"usercode"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates and returns a session token valid for subsequent
// balance reads.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	body, err := json.Marshal(loginRequest{Usercode: c.Usercode, Password: c.Password})
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(data))
	}

	var lr loginResponse
	if err := json.Unmarshal(data, &lr); err != nil {
		return nil, fmt.Errorf("parse login response: %w", err)
	}
	if lr.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}

	return &Session{client: c, token: lr.Token}, nil
}

type balanceResponse struct {
	// The account service returns the balance as a decimal string.
	Balance string `json:"balance"`
}

// Balance fetches the remaining prepaid balance for a room.
func (s *Session) Balance(ctx context.Context, roomID string) (float64, error) {
	u := fmt.Sprintf("%s/energy/rooms/%s/balance", s.client.BaseURL, url.PathEscape(roomID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create balance request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("balance request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read balance response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("balance fetch for room %s failed with status %d: %s",
			roomID, resp.StatusCode, string(data))
	}

	var br balanceResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return 0, fmt.Errorf("parse balance response: %w", err)
	}

	balance, err := strconv.ParseFloat(br.Balance, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance value %q: %w", br.Balance, err)
	}
	if balance < 0 {
		return 0, fmt.Errorf("room %s: negative balance %v", roomID, balance)
	}
	return balance, nil
}
