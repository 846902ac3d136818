// Package slack provides a client for the Slack Web API profile lookup.
package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Slack Web API.
const defaultBaseURL = "https://slack.com/api"

// Client defines the Slack Web API operations used by the pipeline.
type Client interface {
	// GetUserProfile fetches a user's profile fields, including the email
	// address which team_join events never carry.
	GetUserProfile(ctx context.Context, userID string) (*Profile, error)
}

// Profile holds the profile fields of a Slack user.
type Profile struct {
	Email       string `json:"email"`
	RealName    string `json:"real_name"`
	DisplayName string `json:"display_name"`
}

// profileResponse is the body of users.profile.get.
type profileResponse struct {
	OK      bool    `json:"ok"`
	Error   string  `json:"error"`
	Profile Profile `json:"profile"`
}

// Option configures the Slack client.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Slack Web API client using the given OAuth token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) GetUserProfile(ctx context.Context, userID string) (*Profile, error) {
	reqURL := c.baseURL + "/users.profile.get?user=" + url.QueryEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "slack: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "slack: users.profile.get")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "slack: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("slack: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result profileResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "slack: unmarshal response")
	}
	if !result.OK {
		return nil, eris.Errorf("slack: users.profile.get failed: %s", result.Error)
	}

	return &result.Profile, nil
}
