// Package kickfire provides a client for the KickFire company-identification
// API, used to classify email domains as businesses or consumer ISPs.
package kickfire

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the KickFire v2 API.
const defaultBaseURL = "https://api.kickfire.com"

// Client defines the KickFire operations used by the pipeline.
type Client interface {
	// Lookup identifies the company behind an email domain. It returns
	// (nil, nil) when KickFire has no match for the domain; remote and
	// decode failures are errors.
	Lookup(ctx context.Context, domain string) (*Company, error)
}

// Company is a classified email domain.
type Company struct {
	Name string
	// ISP reports that the domain belongs to a consumer mail provider
	// rather than a business.
	ISP bool
}

// companyResponse is the body of GET /v2/company.
type companyResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Name  string `json:"name"`
		IsISP int    `json:"isISP"`
	} `json:"data"`
}

// Option configures the KickFire client.
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new KickFire client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
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

func (c *httpClient) Lookup(ctx context.Context, domain string) (*Company, error) {
	reqURL := c.baseURL + "/v2/company?website=" + url.QueryEscape(domain) + "&key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "kickfire: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "kickfire: company lookup")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "kickfire: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("kickfire: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result companyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "kickfire: unmarshal response")
	}

	// A non-success status is "no match", not an error.
	if result.Status != "success" || len(result.Data) == 0 {
		return nil, nil
	}

	return &Company{
		Name: result.Data[0].Name,
		ISP:  result.Data[0].IsISP != 0,
	}, nil
}
