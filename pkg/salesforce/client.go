// Package salesforce provides REST API access to Salesforce: SOSL search,
// record CRUD, and Chatter feed posts.
package salesforce

import (
	"context"
	"fmt"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Salesforce API operations used by the pipeline.
type Client interface {
	Search(ctx context.Context, sosl string) ([]SearchRecord, error)
	Query(ctx context.Context, soql string, out any) error
	InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error)
	UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error
	PostFeedItem(ctx context.Context, post FeedPost) error
}

// Connector opens an authenticated Salesforce session. A fresh session is
// created per call; the rate limiter is shared across all sessions so the
// org-wide API budget holds regardless of session churn.
type Connector interface {
	Login(ctx context.Context) (Client, error)
}

// ConnectorOption configures the connector.
type ConnectorOption func(*loginConnector)

// WithRateLimit sets a per-second rate limit for SF API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) ConnectorOption {
	return func(c *loginConnector) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type loginConnector struct {
	creds   salesforce.Creds
	limiter *rate.Limiter
}

// NewConnector creates a Connector using the username-password OAuth flow.
func NewConnector(creds salesforce.Creds, opts ...ConnectorOption) Connector {
	c := &loginConnector{creds: creds}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates and returns a Client bound to the new session.
//
// NOTE: The underlying go-salesforce/v3 library does not accept
// context.Context, so the login call itself cannot be cancelled. The ctx is
// honored by the rate limiter waits on the returned client.
func (c *loginConnector) Login(_ context.Context) (Client, error) {
	sf, err := salesforce.Init(c.creds)
	if err != nil {
		return nil, eris.Wrap(err, "sf: login")
	}
	return &sfClient{sf: sf, limiter: c.limiter}, nil
}

// sfClient wraps the go-salesforce/v3 Salesforce struct.
type sfClient struct {
	sf      *salesforce.Salesforce
	limiter *rate.Limiter
}

// NewClient creates a Client wrapping an already-authenticated go-salesforce
// instance. Used directly by tests; production code goes through a Connector.
func NewClient(sf *salesforce.Salesforce, opts ...ConnectorOption) Client {
	c := &loginConnector{}
	for _, opt := range opts {
		opt(c)
	}
	return &sfClient{sf: sf, limiter: c.limiter}
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *sfClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *sfClient) Query(ctx context.Context, soql string, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "sf: rate limit")
	}
	if err := c.sf.Query(soql, out); err != nil {
		return eris.Wrap(err, "sf: query")
	}
	return nil
}

func (c *sfClient) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", eris.Wrap(err, "sf: rate limit")
	}
	result, err := c.sf.InsertOne(sObjectName, record)
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("sf: insert %s", sObjectName))
	}
	if !result.Success {
		return "", eris.New(fmt.Sprintf("sf: insert %s failed: %v", sObjectName, result.Errors))
	}
	return result.Id, nil
}

func (c *sfClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "sf: rate limit")
	}
	fields["Id"] = id
	if err := c.sf.UpdateOne(sObjectName, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update %s %s", sObjectName, id))
	}
	return nil
}
