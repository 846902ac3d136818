package main

import (
	gosf "github.com/k-capehart/go-salesforce/v3"

	"github.com/sells-group/community-sync/internal/pipeline"
	"github.com/sells-group/community-sync/pkg/kickfire"
	"github.com/sells-group/community-sync/pkg/salesforce"
	"github.com/sells-group/community-sync/pkg/slack"
)

// initPipeline wires the API clients into the resolution pipeline.
func initPipeline() *pipeline.Pipeline {
	connector := salesforce.NewConnector(gosf.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		Password:       cfg.Salesforce.Password,
		SecurityToken:  cfg.Salesforce.SecurityToken,
		ConsumerKey:    cfg.Salesforce.ConsumerKey,
		ConsumerSecret: cfg.Salesforce.ConsumerSecret,
	}, salesforce.WithRateLimit(cfg.Salesforce.RateLimitRPS))

	slackClient := slack.NewClient(cfg.Slack.OAuthToken, slack.WithBaseURL(cfg.Slack.BaseURL))
	kfClient := kickfire.NewClient(cfg.Kickfire.Key, kickfire.WithBaseURL(cfg.Kickfire.BaseURL))

	return pipeline.New(connector, slackClient, kfClient, cfg.Salesforce.ExternalIDField)
}
