// Package pipeline implements entity resolution for community Slack members:
// match an existing Salesforce Lead/Contact by email, attach a Contact to a
// known Account by domain, or create an unqualified Lead.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/community-sync/pkg/kickfire"
	"github.com/sells-group/community-sync/pkg/salesforce"
	"github.com/sells-group/community-sync/pkg/slack"
)

// User is the member payload carried by a team_join event. The event never
// includes the email address; that is fetched from the Slack Web API.
type User struct {
	ID          string
	DisplayName string
	RealName    string
}

// UserProfile is the enriched member profile threaded through the run.
type UserProfile struct {
	ID          string
	DisplayName string
	RealName    string
	FirstName   string
	LastName    string
	Email       string
}

// Pipeline resolves Slack members against Salesforce.
type Pipeline struct {
	sf              salesforce.Connector
	slack           slack.Client
	kickfire        kickfire.Client
	externalIDField string
}

// New creates a Pipeline with all dependencies.
func New(sf salesforce.Connector, slackClient slack.Client, kfClient kickfire.Client, externalIDField string) *Pipeline {
	return &Pipeline{
		sf:              sf,
		slack:           slackClient,
		kickfire:        kfClient,
		externalIDField: externalIDField,
	}
}

// Run resolves a single member. Every external call is sequential; the first
// stage failure is terminal for the event and recorded on the Outcome, which
// is logged exactly once here. Run never panics the host process.
func (p *Pipeline) Run(ctx context.Context, user User) *Outcome {
	out := &Outcome{
		RunID:  uuid.NewString(),
		UserID: user.ID,
		Stage:  StageFetchEmail,
	}

	log := zap.L().With(
		zap.String("run_id", out.RunID),
		zap.String("user_id", user.ID),
	)
	defer logOutcome(log, out)

	apiProfile, err := p.slack.GetUserProfile(ctx, user.ID)
	if err != nil {
		out.Err = eris.Wrap(err, "pipeline: fetch profile")
		return out
	}

	prof, domain, err := buildProfile(user, apiProfile)
	if err != nil {
		out.Err = err
		return out
	}
	out.Email = prof.Email

	out.Stage = StageLogin
	client, err := p.sf.Login(ctx)
	if err != nil {
		out.Err = eris.Wrap(err, "pipeline: salesforce login")
		return out
	}

	out.Stage = StageEmailSearch
	records, err := client.Search(ctx, salesforce.EmailSearch(prof.Email))
	if err != nil {
		out.Err = eris.Wrap(err, "pipeline: email search")
		return out
	}

	if len(records) > 0 {
		p.resolveExisting(ctx, client, prof, records[0], out, log)
	} else {
		p.resolveByDomain(ctx, client, prof, domain, out, log)
	}

	if out.Err == nil {
		out.Stage = StageDone
	}
	return out
}

// buildProfile merges the event user with the fetched profile and derives
// the split name and email domain.
func buildProfile(user User, api *slack.Profile) (UserProfile, string, error) {
	prof := UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		RealName:    user.RealName,
		Email:       api.Email,
	}
	if api.DisplayName != "" {
		prof.DisplayName = api.DisplayName
	}
	if api.RealName != "" {
		prof.RealName = api.RealName
	}
	if prof.DisplayName == "" {
		prof.DisplayName = prof.RealName
	}

	name := prof.RealName
	if name == "" {
		name = prof.DisplayName
	}
	prof.FirstName, prof.LastName = SplitName(name)

	_, domain, ok := strings.Cut(prof.Email, "@")
	if !ok || domain == "" {
		return prof, "", eris.New("pipeline: profile has no usable email address")
	}
	return prof, domain, nil
}

func logOutcome(log *zap.Logger, out *Outcome) {
	fields := []zap.Field{
		zap.String("stage", string(out.Stage)),
		zap.String("email", out.Email),
	}
	if out.Resolution != nil {
		fields = append(fields,
			zap.String("resolution", string(out.Resolution.Kind)),
			zap.String("record_id", out.Resolution.RecordID),
		)
	}
	if out.NotifyErr != nil {
		fields = append(fields, zap.NamedError("notify_error", out.NotifyErr))
	}
	if out.Err != nil {
		log.Error("pipeline: run failed", append(fields, zap.Error(out.Err))...)
		return
	}
	log.Info("pipeline: run complete", fields...)
}
