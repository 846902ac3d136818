package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/community-sync/pkg/salesforce"
)

// newEntityPost announces a freshly created record on its own feed.
func newEntityPost(recordID, recordType, ownerID, displayName string) salesforce.FeedPost {
	return salesforce.FeedPost{
		SubjectID: recordID,
		MentionID: ownerID,
		Text:      "New " + recordType + " joined Community Slack as ",
		Bold:      displayName,
	}
}

// existingEntityPost announces a returning member on their existing record.
func existingEntityPost(recordID, recordType, ownerID, displayName string) salesforce.FeedPost {
	return salesforce.FeedPost{
		SubjectID: recordID,
		MentionID: ownerID,
		Text:      recordType + " joined Community Slack as ",
		Bold:      displayName,
	}
}

// notify posts to Chatter. A failure here is a partial outcome: the CRM write
// already happened, so it is recorded and logged but never terminal.
func (p *Pipeline) notify(ctx context.Context, c salesforce.Client, post salesforce.FeedPost, out *Outcome, log *zap.Logger) {
	if err := c.PostFeedItem(ctx, post); err != nil {
		out.NotifyErr = eris.Wrap(err, "pipeline: feed post")
		log.Warn("pipeline: feed post failed",
			zap.String("record_id", post.SubjectID),
			zap.Error(err),
		)
	}
}
