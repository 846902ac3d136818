package salesforce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

// FeedPost describes a Chatter feed item: optional leading @-mention, a
// plain-text lead-in, and a bolded trailing segment.
type FeedPost struct {
	SubjectID string
	MentionID string
	Text      string
	Bold      string
}

type messageSegment struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	ID         string `json:"id,omitempty"`
	MarkupType string `json:"markupType,omitempty"`
}

type feedElementBody struct {
	MessageSegments []messageSegment `json:"messageSegments"`
}

type feedElementRequest struct {
	Body            feedElementBody `json:"body"`
	FeedElementType string          `json:"feedElementType"`
	SubjectID       string          `json:"subjectId"`
}

// feedElementPayload builds the Chatter API request for a FeedPost.
func feedElementPayload(post FeedPost) feedElementRequest {
	var segments []messageSegment
	if post.MentionID != "" {
		segments = append(segments, messageSegment{Type: "Mention", ID: post.MentionID})
	}
	segments = append(segments,
		messageSegment{Type: "Text", Text: post.Text},
		messageSegment{Type: "MarkupBegin", MarkupType: "Bold"},
		messageSegment{Type: "Text", Text: post.Bold},
		messageSegment{Type: "MarkupEnd", MarkupType: "Bold"},
	)
	return feedElementRequest{
		Body:            feedElementBody{MessageSegments: segments},
		FeedElementType: "FeedItem",
		SubjectID:       post.SubjectID,
	}
}

// PostFeedItem creates a Chatter feed item on the post's subject record.
func (c *sfClient) PostFeedItem(ctx context.Context, post FeedPost) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "sf: rate limit")
	}

	payload, err := json.Marshal(feedElementPayload(post))
	if err != nil {
		return eris.Wrap(err, "sf: marshal feed item")
	}

	resp, err := c.sf.DoRequest(http.MethodPost, "/chatter/feed-elements", payload)
	if err != nil {
		return eris.Wrap(err, "sf: post feed item")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return eris.Errorf("sf: feed item status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
