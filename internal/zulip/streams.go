package zulip

// In this file: stream (channel) related calls.

import (
	"context"
	"net/url"
	"strconv"
)

type subscriptionsResponse struct {
	Subscriptions []Stream `json:"subscriptions"`
}

// Subscriptions lists the streams the current user is subscribed to.
func (cl *Client) Subscriptions(ctx context.Context, includeSubscribers bool) ([]Stream, error) {
	q := url.Values{}
	if includeSubscribers {
		q.Set("include_subscribers", "true")
	}
	var resp subscriptionsResponse
	if err := cl.get(ctx, "/users/me/subscriptions", q, &resp); err != nil {
		return nil, err
	}
	return resp.Subscriptions, nil
}

// StreamsParams are the filter flags of Streams.  The zero value matches
// the server defaults for public/subscribed, so Streams applies the
// defaults of the original API explicitly.
type StreamsParams struct {
	IncludePublic     bool
	IncludeSubscribed bool
	IncludeAllActive  bool
	IncludeArchived   bool
}

// DefStreamsParams are the default stream listing flags.
var DefStreamsParams = StreamsParams{
	IncludePublic:     true,
	IncludeSubscribed: true,
}

type streamsResponse struct {
	Streams []Stream `json:"streams"`
}

// Streams lists all streams visible to the current user.
func (cl *Client) Streams(ctx context.Context, p StreamsParams) ([]Stream, error) {
	q := url.Values{}
	q.Set("include_public", strconv.FormatBool(p.IncludePublic))
	q.Set("include_subscribed", strconv.FormatBool(p.IncludeSubscribed))
	q.Set("include_all_active", strconv.FormatBool(p.IncludeAllActive))
	q.Set("include_archived", strconv.FormatBool(p.IncludeArchived))
	var resp streamsResponse
	if err := cl.get(ctx, "/streams", q, &resp); err != nil {
		return nil, err
	}
	return resp.Streams, nil
}

type streamIDResponse struct {
	StreamID int64 `json:"stream_id"`
}

// StreamID resolves a stream name to its numeric id.  The lookup is
// case-insensitive on the server side.
func (cl *Client) StreamID(ctx context.Context, name string) (int64, error) {
	q := url.Values{}
	q.Set("stream", name)
	var resp streamIDResponse
	if err := cl.get(ctx, "/get_stream_id", q, &resp); err != nil {
		return 0, err
	}
	return resp.StreamID, nil
}

type streamResponse struct {
	Stream Stream `json:"stream"`
}

// Stream fetches full detail for a stream by id.
func (cl *Client) Stream(ctx context.Context, id int64, includeSubscribers bool) (Stream, error) {
	q := url.Values{}
	if includeSubscribers {
		q.Set("include_subscribers", "true")
	}
	var resp streamResponse
	if err := cl.get(ctx, "/streams/"+strconv.FormatInt(id, 10), q, &resp); err != nil {
		return Stream{}, err
	}
	return resp.Stream, nil
}

type topicsResponse struct {
	Topics []Topic `json:"topics"`
}

// StreamTopics lists the recent topics of a stream together with the newest
// message id in each.
func (cl *Client) StreamTopics(ctx context.Context, streamID int64) ([]Topic, error) {
	var resp topicsResponse
	if err := cl.get(ctx, "/users/me/"+strconv.FormatInt(streamID, 10)+"/topics", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Topics, nil
}
