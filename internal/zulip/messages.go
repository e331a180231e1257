package zulip

// In this file: message related calls - send, fetch, edit, delete,
// reactions and read receipts.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RecipientKind is the canonical addressing mode of a message.  The wire
// representation differs per endpoint (see wireType and legacyWireType), the
// rest of the code only ever deals in these two values.
type RecipientKind string

const (
	// KindChannel addresses a named channel (Zulip calls it a stream).
	KindChannel RecipientKind = "channel"
	// KindDirect addresses one or more specific users.
	KindDirect RecipientKind = "direct"
)

// wireType returns the type literal expected by the /messages endpoint.
func (k RecipientKind) wireType() string {
	if k == KindDirect {
		return "direct"
	}
	return "stream"
}

// legacyWireType returns the type literal expected by the older
// /scheduled_messages and /drafts endpoints, which predate the "direct"
// literal.
func (k RecipientKind) legacyWireType() string {
	if k == KindDirect {
		return "private"
	}
	return "stream"
}

// splitRecipients splits a comma-separated address string into a trimmed
// list, dropping empty entries.
func splitRecipients(s string) []string {
	var out []string
	for r := range strings.SplitSeq(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// SendMessageParams are the parameters of SendMessage.
type SendMessageParams struct {
	Kind    RecipientKind
	To      string // channel name, or comma-separated emails for direct
	Content string
	Topic   string // attached only for channel sends
}

type sendMessageResponse struct {
	ID int64 `json:"id"`
}

// SendMessage posts a new message and returns its id.  The message is
// submitted with a JSON body first; if the server rejects it, a single
// second attempt is made with a form-encoded body and, for direct messages,
// a JSON-stringified recipient list.  Unreachable and local errors do not
// trigger the fallback.
func (cl *Client) SendMessage(ctx context.Context, p SendMessageParams) (int64, error) {
	payload := map[string]any{
		"type":    p.Kind.wireType(),
		"content": p.Content,
	}
	if p.Kind == KindDirect {
		payload["to"] = splitRecipients(p.To)
	} else {
		payload["to"] = p.To
		if p.Topic != "" {
			payload["topic"] = p.Topic
		}
	}

	var resp sendMessageResponse
	err := cl.postJSON(ctx, "/messages", payload, &resp)
	if err == nil {
		return resp.ID, nil
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return 0, err
	}
	cl.lg.DebugContext(ctx, "zulip: JSON send rejected, retrying form-encoded", "error", err)

	form := url.Values{}
	form.Set("type", p.Kind.wireType())
	form.Set("content", p.Content)
	if p.Kind == KindDirect {
		to, err := json.Marshal(splitRecipients(p.To))
		if err != nil {
			return 0, fmt.Errorf("request error: encoding recipients: %w", err)
		}
		form.Set("to", string(to))
	} else {
		form.Set("to", p.To)
		if p.Topic != "" {
			form.Set("topic", p.Topic)
		}
	}
	if err := cl.postForm(ctx, "/messages", form, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// GetMessagesParams are the parameters of Messages.  When MessageID is set,
// all other fields are ignored and the single message with that id is
// fetched.
type GetMessagesParams struct {
	Anchor    string     // message id, "newest", "oldest" or "first_unread"
	NumBefore *int       // nil means 20
	NumAfter  *int       // nil means 0
	Narrow    [][]string // [field, value] filter pairs
	MessageID int64
}

type messagesResponse struct {
	Messages []Message `json:"messages"`
}

type messageResponse struct {
	Message Message `json:"message"`
}

// Messages fetches a page of messages.  A nil paging count takes its
// default, 20 messages before the anchor and none after; an explicit zero
// is sent as zero.
func (cl *Client) Messages(ctx context.Context, p GetMessagesParams) ([]Message, error) {
	if p.MessageID != 0 {
		msg, err := cl.Message(ctx, p.MessageID, GetMessageParams{})
		if err != nil {
			return nil, err
		}
		return []Message{msg}, nil
	}

	if p.Anchor == "" {
		p.Anchor = "newest"
	}
	before, after := 20, 0
	if p.NumBefore != nil {
		before = *p.NumBefore
	}
	if p.NumAfter != nil {
		after = *p.NumAfter
	}

	q := url.Values{}
	q.Set("anchor", p.Anchor)
	q.Set("num_before", strconv.Itoa(before))
	q.Set("num_after", strconv.Itoa(after))
	if len(p.Narrow) > 0 {
		narrow, err := json.Marshal(p.Narrow)
		if err != nil {
			return nil, fmt.Errorf("request error: encoding narrow: %w", err)
		}
		q.Set("narrow", string(narrow))
	}

	var resp messagesResponse
	if err := cl.get(ctx, "/messages", q, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// GetMessageParams are the optional parameters of Message.
type GetMessageParams struct {
	ApplyMarkdown       *bool
	AllowEmptyTopicName *bool
}

// Message fetches a single message by id.
func (cl *Client) Message(ctx context.Context, id int64, p GetMessageParams) (Message, error) {
	q := url.Values{}
	setOptBool(q, "apply_markdown", p.ApplyMarkdown)
	setOptBool(q, "allow_empty_topic_name", p.AllowEmptyTopicName)
	var resp messageResponse
	if err := cl.get(ctx, "/messages/"+strconv.FormatInt(id, 10), q, &resp); err != nil {
		return Message{}, err
	}
	return resp.Message, nil
}

// UpdateMessageParams are the parameters of UpdateMessage.  At least one
// field must be set; empty fields are omitted from the request.
type UpdateMessageParams struct {
	Content string
	Topic   string
}

// UpdateMessage edits an existing message's content and/or topic.
func (cl *Client) UpdateMessage(ctx context.Context, id int64, p UpdateMessageParams) error {
	payload := map[string]any{}
	if p.Content != "" {
		payload["content"] = p.Content
	}
	if p.Topic != "" {
		payload["topic"] = p.Topic
	}
	return cl.patchJSON(ctx, "/messages/"+strconv.FormatInt(id, 10), payload, nil)
}

// DeleteMessage permanently deletes a message.
func (cl *Client) DeleteMessage(ctx context.Context, id int64) error {
	return cl.delete(ctx, "/messages/"+strconv.FormatInt(id, 10), nil, nil)
}

// ReactionParams identify an emoji reaction.  ReactionType defaults to
// "unicode_emoji" on add when empty.
type ReactionParams struct {
	EmojiName    string
	EmojiCode    string
	ReactionType string
}

// AddReaction adds an emoji reaction to a message.
func (cl *Client) AddReaction(ctx context.Context, messageID int64, p ReactionParams) error {
	payload := map[string]any{
		"emoji_name":    p.EmojiName,
		"reaction_type": p.ReactionType,
	}
	if p.ReactionType == "" {
		payload["reaction_type"] = "unicode_emoji"
	}
	if p.EmojiCode != "" {
		payload["emoji_code"] = p.EmojiCode
	}
	return cl.postJSON(ctx, "/messages/"+strconv.FormatInt(messageID, 10)+"/reactions", payload, nil)
}

// RemoveReaction removes an emoji reaction from a message.  The reaction is
// identified by query parameters, as the endpoint takes no body.
func (cl *Client) RemoveReaction(ctx context.Context, messageID int64, p ReactionParams) error {
	q := url.Values{}
	q.Set("emoji_name", p.EmojiName)
	if p.EmojiCode != "" {
		q.Set("emoji_code", p.EmojiCode)
	}
	if p.ReactionType != "" {
		q.Set("reaction_type", p.ReactionType)
	}
	return cl.delete(ctx, "/messages/"+strconv.FormatInt(messageID, 10)+"/reactions", q, nil)
}

type readReceiptsResponse struct {
	UserIDs []int64 `json:"user_ids"`
}

// ReadReceipts returns the ids of the users who have read the message.
func (cl *Client) ReadReceipts(ctx context.Context, messageID int64) ([]int64, error) {
	var resp readReceiptsResponse
	if err := cl.get(ctx, "/messages/"+strconv.FormatInt(messageID, 10)+"/read_receipts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.UserIDs, nil
}

// setOptBool sets key in q only when b is non-nil.
func setOptBool(q url.Values, key string, b *bool) {
	if b != nil {
		q.Set(key, strconv.FormatBool(*b))
	}
}
