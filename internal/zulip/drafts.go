package zulip

// In this file: draft calls.  Drafts are created as a single-element array
// payload; like message send, creation attempts JSON first and falls back to
// a form-encoded body with a JSON-stringified array.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// DraftParams describe a draft payload.  The /drafts endpoint addresses
// recipients by numeric id only, and uses the legacy "private" type literal.
type DraftParams struct {
	Kind      RecipientKind
	To        []int64 // user ids, or a single channel id
	Topic     string
	Content   string
	Timestamp int64 // epoch seconds; zero lets the server set the current time
}

func (p DraftParams) wire() map[string]any {
	d := map[string]any{
		"type":    p.Kind.legacyWireType(),
		"to":      p.To,
		"topic":   p.Topic,
		"content": p.Content,
	}
	if p.Timestamp != 0 {
		d["timestamp"] = p.Timestamp
	}
	return d
}

type createDraftResponse struct {
	IDs []int64 `json:"ids"`
}

// CreateDraft saves a new draft and returns the ids assigned by the server.
// The first attempt submits the draft array as JSON; a remote rejection
// triggers a single retry with a form-encoded body carrying the
// JSON-stringified array.
func (cl *Client) CreateDraft(ctx context.Context, p DraftParams) ([]int64, error) {
	drafts := []map[string]any{p.wire()}

	var resp createDraftResponse
	err := cl.postJSON(ctx, "/drafts", map[string]any{"drafts": drafts}, &resp)
	if err == nil {
		return resp.IDs, nil
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil, err
	}
	cl.lg.DebugContext(ctx, "zulip: JSON draft create rejected, retrying form-encoded", "error", err)

	data, err := json.Marshal(drafts)
	if err != nil {
		return nil, fmt.Errorf("request error: encoding drafts: %w", err)
	}
	form := url.Values{}
	form.Set("drafts", string(data))
	if err := cl.postForm(ctx, "/drafts", form, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

type draftsResponse struct {
	Drafts []Draft `json:"drafts"`
}

// Drafts lists all saved drafts.
func (cl *Client) Drafts(ctx context.Context) ([]Draft, error) {
	var resp draftsResponse
	if err := cl.get(ctx, "/drafts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drafts, nil
}

// EditDraft replaces the listed fields of an existing draft.
func (cl *Client) EditDraft(ctx context.Context, id int64, p DraftParams) error {
	return cl.patchJSON(ctx, "/drafts/"+strconv.FormatInt(id, 10), p.wire(), nil)
}
