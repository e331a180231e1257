package zulip

// In this file: organisation level calls.  The payloads are organisation
// specific and loosely typed, so they are passed through as maps.

import "context"

// ServerSettings returns the server's public settings document.
func (cl *Client) ServerSettings(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := cl.get(ctx, "/server_settings", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RealmInfo returns the realm (organisation) metadata.
func (cl *Client) RealmInfo(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := cl.get(ctx, "/realm", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CustomEmoji returns the organisation's custom emoji set.
func (cl *Client) CustomEmoji(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := cl.get(ctx, "/realm/emoji", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
