package zulip

// In this file: user related calls - listing, lookups, status and groups.

import (
	"context"
	"net/url"
	"strconv"
)

// UserOptions are the optional flags shared by the user fetching calls.
// A nil field is omitted from the request, leaving the server default.
type UserOptions struct {
	ClientGravatar             *bool
	IncludeCustomProfileFields *bool
}

func (o UserOptions) query() url.Values {
	q := url.Values{}
	setOptBool(q, "client_gravatar", o.ClientGravatar)
	setOptBool(q, "include_custom_profile_fields", o.IncludeCustomProfileFields)
	return q
}

type usersResponse struct {
	Members []User `json:"members"`
}

// Users lists all users in the organisation.
func (cl *Client) Users(ctx context.Context, opts UserOptions) ([]User, error) {
	var resp usersResponse
	if err := cl.get(ctx, "/users", opts.query(), &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

type userResponse struct {
	User User `json:"user"`
}

// User fetches a single user by id.
func (cl *Client) User(ctx context.Context, id int64, opts UserOptions) (User, error) {
	var resp userResponse
	if err := cl.get(ctx, "/users/"+strconv.FormatInt(id, 10), opts.query(), &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// UserByEmail fetches a single user by email address.
func (cl *Client) UserByEmail(ctx context.Context, email string, opts UserOptions) (User, error) {
	var resp userResponse
	if err := cl.get(ctx, "/users/"+url.PathEscape(email), opts.query(), &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// StatusParams are the parameters of UpdateStatus.  Nil/empty fields are
// omitted; at least one must be set, which the caller is expected to have
// verified.
type StatusParams struct {
	StatusText   *string
	Away         *bool
	EmojiName    string
	EmojiCode    string
	ReactionType string
}

// UpdateStatus updates the current user's status.  The endpoint accepts
// form-encoded bodies only.
func (cl *Client) UpdateStatus(ctx context.Context, p StatusParams) error {
	form := url.Values{}
	if p.StatusText != nil {
		form.Set("status_text", *p.StatusText)
	}
	if p.Away != nil {
		form.Set("away", strconv.FormatBool(*p.Away))
	}
	if p.EmojiName != "" {
		form.Set("emoji_name", p.EmojiName)
	}
	if p.EmojiCode != "" {
		form.Set("emoji_code", p.EmojiCode)
	}
	if p.ReactionType != "" {
		form.Set("reaction_type", p.ReactionType)
	}
	return cl.postForm(ctx, "/users/me/status", form, nil)
}

type userGroupsResponse struct {
	UserGroups []UserGroup `json:"user_groups"`
}

// UserGroups lists all user groups in the organisation.
func (cl *Client) UserGroups(ctx context.Context) ([]UserGroup, error) {
	var resp userGroupsResponse
	if err := cl.get(ctx, "/user_groups", nil, &resp); err != nil {
		return nil, err
	}
	return resp.UserGroups, nil
}
