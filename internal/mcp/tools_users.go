// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

// In this file: user tool definitions and handler implementations.

import (
	"context"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/zulipmcp/internal/zulip"
)

// userSummary is the display-oriented projection of a user.
type userSummary struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	IsBot    bool   `json:"is_bot,omitempty"`
}

func summarizeUser(u zulip.User) userSummary {
	return userSummary{
		UserID:   u.UserID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role(),
		IsActive: u.IsActive,
		IsBot:    u.IsBot,
	}
}

// groupSummary is the display-oriented projection of a user group.  Member
// lists can run to thousands of ids, so only the count is reported.
type groupSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	MemberCount   int    `json:"member_count"`
	IsSystemGroup bool   `json:"is_system_group"`
}

func summarizeGroups(groups []zulip.UserGroup) []groupSummary {
	out := make([]groupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupSummary{
			ID:            g.ID,
			Name:          g.Name,
			Description:   g.Description,
			MemberCount:   len(g.Members),
			IsSystemGroup: g.IsSystemGroup,
		})
	}
	return out
}

// ─── search-users ─────────────────────────────────────────────────────────────

const defSearchLimit = 10

func (s *Server) toolSearchUsers() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search-users",
		mcplib.WithDescription(`Find users by name or email.

Matching is case-insensitive on both the full name and the email address.
Use the returned email addresses when sending direct messages, and the user
ids when creating drafts.`),
		mcplib.WithString("query",
			mcplib.Description("Name or email fragment to search for"),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of matches to return (default 10)"),
			mcplib.Min(1),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchUsers}
}

func (s *Server) handleSearchUsers(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args searchUsersArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("search-users: %w", err)), nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defSearchLimit
	}

	users, err := s.cl.Users(ctx, zulip.UserOptions{})
	if err != nil {
		return resultErr(fmt.Errorf("search-users: %w", err)), nil
	}

	q := strings.ToLower(args.Query)
	var matches []userSummary
	for _, u := range users {
		if !strings.Contains(strings.ToLower(u.FullName), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		matches = append(matches, summarizeUser(u))
		if len(matches) == limit {
			break
		}
	}
	if matches == nil {
		matches = []userSummary{}
	}
	result, err := resultJSON(map[string]any{
		"query":       args.Query,
		"match_count": len(matches),
		"users":       matches,
	})
	if err != nil {
		return resultErr(fmt.Errorf("search-users: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get-users ────────────────────────────────────────────────────────────────

func (s *Server) toolGetUsers() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-users",
		mcplib.WithDescription("List all users in the organisation, including bots and deactivated accounts."),
		mcplib.WithBoolean("client_gravatar",
			mcplib.Description("Let the client compute gravatar URLs itself"),
		),
		mcplib.WithBoolean("include_custom_profile_fields",
			mcplib.Description("Include custom profile field values"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetUsers}
}

func (s *Server) handleGetUsers(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	users, err := s.cl.Users(ctx, zulip.UserOptions{
		ClientGravatar:             optBoolArg(req, "client_gravatar"),
		IncludeCustomProfileFields: optBoolArg(req, "include_custom_profile_fields"),
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-users: %w", err)), nil
	}

	summaries := make([]userSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, summarizeUser(u))
	}
	result, err := resultJSON(map[string]any{
		"user_count": len(summaries),
		"users":      summaries,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-users: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get-user ─────────────────────────────────────────────────────────────────

func (s *Server) toolGetUser() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-user",
		mcplib.WithDescription("Get the full profile of a user by their numeric id."),
		mcplib.WithNumber("user_id",
			mcplib.Description("Numeric user id (see search-users)"),
			mcplib.Required(),
		),
		mcplib.WithBoolean("client_gravatar",
			mcplib.Description("Let the client compute gravatar URLs itself"),
		),
		mcplib.WithBoolean("include_custom_profile_fields",
			mcplib.Description("Include custom profile field values"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetUser}
}

func (s *Server) handleGetUser(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getUserArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-user: %w", err)), nil
	}

	u, err := s.cl.User(ctx, args.UserID, zulip.UserOptions{
		ClientGravatar:             args.ClientGravatar,
		IncludeCustomProfileFields: args.IncludeCustomProfileFields,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-user: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"user": u,
		"role": u.Role(),
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-user: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get-user-by-email ────────────────────────────────────────────────────────

func (s *Server) toolGetUserByEmail() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-user-by-email",
		mcplib.WithDescription("Get the full profile of a user by their Zulip email address."),
		mcplib.WithString("email",
			mcplib.Description("Zulip email address of the user"),
			mcplib.Required(),
		),
		mcplib.WithBoolean("client_gravatar",
			mcplib.Description("Let the client compute gravatar URLs itself"),
		),
		mcplib.WithBoolean("include_custom_profile_fields",
			mcplib.Description("Include custom profile field values"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetUserByEmail}
}

func (s *Server) handleGetUserByEmail(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getUserByEmailArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-user-by-email: %w", err)), nil
	}

	u, err := s.cl.UserByEmail(ctx, args.Email, zulip.UserOptions{
		ClientGravatar:             args.ClientGravatar,
		IncludeCustomProfileFields: args.IncludeCustomProfileFields,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-user-by-email: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"user": u,
		"role": u.Role(),
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-user-by-email: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── update-status ────────────────────────────────────────────────────────────

func (s *Server) toolUpdateStatus() mcpsrv.ServerTool {
	tool := mcplib.NewTool("update-status",
		mcplib.WithDescription(`Update the current user's status message and availability.

An empty status_text clears the status. The optional emoji decorates the
status message in user lists.`),
		mcplib.WithString("status_text",
			mcplib.Description("Status message, up to 60 characters; empty string clears it"),
		),
		mcplib.WithBoolean("away",
			mcplib.Description("Mark the account as away (deprecated upstream, still honoured)"),
		),
		mcplib.WithString("emoji_name",
			mcplib.Description("Name of the emoji to show next to the status"),
		),
		mcplib.WithString("emoji_code",
			mcplib.Description("Unicode code point of the emoji"),
		),
		mcplib.WithString("reaction_type",
			mcplib.Description("Emoji classification"),
			mcplib.Enum("unicode_emoji", "realm_emoji", "zulip_extra_emoji"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleUpdateStatus}
}

func (s *Server) handleUpdateStatus(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args updateStatusArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("update-status: %w", err)), nil
	}

	if err := s.cl.UpdateStatus(ctx, zulip.StatusParams{
		StatusText:   args.StatusText,
		Away:         args.Away,
		EmojiName:    args.EmojiName,
		EmojiCode:    args.EmojiCode,
		ReactionType: args.ReactionType,
	}); err != nil {
		return resultErr(fmt.Errorf("update-status: %w", err)), nil
	}
	return resultText("Status updated successfully!"), nil
}

// ─── get-user-groups ──────────────────────────────────────────────────────────

func (s *Server) toolGetUserGroups() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-user-groups",
		mcplib.WithDescription("List the user groups in the organisation with their member counts."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetUserGroups}
}

func (s *Server) handleGetUserGroups(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	groups, err := s.cl.UserGroups(ctx)
	if err != nil {
		return resultErr(fmt.Errorf("get-user-groups: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"group_count": len(groups),
		"user_groups": summarizeGroups(groups),
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-user-groups: serialise: %w", err)), nil
	}
	return result, nil
}
