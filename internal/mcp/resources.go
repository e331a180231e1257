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

// In this file: read-only MCP resources under the zulip:// scheme.

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/rusq/zulipmcp/internal/zulip"
)

//go:embed assets/formatting.md
var formattingGuide string

//go:embed assets/usage.md
var usagePatterns string

const mimeJSON = "application/json"

func (s *Server) registerResources() {
	s.mcp.AddResource(mcplib.NewResource(
		"zulip://users", "organisation-users",
		mcplib.WithResourceDescription("Directory of the organisation's users"),
		mcplib.WithMIMEType(mimeJSON),
	), s.readUsersResource)
	s.mcp.AddResourceTemplate(mcplib.NewResourceTemplate(
		"zulip://users{?include_bots}", "organisation-users-filtered",
		mcplib.WithTemplateDescription("User directory; include_bots=true adds bot accounts"),
		mcplib.WithTemplateMIMEType(mimeJSON),
	), s.readUsersResource)

	s.mcp.AddResource(mcplib.NewResource(
		"zulip://streams", "organisation-channels",
		mcplib.WithResourceDescription("Directory of the organisation's channels"),
		mcplib.WithMIMEType(mimeJSON),
	), s.readStreamsResource)
	s.mcp.AddResourceTemplate(mcplib.NewResourceTemplate(
		"zulip://streams{?include_archived}", "organisation-channels-filtered",
		mcplib.WithTemplateDescription("Channel directory; include_archived=true adds archived channels"),
		mcplib.WithTemplateMIMEType(mimeJSON),
	), s.readStreamsResource)

	s.mcp.AddResource(mcplib.NewResource(
		"zulip://organization", "organisation-info",
		mcplib.WithResourceDescription("Server settings, realm details and custom emoji"),
		mcplib.WithMIMEType(mimeJSON),
	), s.readOrganizationResource)

	s.mcp.AddResource(mcplib.NewResource(
		"zulip://user_groups", "organisation-user-groups",
		mcplib.WithResourceDescription("User groups and their member counts"),
		mcplib.WithMIMEType(mimeJSON),
	), s.readUserGroupsResource)

	s.mcp.AddResource(mcplib.NewResource(
		"zulip://formatting/guide", "message-formatting-guide",
		mcplib.WithResourceDescription("Zulip Markdown syntax reference for composing messages"),
		mcplib.WithMIMEType("text/markdown"),
	), staticResource(formattingGuide, "text/markdown"))

	s.mcp.AddResource(mcplib.NewResource(
		"zulip://patterns/common", "common-usage-patterns",
		mcplib.WithResourceDescription("Recipes for common messaging workflows"),
		mcplib.WithMIMEType("text/markdown"),
	), staticResource(usagePatterns, "text/markdown"))
}

// resourceQuery extracts the query parameters from a resource URI.  The
// zulip:// scheme is opaque to net/url, so the query is split off manually.
func resourceQuery(uri string) url.Values {
	_, rawQuery, found := strings.Cut(uri, "?")
	if !found {
		return url.Values{}
	}
	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		return url.Values{}
	}
	return v
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialise resource %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{mcplib.TextResourceContents{
		URI:      uri,
		MIMEType: mimeJSON,
		Text:     string(data),
	}}, nil
}

// staticResource returns a handler serving fixed text content.
func staticResource(text, mime string) func(context.Context, mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	return func(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return []mcplib.ResourceContents{mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: mime,
			Text:     text,
		}}, nil
	}
}

func (s *Server) readUsersResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	includeBots := resourceQuery(req.Params.URI).Get("include_bots") == "true"

	users, err := s.cl.Users(ctx, zulip.UserOptions{})
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	var listed []userSummary
	for _, u := range users {
		if u.IsBot && !includeBots {
			continue
		}
		listed = append(listed, summarizeUser(u))
	}
	if listed == nil {
		listed = []userSummary{}
	}
	return jsonContents(req.Params.URI, map[string]any{
		"user_count": len(listed),
		"users":      listed,
	})
}

func (s *Server) readStreamsResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	includeArchived := resourceQuery(req.Params.URI).Get("include_archived") == "true"

	streams, err := s.cl.Streams(ctx, zulip.DefStreamsParams)
	if err != nil {
		return nil, fmt.Errorf("read streams: %w", err)
	}
	var listed []channelSummary
	for _, st := range streams {
		if st.IsArchived && !includeArchived {
			continue
		}
		listed = append(listed, channelSummary{
			StreamID:    st.StreamID,
			Name:        st.Name,
			Description: st.Description,
			InviteOnly:  st.InviteOnly,
			IsArchived:  st.IsArchived,
		})
	}
	if listed == nil {
		listed = []channelSummary{}
	}
	return jsonContents(req.Params.URI, map[string]any{
		"channel_count": len(listed),
		"channels":      listed,
	})
}

func (s *Server) readOrganizationResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	var (
		settings map[string]any
		realm    map[string]any
		emoji    map[string]any
	)

	// The three sources are independent; failures degrade to nulls so a
	// partially reachable server still yields a useful overview.
	var eg errgroup.Group
	eg.Go(func() error {
		v, err := s.cl.ServerSettings(ctx)
		if err != nil {
			s.logger.DebugContext(ctx, "mcp: organization: server settings unavailable", "error", err)
			return nil
		}
		settings = v
		return nil
	})
	eg.Go(func() error {
		v, err := s.cl.RealmInfo(ctx)
		if err != nil {
			s.logger.DebugContext(ctx, "mcp: organization: realm info unavailable", "error", err)
			return nil
		}
		realm = v
		return nil
	})
	eg.Go(func() error {
		v, err := s.cl.CustomEmoji(ctx)
		if err != nil {
			s.logger.DebugContext(ctx, "mcp: organization: custom emoji unavailable", "error", err)
			return nil
		}
		emoji = v
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("read organization: %w", err)
	}

	return jsonContents(req.Params.URI, map[string]any{
		"server_settings": settings,
		"realm":           realm,
		"custom_emoji":    emoji,
	})
}

func (s *Server) readUserGroupsResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	groups, err := s.cl.UserGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("read user groups: %w", err)
	}
	return jsonContents(req.Params.URI, map[string]any{
		"group_count": len(groups),
		"user_groups": summarizeGroups(groups),
	})
}
