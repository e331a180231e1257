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

// In this file: channel tool definitions and handler implementations.

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// channelSummary is the display-oriented projection of a channel.
type channelSummary struct {
	StreamID    int64  `json:"stream_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InviteOnly  bool   `json:"invite_only"`
	IsArchived  bool   `json:"is_archived,omitempty"`
	Subscribers int    `json:"subscriber_count,omitempty"`
}

// ─── get-subscribed-channels ──────────────────────────────────────────────────

func (s *Server) toolGetSubscribedChannels() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-subscribed-channels",
		mcplib.WithDescription("List the channels the current user is subscribed to. Use the returned names verbatim when addressing channel messages."),
		mcplib.WithBoolean("include_subscribers",
			mcplib.Description("Include the subscriber count for each channel"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetSubscribedChannels}
}

func (s *Server) handleGetSubscribedChannels(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	includeSubs := boolArg(req, "include_subscribers", false)

	subs, err := s.cl.Subscriptions(ctx, includeSubs)
	if err != nil {
		return resultErr(fmt.Errorf("get-subscribed-channels: %w", err)), nil
	}

	channels := make([]channelSummary, 0, len(subs))
	for _, st := range subs {
		channels = append(channels, channelSummary{
			StreamID:    st.StreamID,
			Name:        st.Name,
			Description: st.Description,
			InviteOnly:  st.InviteOnly,
			IsArchived:  st.IsArchived,
			Subscribers: len(st.Subscribers),
		})
	}
	result, err := resultJSON(map[string]any{
		"channel_count": len(channels),
		"channels":      channels,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-subscribed-channels: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get-channel-id ───────────────────────────────────────────────────────────

func (s *Server) toolGetChannelID() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-channel-id",
		mcplib.WithDescription("Resolve a channel name to its numeric id. The lookup is case-insensitive."),
		mcplib.WithString("channel_name",
			mcplib.Description("Channel name, e.g. \"general\""),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetChannelID}
}

func (s *Server) handleGetChannelID(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getChannelIDArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-channel-id: %w", err)), nil
	}

	id, err := s.cl.StreamID(ctx, args.ChannelName)
	if err != nil {
		return resultErr(fmt.Errorf("get-channel-id: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"channel_name": args.ChannelName,
		"channel_id":   id,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-channel-id: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get-channel-by-id ────────────────────────────────────────────────────────

func (s *Server) toolGetChannelByID() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-channel-by-id",
		mcplib.WithDescription("Get the full details of a channel by its numeric id."),
		mcplib.WithNumber("channel_id",
			mcplib.Description("Numeric channel id (see get-channel-id)"),
			mcplib.Required(),
		),
		mcplib.WithBoolean("include_subscribers",
			mcplib.Description("Include the list of subscriber user ids"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetChannelByID}
}

func (s *Server) handleGetChannelByID(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getChannelByIDArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-channel-by-id: %w", err)), nil
	}

	st, err := s.cl.Stream(ctx, args.ChannelID, args.IncludeSubscribers)
	if err != nil {
		return resultErr(fmt.Errorf("get-channel-by-id: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{"channel": st})
	if err != nil {
		return resultErr(fmt.Errorf("get-channel-by-id: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get-topics-in-channel ────────────────────────────────────────────────────

func (s *Server) toolGetTopicsInChannel() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-topics-in-channel",
		mcplib.WithDescription("List the recent topics in a channel, most recent first."),
		mcplib.WithNumber("channel_id",
			mcplib.Description("Numeric channel id (see get-channel-id)"),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetTopicsInChannel}
}

func (s *Server) handleGetTopicsInChannel(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getTopicsArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-topics-in-channel: %w", err)), nil
	}

	topics, err := s.cl.StreamTopics(ctx, args.ChannelID)
	if err != nil {
		return resultErr(fmt.Errorf("get-topics-in-channel: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"channel_id":  args.ChannelID,
		"topic_count": len(topics),
		"topics":      topics,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-topics-in-channel: serialise: %w", err)), nil
	}
	return result, nil
}
