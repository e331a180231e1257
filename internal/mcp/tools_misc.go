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

// In this file: the get-started orientation tool and file upload.

import (
	"context"
	"encoding/base64"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/rusq/zulipmcp/internal/zulip"
)

// ─── get-started ──────────────────────────────────────────────────────────────

func (s *Server) toolGetStarted() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-started",
		mcplib.WithDescription(`Get oriented in the Zulip workspace.

Returns the connected account identity, the subscribed channels, the
organisation's users and the latest messages in one call. Call this first in
a new session to learn which channels and users are available before sending
anything.`),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetStarted}
}

func (s *Server) handleGetStarted(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var (
		channels []zulip.Stream
		users    []zulip.User
		recent   []zulip.Message
	)

	// Partial results are better than none here: a failing fan-out call
	// degrades to an empty list instead of failing the whole overview.
	var eg errgroup.Group
	eg.Go(func() error {
		subs, err := s.cl.Subscriptions(ctx, false)
		if err != nil {
			s.logger.DebugContext(ctx, "mcp: get-started: subscriptions unavailable", "error", err)
			return nil
		}
		channels = subs
		return nil
	})
	eg.Go(func() error {
		all, err := s.cl.Users(ctx, zulip.UserOptions{})
		if err != nil {
			s.logger.DebugContext(ctx, "mcp: get-started: users unavailable", "error", err)
			return nil
		}
		users = all
		return nil
	})
	eg.Go(func() error {
		msgs, err := s.cl.Messages(ctx, zulip.GetMessagesParams{NumBefore: ptr(10)})
		if err != nil {
			s.logger.DebugContext(ctx, "mcp: get-started: messages unavailable", "error", err)
			return nil
		}
		recent = msgs
		return nil
	})
	if err := eg.Wait(); err != nil {
		return resultErr(fmt.Errorf("get-started: %w", err)), nil
	}

	channelNames := make([]string, 0, len(channels))
	for _, ch := range channels {
		channelNames = append(channelNames, ch.Name)
	}
	people := make([]userSummary, 0, len(users))
	for _, u := range users {
		if !u.IsActive || u.IsBot {
			continue
		}
		people = append(people, summarizeUser(u))
	}
	latest := make([]messageSummary, 0, len(recent))
	for _, m := range recent {
		latest = append(latest, summarize(m, false))
	}

	result, err := resultJSON(map[string]any{
		"identity": map[string]any{
			"email":   s.cl.Email(),
			"site":    s.cl.BaseURL(),
			"server":  serverName,
			"version": serverVersion,
		},
		"subscribed_channels": channelNames,
		"active_users":        people,
		"recent_messages":     latest,
		"next_steps": []string{
			"Use send-message with kind \"channel\" and a topic to post to a channel.",
			"Use search-users to resolve a person's email before a direct message.",
			"Use get-messages with a narrow filter to read recent conversation.",
			"Read the zulip://formatting/guide resource before composing rich messages.",
		},
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-started: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── upload-file ──────────────────────────────────────────────────────────────

func (s *Server) toolUploadFile() mcpsrv.ServerTool {
	tool := mcplib.NewTool("upload-file",
		mcplib.WithDescription(`Upload a file to the Zulip server.

The content must be base64-encoded. The returned URI can be embedded in a
subsequent message as a Markdown link: [name](uri).`),
		mcplib.WithString("filename",
			mcplib.Description("Name for the uploaded file, including extension"),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("Base64-encoded file content"),
			mcplib.Required(),
		),
		mcplib.WithString("content_type",
			mcplib.Description("MIME type of the file; inferred from the name if omitted"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleUploadFile}
}

func (s *Server) handleUploadFile(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args uploadFileArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("upload-file: %w", err)), nil
	}

	data, err := base64.StdEncoding.DecodeString(args.Content)
	if err != nil {
		return resultErr(fmt.Errorf("upload-file: invalid input: content is not valid base64: %w", err)), nil
	}

	uri, err := s.cl.UploadFile(ctx, args.Filename, data, args.ContentType)
	if err != nil {
		return resultErr(fmt.Errorf("upload-file: %w", err)), nil
	}

	s.logger.InfoContext(ctx, "mcp: file uploaded", "filename", args.Filename, "size", len(data))
	result, err := resultJSON(map[string]any{
		"filename": args.Filename,
		"uri":      uri,
		"markdown": fmt.Sprintf("[%s](%s)", args.Filename, uri),
	})
	if err != nil {
		return resultErr(fmt.Errorf("upload-file: serialise: %w", err)), nil
	}
	return result, nil
}
