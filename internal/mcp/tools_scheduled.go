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

// In this file: scheduled message and draft tool definitions and handlers.

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/zulipmcp/internal/zulip"
)

// ─── create-scheduled-message ─────────────────────────────────────────────────

func (s *Server) toolCreateScheduledMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("create-scheduled-message",
		mcplib.WithDescription(`Schedule a message for future delivery.

Addressing works like send-message: channel messages need the exact channel
name and a topic, direct messages take comma-separated user emails. The
delivery timestamp is epoch seconds and must be in the future.`),
		mcplib.WithString("kind",
			mcplib.Description("\"channel\" for channel messages, \"direct\" for private messages"),
			mcplib.Required(),
			mcplib.Enum("channel", "direct"),
		),
		mcplib.WithString("recipient",
			mcplib.Description("Channel name, or comma-separated user emails for direct messages"),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("Message content in Zulip Markdown"),
			mcplib.Required(),
		),
		mcplib.WithString("topic",
			mcplib.Description("Topic name; required for channel messages"),
		),
		mcplib.WithNumber("delivery_timestamp",
			mcplib.Description("Delivery time as a UNIX timestamp in seconds"),
			mcplib.Required(),
			mcplib.Min(1),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleCreateScheduledMessage}
}

func (s *Server) handleCreateScheduledMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args createScheduledArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("create-scheduled-message: %w", err)), nil
	}

	id, err := s.cl.CreateScheduledMessage(ctx, zulip.ScheduledMessageParams{
		Kind:              zulip.RecipientKind(args.Kind),
		To:                args.Recipient,
		Content:           args.Content,
		Topic:             args.Topic,
		DeliveryTimestamp: args.DeliveryTimestamp,
	})
	if err != nil {
		return resultErr(fmt.Errorf("create-scheduled-message: %w", err)), nil
	}

	s.logger.InfoContext(ctx, "mcp: message scheduled", "id", id, "deliver_at", isoTime(args.DeliveryTimestamp))
	return resultText(fmt.Sprintf("Message scheduled successfully! Scheduled message ID: %d, delivery at %s", id, isoTime(args.DeliveryTimestamp))), nil
}

// ─── edit-scheduled-message ───────────────────────────────────────────────────

func (s *Server) toolEditScheduledMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("edit-scheduled-message",
		mcplib.WithDescription("Modify a pending scheduled message. Only the supplied fields are changed; to re-address a message supply kind together with recipient."),
		mcplib.WithNumber("scheduled_message_id",
			mcplib.Description("Id of the scheduled message to edit"),
			mcplib.Required(),
		),
		mcplib.WithString("kind",
			mcplib.Description("New addressing kind: \"channel\" or \"direct\""),
			mcplib.Enum("channel", "direct"),
		),
		mcplib.WithString("recipient",
			mcplib.Description("New channel name or comma-separated user emails"),
		),
		mcplib.WithString("content",
			mcplib.Description("New message content"),
		),
		mcplib.WithString("topic",
			mcplib.Description("New topic name"),
		),
		mcplib.WithNumber("delivery_timestamp",
			mcplib.Description("New delivery time as a UNIX timestamp in seconds"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleEditScheduledMessage}
}

func (s *Server) handleEditScheduledMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args editScheduledArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("edit-scheduled-message: %w", err)), nil
	}

	if err := s.cl.EditScheduledMessage(ctx, args.ScheduledMessageID, zulip.EditScheduledMessageParams{
		Kind:              zulip.RecipientKind(args.Kind),
		To:                args.Recipient,
		Content:           args.Content,
		Topic:             args.Topic,
		DeliveryTimestamp: args.DeliveryTimestamp,
	}); err != nil {
		return resultErr(fmt.Errorf("edit-scheduled-message: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Scheduled message %d updated successfully!", args.ScheduledMessageID)), nil
}

// ─── get-scheduled-messages ───────────────────────────────────────────────────

func (s *Server) toolGetScheduledMessages() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-scheduled-messages",
		mcplib.WithDescription("List the current user's undelivered scheduled messages."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetScheduledMessages}
}

func (s *Server) handleGetScheduledMessages(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	msgs, err := s.cl.ScheduledMessages(ctx)
	if err != nil {
		return resultErr(fmt.Errorf("get-scheduled-messages: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"scheduled_message_count": len(msgs),
		"scheduled_messages":      msgs,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-scheduled-messages: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── create-draft ─────────────────────────────────────────────────────────────

func (s *Server) toolCreateDraft() mcpsrv.ServerTool {
	tool := mcplib.NewTool("create-draft",
		mcplib.WithDescription(`Create a draft message on the server.

Unlike send-message, drafts address recipients by numeric id: the channel id
for channel drafts (see get-channel-id), or user ids for direct drafts (see
search-users).`),
		mcplib.WithString("kind",
			mcplib.Description("\"channel\" for a channel draft, \"direct\" for a private draft"),
			mcplib.Required(),
			mcplib.Enum("channel", "direct"),
		),
		mcplib.WithArray("recipient_ids",
			mcplib.Description("Channel id (single element) or user ids, depending on kind"),
			mcplib.Required(),
			mcplib.Items(map[string]any{"type": "number"}),
		),
		mcplib.WithString("topic",
			mcplib.Description("Topic for the draft"),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("Draft content in Zulip Markdown"),
			mcplib.Required(),
		),
		mcplib.WithNumber("timestamp",
			mcplib.Description("Draft creation time as a UNIX timestamp in seconds; defaults to now"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleCreateDraft}
}

func (s *Server) handleCreateDraft(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args createDraftArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("create-draft: %w", err)), nil
	}

	ids, err := s.cl.CreateDraft(ctx, zulip.DraftParams{
		Kind:      zulip.RecipientKind(args.Kind),
		To:        args.RecipientIDs,
		Topic:     args.Topic,
		Content:   args.Content,
		Timestamp: args.Timestamp,
	})
	if err != nil {
		return resultErr(fmt.Errorf("create-draft: %w", err)), nil
	}
	if len(ids) == 0 {
		return resultText("Draft created successfully!"), nil
	}
	return resultText(fmt.Sprintf("Draft created successfully! Draft ID: %d", ids[0])), nil
}

// ─── get-drafts ───────────────────────────────────────────────────────────────

func (s *Server) toolGetDrafts() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-drafts",
		mcplib.WithDescription("List the current user's saved drafts."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetDrafts}
}

func (s *Server) handleGetDrafts(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	drafts, err := s.cl.Drafts(ctx)
	if err != nil {
		return resultErr(fmt.Errorf("get-drafts: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"draft_count": len(drafts),
		"drafts":      drafts,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-drafts: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── edit-draft ───────────────────────────────────────────────────────────────

func (s *Server) toolEditDraft() mcpsrv.ServerTool {
	tool := mcplib.NewTool("edit-draft",
		mcplib.WithDescription("Replace the content of an existing draft. All addressing fields must be supplied, as the draft is overwritten as a whole."),
		mcplib.WithNumber("draft_id",
			mcplib.Description("Id of the draft to edit"),
			mcplib.Required(),
		),
		mcplib.WithString("kind",
			mcplib.Description("\"channel\" or \"direct\""),
			mcplib.Required(),
			mcplib.Enum("channel", "direct"),
		),
		mcplib.WithArray("recipient_ids",
			mcplib.Description("Channel id (single element) or user ids, depending on kind"),
			mcplib.Required(),
			mcplib.Items(map[string]any{"type": "number"}),
		),
		mcplib.WithString("topic",
			mcplib.Description("Topic for the draft"),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("New draft content"),
			mcplib.Required(),
		),
		mcplib.WithNumber("timestamp",
			mcplib.Description("Draft timestamp as UNIX seconds; defaults to now"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleEditDraft}
}

func (s *Server) handleEditDraft(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args editDraftArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("edit-draft: %w", err)), nil
	}

	if err := s.cl.EditDraft(ctx, args.DraftID, zulip.DraftParams{
		Kind:      zulip.RecipientKind(args.Kind),
		To:        args.RecipientIDs,
		Topic:     args.Topic,
		Content:   args.Content,
		Timestamp: args.Timestamp,
	}); err != nil {
		return resultErr(fmt.Errorf("edit-draft: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Draft %d updated successfully!", args.DraftID)), nil
}
