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

// In this file: message tool definitions and handler implementations.

import (
	"context"
	"fmt"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/zulipmcp/internal/zulip"
)

// isoTime renders an epoch-seconds timestamp as RFC3339 UTC.
func isoTime(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}

// messageSummary is the display-oriented projection of a message.
type messageSummary struct {
	ID          int64               `json:"id"`
	Sender      string              `json:"sender"`
	Timestamp   string              `json:"timestamp"`
	Content     string              `json:"content"`
	Type        string              `json:"type"`
	Topic       string              `json:"topic,omitempty"`
	StreamID    int64               `json:"stream_id,omitempty"`
	Reactions   []zulip.Reaction    `json:"reactions"`
	EditHistory []zulip.EditHistory `json:"edit_history,omitempty"`
}

func summarize(m zulip.Message, withHistory bool) messageSummary {
	s := messageSummary{
		ID:        m.ID,
		Sender:    m.SenderFullName,
		Timestamp: isoTime(m.Timestamp),
		Content:   m.Content,
		Type:      m.Type,
		Topic:     m.TopicName(),
		StreamID:  m.StreamID,
		Reactions: m.Reactions,
	}
	if withHistory {
		s.EditHistory = m.EditHistory
	}
	return s
}

// ─── send-message ─────────────────────────────────────────────────────────────

func (s *Server) toolSendMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send-message",
		mcplib.WithDescription(`Send a message to a Zulip channel or directly to users.

For channel messages use the exact channel name from get-subscribed-channels
and always include a topic. For direct messages use actual email addresses
from search-users (not display names); multiple recipients are
comma-separated.`),
		mcplib.WithString("kind",
			mcplib.Description("\"channel\" for channel messages, \"direct\" for private messages"),
			mcplib.Required(),
			mcplib.Enum("channel", "direct"),
		),
		mcplib.WithString("recipient",
			mcplib.Description("Channel name (e.g. \"general\"), or comma-separated user emails for direct messages"),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("Message content in Zulip Markdown; mentions (@**Name**), code blocks and links are supported"),
			mcplib.Required(),
		),
		mcplib.WithString("topic",
			mcplib.Description("Topic name; required for channel messages"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSendMessage}
}

func (s *Server) handleSendMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args sendMessageArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("send-message: %w", err)), nil
	}

	id, err := s.cl.SendMessage(ctx, zulip.SendMessageParams{
		Kind:    zulip.RecipientKind(args.Kind),
		To:      args.Recipient,
		Content: args.Content,
		Topic:   args.Topic,
	})
	if err != nil {
		return resultErr(fmt.Errorf("send-message: %w", err)), nil
	}

	s.logger.InfoContext(ctx, "mcp: message sent", "id", id, "kind", args.Kind)
	return resultText(fmt.Sprintf("Message sent successfully! Message ID: %d", id)), nil
}

// ─── get-messages ─────────────────────────────────────────────────────────────

func (s *Server) toolGetMessages() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-messages",
		mcplib.WithDescription(`Retrieve multiple messages with paging and filtering.

Pages from an anchor position (default: newest message, 20 messages before
it). Use narrow filter pairs to restrict the listing, e.g.
[["channel","general"],["topic","standup"]]. When message_id is given, the
other parameters are ignored and only that message is fetched.`),
		mcplib.WithString("anchor",
			mcplib.Description("Starting point: a message id, \"newest\", \"oldest\" or \"first_unread\""),
		),
		mcplib.WithNumber("num_before",
			mcplib.Description("Number of messages before the anchor (max 1000, default 20)"),
			mcplib.Max(1000),
		),
		mcplib.WithNumber("num_after",
			mcplib.Description("Number of messages after the anchor (max 1000, default 0)"),
			mcplib.Max(1000),
		),
		mcplib.WithArray("narrow",
			mcplib.Description("Filter pairs: [[\"channel\",\"name\"],[\"topic\",\"name\"],[\"sender\",\"email\"],[\"search\",\"query\"]]"),
			mcplib.Items(map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}),
		),
		mcplib.WithNumber("message_id",
			mcplib.Description("Fetch a single specific message by id instead of paging"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetMessages}
}

func (s *Server) handleGetMessages(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getMessagesArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-messages: %w", err)), nil
	}
	anchor, err := args.anchor()
	if err != nil {
		return resultErr(fmt.Errorf("get-messages: %w", err)), nil
	}

	msgs, err := s.cl.Messages(ctx, zulip.GetMessagesParams{
		Anchor:    anchor,
		NumBefore: args.NumBefore,
		NumAfter:  args.NumAfter,
		Narrow:    args.Narrow,
		MessageID: args.MessageID,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-messages: %w", err)), nil
	}

	summaries := make([]messageSummary, 0, len(msgs))
	for _, m := range msgs {
		summaries = append(summaries, summarize(m, false))
	}
	result, err := resultJSON(map[string]any{
		"message_count": len(summaries),
		"messages":      summaries,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-messages: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get-message ──────────────────────────────────────────────────────────────

func (s *Server) toolGetMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-message",
		mcplib.WithDescription("Get complete details of one message by its id, including reactions and edit history."),
		mcplib.WithNumber("message_id",
			mcplib.Description("Unique message id to retrieve"),
			mcplib.Required(),
		),
		mcplib.WithBoolean("apply_markdown",
			mcplib.Description("Return rendered HTML (true) or raw Markdown (false); server default is rendered"),
		),
		mcplib.WithBoolean("allow_empty_topic_name",
			mcplib.Description("Allow an empty topic name in the response"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetMessage}
}

func (s *Server) handleGetMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getMessageArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-message: %w", err)), nil
	}

	msg, err := s.cl.Message(ctx, args.MessageID, zulip.GetMessageParams{
		ApplyMarkdown:       args.ApplyMarkdown,
		AllowEmptyTopicName: args.AllowEmptyTopicName,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-message: %w", err)), nil
	}

	result, err := resultJSON(map[string]any{"message": summarize(msg, true)})
	if err != nil {
		return resultErr(fmt.Errorf("get-message: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── edit-message ─────────────────────────────────────────────────────────────

func (s *Server) toolEditMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("edit-message",
		mcplib.WithDescription("Edit an existing message's content and/or topic. At least one of the two must be provided."),
		mcplib.WithNumber("message_id",
			mcplib.Description("Unique id of the message to edit"),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("New message content in Zulip Markdown"),
		),
		mcplib.WithString("topic",
			mcplib.Description("New topic name (channel messages only)"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleEditMessage}
}

func (s *Server) handleEditMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args editMessageArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("edit-message: %w", err)), nil
	}

	if err := s.cl.UpdateMessage(ctx, args.MessageID, zulip.UpdateMessageParams{
		Content: args.Content,
		Topic:   args.Topic,
	}); err != nil {
		return resultErr(fmt.Errorf("edit-message: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Message %d updated successfully!", args.MessageID)), nil
}

// ─── delete-message ───────────────────────────────────────────────────────────

func (s *Server) toolDeleteMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("delete-message",
		mcplib.WithDescription("Permanently delete a message by its id."),
		mcplib.WithNumber("message_id",
			mcplib.Description("Unique id of the message to delete"),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleDeleteMessage}
}

func (s *Server) handleDeleteMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args deleteMessageArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("delete-message: %w", err)), nil
	}
	if err := s.cl.DeleteMessage(ctx, args.MessageID); err != nil {
		return resultErr(fmt.Errorf("delete-message: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Message %d deleted successfully!", args.MessageID)), nil
}

// ─── add-emoji-reaction / remove-emoji-reaction ───────────────────────────────

func (s *Server) toolAddReaction() mcpsrv.ServerTool {
	tool := mcplib.NewTool("add-emoji-reaction",
		mcplib.WithDescription("Add an emoji reaction to a message. Unicode emoji need only emoji_name; custom org emoji use reaction_type \"realm_emoji\"."),
		mcplib.WithNumber("message_id",
			mcplib.Description("Id of the message to react to"),
			mcplib.Required(),
		),
		mcplib.WithString("emoji_name",
			mcplib.Description("Emoji name, e.g. \"thumbs_up\", \"heart\", or a custom emoji name"),
			mcplib.Required(),
		),
		mcplib.WithString("emoji_code",
			mcplib.Description("Unicode code point of the emoji"),
		),
		mcplib.WithString("reaction_type",
			mcplib.Description("Reaction classification; defaults to \"unicode_emoji\""),
			mcplib.Enum("unicode_emoji", "realm_emoji", "zulip_extra_emoji"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleAddReaction}
}

func (s *Server) handleAddReaction(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args reactionArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("add-emoji-reaction: %w", err)), nil
	}
	if err := s.cl.AddReaction(ctx, args.MessageID, zulip.ReactionParams{
		EmojiName:    args.EmojiName,
		EmojiCode:    args.EmojiCode,
		ReactionType: args.ReactionType,
	}); err != nil {
		return resultErr(fmt.Errorf("add-emoji-reaction: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Reaction %s added to message %d!", args.EmojiName, args.MessageID)), nil
}

func (s *Server) toolRemoveReaction() mcpsrv.ServerTool {
	tool := mcplib.NewTool("remove-emoji-reaction",
		mcplib.WithDescription("Remove an emoji reaction from a message."),
		mcplib.WithNumber("message_id",
			mcplib.Description("Id of the message to remove the reaction from"),
			mcplib.Required(),
		),
		mcplib.WithString("emoji_name",
			mcplib.Description("Emoji name to remove"),
			mcplib.Required(),
		),
		mcplib.WithString("emoji_code",
			mcplib.Description("Unicode code point of the emoji"),
		),
		mcplib.WithString("reaction_type",
			mcplib.Description("Reaction classification"),
			mcplib.Enum("unicode_emoji", "realm_emoji", "zulip_extra_emoji"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleRemoveReaction}
}

func (s *Server) handleRemoveReaction(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args reactionArgs
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("remove-emoji-reaction: %w", err)), nil
	}
	if err := s.cl.RemoveReaction(ctx, args.MessageID, zulip.ReactionParams{
		EmojiName:    args.EmojiName,
		EmojiCode:    args.EmojiCode,
		ReactionType: args.ReactionType,
	}); err != nil {
		return resultErr(fmt.Errorf("remove-emoji-reaction: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Reaction %s removed from message %d!", args.EmojiName, args.MessageID)), nil
}

// ─── get-message-read-receipts ────────────────────────────────────────────────

func (s *Server) toolGetReadReceipts() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get-message-read-receipts",
		mcplib.WithDescription("List the ids of the users who have read a specific message."),
		mcplib.WithNumber("message_id",
			mcplib.Description("Unique message id to get the read receipts for"),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetReadReceipts}
}

func (s *Server) handleGetReadReceipts(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args deleteMessageArgs // same single message_id shape
	if err := decodeArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get-message-read-receipts: %w", err)), nil
	}
	ids, err := s.cl.ReadReceipts(ctx, args.MessageID)
	if err != nil {
		return resultErr(fmt.Errorf("get-message-read-receipts: %w", err)), nil
	}
	result, err := resultJSON(map[string]any{
		"message_id":    args.MessageID,
		"read_by_count": len(ids),
		"user_ids":      ids,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get-message-read-receipts: serialise: %w", err)), nil
	}
	return result, nil
}
