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

// In this file: the validation layer.  Each tool has a typed argument
// struct; decodeArgs populates it from the raw argument map and validates
// it before any network call is made.

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/rusq/zulipmcp/internal/zulip"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their wire names, not the Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// crossValidator is implemented by argument structs that have rules
// spanning more than one field.
type crossValidator interface {
	validateCross() error
}

// decodeArgs unmarshals the request arguments into v and validates them.
// The returned error names the offending field and constraint and is safe
// to surface to the caller verbatim.
func decodeArgs(req mcplib.CallToolRequest, v any) error {
	data, err := json.Marshal(req.GetArguments())
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fieldError(err)
	}
	if cv, ok := v.(crossValidator); ok {
		return cv.validateCross()
	}
	return nil
}

// fieldError converts a validator error into a message naming the field and
// the constraint it fails.
func fieldError(err error) error {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) || len(verr) == 0 {
		return err
	}
	fe := verr[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("invalid input: %q is required", fe.Field())
	case "oneof":
		return fmt.Errorf("invalid input: %q must be one of [%s]", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("invalid input: %q must not exceed %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Errorf("invalid input: %q must be at least %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Errorf("invalid input: %q is not a valid email address", fe.Field())
	default:
		return fmt.Errorf("invalid input: %q fails constraint %q", fe.Field(), fe.Tag())
	}
}

// ─── argument structs ─────────────────────────────────────────────────────────

type sendMessageArgs struct {
	Kind      string `json:"kind" validate:"required,oneof=channel direct"`
	Recipient string `json:"recipient" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Topic     string `json:"topic"`
}

func (a sendMessageArgs) validateCross() error {
	return validateAddressing(a.Kind, a.Recipient, a.Topic)
}

// validateAddressing checks the kind-dependent rules shared by send-message
// and create-scheduled-message: channel sends require a topic, and every
// direct recipient must look like an email address.
func validateAddressing(kind, recipient, topic string) error {
	switch zulip.RecipientKind(kind) {
	case zulip.KindChannel:
		if topic == "" {
			return errors.New("invalid input: \"topic\" is required for channel messages; think of it as a subject line")
		}
	case zulip.KindDirect:
		for _, addr := range strings.Split(recipient, ",") {
			if addr = strings.TrimSpace(addr); !strings.Contains(addr, "@") {
				return fmt.Errorf("invalid input: direct message recipient %q is not an email address; use search-users to find correct addresses, not display names", addr)
			}
		}
	}
	return nil
}

type getMessagesArgs struct {
	Anchor    any        `json:"anchor"` // message id, or "newest"/"oldest"/"first_unread"
	NumBefore *int       `json:"num_before" validate:"omitempty,min=0,max=1000"`
	NumAfter  *int       `json:"num_after" validate:"omitempty,min=0,max=1000"`
	Narrow    [][]string `json:"narrow" validate:"omitempty,dive,len=2,dive,required"`
	MessageID int64      `json:"message_id" validate:"min=0"`
}

// anchor normalises the anchor argument, which may arrive as a number or a
// named position, into its string form.
func (a getMessagesArgs) anchor() (string, error) {
	switch v := a.Anchor.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("invalid input: \"anchor\" must be a message id or one of [newest oldest first_unread], got %T", a.Anchor)
	}
}

type getMessageArgs struct {
	MessageID           int64 `json:"message_id" validate:"required,min=1"`
	ApplyMarkdown       *bool `json:"apply_markdown"`
	AllowEmptyTopicName *bool `json:"allow_empty_topic_name"`
}

type editMessageArgs struct {
	MessageID int64  `json:"message_id" validate:"required,min=1"`
	Content   string `json:"content"`
	Topic     string `json:"topic"`
}

func (a editMessageArgs) validateCross() error {
	if a.Content == "" && a.Topic == "" {
		return errors.New("invalid input: at least one of \"content\" or \"topic\" must be provided")
	}
	return nil
}

type deleteMessageArgs struct {
	MessageID int64 `json:"message_id" validate:"required,min=1"`
}

type reactionArgs struct {
	MessageID    int64  `json:"message_id" validate:"required,min=1"`
	EmojiName    string `json:"emoji_name" validate:"required"`
	EmojiCode    string `json:"emoji_code"`
	ReactionType string `json:"reaction_type" validate:"omitempty,oneof=unicode_emoji realm_emoji zulip_extra_emoji"`
}

type uploadFileArgs struct {
	Filename    string `json:"filename" validate:"required"`
	Content     string `json:"content" validate:"required"` // base64
	ContentType string `json:"content_type"`
}

type createScheduledArgs struct {
	Kind              string `json:"kind" validate:"required,oneof=channel direct"`
	Recipient         string `json:"recipient" validate:"required"`
	Content           string `json:"content" validate:"required"`
	Topic             string `json:"topic"`
	DeliveryTimestamp int64  `json:"delivery_timestamp" validate:"required,min=1"`
}

func (a createScheduledArgs) validateCross() error {
	return validateAddressing(a.Kind, a.Recipient, a.Topic)
}

type editScheduledArgs struct {
	ScheduledMessageID int64  `json:"scheduled_message_id" validate:"required,min=1"`
	Kind               string `json:"kind" validate:"omitempty,oneof=channel direct"`
	Recipient          string `json:"recipient"`
	Content            string `json:"content"`
	Topic              string `json:"topic"`
	DeliveryTimestamp  int64  `json:"delivery_timestamp" validate:"min=0"`
}

func (a editScheduledArgs) validateCross() error {
	if a.Kind == "" && a.Recipient == "" && a.Content == "" && a.Topic == "" && a.DeliveryTimestamp == 0 {
		return errors.New("invalid input: at least one field must be provided to update a scheduled message")
	}
	return nil
}

type createDraftArgs struct {
	Kind         string  `json:"kind" validate:"required,oneof=channel direct"`
	RecipientIDs []int64 `json:"recipient_ids" validate:"required,min=1"`
	Topic        string  `json:"topic" validate:"required"`
	Content      string  `json:"content" validate:"required"`
	Timestamp    int64   `json:"timestamp" validate:"min=0"`
}

type editDraftArgs struct {
	DraftID      int64   `json:"draft_id" validate:"required,min=1"`
	Kind         string  `json:"kind" validate:"required,oneof=channel direct"`
	RecipientIDs []int64 `json:"recipient_ids" validate:"required,min=1"`
	Topic        string  `json:"topic" validate:"required"`
	Content      string  `json:"content" validate:"required"`
	Timestamp    int64   `json:"timestamp" validate:"min=0"`
}

type getChannelIDArgs struct {
	ChannelName string `json:"channel_name" validate:"required"`
}

type getChannelByIDArgs struct {
	ChannelID          int64 `json:"channel_id" validate:"required,min=1"`
	IncludeSubscribers bool  `json:"include_subscribers"`
}

type getTopicsArgs struct {
	ChannelID int64 `json:"channel_id" validate:"required,min=1"`
}

type searchUsersArgs struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"min=0"`
}

type getUserArgs struct {
	UserID                     int64 `json:"user_id" validate:"required,min=1"`
	ClientGravatar             *bool `json:"client_gravatar"`
	IncludeCustomProfileFields *bool `json:"include_custom_profile_fields"`
}

type getUserByEmailArgs struct {
	Email                      string `json:"email" validate:"required,email"`
	ClientGravatar             *bool  `json:"client_gravatar"`
	IncludeCustomProfileFields *bool  `json:"include_custom_profile_fields"`
}

type updateStatusArgs struct {
	StatusText   *string `json:"status_text"`
	Away         *bool   `json:"away"`
	EmojiName    string  `json:"emoji_name"`
	EmojiCode    string  `json:"emoji_code"`
	ReactionType string  `json:"reaction_type" validate:"omitempty,oneof=unicode_emoji realm_emoji zulip_extra_emoji"`
}

func (a updateStatusArgs) validateCross() error {
	if a.StatusText == nil && a.Away == nil && a.EmojiName == "" && a.EmojiCode == "" && a.ReactionType == "" {
		return errors.New("invalid input: at least one field must be provided to update the status")
	}
	return nil
}
