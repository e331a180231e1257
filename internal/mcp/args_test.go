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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArgs_sendMessage(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr string // substring, "" means valid
	}{
		{
			name: "valid channel message",
			args: map[string]any{"kind": "channel", "recipient": "general", "content": "hi", "topic": "hello"},
		},
		{
			name: "valid direct message",
			args: map[string]any{"kind": "direct", "recipient": "a@x.com, b@x.com", "content": "hi"},
		},
		{
			name:    "missing kind",
			args:    map[string]any{"recipient": "general", "content": "hi", "topic": "t"},
			wantErr: `"kind" is required`,
		},
		{
			name:    "bad kind",
			args:    map[string]any{"kind": "stream", "recipient": "general", "content": "hi", "topic": "t"},
			wantErr: `"kind" must be one of [channel direct]`,
		},
		{
			name:    "channel without topic",
			args:    map[string]any{"kind": "channel", "recipient": "general", "content": "hi"},
			wantErr: `"topic" is required for channel messages`,
		},
		{
			name:    "direct to a display name",
			args:    map[string]any{"kind": "direct", "recipient": "Bob Smith", "content": "hi"},
			wantErr: "is not an email address",
		},
		{
			name:    "missing content",
			args:    map[string]any{"kind": "channel", "recipient": "general", "topic": "t"},
			wantErr: `"content" is required`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args sendMessageArgs
			err := decodeArgs(toolReq(tt.args), &args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeArgs_getMessages(t *testing.T) {
	t.Run("numeric anchor normalised", func(t *testing.T) {
		var args getMessagesArgs
		require.NoError(t, decodeArgs(toolReq(map[string]any{"anchor": float64(12345)}), &args))
		anchor, err := args.anchor()
		require.NoError(t, err)
		assert.Equal(t, "12345", anchor)
	})
	t.Run("named anchor passes through", func(t *testing.T) {
		var args getMessagesArgs
		require.NoError(t, decodeArgs(toolReq(map[string]any{"anchor": "oldest"}), &args))
		anchor, err := args.anchor()
		require.NoError(t, err)
		assert.Equal(t, "oldest", anchor)
	})
	t.Run("absent anchor is empty", func(t *testing.T) {
		var args getMessagesArgs
		require.NoError(t, decodeArgs(toolReq(nil), &args))
		anchor, err := args.anchor()
		require.NoError(t, err)
		assert.Empty(t, anchor)
	})
	t.Run("num_before above limit", func(t *testing.T) {
		var args getMessagesArgs
		err := decodeArgs(toolReq(map[string]any{"num_before": 5000}), &args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"num_before" must not exceed 1000`)
	})
	t.Run("narrow pair must have two elements", func(t *testing.T) {
		var args getMessagesArgs
		err := decodeArgs(toolReq(map[string]any{"narrow": []any{[]any{"channel"}}}), &args)
		assert.Error(t, err)
	})
}

func TestDecodeArgs_editMessage(t *testing.T) {
	t.Run("neither content nor topic", func(t *testing.T) {
		var args editMessageArgs
		err := decodeArgs(toolReq(map[string]any{"message_id": 1}), &args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one of")
	})
	t.Run("topic only is fine", func(t *testing.T) {
		var args editMessageArgs
		assert.NoError(t, decodeArgs(toolReq(map[string]any{"message_id": 1, "topic": "moved"}), &args))
	})
}

func TestDecodeArgs_reaction(t *testing.T) {
	var args reactionArgs
	err := decodeArgs(toolReq(map[string]any{"message_id": 1, "emoji_name": "tada", "reaction_type": "surprise_emoji"}), &args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"reaction_type" must be one of`)
}

func TestDecodeArgs_getUserByEmail(t *testing.T) {
	var args getUserByEmailArgs
	err := decodeArgs(toolReq(map[string]any{"email": "not-an-email"}), &args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"email" is not a valid email address`)
}

func TestDecodeArgs_createDraft(t *testing.T) {
	t.Run("empty recipient list", func(t *testing.T) {
		var args createDraftArgs
		err := decodeArgs(toolReq(map[string]any{
			"kind": "direct", "recipient_ids": []any{}, "topic": "t", "content": "c",
		}), &args)
		assert.Error(t, err)
	})
	t.Run("valid", func(t *testing.T) {
		var args createDraftArgs
		require.NoError(t, decodeArgs(toolReq(map[string]any{
			"kind": "channel", "recipient_ids": []any{float64(9)}, "topic": "t", "content": "c",
		}), &args))
		assert.Equal(t, []int64{9}, args.RecipientIDs)
	})
}

func TestDecodeArgs_updateStatus(t *testing.T) {
	t.Run("all empty is rejected", func(t *testing.T) {
		var args updateStatusArgs
		err := decodeArgs(toolReq(nil), &args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one field")
	})
	t.Run("explicit empty status text clears the status", func(t *testing.T) {
		var args updateStatusArgs
		require.NoError(t, decodeArgs(toolReq(map[string]any{"status_text": ""}), &args))
		require.NotNil(t, args.StatusText)
		assert.Empty(t, *args.StatusText)
	})
}

func TestDecodeArgs_editScheduled(t *testing.T) {
	var args editScheduledArgs
	err := decodeArgs(toolReq(map[string]any{"scheduled_message_id": 5}), &args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one field")
}
