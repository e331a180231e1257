package zulip

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRecipients(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "a@x.com", []string{"a@x.com"}},
		{"multiple with spaces", "a@x.com, b@x.com ,c@x.com", []string{"a@x.com", "b@x.com", "c@x.com"}},
		{"empty entries dropped", "a@x.com,,", []string{"a@x.com"}},
		{"empty string", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitRecipients(tt.in))
		})
	}
}

func TestRecipientKindWire(t *testing.T) {
	assert.Equal(t, "stream", KindChannel.wireType())
	assert.Equal(t, "direct", KindDirect.wireType())
	assert.Equal(t, "stream", KindChannel.legacyWireType())
	assert.Equal(t, "private", KindDirect.legacyWireType())
}

func TestSendMessage(t *testing.T) {
	t.Run("channel message as JSON", func(t *testing.T) {
		var got map[string]any
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/messages", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			ok(w, map[string]any{"id": 123})
		})

		id, err := cl.SendMessage(t.Context(), SendMessageParams{
			Kind: KindChannel, To: "general", Content: "hello", Topic: "greetings",
		})
		require.NoError(t, err)
		assert.EqualValues(t, 123, id)
		assert.Equal(t, "stream", got["type"])
		assert.Equal(t, "general", got["to"])
		assert.Equal(t, "greetings", got["topic"])
	})

	t.Run("direct message recipients become a list", func(t *testing.T) {
		var got map[string]any
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			ok(w, map[string]any{"id": 7})
		})

		_, err := cl.SendMessage(t.Context(), SendMessageParams{
			Kind: KindDirect, To: "a@x.com, b@x.com", Content: "psst",
		})
		require.NoError(t, err)
		assert.Equal(t, "direct", got["type"])
		assert.Equal(t, []any{"a@x.com", "b@x.com"}, got["to"])
		assert.NotContains(t, got, "topic")
	})

	t.Run("rejected JSON retries form-encoded", func(t *testing.T) {
		var calls int
		var gotForm url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				require.Equal(t, "application/json", r.Header.Get("Content-Type"))
				apiFail(w, http.StatusBadRequest, "Invalid parameters")
				return
			}
			require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			gotForm, err = url.ParseQuery(string(body))
			require.NoError(t, err)
			ok(w, map[string]any{"id": 99})
		})

		id, err := cl.SendMessage(t.Context(), SendMessageParams{
			Kind: KindDirect, To: "a@x.com,b@x.com", Content: "psst",
		})
		require.NoError(t, err)
		assert.EqualValues(t, 99, id)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "direct", gotForm.Get("type"))
		assert.JSONEq(t, `["a@x.com","b@x.com"]`, gotForm.Get("to"))
	})

	t.Run("fallback failure is reported", func(t *testing.T) {
		var calls int
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			apiFail(w, http.StatusBadRequest, "Stream does not exist")
		})

		_, err := cl.SendMessage(t.Context(), SendMessageParams{
			Kind: KindChannel, To: "nope", Content: "x", Topic: "t",
		})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 2, calls)
		assert.Contains(t, apiErr.Hint, "get-subscribed-channels")
	})

	t.Run("unreachable server does not retry", func(t *testing.T) {
		cl, err := New(Config{BaseURL: "http://127.0.0.1:1", Email: testEmail, APIKey: testAPIKey})
		require.NoError(t, err)

		_, err = cl.SendMessage(t.Context(), SendMessageParams{
			Kind: KindChannel, To: "general", Content: "x", Topic: "t",
		})
		var connErr *ConnError
		require.ErrorAs(t, err, &connErr)
	})
}

func TestMessages(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var gotQuery url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			ok(w, map[string]any{"messages": []any{}})
		})

		_, err := cl.Messages(t.Context(), GetMessagesParams{})
		require.NoError(t, err)
		assert.Equal(t, "newest", gotQuery.Get("anchor"))
		assert.Equal(t, "20", gotQuery.Get("num_before"))
		assert.Equal(t, "0", gotQuery.Get("num_after"))
		assert.Empty(t, gotQuery.Get("narrow"))
	})

	t.Run("defaults applied per field", func(t *testing.T) {
		var gotQuery url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			ok(w, map[string]any{"messages": []any{}})
		})

		_, err := cl.Messages(t.Context(), GetMessagesParams{Anchor: "oldest", NumAfter: ptr(5)})
		require.NoError(t, err)
		assert.Equal(t, "oldest", gotQuery.Get("anchor"))
		assert.Equal(t, "20", gotQuery.Get("num_before"))
		assert.Equal(t, "5", gotQuery.Get("num_after"))
	})

	t.Run("explicit zeros are preserved", func(t *testing.T) {
		var gotQuery url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			ok(w, map[string]any{"messages": []any{}})
		})

		_, err := cl.Messages(t.Context(), GetMessagesParams{NumBefore: ptr(0), NumAfter: ptr(0)})
		require.NoError(t, err)
		assert.Equal(t, "0", gotQuery.Get("num_before"))
		assert.Equal(t, "0", gotQuery.Get("num_after"))
	})

	t.Run("narrow is JSON-encoded", func(t *testing.T) {
		var gotQuery url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			ok(w, map[string]any{"messages": []any{}})
		})

		_, err := cl.Messages(t.Context(), GetMessagesParams{
			Narrow: [][]string{{"channel", "general"}, {"topic", "standup"}},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `[["channel","general"],["topic","standup"]]`, gotQuery.Get("narrow"))
	})

	t.Run("message_id path bypasses paging", func(t *testing.T) {
		var gotPath string
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			ok(w, map[string]any{"message": map[string]any{"id": 55, "content": "found"}})
		})

		msgs, err := cl.Messages(t.Context(), GetMessagesParams{MessageID: 55, NumBefore: ptr(100)})
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/messages/55", gotPath)
		require.Len(t, msgs, 1)
		assert.EqualValues(t, 55, msgs[0].ID)
	})
}

func TestMessage(t *testing.T) {
	var gotQuery url.Values
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		ok(w, map[string]any{"message": map[string]any{"id": 1}})
	})

	f := false
	_, err := cl.Message(t.Context(), 1, GetMessageParams{ApplyMarkdown: &f})
	require.NoError(t, err)
	assert.Equal(t, "false", gotQuery.Get("apply_markdown"))
	assert.False(t, gotQuery.Has("allow_empty_topic_name"))
}

func TestUpdateMessage(t *testing.T) {
	var got map[string]any
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/v1/messages/9", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		ok(w, nil)
	})

	err := cl.UpdateMessage(t.Context(), 9, UpdateMessageParams{Topic: "moved"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"topic": "moved"}, got)
}

func TestReactions(t *testing.T) {
	t.Run("add defaults to unicode_emoji", func(t *testing.T) {
		var got map[string]any
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/messages/5/reactions", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			ok(w, nil)
		})

		err := cl.AddReaction(t.Context(), 5, ReactionParams{EmojiName: "tada"})
		require.NoError(t, err)
		assert.Equal(t, "tada", got["emoji_name"])
		assert.Equal(t, "unicode_emoji", got["reaction_type"])
	})

	t.Run("remove uses query parameters", func(t *testing.T) {
		var gotQuery url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)
			require.Equal(t, "/api/v1/messages/5/reactions", r.URL.Path)
			gotQuery = r.URL.Query()
			ok(w, nil)
		})

		err := cl.RemoveReaction(t.Context(), 5, ReactionParams{EmojiName: "tada", ReactionType: "realm_emoji"})
		require.NoError(t, err)
		assert.Equal(t, "tada", gotQuery.Get("emoji_name"))
		assert.Equal(t, "realm_emoji", gotQuery.Get("reaction_type"))
	})
}

func TestReadReceipts(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/messages/77/read_receipts", r.URL.Path)
		ok(w, map[string]any{"user_ids": []int64{3, 1, 2}})
	})

	ids, err := cl.ReadReceipts(t.Context(), 77)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)
}
