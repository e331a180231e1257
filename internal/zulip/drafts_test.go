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

func TestDraftParamsWire(t *testing.T) {
	t.Run("direct uses private literal", func(t *testing.T) {
		d := DraftParams{Kind: KindDirect, To: []int64{1, 2}, Topic: "t", Content: "c"}.wire()
		assert.Equal(t, "private", d["type"])
		assert.NotContains(t, d, "timestamp")
	})
	t.Run("timestamp kept when set", func(t *testing.T) {
		d := DraftParams{Kind: KindChannel, To: []int64{9}, Topic: "t", Content: "c", Timestamp: 1700000000}.wire()
		assert.Equal(t, "stream", d["type"])
		assert.EqualValues(t, 1700000000, d["timestamp"])
	})
}

func TestCreateDraft(t *testing.T) {
	t.Run("JSON body accepted", func(t *testing.T) {
		var got map[string]any
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/drafts", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			ok(w, map[string]any{"ids": []int64{31}})
		})

		ids, err := cl.CreateDraft(t.Context(), DraftParams{
			Kind: KindDirect, To: []int64{5, 6}, Topic: "plans", Content: "draft text",
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{31}, ids)
		drafts, ok := got["drafts"].([]any)
		require.True(t, ok)
		require.Len(t, drafts, 1)
	})

	t.Run("rejected JSON retries form-encoded", func(t *testing.T) {
		var calls int
		var gotForm url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				apiFail(w, http.StatusBadRequest, "Invalid parameters")
				return
			}
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			gotForm, err = url.ParseQuery(string(body))
			require.NoError(t, err)
			ok(w, map[string]any{"ids": []int64{32}})
		})

		ids, err := cl.CreateDraft(t.Context(), DraftParams{
			Kind: KindChannel, To: []int64{9}, Topic: "plans", Content: "draft text",
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{32}, ids)
		assert.Equal(t, 2, calls)

		var drafts []map[string]any
		require.NoError(t, json.Unmarshal([]byte(gotForm.Get("drafts")), &drafts))
		require.Len(t, drafts, 1)
		assert.Equal(t, "stream", drafts[0]["type"])
	})
}

func TestEditDraft(t *testing.T) {
	var got map[string]any
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/v1/drafts/14", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		ok(w, nil)
	})

	err := cl.EditDraft(t.Context(), 14, DraftParams{
		Kind: KindDirect, To: []int64{5}, Topic: "plans", Content: "new text",
	})
	require.NoError(t, err)
	assert.Equal(t, "private", got["type"])
	assert.Equal(t, "new text", got["content"])
}
