package zulip

import (
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	var gotQuery url.Values
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users", r.URL.Path)
		gotQuery = r.URL.Query()
		ok(w, map[string]any{"members": []map[string]any{
			{"user_id": 1, "full_name": "Ayesha", "email": "ayesha@x.com"},
			{"user_id": 2, "full_name": "Marcus", "email": "marcus@x.com"},
		}})
	})

	tr := true
	users, err := cl.Users(t.Context(), UserOptions{IncludeCustomProfileFields: &tr})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ayesha", users[0].FullName)
	assert.Equal(t, "true", gotQuery.Get("include_custom_profile_fields"))
	assert.False(t, gotQuery.Has("client_gravatar"))
}

func TestUserByEmail(t *testing.T) {
	var gotPath string
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		ok(w, map[string]any{"user": map[string]any{"user_id": 3, "email": "a+b@x.com"}})
	})

	u, err := cl.UserByEmail(t.Context(), "a+b@x.com", UserOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, u.UserID)
	assert.Equal(t, "/api/v1/users/a+b@x.com", gotPath)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("only set fields are sent", func(t *testing.T) {
		var gotForm url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/users/me/status", r.URL.Path)
			require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			gotForm, err = url.ParseQuery(string(body))
			require.NoError(t, err)
			ok(w, nil)
		})

		text := "In a meeting"
		err := cl.UpdateStatus(t.Context(), StatusParams{StatusText: &text, EmojiName: "calendar"})
		require.NoError(t, err)
		assert.Equal(t, "In a meeting", gotForm.Get("status_text"))
		assert.Equal(t, "calendar", gotForm.Get("emoji_name"))
		assert.False(t, gotForm.Has("away"))
	})

	t.Run("empty status text clears it", func(t *testing.T) {
		var gotForm url.Values
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			gotForm, err = url.ParseQuery(string(body))
			require.NoError(t, err)
			ok(w, nil)
		})

		empty := ""
		err := cl.UpdateStatus(t.Context(), StatusParams{StatusText: &empty})
		require.NoError(t, err)
		assert.True(t, gotForm.Has("status_text"))
		assert.Equal(t, "", gotForm.Get("status_text"))
	})
}

func TestUserGroups(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/user_groups", r.URL.Path)
		ok(w, map[string]any{"user_groups": []map[string]any{
			{"id": 1, "name": "core", "members": []int64{1, 2}},
		}})
	})

	groups, err := cl.UserGroups(t.Context())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "core", groups[0].Name)
	assert.Equal(t, []int64{1, 2}, groups[0].Members)
}
