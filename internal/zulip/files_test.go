package zulip

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFile(t *testing.T) {
	t.Run("multipart upload", func(t *testing.T) {
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/user_uploads", r.URL.Path)

			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "report.txt", hdr.Filename)
			assert.Equal(t, "text/plain", hdr.Header.Get("Content-Type"))
			data, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, []byte("file body"), data)

			ok(w, map[string]any{"uri": "/user_uploads/1/ab/report.txt"})
		})

		uri, err := cl.UploadFile(t.Context(), "report.txt", []byte("file body"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "/user_uploads/1/ab/report.txt", uri)
	})

	t.Run("falls back to url field", func(t *testing.T) {
		cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			ok(w, map[string]any{"url": "/user_uploads/1/cd/other.bin"})
		})

		uri, err := cl.UploadFile(t.Context(), "other.bin", []byte{1, 2}, "")
		require.NoError(t, err)
		assert.Equal(t, "/user_uploads/1/cd/other.bin", uri)
	})
}
