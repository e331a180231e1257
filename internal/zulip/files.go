package zulip

// In this file: file upload.

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

type uploadResponse struct {
	URI string `json:"uri"`
	URL string `json:"url"` // newer servers return "url" instead of "uri"
}

// UploadFile uploads the file content as a multipart body and returns the
// URI under which the server stored it.
func (cl *Client) UploadFile(ctx context.Context, filename string, content []byte, contentType string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("request error: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("request error: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("request error: %w", err)
	}

	req, err := cl.newRequest(ctx, http.MethodPost, "/user_uploads", nil, &buf, w.FormDataContentType())
	if err != nil {
		return "", err
	}
	var resp uploadResponse
	if err := cl.do(req, &resp); err != nil {
		return "", err
	}
	if resp.URI != "" {
		return resp.URI, nil
	}
	return strings.TrimSpace(resp.URL), nil
}
