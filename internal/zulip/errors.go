package zulip

// In this file: the error types raised by the client, and the remediation
// hints appended to recognisable remote error messages.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is returned when the Zulip server responds with a non-2xx status.
// It carries the remote status code and the server-supplied message.  Hint,
// when present, is a cosmetic remediation suggestion and does not change the
// error's classification.
type APIError struct {
	StatusCode int
	Msg        string
	Hint       string
}

func (e *APIError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("zulip API error (%d): %s. %s", e.StatusCode, e.Msg, e.Hint)
	}
	return fmt.Sprintf("zulip API error (%d): %s", e.StatusCode, e.Msg)
}

// ConnError is returned when no response was received from the server at all
// (DNS, connect or timeout failure).
type ConnError struct {
	Endpoint string
	Err      error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("unable to reach Zulip server at %s: %s", e.Endpoint, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// hints maps substrings of remote error messages to remediation suggestions
// for the calling agent.
var hints = []struct {
	substr string
	hint   string
}{
	{"No such user", "Use the search-users tool to find the correct email address."},
	{"Stream does not exist", "Use get-subscribed-channels to see available channels and check exact spelling."},
	{"Invalid stream", "Use get-subscribed-channels to see available channels and check exact spelling."},
	{"Invalid email", "Use actual email addresses from the search-users tool, not display names."},
	{"Message not found", "The message may have been deleted or you may not have access to it."},
	{"Invalid message", "The message may have been deleted or you may not have access to it."},
}

// hintFor returns a remediation hint for the remote message, or "".
func hintFor(msg string) string {
	for _, h := range hints {
		if strings.Contains(msg, h.substr) {
			return h.hint
		}
	}
	return ""
}

// errorBody is the shape of a Zulip error response.
type errorBody struct {
	Result  string `json:"result,omitempty"`
	Msg     string `json:"msg,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// apiError builds an *APIError from a non-2xx response.  The body is decoded
// on a best effort basis; an undecodable body yields the HTTP status text.
func apiError(resp *http.Response) *APIError {
	var body errorBody
	msg := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		switch {
		case body.Msg != "":
			msg = body.Msg
		case body.Message != "":
			msg = body.Message
		}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Msg:        msg,
		Hint:       hintFor(msg),
	}
}
