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

// Package mcp exposes the Zulip REST API as MCP tools and resources for
// consumption by an LLM-driven agent.
package mcp

// In this file: MCP server construction, transport management and the
// helpers shared by the tool handlers.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/zulipmcp/internal/zulip"
)

const (
	serverName    = "zulip-mcp"
	serverVersion = "1.0.0"
)

// Transport selects how the MCP server communicates with its client.
type Transport string

const (
	// TransportStdio uses stdin/stdout for communication (default, suitable
	// for local agent integrations such as Claude Desktop).
	TransportStdio Transport = "stdio"
	// TransportHTTP uses Streamable HTTP transport (suitable for remote
	// agents or when multiple concurrent clients are needed).
	TransportHTTP Transport = "http"
)

// Server wraps an MCP server and the Zulip client it adapts.
type Server struct {
	mcp    *mcpsrv.MCPServer
	cl     *zulip.Client
	logger *slog.Logger
}

// Option is the signature of a Server option-setting function.
type Option func(*Server)

// WithLogger sets the logger.  A nil logger falls back to slog.Default.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// New creates a new MCP server backed by the given Zulip client.  The
// server is populated with all tools and resources but does not start
// listening until one of the Serve* methods is called.
func New(cl *zulip.Client, opt ...Option) *Server {
	s := &Server{
		cl:     cl,
		logger: slog.Default(),
	}
	for _, o := range opt {
		o(s)
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithInstructions(instructions(cl)),
		mcpsrv.WithResourceCapabilities(false, true),
	)

	// Register all tools.
	for _, t := range s.tools() {
		mcpServer.AddTool(t.Tool, t.Handler)
	}
	s.mcp = mcpServer
	s.registerResources()
	return s
}

// instructions returns the server instructions that describe the connected
// workspace to the agent.
func instructions(cl *zulip.Client) string {
	return fmt.Sprintf(`You are connected to a Zulip MCP server for %s (account: %s).

Available tools allow you to:
- Send, fetch, edit and delete messages, and manage emoji reactions
- Schedule messages and manage drafts
- Look up channels (Zulip calls them "streams"), topics, users and groups
- Upload files and update the account status

Start with the get-started tool to verify connectivity and see the
subscribed channels. Channel messages always require a topic. Direct
messages are addressed by email; use search-users to find addresses.
Timestamps are Unix epoch seconds.
`, cl.BaseURL(), cl.Email())
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
// This is the standard transport used by local agent integrations.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.InfoContext(ctx, "mcp server listening on stdio")
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}

// ServeHTTP runs the MCP server as a Streamable HTTP server on addr until
// ctx is cancelled.  addr should be a host:port string such as "127.0.0.1:8484".
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := &http.Server{Addr: addr}
	streamSrv := mcpsrv.NewStreamableHTTPServer(s.mcp,
		mcpsrv.WithStreamableHTTPServer(httpSrv),
	)

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := streamSrv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("mcp http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "mcp server shutting down")
		if err := streamSrv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("mcp http server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// tools returns all MCP tools that this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolGetStarted(),
		s.toolSendMessage(),
		s.toolGetMessages(),
		s.toolGetMessage(),
		s.toolEditMessage(),
		s.toolDeleteMessage(),
		s.toolAddReaction(),
		s.toolRemoveReaction(),
		s.toolGetReadReceipts(),
		s.toolUploadFile(),
		s.toolCreateScheduledMessage(),
		s.toolEditScheduledMessage(),
		s.toolGetScheduledMessages(),
		s.toolCreateDraft(),
		s.toolGetDrafts(),
		s.toolEditDraft(),
		s.toolGetSubscribedChannels(),
		s.toolGetChannelID(),
		s.toolGetChannelByID(),
		s.toolGetTopicsInChannel(),
		s.toolSearchUsers(),
		s.toolGetUsers(),
		s.toolGetUser(),
		s.toolGetUserByEmail(),
		s.toolUpdateStatus(),
		s.toolGetUserGroups(),
	}
}

func ptr[T any](v T) *T { return &v }

// resultText is a helper that wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr is a helper that wraps an error in a CallToolResult with IsError=true.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultJSON is a helper that serialises v to JSON and returns a CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intArg extracts a named int argument from a tool call request.  The MCP
// protocol serialises numbers as float64, so we convert accordingly.
func intArg(req mcplib.CallToolRequest, name string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return defaultVal
}

// boolArg extracts a named bool argument from a tool call request.
func boolArg(req mcplib.CallToolRequest, name string, defaultVal bool) bool {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	b, ok := v.(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// optBoolArg extracts a named bool argument, returning nil when it is
// absent.  Used for flags whose server-side default differs from false.
func optBoolArg(req mcplib.CallToolRequest, name string) *bool {
	args := req.GetArguments()
	if args == nil {
		return nil
	}
	v, ok := args[name]
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}
