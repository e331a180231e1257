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

// Command zulipmcp runs a Model Context Protocol server that exposes a Zulip
// workspace to LLM agents.  By default it speaks MCP over stdin/stdout; pass
// -transport http to serve Streamable HTTP instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"

	"github.com/rusq/zulipmcp/internal/mcp"
	"github.com/rusq/zulipmcp/internal/zulip"
)

const (
	envZulipURL    = "ZULIP_URL"
	envZulipEmail  = "ZULIP_EMAIL"
	envZulipAPIKey = "ZULIP_API_KEY"
)

var build = "dev"

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

type params struct {
	cfg zulip.Config

	transport    string
	listenAddr   string
	verbose      bool
	printVersion bool
}

func main() {
	loadSecrets(secrets)

	p, err := parseCmdLine(os.Args[1:])
	if err != nil {
		slog.Error("invalid command line", "error", err)
		os.Exit(1)
	}
	if p.printVersion {
		fmt.Println(build)
		return
	}
	initLog(p.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, p); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, p params) error {
	cl, err := zulip.New(p.cfg, zulip.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	srv := mcp.New(cl, mcp.WithLogger(slog.Default()))

	switch mcp.Transport(p.transport) {
	case mcp.TransportStdio:
		return srv.ServeStdio(ctx)
	case mcp.TransportHTTP:
		return srv.ServeHTTP(ctx, p.listenAddr)
	default:
		return fmt.Errorf("unknown transport %q", p.transport)
	}
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		godotenv.Load(f)
	}
}

// initLog initialises the default logger.  Logs go to stderr so that the
// stdio transport keeps stdout clean for the protocol.
func initLog(verbose bool) {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// parseCmdLine parses the command line arguments.
func parseCmdLine(args []string) (params, error) {
	fs := flag.NewFlagSet("zulipmcp", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			fs.Output(),
			"Zulip MCP server, %s\n"+
				"Exposes a Zulip workspace as Model Context Protocol tools and\n"+
				"resources for LLM agents.\n\n"+
				"Usage:  %s [flags]\n\n",
			build, filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}

	var p params
	fs.StringVar(&p.cfg.BaseURL, "url", osenv.Value(envZulipURL, ""), "Zulip server `URL`, e.g. https://example.zulipchat.com (environment: "+envZulipURL+")")
	fs.StringVar(&p.cfg.Email, "email", osenv.Value(envZulipEmail, ""), "Zulip bot or user `email` (environment: "+envZulipEmail+")")
	fs.StringVar(&p.cfg.APIKey, "api-key", osenv.Secret(envZulipAPIKey, ""), "Zulip API `key` (environment: "+envZulipAPIKey+")")

	fs.StringVar(&p.transport, "transport", string(mcp.TransportStdio), "MCP `transport`, one of \"stdio\" or \"http\"")
	fs.StringVar(&p.listenAddr, "listen", "127.0.0.1:8484", "listen `address` for the http transport")

	fs.BoolVar(&p.verbose, "v", osenv.Value("DEBUG", false), "verbose messages")
	fs.BoolVar(&p.printVersion, "V", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return p, err
	}
	return p, nil
}
