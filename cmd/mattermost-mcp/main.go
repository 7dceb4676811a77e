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

// Command mattermost-mcp is the read-only MCP server for Mattermost.  It
// serves the MCP protocol over stdio, SSE or streamable HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"

	"github.com/rusq/mattermost-mcp/internal/config"
	"github.com/rusq/mattermost-mcp/internal/directory"
	"github.com/rusq/mattermost-mcp/internal/gateway"
	"github.com/rusq/mattermost-mcp/internal/mattermost"
	"github.com/rusq/mattermost-mcp/internal/mcp"
	"github.com/rusq/mattermost-mcp/internal/session"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var secrets = []string{".env", ".env.txt", "secrets.txt"}

type params struct {
	cfg config.Config

	verbose      bool
	logFile      string
	jsonLog      bool
	traceFile    string
	printVersion bool
}

func main() {
	loadSecrets(secrets)

	p, err := parseCmdLine(os.Args[1:])
	if p.printVersion {
		fmt.Printf("mattermost-mcp %s (commit: %s) built on: %s\n", version, commit, date)
		return
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lg, closeLog, err := initLog(p.logFile, p.jsonLog, p.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	stop := initTrace(p.traceFile)
	defer stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, p.cfg, lg, os.Stdin, os.Stdout); err != nil {
		lg.Error("server failed", "error", err)
		stop()
		closeLog()
		os.Exit(1)
	}
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// parseCmdLine parses the command line arguments.  The printVersion field
// is set even if the configuration is invalid.
func parseCmdLine(args []string) (params, error) {
	fs := flag.NewFlagSet("mattermost-mcp", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			fs.Output(),
			"mattermost-mcp is a read-only MCP server for Mattermost.\n\n"+
				"Usage: %s [flags]\n", os.Args[0],
		)
		fs.PrintDefaults()
	}

	var p params
	fs.BoolVar(&p.verbose, "v", osenv.Value("DEBUG", false), "verbose messages")
	fs.StringVar(&p.logFile, "log", osenv.Value("LOG_FILE", ""), "log `file`, if not specified, messages are printed to STDERR")
	fs.BoolVar(&p.jsonLog, "json", false, "log in JSON format")
	fs.StringVar(&p.traceFile, "trace", osenv.Value("TRACE_FILE", ""), "trace `file` (optional)")
	fs.BoolVar(&p.printVersion, "V", false, "print version and exit")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return p, err
	}
	p.cfg = cfg
	return p, nil
}

// run wires the components together and serves the configured transport
// until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, lg *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	lg.InfoContext(ctx, "starting", "version", version, "config", cfg.String())

	client, err := mattermost.New(cfg.Endpoint, cfg.Token, mattermost.WithLimits(cfg.Limits), mattermost.WithLogger(lg))
	if err != nil {
		return err
	}
	dir := directory.New(
		client,
		directory.WithTTL(cfg.CacheTTL),
		directory.WithFetchTimeout(cfg.RequestTimeout),
		directory.WithRestriction(cfg.Channels),
		directory.WithLogger(lg),
	)
	if err := dir.Open(ctx); err != nil {
		// the directory is loaded again on the first call
		lg.WarnContext(ctx, "directory warm-up failed", "error", err)
	}
	gw := gateway.New(
		client,
		dir,
		gateway.WithTeam(cfg.Team),
		gateway.WithUserRetention(cfg.UserCacheTTL),
		gateway.WithLogger(lg),
	)
	srv := mcp.New(
		gw,
		dir,
		mcp.WithLogger(lg),
		mcp.WithDefaultLimit(cfg.Limit),
		mcp.WithTeam(cfg.Team),
		mcp.WithVersion(version),
	)
	m := session.NewManager(
		srv.MCPServer(),
		session.WithLogger(lg),
		session.WithRequestTimeout(cfg.RequestTimeout),
	)

	switch cfg.Transport {
	case config.TransportStdio:
		lg.InfoContext(ctx, "serving on stdio")
		return session.ServeStream(ctx, m, stdin, stdout)
	case config.TransportSSE:
		lg.InfoContext(ctx, "serving sse", "listen", cfg.Listen)
		return serveHTTP(ctx, cfg, m, session.NewPushHandler(m))
	case config.TransportHTTP:
		lg.InfoContext(ctx, "serving streamable http", "listen", cfg.Listen)
		return serveHTTP(ctx, cfg, m, session.NewStreamableHandler(m))
	default:
		return fmt.Errorf("unsupported transport: %q", cfg.Transport)
	}
}

func serveHTTP(ctx context.Context, cfg config.Config, m *session.Manager, h http.Handler) error {
	srv := session.NewServer(cfg.Listen, m, h, session.WithIdleTimeout(cfg.IdleTimeout))
	return srv.ListenAndServe(ctx)
}
