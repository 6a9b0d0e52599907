package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/EdibleTuber/void-mcp-server/internal/audit"
	"github.com/EdibleTuber/void-mcp-server/internal/config"
	"github.com/EdibleTuber/void-mcp-server/internal/crashlog"
	"github.com/EdibleTuber/void-mcp-server/internal/defaults"
	"github.com/EdibleTuber/void-mcp-server/internal/fsops"
	"github.com/EdibleTuber/void-mcp-server/internal/heartbeat"
	"github.com/EdibleTuber/void-mcp-server/internal/logging"
	"github.com/EdibleTuber/void-mcp-server/internal/mcp"
)

// TokenEnv supplies the bearer token when --token is not given.
const TokenEnv = "VOID_MCP_TOKEN"

type serveOptions struct {
	httpAddr    string
	token       string
	auditDB     string
	noAudit     bool
	heartbeat   time.Duration
	watchConfig bool
}

func defaultServeOptions() *serveOptions {
	return &serveOptions{heartbeat: heartbeat.DefaultInterval}
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token required on /mcp (default: $"+TokenEnv+")")
	cmd.Flags().StringVar(&opts.auditDB, "audit-db", "", "audit database path (default: data directory)")
	cmd.Flags().BoolVar(&opts.noAudit, "no-audit", false, "do not record operations")
	cmd.Flags().DurationVar(&opts.heartbeat, "heartbeat", opts.heartbeat, "liveness log interval (0 disables)")
	cmd.Flags().BoolVar(&opts.watchConfig, "watch-config", false, "warn when the config file changes")
}

// commandContext returns the context the command was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// ServeCmd creates the serve command
func ServeCmd() *cobra.Command {
	opts := defaultServeOptions()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve file tools over MCP",
		Long: `Serve the sandboxed file tools over MCP.

Examples:
  void-mcp-server serve                          # stdio
  void-mcp-server serve --http :8080 --token s3  # streamable HTTP with auth`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd), opts)
		},
	}
	addServeFlags(cmd, opts)
	return cmd
}

func runServe(parent context.Context, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := loadPolicy()
	if err != nil {
		return err
	}

	var engineOpts []fsops.Option
	if !opts.noAudit {
		store, err := openAudit(ctx, opts.auditDB)
		if err != nil {
			return err
		}
		defer store.Close()
		crashlog.Init(store)
		defer crashlog.Init(nil)
		engineOpts = append(engineOpts, fsops.WithRecorder(store))
	}
	server := mcp.NewServer(fsops.New(p, engineOpts...))

	if opts.heartbeat > 0 {
		hb, err := heartbeat.New(opts.heartbeat)
		if err != nil {
			return err
		}
		hb.Start()
		defer hb.Stop()
	}

	if opts.watchConfig {
		path := config.ResolvePath(cfgFile)
		err := config.Watch(ctx, path, func(ev fsnotify.Event) {
			logging.Warnf("config %s changed (%s); restart the server to apply it", path, ev.Op)
		})
		if err != nil {
			crashlog.LogError("config_watch", err)
		}
	}

	logging.Infof("allowed root: %s", p.Root())

	if opts.httpAddr == "" {
		return server.RunStdio(ctx)
	}

	token := opts.token
	if token == "" {
		token = os.Getenv(TokenEnv)
	}
	if token == "" {
		logging.Warnf("no token configured; /mcp accepts unauthenticated requests")
	}
	logging.Infof("serving streamable HTTP on %s", opts.httpAddr)
	return mcp.ListenAndServe(ctx, opts.httpAddr, mcp.NewHandler(server, token))
}

func openAudit(ctx context.Context, path string) (*audit.Store, error) {
	if path == "" {
		var err error
		path, err = defaults.AuditDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve audit database: %w", err)
		}
	}
	store, err := audit.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	return store, nil
}
