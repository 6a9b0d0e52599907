package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/EdibleTuber/void-mcp-server/internal/config"
	"github.com/EdibleTuber/void-mcp-server/internal/logging"
	"github.com/EdibleTuber/void-mcp-server/internal/policy"
)

// Shared CLI flags (used across multiple command files)
var (
	cfgFile string
	verbose bool
	quiet   bool
)

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd() *cobra.Command {
	opts := defaultServeOptions()

	rootCmd := &cobra.Command{
		Use:   "void-mcp-server",
		Short: "Sandboxed filesystem MCP server",
		Long: `void-mcp-server exposes file operations to MCP clients, confined to a
single root directory.

Run without a subcommand to serve over stdio, the same as 'serve'.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				logging.Disable()
			} else {
				logging.Enable()
			}
			if verbose {
				logging.SetLevel(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd), opts)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $"+config.EnvPath+" or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")

	// Root-only flags
	addServeFlags(rootCmd, opts)

	// Add commands
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(CheckCmd())
	rootCmd.AddCommand(ConfigCmd())
	rootCmd.AddCommand(AuditCmd())
	rootCmd.AddCommand(InitCmd())

	return rootCmd
}

// loadPolicy reads the configuration and builds the policy from it. A
// broken config file is reported and the defaults are used instead.
func loadPolicy() (*policy.Policy, error) {
	path := config.ResolvePath(cfgFile)
	cfg, err := config.Load(path)
	if err != nil {
		logging.Warnf("%v; using defaults", err)
	}
	p, err := policy.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return p, nil
}
