package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EdibleTuber/void-mcp-server/internal/mcp"
)

// ConfigCmd creates the config command
func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective security configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), mcp.ConfigSummary(p))
			return nil
		},
	}
}
