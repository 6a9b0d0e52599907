package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EdibleTuber/void-mcp-server/internal/config"
	"github.com/EdibleTuber/void-mcp-server/internal/defaults"
)

// InitCmd creates the init command
func InitCmd() *cobra.Command {
	var force, list bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Long: `Write the sample configuration to the config path (--config, $` + config.EnvPath + `,
or ./` + config.DefaultPath + `). A path ending in .yaml or .yml gets the YAML sample.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names, err := defaults.ListDefaults()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			path := config.ResolvePath(cfgFile)
			if err := defaults.WriteSample(path, force); err != nil {
				if errors.Is(err, defaults.ErrExists) {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&list, "list", false, "list the embedded samples instead of writing one")

	return cmd
}
