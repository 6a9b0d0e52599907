package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CheckCmd creates the check command
func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>...",
		Short: "Show the access decision for paths",
		Long: `Evaluate each path against the configured policy and print whether a
tool call on it would be allowed.

Exits non-zero when any path is denied.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			denied := 0
			for _, path := range args {
				d := p.Evaluate(path)
				if d.Allowed {
					fmt.Fprintf(out, "allow  %s -> %s\n", path, d.Path)
					continue
				}
				denied++
				fmt.Fprintf(out, "deny   %s: %s\n", path, d.Reason)
			}
			if denied > 0 {
				return fmt.Errorf("%d of %d paths denied", denied, len(args))
			}
			return nil
		},
	}
}
