package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// AuditCmd creates the audit command
func AuditCmd() *cobra.Command {
	var (
		limit  int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent file operations",
		Long: `List the most recent operations recorded by 'serve', newest first.

Examples:
  void-mcp-server audit
  void-mcp-server audit --limit 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			store, err := openAudit(ctx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No operations recorded.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tOPERATION\tOUTCOME\tPATH\tDURATION")
			for _, e := range entries {
				path := e.Path
				if e.Target != "" {
					path += " -> " + e.Target
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.Time.Local().Format(time.DateTime), e.Operation, e.Outcome, path, e.Duration)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().StringVar(&dbPath, "audit-db", "", "audit database path (default: data directory)")

	return cmd
}
