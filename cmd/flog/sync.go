package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync posts once and exit",
		Long: `Reconcile the database with the configured posts source once and print
the number of posts created, updated and deleted. A failed run still prints
the counts of the changes it made before stopping.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.engine.Sync(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "created: %d, updated: %d, deleted: %d\n", result.Created, result.Updated, result.Deleted)
			return err
		},
	}
}
