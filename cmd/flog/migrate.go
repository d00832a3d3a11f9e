package main

import (
	"fmt"

	"github.com/dfryer1193/flog/shared/db/sqlite"
	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			database := sqlite.NewSQLiteDB(sqlite.SQLiteConfig{Path: c.cfg.Database.Path})
			if err := database.Connect(); err != nil {
				return err
			}
			defer database.Close()

			version, dirty, err := database.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (dirty: %v)\n", database.Path(), version, dirty)
			return nil
		},
	}
}
