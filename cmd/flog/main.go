package main

import (
	"fmt"
	"os"

	"github.com/dfryer1193/flog/internal/config"
	"github.com/dfryer1193/flog/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// cli carries state shared by the subcommands.
type cli struct {
	configPath string
	cfg        *config.Config
	closeLog   func() error
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "flog",
		Short: "Blog backend that serves Markdown posts synced into SQLite",
		Long: `flog keeps a SQLite database of posts in step with a directory of Markdown
files, locally or in a GitHub repository, and serves them with comments over a JSON API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			closer, err := logging.Setup(cfg.Log)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.closeLog = closer.Close
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closeLog != nil {
				return c.closeLog()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(c),
		newSyncCmd(c),
		newMigrateCmd(c),
	)
	return root
}
