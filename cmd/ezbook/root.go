package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/sheetcache/config"
)

// cli carries the state shared by the subcommands of one invocation.
type cli struct {
	open       clientOpener
	configPath string
	logLevel   string
	app        *app
}

func newCLI(open clientOpener) *cli { return &cli{open: open} }

// rootCmd builds the command tree. The app is built before any subcommand
// runs; teardown must be called after Execute whether or not it failed.
func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ezbook",
		Short:         "Read and update the class book-ordering spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./ezbook.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides logging.level)")

	root.AddCommand(
		c.booksCmd(),
		c.studentsCmd(),
		c.ordersCmd(),
		c.registerCmd(),
		c.unregisterCmd(),
		c.statusCmd(),
		c.invalidateCmd(),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if c.logLevel != "" {
		level = c.logLevel
	}
	zl, lvl, err := newLogger(level)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, zl, lvl, c.open)
	if err != nil {
		_ = zl.Sync()
		return err
	}
	c.app = a
	return nil
}

func (c *cli) teardown(ctx context.Context) error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close(ctx)
	_ = c.app.zl.Sync()
	c.app = nil
	return err
}
