package commands

import (
	"errors"

	"pallet-queue-service/internal/app"
	"pallet-queue-service/internal/config"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/printer"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds what the persistent hooks open for a single invocation.
type cli struct {
	cfgFile string
	noColor bool
	app     *app.App
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "palletctl",
		Short: "Operate a sorting station's pallet queue",
		Long: `palletctl scans packages onto the pallet being built, finalizes pallets into
the local send queue and syncs the queue to the hub.

Configuration is read from $HOME/.palletq.yaml (or --config) and PALLET_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE:  c.open,
		PersistentPostRunE: c.close,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.palletq.yaml)")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.scanCmd(),
		c.removeCmd(),
		c.clearCmd(),
		c.showCmd(),
		c.finalizeCmd(),
		c.queueCmd(),
		c.syncCmd(),
		c.settingsCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	printer.NoColor(c.noColor)
	_ = godotenv.Load()

	cfg, err := config.Load(viper.New(), c.cfgFile)
	if err != nil {
		return printer.Error(cmd.ErrOrStderr(), "Invalid configuration", err.Error())
	}

	log, err := obs.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return printer.Error(cmd.ErrOrStderr(), "Invalid configuration", err.Error())
	}
	log.SetOutput(cmd.ErrOrStderr())

	a, err := app.Build(cfg, log)
	if err != nil {
		return printer.Error(cmd.ErrOrStderr(), "Cannot open station", err.Error())
	}
	c.app = a
	return nil
}

func (c *cli) close(*cobra.Command, []string) error {
	if c.app == nil {
		return nil
	}
	// Let a drain started by this command finish before exiting.
	c.app.Station.Drainer.Wait()
	err := c.app.Close()
	c.app = nil
	return err
}

// fail reports err for a command and returns it to cobra.
func (c *cli) fail(cmd *cobra.Command, title string, err error) error {
	if err == nil {
		err = errors.New(title)
	}
	// PersistentPostRun is skipped when RunE fails.
	_ = c.close(cmd, nil)
	return printer.Error(cmd.ErrOrStderr(), title, err.Error())
}
