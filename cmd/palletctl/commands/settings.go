package commands

import (
	"pallet-queue-service/internal/printer"

	"github.com/spf13/cobra"
)

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the station settings",
	}
	cmd.AddCommand(c.settingsGetCmd(), c.settingsSetCmd())
	return cmd
}

func (c *cli) settingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the effective station settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := c.app.Station.Settings(cmd.Context())
			out := cmd.OutOrStdout()
			printer.Info(out, "max packages: %d", st.MaxPackages)
			printer.Info(out, "letter range: %s", st.LetterRange)
			printer.Info(out, "number range: %s", st.NumberRange)
			return nil
		},
	}
}

func (c *cli) settingsSetCmd() *cobra.Command {
	var (
		maxPackages int
		letters     string
		numbers     string
	)

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Persist station settings; omitted flags keep their value",
		Example: "  palletctl settings set --max-packages 20 --letters A-K",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st := c.app.Station.Settings(ctx)
			if cmd.Flags().Changed("max-packages") {
				st.MaxPackages = maxPackages
			}
			if cmd.Flags().Changed("letters") {
				st.LetterRange = letters
			}
			if cmd.Flags().Changed("numbers") {
				st.NumberRange = numbers
			}

			if err := c.app.Station.SaveSettings(ctx, st); err != nil {
				return c.fail(cmd, "Settings not saved", err)
			}
			printer.Success(cmd.OutOrStdout(), "settings saved: %d packages, routes %s / %s",
				st.MaxPackages, st.LetterRange, st.NumberRange)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPackages, "max-packages", 0, "packages allowed on one pallet")
	cmd.Flags().StringVar(&letters, "letters", "", `route letter range, e.g. "A-G"`)
	cmd.Flags().StringVar(&numbers, "numbers", "", `route number range, e.g. "1-40"`)
	return cmd
}
