package commands

import (
	"fmt"
	"text/tabwriter"

	"pallet-queue-service/internal/printer"
	"pallet-queue-service/internal/services"

	"github.com/spf13/cobra"
)

func (c *cli) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "scan <br-code> <route>",
		Short:   "Add a package to the pallet being built",
		Example: "  palletctl scan BR1234567890123 B-7",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.app.Station.Scanner.Scan(cmd.Context(), args[0], args[1])
			if err != nil {
				return c.fail(cmd, "Package not added", err)
			}
			counts := c.app.Station.Counter.Counts(cmd.Context())
			printer.Success(cmd.OutOrStdout(), "%s -> %s (%d on pallet)", rec.BRCode, rec.Route, counts.WorkingSet)
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <br-code>",
		Short: "Remove a package from the pallet being built",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.app.Station.Assembler.Remove(cmd.Context(), args[0])
			if err != nil {
				return c.fail(cmd, "Package not removed", err)
			}
			if !removed {
				printer.Warning(cmd.OutOrStdout(), "%s is not on the pallet", args[0])
				return nil
			}
			printer.Success(cmd.OutOrStdout(), "removed %s", args[0])
			return nil
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the pallet being built",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Station.Assembler.Clear(cmd.Context()); err != nil {
				return c.fail(cmd, "Pallet not cleared", err)
			}
			printer.Success(cmd.OutOrStdout(), "pallet cleared")
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the packages on the pallet being built",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			recs := c.app.Station.Assembler.WorkingSet(ctx)
			counts := c.app.Station.Counter.Counts(ctx)

			printer.Header(out, "Pallet: %d package(s), %d pallet(s) pending sync", counts.WorkingSet, counts.Pending)
			if len(recs) == 0 {
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tBR CODE\tROUTE\tSCANNED")
			for i, rec := range recs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, rec.BRCode, rec.Route, rec.Datetime.Local().Format("15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) finalizeCmd() *cobra.Command {
	var opts services.EnqueueOptions

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Queue the pallet being built for sync to the hub",
		Long: `Moves the pallet being built into the local send queue and starts a sync.
With --target the packages are appended to that existing hub pallet instead of a newly allocated one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.TargetPallet < 0 {
				return c.fail(cmd, "Pallet not queued", fmt.Errorf("--target must not be negative"))
			}

			entry, ok, err := c.app.Station.Queue.EnqueueWorkingSet(cmd.Context(), opts)
			if err != nil {
				return c.fail(cmd, "Pallet not queued", err)
			}
			out := cmd.OutOrStdout()
			if !ok {
				printer.Warning(out, "nothing to finalize: the pallet is empty")
				return nil
			}

			printer.Success(out, "queued %d package(s) as %s", len(entry.Packages), entry.ID)
			c.app.Station.Drainer.Wait()

			counts := c.app.Station.Counter.Counts(cmd.Context())
			if counts.Pending > 0 {
				printer.Warning(out, "%d pallet(s) pending sync", counts.Pending)
			} else {
				printer.Success(out, "all pallets synced")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.TargetPallet, "target", 0, "append to this existing hub pallet")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "submission mode sent with new pallets")
	return cmd
}
