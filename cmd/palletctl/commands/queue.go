package commands

import (
	"fmt"
	"text/tabwriter"

	"pallet-queue-service/internal/printer"
	"pallet-queue-service/internal/services"

	"github.com/spf13/cobra"
)

func (c *cli) queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List pallets waiting for hub confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.app.Station.Queue.Pending(cmd.Context())
			if err != nil {
				return c.fail(cmd, "Cannot read send queue", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				printer.Success(out, "send queue is empty")
				return nil
			}

			printer.Header(out, "%d pallet(s) pending sync", len(entries))
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tPACKAGES\tTARGET\tCREATED")
			for i, e := range entries {
				target := "new"
				if e.Appends() {
					target = fmt.Sprintf("%d", e.TargetPallet)
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", i+1, e.ID, len(e.Packages), target, e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued pallets to the hub now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := c.app.Station.Drainer.Drain(cmd.Context())
			out := cmd.OutOrStdout()

			if report.Submitted > 0 {
				printer.Success(out, "synced %d pallet(s)", report.Submitted)
			}
			if report.Discarded > 0 {
				printer.Warning(out, "discarded %d malformed queue entr(ies)", report.Discarded)
			}

			switch report.Stop {
			case services.StopEmpty:
				printer.Success(out, "send queue is empty")
			case services.StopExhausted:
				printer.Warning(out, "hub has no pallet available; try again later")
			case services.StopFailed:
				return c.fail(cmd, "Sync stopped", fmt.Errorf("%s", report.Message))
			default:
				printer.Warning(out, "sync %s", report.Stop)
			}
			return nil
		},
	}
}
