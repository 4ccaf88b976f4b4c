package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/hidenkeys/frontdesk/assignment"
	"github.com/spf13/cobra"
)

func mergeCmd() *cobra.Command {
	var sameBooker bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Fold adjacent single-room reservations into multi-room bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.close()

			policy := assignment.DefaultMergePolicy(d.inventory.Floor)
			if sameBooker {
				policy = assignment.SameBooker(policy)
			}
			report, err := d.service.Merge(policy)
			if err != nil {
				return err
			}
			if err := d.store.Flush(cmd.Context(), d.sink); err != nil {
				return err
			}

			if wantJSON() {
				return writeJSON(report)
			}
			if len(report.Merged) == 0 {
				fmt.Println("Nothing to merge.")
				return nil
			}
			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			fmt.Fprintln(writer, "INTO\tABSORBED\tROOMS")
			for _, m := range report.Merged {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", m.Into, m.Absorbed, strings.Join(m.Rooms, ", "))
			}
			return writer.Flush()
		},
	}

	cmd.Flags().BoolVar(&sameBooker, "same-booker", false, "Only merge reservations of the same booker")
	return cmd
}
