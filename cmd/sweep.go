package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire lapsed options and fire due reminders once",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.close()

			res, err := d.runner(nil).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			if wantJSON() {
				return writeJSON(res)
			}
			if res.Skipped {
				fmt.Println("Another instance is sweeping.")
				return nil
			}
			if len(res.Expired) == 0 && len(res.Notifications) == 0 {
				fmt.Println("Nothing due.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			fmt.Fprintln(writer, "KIND\tBOOKING\tDETAIL")
			for _, ref := range res.Expired {
				fmt.Fprintf(writer, "expired\t%s\toption released\n", ref)
			}
			for _, n := range res.Notifications {
				fmt.Fprintf(writer, "reminder\t%s\t%s (due %s)\n", n.BookingRef, n.Message, n.DueDate.Format(time.DateTime))
			}
			return writer.Flush()
		},
	}
}
