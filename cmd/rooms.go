package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hidenkeys/frontdesk/room"
	"github.com/spf13/cobra"
)

func roomsCmd() *cobra.Command {
	var from string
	var days int
	var xlsx string

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Show the room occupancy grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDateInput(from)
			if err != nil {
				return err
			}
			if days < 1 || days > 62 {
				return fmt.Errorf("--days must be between 1 and 62")
			}

			d, err := bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.close()

			grid := room.Grid(d.inventory.Rooms(), d.store.Index(), start, days)
			if xlsx != "" {
				if err := room.WriteGridSheet(xlsx, grid, start, days); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", xlsx)
				return nil
			}
			if wantJSON() {
				return writeJSON(grid)
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			fmt.Fprint(writer, "ROOM\tTYPE")
			for i := 0; i < days; i++ {
				fmt.Fprintf(writer, "\t%s", start.AddDate(0, 0, i).Format("01-02"))
			}
			fmt.Fprintln(writer)
			for _, row := range grid {
				fmt.Fprintf(writer, "%s\t%s", row.Room.Number, row.Room.Type)
				for _, cell := range row.Cells {
					fmt.Fprintf(writer, "\t%s", dash(cell))
				}
				fmt.Fprintln(writer)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().StringVar(&from, "from", "today", "First night (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().IntVar(&days, "days", 14, "Number of nights")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Write the grid to an .xlsx file instead")
	return cmd
}
