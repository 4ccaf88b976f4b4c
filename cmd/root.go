package cmd

import (
	"os"

	"github.com/hidenkeys/frontdesk/config"
	"github.com/spf13/cobra"
)

var (
	outputJSON bool
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "frontdesk",
	Short: "Room occupancy and reservation ledger for the front desk",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(roomsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
}
