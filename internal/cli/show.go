package cli

import (
	"github.com/spf13/cobra"

	"github.com/AthenaOracle/athena-genesis/internal/app"
)

var showOpts app.ShowOptions

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent ledger rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Show(cmd.Context(), showOpts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showOpts.Limit, "limit", 50, "Maximum rows to print")
}
