package cli

import (
	"github.com/spf13/cobra"

	"github.com/AthenaOracle/athena-genesis/internal/app"
)

var verifyOpts app.VerifyOptions

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute a report's Merkle root and check its proofs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Verify(cmd.Context(), verifyOpts)
	},
}

func init() {
	verifyCmd.Flags().Uint64Var(&verifyOpts.Epoch, "epoch", 0, "Epoch id of the report to verify")
	verifyCmd.Flags().StringVar(&verifyOpts.ReportPath, "report", "", "Report path (defaults to paths.report_dir)")
}
