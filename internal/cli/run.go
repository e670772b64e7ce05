package cli

import (
	"github.com/spf13/cobra"

	"github.com/AthenaOracle/athena-genesis/internal/app"
)

var runOpts app.RunEpochOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one epoch: oracle consensus, scoring, rewards, commitment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().RunEpoch(cmd.Context(), runOpts)
	},
}

func init() {
	runCmd.Flags().Uint64Var(&runOpts.Epoch, "epoch", 0, "Epoch id")
	runCmd.Flags().Uint64Var(&runOpts.Pulse, "pulse", 0, "Optional sub-epoch (pulse) id")
	runCmd.Flags().StringVar(&runOpts.Pool, "pool", "", "Epoch pool amount")
	runCmd.Flags().StringVar(&runOpts.AgentsFile, "agents", "", "Agents file (defaults to paths.agents_file)")
	runCmd.Flags().StringVar(&runOpts.ReportPath, "report", "", "Report output path (defaults to paths.report_dir)")
	runCmd.Flags().BoolVar(&runOpts.EmitProofs, "emit-proofs", false, "Include per-claim inclusion proofs in the report")
	runCmd.Flags().BoolVar(&runOpts.DryRun, "dry-run", false, "Compute everything, write nothing")
	_ = runCmd.MarkFlagRequired("epoch")
	_ = runCmd.MarkFlagRequired("pool")
}
