package cli

import (
	"github.com/spf13/cobra"

	"github.com/AthenaOracle/athena-genesis/internal/app"
)

var watchOpts app.WatchOptions

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run epochs sequentially on the configured interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), watchOpts)
	},
}

func init() {
	watchCmd.Flags().Uint64Var(&watchOpts.StartEpoch, "start-epoch", 0, "First epoch id of the loop")
	watchCmd.Flags().StringVar(&watchOpts.Pool, "pool", "", "Pool amount per epoch")
	watchCmd.Flags().BoolVar(&watchOpts.EmitProofs, "emit-proofs", false, "Include inclusion proofs in every report")
	_ = watchCmd.MarkFlagRequired("pool")
}
