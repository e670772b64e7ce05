package app

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AthenaOracle/athena-genesis/internal/merkle"
	"github.com/AthenaOracle/athena-genesis/internal/report"
)

// Verify recomputes the Merkle commitment from a stored epoch report and
// checks it against the published root, plus every inclusion proof the
// report carries. A mismatch means the report was altered after emission.
func (a *App) Verify(_ context.Context, opts VerifyOptions) error {
	reportPath := opts.ReportPath
	if reportPath == "" {
		reportPath = report.Path(a.Config.Paths.ReportDir, opts.Epoch)
	}

	doc, err := report.Read(reportPath)
	if err != nil {
		return err
	}

	leaves := make([][32]byte, len(doc.Claims))
	for i, claim := range doc.Claims {
		if !common.IsHexAddress(claim.Wallet) {
			return fmt.Errorf("claim %d: invalid wallet %s", i, claim.Wallet)
		}
		amountWei, ok := new(big.Int).SetString(claim.AmountWei, 10)
		if !ok {
			return fmt.Errorf("claim %d: invalid amountWei %q", i, claim.AmountWei)
		}
		leaf, err := merkle.Leaf(common.HexToAddress(claim.Wallet), amountWei, doc.Epoch, doc.Pulse)
		if err != nil {
			return fmt.Errorf("claim %d: %w", i, err)
		}
		leaves[i] = leaf
	}

	root := merkle.Root(leaves)
	rootHex := common.Hash(root).Hex()
	if rootHex != doc.MerkleRoot {
		return fmt.Errorf("root mismatch: recomputed %s, report says %s", rootHex, doc.MerkleRoot)
	}

	verified := 0
	for key, path := range doc.Proofs {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(leaves) {
			return fmt.Errorf("proof key %q does not address a claim", key)
		}
		siblings := make([][32]byte, len(path))
		for j, hexSibling := range path {
			siblings[j] = common.HexToHash(hexSibling)
		}
		if !merkle.Verify(leaves[idx], idx, siblings, root) {
			return fmt.Errorf("proof for claim %d does not verify", idx)
		}
		verified++
	}

	fmt.Fprintf(os.Stdout, "Report %s verified.\n", reportPath)
	fmt.Fprintf(os.Stdout, "Merkle root: %s (%d claims", rootHex, len(leaves))
	if verified > 0 {
		fmt.Fprintf(os.Stdout, ", %d proofs", verified)
	}
	fmt.Fprintln(os.Stdout, ")")
	return nil
}
