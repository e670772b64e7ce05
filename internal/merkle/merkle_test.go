package merkle

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLeaves(t *testing.T, n int) [][32]byte {
	t.Helper()
	leaves := make([][32]byte, n)
	for i := range leaves {
		wallet := common.BigToAddress(big.NewInt(int64(i + 1)))
		leaf, err := Leaf(wallet, big.NewInt(int64(1000*(i+1))), 42, 7)
		require.NoError(t, err)
		leaves[i] = leaf
	}
	return leaves
}

func TestLeafDistinctness(t *testing.T) {
	wallet := common.HexToAddress("0x1111111111111111111111111111111111111111")

	base, err := Leaf(wallet, big.NewInt(1000), 42, 7)
	require.NoError(t, err)

	otherAmount, err := Leaf(wallet, big.NewInt(1001), 42, 7)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherAmount)

	otherEpoch, err := Leaf(wallet, big.NewInt(1000), 43, 7)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherEpoch)

	otherPulse, err := Leaf(wallet, big.NewInt(1000), 42, 8)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherPulse)

	otherWallet, err := Leaf(common.HexToAddress("0x2222222222222222222222222222222222222222"), big.NewInt(1000), 42, 7)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherWallet)

	same, err := Leaf(wallet, big.NewInt(1000), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, base, same)
}

func TestLeafAmountBounds(t *testing.T) {
	wallet := common.HexToAddress("0x1111111111111111111111111111111111111111")

	_, err := Leaf(wallet, big.NewInt(-1), 1, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = Leaf(wallet, tooBig, 1, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	maxUint256 := new(big.Int).Sub(tooBig, big.NewInt(1))
	_, err = Leaf(wallet, maxUint256, 1, 1)
	assert.NoError(t, err)

	_, err = Leaf(wallet, big.NewInt(0), 1, 1)
	assert.NoError(t, err)
}

func TestRootEmpty(t *testing.T) {
	assert.Equal(t, [32]byte{}, Root(nil))
}

func TestRootSingleLeaf(t *testing.T) {
	leaves := testLeaves(t, 1)
	assert.Equal(t, leaves[0], Root(leaves))
}

func TestRootOddCountPadsWithSelf(t *testing.T) {
	leaves := testLeaves(t, 3)

	// A three-leaf tree pairs the orphan with itself.
	left := hashPair(leaves[0], leaves[1])
	right := hashPair(leaves[2], leaves[2])
	assert.Equal(t, hashPair(left, right), Root(leaves))
}

func TestRootSensitivity(t *testing.T) {
	leaves := testLeaves(t, 5)
	base := Root(leaves)

	modified := testLeaves(t, 5)
	leaf, err := Leaf(common.BigToAddress(big.NewInt(3)), big.NewInt(3001), 42, 7)
	require.NoError(t, err)
	modified[2] = leaf

	assert.NotEqual(t, base, Root(modified))
}

func TestProofsVerify(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 8, 13} {
		leaves := testLeaves(t, n)
		root := Root(leaves)
		proofs := Proofs(leaves)
		require.Len(t, proofs, n)

		for i, leaf := range leaves {
			assert.True(t, Verify(leaf, i, proofs[i], root), "n=%d leaf=%d", n, i)
		}
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	leaves := testLeaves(t, 6)
	root := Root(leaves)
	proofs := Proofs(leaves)

	// Wrong leaf for the proof.
	assert.False(t, Verify(leaves[1], 0, proofs[0], root))

	// Wrong index parity.
	assert.False(t, Verify(leaves[0], 1, proofs[0], root))

	// Corrupted sibling.
	tampered := append([][32]byte(nil), proofs[2]...)
	tampered[0][0] ^= 0xff
	assert.False(t, Verify(leaves[2], 2, tampered, root))

	// Foreign root.
	other := Root(testLeaves(t, 4))
	assert.False(t, Verify(leaves[2], 2, proofs[2], other))
}
