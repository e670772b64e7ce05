// Package merkle builds the keccak256 commitment tree over reward claims.
// The leaf encoding and pairing rules are fixed by the on-chain claim
// verifier: wallet bytes followed by amount, epoch, and pulse as 32-byte
// big-endian integers, with duplicate-self padding on odd levels.
package merkle

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrAmountOverflow is returned when a reward amount does not fit a 32-byte
// unsigned integer. It is fatal for the epoch run.
var ErrAmountOverflow = errors.New("merkle: reward amount outside 32-byte range")

// Leaf hashes one claim. Including the pulse id keeps leaves distinct across
// sub-epochs that share an epoch id.
func Leaf(wallet common.Address, amountWei *big.Int, epochID, pulseID uint64) ([32]byte, error) {
	if amountWei.Sign() < 0 || amountWei.BitLen() > 256 {
		return [32]byte{}, ErrAmountOverflow
	}

	packed := make([]byte, 0, common.AddressLength+3*32)
	packed = append(packed, wallet.Bytes()...)

	var buf [32]byte
	amountWei.FillBytes(buf[:])
	packed = append(packed, buf[:]...)
	new(big.Int).SetUint64(epochID).FillBytes(buf[:])
	packed = append(packed, buf[:]...)
	new(big.Int).SetUint64(pulseID).FillBytes(buf[:])
	packed = append(packed, buf[:]...)

	var leaf [32]byte
	copy(leaf[:], crypto.Keccak256(packed))
	return leaf, nil
}

// Root folds the ordered leaves bottom-up. When a level has an odd count the
// last node pairs with itself. The empty tree has the zero root.
func Root(leaves [][32]byte) [32]byte {
	if len(leaves) == 0 {
		return [32]byte{}
	}

	level := append([][32]byte(nil), leaves...)
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0]
}

// Proofs returns, for each leaf, the ordered sibling hashes along its path to
// the root.
func Proofs(leaves [][32]byte) [][][32]byte {
	if len(leaves) == 0 {
		return nil
	}

	levels := [][][32]byte{append([][32]byte(nil), leaves...)}
	for len(levels[len(levels)-1]) > 1 {
		levels = append(levels, nextLevel(levels[len(levels)-1]))
	}

	proofs := make([][][32]byte, len(leaves))
	for idx := range leaves {
		var path [][32]byte
		j := idx
		for depth := 0; depth < len(levels)-1; depth++ {
			level := levels[depth]
			var sibling [32]byte
			if j%2 == 1 {
				sibling = level[j-1]
			} else if j+1 < len(level) {
				sibling = level[j+1]
			} else {
				sibling = level[j]
			}
			path = append(path, sibling)
			j /= 2
		}
		proofs[idx] = path
	}
	return proofs
}

// Verify re-hashes a leaf against its proof path, using the leaf's position
// parity at each level to order the operands, and compares with the root.
func Verify(leaf [32]byte, index int, proof [][32]byte, root [32]byte) bool {
	node := leaf
	j := index
	for _, sibling := range proof {
		if j%2 == 1 {
			node = hashPair(sibling, node)
		} else {
			node = hashPair(node, sibling)
		}
		j /= 2
	}
	return node == root
}

func nextLevel(level [][32]byte) [][32]byte {
	next := make([][32]byte, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		left := level[i]
		right := left
		if i+1 < len(level) {
			right = level[i+1]
		}
		next = append(next, hashPair(left, right))
	}
	return next
}

func hashPair(left, right [32]byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(left[:], right[:]))
	return out
}
