// Package merkle computes a deterministic root hash over an ordered list
// of hashable leaves, padding odd levels with the zero sentinel.
package merkle

import (
	"github.com/wtran29/utxo-chain/foundation/blockchain/hash"
)

// Tree holds the leaves used to build a Merkle root and caches the
// computed root. The root is computed once, during construction, and
// reused for the lifetime of the tree, mirroring the teacher's
// merkle.NewTree(txs) / tree.RootHex() call pattern.
type Tree[T hash.Hashable] struct {
	leaves []T
	root   hash.ID
}

// NewTree builds a Merkle tree over leaves in the given order. The order
// is significant: the root depends on leaf position.
func NewTree[T hash.Hashable](leaves []T) *Tree[T] {
	cp := make([]T, len(leaves))
	copy(cp, leaves)

	return &Tree[T]{
		leaves: cp,
		root:   computeRoot(cp),
	}
}

// Values returns the leaves in tree order.
func (t *Tree[T]) Values() []T {
	out := make([]T, len(t.leaves))
	copy(out, t.leaves)
	return out
}

// Root returns the Merkle root as a hash.ID. Zero (all-zero bytes) for
// an empty leaf list.
func (t *Tree[T]) Root() hash.ID {
	return t.root
}

// RootHex returns the Merkle root as a 0x-prefixed hex string.
func (t *Tree[T]) RootHex() string {
	return t.root.String()
}

// computeRoot implements spec.md §4.2: start from the leaf hashes, and
// while more than one node remains, pair (i, i+1), padding a missing
// right sibling with the zero sentinel, combining by SHA-256 over the
// 32-byte big-endian concatenation of each side.
func computeRoot[T hash.Hashable](leaves []T) hash.ID {
	if len(leaves) == 0 {
		return hash.Zero
	}

	level := make([]hash.ID, len(leaves))
	for i, leaf := range leaves {
		level[i] = leaf.ID()
	}

	for len(level) > 1 {
		next := make([]hash.ID, 0, (len(level)+1)/2)

		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := hash.Zero
			if i+1 < len(level) {
				right = level[i+1]
			}

			buf := make([]byte, 0, hash.Size*2)
			buf = append(buf, left.Bytes()...)
			buf = append(buf, right.Bytes()...)
			next = append(next, hash.Sum(buf))
		}

		level = next
	}

	return level[0]
}
