// Package block implements the Block: a prior-block link, a difficulty
// target, a nonce, and a transaction list, together with mining and
// per-block transaction/UTXO validation.
package block

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/wtran29/utxo-chain/foundation/blockchain/hash"
	"github.com/wtran29/utxo-chain/foundation/blockchain/merkle"
	"github.com/wtran29/utxo-chain/foundation/blockchain/txn"
)

// EventHandler is called with progress messages while mining. It mirrors
// the teacher repo's EvHandler signature so the same logging adapter
// (foundation/blockchain/chainlog) can sit behind both.
type EventHandler func(v string, args ...any)

// Block is a batch of transactions committed on top of a parent block,
// sealed by a proof-of-work nonce.
type Block struct {
	prior  *hash.ID
	target *big.Int
	nonce  uint64
	tree   *merkle.Tree[txn.Transaction]
}

// New constructs an unmined block over the given transactions, linked to
// prior (nil for the genesis block).
func New(prior *hash.ID, transactions []txn.Transaction) Block {
	return Block{
		prior: prior,
		tree:  merkle.NewTree(transactions),
	}
}

// SetTransactions replaces the block's transaction list, rebuilding its
// Merkle tree.
func (b *Block) SetTransactions(transactions []txn.Transaction) {
	b.tree = merkle.NewTree(transactions)
}

// Transactions returns the block's transactions in order.
func (b Block) Transactions() []txn.Transaction {
	return b.tree.Values()
}

// SetTarget sets the block's difficulty target.
func (b *Block) SetTarget(target *big.Int) {
	b.target = target
}

// GetTarget returns the block's difficulty target.
func (b Block) GetTarget() *big.Int {
	return b.target
}

// SetPrior sets the block's parent link.
func (b *Block) SetPrior(prior *hash.ID) {
	b.prior = prior
}

// Prior returns the block's parent link, nil for the genesis block.
func (b Block) Prior() *hash.ID {
	return b.prior
}

// Nonce returns the block's current nonce.
func (b Block) Nonce() uint64 {
	return b.nonce
}

// MerkleRoot returns the root of this block's transaction Merkle tree.
func (b Block) MerkleRoot() hash.ID {
	return b.tree.Root()
}

// ID returns this block's identifier: the SHA-256, as a big-endian
// integer, of the decimal-text concatenation of (prior, merkle root,
// target, nonce) with no delimiter — the fixed, reproducible encoding
// spec.md §4.1 requires.
func (b Block) ID() hash.ID {
	priorText := "None"
	if b.prior != nil {
		priorText = b.prior.Int().String()
	}

	target := b.target
	if target == nil {
		target = big.NewInt(0)
	}

	header := priorText +
		b.MerkleRoot().Int().String() +
		target.String() +
		strconv.FormatUint(b.nonce, 10)

	return hash.Sum([]byte(header))
}

// Mine sets the block's target, then searches nonces starting from the
// block's current nonce, incrementing by one, until ID() < target. This
// is deterministic for a fixed starting nonce (spec.md §4.4, §8 property
// 6) — unlike a miner that seeds its nonce randomly to avoid colliding
// with other workers, this core always starts from wherever its nonce
// currently sits (0 for a freshly constructed block).
func (b *Block) Mine(target *big.Int, ev EventHandler) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if target == nil || target.Sign() <= 0 {
		return fmt.Errorf("mining target must be a positive integer")
	}

	b.target = target

	ev("block: mine: started: target[%s]", target.String())
	defer ev("block: mine: completed")

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("block: mine: running: attempts[%d]", attempts)
		}

		id := b.ID()
		if id.Int().Cmp(target) < 0 {
			ev("block: mine: solved: id[%s] attempts[%d]", id.String(), attempts)
			return nil
		}

		b.nonce++
	}
}

// Validate checks proof-of-work and replays this block's transactions
// against parentUTXO, returning the resulting UTXO snapshot on success.
// It implements spec.md §4.4 exactly: PoW must hold, transaction 0 (if
// any transactions exist) must be a valid coinbase, every later
// transaction must validate against the in-progress snapshot, and each
// transaction's outputs are applied before its inputs are removed so a
// later transaction in the same block may spend an earlier one's output.
func (b Block) Validate(parentUTXO txn.UTXOSet, maxMint uint64) (txn.UTXOSet, bool) {
	if b.target == nil || b.ID().Int().Cmp(b.target) >= 0 {
		return nil, false
	}

	working := parentUTXO.Clone()
	transactions := b.tree.Values()

	for idx, tx := range transactions {
		if idx == 0 {
			if !tx.ValidateMint(maxMint) {
				return nil, false
			}
		} else {
			if !tx.ValidateSpend(working) {
				return nil, false
			}
		}

		txID := tx.ID()
		for j, out := range tx.Outputs {
			working[txn.OutputRef{TxID: txID, Index: uint32(j)}] = out
		}
		for _, in := range tx.Inputs {
			delete(working, in.Prior)
		}
	}

	return working, true
}
