// Package chain maintains the tree of accepted blocks, their per-branch
// UTXO snapshots, and the most-cumulative-work fork-choice rule.
package chain

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wtran29/utxo-chain/foundation/blockchain/block"
	"github.com/wtran29/utxo-chain/foundation/blockchain/hash"
	"github.com/wtran29/utxo-chain/foundation/blockchain/txn"
)

// EventHandler is called with progress messages during genesis mining.
// It is passed straight through to block.Mine.
type EventHandler = block.EventHandler

// Config is the construction-time configuration for a Blockchain: the
// genesis difficulty target and the per-block mint cap. Unlike the
// per-call validity questions spec.md leaves boolean-valued, a
// misconfigured genesis target is a programmer error, so it is the one
// place this package returns a Go error.
type Config struct {
	GenesisTarget *big.Int `validate:"required"`
	MaxMint       uint64   `validate:"gte=0"`
	EvHandler     EventHandler
}

var validate = validator.New()

func init() {
	validate.RegisterStructValidation(validateConfigStruct, Config{})
}

// validateConfigStruct is a struct-level rule, not a field tag, because
// "strictly positive" over a *big.Int can't be spelled as a validator
// tag the way "gte=0" can for a uint64. required reports a nil
// GenesisTarget; this rule still runs in that case, so it checks for nil
// before calling Sign().
func validateConfigStruct(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.GenesisTarget != nil && cfg.GenesisTarget.Sign() <= 0 {
		sl.ReportError(cfg.GenesisTarget, "GenesisTarget", "GenesisTarget", "positive", "")
	}
}

func (c Config) validateConfig() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid chain config: %w", err)
	}

	return nil
}

// node is the chain's bookkeeping record for one accepted block: its
// height and its post-validation UTXO snapshot, held by value per block
// per spec.md §5 ("the engine deliberately does not share [snapshots]
// structurally").
type node struct {
	block  block.Block
	height uint64
	utxo   txn.UTXOSet
}

// Blockchain is the directed tree of accepted blocks keyed by block id,
// indexed by height, each carrying its own post-validation UTXO
// snapshot.
type Blockchain struct {
	mu sync.RWMutex

	genesisTarget *big.Int
	maxMint       uint64
	evHandler     EventHandler

	byID     map[hash.ID]*node
	byHeight map[uint64][]*node

	// order records block ids in first-acceptance order (genesis
	// first), giving Tip a deterministic tie-break: spec.md recommends
	// "first-accepted" when two branches tie on cumulative work, which
	// is otherwise unrecoverable once blocks live in a Go map.
	order []hash.ID
}

// New constructs a Blockchain and mines its genesis block at
// cfg.GenesisTarget.
func New(cfg Config) (*Blockchain, error) {
	if err := cfg.validateConfig(); err != nil {
		return nil, err
	}

	ev := cfg.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	genesis := block.New(nil, nil)
	if err := genesis.Mine(cfg.GenesisTarget, ev); err != nil {
		return nil, fmt.Errorf("mine genesis block: %w", err)
	}

	c := &Blockchain{
		genesisTarget: cfg.GenesisTarget,
		maxMint:       cfg.MaxMint,
		evHandler:     ev,
		byID:          make(map[hash.ID]*node),
		byHeight:      make(map[uint64][]*node),
	}

	id := genesis.ID()
	n := &node{block: genesis, height: 0, utxo: txn.UTXOSet{}}
	c.byID[id] = n
	c.byHeight[0] = []*node{n}
	c.order = append(c.order, id)

	return c, nil
}

// Extend validates block b against its declared parent's UTXO snapshot
// and, if it is valid, attaches it to the chain. It returns false
// (leaving the chain unchanged) if the parent is unknown or the block
// fails validation. Re-submitting a block that already has the same id
// as one already accepted is idempotent: it returns true without
// mutating state.
func (c *Blockchain) Extend(b block.Block) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := b.ID()
	if _, ok := c.byID[id]; ok {
		c.evHandler("chain: extend: duplicate: block[%s] already accepted", id)
		return true
	}

	prior := b.Prior()
	if prior == nil {
		c.evHandler("chain: extend: rejected: block[%s] has no parent", id)
		return false
	}

	parent, ok := c.byID[*prior]
	if !ok {
		c.evHandler("chain: extend: rejected: block[%s] parent[%s] unknown", id, *prior)
		return false
	}

	parentUTXO := parent.utxo.Clone()

	newUTXO, ok := b.Validate(parentUTXO, c.maxMint)
	if !ok {
		c.evHandler("chain: extend: rejected: block[%s] failed validation", id)
		return false
	}

	n := &node{block: b, height: parent.height + 1, utxo: newUTXO}
	c.byID[id] = n
	c.byHeight[n.height] = append(c.byHeight[n.height], n)
	c.order = append(c.order, id)

	c.evHandler("chain: extend: accepted: block[%s] height[%d]", id, n.height)

	return true
}

// WorkOf returns the work a block at the given target contributes:
// genesisTarget / target. Lower targets contribute more work.
func (c *Blockchain) WorkOf(target *big.Int) *big.Rat {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return new(big.Rat).SetFrac(c.genesisTarget, target)
}

// CumulativeWork sums WorkOf along parent links from the given block to
// genesis. Its second return is false if id is not in the chain.
func (c *Blockchain) CumulativeWork(id hash.ID) (*big.Rat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cumulativeWorkLocked(id)
}

func (c *Blockchain) cumulativeWorkLocked(id hash.ID) (*big.Rat, bool) {
	n, ok := c.byID[id]
	if !ok {
		return nil, false
	}

	total := new(big.Rat)
	for {
		total.Add(total, new(big.Rat).SetFrac(c.genesisTarget, n.block.GetTarget()))

		prior := n.block.Prior()
		if prior == nil {
			break
		}

		next, ok := c.byID[*prior]
		if !ok {
			break
		}
		n = next
	}

	return total, true
}

// BlocksAtHeight returns every block accepted at the given height,
// across all forks, in acceptance order. Empty for an unknown height.
func (c *Blockchain) BlocksAtHeight(h uint64) []block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	nodes := c.byHeight[h]
	out := make([]block.Block, len(nodes))
	for i, n := range nodes {
		out[i] = n.block
	}
	return out
}

// Height returns the block's recorded height and whether it is known.
func (c *Blockchain) Height(id hash.ID) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.byID[id]
	if !ok {
		return 0, false
	}
	return n.height, true
}

// UTXOSnapshot returns the post-validation UTXO snapshot attached to the
// given block, and whether that block is known.
func (c *Blockchain) UTXOSnapshot(id hash.ID) (txn.UTXOSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return n.utxo.Clone(), true
}

// Tip returns the block with the greatest cumulative work across the
// entire tree of accepted blocks. Ties are broken by first acceptance.
func (c *Blockchain) Tip() block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var best *node
	var bestWork *big.Rat

	for _, id := range c.order {
		n := c.byID[id]

		work, ok := c.cumulativeWorkLocked(id)
		if !ok {
			continue
		}

		if bestWork == nil || work.Cmp(bestWork) > 0 {
			bestWork = work
			best = n
		}
	}

	return best.block
}
