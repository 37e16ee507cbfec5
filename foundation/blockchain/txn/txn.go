// Package txn implements transactions, their inputs and outputs, and the
// UTXO set they're validated against. A transaction with no inputs is a
// coinbase (mint); any other transaction must spend existing, unspent
// outputs whose predicates accept the supplied satisfiers.
package txn

import (
	"encoding/binary"
	"math/big"

	"github.com/wtran29/utxo-chain/foundation/blockchain/hash"
)

// PredicateFunc is the caller-supplied spend-authorization callable for
// an Output. It receives the satisfier list verbatim and must return
// true to grant spending. A nil PredicateFunc is permissive.
//
// PredicateFunc is deliberately excluded from an Output's canonical
// encoding (see Output.Commitment) — Go function values carry no stable,
// serializable identity, so transaction ids cannot depend on them.
type PredicateFunc func(satisfier []any) bool

// AllowAll is a PredicateFunc that grants spending unconditionally.
func AllowAll(_ []any) bool { return true }

// Output is a spendable amount guarded by a predicate.
type Output struct {
	// Commitment is a caller-chosen, deterministic tag standing in for
	// the Predicate's logic in the transaction's canonical encoding
	// (spec.md §9 strategy (b)). Outputs that should be
	// indistinguishable on-chain (same spend policy, same amount)
	// should use the same Commitment.
	Commitment []byte
	Predicate  PredicateFunc
	Amount     uint64
}

// canSpend applies the output's predicate to a satisfier, treating a
// panic or a non-true result as denial. Predicates are untrusted code;
// no panic may cross this boundary.
func (o Output) canSpend(satisfier []any) (ok bool) {
	if o.Predicate == nil {
		return true
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return o.Predicate(satisfier) == true
}

func (o Output) encode() []byte {
	var amount [8]byte
	binary.BigEndian.PutUint64(amount[:], o.Amount)

	var commitLen [8]byte
	binary.BigEndian.PutUint64(commitLen[:], uint64(len(o.Commitment)))

	out := make([]byte, 0, len(commitLen)+len(o.Commitment)+len(amount))
	out = append(out, commitLen[:]...)
	out = append(out, o.Commitment...)
	out = append(out, amount[:]...)
	return out
}

// OutputRef identifies one output of a prior transaction: the
// transaction id plus a 0-based index into its outputs.
type OutputRef struct {
	TxID  hash.ID
	Index uint32
}

// Input spends a prior output, proving the right to do so by supplying a
// satisfier to that output's predicate.
type Input struct {
	Prior     OutputRef
	Satisfier []any
}

func (i Input) encode() []byte {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], i.Prior.Index)

	out := make([]byte, 0, hash.Size+len(idx))
	out = append(out, i.Prior.TxID.Bytes()...)
	out = append(out, idx[:]...)
	out = append(out, encodeValues(i.Satisfier)...)
	return out
}

// UTXOSet maps an output reference to the output it still holds unspent.
type UTXOSet map[OutputRef]Output

// Clone returns a shallow copy of the set, so that mutating the result
// never affects the snapshot it was cloned from.
func (u UTXOSet) Clone() UTXOSet {
	cp := make(UTXOSet, len(u))
	for k, v := range u {
		cp[k] = v
	}
	return cp
}

// Transaction is an ordered list of inputs, an ordered list of outputs,
// and opaque payload bytes.
type Transaction struct {
	Inputs  []Input
	Outputs []Output
	Data    []byte
}

// ID returns this transaction's identifier: the SHA-256 of a canonical
// encoding of (inputs, outputs, data), interpreted as a big-endian
// integer via hash.ID.
func (t Transaction) ID() hash.ID {
	var buf []byte

	var nIn [4]byte
	binary.BigEndian.PutUint32(nIn[:], uint32(len(t.Inputs)))
	buf = append(buf, nIn[:]...)
	for _, in := range t.Inputs {
		enc := in.encode()
		buf = appendLengthPrefixed(buf, enc)
	}

	var nOut [4]byte
	binary.BigEndian.PutUint32(nOut[:], uint32(len(t.Outputs)))
	buf = append(buf, nOut[:]...)
	for _, out := range t.Outputs {
		enc := out.encode()
		buf = appendLengthPrefixed(buf, enc)
	}

	buf = appendLengthPrefixed(buf, t.Data)

	return hash.Sum(buf)
}

func appendLengthPrefixed(dst, field []byte) []byte {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(field)))
	dst = append(dst, length[:]...)
	return append(dst, field...)
}

// IsCoinbase reports whether this transaction has no inputs, the
// definition of a mint transaction.
func (t Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 0
}

// ValidateMint validates this transaction as a coinbase: it must have no
// inputs and its total output amount must not exceed maxMint. The sum is
// accumulated in big.Int, not uint64, so a coinbase cannot launder an
// over-cap mint through uint64 wraparound.
func (t Transaction) ValidateMint(maxMint uint64) bool {
	if len(t.Inputs) != 0 {
		return false
	}

	total := new(big.Int)
	for _, o := range t.Outputs {
		total.Add(total, new(big.Int).SetUint64(o.Amount))
	}

	return total.Cmp(new(big.Int).SetUint64(maxMint)) <= 0
}

// ValidateSpend validates this transaction as a spend against the given
// UTXO set: every input must reference a live entry whose predicate
// accepts the supplied satisfier, and the total referenced input amount
// must be at least the total output amount. Both totals are accumulated
// in big.Int so the conservation check can't be defeated by summing
// enough outputs to wrap a uint64 back under the true input total.
func (t Transaction) ValidateSpend(utxo UTXOSet) bool {
	totalIn := new(big.Int)

	for _, in := range t.Inputs {
		spent, ok := utxo[in.Prior]
		if !ok {
			return false
		}
		if !spent.canSpend(in.Satisfier) {
			return false
		}
		totalIn.Add(totalIn, new(big.Int).SetUint64(spent.Amount))
	}

	totalOut := new(big.Int)
	for _, o := range t.Outputs {
		totalOut.Add(totalOut, new(big.Int).SetUint64(o.Amount))
	}

	return totalIn.Cmp(totalOut) >= 0
}
