package txn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtran29/utxo-chain/foundation/blockchain/hash"
	"github.com/wtran29/utxo-chain/foundation/blockchain/txn"
)

// S4: coinbase with a single output of amount 100.
func TestValidateMintCap(t *testing.T) {
	tx := txn.Transaction{
		Outputs: []txn.Output{{Amount: 100, Predicate: txn.AllowAll}},
	}

	assert.False(t, tx.ValidateMint(50))
	assert.True(t, tx.ValidateMint(100))
	assert.True(t, tx.ValidateMint(101))
}

func TestValidateMintRejectsInputs(t *testing.T) {
	tx := txn.Transaction{
		Inputs:  []txn.Input{{Prior: txn.OutputRef{TxID: hash.Sum([]byte("x"))}}},
		Outputs: []txn.Output{{Amount: 1}},
	}

	assert.False(t, tx.ValidateMint(1_000_000))
}

// S6: predicate xs -> xs[0]+xs[1]==100.
func sumEquals100(xs []any) bool {
	a, aok := xs[0].(int)
	b, bok := xs[1].(int)
	if !aok || !bok {
		panic("satisfier must be two ints")
	}
	return a+b == 100
}

func TestPredicateSpendAndDenial(t *testing.T) {
	prior := txn.Transaction{
		Outputs: []txn.Output{{Amount: 100, Predicate: sumEquals100, Commitment: []byte("sum-equals:100")}},
	}
	ref := txn.OutputRef{TxID: prior.ID(), Index: 0}
	utxo := txn.UTXOSet{ref: prior.Outputs[0]}

	spendOK := txn.Transaction{
		Inputs:  []txn.Input{{Prior: ref, Satisfier: []any{40, 60}}},
		Outputs: []txn.Output{{Amount: 100}},
	}
	assert.True(t, spendOK.ValidateSpend(utxo))

	// Predicate panics on non-int satisfier: must be reported as denial,
	// never propagate.
	spendPanics := txn.Transaction{
		Inputs:  []txn.Input{{Prior: ref, Satisfier: []any{"a", "b"}}},
		Outputs: []txn.Output{{Amount: 100}},
	}
	assert.False(t, spendPanics.ValidateSpend(utxo))
}

func TestValidateSpendMissingReference(t *testing.T) {
	tx := txn.Transaction{
		Inputs: []txn.Input{{Prior: txn.OutputRef{TxID: hash.Sum([]byte("nope"))}}},
	}
	assert.False(t, tx.ValidateSpend(txn.UTXOSet{}))
}

func TestValidateSpendConservation(t *testing.T) {
	prior := txn.Transaction{Outputs: []txn.Output{{Amount: 10, Predicate: txn.AllowAll}}}
	ref := txn.OutputRef{TxID: prior.ID(), Index: 0}
	utxo := txn.UTXOSet{ref: prior.Outputs[0]}

	overspend := txn.Transaction{
		Inputs:  []txn.Input{{Prior: ref}},
		Outputs: []txn.Output{{Amount: 11}},
	}
	assert.False(t, overspend.ValidateSpend(utxo))

	exact := txn.Transaction{
		Inputs:  []txn.Input{{Prior: ref}},
		Outputs: []txn.Output{{Amount: 10}},
	}
	assert.True(t, exact.ValidateSpend(utxo))
}

func TestMissingPredicateIsPermissive(t *testing.T) {
	prior := txn.Transaction{Outputs: []txn.Output{{Amount: 5}}}
	ref := txn.OutputRef{TxID: prior.ID(), Index: 0}
	utxo := txn.UTXOSet{ref: prior.Outputs[0]}

	spend := txn.Transaction{Inputs: []txn.Input{{Prior: ref}}}
	assert.True(t, spend.ValidateSpend(utxo))
}

func TestIDDeterministicAndSensitiveToFields(t *testing.T) {
	a := txn.Transaction{Outputs: []txn.Output{{Amount: 1, Commitment: []byte("c")}}}
	b := txn.Transaction{Outputs: []txn.Output{{Amount: 1, Commitment: []byte("c")}}}
	assert.Equal(t, a.ID(), b.ID())

	c := txn.Transaction{Outputs: []txn.Output{{Amount: 2, Commitment: []byte("c")}}}
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestIDIgnoresPredicateIdentity(t *testing.T) {
	// Two distinct closures behind the same commitment hash identically:
	// predicates are opaque and excluded from the encoding (spec.md §9).
	a := txn.Transaction{Outputs: []txn.Output{{Amount: 1, Commitment: []byte("same"), Predicate: txn.AllowAll}}}
	b := txn.Transaction{Outputs: []txn.Output{{Amount: 1, Commitment: []byte("same"), Predicate: func(_ []any) bool { return false }}}}
	assert.Equal(t, a.ID(), b.ID())
}

func TestCloneIsIndependent(t *testing.T) {
	ref := txn.OutputRef{TxID: hash.Sum([]byte("a"))}
	orig := txn.UTXOSet{ref: {Amount: 1}}
	clone := orig.Clone()

	delete(clone, ref)

	require.Len(t, orig, 1)
	require.Len(t, clone, 0)
}

func TestIsCoinbase(t *testing.T) {
	coinbase := txn.Transaction{Outputs: []txn.Output{{Amount: 1}}}
	assert.True(t, coinbase.IsCoinbase())

	spending := txn.Transaction{Inputs: []txn.Input{{}}}
	assert.False(t, spending.IsCoinbase())
}
