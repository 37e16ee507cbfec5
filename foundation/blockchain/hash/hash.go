// Package hash provides the single hashing primitive the rest of the
// blockchain foundation builds on: SHA-256 over a byte string, with the
// digest addressable either as raw bytes or as a big-endian unsigned
// integer.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Size is the number of bytes in an ID.
const Size = sha256.Size

// ID is a 256-bit content identifier. It is always interpreted as a
// big-endian unsigned integer when compared against a difficulty target.
type ID [Size]byte

// Zero is the all-zero sentinel used to pad odd Merkle levels and to
// stand in for "no transactions" as the empty Merkle root.
var Zero ID

// Sum returns the SHA-256 digest of b as an ID.
func Sum(b []byte) ID {
	return ID(sha256.Sum256(b))
}

// FromHex parses a 64-character hex string (with or without a leading
// 0x) into an ID.
func FromHex(s string) (ID, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("decode hex id: %w", err)
	}
	if len(b) != Size {
		return ID{}, fmt.Errorf("hash id must be %d bytes, got %d", Size, len(b))
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// Int interprets the ID as a big-endian unsigned integer.
func (id ID) Int() *big.Int {
	return new(big.Int).SetBytes(id[:])
}

// Bytes returns the raw 32 bytes of the ID.
func (id ID) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, id[:])
	return out
}

// IsZero reports whether this ID is the all-zero sentinel.
func (id ID) IsZero() bool {
	return id == Zero
}

// String renders the ID the way the rest of the foundation logs hashes:
// a 0x-prefixed lowercase hex string.
func (id ID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Hashable is satisfied by anything with a content identifier, the
// contract the Merkle tree needs from its leaves.
type Hashable interface {
	ID() ID
}
