package txn

import (
	"encoding/binary"
	"fmt"
)

// encodeValue produces a deterministic, type-tagged byte encoding for a
// single satisfier argument. Satisfiers are data (the Python original
// passes them straight through dill as ints/strings), unlike output
// predicates, which are opaque executable code — see Output.Commitment.
//
// The tag byte keeps encodings of different kinds of value from colliding
// (e.g. the int 49 and the string "1" must not hash the same). int and
// int64 share a tag, so equal values of those two types encode the same.
func encodeValue(v any) []byte {
	switch x := v.(type) {
	case nil:
		return []byte{tagNil}
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		return []byte{tagBool, b}
	case int:
		return appendInt64(tagInt, int64(x))
	case int64:
		return appendInt64(tagInt, x)
	case uint64:
		return appendInt64(tagUint, int64(x))
	case string:
		return append([]byte{tagString}, []byte(x)...)
	case []byte:
		return append([]byte{tagBytes}, x...)
	default:
		// Boundary case: satisfiers outside these primitive kinds still
		// get a deterministic, if less compact, encoding.
		return append([]byte{tagFallback}, []byte(fmt.Sprintf("%v", x))...)
	}
}

const (
	tagNil byte = iota
	tagBool
	tagInt
	tagUint
	tagString
	tagBytes
	tagFallback
)

func appendInt64(tag byte, v int64) []byte {
	out := make([]byte, 9)
	out[0] = tag
	binary.BigEndian.PutUint64(out[1:], uint64(v))
	return out
}

// encodeValues canonically encodes an ordered satisfier list as a
// sequence of (length-prefix, tagged-payload) pairs so that variable
// width entries cannot be shifted into one another.
func encodeValues(vs []any) []byte {
	var out []byte
	for _, v := range vs {
		enc := encodeValue(v)

		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(enc)))

		out = append(out, length[:]...)
		out = append(out, enc...)
	}
	return out
}
