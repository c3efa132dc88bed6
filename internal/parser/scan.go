package parser

import (
	"encoding/binary"
	"math/bits"
)

// findByte returns the index of the first occurrence of c in b[i:end), or
// -1 if absent. The first few bytes are checked directly because the
// target is usually adjacent; after that it strides eight bytes at a time
// using the SWAR has-zero-byte trick.
func findByte(b []byte, i, end int, c byte) int {
	for n := 0; n < 8 && i < end; n, i = n+1, i+1 {
		if b[i] == c {
			return i
		}
	}

	const (
		m1 = 0x0101010101010101
		m2 = 0x8080808080808080
	)
	rep := m1 * uint64(c)
	for i+8 <= end {
		w := binary.LittleEndian.Uint64(b[i:])
		x := w ^ rep
		if z := (x - m1) &^ x & m2; z != 0 {
			return i + bits.TrailingZeros64(z)>>3
		}
		i += 8
	}

	for ; i < end; i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}
