package huffman

import (
	"strings"
)

// maxBits is the width of a BitCode and of the packing accumulator.
const maxBits = 64

// A BitCode is a sequence of up to 64 bits held in the low Length bits of Value.
// The first bit of the sequence is the most significant of those bits.
// Bits of Value at or above Length are always zero.
//
// BitCode is comparable, so it is used directly as the key of a decode table.
type BitCode struct {
	Length int
	Value  uint64
}

// Append0 returns c followed by a zero bit.
func (c BitCode) Append0() BitCode {
	return BitCode{Length: c.Length + 1, Value: c.Value << 1}
}

// Append1 returns c followed by a one bit.
func (c BitCode) Append1() BitCode {
	return BitCode{Length: c.Length + 1, Value: c.Value<<1 | 1}
}

// Less orders codes lexicographically on (Length, Value).
func (c BitCode) Less(o BitCode) bool {
	if c.Length != o.Length {
		return c.Length < o.Length
	}
	return c.Value < o.Value
}

// split returns the n most significant bits of c and the remaining low bits.
// 0 < n < c.Length.
func (c BitCode) split(n int) (BitCode, BitCode) {
	rest := uint(c.Length - n)
	hi := c.Value >> rest
	lo := c.Value - hi<<rest
	return BitCode{Length: n, Value: hi}, BitCode{Length: int(rest), Value: lo}
}

// takeFrom moves the most significant bit of src onto the end of c.
// src must be non-empty.
func (c *BitCode) takeFrom(src *BitCode) {
	top := uint64(1) << uint(src.Length-1)
	c.Value <<= 1
	if src.Value&top != 0 {
		c.Value |= 1
	}
	c.Length++
	src.Value &^= top
	src.Length--
}

func (c BitCode) String() string {
	var sb strings.Builder
	for i := c.Length - 1; i >= 0; i-- {
		if c.Value>>uint(i)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
