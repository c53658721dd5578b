// Package vlq implements [Variable-length quantity] encoding as used by BER
// for high tag numbers and object identifier arcs. A VLQ is a big-endian
// base-128 representation of an unsigned integer where the eighth bit of each
// byte marks the continuation of the quantity.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"io"
	"math/bits"
	"unsafe"
)

// Unsigned is the set of types a VLQ can be decoded into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

var (
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrOverflow   = errors.New("vlq too large for target type")
)

// Parse decodes a VLQ from the beginning of b and returns the value together
// with the number of bytes consumed. The maximum allowed value is limited by
// the size of T.
//
// If b ends before the final byte of the VLQ, io.ErrUnexpectedEOF is returned.
// An empty b results in io.EOF. Leading 0x80 bytes are accepted.
func Parse[T Unsigned](b []byte) (T, int, error) {
	return parse[T](b, false)
}

// ParseMinimal works like [Parse] but rejects a VLQ starting with a 0x80 byte.
func ParseMinimal[T Unsigned](b []byte) (T, int, error) {
	return parse[T](b, true)
}

func parse[T Unsigned](b []byte, minimal bool) (ret T, n int, err error) {
	if len(b) == 0 {
		return 0, 0, io.EOF
	}
	if b[0] == 0x80 && minimal {
		return 0, 0, ErrNotMinimal
	}
	numBits := 0
	for n < len(b) {
		c := b[n]
		n++
		ret <<= 7
		ret |= T(c & 0x7f)
		if numBits == 0 {
			numBits = bits.Len8(c & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, n, ErrOverflow
		}
		if c&0x80 == 0 {
			return ret, n, nil
		}
	}
	return 0, n, io.ErrUnexpectedEOF
}

// Len returns the number of bytes needed to encode v as a VLQ.
func Len[T Unsigned](v T) int {
	if v == 0 {
		return 1
	}
	l := 0
	for i := v; i > 0; i >>= 7 {
		l++
	}
	return l
}

// Append appends the minimal VLQ encoding of v to dst and returns the extended
// slice.
func Append[T Unsigned](dst []byte, v T) []byte {
	for j := Len(v) - 1; j >= 0; j-- {
		c := byte(v>>(j*7)) & 0x7f
		if j > 0 {
			c |= 0x80
		}
		dst = append(dst, c)
	}
	return dst
}
