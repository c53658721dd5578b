// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bigint implements arbitrary-precision signed integers for the
// public-key operations of this module.
//
// An [Int] stores its magnitude as a little-endian slice of 64-bit words and
// its sign separately. Zero is never negative. Operations follow the
// conventions of [math/big]: methods store their result in the receiver z and
// return it, and the receiver may alias any of the operands:
//
//	var z bigint.Int
//	z.Mul(x, y).Add(&z, c)
//
// Beyond the usual arithmetic the package provides the operations needed by
// Barrett reduction and windowed exponentiation, namely [Int.Mask],
// [Int.GetSubstring] and [Int.WordLen], as well as fixed-length big-endian
// conversions ([Int.Encode1363]).
//
// Division by zero and negative shift counts are programming errors and
// cause a panic.
package bigint

import (
	"math"
	"math/big"
)

// An Int represents a signed multi-precision integer. The zero value for an
// Int represents the value 0.
//
// Int values must not be copied by value. Use [Int.Set] instead.
type Int struct {
	neg bool // sign
	abs nat  // absolute value of the integer
}

// NewInt allocates and returns a new Int set to x.
func NewInt(x int64) *Int {
	return new(Int).SetInt64(x)
}

// SetInt64 sets z to x and returns z.
func (z *Int) SetInt64(x int64) *Int {
	neg := false
	if x < 0 {
		neg = true
		x = -x
	}
	z.abs = z.abs.setWord(Word(x))
	z.neg = neg
	return z
}

// SetUint64 sets z to x and returns z.
func (z *Int) SetUint64(x uint64) *Int {
	z.abs = z.abs.setWord(x)
	z.neg = false
	return z
}

// Set sets z to x and returns z.
func (z *Int) Set(x *Int) *Int {
	if z != x {
		z.abs = z.abs.set(x.abs)
		z.neg = x.neg
	}
	return z
}

// SetWords sets z to the non-negative value whose little-endian words are ws.
// The slice is copied.
func (z *Int) SetWords(ws []Word) *Int {
	z.abs = z.abs.set(nat(ws)).norm()
	z.neg = false
	return z
}

// Words returns the little-endian words of |x|. The result shares memory
// with x.
func (x *Int) Words() []Word {
	return x.abs
}

// Clear sets z to zero and overwrites the words previously holding its value.
func (z *Int) Clear() *Int {
	z.abs[:cap(z.abs)].clear()
	z.abs = z.abs[:0]
	z.neg = false
	return z
}

// Sign returns -1 if x < 0, 0 if x == 0 and +1 if x > 0.
func (x *Int) Sign() int {
	if len(x.abs) == 0 {
		return 0
	}
	if x.neg {
		return -1
	}
	return 1
}

// IsZero reports whether x == 0.
func (x *Int) IsZero() bool {
	return len(x.abs) == 0
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x *Int) Cmp(y *Int) (r int) {
	switch {
	case x == y:
	case x.neg == y.neg:
		r = x.abs.cmp(y.abs)
		if x.neg {
			r = -r
		}
	case x.neg:
		r = -1
	default:
		r = 1
	}
	return
}

// CmpAbs compares |x| and |y| and returns -1, 0 or +1.
func (x *Int) CmpAbs(y *Int) int {
	return x.abs.cmp(y.abs)
}

// BitLen returns the length of |x| in bits. The bit length of 0 is 0.
func (x *Int) BitLen() int {
	return x.abs.bitLen()
}

// ByteLen returns the number of bytes needed to represent |x|.
func (x *Int) ByteLen() int {
	return (x.abs.bitLen() + 7) / 8
}

// WordLen returns the number of significant words of |x|.
func (x *Int) WordLen() int {
	return len(x.abs)
}

// Bit returns the value of the i'th bit of |x|.
func (x *Int) Bit(i int) uint {
	if i < 0 {
		panic("negative bit index")
	}
	return x.abs.bit(uint(i))
}

// SetBit sets z to |x| with the i'th bit set to b (0 or 1), keeping the sign
// of x.
func (z *Int) SetBit(x *Int, i int, b uint) *Int {
	if i < 0 {
		panic("negative bit index")
	}
	neg := x.neg
	z.abs = z.abs.setBit(x.abs, uint(i), b)
	z.neg = neg && len(z.abs) > 0
	return z
}

// PowerOf2 sets z to 2**n and returns z.
func (z *Int) PowerOf2(n uint) *Int {
	z.abs = z.abs[:0].setBit(nil, n, 1)
	z.neg = false
	return z
}

// IsInt64 reports whether x can be represented as an int64.
func (x *Int) IsInt64() bool {
	if len(x.abs) <= 1 {
		w := int64(low64(x.abs))
		return w >= 0 || x.neg && w == -w
	}
	return false
}

// Int64 returns the int64 representation of x. If x cannot be represented in
// an int64, the result is undefined.
func (x *Int) Int64() int64 {
	v := int64(low64(x.abs))
	if x.neg {
		v = -v
	}
	return v
}

// Uint64 returns the uint64 representation of |x|. If |x| cannot be
// represented in a uint64, the result is undefined.
func (x *Int) Uint64() uint64 {
	return low64(x.abs)
}

func low64(x nat) uint64 {
	if len(x) == 0 {
		return 0
	}
	return x[0]
}

// Neg sets z to -x and returns z.
func (z *Int) Neg(x *Int) *Int {
	z.Set(x)
	z.neg = len(z.abs) > 0 && !z.neg
	return z
}

// Abs sets z to |x| and returns z.
func (z *Int) Abs(x *Int) *Int {
	z.Set(x)
	z.neg = false
	return z
}

// Add sets z to the sum x+y and returns z.
func (z *Int) Add(x, y *Int) *Int {
	neg := x.neg
	if x.neg == y.neg {
		// x + y == x + y
		// (-x) + (-y) == -(x + y)
		z.abs = z.abs.add(x.abs, y.abs)
	} else {
		// x + (-y) == x - y == -(y - x)
		// (-x) + y == y - x == -(x - y)
		if x.abs.cmp(y.abs) >= 0 {
			z.abs = z.abs.sub(x.abs, y.abs)
		} else {
			neg = !neg
			z.abs = z.abs.sub(y.abs, x.abs)
		}
	}
	z.neg = len(z.abs) > 0 && neg
	return z
}

// Sub sets z to the difference x-y and returns z.
func (z *Int) Sub(x, y *Int) *Int {
	neg := x.neg
	if x.neg != y.neg {
		// x - (-y) == x + y
		// (-x) - y == -(x + y)
		z.abs = z.abs.add(x.abs, y.abs)
	} else {
		// x - y == x - y == -(y - x)
		// (-x) - (-y) == y - x == -(x - y)
		if x.abs.cmp(y.abs) >= 0 {
			z.abs = z.abs.sub(x.abs, y.abs)
		} else {
			neg = !neg
			z.abs = z.abs.sub(y.abs, x.abs)
		}
	}
	z.neg = len(z.abs) > 0 && neg
	return z
}

// Mul sets z to the product x*y and returns z. The product is computed with
// the schoolbook method. If x and y are the same Int, Mul squares.
func (z *Int) Mul(x, y *Int) *Int {
	if x == y {
		return z.Sqr(x)
	}
	z.abs = z.abs.mul(x.abs, y.abs)
	z.neg = len(z.abs) > 0 && x.neg != y.neg
	return z
}

// Sqr sets z to x*x and returns z.
func (z *Int) Sqr(x *Int) *Int {
	z.abs = z.abs.sqr(x.abs)
	z.neg = false
	return z
}

// Lsh sets z = x << n and returns z. The sign of x is preserved.
func (z *Int) Lsh(x *Int, n uint) *Int {
	z.abs = z.abs.shl(x.abs, n)
	z.neg = x.neg && len(z.abs) > 0
	return z
}

// Rsh sets z = |x| >> n with the sign of x and returns z. Unlike [big.Int.Rsh]
// negative values are truncated towards zero.
func (z *Int) Rsh(x *Int, n uint) *Int {
	neg := x.neg
	z.abs = z.abs.shr(x.abs, n)
	z.neg = neg && len(z.abs) > 0
	return z
}

// Mask sets z to the n least significant bits of |x| and returns z. The result
// is never negative.
func (z *Int) Mask(x *Int, n uint) *Int {
	z.abs = z.abs.trunc(x.abs, n)
	z.neg = false
	return z
}

// GetSubstring returns the bits [offset, offset+length) of |x| as a word. The
// length must not exceed 64. Bits beyond the length of x are zero.
func (x *Int) GetSubstring(offset, length uint) Word {
	if length > _W {
		panic("bigint: substring longer than a word")
	}
	if length == 0 {
		return 0
	}
	i, shift := offset/_W, offset%_W
	if i >= uint(len(x.abs)) {
		return 0
	}
	w := x.abs[i] >> shift
	if shift != 0 && i+1 < uint(len(x.abs)) {
		w |= x.abs[i+1] << (_W - shift)
	}
	if length < _W {
		w &= 1<<length - 1
	}
	return w
}

// QuoRem sets z to the quotient x/y and r to the remainder x%y and returns the
// pair (z, r) for y != 0. QuoRem implements truncated division: the remainder
// has the sign of x. If y == 0, a division-by-zero run-time panic occurs.
func (z *Int) QuoRem(x, y, r *Int) (*Int, *Int) {
	q, rem := div(x.abs, y.abs)
	xNeg, yNeg := x.neg, y.neg
	z.abs, r.abs = z.abs.set(q), r.abs.set(rem)
	z.neg = len(z.abs) > 0 && xNeg != yNeg
	r.neg = len(r.abs) > 0 && xNeg
	return z, r
}

// Quo sets z to the truncated quotient x/y for y != 0 and returns z.
func (z *Int) Quo(x, y *Int) *Int {
	var r Int
	z.QuoRem(x, y, &r)
	return z
}

// Rem sets z to the truncated remainder x%y for y != 0 and returns z.
func (z *Int) Rem(x, y *Int) *Int {
	var q Int
	q.QuoRem(x, y, z)
	return z
}

// DivMod sets z to the quotient x div y and m to the modulus x mod y and
// returns the pair (z, m) for y != 0. DivMod implements Euclidean division:
// m is always in the range [0, |y|).
func (z *Int) DivMod(x, y, m *Int) (*Int, *Int) {
	y0 := y
	if z == y || alias(z.abs, y.abs) || m == y || alias(m.abs, y.abs) {
		y0 = new(Int).Set(y)
	}
	z.QuoRem(x, y0, m)
	if m.neg {
		if y0.neg {
			z.Add(z, intOne)
			m.Sub(m, y0)
		} else {
			z.Sub(z, intOne)
			m.Add(m, y0)
		}
	}
	return z, m
}

// Mod sets z to the Euclidean modulus x mod y for y != 0 and returns z. The
// result is in the range [0, |y|).
func (z *Int) Mod(x, y *Int) *Int {
	var q Int
	q.DivMod(x, y, z)
	return z
}

var intOne = &Int{false, nat{1}}

// IsOdd reports whether |x| is odd.
func (x *Int) IsOdd() bool {
	return len(x.abs) > 0 && x.abs[0]&1 == 1
}

// FromBig returns a new Int with the value of x.
func FromBig(x *big.Int) *Int {
	z := new(Int)
	words := x.Bits()
	if math.MaxUint == math.MaxUint64 {
		ws := make(nat, len(words))
		for i, w := range words {
			ws[i] = Word(w)
		}
		z.abs = ws.norm()
	} else {
		z.SetBytes(x.Bytes())
	}
	z.neg = x.Sign() < 0
	return z
}

// ToBig returns a new [big.Int] with the value of x.
func (x *Int) ToBig() *big.Int {
	z := new(big.Int).SetBytes(x.Bytes())
	if x.neg {
		z.Neg(z)
	}
	return z
}
