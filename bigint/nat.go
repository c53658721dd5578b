// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bigint

import "math/bits"

// A Word is a single digit of a multi-precision unsigned integer.
type Word = uint64

const (
	_W = 64         // word size in bits
	_S = _W / 8     // word size in bytes
	_M = 1<<_W - 1  // digit mask
)

// nat is an unsigned integer x of the form
//
//	x = x[n-1]*_B^(n-1) + x[n-2]*_B^(n-2) + ... + x[1]*_B + x[0]
//
// with 0 <= x[i] < _B and 0 <= i < n. The representation is normalized so
// that the most significant word is never zero. The zero value is the empty
// slice.
type nat []Word

func (z nat) norm() nat {
	i := len(z)
	for i > 0 && z[i-1] == 0 {
		i--
	}
	return z[0:i]
}

// make returns a slice of length n, reusing the storage of z if possible.
func (z nat) make(n int) nat {
	if n <= cap(z) {
		return z[:n]
	}
	const e = 4 // extra capacity
	return make(nat, n, n+e)
}

func (z nat) clear() {
	for i := range z {
		z[i] = 0
	}
}

func (z nat) setWord(x Word) nat {
	if x == 0 {
		return z[:0]
	}
	z = z.make(1)
	z[0] = x
	return z
}

func (z nat) set(x nat) nat {
	z = z.make(len(x))
	copy(z, x)
	return z
}

// alias reports whether x and y share the same base array.
func alias(x, y nat) bool {
	return cap(x) > 0 && cap(y) > 0 && &x[0:cap(x)][cap(x)-1] == &y[0:cap(y)][cap(y)-1]
}

func (x nat) cmp(y nat) int {
	m, n := len(x), len(y)
	if m != n {
		if m < n {
			return -1
		}
		return 1
	}
	for i := m - 1; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}
	return 0
}

func (z nat) add(x, y nat) nat {
	m, n := len(x), len(y)
	if m < n {
		return z.add(y, x)
	}
	if n == 0 {
		return z.set(x)
	}
	z = z.make(m + 1)
	var c Word
	for i := 0; i < n; i++ {
		z[i], c = bits.Add64(x[i], y[i], c)
	}
	for i := n; i < m; i++ {
		z[i], c = bits.Add64(x[i], 0, c)
	}
	z[m] = c
	return z.norm()
}

// sub sets z = x - y. It panics if x < y.
func (z nat) sub(x, y nat) nat {
	m, n := len(x), len(y)
	switch {
	case m < n:
		panic("underflow")
	case n == 0:
		return z.set(x)
	}
	z = z.make(m)
	var b Word
	for i := 0; i < n; i++ {
		z[i], b = bits.Sub64(x[i], y[i], b)
	}
	for i := n; i < m; i++ {
		z[i], b = bits.Sub64(x[i], 0, b)
	}
	if b != 0 {
		panic("underflow")
	}
	return z.norm()
}

// basicMul computes z = x*y using the schoolbook method. z must have length
// len(x)+len(y) and must not alias x or y.
func basicMul(z, x, y nat) {
	z.clear()
	for i, yi := range y {
		if yi == 0 {
			continue
		}
		var carry Word
		for j, xj := range x {
			hi, lo := bits.Mul64(xj, yi)
			var c Word
			lo, c = bits.Add64(lo, z[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			z[i+j] = lo
			carry = hi
		}
		z[i+len(x)] = carry
	}
}

// basicSqr computes z = x*x. Each cross product is computed once and doubled.
// z must have length 2*len(x) and must not alias x.
func basicSqr(z, x nat) {
	z.clear()
	n := len(x)
	for i := 0; i < n; i++ {
		var carry Word
		xi := x[i]
		for j := i + 1; j < n; j++ {
			hi, lo := bits.Mul64(xi, x[j])
			var c Word
			lo, c = bits.Add64(lo, z[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			z[i+j] = lo
			carry = hi
		}
		z[i+n] = carry
	}
	var top Word
	for i := range z {
		next := z[i] >> (_W - 1)
		z[i] = z[i]<<1 | top
		top = next
	}
	var carry Word
	for i := 0; i < n; i++ {
		hi, lo := bits.Mul64(x[i], x[i])
		var c Word
		z[2*i], c = bits.Add64(z[2*i], lo, carry)
		z[2*i+1], carry = bits.Add64(z[2*i+1], hi, c)
	}
}

func (z nat) mul(x, y nat) nat {
	m, n := len(x), len(y)
	if m == 0 || n == 0 {
		return z[:0]
	}
	if alias(z, x) || alias(z, y) {
		z = nil
	}
	z = z.make(m + n)
	basicMul(z, x, y)
	return z.norm()
}

func (z nat) sqr(x nat) nat {
	n := len(x)
	if n == 0 {
		return z[:0]
	}
	if alias(z, x) {
		z = nil
	}
	z = z.make(2 * n)
	basicSqr(z, x)
	return z.norm()
}

// mulAddWW sets z = x*y + r.
func (z nat) mulAddWW(x nat, y, r Word) nat {
	m := len(x)
	if m == 0 || y == 0 {
		return z.setWord(r)
	}
	z = z.make(m + 1)
	carry := r
	for i := 0; i < m; i++ {
		hi, lo := bits.Mul64(x[i], y)
		var c Word
		z[i], c = bits.Add64(lo, carry, 0)
		carry = hi + c
	}
	z[m] = carry
	return z.norm()
}

func (x nat) bitLen() int {
	if i := len(x) - 1; i >= 0 {
		return i*_W + bits.Len64(x[i])
	}
	return 0
}

// bit returns the value of the i'th bit of x.
func (x nat) bit(i uint) uint {
	j := i / _W
	if j >= uint(len(x)) {
		return 0
	}
	return uint(x[j] >> (i % _W) & 1)
}

// shl sets z = x << s.
func (z nat) shl(x nat, s uint) nat {
	m := len(x)
	if m == 0 {
		return z[:0]
	}
	if s == 0 {
		return z.set(x)
	}
	if alias(z, x) {
		z = nil
	}
	words, shift := int(s/_W), s%_W
	z = z.make(m + words + 1)
	z[:words].clear()
	if shift == 0 {
		copy(z[words:], x)
		z[m+words] = 0
		return z.norm()
	}
	var prev Word
	for i := 0; i < m; i++ {
		z[i+words] = x[i]<<shift | prev
		prev = x[i] >> (_W - shift)
	}
	z[m+words] = prev
	return z.norm()
}

// shr sets z = x >> s.
func (z nat) shr(x nat, s uint) nat {
	m := len(x)
	words, shift := int(s/_W), s%_W
	if words >= m {
		return z[:0]
	}
	n := m - words
	if alias(z, x) {
		z = nil
	}
	z = z.make(n)
	if shift == 0 {
		copy(z, x[words:])
		return z.norm()
	}
	for i := 0; i < n; i++ {
		w := x[i+words] >> shift
		if i+words+1 < m {
			w |= x[i+words+1] << (_W - shift)
		}
		z[i] = w
	}
	return z.norm()
}

// trunc sets z to the n least significant bits of x.
func (z nat) trunc(x nat, n uint) nat {
	w := int((n + _W - 1) / _W)
	if len(x) < w {
		return z.set(x)
	}
	z = z.make(w)
	copy(z, x)
	if b := n % _W; b != 0 {
		z[w-1] &= 1<<b - 1
	}
	return z.norm()
}

// setBit sets z = x with bit i set to b (0 or 1).
func (z nat) setBit(x nat, i uint, b uint) nat {
	j := int(i / _W)
	m := Word(1) << (i % _W)
	n := len(x)
	switch b {
	case 0:
		z = z.set(x)
		if j >= n {
			return z
		}
		z[j] &^= m
		return z.norm()
	case 1:
		if j >= n {
			z = z.make(j + 1)
			copy(z, x)
			z[n:].clear()
		} else {
			z = z.set(x)
		}
		z[j] |= m
		return z
	}
	panic("set bit is not 0 or 1")
}

// divW sets z = x / y and returns the remainder.
func (z nat) divW(x nat, y Word) (q nat, r Word) {
	m := len(x)
	switch {
	case y == 0:
		panic("division by zero")
	case y == 1:
		return z.set(x), 0
	case m == 0:
		return z[:0], 0
	}
	z = z.make(m)
	for i := m - 1; i >= 0; i-- {
		z[i], r = bits.Div64(r, x[i], y)
	}
	return z.norm(), r
}

// div returns q = u / v and r = u % v. The results never alias u or v.
func div(u, v nat) (q, r nat) {
	if len(v) == 0 {
		panic("division by zero")
	}
	if u.cmp(v) < 0 {
		return nil, nat(nil).set(u)
	}
	if len(v) == 1 {
		q, rw := nat(nil).divW(u, v[0])
		return q, nat(nil).setWord(rw)
	}
	return divLarge(u, v)
}

// divLarge implements Knuth's Algorithm D (TAOCP Vol. 2, 4.3.1) for
// len(v) >= 2 and u >= v.
func divLarge(u, v nat) (q, r nat) {
	n := len(v)
	m := len(u) - n

	// D1: normalize so that the top bit of the divisor is set.
	s := uint(bits.LeadingZeros64(v[n-1]))
	vn := nat(nil).shl(v, s)
	un := make(nat, len(u)+1)
	copy(un, nat(nil).shl(u, s))

	q = make(nat, m+1)
	vn1, vn2 := vn[n-1], vn[n-2]
	for j := m; j >= 0; j-- {
		// D3: estimate the quotient digit.
		qhat := Word(_M)
		ujn := un[j+n]
		if ujn != vn1 {
			var rhat Word
			qhat, rhat = bits.Div64(ujn, un[j+n-1], vn1)
			x1, x2 := bits.Mul64(qhat, vn2)
			for greaterThan(x1, x2, rhat, un[j+n-2]) {
				qhat--
				prev := rhat
				rhat += vn1
				if rhat < prev {
					break
				}
				x1, x2 = bits.Mul64(qhat, vn2)
			}
		}

		// D4: multiply and subtract.
		var borrow, carry Word
		for i := 0; i < n; i++ {
			hi, lo := bits.Mul64(qhat, vn[i])
			var c Word
			lo, c = bits.Add64(lo, carry, 0)
			carry = hi + c
			un[j+i], borrow = bits.Sub64(un[j+i], lo, borrow)
		}
		un[j+n], borrow = bits.Sub64(un[j+n], carry, borrow)

		// D6: add back if the estimate was one too large.
		if borrow != 0 {
			qhat--
			var c Word
			for i := 0; i < n; i++ {
				un[j+i], c = bits.Add64(un[j+i], vn[i], c)
			}
			un[j+n] += c
		}
		q[j] = qhat
	}

	// D8: unnormalize the remainder.
	r = nat(nil).shr(un[:n].norm(), s)
	return q.norm(), r
}

// greaterThan reports whether the two-word value x1:x2 is greater than y1:y2.
func greaterThan(x1, x2, y1, y2 Word) bool {
	return x1 > y1 || x1 == y1 && x2 > y2
}
