// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modular

import "codello.dev/pkcore/bigint"

// Reducer computes x mod m for a fixed modulus m using Barrett reduction.
//
// The zero value is not usable. Use [NewReducer] instead.
type Reducer struct {
	m        *bigint.Int
	mSquared *bigint.Int
	mu       *bigint.Int // floor(2^(128k) / m)
	bk1      *bigint.Int // 2^(64(k+1))
	k        int         // number of words in m
}

// NewReducer returns a Reducer for the modulus m. The modulus is copied. If
// m <= 0, NewReducer returns ErrInvalidModulus.
func NewReducer(m *bigint.Int) (*Reducer, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	r := &Reducer{
		m: new(bigint.Int).Set(m),
		k: m.WordLen(),
	}
	r.mSquared = new(bigint.Int).Sqr(m)
	r.mu = new(bigint.Int).PowerOf2(uint(2 * 64 * r.k))
	r.mu.Quo(r.mu, m)
	r.bk1 = new(bigint.Int).PowerOf2(uint(64 * (r.k + 1)))
	return r, nil
}

// Initialized reports whether r was created by [NewReducer].
func (r *Reducer) Initialized() bool {
	return r != nil && r.m != nil
}

// Modulus returns a copy of the modulus of r.
func (r *Reducer) Modulus() *bigint.Int {
	return new(bigint.Int).Set(r.m)
}

// Reduce returns x mod m as a new value in the range [0, m). Negative inputs
// are reduced to their mathematical residue, not the truncated remainder.
func (r *Reducer) Reduce(x *bigint.Int) *bigint.Int {
	if x.CmpAbs(r.mSquared) >= 0 {
		// Barrett's error bound only holds below m².
		return new(bigint.Int).Mod(x, r.m)
	}

	k := uint(r.k)
	t1 := new(bigint.Int).Abs(x)
	t1.Rsh(t1, 64*(k-1))
	t1.Mul(t1, r.mu)
	t1.Rsh(t1, 64*(k+1))
	t1.Mul(t1, r.m)
	t1.Mask(t1, 64*(k+1))

	t2 := new(bigint.Int).Mask(x, 64*(k+1))
	t1.Sub(t2, t1)
	if t1.Sign() < 0 {
		t1.Add(t1, r.bk1)
	}
	for t1.Cmp(r.m) >= 0 {
		t1.Sub(t1, r.m)
	}

	if x.Sign() < 0 && !t1.IsZero() {
		t1.Sub(r.m, t1)
	}
	return t1
}

// Multiply returns x*y mod m.
func (r *Reducer) Multiply(x, y *bigint.Int) *bigint.Int {
	return r.Reduce(new(bigint.Int).Mul(x, y))
}

// Square returns x² mod m.
func (r *Reducer) Square(x *bigint.Int) *bigint.Int {
	return r.Reduce(new(bigint.Int).Sqr(x))
}

// Cube returns x³ mod m.
func (r *Reducer) Cube(x *bigint.Int) *bigint.Int {
	return r.Multiply(x, r.Square(x))
}
