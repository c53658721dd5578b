// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modular

import "codello.dev/pkcore/bigint"

// Hint describes how a [FixedWindowExp] is going to be used. Hints only
// affect the window size and never the result.
type Hint uint8

const (
	// ExpIsFixed indicates that the exponent is reused for many bases.
	ExpIsFixed Hint = 1 << iota
	// ExpIsLarge indicates an exponent of roughly the size of the modulus.
	ExpIsLarge
	// BaseIsFixed indicates that the base is reused for many exponents.
	BaseIsFixed
	// ExpIsSmall indicates a short exponent. It is currently ignored.
	ExpIsSmall
)

// MaxWindowBits is the largest window accepted by
// [FixedWindowExp.SetWindowBits].
const MaxWindowBits = 16

var windowThresholds = []struct {
	bits, extra int
}{
	{2048, 7},
	{1024, 6},
	{256, 5},
	{128, 4},
	{64, 3},
}

// ChooseWindowBits returns the window size used for an exponent of expBits
// bits under the given hints.
func ChooseWindowBits(expBits int, hints Hint) int {
	w := 3
	for _, t := range windowThresholds {
		if expBits >= t.bits {
			w += t.extra
			break
		}
	}
	if hints&ExpIsFixed != 0 {
		w += 2
	}
	if hints&ExpIsLarge != 0 {
		w += 2
	}
	if hints&BaseIsFixed != 0 {
		w++
	}
	return w
}

// FixedWindowExp computes b^e mod m by processing the exponent several bits at
// a time. The exponent must be set before the base:
//
//	x, _ := modular.NewFixedWindowExp(r, 0)
//	_ = x.SetExponent(e)
//	_ = x.SetBase(b)
//	result, err := x.Execute()
//
// A FixedWindowExp must not be used by multiple goroutines concurrently.
type FixedWindowExp struct {
	r      *Reducer
	hints  Hint
	forced int // window size set by SetWindowBits, 0 if unset

	window int
	exp    *bigint.Int
	g      []*bigint.Int // g[i] = base^(i+1) mod m
}

// NewFixedWindowExp returns an exponentiator for the modulus of r.
func NewFixedWindowExp(r *Reducer, hints Hint) (*FixedWindowExp, error) {
	if !r.Initialized() {
		return nil, ErrInvalidModulus
	}
	return &FixedWindowExp{r: r, hints: hints}, nil
}

// SetWindowBits overrides the window size chosen by [ChooseWindowBits]. It
// discards a previously set base.
func (x *FixedWindowExp) SetWindowBits(w int) error {
	if w < 1 || w > MaxWindowBits {
		return ErrInvalidWindow
	}
	x.forced = w
	if x.exp != nil {
		x.window = w
	}
	x.g = nil
	return nil
}

// WindowBits returns the window size in use, or 0 if no exponent has been set.
func (x *FixedWindowExp) WindowBits() int {
	return x.window
}

// SetExponent sets the exponent. It discards a previously set base.
func (x *FixedWindowExp) SetExponent(e *bigint.Int) error {
	if e.Sign() < 0 {
		return ErrNegativeExponent
	}
	x.exp = new(bigint.Int).Set(e)
	x.window = x.forced
	if x.window == 0 {
		x.window = min(ChooseWindowBits(e.BitLen(), x.hints), MaxWindowBits)
	}
	x.g = nil
	return nil
}

// SetBase sets the base and precomputes its powers.
func (x *FixedWindowExp) SetBase(b *bigint.Int) error {
	if x.exp == nil {
		return ErrExponentNotSet
	}
	g := make([]*bigint.Int, 1<<x.window-1)
	g[0] = x.r.Reduce(b)
	for i := 1; i < len(g); i++ {
		g[i] = x.r.Multiply(g[i-1], g[0])
	}
	x.g = g
	return nil
}

// Execute returns b^e mod m for the current base and exponent.
func (x *FixedWindowExp) Execute() (*bigint.Int, error) {
	if x.exp == nil {
		return nil, ErrExponentNotSet
	}
	if x.g == nil {
		return nil, ErrBaseNotSet
	}
	w := x.window
	acc := x.r.Reduce(bigint.NewInt(1))
	windows := (x.exp.BitLen() + w - 1) / w
	for i := windows - 1; i >= 0; i-- {
		for range w {
			acc = x.r.Square(acc)
		}
		if nibble := x.exp.GetSubstring(uint(i*w), uint(w)); nibble != 0 {
			acc = x.r.Multiply(acc, x.g[nibble-1])
		}
	}
	return acc, nil
}

// Clone returns an independent copy of x. The Reducer is shared.
func (x *FixedWindowExp) Clone() *FixedWindowExp {
	c := *x
	if x.exp != nil {
		c.exp = new(bigint.Int).Set(x.exp)
	}
	if x.g != nil {
		c.g = make([]*bigint.Int, len(x.g))
		for i, v := range x.g {
			c.g[i] = new(bigint.Int).Set(v)
		}
	}
	return &c
}
