// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modular

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"testing"

	"codello.dev/pkcore/bigint"
)

//region Testing Helpers

// randNat returns a random non-negative value with exactly the given number of
// bits.
func randNat(r *rand.Rand, bits int) *bigint.Int {
	if bits == 0 {
		return new(bigint.Int)
	}
	ws := make([]bigint.Word, (bits+63)/64)
	for i := range ws {
		ws[i] = r.Uint64()
	}
	x := new(bigint.Int).SetWords(ws)
	x.Mask(x, uint(bits))
	return x.SetBit(x, bits-1, 1)
}

func bigMod(x, m *bigint.Int) *big.Int {
	return new(big.Int).Mod(x.ToBig(), m.ToBig())
}

//endregion

func ExampleReducer_Reduce() {
	r, _ := NewReducer(bigint.NewInt(97))
	fmt.Println(r.Reduce(bigint.NewInt(250)))
	fmt.Println(r.Reduce(bigint.NewInt(-250)))
	// Output:
	// 56
	// 41
}

func TestNewReducer(t *testing.T) {
	tests := map[string]struct {
		m       *bigint.Int
		wantErr error
	}{
		"Positive": {bigint.NewInt(7), nil},
		"One":      {bigint.NewInt(1), nil},
		"Zero":     {bigint.NewInt(0), ErrInvalidModulus},
		"Negative": {bigint.NewInt(-7), ErrInvalidModulus},
		"Nil":      {nil, ErrInvalidModulus},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := NewReducer(tt.m)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewReducer(%v) error = %v, wantErr %v", tt.m, err, tt.wantErr)
			}
			if err == nil && !r.Initialized() {
				t.Errorf("NewReducer(%v).Initialized() = false", tt.m)
			}
		})
	}
	var r *Reducer
	if r.Initialized() {
		t.Errorf("(*Reducer)(nil).Initialized() = true")
	}
}

func TestReducer_Reduce(t *testing.T) {
	rnd := rand.New(rand.NewPCG(11, 12))
	for _, bits := range []int{1, 7, 63, 64, 65, 127, 128, 200, 521, 1024} {
		t.Run(fmt.Sprintf("%dBits", bits), func(t *testing.T) {
			m := randNat(rnd, bits)
			r, err := NewReducer(m)
			if err != nil {
				t.Fatalf("NewReducer(%s) error = %v", m, err)
			}
			for i := 0; i < 200; i++ {
				var x *bigint.Int
				switch i % 4 {
				case 0: // below m
					x = randNat(rnd, rnd.IntN(bits+1))
				case 1: // below m²
					x = randNat(rnd, rnd.IntN(2*bits))
				case 2: // above m²
					x = randNat(rnd, 2*bits+rnd.IntN(130))
				case 3:
					x = randNat(rnd, rnd.IntN(2*bits+64))
					x.Neg(x)
				}
				want := bigMod(x, m)
				if got := r.Reduce(x); got.ToBig().Cmp(want) != 0 {
					t.Errorf("Reduce(%x) mod %x = %x, want %x", x, m, got, want)
				}
			}
		})
	}
}

func TestReducer_Reduce_EdgeCases(t *testing.T) {
	m := bigint.MustParse("0xffffffffffffffffffffffffffffff61")
	r, _ := NewReducer(m)
	mSquared := new(bigint.Int).Sqr(m)
	tests := map[string]*bigint.Int{
		"Zero":          new(bigint.Int),
		"Modulus":       new(bigint.Int).Set(m),
		"ModulusMinus1": new(bigint.Int).Sub(m, bigint.NewInt(1)),
		"NegModulus":    new(bigint.Int).Neg(m),
		"SquareMinus1":  new(bigint.Int).Sub(mSquared, bigint.NewInt(1)),
		"Square":        mSquared,
		"NegSquare":     new(bigint.Int).Neg(mSquared),
		"MinusOne":      bigint.NewInt(-1),
	}
	for name, x := range tests {
		t.Run(name, func(t *testing.T) {
			want := bigMod(x, m)
			if got := r.Reduce(x); got.ToBig().Cmp(want) != 0 {
				t.Errorf("Reduce(%x) = %x, want %x", x, got, want)
			}
		})
	}
}

func TestReducer_Multiply(t *testing.T) {
	rnd := rand.New(rand.NewPCG(13, 14))
	m := randNat(rnd, 300)
	r, _ := NewReducer(m)
	bm := m.ToBig()
	for i := 0; i < 100; i++ {
		x, y := randNat(rnd, 300), randNat(rnd, 280)
		bx, by := x.ToBig(), y.ToBig()

		want := new(big.Int).Mul(bx, by)
		want.Mod(want, bm)
		if got := r.Multiply(x, y); got.ToBig().Cmp(want) != 0 {
			t.Errorf("Multiply(%x, %x) = %x, want %x", x, y, got, want)
		}
		want.Exp(bx, big.NewInt(2), bm)
		if got := r.Square(x); got.ToBig().Cmp(want) != 0 {
			t.Errorf("Square(%x) = %x, want %x", x, got, want)
		}
		want.Exp(bx, big.NewInt(3), bm)
		if got := r.Cube(x); got.ToBig().Cmp(want) != 0 {
			t.Errorf("Cube(%x) = %x, want %x", x, got, want)
		}
	}
}

func TestReducer_Modulus(t *testing.T) {
	m := bigint.NewInt(1009)
	r, _ := NewReducer(m)
	m.SetInt64(5)
	got := r.Modulus()
	if got.Int64() != 1009 {
		t.Errorf("Modulus() = %s, want 1009", got)
	}
	got.SetInt64(3)
	if r.Modulus().Int64() != 1009 {
		t.Errorf("Modulus() result aliases the reducer")
	}
}
