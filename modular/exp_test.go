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

	"filippo.io/bigmod"

	"codello.dev/pkcore/bigint"
)

// naiveExp computes b^e mod m by binary square-and-multiply.
func naiveExp(b, e, m *big.Int) *big.Int {
	acc := big.NewInt(1)
	acc.Mod(acc, m)
	for i := e.BitLen() - 1; i >= 0; i-- {
		acc.Mul(acc, acc).Mod(acc, m)
		if e.Bit(i) == 1 {
			acc.Mul(acc, b).Mod(acc, m)
		}
	}
	return acc
}

func TestChooseWindowBits(t *testing.T) {
	tests := map[string]struct {
		bits  int
		hints Hint
		want  int
	}{
		"Small":        {10, 0, 3},
		"63Bits":       {63, 0, 3},
		"64Bits":       {64, 0, 6},
		"128Bits":      {128, 0, 7},
		"256Bits":      {256, 0, 8},
		"1024Bits":     {1024, 0, 9},
		"2048Bits":     {2048, 0, 10},
		"4096Bits":     {4096, 0, 10},
		"FixedExp":     {10, ExpIsFixed, 5},
		"LargeExp":     {10, ExpIsLarge, 5},
		"FixedBase":    {10, BaseIsFixed, 4},
		"SmallIgnored": {10, ExpIsSmall, 3},
		"AllHints":     {2048, ExpIsFixed | ExpIsLarge | BaseIsFixed, 15},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ChooseWindowBits(tt.bits, tt.hints); got != tt.want {
				t.Errorf("ChooseWindowBits(%d, %b) = %d, want %d", tt.bits, tt.hints, got, tt.want)
			}
		})
	}
}

func TestFixedWindowExp_Execute(t *testing.T) {
	rnd := rand.New(rand.NewPCG(21, 22))
	for _, bits := range []int{2, 17, 64, 100, 256} {
		m := randNat(rnd, bits)
		r, _ := NewReducer(m)
		for i := 0; i < 10; i++ {
			b := randNat(rnd, rnd.IntN(2*bits))
			if i%3 == 0 {
				b.Neg(b)
			}
			e := randNat(rnd, rnd.IntN(200))
			bb := new(big.Int).Mod(b.ToBig(), m.ToBig())
			want := naiveExp(bb, e.ToBig(), m.ToBig())

			for _, w := range []int{1, 2, 0} {
				t.Run(fmt.Sprintf("%dBits/%d/Window%d", bits, i, w), func(t *testing.T) {
					x, err := NewFixedWindowExp(r, 0)
					if err != nil {
						t.Fatalf("NewFixedWindowExp() error = %v", err)
					}
					if w != 0 {
						if err = x.SetWindowBits(w); err != nil {
							t.Fatalf("SetWindowBits(%d) error = %v", w, err)
						}
					}
					if err = x.SetExponent(e); err != nil {
						t.Fatalf("SetExponent(%s) error = %v", e, err)
					}
					if w != 0 && x.WindowBits() != w {
						t.Errorf("WindowBits() = %d, want %d", x.WindowBits(), w)
					}
					if err = x.SetBase(b); err != nil {
						t.Fatalf("SetBase(%s) error = %v", b, err)
					}
					got, err := x.Execute()
					if err != nil {
						t.Fatalf("Execute() error = %v", err)
					}
					if got.ToBig().Cmp(want) != 0 {
						t.Errorf("%x^%x mod %x = %x, want %x", b, e, m, got, want)
					}
				})
			}
		}
	}
}

func TestFixedWindowExp_Bigmod(t *testing.T) {
	rnd := rand.New(rand.NewPCG(23, 24))
	for i := 0; i < 20; i++ {
		m := randNat(rnd, 512)
		m.SetBit(m, 0, 1)
		b := randNat(rnd, 500)
		e := randNat(rnd, 512)

		mod, err := bigmod.NewModulus(m.Bytes())
		if err != nil {
			t.Fatalf("bigmod.NewModulus() error = %v", err)
		}
		x, err := bigmod.NewNat().SetBytes(b.Bytes(), mod)
		if err != nil {
			t.Fatalf("bigmod.Nat.SetBytes() error = %v", err)
		}
		want := bigmod.NewNat().Exp(x, e.Bytes(), mod).Bytes(mod)

		got, err := PowerMod(b, e, m)
		if err != nil {
			t.Fatalf("PowerMod() error = %v", err)
		}
		gotBytes, err := got.Encode1363(len(want))
		if err != nil {
			t.Fatalf("Encode1363() error = %v", err)
		}
		if string(gotBytes) != string(want) {
			t.Errorf("PowerMod(%x, %x, %x) = % X, want % X", b, e, m, gotBytes, want)
		}
	}
}

func TestFixedWindowExp_State(t *testing.T) {
	r, _ := NewReducer(bigint.NewInt(101))
	if _, err := NewFixedWindowExp(nil, 0); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("NewFixedWindowExp(nil) error = %v, want %v", err, ErrInvalidModulus)
	}
	if _, err := NewFixedWindowExp(new(Reducer), 0); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("NewFixedWindowExp(&Reducer{}) error = %v, want %v", err, ErrInvalidModulus)
	}

	x, _ := NewFixedWindowExp(r, 0)
	if err := x.SetBase(bigint.NewInt(3)); !errors.Is(err, ErrExponentNotSet) {
		t.Errorf("SetBase() before SetExponent() error = %v, want %v", err, ErrExponentNotSet)
	}
	if _, err := x.Execute(); !errors.Is(err, ErrExponentNotSet) {
		t.Errorf("Execute() without exponent error = %v, want %v", err, ErrExponentNotSet)
	}
	if err := x.SetExponent(bigint.NewInt(-1)); !errors.Is(err, ErrNegativeExponent) {
		t.Errorf("SetExponent(-1) error = %v, want %v", err, ErrNegativeExponent)
	}
	if err := x.SetExponent(bigint.NewInt(5)); err != nil {
		t.Fatalf("SetExponent(5) error = %v", err)
	}
	if _, err := x.Execute(); !errors.Is(err, ErrBaseNotSet) {
		t.Errorf("Execute() without base error = %v, want %v", err, ErrBaseNotSet)
	}
	for _, w := range []int{0, -1, MaxWindowBits + 1} {
		if err := x.SetWindowBits(w); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("SetWindowBits(%d) error = %v, want %v", w, err, ErrInvalidWindow)
		}
	}

	// Changing the exponent discards the table.
	_ = x.SetBase(bigint.NewInt(3))
	_ = x.SetExponent(bigint.NewInt(6))
	if _, err := x.Execute(); !errors.Is(err, ErrBaseNotSet) {
		t.Errorf("Execute() after SetExponent() error = %v, want %v", err, ErrBaseNotSet)
	}
}

func TestFixedWindowExp_ZeroExponent(t *testing.T) {
	tests := map[string]struct {
		m    int64
		want int64
	}{
		"Prime":  {101, 1},
		"Unit":   {1, 0},
		"Binary": {2, 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := PowerMod(bigint.NewInt(42), new(bigint.Int), bigint.NewInt(tt.m))
			if err != nil {
				t.Fatalf("PowerMod() error = %v", err)
			}
			if got.Int64() != tt.want {
				t.Errorf("42^0 mod %d = %s, want %d", tt.m, got, tt.want)
			}
		})
	}
}

func TestFixedWindowExp_Clone(t *testing.T) {
	r, _ := NewReducer(bigint.NewInt(1000003))
	x, _ := NewFixedWindowExp(r, BaseIsFixed)
	_ = x.SetExponent(bigint.NewInt(65537))
	_ = x.SetBase(bigint.NewInt(12345))
	c := x.Clone()

	_ = x.SetBase(bigint.NewInt(2))
	got, err := c.Execute()
	if err != nil {
		t.Fatalf("Clone().Execute() error = %v", err)
	}
	want := new(big.Int).Exp(big.NewInt(12345), big.NewInt(65537), big.NewInt(1000003))
	if got.ToBig().Cmp(want) != 0 {
		t.Errorf("Clone().Execute() = %s, want %s", got, want)
	}
	got, _ = x.Execute()
	want.Exp(big.NewInt(2), big.NewInt(65537), big.NewInt(1000003))
	if got.ToBig().Cmp(want) != 0 {
		t.Errorf("Execute() = %s, want %s", got, want)
	}
}

func BenchmarkFixedWindowExp(b *testing.B) {
	rnd := rand.New(rand.NewPCG(25, 26))
	m := randNat(rnd, 1024)
	base, e := randNat(rnd, 1000), randNat(rnd, 1024)
	r, _ := NewReducer(m)
	for _, w := range []int{1, 4, 0} {
		b.Run(fmt.Sprintf("Window%d", w), func(b *testing.B) {
			for b.Loop() {
				x, _ := NewFixedWindowExp(r, 0)
				if w != 0 {
					_ = x.SetWindowBits(w)
				}
				_ = x.SetExponent(e)
				_ = x.SetBase(base)
				_, _ = x.Execute()
			}
		})
	}
}
