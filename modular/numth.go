// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modular

import (
	"io"

	"codello.dev/pkcore/bigint"
)

// PowerMod returns b^e mod m.
func PowerMod(b, e, m *bigint.Int) (*bigint.Int, error) {
	r, err := NewReducer(m)
	if err != nil {
		return nil, err
	}
	x, err := NewFixedWindowExp(r, 0)
	if err != nil {
		return nil, err
	}
	if err = x.SetExponent(e); err != nil {
		return nil, err
	}
	if err = x.SetBase(b); err != nil {
		return nil, err
	}
	return x.Execute()
}

// GCD returns the greatest common divisor of |a| and |b|. GCD(0, 0) is 0.
func GCD(a, b *bigint.Int) *bigint.Int {
	x := new(bigint.Int).Abs(a)
	y := new(bigint.Int).Abs(b)
	for !y.IsZero() {
		x.Rem(x, y)
		x, y = y, x
	}
	return x
}

// InverseMod returns the value z in [0, m) with a*z ≡ 1 (mod m).
func InverseMod(a, m *bigint.Int) (*bigint.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	oldR, r := new(bigint.Int).Mod(a, m), new(bigint.Int).Set(m)
	oldS, s := bigint.NewInt(1), new(bigint.Int)
	q, t := new(bigint.Int), new(bigint.Int)
	for !r.IsZero() {
		q.Quo(oldR, r)
		t.Mul(q, r)
		oldR.Sub(oldR, t)
		oldR, r = r, oldR

		t.Mul(q, s)
		oldS.Sub(oldS, t)
		oldS, s = s, oldS
	}
	if oldR.Cmp(bigint.NewInt(1)) != 0 {
		return nil, ErrNotInvertible
	}
	return oldS.Mod(oldS, m), nil
}

var smallPrimes = []int64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151,
	157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223, 227, 229, 233,
	239, 241, 251,
}

// IsProbablePrime performs trial division by small primes followed by the
// given number of Miller-Rabin rounds with witnesses read from rand. A
// composite n is reported as prime with probability at most 4^-rounds.
// Values below 2 are never prime.
func IsProbablePrime(n *bigint.Int, rounds int, rand io.Reader) (bool, error) {
	if n.Sign() <= 0 || n.BitLen() < 2 {
		return false, nil
	}
	var rem bigint.Int
	for _, p := range smallPrimes {
		bp := bigint.NewInt(p)
		if n.Cmp(bp) == 0 {
			return true, nil
		}
		if rem.Rem(n, bp).IsZero() {
			return false, nil
		}
	}

	one := bigint.NewInt(1)
	nm1 := new(bigint.Int).Sub(n, one)
	s := 0
	for nm1.Bit(s) == 0 {
		s++
	}
	d := new(bigint.Int).Rsh(nm1, uint(s))

	r, err := NewReducer(n)
	if err != nil {
		return false, err
	}
	x, err := NewFixedWindowExp(r, 0)
	if err != nil {
		return false, err
	}
	if err = x.SetExponent(d); err != nil {
		return false, err
	}

	// Witnesses are drawn from [2, n-2].
	span := new(bigint.Int).Sub(n, bigint.NewInt(3))
	buf := make([]byte, n.ByteLen()+8)
	a := new(bigint.Int)
witness:
	for range rounds {
		if _, err = io.ReadFull(rand, buf); err != nil {
			return false, err
		}
		a.SetBytes(buf).Mod(a, span).Add(a, bigint.NewInt(2))
		if err = x.SetBase(a); err != nil {
			return false, err
		}
		y, err := x.Execute()
		if err != nil {
			return false, err
		}
		if y.Cmp(one) == 0 || y.Cmp(nm1) == 0 {
			continue
		}
		for range s - 1 {
			y = r.Square(y)
			if y.Cmp(nm1) == 0 {
				continue witness
			}
			if y.Cmp(one) == 0 {
				return false, nil
			}
		}
		return false, nil
	}
	return true, nil
}
