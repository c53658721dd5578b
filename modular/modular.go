// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package modular implements modular arithmetic on [bigint.Int] values.
//
// A [Reducer] performs Barrett reduction against a fixed modulus. It is
// immutable after construction and may be shared between goroutines. A
// [FixedWindowExp] computes modular powers using a table of precomputed
// powers of the base. It carries mutable state and must not be used
// concurrently; use [FixedWindowExp.Clone] to obtain an independent copy.
//
// The functions [PowerMod], [GCD], [InverseMod] and [IsProbablePrime] build
// on these types for the number theory needed by public-key algorithms.
package modular

import "errors"

var (
	// ErrInvalidModulus indicates a modulus that is zero or negative.
	ErrInvalidModulus = errors.New("modular: modulus must be positive")
	// ErrNegativeExponent is returned by [FixedWindowExp.SetExponent] for
	// negative exponents.
	ErrNegativeExponent = errors.New("modular: negative exponent")
	// ErrExponentNotSet is returned by [FixedWindowExp.SetBase] if no exponent
	// has been set. The size of the power table depends on the exponent.
	ErrExponentNotSet = errors.New("modular: base set before exponent")
	// ErrBaseNotSet is returned by [FixedWindowExp.Execute] if no base has
	// been set.
	ErrBaseNotSet = errors.New("modular: base not set")
	// ErrInvalidWindow indicates a window size outside of [1, MaxWindowBits].
	ErrInvalidWindow = errors.New("modular: invalid window size")
	// ErrNotInvertible is returned by [InverseMod] if the value shares a
	// factor with the modulus.
	ErrNotInvertible = errors.New("modular: value not invertible")
)
