// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pubkey

import (
	"crypto/rand"
	"fmt"

	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/bigint"
	"codello.dev/pkcore/modular"
)

// RSAPublicKey is an RSA public key (RFC 8017, appendix A.1.1).
//
//	RSAPublicKey ::= SEQUENCE {
//	    modulus         INTEGER,  -- n
//	    publicExponent  INTEGER } -- e
type RSAPublicKey struct {
	N *bigint.Int
	E *bigint.Int
}

// EncodeInto writes k.
func (k *RSAPublicKey) EncodeInto(e *ber.Encoder) error {
	e.StartSequence()
	e.EncodeInteger(k.N)
	e.EncodeInteger(k.E)
	return e.EndCons()
}

// DecodeFrom reads k.
func (k *RSAPublicKey) DecodeFrom(d *ber.Decoder) error {
	k.N, k.E = new(bigint.Int), new(bigint.Int)
	d.StartSequence()
	d.DecodeInteger(k.N)
	d.DecodeInteger(k.E)
	return d.EndCons()
}

// Size returns the size of the modulus in bytes.
func (k *RSAPublicKey) Size() int {
	return k.N.ByteLen()
}

// Validate performs basic sanity checks on k. The modulus must be odd and
// larger than the exponent, and the exponent must be odd and at least 3.
func (k *RSAPublicKey) Validate() error {
	if k.N == nil || k.E == nil {
		return ErrInvalidKey
	}
	if !k.N.IsOdd() || k.N.Sign() <= 0 || !k.E.IsOdd() || k.E.Sign() <= 0 || k.E.Cmp(bigint.NewInt(3)) < 0 || k.E.Cmp(k.N) >= 0 {
		return ErrInvalidKey
	}
	return nil
}

// Encrypt returns m^e mod n. The message must be in the range [0, n).
func (k *RSAPublicKey) Encrypt(m *bigint.Int) (*bigint.Int, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	if !inRange(m, k.N) {
		return nil, ErrMessageOutOfRange
	}
	r, err := modular.NewReducer(k.N)
	if err != nil {
		return nil, err
	}
	return power(r, m, k.E)
}

// VerifyRaw returns s^e mod n, the representative recovered from the
// signature s. The caller compares it with the expected encoded message.
func (k *RSAPublicKey) VerifyRaw(s *bigint.Int) (*bigint.Int, error) {
	return k.Encrypt(s)
}

// SubjectPublicKeyInfo returns k wrapped for use in X.509 structures.
func (k *RSAPublicKey) SubjectPublicKeyInfo() (*SubjectPublicKeyInfo, error) {
	return wrap(AlgorithmIdentifier{OIDRSAEncryption, nullParameters()}, k)
}

// ParseRSAPublicKey returns the RSA key contained in spki.
func ParseRSAPublicKey(spki *SubjectPublicKeyInfo) (*RSAPublicKey, error) {
	k := new(RSAPublicKey)
	if err := spki.unwrap(OIDRSAEncryption, k); err != nil {
		return nil, err
	}
	return k, nil
}

// RSAPrivateKey is a two-prime RSA private key (RFC 8017, appendix A.1.2).
//
//	RSAPrivateKey ::= SEQUENCE {
//	    version          Version,
//	    modulus          INTEGER,  -- n
//	    publicExponent   INTEGER,  -- e
//	    privateExponent  INTEGER,  -- d
//	    prime1           INTEGER,  -- p
//	    prime2           INTEGER,  -- q
//	    exponent1        INTEGER,  -- d mod (p-1)
//	    exponent2        INTEGER,  -- d mod (q-1)
//	    coefficient      INTEGER,  -- (inverse of q) mod p
//	    otherPrimeInfos  OtherPrimeInfos OPTIONAL }
//
// Multi-prime keys are not supported.
type RSAPrivateKey struct {
	Version int64
	N, E    *bigint.Int
	D       *bigint.Int
	P, Q    *bigint.Int
	DP, DQ  *bigint.Int
	QInv    *bigint.Int
}

// EncodeInto writes k.
func (k *RSAPrivateKey) EncodeInto(e *ber.Encoder) error {
	if k.D == nil {
		return ErrNoPrivateKey
	}
	e.StartSequence()
	e.EncodeInt64(k.Version)
	for _, x := range []*bigint.Int{k.N, k.E, k.D, k.P, k.Q, k.DP, k.DQ, k.QInv} {
		e.EncodeInteger(x)
	}
	return e.EndCons()
}

// DecodeFrom reads k.
func (k *RSAPrivateKey) DecodeFrom(d *ber.Decoder) error {
	d.StartSequence()
	if err := d.DecodeInt64(&k.Version); err != nil {
		return err
	}
	if k.Version != 0 {
		return fmt.Errorf("%w: RSA private key version %d", ErrUnsupportedVersion, k.Version)
	}
	fields := []**bigint.Int{&k.N, &k.E, &k.D, &k.P, &k.Q, &k.DP, &k.DQ, &k.QInv}
	for _, f := range fields {
		*f = new(bigint.Int)
		d.DecodeInteger(*f)
	}
	return d.EndCons()
}

// Public returns the public part of k.
func (k *RSAPrivateKey) Public() *RSAPublicKey {
	return &RSAPublicKey{
		N: new(bigint.Int).Set(k.N),
		E: new(bigint.Int).Set(k.E),
	}
}

// hasCRT reports whether the CRT values of k are present.
func (k *RSAPrivateKey) hasCRT() bool {
	return k.P != nil && k.Q != nil && k.DP != nil && k.DQ != nil && k.QInv != nil &&
		k.P.Sign() > 0 && k.Q.Sign() > 0
}

// Validate checks the consistency of k. The primes are tested with 20 rounds
// of Miller-Rabin.
func (k *RSAPrivateKey) Validate() error {
	if err := k.Public().Validate(); err != nil {
		return err
	}
	if k.D == nil {
		return ErrNoPrivateKey
	}
	if !k.hasCRT() {
		return fmt.Errorf("%w: missing CRT values", ErrInvalidKey)
	}
	one := bigint.NewInt(1)
	if new(bigint.Int).Mul(k.P, k.Q).Cmp(k.N) != 0 {
		return fmt.Errorf("%w: n != p*q", ErrInvalidKey)
	}
	for _, p := range []*bigint.Int{k.P, k.Q} {
		ok, err := modular.IsProbablePrime(p, 20, rand.Reader)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: factor is not prime", ErrInvalidKey)
		}
	}
	pairs := []struct {
		prime, exp *bigint.Int
	}{{k.P, k.DP}, {k.Q, k.DQ}}
	for _, pair := range pairs {
		pm1 := new(bigint.Int).Sub(pair.prime, one)
		de := new(bigint.Int).Mul(k.D, k.E)
		if de.Mod(de, pm1).Cmp(one) != 0 {
			return fmt.Errorf("%w: invalid private exponent", ErrInvalidKey)
		}
		if new(bigint.Int).Mod(k.D, pm1).Cmp(pair.exp) != 0 {
			return fmt.Errorf("%w: invalid CRT exponent", ErrInvalidKey)
		}
	}
	qq := new(bigint.Int).Mul(k.QInv, k.Q)
	if qq.Mod(qq, k.P).Cmp(one) != 0 {
		return fmt.Errorf("%w: invalid CRT coefficient", ErrInvalidKey)
	}
	return nil
}

// Decrypt returns c^d mod n. If the CRT values are present the result is
// computed modulo p and q separately and recombined with Garner's formula.
func (k *RSAPrivateKey) Decrypt(c *bigint.Int) (*bigint.Int, error) {
	if k.N == nil || k.N.Sign() <= 0 {
		return nil, ErrInvalidKey
	}
	if k.D == nil {
		return nil, ErrNoPrivateKey
	}
	if !inRange(c, k.N) {
		return nil, ErrMessageOutOfRange
	}
	if !k.hasCRT() {
		r, err := modular.NewReducer(k.N)
		if err != nil {
			return nil, err
		}
		return power(r, c, k.D)
	}

	rp, err := modular.NewReducer(k.P)
	if err != nil {
		return nil, err
	}
	rq, err := modular.NewReducer(k.Q)
	if err != nil {
		return nil, err
	}
	m1, err := power(rp, c, k.DP)
	if err != nil {
		return nil, err
	}
	m2, err := power(rq, c, k.DQ)
	if err != nil {
		return nil, err
	}
	// h = qInv * (m1 - m2) mod p; m = m2 + h*q
	h := rp.Multiply(k.QInv, new(bigint.Int).Sub(m1, m2))
	m := h.Mul(h, k.Q).Add(h, m2)
	m1.Clear()
	m2.Clear()
	return m, nil
}

// SignRaw returns the signature representative m^d mod n.
func (k *RSAPrivateKey) SignRaw(m *bigint.Int) (*bigint.Int, error) {
	return k.Decrypt(m)
}

// Wipe overwrites the private values of k with zeros. The public part is
// kept.
func (k *RSAPrivateKey) Wipe() {
	for _, x := range []*bigint.Int{k.D, k.P, k.Q, k.DP, k.DQ, k.QInv} {
		if x != nil {
			x.Clear()
		}
	}
	k.D, k.P, k.Q, k.DP, k.DQ, k.QInv = nil, nil, nil, nil, nil, nil
}
