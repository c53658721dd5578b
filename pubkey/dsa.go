// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pubkey

import (
	"fmt"

	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/bigint"
	"codello.dev/pkcore/modular"
)

// DSAParameters are the domain parameters of DSA (RFC 3279, section 2.3.2).
//
//	Dss-Parms ::= SEQUENCE {
//	    p  INTEGER,
//	    q  INTEGER,
//	    g  INTEGER }
type DSAParameters struct {
	P, Q, G *bigint.Int
}

// EncodeInto writes p.
func (p *DSAParameters) EncodeInto(e *ber.Encoder) error {
	e.StartSequence()
	e.EncodeInteger(p.P)
	e.EncodeInteger(p.Q)
	e.EncodeInteger(p.G)
	return e.EndCons()
}

// DecodeFrom reads p.
func (p *DSAParameters) DecodeFrom(d *ber.Decoder) error {
	p.P, p.Q, p.G = new(bigint.Int), new(bigint.Int), new(bigint.Int)
	d.StartSequence()
	d.DecodeInteger(p.P)
	d.DecodeInteger(p.Q)
	d.DecodeInteger(p.G)
	return d.EndCons()
}

func (p *DSAParameters) validate() error {
	if p.P == nil || p.Q == nil || p.G == nil || p.P.Sign() <= 0 || p.Q.Sign() <= 0 {
		return ErrInvalidKey
	}
	if p.G.Cmp(bigint.NewInt(1)) <= 0 || p.G.Cmp(p.P) >= 0 {
		return ErrInvalidKey
	}
	return nil
}

// DSAPublicKey is a DSA public key. Only Y is part of its encoding
// (DSAPublicKey ::= INTEGER), the parameters are carried in the algorithm
// identifier of a [SubjectPublicKeyInfo].
type DSAPublicKey struct {
	Params DSAParameters
	Y      *bigint.Int
}

// EncodeInto writes the public value of k.
func (k *DSAPublicKey) EncodeInto(e *ber.Encoder) error {
	return e.EncodeInteger(k.Y)
}

// DecodeFrom reads the public value of k.
func (k *DSAPublicKey) DecodeFrom(d *ber.Decoder) error {
	k.Y = new(bigint.Int)
	return d.DecodeInteger(k.Y)
}

// SubjectPublicKeyInfo returns k wrapped for use in X.509 structures.
func (k *DSAPublicKey) SubjectPublicKeyInfo() (*SubjectPublicKeyInfo, error) {
	params, err := ber.Marshal(&k.Params)
	if err != nil {
		return nil, err
	}
	var obj ber.Object
	if err = ber.Unmarshal(params, &obj); err != nil {
		return nil, err
	}
	return wrap(AlgorithmIdentifier{OIDDSA, &obj}, k)
}

// ParseDSAPublicKey returns the DSA key contained in spki.
func ParseDSAPublicKey(spki *SubjectPublicKeyInfo) (*DSAPublicKey, error) {
	k := new(DSAPublicKey)
	if err := spki.unwrap(OIDDSA, k); err != nil {
		return nil, err
	}
	params := spki.Algorithm.Parameters
	if params == nil {
		return nil, fmt.Errorf("%w: missing DSA parameters", ErrInvalidKey)
	}
	b, err := ber.Marshal(params)
	if err != nil {
		return nil, err
	}
	if err = ber.Unmarshal(b, &k.Params); err != nil {
		return nil, err
	}
	return k, nil
}

// Verify reports whether sig is a valid signature of hash under k (FIPS 186-4,
// section 4.7).
func (k *DSAPublicKey) Verify(hash []byte, sig *DSASignature) (bool, error) {
	if err := k.Params.validate(); err != nil {
		return false, err
	}
	if k.Y == nil {
		return false, ErrInvalidKey
	}
	q := k.Params.Q
	if sig.R == nil || sig.S == nil || sig.R.Sign() <= 0 || sig.S.Sign() <= 0 || sig.R.Cmp(q) >= 0 || sig.S.Cmp(q) >= 0 {
		return false, nil
	}
	rp, err := modular.NewReducer(k.Params.P)
	if err != nil {
		return false, err
	}
	rq, err := modular.NewReducer(q)
	if err != nil {
		return false, err
	}
	w, err := modular.InverseMod(sig.S, q)
	if err != nil {
		return false, nil
	}
	z := hashToInt(hash, q)
	u1 := rq.Multiply(z, w)
	u2 := rq.Multiply(sig.R, w)
	gu1, err := power(rp, k.Params.G, u1)
	if err != nil {
		return false, err
	}
	yu2, err := power(rp, k.Y, u2)
	if err != nil {
		return false, err
	}
	v := rq.Reduce(rp.Multiply(gu1, yu2))
	return v.Cmp(sig.R) == 0, nil
}

// DSAPrivateKey is a DSA private key in the format used by OpenSSL.
//
//	DSAPrivateKey ::= SEQUENCE {
//	    version  INTEGER,  -- 0
//	    p        INTEGER,
//	    q        INTEGER,
//	    g        INTEGER,
//	    y        INTEGER,
//	    x        INTEGER }
type DSAPrivateKey struct {
	DSAPublicKey
	X *bigint.Int
}

// EncodeInto writes k.
func (k *DSAPrivateKey) EncodeInto(e *ber.Encoder) error {
	if k.X == nil {
		return ErrNoPrivateKey
	}
	e.StartSequence()
	e.EncodeInt64(0)
	e.EncodeInteger(k.Params.P)
	e.EncodeInteger(k.Params.Q)
	e.EncodeInteger(k.Params.G)
	e.EncodeInteger(k.Y)
	e.EncodeInteger(k.X)
	return e.EndCons()
}

// DecodeFrom reads k.
func (k *DSAPrivateKey) DecodeFrom(d *ber.Decoder) error {
	var version int64
	d.StartSequence()
	if err := d.DecodeInt64(&version); err != nil {
		return err
	}
	if version != 0 {
		return fmt.Errorf("%w: DSA private key version %d", ErrUnsupportedVersion, version)
	}
	fields := []**bigint.Int{&k.Params.P, &k.Params.Q, &k.Params.G, &k.Y, &k.X}
	for _, f := range fields {
		*f = new(bigint.Int)
		d.DecodeInteger(*f)
	}
	return d.EndCons()
}

// Public returns the public part of k.
func (k *DSAPrivateKey) Public() *DSAPublicKey {
	pub := k.DSAPublicKey
	return &pub
}

// Sign signs hash using the per-message secret k (FIPS 186-4, section 4.6).
// The nonce must be unpredictable, unique for each signature and in the range
// [1, q-1]. It is the responsibility of the caller to generate it.
func (k *DSAPrivateKey) Sign(hash []byte, nonce *bigint.Int) (*DSASignature, error) {
	if err := k.Params.validate(); err != nil {
		return nil, err
	}
	if k.X == nil {
		return nil, ErrNoPrivateKey
	}
	q := k.Params.Q
	if nonce == nil || nonce.Sign() <= 0 || nonce.Cmp(q) >= 0 {
		return nil, ErrInvalidNonce
	}
	rp, err := modular.NewReducer(k.Params.P)
	if err != nil {
		return nil, err
	}
	rq, err := modular.NewReducer(q)
	if err != nil {
		return nil, err
	}
	gk, err := power(rp, k.Params.G, nonce)
	if err != nil {
		return nil, err
	}
	r := rq.Reduce(gk)
	kInv, err := modular.InverseMod(nonce, q)
	if err != nil {
		return nil, ErrInvalidNonce
	}
	// s = k^-1 (z + x*r) mod q
	s := rq.Multiply(k.X, r)
	s.Add(s, hashToInt(hash, q))
	s = rq.Multiply(kInv, rq.Reduce(s))
	kInv.Clear()
	if r.IsZero() || s.IsZero() {
		return nil, ErrInvalidNonce
	}
	return &DSASignature{R: r, S: s}, nil
}

// Wipe overwrites the private value of k with zeros.
func (k *DSAPrivateKey) Wipe() {
	if k.X != nil {
		k.X.Clear()
		k.X = nil
	}
}

// DSASignature is a DSA signature (RFC 3279, section 2.2.2).
//
//	Dss-Sig-Value ::= SEQUENCE {
//	    r  INTEGER,
//	    s  INTEGER }
type DSASignature struct {
	R, S *bigint.Int
}

// EncodeInto writes sig.
func (sig *DSASignature) EncodeInto(e *ber.Encoder) error {
	e.StartSequence()
	e.EncodeInteger(sig.R)
	e.EncodeInteger(sig.S)
	return e.EndCons()
}

// DecodeFrom reads sig.
func (sig *DSASignature) DecodeFrom(d *ber.Decoder) error {
	sig.R, sig.S = new(bigint.Int), new(bigint.Int)
	d.StartSequence()
	d.DecodeInteger(sig.R)
	d.DecodeInteger(sig.S)
	return d.EndCons()
}

// hashToInt converts hash to an integer using the leftmost bits of hash up to
// the bit length of q.
func hashToInt(hash []byte, q *bigint.Int) *bigint.Int {
	n := q.BitLen()
	if len(hash) > (n+7)/8 {
		hash = hash[:(n+7)/8]
	}
	z := new(bigint.Int).SetBytes(hash)
	if excess := len(hash)*8 - n; excess > 0 {
		z.Rsh(z, uint(excess))
	}
	return z
}
