// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pubkey

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/bigint"
)

// ECDSASignature is an ECDSA signature (RFC 3279, section 2.2.3).
//
//	Ecdsa-Sig-Value ::= SEQUENCE {
//	    r  INTEGER,
//	    s  INTEGER }
type ECDSASignature struct {
	R, S *bigint.Int
}

// EncodeInto writes sig.
func (sig *ECDSASignature) EncodeInto(e *ber.Encoder) error {
	e.StartSequence()
	e.EncodeInteger(sig.R)
	e.EncodeInteger(sig.S)
	return e.EndCons()
}

// DecodeFrom reads sig.
func (sig *ECDSASignature) DecodeFrom(d *ber.Decoder) error {
	sig.R, sig.S = new(bigint.Int), new(bigint.Int)
	d.StartSequence()
	d.DecodeInteger(sig.R)
	d.DecodeInteger(sig.S)
	return d.EndCons()
}

// secp256k1N is the order of the secp256k1 group.
var secp256k1N = bigint.MustParse("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

// ToSecp256k1 converts sig into a signature over the secp256k1 curve. Both
// components must be in the range [1, N-1].
func (sig *ECDSASignature) ToSecp256k1() (*ecdsa.Signature, error) {
	var r, s secp256k1.ModNScalar
	for _, c := range []struct {
		v *bigint.Int
		s *secp256k1.ModNScalar
	}{{sig.R, &r}, {sig.S, &s}} {
		if c.v == nil || c.v.Sign() <= 0 || c.v.Cmp(secp256k1N) >= 0 {
			return nil, fmt.Errorf("%w: signature component out of range", ErrInvalidKey)
		}
		b, err := c.v.Encode1363(32)
		if err != nil {
			return nil, err
		}
		if c.s.SetByteSlice(b) {
			return nil, fmt.Errorf("%w: signature component overflows", ErrInvalidKey)
		}
	}
	return ecdsa.NewSignature(&r, &s), nil
}

// ECDSASignatureFromSecp256k1 returns the ASN.1 representation of sig.
func ECDSASignatureFromSecp256k1(sig *ecdsa.Signature) (*ECDSASignature, error) {
	res := new(ECDSASignature)
	if err := ber.Unmarshal(sig.Serialize(), res); err != nil {
		return nil, err
	}
	return res, nil
}
