// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pubkey implements the ASN.1 structures of common public-key formats
// together with the raw RSA and DSA primitives.
//
// All types implement [ber.Marshaler] and [ber.Unmarshaler] so they can be
// encoded with [ber.Marshal] and decoded with [ber.Unmarshal]:
//
//	var key pubkey.RSAPublicKey
//	if err := ber.Unmarshal(der, &key); err != nil {
//		return err
//	}
//	c, err := key.Encrypt(m)
//
// The primitives operate on integers. Padding schemes and hashing are the
// responsibility of the caller.
package pubkey

import (
	"errors"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/bigint"
	"codello.dev/pkcore/modular"
)

var (
	// ErrMessageOutOfRange indicates an input that is negative or not smaller
	// than the modulus.
	ErrMessageOutOfRange = errors.New("pubkey: message out of range")
	// ErrNoPrivateKey is returned by private-key operations on a key without
	// private material.
	ErrNoPrivateKey = errors.New("pubkey: key has no private material")
	// ErrInvalidKey indicates a key that fails validation.
	ErrInvalidKey = errors.New("pubkey: invalid key")
	// ErrUnsupportedVersion indicates a key structure with an unknown version,
	// for example a multi-prime RSA key.
	ErrUnsupportedVersion = errors.New("pubkey: unsupported key version")
	// ErrUnknownAlgorithm is returned if an algorithm identifier does not
	// match the requested key type.
	ErrUnknownAlgorithm = errors.New("pubkey: unknown algorithm")
	// ErrInvalidNonce is returned by [DSAPrivateKey.Sign] if the nonce is not
	// in the range [1, q-1] or produces a zero signature component.
	ErrInvalidNonce = errors.New("pubkey: invalid nonce")
)

// Algorithm identifiers.
var (
	OIDRSAEncryption = asn1.MustParseOID("1.2.840.113549.1.1.1")
	OIDDSA           = asn1.MustParseOID("1.2.840.10040.4.1")
	OIDECPublicKey   = asn1.MustParseOID("1.2.840.10045.2.1")
	OIDSecp256k1     = asn1.MustParseOID("1.3.132.0.10")
)

// AlgorithmIdentifier identifies the algorithm of a key (RFC 5280,
// section 4.1.1.2).
//
//	AlgorithmIdentifier ::= SEQUENCE {
//	    algorithm   OBJECT IDENTIFIER,
//	    parameters  ANY DEFINED BY algorithm OPTIONAL }
type AlgorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters *ber.Object // nil if absent
}

// EncodeInto writes a.
func (a *AlgorithmIdentifier) EncodeInto(e *ber.Encoder) error {
	e.StartSequence()
	e.EncodeOID(a.Algorithm)
	if a.Parameters != nil {
		e.Encode(a.Parameters)
	}
	return e.EndCons()
}

// DecodeFrom reads a.
func (a *AlgorithmIdentifier) DecodeFrom(d *ber.Decoder) error {
	d.StartSequence()
	d.DecodeOID(&a.Algorithm)
	a.Parameters = nil
	if d.MoreItems() {
		a.Parameters = new(ber.Object)
		d.Decode(a.Parameters)
	}
	return d.EndCons()
}

// nullParameters is the NULL value used as parameters of rsaEncryption.
func nullParameters() *ber.Object {
	return &ber.Object{Tag: asn1.Universal(asn1.TagNull)}
}

// SubjectPublicKeyInfo is the public key structure of X.509 certificates
// (RFC 5280, section 4.1).
//
//	SubjectPublicKeyInfo ::= SEQUENCE {
//	    algorithm         AlgorithmIdentifier,
//	    subjectPublicKey  BIT STRING }
type SubjectPublicKeyInfo struct {
	Algorithm AlgorithmIdentifier
	PublicKey asn1.BitString
}

// EncodeInto writes spki.
func (spki *SubjectPublicKeyInfo) EncodeInto(e *ber.Encoder) error {
	e.StartSequence()
	e.Encode(&spki.Algorithm)
	e.EncodeBitString(spki.PublicKey)
	return e.EndCons()
}

// DecodeFrom reads spki.
func (spki *SubjectPublicKeyInfo) DecodeFrom(d *ber.Decoder) error {
	d.StartSequence()
	d.Decode(&spki.Algorithm)
	d.DecodeBitString(&spki.PublicKey)
	return d.EndCons()
}

// wrap returns a SubjectPublicKeyInfo holding the DER encoding of key.
func wrap(alg AlgorithmIdentifier, key ber.Marshaler) (*SubjectPublicKeyInfo, error) {
	b, err := ber.Marshal(key)
	if err != nil {
		return nil, err
	}
	return &SubjectPublicKeyInfo{alg, asn1.NewBitString(b)}, nil
}

// unwrap decodes the key in spki into key after verifying the algorithm.
func (spki *SubjectPublicKeyInfo) unwrap(alg asn1.ObjectIdentifier, key ber.Unmarshaler) error {
	if !spki.Algorithm.Algorithm.Equal(alg) {
		return ErrUnknownAlgorithm
	}
	if spki.PublicKey.Padding() != 0 {
		return ErrInvalidKey
	}
	return ber.Unmarshal(spki.PublicKey.Bytes, key)
}

// power returns b^e modulo the modulus of r.
func power(r *modular.Reducer, b, e *bigint.Int) (*bigint.Int, error) {
	x, err := modular.NewFixedWindowExp(r, 0)
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

// inRange reports whether 0 <= x < m.
func inRange(x, m *bigint.Int) bool {
	return x.Sign() >= 0 && x.Cmp(m) < 0
}
