// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pubkey

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/bigint"
)

func TestECDSASignature_Secp256k1(t *testing.T) {
	seed := sha256.Sum256([]byte("pkcore secp256k1 test key"))
	priv := secp256k1.PrivKeyFromBytes(seed[:])
	for _, msg := range []string{"", "hello", "a somewhat longer message to sign"} {
		t.Run(msg, func(t *testing.T) {
			hash := sha256.Sum256([]byte(msg))
			ref := ecdsa.Sign(priv, hash[:])

			sig, err := ECDSASignatureFromSecp256k1(ref)
			if err != nil {
				t.Fatalf("ECDSASignatureFromSecp256k1() error = %v", err)
			}
			der, err := ber.Marshal(sig)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if want := ref.Serialize(); !bytes.Equal(der, want) {
				t.Errorf("Marshal() = % X, want % X", der, want)
			}
			if _, err = ecdsa.ParseDERSignature(der); err != nil {
				t.Errorf("ecdsa.ParseDERSignature() error = %v", err)
			}

			back, err := sig.ToSecp256k1()
			if err != nil {
				t.Fatalf("ToSecp256k1() error = %v", err)
			}
			if !back.Verify(hash[:], priv.PubKey()) {
				t.Errorf("Verify() rejected converted signature")
			}
			if !back.IsEqual(ref) {
				t.Errorf("ToSecp256k1() = %v, want %v", back, ref)
			}
		})
	}
}

func TestECDSASignature_ToSecp256k1Range(t *testing.T) {
	tests := map[string]*ECDSASignature{
		"ZeroR":    {R: bigint.NewInt(0), S: bigint.NewInt(1)},
		"NegS":     {R: bigint.NewInt(1), S: bigint.NewInt(-1)},
		"R=N":      {R: secp256k1N, S: bigint.NewInt(1)},
		"HugeS":    {R: bigint.NewInt(1), S: new(bigint.Int).PowerOf2(300)},
		"MissingS": {R: bigint.NewInt(1)},
	}
	for name, sig := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := sig.ToSecp256k1(); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ToSecp256k1() error = %v, want %v", err, ErrInvalidKey)
			}
		})
	}
}
