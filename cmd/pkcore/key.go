// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/bigint"
	"codello.dev/pkcore/internal/logging"
	"codello.dev/pkcore/pubkey"
)

// errUnknownFormat is returned if no key format matches the input.
var errUnknownFormat = errors.New("unrecognized key format")

func (a *app) newKeyCmd() *cobra.Command {
	var (
		validate bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "key [file...]",
		Short: "Print the contents of a key or signature",
		Long: `Key decodes RSA and DSA keys and DSA or ECDSA signatures and prints
their components. PEM input is identified by its type. For binary input the
supported formats are tried in turn: SubjectPublicKeyInfo, RSA and DSA
private keys, PKCS #1 public keys and signatures. Use --format to select a
format explicitly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := readBlocks(cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, b := range blocks {
				info, err := a.parseKey(b, format)
				if err != nil {
					return fmt.Errorf("%s: %w", b.Name, err)
				}
				info.print(w, b.Name)
				if validate && info.validate != nil {
					if err = info.validate(); err != nil {
						return fmt.Errorf("%s: %w", b.Name, err)
					}
					fmt.Fprintln(w, "  valid")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "check the consistency of the key")
	cmd.Flags().StringVar(&format, "format", "", `input format ("spki", "rsa", "dsa", "rsa-public", "signature")`)
	return cmd
}

type field struct {
	name  string
	value *bigint.Int
}

// keyInfo is the printable form of a key or signature.
type keyInfo struct {
	title    string
	fields   []field
	validate func() error
}

func (k *keyInfo) print(w io.Writer, name string) {
	fmt.Fprintf(w, "%s: %s\n", name, k.title)
	for _, f := range k.fields {
		if f.value != nil {
			fmt.Fprintf(w, "  %s: %s\n", f.name, formatInt(f.value))
		}
	}
}

// keyFormats lists the supported formats in the order they are tried.
var keyFormats = []struct {
	name    string
	pemType string
	parse   func(a *app, data []byte) (*keyInfo, error)
}{
	{"spki", "PUBLIC KEY", (*app).parseSPKI},
	{"rsa", "RSA PRIVATE KEY", (*app).parseRSAPrivate},
	{"dsa", "DSA PRIVATE KEY", (*app).parseDSAPrivate},
	{"rsa-public", "RSA PUBLIC KEY", (*app).parseRSAPublic},
	{"signature", "SIGNATURE", (*app).parseSignature},
}

// parseKey decodes b in the named format. Without a format the PEM type
// selects it or, for binary data, the first format that accepts the data.
func (a *app) parseKey(b block, format string) (*keyInfo, error) {
	if format != "" {
		for _, f := range keyFormats {
			if f.name == format {
				return f.parse(a, b.Data)
			}
		}
		return nil, fmt.Errorf("unknown format %q", format)
	}
	for _, f := range keyFormats {
		if b.Type == f.pemType {
			return f.parse(a, b.Data)
		}
		if b.Type != "" {
			continue
		}
		info, err := f.parse(a, b.Data)
		if err == nil {
			return info, nil
		}
		logging.Debugf("%s: not a %s: %v", b.Name, f.pemType, err)
	}
	if b.Type != "" {
		return nil, fmt.Errorf("unsupported PEM type %q", b.Type)
	}
	return nil, errUnknownFormat
}

func (a *app) unmarshal(data []byte, x ber.Unmarshaler) error {
	if a.cfg.Decode.Strict {
		return ber.Unmarshal(data, x)
	}
	return ber.UnmarshalBER(data, x)
}

func (a *app) parseSPKI(data []byte) (*keyInfo, error) {
	var spki pubkey.SubjectPublicKeyInfo
	if err := a.unmarshal(data, &spki); err != nil {
		return nil, err
	}
	switch {
	case spki.Algorithm.Algorithm.Equal(pubkey.OIDRSAEncryption):
		k, err := pubkey.ParseRSAPublicKey(&spki)
		if err != nil {
			return nil, err
		}
		return rsaPublicInfo(k), nil
	case spki.Algorithm.Algorithm.Equal(pubkey.OIDDSA):
		k, err := pubkey.ParseDSAPublicKey(&spki)
		if err != nil {
			return nil, err
		}
		return &keyInfo{
			title: fmt.Sprintf("DSA public key (%d bits)", k.Params.P.BitLen()),
			fields: []field{
				{"p", k.Params.P}, {"q", k.Params.Q}, {"g", k.Params.G}, {"y", k.Y},
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", pubkey.ErrUnknownAlgorithm, spki.Algorithm.Algorithm)
}

func (a *app) parseRSAPublic(data []byte) (*keyInfo, error) {
	var k pubkey.RSAPublicKey
	if err := a.unmarshal(data, &k); err != nil {
		return nil, err
	}
	return rsaPublicInfo(&k), nil
}

func rsaPublicInfo(k *pubkey.RSAPublicKey) *keyInfo {
	return &keyInfo{
		title:    fmt.Sprintf("RSA public key (%d bits)", k.N.BitLen()),
		fields:   []field{{"n", k.N}, {"e", k.E}},
		validate: k.Validate,
	}
}

func (a *app) parseRSAPrivate(data []byte) (*keyInfo, error) {
	var k pubkey.RSAPrivateKey
	if err := a.unmarshal(data, &k); err != nil {
		return nil, err
	}
	return &keyInfo{
		title: fmt.Sprintf("RSA private key (%d bits)", k.N.BitLen()),
		fields: []field{
			{"n", k.N}, {"e", k.E}, {"d", k.D}, {"p", k.P}, {"q", k.Q},
			{"dp", k.DP}, {"dq", k.DQ}, {"qinv", k.QInv},
		},
		validate: k.Validate,
	}, nil
}

func (a *app) parseDSAPrivate(data []byte) (*keyInfo, error) {
	var k pubkey.DSAPrivateKey
	if err := a.unmarshal(data, &k); err != nil {
		return nil, err
	}
	return &keyInfo{
		title: fmt.Sprintf("DSA private key (%d bits)", k.Params.P.BitLen()),
		fields: []field{
			{"p", k.Params.P}, {"q", k.Params.Q}, {"g", k.Params.G}, {"y", k.Y}, {"x", k.X},
		},
	}, nil
}

// parseSignature decodes a DSA or ECDSA signature. Both use the same
// structure.
func (a *app) parseSignature(data []byte) (*keyInfo, error) {
	var sig pubkey.ECDSASignature
	if err := a.unmarshal(data, &sig); err != nil {
		return nil, err
	}
	info := &keyInfo{
		title:  "signature",
		fields: []field{{"r", sig.R}, {"s", sig.S}},
	}
	if _, err := sig.ToSecp256k1(); err == nil {
		info.title = "signature (valid secp256k1 range)"
	}
	return info, nil
}
