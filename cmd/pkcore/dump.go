// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/asn1/tlv"
	"codello.dev/pkcore/bigint"
	"codello.dev/pkcore/pubkey"
)

func (a *app) newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [file...]",
		Short: "Print the structure of BER encoded data",
		Long: `Dump prints every data value of the input together with its offset,
tag and length. Primitive values of well-known types are decoded. Input is
read from the named files or from standard input and may be PEM or binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := readBlocks(cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, b := range blocks {
				if i > 0 {
					fmt.Fprintln(w)
				}
				if b.Type != "" {
					fmt.Fprintf(w, "%s: %s\n", b.Name, b.Type)
				}
				p := &dumper{
					w:        w,
					d:        a.newDecoder(b),
					maxDepth: a.cfg.Dump.MaxDepth,
					offsets:  a.cfg.Dump.ShowOffsets,
				}
				if err = p.dump(); err != nil {
					return fmt.Errorf("%s: %w", b.Name, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("max-depth", 64, "number of nested levels to expand")
	cmd.Flags().Bool("offsets", true, "print the offset of each data value")
	return cmd
}

// dumper prints the data values of a decoder.
type dumper struct {
	w        io.Writer
	d        *ber.Decoder
	maxDepth int
	offsets  bool
}

func (p *dumper) dump() error {
	for p.d.MoreItems() {
		if err := p.value(); err != nil {
			return err
		}
	}
	return p.d.Close()
}

// value prints the next data value and, for constructed values, its contents.
func (p *dumper) value() error {
	offset := p.d.Offset()
	h, err := p.d.PeekHeader()
	if err != nil {
		return err
	}
	p.line(offset, h)

	if h.Constructed {
		if p.d.Depth() >= p.maxDepth {
			obj, err := p.d.ReadObject()
			if err != nil {
				return err
			}
			fmt.Fprintf(p.w, " {%d bytes}\n", len(obj.Value))
			return nil
		}
		fmt.Fprintln(p.w)
		p.d.StartCons(h.Tag)
		for p.d.MoreItems() {
			if err = p.value(); err != nil {
				return err
			}
		}
		return p.d.EndCons()
	}

	s, err := p.describe(h.Tag)
	if err != nil {
		return err
	}
	if s != "" {
		fmt.Fprint(p.w, " ", s)
	}
	fmt.Fprintln(p.w)
	return nil
}

func (p *dumper) line(offset int, h tlv.Header) {
	if p.offsets {
		fmt.Fprintf(p.w, "%5d: ", offset)
	}
	length := "indefinite"
	if h.Length != tlv.LengthIndefinite {
		length = fmt.Sprintf("%d", h.Length)
	}
	fmt.Fprintf(p.w, "%s%s (%s)", strings.Repeat("  ", p.d.Depth()), h.Tag.Name(), length)
}

// describe decodes the next primitive value and returns a printable form.
func (p *dumper) describe(tag asn1.Tag) (string, error) {
	if tag.Class != asn1.ClassUniversal {
		obj, err := p.d.ReadObject()
		return hexString(obj.Value), err
	}
	switch tag.Number {
	case asn1.TagBoolean:
		var v bool
		err := p.d.DecodeBoolean(&v)
		return fmt.Sprint(v), err
	case asn1.TagInteger:
		var z bigint.Int
		err := p.d.DecodeInteger(&z)
		return formatInt(&z), err
	case asn1.TagEnumerated:
		var v asn1.Enumerated
		err := p.d.DecodeEnumerated(&v)
		return fmt.Sprint(int64(v)), err
	case asn1.TagNull:
		return "", p.d.DecodeNull()
	case asn1.TagOID:
		var oid asn1.ObjectIdentifier
		if err := p.d.DecodeOID(&oid); err != nil {
			return "", err
		}
		if name, ok := oidNames[oid.String()]; ok {
			return oid.String() + " (" + name + ")", nil
		}
		return oid.String(), nil
	case asn1.TagBitString:
		var bs asn1.BitString
		err := p.d.DecodeBitString(&bs)
		return fmt.Sprintf("%d unused bits %s", bs.Padding(), hexString(bs.Bytes)), err
	case asn1.TagOctetString:
		var b []byte
		err := p.d.DecodeOctetString(&b)
		return hexString(b), err
	case asn1.TagUTF8String, asn1.TagNumericString, asn1.TagPrintableString,
		asn1.TagTeletexString, asn1.TagIA5String, asn1.TagVisibleString,
		asn1.TagBMPString:
		var s string
		err := p.d.DecodeString(&s)
		return fmt.Sprintf("%q", s), err
	case asn1.TagUTCTime, asn1.TagGeneralizedTime:
		var t time.Time
		err := p.d.DecodeTime(&t)
		return t.Format(time.RFC3339Nano), err
	}
	obj, err := p.d.ReadObject()
	return hexString(obj.Value), err
}

// oidNames holds names for the object identifiers known to this module.
var oidNames = map[string]string{
	pubkey.OIDRSAEncryption.String(): "rsaEncryption",
	pubkey.OIDDSA.String():           "dsa",
	pubkey.OIDECPublicKey.String():   "ecPublicKey",
	pubkey.OIDSecp256k1.String():     "secp256k1",
}

// formatInt prints small integers in decimal and large ones in hexadecimal.
func formatInt(z *bigint.Int) string {
	if z.BitLen() <= 64 {
		return z.String()
	}
	sign := ""
	if z.Sign() < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s0x%s (%d bits)", sign, new(bigint.Int).Abs(z).Text(16), z.BitLen())
}

// hexString formats b as hexadecimal, shortening long values.
func hexString(b []byte) string {
	const limit = 32
	if len(b) > limit {
		return fmt.Sprintf("% X ... (%d bytes)", b[:limit], len(b))
	}
	return fmt.Sprintf("% X", b)
}
