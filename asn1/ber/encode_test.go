// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/bigint"
)

func ExampleEncoder() {
	e := NewEncoder()
	e.StartSequence()
	e.EncodeInt64(-1)
	e.EncodeInt64(128)
	e.EncodeOID(asn1.MustParseOID("1.2.840.113549.1.1.1"))
	e.EndCons()
	b, _ := e.Bytes()
	fmt.Printf("% X\n", b)
	// Output: 30 12 02 01 FF 02 02 00 80 06 09 2A 86 48 86 F7 0D 01 01 01
}

func TestEncoder_EncodeInteger(t *testing.T) {
	tests := map[string]struct {
		val  string
		want []byte
	}{
		"Zero":        {"0", []byte{0x02, 0x01, 0x00}},
		"One":         {"1", []byte{0x02, 0x01, 0x01}},
		"127":         {"127", []byte{0x02, 0x01, 0x7F}},
		"128":         {"128", []byte{0x02, 0x02, 0x00, 0x80}},
		"256":         {"256", []byte{0x02, 0x02, 0x01, 0x00}},
		"MinusOne":    {"-1", []byte{0x02, 0x01, 0xFF}},
		"Minus128":    {"-128", []byte{0x02, 0x01, 0x80}},
		"Minus129":    {"-129", []byte{0x02, 0x02, 0xFF, 0x7F}},
		"Minus256":    {"-256", []byte{0x02, 0x02, 0xFF, 0x00}},
		"MaxUint64":   {"18446744073709551615", []byte{0x02, 0x09, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		"MinusTwo64":  {"-18446744073709551616", []byte{0x02, 0x09, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		"MultiWord":   {"0x0102030405060708090a", []byte{0x02, 0x0A, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}},
		"TopBitWords": {"0x800000000000000000", []byte{0x02, 0x0A, 0x00, 0x80, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := NewEncoder()
			if err := e.EncodeInteger(bigint.MustParse(tt.val)); err != nil {
				t.Fatalf("EncodeInteger(%s) error = %v", tt.val, err)
			}
			got, err := e.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeInteger(%s) = % X, want % X", tt.val, got, tt.want)
			}

			var z bigint.Int
			d := NewDecoder(got)
			d.SetStrict(true)
			if err = d.DecodeInteger(&z); err != nil {
				t.Fatalf("DecodeInteger(% X) error = %v", got, err)
			}
			if z.Cmp(bigint.MustParse(tt.val)) != 0 {
				t.Errorf("DecodeInteger(% X) = %s, want %s", got, &z, tt.val)
			}
		})
	}
}

func TestEncoder_Primitives(t *testing.T) {
	tests := map[string]struct {
		enc  func(e *Encoder) error
		want []byte
	}{
		"True":       {func(e *Encoder) error { return e.EncodeBoolean(true) }, []byte{0x01, 0x01, 0xFF}},
		"False":      {func(e *Encoder) error { return e.EncodeBoolean(false) }, []byte{0x01, 0x01, 0x00}},
		"Null":       {func(e *Encoder) error { return e.EncodeNull() }, []byte{0x05, 0x00}},
		"Enumerated": {func(e *Encoder) error { return e.EncodeEnumerated(3) }, []byte{0x0A, 0x01, 0x03}},
		"OctetString": {
			func(e *Encoder) error { return e.EncodeOctetString([]byte("abc")) },
			[]byte{0x04, 0x03, 'a', 'b', 'c'},
		},
		"EmptyOctetString": {func(e *Encoder) error { return e.EncodeOctetString(nil) }, []byte{0x04, 0x00}},
		"ImplicitOctetString": {
			func(e *Encoder) error { return e.EncodeOctetStringTag([]byte{1}, asn1.ContextSpecific(2)) },
			[]byte{0x82, 0x01, 0x01},
		},
		"BitString": {
			func(e *Encoder) error { return e.EncodeBitString(asn1.BitString{Bytes: []byte{0xB5, 0xFF}, BitLength: 10}) },
			[]byte{0x03, 0x03, 0x06, 0xB5, 0xC0},
		},
		"EmptyBitString": {func(e *Encoder) error { return e.EncodeBitString(asn1.BitString{}) }, []byte{0x03, 0x01, 0x00}},
		"OID": {
			func(e *Encoder) error { return e.EncodeOID(asn1.MustParseOID("1.2.840.113549.1.1.1")) },
			[]byte{0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x01},
		},
		"OIDJointISO": {
			func(e *Encoder) error { return e.EncodeOID(asn1.MustParseOID("2.999.3")) },
			[]byte{0x06, 0x03, 0x88, 0x37, 0x03},
		},
		"PrintableString": {
			func(e *Encoder) error { return e.EncodeString("Hi", asn1.Universal(asn1.TagPrintableString)) },
			[]byte{0x13, 0x02, 'H', 'i'},
		},
		"BMPString": {
			func(e *Encoder) error { return e.EncodeString("aé", asn1.Universal(asn1.TagBMPString)) },
			[]byte{0x1E, 0x04, 0x00, 'a', 0x00, 0xE9},
		},
		"UTCTime": {
			func(e *Encoder) error { return e.EncodeTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) },
			append([]byte{0x17, 0x0D}, "240102030405Z"...),
		},
		"GeneralizedTime": {
			func(e *Encoder) error { return e.EncodeTime(time.Date(2050, 1, 2, 3, 4, 5, 0, time.UTC)) },
			append([]byte{0x18, 0x0F}, "20500102030405Z"...),
		},
		"HighTag": {
			func(e *Encoder) error { return e.AddObject(asn1.ContextSpecific(173), false, []byte{1}) },
			[]byte{0xBF, 0x81, 0x2D, 0x01, 0x01},
		},
		"Raw": {
			func(e *Encoder) error { return e.AddRaw([]byte{0x05, 0x00, 0x02, 0x01, 0x01}) },
			[]byte{0x05, 0x00, 0x02, 0x01, 0x01},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := NewEncoder()
			if err := tt.enc(e); err != nil {
				t.Fatalf("encode error = %v", err)
			}
			got, err := e.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("encoding = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncoder_Constructed(t *testing.T) {
	e := NewEncoder()
	e.StartSequence()
	e.StartExplicit(0)
	e.EncodeInt64(2)
	e.EndCons()
	e.StartSet()
	e.EncodeOctetString([]byte{0xAA})
	e.EncodeInt64(300)
	e.EncodeInt64(5)
	e.EndCons()
	e.StartCons(asn1.Application(31))
	e.EndCons()
	if err := e.EndCons(); err != nil {
		t.Fatalf("EndCons() error = %v", err)
	}
	got, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	want := []byte{
		0x30, 0x15,
		0xA0, 0x03, 0x02, 0x01, 0x02,
		0x31, 0x0A, 0x02, 0x01, 0x05, 0x02, 0x02, 0x01, 0x2C, 0x04, 0x01, 0xAA,
		0x7F, 0x1F, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("encoding = % X, want % X", got, want)
	}
}

func TestEncoder_LongLength(t *testing.T) {
	e := NewEncoder()
	e.StartSequence()
	e.EncodeOctetString(make([]byte, 300))
	e.EndCons()
	got, _ := e.Bytes()
	if want := []byte{0x30, 0x82, 0x01, 0x30, 0x04, 0x82, 0x01, 0x2C}; !bytes.HasPrefix(got, want) {
		t.Errorf("encoding starts with % X, want % X", got[:8], want)
	}
	if len(got) != 304 {
		t.Errorf("len(encoding) = %d, want 304", len(got))
	}
}

func TestEncoder_Errors(t *testing.T) {
	tests := map[string]struct {
		enc     func(e *Encoder)
		wantErr error
	}{
		"UnmatchedEnd": {func(e *Encoder) { e.EndCons() }, ErrUnmatchedEnd},
		"Unclosed":     {func(e *Encoder) { e.StartSequence() }, ErrUnclosedCons},
		"InvalidOID":   {func(e *Encoder) { e.EncodeOID(asn1.ObjectIdentifier{3, 1}) }, errInvalidOID},
		"ShortOID":     {func(e *Encoder) { e.EncodeOID(asn1.ObjectIdentifier{1}) }, errInvalidOID},
		"NilInteger":   {func(e *Encoder) { e.EncodeInteger(nil) }, errNilInteger},
		"BadString": {
			func(e *Encoder) { e.EncodeString("a@b", asn1.Universal(asn1.TagPrintableString)) },
			errInvalidString,
		},
		"BadBitString": {
			func(e *Encoder) { e.EncodeBitString(asn1.BitString{Bytes: []byte{1, 2}, BitLength: 3}) },
			nil,
		},
		"BadRaw": {func(e *Encoder) { e.AddRaw([]byte{0x30, 0x05}) }, nil},
		"Sticky": {
			func(e *Encoder) {
				e.EndCons()
				e.StartSequence()
				e.EndCons()
			},
			ErrUnmatchedEnd,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := NewEncoder()
			tt.enc(e)
			_, err := e.Bytes()
			if err == nil {
				t.Fatalf("Bytes() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Bytes() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncoder_EncodeIf(t *testing.T) {
	for _, cond := range []bool{false, true} {
		e := NewEncoder()
		e.StartSequence()
		e.EncodeIf(cond, func(e *Encoder) error {
			e.StartExplicit(1)
			e.EncodeBoolean(true)
			return e.EndCons()
		})
		e.EncodeNull()
		e.EndCons()
		got, err := e.Bytes()
		if err != nil {
			t.Fatalf("Bytes() error = %v", err)
		}
		want := []byte{0x30, 0x02, 0x05, 0x00}
		if cond {
			want = []byte{0x30, 0x07, 0xA1, 0x03, 0x01, 0x01, 0xFF, 0x05, 0x00}
		}
		if !bytes.Equal(got, want) {
			t.Errorf("EncodeIf(%v) = % X, want % X", cond, got, want)
		}
	}
}

func TestEncoder_EncodeOptional(t *testing.T) {
	def := &Object{Tag: asn1.Universal(asn1.TagInteger), Value: []byte{0x00}}
	e := NewEncoder()
	e.EncodeOptional(&Object{Tag: asn1.Universal(asn1.TagInteger), Value: []byte{0x00}}, def)
	e.EncodeOptional(&Object{Tag: asn1.Universal(asn1.TagInteger), Value: []byte{0x01}}, def)
	got, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if want := []byte{0x02, 0x01, 0x01}; !bytes.Equal(got, want) {
		t.Errorf("EncodeOptional() = % X, want % X", got, want)
	}
}

func TestEncoder_WriteTo(t *testing.T) {
	e := NewEncoder()
	e.EncodeNull()
	var buf bytes.Buffer
	n, err := e.WriteTo(&buf)
	if err != nil || n != 2 {
		t.Fatalf("WriteTo() = %d, %v, want 2, nil", n, err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{0x05, 0x00}) {
		t.Errorf("WriteTo() wrote % X", got)
	}
}

func TestEncoder_Wipe(t *testing.T) {
	e := NewEncoder()
	e.EncodeOctetString([]byte("secret"))
	e.StartSequence()
	e.EncodeOctetString([]byte("key"))
	b := e.buf[:cap(e.buf)]
	scratch := e.stack[0].buf[:cap(e.stack[0].buf)]
	e.Wipe()
	if slices.ContainsFunc(b, func(c byte) bool { return c != 0 }) {
		t.Errorf("Wipe() left output data % X", b)
	}
	if slices.ContainsFunc(scratch, func(c byte) bool { return c != 0 }) {
		t.Errorf("Wipe() left scratch data % X", scratch)
	}
	if got, err := e.Bytes(); err != nil || len(got) != 0 {
		t.Errorf("Bytes() after Wipe() = % X, %v", got, err)
	}
}
