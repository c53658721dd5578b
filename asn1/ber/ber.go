// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ber implements decoding of the ASN.1 Basic Encoding Rules (BER) and
// encoding using the Distinguished Encoding Rules (DER). Both are defined in
// [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// A [Decoder] is a cursor over an in-memory buffer. Constructed values are
// entered with [Decoder.StartCons] and left with [Decoder.EndCons]. Primitive
// values are read with typed methods such as [Decoder.DecodeInteger]:
//
//	d := ber.NewDecoder(data)
//	d.StartSequence()
//	d.DecodeInteger(n)
//	d.DecodeInteger(e)
//	d.EndCons()
//	err := d.VerifyEnd()
//
// An [Encoder] works the other way around. Contents of constructed values are
// collected in scratch buffers until [Encoder.EndCons] prepends the header with
// the now known length. The output is always valid DER.
//
// Both types keep the first error they encounter. After an error every method
// returns that same error, so a sequence of calls can be checked once at the
// end.
//
// Types that know how to encode and decode themselves implement [Marshaler]
// and [Unmarshaler]. The functions [Marshal], [Unmarshal] and [UnmarshalBER]
// wrap a single value.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package ber

import (
	"fmt"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/asn1/tlv"
)

// Marshaler is implemented by types that can write their own DER encoding.
type Marshaler interface {
	EncodeInto(e *Encoder) error
}

// Unmarshaler is implemented by types that can read themselves from a BER
// encoding. Implementations consume exactly the data values they represent.
type Unmarshaler interface {
	DecodeFrom(d *Decoder) error
}

// Codec combines [Marshaler] and [Unmarshaler].
type Codec interface {
	Marshaler
	Unmarshaler
}

var (
	tagBoolean         = asn1.Universal(asn1.TagBoolean)
	tagInteger         = asn1.Universal(asn1.TagInteger)
	tagBitString       = asn1.Universal(asn1.TagBitString)
	tagOctetString     = asn1.Universal(asn1.TagOctetString)
	tagNull            = asn1.Universal(asn1.TagNull)
	tagOID             = asn1.Universal(asn1.TagOID)
	tagEnumerated      = asn1.Universal(asn1.TagEnumerated)
	tagSequence        = asn1.Universal(asn1.TagSequence)
	tagSet             = asn1.Universal(asn1.TagSet)
	tagUTCTime         = asn1.Universal(asn1.TagUTCTime)
	tagGeneralizedTime = asn1.Universal(asn1.TagGeneralizedTime)
)

// Object is a single data value whose contents have not been interpreted. It
// is the result of [Decoder.ReadObject]. Value holds the contents octets. For
// values using the indefinite-length form the end-of-contents marker is not
// part of Value.
//
// Object implements [Codec], so it can stand in for any value that should be
// passed through unchanged.
type Object struct {
	Tag         asn1.Tag
	Constructed bool
	Value       []byte
}

// Header returns the DER header of o.
func (o Object) Header() tlv.Header {
	return tlv.Header{Tag: o.Tag, Constructed: o.Constructed, Length: len(o.Value)}
}

// Is reports whether o has the given tag and form.
func (o Object) Is(tag asn1.Tag, constructed bool) bool {
	return o.Tag == tag && o.Constructed == constructed
}

// String returns a short description of o. The contents are only included if
// they are short.
func (o Object) String() string {
	form := "primitive"
	if o.Constructed {
		form = "constructed"
	}
	if len(o.Value) > 24 {
		return fmt.Sprintf("Object{%s (%s) {%d bytes}}", o.Tag.Name(), form, len(o.Value))
	}
	return fmt.Sprintf("Object{%s (%s) {% X}}", o.Tag.Name(), form, o.Value)
}

// EncodeInto writes o unchanged.
func (o *Object) EncodeInto(e *Encoder) error {
	return e.AddObject(o.Tag, o.Constructed, o.Value)
}

// DecodeFrom reads the next data value into o.
func (o *Object) DecodeFrom(d *Decoder) error {
	obj, err := d.ReadObject()
	if err != nil {
		return err
	}
	*o = obj
	return nil
}

// Marshal returns the DER encoding of x.
func Marshal(x Marshaler) ([]byte, error) {
	e := NewEncoder()
	if err := e.Encode(x); err != nil {
		return nil, err
	}
	return e.Bytes()
}

// Unmarshal decodes the DER encoding b into x. The input must be valid DER and
// must be consumed completely.
func Unmarshal(b []byte, x Unmarshaler) error {
	d := NewDecoder(b)
	d.SetStrict(true)
	d.Decode(x)
	return d.Close()
}

// UnmarshalBER works like [Unmarshal] but accepts any valid BER encoding.
func UnmarshalBER(b []byte, x Unmarshaler) error {
	d := NewDecoder(b)
	d.Decode(x)
	return d.Close()
}
