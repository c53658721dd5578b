// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"time"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/asn1/tlv"
	"codello.dev/pkcore/bigint"
)

// consFrame collects the contents of an open constructed value.
type consFrame struct {
	tag asn1.Tag
	set bool // sort contents on EndCons
	buf []byte
}

// An Encoder produces DER encodings. The contents of constructed values are
// collected in a stack of scratch buffers. [Encoder.EndCons] prepends the
// header once the length is known and appends the result to the enclosing
// buffer.
//
// The zero value is ready to use. An Encoder must not be used concurrently.
type Encoder struct {
	buf   []byte
	stack []consFrame
	err   error
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Err returns the first error encountered by e.
func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// out returns the buffer receiving the next data value.
func (e *Encoder) out() *[]byte {
	if n := len(e.stack); n > 0 {
		return &e.stack[n-1].buf
	}
	return &e.buf
}

// Bytes returns the encoded data. The result is only valid if all
// constructed values have been ended. The returned slice shares memory with
// e until the next call that modifies e.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if len(e.stack) > 0 {
		return nil, ErrUnclosedCons
	}
	return e.buf, nil
}

// WriteTo writes the encoded data to w. It implements [io.WriterTo].
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	b, err := e.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Wipe overwrites all buffers of e with zeros and resets e. It should be
// called after encoding secret values.
func (e *Encoder) Wipe() {
	clear(e.buf[:cap(e.buf)])
	for i := range e.stack {
		clear(e.stack[i].buf[:cap(e.stack[i].buf)])
	}
	e.buf = e.buf[:0]
	e.stack = e.stack[:0]
	e.err = nil
}

//region constructed values

// StartCons begins a constructed value with the given tag. Data values encoded
// until the matching [Encoder.EndCons] form its contents.
func (e *Encoder) StartCons(tag asn1.Tag) error {
	if e.err != nil {
		return e.err
	}
	e.stack = append(e.stack, consFrame{tag: tag, set: tag == tagSet})
	return nil
}

// StartSequence begins a SEQUENCE.
func (e *Encoder) StartSequence() error {
	return e.StartCons(tagSequence)
}

// StartSet begins a SET. The contents are sorted by their encodings as
// required for SET OF in DER.
func (e *Encoder) StartSet() error {
	return e.StartCons(tagSet)
}

// StartExplicit begins the explicit tagging [n] of a context-specific tag.
func (e *Encoder) StartExplicit(n uint) error {
	return e.StartCons(asn1.ContextSpecific(n))
}

// EndCons ends the innermost constructed value.
func (e *Encoder) EndCons() error {
	if e.err != nil {
		return e.err
	}
	if len(e.stack) == 0 {
		return e.fail(ErrUnmatchedEnd)
	}
	f := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	contents := f.buf
	if f.set {
		var err error
		if contents, err = sortSet(contents); err != nil {
			return e.fail(&EncodeError{Tag: f.tag, Err: err})
		}
	}
	out := e.out()
	*out = tlv.AppendHeader(*out, tlv.Header{Tag: f.tag, Constructed: true, Length: len(contents)})
	*out = append(*out, contents...)
	clear(f.buf)
	return nil
}

// sortSet returns the data values in b sorted by their encodings.
func sortSet(b []byte) ([]byte, error) {
	var items [][]byte
	for rest := b; len(rest) > 0; {
		_, _, r, err := tlv.SplitDER(rest)
		if err != nil {
			return nil, err
		}
		items = append(items, rest[:len(rest)-len(r)])
		rest = r
	}
	slices.SortFunc(items, bytes.Compare)
	sorted := make([]byte, 0, len(b))
	for _, item := range items {
		sorted = append(sorted, item...)
	}
	return sorted, nil
}

// Encode lets x encode itself into e.
func (e *Encoder) Encode(x Marshaler) error {
	if e.err != nil {
		return e.err
	}
	if err := x.EncodeInto(e); err != nil {
		return e.fail(err)
	}
	return e.err
}

// EncodeIf calls fn if cond is true. It is used for OPTIONAL fields.
func (e *Encoder) EncodeIf(cond bool, fn func(e *Encoder) error) error {
	if e.err != nil || !cond {
		return e.err
	}
	if err := fn(e); err != nil {
		return e.fail(err)
	}
	return e.err
}

// EncodeOptional encodes x unless its encoding equals the encoding of def. DER
// requires fields with a DEFAULT value to be omitted if they hold the default.
func (e *Encoder) EncodeOptional(x, def Marshaler) error {
	if e.err != nil {
		return e.err
	}
	xb, err := Marshal(x)
	if err != nil {
		return e.fail(err)
	}
	db, err := Marshal(def)
	if err != nil {
		return e.fail(err)
	}
	if bytes.Equal(xb, db) {
		return nil
	}
	return e.AddRaw(xb)
}

// EncodeList encodes items as a SEQUENCE OF.
func (e *Encoder) EncodeList(items ...Marshaler) error {
	e.StartSequence()
	for _, x := range items {
		e.Encode(x)
	}
	return e.EndCons()
}

// AddObject writes a data value with the given tag, form and contents.
func (e *Encoder) AddObject(tag asn1.Tag, constructed bool, value []byte) error {
	if e.err != nil {
		return e.err
	}
	out := e.out()
	*out = tlv.AppendHeader(*out, tlv.Header{Tag: tag, Constructed: constructed, Length: len(value)})
	*out = append(*out, value...)
	return nil
}

// AddRaw writes one or more complete DER encodings as they are.
func (e *Encoder) AddRaw(der []byte) error {
	if e.err != nil {
		return e.err
	}
	for rest := der; len(rest) > 0; {
		_, _, r, err := tlv.SplitDER(rest)
		if err != nil {
			return e.fail(err)
		}
		rest = r
	}
	out := e.out()
	*out = append(*out, der...)
	return nil
}

//endregion

//region primitive values

func (e *Encoder) primitive(tag asn1.Tag, value []byte, err error) error {
	if err != nil {
		return e.fail(&EncodeError{Tag: tag, Err: err})
	}
	return e.AddObject(tag, false, value)
}

// EncodeBoolean writes a BOOLEAN.
func (e *Encoder) EncodeBoolean(v bool) error {
	return e.AddObject(tagBoolean, false, appendBoolean(nil, v))
}

// EncodeInteger writes the INTEGER x.
func (e *Encoder) EncodeInteger(x *bigint.Int) error {
	return e.EncodeIntegerTag(x, tagInteger)
}

var errNilInteger = errors.New("nil integer")

// EncodeIntegerTag writes the INTEGER x with an implicit tag.
func (e *Encoder) EncodeIntegerTag(x *bigint.Int, tag asn1.Tag) error {
	if x == nil {
		return e.primitive(tag, nil, errNilInteger)
	}
	return e.AddObject(tag, false, appendInteger(nil, x))
}

// EncodeInt64 writes the INTEGER v.
func (e *Encoder) EncodeInt64(v int64) error {
	return e.EncodeInteger(bigint.NewInt(v))
}

// EncodeEnumerated writes an ENUMERATED.
func (e *Encoder) EncodeEnumerated(v asn1.Enumerated) error {
	return e.EncodeIntegerTag(bigint.NewInt(int64(v)), tagEnumerated)
}

// EncodeNull writes a NULL.
func (e *Encoder) EncodeNull() error {
	return e.AddObject(tagNull, false, nil)
}

// EncodeOctetString writes an OCTET STRING.
func (e *Encoder) EncodeOctetString(b []byte) error {
	return e.AddObject(tagOctetString, false, b)
}

// EncodeOctetStringTag writes an OCTET STRING with an implicit tag.
func (e *Encoder) EncodeOctetStringTag(b []byte, tag asn1.Tag) error {
	return e.AddObject(tag, false, b)
}

// EncodeBitString writes a BIT STRING. Unused bits are written as zeros.
func (e *Encoder) EncodeBitString(s asn1.BitString) error {
	return e.EncodeBitStringTag(s, tagBitString)
}

// EncodeBitStringTag writes a BIT STRING with an implicit tag.
func (e *Encoder) EncodeBitStringTag(s asn1.BitString, tag asn1.Tag) error {
	b, err := appendBitString(nil, s)
	return e.primitive(tag, b, err)
}

// EncodeOID writes an OBJECT IDENTIFIER.
func (e *Encoder) EncodeOID(oid asn1.ObjectIdentifier) error {
	b, err := appendOID(nil, oid)
	return e.primitive(tagOID, b, err)
}

// EncodeString writes s as the character string type identified by tag. The
// characters are validated for universal string types.
func (e *Encoder) EncodeString(s string, tag asn1.Tag) error {
	n := uint(0)
	if tag.Class == asn1.ClassUniversal {
		n = tag.Number
	}
	b, err := appendString(nil, n, s)
	return e.primitive(tag, b, err)
}

// EncodeTime writes t as a UTCTime if its year is between 1950 and 2049 and as
// a GeneralizedTime otherwise. This is the rule of RFC 5280.
func (e *Encoder) EncodeTime(t time.Time) error {
	if asn1.UTCTime(t).IsValid() {
		return e.AddObject(tagUTCTime, false, []byte(asn1.UTCTime(t).String()))
	}
	return e.EncodeGeneralizedTime(t)
}

var errInvalidGeneralizedTime = errors.New("cannot represent time as GeneralizedTime")

// EncodeGeneralizedTime writes t as a GeneralizedTime.
func (e *Encoder) EncodeGeneralizedTime(t time.Time) error {
	if !asn1.GeneralizedTime(t).IsValid() {
		return e.primitive(tagGeneralizedTime, nil, errInvalidGeneralizedTime)
	}
	return e.AddObject(tagGeneralizedTime, false, []byte(asn1.GeneralizedTime(t).String()))
}

//endregion
