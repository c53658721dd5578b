// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"io"
	"time"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/asn1/tlv"
	"codello.dev/pkcore/bigint"
)

// frame is an open constructed value. The contents occupy buf[start:end] and
// the next data value after the constructed value starts at after. For
// indefinite-length encodings after skips the end-of-contents marker.
type frame struct {
	tag        asn1.Tag
	start, end int
	after      int
}

// A Decoder reads BER-encoded data values from an in-memory buffer.
//
// By default the decoder accepts any valid BER encoding. Use
// [Decoder.SetStrict] to require DER. Slices returned by the decoder may share
// memory with the input unless documented otherwise.
//
// A Decoder must not be used concurrently.
type Decoder struct {
	buf    []byte
	pos    int
	strict bool
	stack  []frame
	err    error
}

// NewDecoder returns a Decoder reading from b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// NewDecoderFromReader reads r until EOF and returns a Decoder over the data.
func NewDecoderFromReader(r io.Reader) (*Decoder, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewDecoder(b), nil
}

// SetStrict enables or disables DER validation. In strict mode lengths must
// be definite and minimal, strings must be primitive and values must use
// their canonical encoding.
func (d *Decoder) SetStrict(strict bool) {
	d.strict = strict
}

// Strict reports whether d validates DER.
func (d *Decoder) Strict() bool {
	return d.strict
}

// Offset returns the position of the next data value in the input.
func (d *Decoder) Offset() int {
	return d.pos
}

// Depth returns the number of open constructed values.
func (d *Decoder) Depth() int {
	return len(d.stack)
}

// Err returns the first error encountered by d.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) fail(err error) error {
	if d.err == nil {
		d.err = err
	}
	return d.err
}

// limit returns the end of the current context.
func (d *Decoder) limit() int {
	if n := len(d.stack); n > 0 {
		return d.stack[n-1].end
	}
	return len(d.buf)
}

// next parses the data value at the current position without consuming it. It
// returns the value, the offset of its contents and the offset just past its
// encoding.
func (d *Decoder) next() (obj Object, contents, end int, err error) {
	limit := d.limit()
	if d.pos >= limit {
		return obj, 0, 0, &DecodeError{Offset: d.pos, Err: io.ErrUnexpectedEOF}
	}
	split := tlv.Split
	if d.strict {
		split = tlv.SplitDER
	}
	h, value, rest, err := split(d.buf[d.pos:limit])
	if err != nil {
		var se *tlv.SyntaxError
		if errors.As(err, &se) {
			return obj, 0, 0, &DecodeError{Offset: d.pos + int(se.ByteOffset), Tag: se.Header.Tag, Err: err}
		}
		return obj, 0, 0, &DecodeError{Offset: d.pos, Err: err}
	}
	if h.Tag == asn1.Universal(tlv.TagEndOfContents) {
		return obj, 0, 0, &DecodeError{Offset: d.pos, Err: tlv.ErrInvalidEOC}
	}
	obj = Object{Tag: h.Tag, Constructed: h.Constructed, Value: value}
	end = limit - len(rest)
	// For indefinite lengths value is followed by the end-of-contents marker.
	contents = end - len(value)
	if h.Length == tlv.LengthIndefinite {
		contents -= 2
	}
	return obj, contents, end, nil
}

// form selects the encodings accepted by expect.
type form uint8

const (
	anyForm form = iota
	primitiveForm
	constructedForm
)

// expect reads the next data value and verifies its tag and form.
func (d *Decoder) expect(tag asn1.Tag, f form) (obj Object, contents int, err error) {
	if d.err != nil {
		return obj, 0, d.err
	}
	obj, contents, end, err := d.next()
	if err != nil {
		if de, ok := err.(*DecodeError); ok && de.Tag == (asn1.Tag{}) {
			de.Tag = tag
		}
		return obj, 0, d.fail(err)
	}
	if obj.Tag != tag {
		return obj, 0, d.fail(&TagError{Expected: tag, Found: obj.Tag, Offset: d.pos})
	}
	if f == primitiveForm && obj.Constructed || f == constructedForm && !obj.Constructed {
		return obj, 0, d.fail(&DecodeError{Offset: d.pos, Tag: tag, Err: ErrWrongForm})
	}
	d.pos = end
	return obj, contents, nil
}

// primitive reads the contents octets of a primitive data value with the given
// tag. It also returns the offset of the contents.
func (d *Decoder) primitive(tag asn1.Tag) ([]byte, int, error) {
	obj, contents, err := d.expect(tag, primitiveForm)
	return obj.Value, contents, err
}

// valueError records err as a problem with the contents of a data value.
func (d *Decoder) valueError(offset int, tag asn1.Tag, err error) error {
	return d.fail(&DecodeError{Offset: offset, Tag: tag, Err: err})
}

// segments returns the contents of a string type and their offset. In BER,
// strings may use the constructed form in which case the contents are the
// concatenation of primitive segments.
func (d *Decoder) segments(tag asn1.Tag) ([][]byte, int, error) {
	start := d.pos
	obj, contents, err := d.expect(tag, anyForm)
	if err != nil {
		return nil, 0, err
	}
	if !obj.Constructed {
		return [][]byte{obj.Value}, contents, nil
	}
	if d.strict {
		return nil, 0, d.valueError(start, tag, ErrWrongForm)
	}
	var segs [][]byte
	if err = d.collect(obj, contents, tag, 0, &segs); err != nil {
		return nil, 0, d.fail(err)
	}
	return segs, contents, nil
}

func (d *Decoder) collect(obj Object, contents int, tag asn1.Tag, depth int, segs *[][]byte) error {
	if depth >= tlv.MaxDepth {
		return &DecodeError{Offset: contents, Tag: tag, Err: tlv.ErrTooDeep}
	}
	sub := &Decoder{buf: d.buf[:contents+len(obj.Value)], pos: contents}
	for sub.MoreItems() {
		start := sub.pos
		child, childContents, end, err := sub.next()
		if err != nil {
			return err
		}
		if child.Tag != tag && child.Tag != tagOctetString {
			return &TagError{Expected: tag, Found: child.Tag, Offset: start}
		}
		if child.Constructed {
			if err = d.collect(child, childContents, tag, depth+1, segs); err != nil {
				return err
			}
		} else {
			*segs = append(*segs, child.Value)
		}
		sub.pos = end
	}
	return nil
}

// MoreItems reports whether the current context contains more data values.
func (d *Decoder) MoreItems() bool {
	return d.err == nil && d.pos < d.limit()
}

// NextIs reports whether the next data value in the current context has the
// given tag. It can be used to detect OPTIONAL fields.
func (d *Decoder) NextIs(tag asn1.Tag) bool {
	h, err := d.PeekHeader()
	return err == nil && h.Tag == tag
}

// PeekHeader returns the header of the next data value without consuming it.
// At the end of the current context PeekHeader returns io.EOF.
func (d *Decoder) PeekHeader() (tlv.Header, error) {
	if d.err != nil {
		return tlv.Header{}, d.err
	}
	if !d.MoreItems() {
		return tlv.Header{}, io.EOF
	}
	parse := tlv.ParseHeader
	if d.strict {
		parse = tlv.ParseHeaderDER
	}
	h, _, err := parse(d.buf[d.pos:d.limit()])
	if err != nil {
		return h, d.fail(&DecodeError{Offset: d.pos, Tag: h.Tag, Err: err})
	}
	return h, nil
}

// ReadObject reads the next data value without interpreting it. At the end of
// the current context ReadObject returns io.EOF.
func (d *Decoder) ReadObject() (Object, error) {
	obj, end, err := d.peek()
	if err == nil {
		d.pos = end
	}
	return obj, err
}

// PeekObject works like [Decoder.ReadObject] but does not consume the value.
func (d *Decoder) PeekObject() (Object, error) {
	obj, _, err := d.peek()
	return obj, err
}

func (d *Decoder) peek() (Object, int, error) {
	if d.err != nil {
		return Object{}, 0, d.err
	}
	if !d.MoreItems() {
		return Object{}, 0, io.EOF
	}
	obj, _, end, err := d.next()
	if err != nil {
		return Object{}, 0, d.fail(err)
	}
	return obj, end, nil
}

// DecodeRaw sets v to the complete encoding of the next data value, including
// its header.
func (d *Decoder) DecodeRaw(v *[]byte) error {
	start := d.pos
	if _, err := d.ReadObject(); err != nil {
		return d.fail(d.noEOF(err))
	}
	*v = d.buf[start:d.pos]
	return nil
}

// Skip consumes the next data value.
func (d *Decoder) Skip() error {
	if _, err := d.ReadObject(); err != nil {
		return d.fail(d.noEOF(err))
	}
	return nil
}

// noEOF converts a clean end of the current context into an error for callers
// that required another value.
func (d *Decoder) noEOF(err error) error {
	if err == io.EOF {
		return &DecodeError{Offset: d.pos, Err: io.ErrUnexpectedEOF}
	}
	return err
}

//region constructed values

// StartCons enters the constructed data value with the given tag. The contents
// are decoded by subsequent calls until [Decoder.EndCons] is called.
func (d *Decoder) StartCons(tag asn1.Tag) error {
	obj, contents, err := d.expect(tag, constructedForm)
	if err != nil {
		return err
	}
	d.stack = append(d.stack, frame{
		tag:   tag,
		start: contents,
		end:   contents + len(obj.Value),
		after: d.pos,
	})
	d.pos = contents
	return nil
}

// StartSequence enters a SEQUENCE.
func (d *Decoder) StartSequence() error {
	return d.StartCons(tagSequence)
}

// StartSet enters a SET. The order of elements is not verified.
func (d *Decoder) StartSet() error {
	return d.StartCons(tagSet)
}

// StartExplicit enters the explicit tagging [n] of a context-specific tag.
func (d *Decoder) StartExplicit(n uint) error {
	return d.StartCons(asn1.ContextSpecific(n))
}

// EndCons leaves the innermost constructed value. All of its contents must
// have been consumed.
func (d *Decoder) EndCons() error {
	if d.err != nil {
		return d.err
	}
	if len(d.stack) == 0 {
		return d.fail(&DecodeError{Offset: d.pos, Err: ErrUnmatchedEnd})
	}
	f := d.stack[len(d.stack)-1]
	if d.pos != f.end {
		return d.fail(&DecodeError{Offset: d.pos, Tag: f.tag, Err: ErrTrailingData})
	}
	d.stack = d.stack[:len(d.stack)-1]
	d.pos = f.after
	return nil
}

// VerifyEnd reports an error if the current context contains unconsumed data.
// At the top level the whole input must have been consumed.
func (d *Decoder) VerifyEnd() error {
	if d.err != nil {
		return d.err
	}
	if d.pos != d.limit() {
		var tag asn1.Tag
		if n := len(d.stack); n > 0 {
			tag = d.stack[n-1].tag
		}
		return d.fail(&DecodeError{Offset: d.pos, Tag: tag, Err: ErrTrailingData})
	}
	return nil
}

// Close verifies that all constructed values have been ended and the input
// has been consumed completely.
func (d *Decoder) Close() error {
	if d.err != nil {
		return d.err
	}
	if n := len(d.stack); n > 0 {
		return d.fail(&DecodeError{Offset: d.pos, Tag: d.stack[n-1].tag, Err: ErrUnclosedCons})
	}
	return d.VerifyEnd()
}

// Decode lets x decode itself from d.
func (d *Decoder) Decode(x Unmarshaler) error {
	if d.err != nil {
		return d.err
	}
	if err := x.DecodeFrom(d); err != nil {
		return d.fail(err)
	}
	return nil
}

// DecodeOptional decodes x if the next data value has the given tag. It
// reports whether x was decoded.
func (d *Decoder) DecodeOptional(x Unmarshaler, tag asn1.Tag) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if !d.NextIs(tag) {
		return false, d.err
	}
	return true, d.Decode(x)
}

// DecodeList decodes a SEQUENCE OF by calling fn until the SEQUENCE is
// exhausted.
func (d *Decoder) DecodeList(fn func(d *Decoder) error) error {
	if err := d.StartSequence(); err != nil {
		return err
	}
	for d.MoreItems() {
		if err := fn(d); err != nil {
			return d.fail(err)
		}
	}
	return d.EndCons()
}

//endregion

//region primitive values

// DecodeBoolean decodes a BOOLEAN into v.
func (d *Decoder) DecodeBoolean(v *bool) error {
	b, off, err := d.primitive(tagBoolean)
	if err != nil {
		return err
	}
	if *v, err = parseBoolean(b, d.strict); err != nil {
		return d.valueError(off, tagBoolean, err)
	}
	return nil
}

// DecodeInteger decodes an INTEGER into z.
func (d *Decoder) DecodeInteger(z *bigint.Int) error {
	return d.DecodeIntegerTag(z, tagInteger)
}

// DecodeIntegerTag decodes an INTEGER with an implicit tag into z.
func (d *Decoder) DecodeIntegerTag(z *bigint.Int, tag asn1.Tag) error {
	b, off, err := d.primitive(tag)
	if err != nil {
		return err
	}
	if err = parseInteger(z, b, d.strict); err != nil {
		return d.valueError(off, tag, err)
	}
	return nil
}

// DecodeInt64 decodes an INTEGER that fits into an int64.
func (d *Decoder) DecodeInt64(v *int64) error {
	b, off, err := d.primitive(tagInteger)
	if err != nil {
		return err
	}
	if *v, err = parseInt64(b, d.strict); err != nil {
		return d.valueError(off, tagInteger, err)
	}
	return nil
}

// DecodeEnumerated decodes an ENUMERATED into v.
func (d *Decoder) DecodeEnumerated(v *asn1.Enumerated) error {
	b, off, err := d.primitive(tagEnumerated)
	if err != nil {
		return err
	}
	i, err := parseInt64(b, d.strict)
	if err != nil {
		return d.valueError(off, tagEnumerated, err)
	}
	*v = asn1.Enumerated(i)
	return nil
}

// DecodeNull decodes a NULL.
func (d *Decoder) DecodeNull() error {
	b, off, err := d.primitive(tagNull)
	if err != nil {
		return err
	}
	if len(b) != 0 {
		return d.valueError(off, tagNull, errInvalidNull)
	}
	return nil
}

// DecodeOctetString decodes an OCTET STRING into a newly allocated slice.
func (d *Decoder) DecodeOctetString(v *[]byte) error {
	return d.DecodeOctetStringTag(v, tagOctetString)
}

// DecodeOctetStringTag decodes an OCTET STRING with an implicit tag.
func (d *Decoder) DecodeOctetStringTag(v *[]byte, tag asn1.Tag) error {
	segs, _, err := d.segments(tag)
	if err != nil {
		return err
	}
	var b []byte
	for _, s := range segs {
		b = append(b, s...)
	}
	if b == nil {
		b = []byte{}
	}
	*v = b
	return nil
}

// DecodeBitString decodes a BIT STRING into v.
func (d *Decoder) DecodeBitString(v *asn1.BitString) error {
	return d.DecodeBitStringTag(v, tagBitString)
}

// DecodeBitStringTag decodes a BIT STRING with an implicit tag.
func (d *Decoder) DecodeBitStringTag(v *asn1.BitString, tag asn1.Tag) error {
	segs, off, err := d.segments(tag)
	if err != nil {
		return err
	}
	var bs asn1.BitString
	for i, s := range segs {
		part, err := parseBitString(s, d.strict)
		if err != nil {
			return d.valueError(off, tag, err)
		}
		if i < len(segs)-1 && part.Padding() != 0 {
			return d.valueError(off, tag, errInvalidPadding)
		}
		bs.Bytes = append(bs.Bytes, part.Bytes...)
		bs.BitLength += part.BitLength
	}
	*v = bs
	return nil
}

// DecodeOID decodes an OBJECT IDENTIFIER into v.
func (d *Decoder) DecodeOID(v *asn1.ObjectIdentifier) error {
	b, off, err := d.primitive(tagOID)
	if err != nil {
		return err
	}
	if *v, err = parseOID(b); err != nil {
		return d.valueError(off, tagOID, err)
	}
	return nil
}

// DecodeString decodes any of the universal character string types into v.
// The characters are validated against the string type. BMPString values are
// converted to UTF-8.
func (d *Decoder) DecodeString(v *string) error {
	h, err := d.PeekHeader()
	if err != nil {
		return d.fail(d.noEOF(err))
	}
	if h.Tag.Class != asn1.ClassUniversal || !isStringTag(h.Tag.Number) {
		return d.valueError(d.pos, h.Tag, errNotString)
	}
	return d.DecodeStringTag(v, h.Tag)
}

// DecodeStringTag decodes a character string with the given tag. Universal
// string types are validated, other tags accept any contents.
func (d *Decoder) DecodeStringTag(v *string, tag asn1.Tag) error {
	segs, off, err := d.segments(tag)
	if err != nil {
		return err
	}
	var b []byte
	for _, s := range segs {
		b = append(b, s...)
	}
	n := uint(0)
	if tag.Class == asn1.ClassUniversal {
		n = tag.Number
	}
	if *v, err = parseString(n, b); err != nil {
		return d.valueError(off, tag, err)
	}
	return nil
}

// DecodeTime decodes a UTCTime or a GeneralizedTime into v.
func (d *Decoder) DecodeTime(v *time.Time) error {
	h, err := d.PeekHeader()
	if err != nil {
		return d.fail(d.noEOF(err))
	}
	var parse func(string, bool) (time.Time, error)
	switch h.Tag {
	case tagUTCTime:
		parse = parseUTCTime
	case tagGeneralizedTime:
		parse = parseGeneralizedTime
	default:
		return d.fail(&TagError{Expected: tagGeneralizedTime, Found: h.Tag, Offset: d.pos})
	}
	segs, off, err := d.segments(h.Tag)
	if err != nil {
		return err
	}
	var b []byte
	for _, s := range segs {
		b = append(b, s...)
	}
	if *v, err = parse(string(b), d.strict); err != nil {
		return d.valueError(off, h.Tag, err)
	}
	return nil
}

//endregion
