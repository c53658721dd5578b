// Package tlv implements the tag-length-value (TLV) framing used by the Basic
// Encoding Rules (BER) and the Distinguished Encoding Rules (DER) as specified
// in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// This package deals with the syntactic layer of TLV-encoding: identifier
// octets, length octets and the boundaries of data values. The package
// [codello.dev/pkcore/asn1/ber] builds the semantic layer on top of it.
//
// # Headers and Values
//
// Each data value is encoded as a header (identifier and length octets) and the
// contents octets. The header is represented by the [Header] type. Values using
// the constructed encoding contain further TLV-encoded values and can either
// end implicitly (definite length) or with an end-of-contents marker
// (indefinite length, BER only).
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"math/bits"
	"strconv"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/internal/vlq"
)

// TagEndOfContents is the tag that signifies the end of a constructed element.
const TagEndOfContents = asn1.TagReserved

// EndOfContents is the end-of-contents marker signalling the end of a
// constructed element using the indefinite-length encoding.
var EndOfContents = Header{}

// LengthIndefinite when used as a magic number for the length of a [Header]
// indicates that the data value is encoded using the constructed
// indefinite-length format.
const LengthIndefinite = -1

// MaxDepth limits the nesting of indefinite-length encodings that [Split] will
// follow.
const MaxDepth = 64

// Header represents a TLV header. The [Header.Length] may be [LengthIndefinite]
// if an indefinite-length encoding is used. It is invalid to use the
// indefinite-length encoding when [Header.Constructed] = false.
type Header struct {
	Tag         asn1.Tag
	Constructed bool
	Length      int
}

// String returns a string representation of h.
func (h Header) String() string {
	if h == (Header{}) {
		return "EndOfContents"
	}
	s := h.Tag.String()
	if h.Constructed {
		s += "/c"
	} else {
		s += "/p"
	}
	if h.Length == LengthIndefinite {
		return s + ":indefinite"
	}
	return s + ":" + strconv.Itoa(h.Length)
}

// Len returns the number of bytes [AppendHeader] produces for h.
func (h Header) Len() int {
	l := 1
	if h.Tag.Number >= 31 {
		l += vlq.Len(h.Tag.Number)
	}
	l++
	if h.Length >= 128 {
		l += (bits.Len(uint(h.Length)) + 7) / 8
	}
	return l
}

// AppendHeader appends the encoding of h to dst and returns the extended
// buffer. Definite lengths are always written in the minimal form required by
// DER.
func AppendHeader(dst []byte, h Header) []byte {
	b := h.Tag.Class.Bits()
	if h.Constructed {
		b |= asn1.Constructed
	}
	if h.Tag.Number < 31 {
		dst = append(dst, b|byte(h.Tag.Number))
	} else {
		dst = append(dst, b|asn1.HighTagNumber)
		dst = vlq.Append(dst, h.Tag.Number)
	}

	switch {
	case h.Length == LengthIndefinite:
		dst = append(dst, 0x80)
	case h.Length < 128:
		dst = append(dst, byte(h.Length))
	default:
		n := (bits.Len(uint(h.Length)) + 7) / 8
		dst = append(dst, 0x80|byte(n))
		for ; n > 0; n-- {
			dst = append(dst, byte(h.Length>>uint((n-1)*8)))
		}
	}
	return dst
}
