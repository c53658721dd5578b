// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asn1 defines the ASN.1 tag model and Go types for a subset of the
// ASN.1 types defined in [Rec. ITU-T X.680]. Encoding and decoding using the
// Basic and Distinguished Encoding Rules is implemented in the subpackages
// [codello.dev/pkcore/asn1/tlv] (framing) and [codello.dev/pkcore/asn1/ber]
// (values).
//
// # Tags and Identifier Octets
//
// An ASN.1 tag consists of a [Class] and a tag number. On the wire the class
// occupies the two most significant bits of the identifier octet and bit 6
// distinguishes primitive from constructed encodings:
//
//	bits 8-7  class      UNIVERSAL 00, APPLICATION 01, CONTEXT 10, PRIVATE 11
//	bit  6    P/C        0 primitive, 1 constructed
//	bits 5-1  number     0-30, or 11111 for the high-tag-number form
//
// The constants [ClassBitsUniversal], [ClassBitsApplication],
// [ClassBitsContextSpecific], [ClassBitsPrivate] and [Constructed] expose the
// bit patterns for code that works on raw identifier octets.
//
// # Mapping of ASN.1 Types to Go Types
//
//   - BOOLEAN is a Go bool.
//   - INTEGER is a [codello.dev/pkcore/bigint.Int] or an int64.
//   - BIT STRING is [BitString].
//   - OCTET STRING is a byte slice.
//   - NULL is [Null].
//   - OBJECT IDENTIFIER is [ObjectIdentifier].
//   - ENUMERATED is [Enumerated].
//   - The restricted character string types are [UTF8String],
//     [NumericString], [PrintableString], [IA5String] and [VisibleString].
//   - UTCTime and GeneralizedTime are [UTCTime] and [GeneralizedTime].
//   - SEQUENCE and SET values are user-defined Go types that know how to
//     encode and decode themselves, see [codello.dev/pkcore/asn1/ber.Codec].
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
package asn1

import (
	"strconv"
	"strings"
)

// Tag constitutes an ASN.1 tag, consisting of its class and number. For
// details, see Section 8 of Rec. ITU-T X.680.
type Tag struct {
	Class  Class
	Number uint
}

// Universal returns the tag with number n in the UNIVERSAL class.
func Universal(n uint) Tag { return Tag{ClassUniversal, n} }

// Application returns the tag with number n in the APPLICATION class.
func Application(n uint) Tag { return Tag{ClassApplication, n} }

// ContextSpecific returns the context-specific tag [n].
func ContextSpecific(n uint) Tag { return Tag{ClassContextSpecific, n} }

// Private returns the tag with number n in the PRIVATE class.
func Private(n uint) Tag { return Tag{ClassPrivate, n} }

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// Bit patterns of the identifier octet.
const (
	ClassBitsUniversal       byte = 0x00
	ClassBitsApplication     byte = 0x40
	ClassBitsContextSpecific byte = 0x80
	ClassBitsPrivate         byte = 0xC0

	// Constructed is set in the identifier octet of constructed encodings.
	Constructed byte = 0x20

	// HighTagNumber in the low five bits of the identifier octet indicates that
	// the tag number follows in base-128 form.
	HighTagNumber byte = 0x1F
)

// Bits returns the class bits of an identifier octet using class c.
func (c Class) Bits() byte {
	return byte(c&0x03) << 6
}

// ClassOf extracts the class from the identifier octet b.
func ClassOf(b byte) Class {
	return Class(b >> 6)
}

// String returns a string representation t in a format similar to the one used
// in ASN.1 notation. The tag number is enclosed by square brackets and prefixed
// with the class used. To avoid ambiguity the UNIVERSAL word is used for
// universal tags, although this is not valid ASN.1 syntax.
func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return "[" + strconv.FormatUint(uint64(t.Number), 10) + "]"
	}
	return "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(uint64(t.Number), 10) + "]"
}

// Name returns the ASN.1 type name for well-known universal tags such as
// "INTEGER" or "SEQUENCE". For all other tags Name returns t.String().
func (t Tag) Name() string {
	if t.Class == ClassUniversal {
		if n, ok := TagNames[t.Number]; ok {
			return n
		}
	}
	return t.String()
}

// TagReserved is a reserved tag number in the [ClassUniversal] namespace to be
// used by encoding rules. This assignment is defined in Rec. ITU-T X.680,
// Section 8, Table 1.
const TagReserved = 0

// These are some ASN.1 tag numbers are defined in the [ClassUniversal]
// namespace. These assignments are defined in Rec. ITU-T X.680, Section 8, Table
// 1.
const (
	TagBoolean          uint = 1
	TagInteger          uint = 2
	TagBitString        uint = 3
	TagOctetString      uint = 4
	TagNull             uint = 5
	TagOID              uint = 6
	TagObjectDescriptor uint = 7
	TagExternal         uint = 8
	TagReal             uint = 9
	TagEnumerated       uint = 10
	TagEmbeddedPDV      uint = 11
	TagUTF8String       uint = 12
	TagRelativeOID      uint = 13
	TagTime             uint = 14
	TagSequence         uint = 16
	TagSet              uint = 17
	TagNumericString    uint = 18
	TagPrintableString  uint = 19
	TagTeletexString    uint = 20
	TagT61String             = TagTeletexString
	TagVideotexString   uint = 21
	TagIA5String        uint = 22
	TagUTCTime          uint = 23
	TagGeneralizedTime  uint = 24
	TagGraphicString    uint = 25
	TagVisibleString    uint = 26
	TagGeneralString    uint = 27
	TagUniversalString  uint = 28
	TagCharacterString  uint = 29
	TagBMPString        uint = 30
)

// TagNames maps universal tag numbers to their ASN.1 type names. The map must
// not be modified.
var TagNames = map[uint]string{
	TagReserved:         "EOC",
	TagBoolean:          "BOOLEAN",
	TagInteger:          "INTEGER",
	TagBitString:        "BIT STRING",
	TagOctetString:      "OCTET STRING",
	TagNull:             "NULL",
	TagOID:              "OBJECT IDENTIFIER",
	TagObjectDescriptor: "ObjectDescriptor",
	TagExternal:         "EXTERNAL",
	TagReal:             "REAL",
	TagEnumerated:       "ENUMERATED",
	TagEmbeddedPDV:      "EMBEDDED PDV",
	TagUTF8String:       "UTF8String",
	TagRelativeOID:      "RELATIVE-OID",
	TagTime:             "TIME",
	TagSequence:         "SEQUENCE",
	TagSet:              "SET",
	TagNumericString:    "NumericString",
	TagPrintableString:  "PrintableString",
	TagTeletexString:    "TeletexString",
	TagVideotexString:   "VideotexString",
	TagIA5String:        "IA5String",
	TagUTCTime:          "UTCTime",
	TagGeneralizedTime:  "GeneralizedTime",
	TagGraphicString:    "GraphicString",
	TagVisibleString:    "VisibleString",
	TagGeneralString:    "GeneralString",
	TagUniversalString:  "UniversalString",
	TagCharacterString:  "CHARACTER STRING",
	TagBMPString:        "BMPString",
}

