// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/bigint"
	"codello.dev/pkcore/internal/vlq"
)

var (
	errEmptyInteger      = errors.New("empty integer")
	errNonMinimalInteger = fmt.Errorf("%w: integer not minimally encoded", ErrNotCanonical)
	errIntegerTooLarge   = errors.New("integer too large")
	errInvalidBoolean    = errors.New("invalid boolean")
	errNonCanonicalBool  = fmt.Errorf("%w: boolean true must be 0xFF", ErrNotCanonical)
	errInvalidNull       = errors.New("NULL with contents")
	errEmptyOID          = errors.New("zero length OBJECT IDENTIFIER")
	errInvalidOID        = errors.New("invalid OBJECT IDENTIFIER")
	errEmptyBitString    = errors.New("zero length BIT STRING")
	errInvalidPadding    = errors.New("invalid padding bits in BIT STRING")
	errNonZeroPadding    = fmt.Errorf("%w: non-zero padding bits in BIT STRING", ErrNotCanonical)
	errInvalidString     = errors.New("invalid characters in string")
	errNotString         = errors.New("not a string type")
	errInvalidTime       = errors.New("invalid time")
	errNonCanonicalTime  = fmt.Errorf("%w: time not in canonical form", ErrNotCanonical)
)

//region [UNIVERSAL 1] BOOLEAN

// The value false is encoded as 0x00 and true as 0xFF. BER accepts any non-zero
// byte as true.

func appendBoolean(dst []byte, v bool) []byte {
	if v {
		return append(dst, 0xFF)
	}
	return append(dst, 0x00)
}

func parseBoolean(b []byte, strict bool) (bool, error) {
	if len(b) != 1 {
		return false, errInvalidBoolean
	}
	if strict && b[0] != 0x00 && b[0] != 0xFF {
		return false, errNonCanonicalBool
	}
	return b[0] != 0, nil
}

//endregion

//region [UNIVERSAL 2] INTEGER and [UNIVERSAL 10] ENUMERATED

// appendInteger appends the contents octets of the INTEGER x: the minimal
// two's complement representation in big-endian order.
func appendInteger(dst []byte, x *bigint.Int) []byte {
	switch x.Sign() {
	case 0:
		return append(dst, 0x00)
	case 1:
		bs := x.Bytes()
		if bs[0]&0x80 != 0 {
			// Pad with 0x00 so the value does not look negative.
			dst = append(dst, 0x00)
		}
		return append(dst, bs...)
	}
	// A negative number is converted to two's complement by inverting |x|-1.
	// If the most significant bit is not set, pad with 0xFF to keep the
	// number negative.
	nMinus1 := new(bigint.Int).Neg(x)
	nMinus1.Sub(nMinus1, bigint.NewInt(1))
	bs := nMinus1.Bytes()
	for i := range bs {
		bs[i] ^= 0xFF
	}
	if len(bs) == 0 || bs[0]&0x80 == 0 {
		dst = append(dst, 0xFF)
	}
	return append(dst, bs...)
}

// parseInteger sets z to the INTEGER with contents b. Redundant leading 0x00
// or 0xFF octets are only rejected in strict mode.
func parseInteger(z *bigint.Int, b []byte, strict bool) error {
	if len(b) == 0 {
		return errEmptyInteger
	}
	if strict && len(b) > 1 && (b[0] == 0x00 && b[1]&0x80 == 0 || b[0] == 0xFF && b[1]&0x80 != 0) {
		return errNonMinimalInteger
	}
	if b[0]&0x80 == 0 {
		z.SetBytes(b)
		return nil
	}
	bs := make([]byte, len(b))
	for i := range b {
		bs[i] = ^b[i]
	}
	z.SetBytes(bs)
	z.Add(z, bigint.NewInt(1))
	z.Neg(z)
	return nil
}

func parseInt64(b []byte, strict bool) (int64, error) {
	var z bigint.Int
	if err := parseInteger(&z, b, strict); err != nil {
		return 0, err
	}
	if !z.IsInt64() {
		return 0, errIntegerTooLarge
	}
	return z.Int64(), nil
}

//endregion

//region [UNIVERSAL 3] BIT STRING

// A BIT STRING is encoded as the number of unused bits in the final octet
// followed by the bits packed into octets. Unused bits are written as zero.

func appendBitString(dst []byte, s asn1.BitString) ([]byte, error) {
	if !s.IsValid() {
		return dst, errors.New("BitString is not valid")
	}
	padding := s.Padding()
	dst = append(dst, byte(padding))
	dst = append(dst, s.Bytes...)
	if len(s.Bytes) > 0 {
		dst[len(dst)-1] &^= byte(1<<uint(padding) - 1)
	}
	return dst, nil
}

func parseBitString(b []byte, strict bool) (asn1.BitString, error) {
	if len(b) == 0 {
		return asn1.BitString{}, errEmptyBitString
	}
	padding := int(b[0])
	if padding > 7 || len(b) == 1 && padding > 0 {
		return asn1.BitString{}, errInvalidPadding
	}
	bs := asn1.BitString{
		Bytes:     append([]byte(nil), b[1:]...),
		BitLength: (len(b)-1)*8 - padding,
	}
	if len(bs.Bytes) > 0 {
		mask := byte(1<<uint(padding) - 1)
		last := &bs.Bytes[len(bs.Bytes)-1]
		if strict && *last&mask != 0 {
			return asn1.BitString{}, errNonZeroPadding
		}
		*last &^= mask
	}
	return bs, nil
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// The first two arcs of an OID are packed into a single subidentifier
// 40*v0 + v1. Subidentifiers use a minimal base-128 encoding.

func validOID(oid asn1.ObjectIdentifier) bool {
	return len(oid) >= 2 && oid[0] <= 2 && (oid[0] == 2 || oid[1] < 40)
}

func appendOID(dst []byte, oid asn1.ObjectIdentifier) ([]byte, error) {
	if !validOID(oid) {
		return dst, errInvalidOID
	}
	dst = vlq.Append(dst, oid[0]*40+oid[1])
	for _, v := range oid[2:] {
		dst = vlq.Append(dst, v)
	}
	return dst, nil
}

func parseOID(b []byte) (asn1.ObjectIdentifier, error) {
	if len(b) == 0 {
		return nil, errEmptyOID
	}
	// In the worst case, we get two elements from the first byte (which is
	// encoded differently) and then every subidentifier is a single byte long.
	oid := make(asn1.ObjectIdentifier, 1, len(b)+1)
	v, n, err := vlq.ParseMinimal[uint](b)
	if err != nil {
		return nil, errInvalidOID
	}
	if v < 80 {
		oid[0] = v / 40
		oid = append(oid, v%40)
	} else {
		oid[0] = 2
		oid = append(oid, v-80)
	}
	for b = b[n:]; len(b) > 0; b = b[n:] {
		if v, n, err = vlq.ParseMinimal[uint](b); err != nil {
			return nil, errInvalidOID
		}
		oid = append(oid, v)
	}
	return oid, nil
}

//endregion

//region String types

// isStringTag reports whether n is the number of a universal string type that
// can be decoded into a Go string.
func isStringTag(n uint) bool {
	switch n {
	case asn1.TagUTF8String, asn1.TagNumericString, asn1.TagPrintableString,
		asn1.TagTeletexString, asn1.TagIA5String, asn1.TagVisibleString,
		asn1.TagBMPString:
		return true
	}
	return false
}

// validString reports whether s may be encoded as the universal string type n.
// Tags that are not string types accept any value.
func validString(n uint, s string) bool {
	switch n {
	case asn1.TagUTF8String:
		return utf8.ValidString(s)
	case asn1.TagNumericString:
		return asn1.NumericString(s).IsValid()
	case asn1.TagPrintableString:
		return asn1.PrintableString(s).IsValid()
	case asn1.TagIA5String:
		return asn1.IA5String(s).IsValid()
	case asn1.TagVisibleString:
		return asn1.VisibleString(s).IsValid()
	case asn1.TagBMPString:
		for _, r := range s {
			if r == utf8.RuneError || r > 0xFFFF {
				return false
			}
		}
	}
	return true
}

// appendString appends the contents octets of s as string type n. BMPString
// is converted to UCS-2, all other types are written as-is.
func appendString(dst []byte, n uint, s string) ([]byte, error) {
	if !validString(n, s) {
		return dst, errInvalidString
	}
	if n != asn1.TagBMPString {
		return append(dst, s...), nil
	}
	for _, r := range s {
		dst = append(dst, byte(r>>8), byte(r))
	}
	return dst, nil
}

func parseString(n uint, b []byte) (string, error) {
	var s string
	if n == asn1.TagBMPString {
		if len(b)%2 != 0 {
			return "", errInvalidString
		}
		u := make([]uint16, len(b)/2)
		for i := range u {
			u[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		}
		s = string(utf16.Decode(u))
	} else {
		s = string(b)
	}
	if !validString(n, s) {
		return "", errInvalidString
	}
	return s, nil
}

//endregion

//region [UNIVERSAL 23] UTCTime and [UNIVERSAL 24] GeneralizedTime

func parseUTCTime(s string, strict bool) (time.Time, error) {
	if len(s) < 11 || len(s) > 17 {
		return time.Time{}, errInvalidTime
	}
	if strict && (len(s) != 13 || s[12] != 'Z') {
		return time.Time{}, errNonCanonicalTime
	}
	year := atoiN[int](s, 2)
	month := atoiN[time.Month](s[2:], 2)
	day := atoiN[int](s[4:], 2)
	hour := atoiN[int](s[6:], 2)
	minute := atoiN[int](s[8:], 2)
	s = s[10:]
	second := atoiN[int](s, 2)
	if second >= 0 {
		s = s[2:]
	} else {
		second = 0
	}
	loc := parseLocation(s)
	if loc == nil || year < 0 {
		return time.Time{}, errInvalidTime
	}

	// UTCTime only encodes times prior to 2050. See https://tools.ietf.org/html/rfc5280#section-4.1.2.5.1
	if year <= 49 {
		year += 2000
	} else {
		year += 1900
	}
	ret := time.Date(year, month, day, hour, minute, second, 0, loc)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day || ret.Hour() != hour || ret.Minute() != minute || ret.Second() != second {
		return time.Time{}, errInvalidTime
	}
	return ret, nil
}

func parseGeneralizedTime(s string, strict bool) (time.Time, error) {
	if len(s) < 10 {
		return time.Time{}, errInvalidTime
	}
	if strict && (len(s) < 15 || s[len(s)-1] != 'Z' || strings.ContainsRune(s, ',') ||
		strings.HasSuffix(s, "0Z") && strings.ContainsRune(s, '.') || strings.HasSuffix(s, ".Z")) {
		return time.Time{}, errNonCanonicalTime
	}
	year := atoiN[int](s, 4)
	month := atoiN[time.Month](s[4:], 2)
	day := atoiN[int](s[6:], 2)
	hour := atoiN[time.Duration](s[8:], 2)
	if year < 0 || hour < 0 || 23 < hour {
		return time.Time{}, errInvalidTime
	}
	s = s[10:]
	dur := hour * time.Hour
	unit := time.Hour // unit for fractional time
	if len(s) >= 2 && '0' <= s[0] && s[0] <= '9' {
		minute := atoiN[time.Duration](s, 2)
		if minute < 0 || 59 < minute {
			return time.Time{}, errInvalidTime
		}
		dur += minute * time.Minute
		unit = time.Minute
		s = s[2:]
	}
	if len(s) >= 2 && '0' <= s[0] && s[0] <= '9' {
		second := atoiN[time.Duration](s, 2)
		if second < 0 || 59 < second {
			return time.Time{}, errInvalidTime
		}
		dur += second * time.Second
		unit = time.Second
		s = s[2:]
	}
	if len(s) > 0 && (s[0] == '.' || s[0] == ',') {
		i := 1
		for ; i < len(s) && '0' <= s[i] && s[i] <= '9'; i++ {
			unit /= 10
			dur += time.Duration(s[i]-'0') * unit
		}
		if i == 1 {
			return time.Time{}, errInvalidTime
		}
		s = s[i:]
	}
	loc := time.Local
	if len(s) > 0 {
		if loc = parseLocation(s); loc == nil {
			return time.Time{}, errInvalidTime
		}
	}
	ret := time.Date(year, month, day, 0, 0, 0, 0, loc).Add(dur)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day {
		return time.Time{}, errInvalidTime
	}
	return ret, nil
}

func parseLocation(s string) *time.Location {
	if len(s) == 1 && s[0] == 'Z' {
		return time.UTC
	}
	if len(s) != 5 || s[0] != '+' && s[0] != '-' {
		return nil
	}
	mul := 44 - int(s[0]) // '+' = 43, '-' = 45
	locHour := atoiN[int](s[1:], 2)
	locMinute := atoiN[int](s[3:], 2)
	if locHour < 0 || locMinute < 0 {
		return nil
	}
	return time.FixedZone("", mul*(locHour*3600+locMinute*60))
}

// atoiN parses exactly n decimal digits at the start of s. It returns -1 if s
// is too short or contains non-digits.
func atoiN[T ~int | ~int64](s string, n int) (i T) {
	if len(s) < n {
		return -1
	}
	for j := 0; j < n; j++ {
		if s[j] < '0' || '9' < s[j] {
			return -1
		}
		i = i*10 + T(s[j]-'0')
	}
	return i
}

//endregion
