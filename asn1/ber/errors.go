// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"strconv"
	"strings"

	"codello.dev/pkcore/asn1"
)

var (
	// ErrTrailingData indicates unconsumed bytes at the end of a constructed
	// value or of the input.
	ErrTrailingData = errors.New("ber: trailing data")
	// ErrUnmatchedEnd is returned by EndCons if no constructed value is open.
	ErrUnmatchedEnd = errors.New("ber: EndCons without StartCons")
	// ErrUnclosedCons indicates that a constructed value was started but never
	// ended.
	ErrUnclosedCons = errors.New("ber: unclosed constructed value")
	// ErrWrongForm indicates a primitive encoding where a constructed one was
	// expected or vice versa.
	ErrWrongForm = errors.New("ber: unexpected primitive or constructed form")
	// ErrNotCanonical indicates an encoding that is valid BER but not DER.
	ErrNotCanonical = errors.New("ber: encoding is not DER")
)

// A TagError reports a data value with an unexpected tag.
type TagError struct {
	Expected asn1.Tag
	Found    asn1.Tag
	Offset   int // offset of the identifier octets
}

func (e *TagError) Error() string {
	return "ber: bad tag at offset " + strconv.Itoa(e.Offset) + ": expected " +
		e.Expected.Name() + ", found " + e.Found.Name()
}

// A DecodeError reports malformed input. Err describes the problem and can be
// compared to sentinel errors such as [io.ErrUnexpectedEOF] or
// [ErrTrailingData] using [errors.Is].
type DecodeError struct {
	Offset int      // location of the problem in the input
	Tag    asn1.Tag // tag of the data value being decoded, if known
	Err    error
}

func (e *DecodeError) Error() string {
	var s strings.Builder
	s.WriteString("ber: decoding error")
	if e.Tag != (asn1.Tag{}) {
		s.WriteString(" in ")
		s.WriteString(e.Tag.Name())
	}
	s.WriteString(" at offset ")
	s.WriteString(strconv.Itoa(e.Offset))
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// An EncodeError reports a value that cannot be represented.
type EncodeError struct {
	Tag asn1.Tag
	Err error
}

func (e *EncodeError) Error() string {
	return "ber: cannot encode " + e.Tag.Name() + ": " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
