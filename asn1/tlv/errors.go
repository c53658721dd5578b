package tlv

import (
	"errors"
	"io"
	"strconv"
)

var (
	ErrNonMinimalTag       = errors.New("tag number not minimally encoded")
	ErrTagOverflow         = errors.New("tag number too large")
	ErrNonMinimalLength    = errors.New("length not minimally encoded")
	ErrLengthOverflow      = errors.New("length too large")
	ErrReservedLength      = errors.New("reserved length octet 0xFF")
	ErrIndefinitePrimitive = errors.New("indefinite length for primitive encoding")
	ErrIndefiniteLength    = errors.New("indefinite length not allowed in DER")
	ErrInvalidEOC          = errors.New("invalid end of contents")
	ErrTooDeep             = errors.New("indefinite-length encodings nested too deeply")
)

// SyntaxError represents an error in the TLV encoding. The error value contains
// the location of the error within the input as well as the [Header] of the
// surrounding data value.
type SyntaxError struct {
	requireKeyedLiterals
	nonComparable

	Err error // underlying error

	// ByteOffset is the location of the error. The location is usually the start of
	// the TLV header containing the error.
	ByteOffset int64

	// Header is the TLV header of the data value that contained the malformed
	// data, if it could be parsed.
	Header Header
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Error() string {
	b := []byte("tlv: syntax error")
	if e.Header != (Header{}) {
		b = append(b, " within "...)
		b = append(b, e.Header.String()...)
	}
	//goland:noinspection GoDirectComparisonOfErrors
	if e.Err == io.ErrUnexpectedEOF {
		b = strconv.AppendInt(append(b, " at offset "...), e.ByteOffset, 10)
	} else {
		b = strconv.AppendInt(append(b, " for TLV beginning at offset "...), e.ByteOffset, 10)
	}
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// requireKeyedLiterals can be embedded in a struct to require keyed literals.
type requireKeyedLiterals struct{}

// nonComparable can be embedded in a struct to prevent comparability.
type nonComparable [0]func()

// noEOF returns err, unless err == io.EOF, in which case it returns io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
