package tlv

import (
	"errors"
	"io"
	"math"

	"codello.dev/pkcore/asn1"
	"codello.dev/pkcore/internal/vlq"
)

// ParseHeader parses the identifier and length octets at the beginning of b
// using the Basic Encoding Rules. It returns the header and the number of bytes
// it occupies. If b is empty the error is io.EOF, if b ends within the header
// the error is io.ErrUnexpectedEOF.
//
// Long-form lengths that are not minimal are accepted. Tag numbers must be
// minimally encoded.
func ParseHeader(b []byte) (Header, int, error) {
	return parseHeader(b, false)
}

// ParseHeaderDER works like [ParseHeader] but additionally enforces the
// length restrictions of the Distinguished Encoding Rules: lengths must be
// definite and minimally encoded.
func ParseHeaderDER(b []byte) (Header, int, error) {
	return parseHeader(b, true)
}

func parseHeader(b []byte, der bool) (h Header, n int, err error) {
	if len(b) == 0 {
		return h, 0, io.EOF
	}
	id := b[0]
	n = 1
	h.Tag.Class = asn1.ClassOf(id)
	h.Constructed = id&asn1.Constructed != 0
	if id&asn1.HighTagNumber != asn1.HighTagNumber {
		h.Tag.Number = uint(id & 0x1f)
	} else {
		num, l, err := vlq.ParseMinimal[uint](b[1:])
		n += l
		switch {
		case errors.Is(err, vlq.ErrNotMinimal):
			return h, n, ErrNonMinimalTag
		case errors.Is(err, vlq.ErrOverflow):
			return h, n, ErrTagOverflow
		case err != nil:
			return h, n, noEOF(err)
		case num < 31:
			return h, n, ErrNonMinimalTag
		}
		h.Tag.Number = num
	}

	if n >= len(b) {
		return h, n, io.ErrUnexpectedEOF
	}
	lb := b[n]
	n++
	switch {
	case lb&0x80 == 0:
		h.Length = int(lb)
	case lb == 0x80:
		if !h.Constructed {
			return h, n, ErrIndefinitePrimitive
		}
		if der {
			return h, n, ErrIndefiniteLength
		}
		h.Length = LengthIndefinite
	case lb == 0xff:
		return h, n, ErrReservedLength
	default:
		count := int(lb & 0x7f)
		if len(b)-n < count {
			return h, len(b), io.ErrUnexpectedEOF
		}
		lenBytes := b[n : n+count]
		n += count
		if der && lenBytes[0] == 0 {
			return h, n, ErrNonMinimalLength
		}
		var l uint64
		for _, c := range lenBytes {
			if l > math.MaxInt>>8 {
				return h, n, ErrLengthOverflow
			}
			l = l<<8 | uint64(c)
		}
		if der && l < 128 {
			return h, n, ErrNonMinimalLength
		}
		h.Length = int(l)
	}
	return h, n, nil
}

// Split parses the data value at the beginning of b using the Basic Encoding
// Rules. It returns the header, the contents octets and the remaining bytes
// after the data value. For indefinite-length encodings the contents exclude
// the terminating end-of-contents marker.
//
// If b is empty, Split returns io.EOF. Any other error is a [*SyntaxError]
// whose ByteOffset is relative to the start of b.
func Split(b []byte) (h Header, contents, rest []byte, err error) {
	return split(b, false, 0)
}

// SplitDER works like [Split] but parses the header with [ParseHeaderDER].
func SplitDER(b []byte) (h Header, contents, rest []byte, err error) {
	return split(b, true, 0)
}

func split(b []byte, der bool, depth int) (h Header, contents, rest []byte, err error) {
	h, n, err := parseHeader(b, der)
	if err == io.EOF {
		return h, nil, b, err
	}
	if err != nil {
		return h, nil, b, &SyntaxError{Err: err, Header: h}
	}
	if h.Length != LengthIndefinite {
		if h.Length > len(b)-n {
			return h, nil, b, &SyntaxError{Err: io.ErrUnexpectedEOF, ByteOffset: int64(len(b)), Header: h}
		}
		return h, b[n : n+h.Length], b[n+h.Length:], nil
	}

	if depth >= MaxDepth {
		return h, nil, b, &SyntaxError{Err: ErrTooDeep, Header: h}
	}
	off := n
	for {
		if off >= len(b) {
			return h, nil, b, &SyntaxError{Err: io.ErrUnexpectedEOF, ByteOffset: int64(len(b)), Header: h}
		}
		if b[off] == 0 {
			if off+1 >= len(b) {
				return h, nil, b, &SyntaxError{Err: io.ErrUnexpectedEOF, ByteOffset: int64(len(b)), Header: h}
			}
			if b[off+1] != 0 {
				return h, nil, b, &SyntaxError{Err: ErrInvalidEOC, ByteOffset: int64(off), Header: h}
			}
			return h, b[n:off], b[off+2:], nil
		}
		_, _, r, err := split(b[off:], der, depth+1)
		if err != nil {
			var se *SyntaxError
			if errors.As(err, &se) {
				se.ByteOffset += int64(off)
			}
			return h, nil, b, err
		}
		off = len(b) - len(r)
	}
}
