// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bigint

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrTooLarge is returned by [Int.Encode1363] if the value does not fit into
// the requested number of bytes.
var ErrTooLarge = errors.New("bigint: value too large for encoding length")

// SetBytes interprets buf as the bytes of a big-endian unsigned integer, sets z
// to that value, and returns z.
func (z *Int) SetBytes(buf []byte) *Int {
	z.abs = z.abs.setBytes(buf)
	z.neg = false
	return z
}

func (z nat) setBytes(buf []byte) nat {
	z = z.make((len(buf) + _S - 1) / _S)
	i := len(buf)
	for k := 0; i >= _S; k++ {
		z[k] = bigEndianWord(buf[i-_S : i])
		i -= _S
	}
	if i > 0 {
		var d Word
		for s := uint(0); i > 0; s += 8 {
			d |= Word(buf[i-1]) << s
			i--
		}
		z[len(z)-1] = d
	}
	return z.norm()
}

func bigEndianWord(buf []byte) Word {
	var w Word
	for _, b := range buf[:_S] {
		w = w<<8 | Word(b)
	}
	return w
}

// Bytes returns the absolute value of x as a big-endian byte slice without
// leading zeros. The result for 0 is an empty slice.
func (x *Int) Bytes() []byte {
	buf := make([]byte, x.ByteLen())
	x.abs.fillBytes(buf)
	return buf
}

// FillBytes sets buf to the absolute value of x, storing it as a zero-extended
// big-endian byte slice, and returns buf. If |x| does not fit in buf,
// FillBytes panics.
func (x *Int) FillBytes(buf []byte) []byte {
	if x.ByteLen() > len(buf) {
		panic("bigint: buffer too small to fit value")
	}
	clear(buf)
	x.abs.fillBytes(buf)
	return buf
}

// fillBytes writes x into the end of buf. buf must be large enough.
func (x nat) fillBytes(buf []byte) {
	i := len(buf)
	for _, d := range x {
		for j := 0; j < _S && i > 0; j++ {
			i--
			buf[i] = byte(d)
			d >>= 8
		}
	}
}

// Encode1363 returns |x| as a big-endian byte slice of exactly n bytes, padded
// with leading zeros. This is the integer-to-octet-string conversion of
// IEEE 1363 (I2OSP). If |x| needs more than n bytes, ErrTooLarge is returned.
func (x *Int) Encode1363(n int) ([]byte, error) {
	if x.ByteLen() > n {
		return nil, ErrTooLarge
	}
	buf := make([]byte, n)
	x.abs.fillBytes(buf)
	return buf, nil
}

// Decode1363 sets z to the unsigned big-endian value of buf and returns z. It
// is the inverse of [Int.Encode1363].
func (z *Int) Decode1363(buf []byte) *Int {
	return z.SetBytes(buf)
}

// SetString sets z to the value of s, interpreted in the given base, and
// returns z and a boolean indicating success. The base must be 10 or 16. s
// may be prefixed with a sign, and for base 16 with "0x" or "0X". If
// SetString fails the value of z is undefined.
func (z *Int) SetString(s string, base int) (*Int, bool) {
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if base == 16 && len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return nil, false
	}
	z.abs = z.abs[:0]
	switch base {
	case 10:
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c < '0' || c > '9' {
				return nil, false
			}
			z.abs = z.abs.mulAddWW(z.abs, 10, Word(c-'0'))
		}
	case 16:
		for i := 0; i < len(s); i++ {
			d, ok := hexDigit(s[i])
			if !ok {
				return nil, false
			}
			z.abs = z.abs.shl(z.abs, 4)
			if d != 0 {
				z.abs = z.abs.add(z.abs, nat{d})
			}
		}
	default:
		return nil, false
	}
	z.neg = neg && len(z.abs) > 0
	return z, true
}

func hexDigit(c byte) (Word, bool) {
	switch {
	case '0' <= c && c <= '9':
		return Word(c - '0'), true
	case 'a' <= c && c <= 'f':
		return Word(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return Word(c - 'A' + 10), true
	}
	return 0, false
}

// MustParse parses s in base 10, or in base 16 if s has a "0x" prefix. It
// panics if s is not a valid number. It is intended for constants in tests
// and package-level variables.
func MustParse(s string) *Int {
	base := 10
	if t := strings.TrimLeft(s, "+-"); strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		base = 16
	}
	z, ok := new(Int).SetString(s, base)
	if !ok {
		panic("bigint: invalid number " + s)
	}
	return z
}

const digits = "0123456789abcdef"

// Text returns the string representation of x in the given base. The base must
// be 10 or 16. Hexadecimal digits are lower case.
func (x *Int) Text(base int) string {
	if x == nil {
		return "<nil>"
	}
	var buf []byte
	switch base {
	case 16:
		buf = x.abs.hex()
	case 10:
		buf = x.abs.decimal()
	default:
		panic("bigint: unsupported base")
	}
	if x.neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

// String returns the decimal representation of x.
func (x *Int) String() string {
	return x.Text(10)
}

func (x nat) hex() []byte {
	if len(x) == 0 {
		return []byte{'0'}
	}
	n := (x.bitLen() + 3) / 4
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[n-1-i] = digits[x[i/16]>>(uint(i%16)*4)&0xf]
	}
	return buf
}

func (x nat) decimal() []byte {
	if len(x) == 0 {
		return []byte{'0'}
	}
	// Peel off 19 decimal digits at a time.
	const chunk = 1e19
	var buf []byte
	q := nat(nil).set(x)
	for len(q) > 0 {
		var r Word
		q, r = q.divW(q, chunk)
		for j := 0; j < 19; j++ {
			buf = append(buf, digits[r%10])
			r /= 10
			if len(q) == 0 && r == 0 {
				break
			}
		}
	}
	slices.Reverse(buf)
	return buf
}

// Format implements [fmt.Formatter]. It accepts the verbs 'd', 's' and 'v' for
// decimal output and 'x' and 'X' for hexadecimal output.
func (x *Int) Format(s fmt.State, ch rune) {
	var str string
	switch ch {
	case 'd', 's', 'v':
		str = x.Text(10)
	case 'x':
		str = x.Text(16)
	case 'X':
		str = strings.ToUpper(x.Text(16))
	default:
		fmt.Fprintf(s, "%%!%c(bigint.Int=%s)", ch, x.String())
		return
	}
	if w, ok := s.Width(); ok && len(str) < w {
		pad := " "
		if s.Flag('0') {
			pad = "0"
		}
		if s.Flag('-') {
			str += strings.Repeat(" ", w-len(str))
		} else {
			str = strings.Repeat(pad, w-len(str)) + str
		}
	}
	fmt.Fprint(s, str)
}
