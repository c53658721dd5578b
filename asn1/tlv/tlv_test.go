package tlv

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"testing"

	"codello.dev/pkcore/asn1"
)

func ExampleHeader_String() {
	fmt.Println(Header{Tag: asn1.Universal(asn1.TagSequence), Constructed: true, Length: 5})
	fmt.Println(Header{Tag: asn1.ContextSpecific(0), Constructed: true, Length: LengthIndefinite})
	fmt.Println(EndOfContents)
	// Output:
	// [UNIVERSAL 16]/c:5
	// [0]/c:indefinite
	// EndOfContents
}

func TestAppendHeader(t *testing.T) {
	tests := map[string]struct {
		Header
		want []byte
	}{
		"EndOfContents":      {Header{asn1.Universal(asn1.TagReserved), false, 0}, []byte{0x00, 0x00}},
		"UTF8String":         {Header{asn1.Universal(asn1.TagUTF8String), false, 5}, []byte{0x0C, 0x05}},
		"LongTag":            {Header{asn1.ContextSpecific(173), true, 8}, []byte{0xBF, 0x81, 0x2D, 0x08}},
		"Tag31":              {Header{asn1.Application(31), false, 0}, []byte{0x5F, 0x1F, 0x00}},
		"Sequence":           {Header{asn1.Universal(asn1.TagSequence), true, 60}, []byte{0x30, 60}},
		"Length127":          {Header{asn1.Universal(asn1.TagOctetString), false, 127}, []byte{0x04, 0x7F}},
		"Length128":          {Header{asn1.Universal(asn1.TagOctetString), false, 128}, []byte{0x04, 0x81, 0x80}},
		"LongSequence":       {Header{asn1.Universal(asn1.TagSequence), true, 746}, []byte{0x30, 0x82, 0x02, 0xEA}},
		"IndefiniteSequence": {Header{asn1.Universal(asn1.TagSequence), true, LengthIndefinite}, []byte{0x30, 0x80}},
		"Private":            {Header{asn1.Private(2), false, 1}, []byte{0xC2, 0x01}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.Header.Len(); got != len(tt.want) {
				t.Errorf("Len() = %v, want %v", got, len(tt.want))
			}
			if got := AppendHeader(nil, tt.Header); !slices.Equal(tt.want, got) {
				t.Errorf("AppendHeader() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestParseHeader(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		want    Header
		wantN   int
		wantErr error
	}{
		"EndOfContents":      {[]byte{0x00, 0x00}, Header{}, 2, nil},
		"UTF8String":         {[]byte{0x0C, 0x05, 0x00}, Header{asn1.Universal(asn1.TagUTF8String), false, 5}, 2, nil},
		"LongTag":            {[]byte{0xBF, 0x81, 0x2D, 0x08, 0x00}, Header{asn1.ContextSpecific(173), true, 8}, 4, nil},
		"Sequence":           {[]byte{0x30, 60}, Header{asn1.Universal(asn1.TagSequence), true, 60}, 2, nil},
		"LongSequence":       {[]byte{0x30, 0x82, 0x02, 0xEA}, Header{asn1.Universal(asn1.TagSequence), true, 746}, 4, nil},
		"IndefiniteSequence": {[]byte{0x30, 0x80}, Header{asn1.Universal(asn1.TagSequence), true, LengthIndefinite}, 2, nil},
		"NonMinimalLength":   {[]byte{0x04, 0x81, 0x05}, Header{asn1.Universal(asn1.TagOctetString), false, 5}, 3, nil},
		"LeadingZeroLength":  {[]byte{0x04, 0x82, 0x00, 0x05}, Header{asn1.Universal(asn1.TagOctetString), false, 5}, 4, nil},

		"EOF":                 {nil, Header{}, 0, io.EOF},
		"ErrNoLength":         {[]byte{0x30}, Header{}, 0, io.ErrUnexpectedEOF},
		"ErrShortTag":         {[]byte{0xBF, 0x81}, Header{}, 0, io.ErrUnexpectedEOF},
		"ErrShortLength":      {[]byte{0x30, 0x82, 0x02}, Header{}, 0, io.ErrUnexpectedEOF},
		"ErrPaddedTag":        {[]byte{0x1F, 0x80, 0x2D, 0x00}, Header{}, 0, ErrNonMinimalTag},
		"ErrLowTagInHighForm": {[]byte{0x1F, 0x05, 0x00}, Header{}, 0, ErrNonMinimalTag},
		"ErrIndefinitePrim":   {[]byte{0x04, 0x80}, Header{}, 0, ErrIndefinitePrimitive},
		"ErrReserved":         {[]byte{0x04, 0xFF}, Header{}, 0, ErrReservedLength},
		"ErrLengthOverflow":   {[]byte{0x04, 0x89, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}, Header{}, 0, ErrLengthOverflow},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, n, err := ParseHeader(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseHeader(% X) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("ParseHeader(% X) = %v, want %v", tt.data, got, tt.want)
			}
			if n != tt.wantN {
				t.Errorf("ParseHeader(% X) n = %d, want %d", tt.data, n, tt.wantN)
			}
		})
	}
}

func TestParseHeaderDER(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		wantErr error
	}{
		"Short":            {[]byte{0x04, 0x05}, nil},
		"Long":             {[]byte{0x04, 0x81, 0x80}, nil},
		"NonMinimalLength": {[]byte{0x04, 0x81, 0x05}, ErrNonMinimalLength},
		"LeadingZero":      {[]byte{0x04, 0x82, 0x00, 0x80}, ErrNonMinimalLength},
		"Indefinite":       {[]byte{0x30, 0x80}, ErrIndefiniteLength},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseHeaderDER(tt.data); !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseHeaderDER(% X) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
		})
	}
}

func TestParseHeader_RoundTrip(t *testing.T) {
	for _, h := range []Header{
		{asn1.Universal(asn1.TagInteger), false, 0},
		{asn1.Application(1 << 20), true, 1 << 24},
		{asn1.Private(30), false, 255},
		{asn1.ContextSpecific(31), true, 256},
	} {
		b := AppendHeader(nil, h)
		got, n, err := ParseHeaderDER(b)
		if err != nil || got != h || n != len(b) {
			t.Errorf("ParseHeaderDER(AppendHeader(%v)) = %v, %d, %v", h, got, n, err)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := map[string]struct {
		data         []byte
		wantHeader   Header
		wantContents []byte
		wantRest     []byte
	}{
		"Primitive": {
			[]byte{0x02, 0x01, 0x05, 0xAA},
			Header{asn1.Universal(asn1.TagInteger), false, 1},
			[]byte{0x05}, []byte{0xAA},
		},
		"Indefinite": {
			[]byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00, 0xAA},
			Header{asn1.Universal(asn1.TagSequence), true, LengthIndefinite},
			[]byte{0x02, 0x01, 0x05}, []byte{0xAA},
		},
		"NestedIndefinite": {
			[]byte{0x30, 0x80, 0xA0, 0x80, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00},
			Header{asn1.Universal(asn1.TagSequence), true, LengthIndefinite},
			[]byte{0xA0, 0x80, 0x05, 0x00, 0x00, 0x00}, []byte{},
		},
		"EmptyIndefinite": {
			[]byte{0x30, 0x80, 0x00, 0x00},
			Header{asn1.Universal(asn1.TagSequence), true, LengthIndefinite},
			[]byte{}, []byte{},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, contents, rest, err := Split(tt.data)
			if err != nil {
				t.Fatalf("Split(% X) error = %v", tt.data, err)
			}
			if h != tt.wantHeader {
				t.Errorf("Split(% X) header = %v, want %v", tt.data, h, tt.wantHeader)
			}
			if !slices.Equal(contents, tt.wantContents) {
				t.Errorf("Split(% X) contents = % X, want % X", tt.data, contents, tt.wantContents)
			}
			if !slices.Equal(rest, tt.wantRest) {
				t.Errorf("Split(% X) rest = % X, want % X", tt.data, rest, tt.wantRest)
			}
		})
	}
}

func TestSplit_Errors(t *testing.T) {
	tests := map[string]struct {
		data       []byte
		wantErr    error
		wantOffset int64
	}{
		"TruncatedValue":  {[]byte{0x04, 0x05, 0x01}, io.ErrUnexpectedEOF, 3},
		"MissingEOC":      {[]byte{0x30, 0x80, 0x05, 0x00}, io.ErrUnexpectedEOF, 4},
		"HalfEOC":         {[]byte{0x30, 0x80, 0x00}, io.ErrUnexpectedEOF, 3},
		"InvalidEOC":      {[]byte{0x30, 0x80, 0x00, 0x01, 0x00}, ErrInvalidEOC, 2},
		"NestedTruncated": {[]byte{0x30, 0x80, 0x04, 0x03, 0x01}, io.ErrUnexpectedEOF, 5},
		"NestedBadHeader": {[]byte{0x30, 0x80, 0x05, 0x00, 0x04, 0xFF}, ErrReservedLength, 4},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := Split(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Split(% X) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Split(% X) error = %T, want *SyntaxError", tt.data, err)
			}
			if se.ByteOffset != tt.wantOffset {
				t.Errorf("Split(% X) offset = %d, want %d", tt.data, se.ByteOffset, tt.wantOffset)
			}
		})
	}
	if _, _, _, err := Split(nil); err != io.EOF {
		t.Errorf("Split(nil) error = %v, want io.EOF", err)
	}
}

func TestSplit_TooDeep(t *testing.T) {
	var b []byte
	for i := 0; i <= MaxDepth; i++ {
		b = append(b, 0x30, 0x80)
	}
	for i := 0; i <= MaxDepth; i++ {
		b = append(b, 0x00, 0x00)
	}
	if _, _, _, err := Split(b); !errors.Is(err, ErrTooDeep) {
		t.Errorf("Split() error = %v, want %v", err, ErrTooDeep)
	}
}
