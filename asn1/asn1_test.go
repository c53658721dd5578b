// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1

import (
	"fmt"
	"testing"
)

func ExampleTag_String() {
	fmt.Println(Application(17))
	fmt.Println(ContextSpecific(8))
	fmt.Println(Universal(TagInteger))
	fmt.Println(Universal(TagSequence).Name())
	// Output:
	// [APPLICATION 17]
	// [8]
	// [UNIVERSAL 2]
	// SEQUENCE
}

func TestClass_Bits(t *testing.T) {
	tests := map[string]struct {
		class Class
		want  byte
	}{
		"Universal":       {ClassUniversal, ClassBitsUniversal},
		"Application":     {ClassApplication, ClassBitsApplication},
		"ContextSpecific": {ClassContextSpecific, ClassBitsContextSpecific},
		"Private":         {ClassPrivate, ClassBitsPrivate},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.class.Bits(); got != tt.want {
				t.Errorf("Bits() = %#02x, want %#02x", got, tt.want)
			}
			if got := ClassOf(tt.want | Constructed | 0x10); got != tt.class {
				t.Errorf("ClassOf(%#02x) = %v, want %v", tt.want|Constructed|0x10, got, tt.class)
			}
		})
	}
}

func TestClass_String(t *testing.T) {
	if got := ClassContextSpecific.String(); got != "ContextSpecific" {
		t.Errorf("String() = %q, want %q", got, "ContextSpecific")
	}
	if got := Class(7).String(); got != "Class(7)" {
		t.Errorf("String() = %q, want %q", got, "Class(7)")
	}
	if Class(4).IsValid() {
		t.Errorf("Class(4).IsValid() = true, want false")
	}
}

func TestTag_Name(t *testing.T) {
	tests := map[string]struct {
		tag  Tag
		want string
	}{
		"Integer":     {Universal(TagInteger), "INTEGER"},
		"OID":         {Universal(TagOID), "OBJECT IDENTIFIER"},
		"Unknown":     {Universal(99), "[UNIVERSAL 99]"},
		"Context":     {ContextSpecific(0), "[0]"},
		"Application": {Application(2), "[APPLICATION 2]"},
		"Private":     {Private(TagInteger), "[PRIVATE 2]"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.tag.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}
