package names

import (
	"fmt"
	"strings"
)

// Sort enumerates the physical type shapes of the target class-file format.
type Sort uint8

const (
	SortVoid Sort = iota
	SortBool
	SortChar
	SortInt8
	SortInt16
	SortInt32
	SortInt64
	SortFloat32
	SortFloat64
	SortObject
	SortArray
)

// PhysicalType is a target-platform type as it appears in descriptors.
// Values are immutable and compare structurally.
type PhysicalType struct {
	sort Sort
	desc string
}

var (
	VoidType    = PhysicalType{SortVoid, "V"}
	BoolType    = PhysicalType{SortBool, "Z"}
	CharType    = PhysicalType{SortChar, "C"}
	Int8Type    = PhysicalType{SortInt8, "B"}
	Int16Type   = PhysicalType{SortInt16, "S"}
	Int32Type   = PhysicalType{SortInt32, "I"}
	Int64Type   = PhysicalType{SortInt64, "J"}
	Float32Type = PhysicalType{SortFloat32, "F"}
	Float64Type = PhysicalType{SortFloat64, "D"}
)

// ObjectType builds a physical type from a slash-delimited internal name.
func ObjectType(internal string) PhysicalType {
	return PhysicalType{SortObject, "L" + internal + ";"}
}

// ArrayOf builds an array type of the given element.
func ArrayOf(elem PhysicalType) PhysicalType {
	return PhysicalType{SortArray, "[" + elem.desc}
}

func (t PhysicalType) Sort() Sort { return t.sort }

// Descriptor returns the erased descriptor string.
func (t PhysicalType) Descriptor() string { return t.desc }

// IsObject reports whether the type is a plain object type.
func (t PhysicalType) IsObject() bool { return t.sort == SortObject }

// InternalName returns the slash-delimited class name for object types and
// the full descriptor for arrays, matching the platform's owner-name rules.
func (t PhysicalType) InternalName() string {
	switch t.sort {
	case SortObject:
		return strings.TrimSuffix(strings.TrimPrefix(t.desc, "L"), ";")
	case SortArray:
		return t.desc
	}
	return t.desc
}

// Element returns an array's element type.
func (t PhysicalType) Element() (PhysicalType, error) {
	if t.sort != SortArray {
		return PhysicalType{}, fmt.Errorf("names: %s is not an array type", t.desc)
	}
	return ParseType(strings.TrimPrefix(t.desc, "["))
}

func (t PhysicalType) String() string { return t.desc }

// ParseType parses a descriptor string into a physical type.
func ParseType(desc string) (PhysicalType, error) {
	if desc == "" {
		return PhysicalType{}, fmt.Errorf("names: empty type descriptor")
	}
	switch desc[0] {
	case 'V':
		if desc == "V" {
			return VoidType, nil
		}
	case 'Z':
		if desc == "Z" {
			return BoolType, nil
		}
	case 'C':
		if desc == "C" {
			return CharType, nil
		}
	case 'B':
		if desc == "B" {
			return Int8Type, nil
		}
	case 'S':
		if desc == "S" {
			return Int16Type, nil
		}
	case 'I':
		if desc == "I" {
			return Int32Type, nil
		}
	case 'J':
		if desc == "J" {
			return Int64Type, nil
		}
	case 'F':
		if desc == "F" {
			return Float32Type, nil
		}
	case 'D':
		if desc == "D" {
			return Float64Type, nil
		}
	case 'L':
		if strings.HasSuffix(desc, ";") && len(desc) > 2 {
			return PhysicalType{SortObject, desc}, nil
		}
	case '[':
		if _, err := ParseType(desc[1:]); err == nil {
			return PhysicalType{SortArray, desc}, nil
		}
	}
	return PhysicalType{}, fmt.Errorf("names: malformed type descriptor %q", desc)
}
