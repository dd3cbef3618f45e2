// Package schema holds the in-memory model of loaded type definitions.
// Everything here is immutable once Load returns, so a Set can be shared
// between goroutines freely.
package schema

import (
	"sort"

	"github.com/pioneers/typpo/pkg/config/archmode"
	"github.com/pioneers/typpo/pkg/io"
)

// MaxBits is the widest scalar a field may declare.
const MaxBits = io.MaxIntegerSize * 8

// MaxSignedBits is the widest signed scalar a field may declare.
const MaxSignedBits = 64

// FieldKind enumerates the shapes a field can take.
type FieldKind uint8

// Field kinds.
const (
	Scalar FieldKind = iota
	Struct
	Variant
	Trailing
	Array
)

// String implements the fmt.Stringer interface.
func (k FieldKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Struct:
		return "struct"
	case Variant:
		return "variant"
	case Trailing:
		return "trailing"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// TypeKind says how the fields of a type are laid out.
type TypeKind uint8

// Type kinds. Struct fields follow one another, union members all start
// at offset zero of the same region.
const (
	StructKind TypeKind = iota
	UnionKind
)

// String implements the fmt.Stringer interface.
func (k TypeKind) String() string {
	if k == UnionKind {
		return "union"
	}
	return "struct"
}

// Field is one named member of a Type.
type Field struct {
	Name  string
	Kind  FieldKind
	Order io.ByteOrder

	// Bits and Signed describe Scalar fields.
	Bits   int
	Signed bool
	// Length is the byte count of Array fields.
	Length int
	// Type is the nested type of Struct fields.
	Type *Type
	// Choice is set for Variant fields.
	Choice *Choice

	fixed int
	open  bool
}

// Choice maps discriminant values of a variant field to branch types.
type Choice struct {
	// On is the name of the discriminant field, Index its position.
	On    string
	Index int
	Cases map[uint64]*Type
	// Default is used when no case matches, may be nil.
	Default *Type
}

// Branch returns the type selected by discriminant d.
func (c *Choice) Branch(d uint64) (*Type, bool) {
	if t, ok := c.Cases[d]; ok {
		return t, true
	}
	if c.Default != nil {
		return c.Default, true
	}
	return nil, false
}

// FixedSize returns the number of bytes the field always occupies.
// Trailing fields contribute nothing, variants their widest branch.
func (f *Field) FixedSize() int {
	return f.fixed
}

// IsOpen reports whether the field ends in open-ended trailing bytes.
func (f *Field) IsOpen() bool {
	return f.open
}

// Bytes returns the scalar width in bytes.
func (f *Field) Bytes() int {
	return f.Bits / 8
}

// Type is a named, ordered list of fields.
type Type struct {
	Name   string
	Kind   TypeKind
	Fields []*Field

	byName map[string]int
	fixed  int
	open   bool
}

// Index returns the position of the named field.
func (t *Type) Index(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// Field returns the named field or nil.
func (t *Type) Field(name string) *Field {
	if i, ok := t.byName[name]; ok {
		return t.Fields[i]
	}
	return nil
}

// FixedSize returns the fixed-size portion of the type: every field
// except an open-ended trailing one. For unions it is the widest member.
func (t *Type) FixedSize() int {
	return t.fixed
}

// IsOpen reports whether instances end in open-ended trailing bytes.
func (t *Type) IsOpen() bool {
	return t.open
}

// Set is the result of loading one or more type files for one target.
type Set struct {
	profile     archmode.Profile
	types       map[string]*Type
	fingerprint uint64
}

// Profile returns the architecture the set was loaded for.
func (s *Set) Profile() archmode.Profile {
	return s.profile
}

// Type returns the named type.
func (s *Set) Type(name string) (*Type, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.types[name]
	return t, ok
}

// Names returns all type names in sorted order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.types))
	for n := range s.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of types in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.types)
}

// Fingerprint identifies the sources and profile the set was built from.
func (s *Set) Fingerprint() uint64 {
	if s == nil {
		return 0
	}
	return s.fingerprint
}
