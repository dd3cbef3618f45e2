package schema

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"

	"github.com/pioneers/typpo/pkg/config/archmode"
	"github.com/pioneers/typpo/pkg/io"
	"github.com/spaolacci/murmur3"
	"gopkg.in/yaml.v2"
)

type visit uint8

const (
	unvisited visit = iota
	visiting
	visited
)

type loader struct {
	profile archmode.Profile
	base    *Set
	fresh   map[string]*Type
	state   map[*Type]visit
}

// Load parses the YAML type definitions in src for target p and resolves
// every nested and variant reference. Declarations may refer to each
// other in any order and to any type of base, which is not modified.
// Nothing is returned unless every declared type resolves.
func Load(p archmode.Profile, src []byte, base *Set) (*Set, error) {
	if p.Name == "" {
		return nil, &Error{Reason: "target architecture is not set"}
	}
	if base != nil && base.profile.Name != p.Name {
		return nil, &Error{Reason: fmt.Sprintf("base set targets %s, not %s", base.profile.Name, p.Name)}
	}
	var doc document
	if err := yaml.UnmarshalStrict(src, &doc); err != nil {
		return nil, &Error{Reason: "malformed type definitions", Err: err}
	}
	if len(doc.Types) == 0 {
		return nil, &Error{Reason: "no types declared"}
	}

	l := &loader{
		profile: p,
		base:    base,
		fresh:   make(map[string]*Type, len(doc.Types)),
		state:   make(map[*Type]visit, len(doc.Types)),
	}
	for i := range doc.Types {
		doc.Types[i].Name = strings.TrimSpace(doc.Types[i].Name)
	}
	for _, d := range doc.Types {
		if err := l.declare(d); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Types {
		if err := l.buildFields(l.fresh[d.Name], d); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Types {
		if err := l.layout(l.fresh[d.Name]); err != nil {
			return nil, err
		}
	}
	return l.set(src), nil
}

func (l *loader) lookup(name string) (*Type, bool) {
	if t, ok := l.fresh[name]; ok {
		return t, true
	}
	return l.base.Type(name)
}

func (l *loader) declare(d typeDecl) error {
	name := d.Name
	if name == "" {
		return &Error{Reason: "type without a name"}
	}
	if _, ok := l.lookup(name); ok {
		return typeErr(name, "declared more than once")
	}
	if _, ok := lookupScalar(name, l.profile); ok || isReserved(name) {
		return typeErr(name, "name is reserved")
	}
	var kind TypeKind
	switch strings.ToLower(d.Kind) {
	case "", "struct":
		kind = StructKind
	case "union":
		kind = UnionKind
	default:
		return typeErr(name, "unknown kind %q", d.Kind)
	}
	l.fresh[name] = &Type{
		Name:   name,
		Kind:   kind,
		byName: make(map[string]int, len(d.Fields)),
	}
	return nil
}

func isReserved(name string) bool {
	switch name {
	case declTrailing, declBytes, declArray, declVariant:
		return true
	}
	return false
}

func (l *loader) buildFields(t *Type, d typeDecl) error {
	order := l.profile.Order
	if d.Endian != "" {
		o, err := io.ParseByteOrder(d.Endian)
		if err != nil {
			return &Error{Type: t.Name, Reason: "bad endian", Err: err}
		}
		order = o
	}
	if len(d.Fields) == 0 {
		return typeErr(t.Name, "no fields declared")
	}
	t.Fields = make([]*Field, 0, len(d.Fields))
	for i, fd := range d.Fields {
		name := strings.TrimSpace(fd.Name)
		if name == "" {
			return fieldErr(t.Name, fmt.Sprintf("#%d", i), "field without a name")
		}
		if _, dup := t.byName[name]; dup {
			return fieldErr(t.Name, name, "declared more than once")
		}
		f, err := l.buildField(t, name, fd, order)
		if err != nil {
			return err
		}
		t.byName[name] = len(t.Fields)
		t.Fields = append(t.Fields, f)
	}
	return nil
}

func (l *loader) buildField(t *Type, name string, fd fieldDecl, order io.ByteOrder) (*Field, error) {
	f := &Field{Name: name, Order: order}
	if fd.Endian != "" {
		o, err := io.ParseByteOrder(fd.Endian)
		if err != nil {
			return nil, &Error{Type: t.Name, Field: name, Reason: "bad endian", Err: err}
		}
		f.Order = o
	}
	typ := strings.Join(strings.Fields(fd.Type), " ")
	if fd.Bits != nil {
		if _, ok := lookupScalar(typ, l.profile); !ok {
			return nil, fieldErr(t.Name, name, "bits only applies to scalar fields")
		}
	}
	if fd.On != "" && typ != declVariant {
		return nil, fieldErr(t.Name, name, "only variant fields take a discriminant")
	}

	switch {
	case typ == "":
		return nil, fieldErr(t.Name, name, "missing type")
	case typ == declTrailing || (typ == declBytes && fd.Length == 0):
		f.Kind = Trailing
	case typ == declArray || typ == declBytes:
		if fd.Length <= 0 {
			return nil, fieldErr(t.Name, name, "array length must be positive, got %d", fd.Length)
		}
		f.Kind = Array
		f.Length = fd.Length
	case typ == declVariant:
		c, err := l.buildChoice(t, name, fd)
		if err != nil {
			return nil, err
		}
		f.Kind = Variant
		f.Choice = c
	default:
		if s, ok := lookupScalar(typ, l.profile); ok {
			if fd.Bits != nil {
				s.bits = *fd.Bits
			}
			if err := checkWidth(s); err != nil {
				return nil, fieldErr(t.Name, name, "%s", err)
			}
			f.Kind = Scalar
			f.Bits = s.bits
			f.Signed = s.signed
			break
		}
		nt, ok := l.lookup(typ)
		if !ok {
			return nil, fieldErr(t.Name, name, "unknown type %q", typ)
		}
		f.Kind = Struct
		f.Type = nt
	}
	return f, nil
}

func checkWidth(s scalarSpec) error {
	switch {
	case s.bits <= 0:
		return fmt.Errorf("width must be positive, got %d", s.bits)
	case s.bits%8 != 0:
		return fmt.Errorf("width %d is not a whole number of bytes", s.bits)
	case s.bits > MaxBits:
		return fmt.Errorf("width %d exceeds %d bits", s.bits, MaxBits)
	case s.signed && s.bits > MaxSignedBits:
		return fmt.Errorf("signed width %d exceeds %d bits", s.bits, MaxSignedBits)
	}
	return nil
}

func (l *loader) buildChoice(t *Type, name string, fd fieldDecl) (*Choice, error) {
	if t.Kind == UnionKind {
		return nil, fieldErr(t.Name, name, "variants are not allowed in unions")
	}
	if fd.On == "" {
		return nil, fieldErr(t.Name, name, "variant needs a discriminant (on)")
	}
	idx, ok := t.byName[fd.On]
	if !ok {
		return nil, fieldErr(t.Name, name, "discriminant %q must be declared before the variant", fd.On)
	}
	if t.Fields[idx].Kind != Scalar {
		return nil, fieldErr(t.Name, name, "discriminant %q is not a scalar", fd.On)
	}
	if len(fd.Cases) == 0 && fd.Default == "" {
		return nil, fieldErr(t.Name, name, "variant has no cases")
	}
	c := &Choice{On: fd.On, Index: idx, Cases: make(map[uint64]*Type, len(fd.Cases))}
	disc := t.Fields[idx]
	for k, ref := range fd.Cases {
		v, err := casePattern(disc, k)
		if err != nil {
			return nil, fieldErr(t.Name, name, "case %v: %s", k, err)
		}
		if _, dup := c.Cases[v]; dup {
			return nil, fieldErr(t.Name, name, "case %v: duplicate value", k)
		}
		bt, ok := l.lookup(ref)
		if !ok {
			return nil, fieldErr(t.Name, name, "case %v: unknown type %q", k, ref)
		}
		c.Cases[v] = bt
	}
	if fd.Default != "" {
		bt, ok := l.lookup(fd.Default)
		if !ok {
			return nil, fieldErr(t.Name, name, "default: unknown type %q", fd.Default)
		}
		c.Default = bt
	}
	return c, nil
}

// casePattern converts a case key to the bit pattern the discriminant
// holds for it, two's complement for signed discriminants.
func casePattern(disc *Field, key interface{}) (uint64, error) {
	var (
		v   *big.Int
		neg bool
	)
	switch k := key.(type) {
	case int:
		v, neg = big.NewInt(int64(k)), k < 0
	case int64:
		v, neg = big.NewInt(k), k < 0
	case uint64:
		v = new(big.Int).SetUint64(k)
	default:
		return 0, fmt.Errorf("not an integer")
	}
	bits := uint(disc.Bits)
	if disc.Signed {
		lim := new(big.Int).Lsh(big.NewInt(1), bits-1)
		if v.Cmp(lim) >= 0 || v.Cmp(new(big.Int).Neg(lim)) < 0 {
			return 0, fmt.Errorf("out of range for signed %d-bit %s", bits, disc.Name)
		}
	} else if neg || v.BitLen() > int(bits) {
		return 0, fmt.Errorf("out of range for unsigned %d-bit %s", bits, disc.Name)
	}
	if neg {
		v.Add(v, new(big.Int).Lsh(big.NewInt(1), bits))
	}
	return v.Uint64(), nil
}

// layout computes fixed sizes bottom-up and rejects self-containing types
// and open-ended fields that aren't last.
func (l *loader) layout(t *Type) error {
	if l.fresh[t.Name] != t {
		// Types of the base set are laid out already.
		return nil
	}
	switch l.state[t] {
	case visited:
		return nil
	case visiting:
		return typeErr(t.Name, "type contains itself")
	}
	l.state[t] = visiting

	t.fixed, t.open = 0, false
	for i, f := range t.Fields {
		switch f.Kind {
		case Scalar:
			f.fixed = f.Bytes()
		case Array:
			f.fixed = f.Length
		case Trailing:
			f.open = true
		case Struct:
			if err := l.layout(f.Type); err != nil {
				return err
			}
			f.fixed, f.open = f.Type.fixed, f.Type.open
		case Variant:
			for _, bt := range f.Choice.branches() {
				if err := l.layout(bt); err != nil {
					return err
				}
				if bt.fixed > f.fixed {
					f.fixed = bt.fixed
				}
				f.open = f.open || bt.open
			}
		}
		if t.Kind == UnionKind {
			if f.fixed > t.fixed {
				t.fixed = f.fixed
			}
		} else {
			if f.open && i != len(t.Fields)-1 {
				return fieldErr(t.Name, f.Name, "open-ended field must be the last one")
			}
			t.fixed += f.fixed
		}
		t.open = t.open || f.open
	}
	l.state[t] = visited
	return nil
}

func (c *Choice) branches() []*Type {
	ts := make([]*Type, 0, len(c.Cases)+1)
	for _, t := range c.Cases {
		ts = append(ts, t)
	}
	if c.Default != nil {
		ts = append(ts, c.Default)
	}
	return ts
}

func (l *loader) set(src []byte) *Set {
	s := &Set{
		profile: l.profile,
		types:   make(map[string]*Type, l.base.Len()+len(l.fresh)),
	}
	if l.base != nil {
		for n, t := range l.base.types {
			s.types[n] = t
		}
	}
	for n, t := range l.fresh {
		s.types[n] = t
	}

	s.fingerprint = Fingerprint(l.profile, src, l.base)
	return s
}

// Fingerprint returns the fingerprint Load gives the set built from src
// for p on top of base.
func Fingerprint(p archmode.Profile, src []byte, base *Set) uint64 {
	h := murmur3.New64()
	var prev [8]byte
	binary.LittleEndian.PutUint64(prev[:], base.Fingerprint())
	_, _ = h.Write([]byte(p.Name))
	_, _ = h.Write(prev[:])
	_, _ = h.Write(src)
	return h.Sum64()
}
