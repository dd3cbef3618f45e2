// Package value implements instances of schema types: slot access by
// name, exact sizing, and the binary codec that maps trees to frames.
package value

import (
	"fmt"
	"sort"

	"github.com/pioneers/typpo/pkg/schema"
)

// Value is a slot handle: *Scalar, *Bytes or *Tree. Handles refer into
// the owning tree, so mutating one mutates the tree.
type Value interface {
	// Unwrap returns a schema-free snapshot of the value.
	Unwrap() interface{}

	clone(owner *Tree) Value
}

// Tree is an instance of a schema type. It holds exactly one slot per
// declared field. A variant slot is nil while its discriminant selects no
// branch.
type Tree struct {
	typ   *schema.Type
	slots []Value
	// active is the union member Write encodes.
	active int
	// owner and index locate a nested tree in its parent.
	owner *Tree
	index int
}

// New creates an empty instance of t: scalars are zero, nested types are
// empty instances, trailing bytes are empty and arrays zero-filled.
func New(t *schema.Type) *Tree {
	tr := &Tree{typ: t, slots: make([]Value, len(t.Fields))}
	for i, f := range t.Fields {
		switch f.Kind {
		case schema.Scalar:
			tr.slots[i] = &Scalar{field: f, owner: tr, index: i}
		case schema.Trailing:
			tr.slots[i] = &Bytes{field: f, owner: tr, index: i, b: []byte{}}
		case schema.Array:
			tr.slots[i] = &Bytes{field: f, owner: tr, index: i, b: make([]byte, f.Length)}
		case schema.Struct:
			tr.slots[i] = tr.newChild(i, f.Type)
		}
	}
	for i, f := range t.Fields {
		if f.Kind == schema.Variant {
			tr.slots[i] = tr.branchFor(i, f, nil)
		}
	}
	return tr
}

func (t *Tree) newChild(i int, typ *schema.Type) *Tree {
	c := New(typ)
	c.owner, c.index = t, i
	return c
}

// touched records a change of slot i: it becomes the active member of a
// union, and so does every enclosing union member up the tree.
func (t *Tree) touched(i int) {
	for tr := t; tr != nil; i, tr = tr.index, tr.owner {
		if tr.typ.Kind == schema.UnionKind {
			tr.active = i
		}
	}
}

// Type returns the schema type of the tree.
func (t *Tree) Type() *schema.Type {
	return t.typ
}

// Active returns the name of the union member Write encodes. It is empty
// for struct types.
func (t *Tree) Active() string {
	if t.typ.Kind != schema.UnionKind {
		return ""
	}
	return t.typ.Fields[t.active].Name
}

// GetSlot returns the handle for the named field.
func (t *Tree) GetSlot(name string) (Value, error) {
	i, ok := t.typ.Index(name)
	if !ok {
		return nil, &UnknownFieldError{Type: t.typ.Name, Field: name}
	}
	if t.slots[i] == nil {
		return nil, t.noBranch(t.typ.Fields[i], "no branch selected")
	}
	return t.slots[i], nil
}

// SetSlot assigns v to the named field. Nested and variant fields take a
// map[string]interface{} of sub-field values (unspecified sub-fields keep
// their values) or a *Tree of the same type. Setting a union member makes
// it the active one, as does setting a slot through a member's handle.
// On error the tree is left unchanged.
func (t *Tree) SetSlot(name string, v interface{}) error {
	i, ok := t.typ.Index(name)
	if !ok {
		return &UnknownFieldError{Type: t.typ.Name, Field: name}
	}
	staged := t.clone(nil).(*Tree)
	if err := staged.assignSlot(i, v); err != nil {
		return err
	}
	t.adopt(staged)
	if t.owner != nil {
		t.owner.touched(t.index)
	}
	return nil
}

// Set assigns all fields named in v, see SetSlot. It makes *Tree usable
// wherever a slot handle is updated generically.
func (t *Tree) Set(v interface{}) error {
	staged := t.clone(nil).(*Tree)
	if err := staged.assign(v); err != nil {
		return err
	}
	t.adopt(staged)
	if t.owner != nil {
		t.owner.touched(t.index)
	}
	return nil
}

func (t *Tree) assignSlot(i int, v interface{}) error {
	f := t.typ.Fields[i]
	var err error
	switch slot := t.slots[i].(type) {
	case *Scalar:
		err = slot.Set(v)
	case *Bytes:
		err = slot.Set(v)
	case *Tree:
		err = slot.assign(v)
	default:
		err = t.noBranch(f, "no branch selected")
	}
	if err != nil {
		return err
	}
	t.touched(i)
	return nil
}

func (t *Tree) assign(v interface{}) error {
	switch x := v.(type) {
	case *Tree:
		if x == nil || x.typ != t.typ {
			return invalidValue(t.typ.Name, "", v, "tree of a different type")
		}
		t.adopt(x.clone(nil).(*Tree))
		return nil
	case map[string]interface{}:
		return t.assignMap(x)
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				return invalidValue(t.typ.Name, fmt.Sprint(k), v, "field names must be strings")
			}
			m[ks] = e
		}
		return t.assignMap(m)
	default:
		return invalidValue(t.typ.Name, "", v, "expected a map of field values")
	}
}

// assignMap applies values in declaration order, so discriminants are set
// before the variants that depend on them.
func (t *Tree) assignMap(m map[string]interface{}) error {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if _, ok := t.typ.Index(k); !ok {
			return &UnknownFieldError{Type: t.typ.Name, Field: k}
		}
	}
	for i, f := range t.typ.Fields {
		v, ok := m[f.Name]
		if !ok {
			continue
		}
		if err := t.assignSlot(i, v); err != nil {
			return err
		}
	}
	return nil
}

// reselect swaps variant branches that depend on the discriminant at i.
// A branch already of the selected type is kept.
func (t *Tree) reselect(i int) {
	for j, f := range t.typ.Fields {
		if f.Kind != schema.Variant || f.Choice.Index != i {
			continue
		}
		cur, _ := t.slots[j].(*Tree)
		t.slots[j] = t.branchFor(j, f, cur)
	}
}

// branchFor returns cur if it already has the type selected by the
// discriminant of f, a fresh instance of that type otherwise, or nil if
// nothing is selected.
func (t *Tree) branchFor(i int, f *schema.Field, cur *Tree) Value {
	bt, ok := t.selected(f)
	if !ok {
		return nil
	}
	if cur != nil && cur.typ == bt {
		return cur
	}
	return t.newChild(i, bt)
}

func (t *Tree) selected(f *schema.Field) (*schema.Type, bool) {
	d, ok := t.slots[f.Choice.Index].(*Scalar).Uint64()
	if !ok {
		return nil, false
	}
	return f.Choice.Branch(d)
}

func (t *Tree) noBranch(f *schema.Field, reason string) error {
	return &VariantError{
		Type:         t.typ.Name,
		Field:        f.Name,
		Discriminant: t.slots[f.Choice.Index].(*Scalar).String(),
		Reason:       reason,
	}
}

func (t *Tree) clone(owner *Tree) Value {
	c := &Tree{typ: t.typ, slots: make([]Value, len(t.slots)), active: t.active, owner: owner}
	if owner != nil {
		c.index = t.index
	}
	for i, v := range t.slots {
		if v != nil {
			c.slots[i] = v.clone(c)
		}
	}
	return c
}

// adopt moves the contents of src into t, keeping t's existing handles
// valid wherever the slot shape didn't change.
func (t *Tree) adopt(src *Tree) {
	t.active = src.active
	for i := range t.slots {
		switch d := t.slots[i].(type) {
		case *Scalar:
			d.raw = src.slots[i].(*Scalar).raw
		case *Bytes:
			d.b = src.slots[i].(*Bytes).b
		case *Tree:
			if s, ok := src.slots[i].(*Tree); ok && s.typ == d.typ {
				d.adopt(s)
				continue
			}
			t.slots[i] = t.own(i, src.slots[i])
		default:
			t.slots[i] = t.own(i, src.slots[i])
		}
	}
}

// own reparents a nested tree moved into slot i of t.
func (t *Tree) own(i int, v Value) Value {
	if c, ok := v.(*Tree); ok {
		c.owner, c.index = t, i
	}
	return v
}

// Unwrap returns the tree as nested map[string]interface{} values.
func (t *Tree) Unwrap() interface{} {
	m := make(map[string]interface{}, len(t.slots))
	for i, f := range t.typ.Fields {
		if t.slots[i] == nil {
			m[f.Name] = nil
			continue
		}
		m[f.Name] = t.slots[i].Unwrap()
	}
	return m
}

// Map is Unwrap with the concrete result type.
func (t *Tree) Map() map[string]interface{} {
	return t.Unwrap().(map[string]interface{})
}
