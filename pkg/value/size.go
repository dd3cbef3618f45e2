package value

import "github.com/pioneers/typpo/pkg/schema"

// Size returns the exact number of bytes Write produces for t: fixed
// fields, nested instances and selected variant branches at their exact
// sizes, plus the actual length of trailing bytes. A union takes the
// larger of its fixed size and its active member.
func (t *Tree) Size() int {
	if t.typ.Kind == schema.UnionKind {
		n := t.typ.FixedSize()
		if m := t.slotSize(t.active); m > n {
			n = m
		}
		return n
	}
	var n int
	for i := range t.slots {
		n += t.slotSize(i)
	}
	return n
}

func (t *Tree) slotSize(i int) int {
	f := t.typ.Fields[i]
	switch f.Kind {
	case schema.Scalar:
		return f.Bytes()
	case schema.Array:
		return f.Length
	}
	switch v := t.slots[i].(type) {
	case *Bytes:
		return v.Len()
	case *Tree:
		return v.Size()
	}
	return 0
}
