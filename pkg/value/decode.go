package value

import (
	"errors"

	"github.com/pioneers/typpo/pkg/io"
	"github.com/pioneers/typpo/pkg/schema"
)

// Read populates t from buf. See ReadAt.
func (t *Tree) Read(buf []byte) error {
	return t.ReadAt(buf, 0)
}

// ReadBuffer populates t from b.
func (t *Tree) ReadBuffer(b *io.Buffer) error {
	return t.ReadAt(b.Bytes(), 0)
}

// ReadAt populates t from buf starting at off. A trailing bytes field
// takes every byte left in buf; the buffer length is the only length
// signal. Decoding goes into a fresh instance, t is replaced only on
// success and keeps no reference to buf.
func (t *Tree) ReadAt(buf []byte, off int) error {
	err := t.readAt(buf, off)
	n := 0
	if err == nil {
		n = len(buf) - off
	}
	updateCodecMetrics(opDecode, n, err)
	return err
}

func (t *Tree) readAt(buf []byte, off int) error {
	fresh := New(t.typ)
	r := io.NewBinReaderFromBuf(buf)
	r.Seek(off)
	fresh.DecodeBinary(r)
	if r.Err != nil {
		if errors.Is(r.Err, io.ErrShortBuffer) {
			return &BufferTooSmallError{
				Type: t.typ.Name,
				Need: t.typ.FixedSize(),
				Have: len(buf) - off,
				Err:  r.Err,
			}
		}
		return r.Err
	}
	t.adopt(fresh)
	return nil
}

// DecodeBinary implements the io.Serializable interface. It decodes in
// place, use Read for all-or-nothing semantics.
func (t *Tree) DecodeBinary(r *io.BinReader) {
	if r.Err != nil {
		return
	}
	if t.typ.Kind == schema.UnionKind {
		t.decodeUnion(r)
		return
	}
	for i := range t.slots {
		t.decodeSlot(r, i)
		if r.Err != nil {
			return
		}
	}
}

// decodeUnion decodes every member from the same region. The member that
// covers the most bytes becomes active (the first one on ties), so
// writing the tree back reproduces the frame.
func (t *Tree) decodeUnion(r *io.BinReader) {
	start := r.Offset()
	end := start + t.typ.FixedSize()
	best, bestEnd := 0, -1
	for i := range t.slots {
		mr := r.Fork()
		t.decodeSlot(mr, i)
		if mr.Err != nil {
			r.Err = mr.Err
			return
		}
		if mr.Offset() > bestEnd {
			best, bestEnd = i, mr.Offset()
		}
	}
	t.active = best
	if bestEnd > end {
		end = bestEnd
	}
	r.Seek(end)
}

func (t *Tree) decodeSlot(r *io.BinReader, i int) {
	f := t.typ.Fields[i]
	switch f.Kind {
	case schema.Scalar:
		s := t.slots[i].(*Scalar)
		r.ReadUint(&s.raw, f.Bytes(), f.Order)
	case schema.Array:
		b := t.slots[i].(*Bytes)
		b.b = make([]byte, f.Length)
		r.ReadBytes(b.b)
	case schema.Trailing:
		t.slots[i].(*Bytes).b = r.ReadRemaining()
	case schema.Struct:
		t.slots[i].(*Tree).DecodeBinary(r)
	case schema.Variant:
		bt, ok := t.selected(f)
		if !ok {
			r.Err = t.noBranch(f, "no case matches")
			return
		}
		child := t.newChild(i, bt)
		child.DecodeBinary(r)
		t.slots[i] = child
	}
}
