package value

import (
	"fmt"

	"github.com/pioneers/typpo/pkg/io"
	"github.com/pioneers/typpo/pkg/schema"
)

// Write serializes t at the start of buf. See WriteAt.
func (t *Tree) Write(buf []byte) error {
	return t.WriteAt(buf, 0)
}

// WriteBuffer serializes t into b.
func (t *Tree) WriteBuffer(b *io.Buffer) error {
	return t.WriteAt(b.Bytes(), 0)
}

// WriteAt serializes t into buf starting at off. The region must hold at
// least Size() bytes; trailing bytes are expected to fill the rest of it,
// anything past the instance is left untouched. The frame is built in a
// scratch buffer first, so buf is only modified on success.
func (t *Tree) WriteAt(buf []byte, off int) error {
	err := t.writeAt(buf, off)
	updateCodecMetrics(opEncode, t.sizeForMetrics(err), err)
	return err
}

func (t *Tree) writeAt(buf []byte, off int) error {
	need := t.Size()
	if off < 0 || off > len(buf) || len(buf)-off < need {
		return &BufferTooSmallError{Type: t.typ.Name, Need: need, Have: len(buf) - off}
	}
	bw := io.NewBufBinWriter()
	t.EncodeBinary(bw.BinWriter)
	if bw.Err != nil {
		return bw.Err
	}
	data := bw.Bytes()
	if len(data) != need {
		return fmt.Errorf("value: %s encoded to %d bytes, expected %d", t.typ.Name, len(data), need)
	}
	copy(buf[off:], data)
	return nil
}

func (t *Tree) sizeForMetrics(err error) int {
	if err != nil {
		return 0
	}
	return t.Size()
}

// EncodeBinary implements the io.Serializable interface.
func (t *Tree) EncodeBinary(w *io.BinWriter) {
	if w.Err != nil {
		return
	}
	if t.typ.Kind == schema.UnionKind {
		t.encodeUnion(w)
		return
	}
	for i := range t.slots {
		t.encodeSlot(w, i)
		if w.Err != nil {
			return
		}
	}
}

// encodeUnion writes the active member and zero-pads to the union's fixed
// size.
func (t *Tree) encodeUnion(w *io.BinWriter) {
	t.encodeSlot(w, t.active)
	w.WriteZeros(t.typ.FixedSize() - t.slotSize(t.active))
}

func (t *Tree) encodeSlot(w *io.BinWriter, i int) {
	f := t.typ.Fields[i]
	switch f.Kind {
	case schema.Scalar:
		s := t.slots[i].(*Scalar)
		if err := s.check(); err != nil {
			w.Err = err
			return
		}
		w.WriteUint(&s.raw, f.Bytes(), f.Order)
	case schema.Array, schema.Trailing:
		w.WriteBytes(t.slots[i].(*Bytes).b)
	case schema.Struct:
		t.slots[i].(*Tree).EncodeBinary(w)
	case schema.Variant:
		bt, ok := t.selected(f)
		if !ok {
			w.Err = t.noBranch(f, "no case matches")
			return
		}
		child, _ := t.slots[i].(*Tree)
		if child == nil || child.typ != bt {
			w.Err = t.noBranch(f, "held branch does not match the discriminant")
			return
		}
		child.EncodeBinary(w)
	}
}
