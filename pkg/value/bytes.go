package value

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pioneers/typpo/pkg/io"
	"github.com/pioneers/typpo/pkg/schema"
)

// Bytes is a byte sequence slot: either an open-ended trailing field or a
// fixed-length array. Array slots always hold exactly Length bytes.
type Bytes struct {
	field *schema.Field
	owner *Tree
	index int
	b     []byte
}

// Field returns the schema field the slot belongs to.
func (b *Bytes) Field() *schema.Field {
	return b.field
}

// Len returns the current length in bytes.
func (b *Bytes) Len() int {
	return len(b.b)
}

// Bytes returns the stored bytes. Writes through the result are visible
// in the tree but don't make a union member active, use Set for that.
func (b *Bytes) Bytes() []byte {
	return b.b
}

// Set replaces the contents with a copy of v, which may be a []byte, an
// *io.Buffer, a 0x-prefixed hex string or a list of byte-sized integers.
// Arrays accept at most Length bytes and are zero-padded.
func (b *Bytes) Set(v interface{}) error {
	data, err := b.convert(v)
	if err != nil {
		return err
	}
	if b.field.Kind == schema.Array {
		if len(data) > b.field.Length {
			return invalidValue(b.typeName(), b.field.Name, v,
				fmt.Sprintf("%d bytes do not fit a %d byte array", len(data), b.field.Length))
		}
		padded := make([]byte, b.field.Length)
		copy(padded, data)
		data = padded
	}
	b.b = data
	if b.owner != nil {
		b.owner.touched(b.index)
	}
	return nil
}

// Unwrap returns a copy of the stored bytes.
func (b *Bytes) Unwrap() interface{} {
	out := make([]byte, len(b.b))
	copy(out, b.b)
	return out
}

// String implements the fmt.Stringer interface.
func (b *Bytes) String() string {
	return hexutil.Encode(b.b)
}

func (b *Bytes) clone(owner *Tree) Value {
	c := &Bytes{field: b.field, owner: owner, index: b.index}
	if b.b != nil {
		c.b = make([]byte, len(b.b))
		copy(c.b, b.b)
	}
	return c
}

func (b *Bytes) typeName() string {
	if b.owner == nil {
		return ""
	}
	return b.owner.typ.Name
}

func (b *Bytes) convert(v interface{}) ([]byte, error) {
	var out []byte
	switch x := v.(type) {
	case []byte:
		out = make([]byte, len(x))
		copy(out, x)
	case *io.Buffer:
		if x == nil {
			return nil, invalidValue(b.typeName(), b.field.Name, v, "nil buffer")
		}
		out = make([]byte, x.Len())
		copy(out, x.Bytes())
	case hexutil.Bytes:
		out = make([]byte, len(x))
		copy(out, x)
	case string:
		s := strings.TrimSpace(x)
		if s == "0x" || s == "" {
			return []byte{}, nil
		}
		d, err := hexutil.Decode(s)
		if err != nil {
			return nil, invalidValue(b.typeName(), b.field.Name, v, err.Error())
		}
		out = d
	case []interface{}:
		out = make([]byte, len(x))
		for i, e := range x {
			n, ok := toBig(e)
			if !ok || n.Sign() < 0 || n.BitLen() > 8 {
				return nil, invalidValue(b.typeName(), b.field.Name, v,
					fmt.Sprintf("element %d is not a byte", i))
			}
			out[i] = byte(n.Uint64())
		}
	case []int:
		out = make([]byte, len(x))
		for i, e := range x {
			if e < 0 || e > 0xff {
				return nil, invalidValue(b.typeName(), b.field.Name, v,
					fmt.Sprintf("element %d is not a byte", i))
			}
			out[i] = byte(e)
		}
	case *Bytes:
		out = make([]byte, len(x.b))
		copy(out, x.b)
	default:
		return nil, invalidValue(b.typeName(), b.field.Name, v, "not a byte sequence")
	}
	return out, nil
}
