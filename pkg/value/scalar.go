package value

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pioneers/typpo/pkg/schema"
	"github.com/pioneers/typpo/pkg/wideint"
)

var big1 = big.NewInt(1)

// Scalar is an integer slot. The raw field holds the value's bit pattern
// within the declared width (two's complement for signed fields).
type Scalar struct {
	field *schema.Field
	owner *Tree
	index int
	raw   uint256.Int
}

// Field returns the schema field the scalar belongs to.
func (s *Scalar) Field() *schema.Field {
	return s.field
}

// Set assigns v, which may be any Go integer, wideint.Uint64, *big.Int,
// *uint256.Int, bool or an integer literal string ("0xfe", "42"). Values
// that don't fit the field are rejected. Changing a discriminant
// reselects the variant fields that depend on it.
func (s *Scalar) Set(v interface{}) error {
	raw, err := s.convert(v)
	if err != nil {
		return err
	}
	s.raw = raw
	if s.owner != nil {
		s.owner.reselect(s.index)
		s.owner.touched(s.index)
	}
	return nil
}

// Int returns a copy of the raw bit pattern.
func (s *Scalar) Int() *uint256.Int {
	return s.raw.Clone()
}

// Uint64 returns the raw bit pattern if it fits 64 bits.
func (s *Scalar) Uint64() (uint64, bool) {
	return s.raw.Uint64(), s.raw.IsUint64()
}

// Int64 returns the value of a field of at most 64 bits, sign-extended
// when the field is signed.
func (s *Scalar) Int64() int64 {
	u := s.raw.Uint64()
	bits := s.field.Bits
	if s.field.Signed && bits < 64 && u&(1<<uint(bits-1)) != 0 {
		u |= ^uint64(0) << uint(bits)
	}
	return int64(u)
}

// Unwrap returns int64 for signed fields, uint64 for unsigned fields up
// to 32 bits, wideint.Uint64 up to 64 bits and *uint256.Int beyond.
func (s *Scalar) Unwrap() interface{} {
	switch {
	case s.field.Signed:
		return s.Int64()
	case s.field.Bits <= 32:
		return s.raw.Uint64()
	case s.field.Bits <= 64:
		return wideint.Uint64(s.raw.Uint64())
	default:
		return s.raw.Clone()
	}
}

// String implements the fmt.Stringer interface.
func (s *Scalar) String() string {
	if s.field.Signed {
		return big.NewInt(s.Int64()).String()
	}
	return s.raw.Hex()
}

func (s *Scalar) clone(owner *Tree) Value {
	c := *s
	c.owner = owner
	return &c
}

func (s *Scalar) typeName() string {
	if s.owner == nil {
		return ""
	}
	return s.owner.typ.Name
}

// check verifies the stored pattern still fits the declared width.
func (s *Scalar) check() error {
	if s.raw.BitLen() > s.field.Bits {
		return &OverflowError{
			Type:   s.typeName(),
			Field:  s.field.Name,
			Bits:   s.field.Bits,
			Signed: s.field.Signed,
			Value:  s.raw.Hex(),
		}
	}
	return nil
}

func (s *Scalar) convert(v interface{}) (uint256.Int, error) {
	x, ok := toBig(v)
	if !ok {
		return uint256.Int{}, invalidValue(s.typeName(), s.field.Name, v, "not an integer")
	}
	bits := uint(s.field.Bits)
	var fits bool
	if s.field.Signed {
		lim := new(big.Int).Lsh(big1, bits-1)
		fits = x.Cmp(lim) < 0 && x.Cmp(new(big.Int).Neg(lim)) >= 0
	} else {
		fits = x.Sign() >= 0 && x.BitLen() <= int(bits)
	}
	if !fits {
		return uint256.Int{}, &OverflowError{
			Type:   s.typeName(),
			Field:  s.field.Name,
			Bits:   s.field.Bits,
			Signed: s.field.Signed,
			Value:  x.String(),
		}
	}
	if x.Sign() < 0 {
		x = new(big.Int).Add(x, new(big.Int).Lsh(big1, bits))
	}
	r, _ := uint256.FromBig(x)
	return *r, nil
}

func toBig(v interface{}) (*big.Int, bool) {
	switch x := v.(type) {
	case int:
		return big.NewInt(int64(x)), true
	case int8:
		return big.NewInt(int64(x)), true
	case int16:
		return big.NewInt(int64(x)), true
	case int32:
		return big.NewInt(int64(x)), true
	case int64:
		return big.NewInt(x), true
	case uint:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint64:
		return new(big.Int).SetUint64(x), true
	case uintptr:
		return new(big.Int).SetUint64(uint64(x)), true
	case wideint.Uint64:
		return new(big.Int).SetUint64(uint64(x)), true
	case bool:
		if x {
			return big.NewInt(1), true
		}
		return new(big.Int), true
	case *big.Int:
		if x == nil {
			return nil, false
		}
		return new(big.Int).Set(x), true
	case *uint256.Int:
		if x == nil {
			return nil, false
		}
		return x.ToBig(), true
	case uint256.Int:
		return x.ToBig(), true
	case *Scalar:
		return x.bigValue(), true
	case string:
		return parseLiteral(x)
	}
	return nil, false
}

// parseLiteral accepts plain decimal or 0x-prefixed hex, optionally
// signed. Leading zeros don't switch to octal.
func parseLiteral(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg || strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return nil, false
	}
	x, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		x.Neg(x)
	}
	return x, true
}

func (s *Scalar) bigValue() *big.Int {
	if s.field.Signed {
		return big.NewInt(s.Int64())
	}
	return s.raw.ToBig()
}
