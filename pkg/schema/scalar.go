package schema

import (
	"strings"

	"github.com/pioneers/typpo/pkg/config/archmode"
)

type scalarSpec struct {
	bits   int
	signed bool
}

var fixedScalars = map[string]scalarSpec{
	"uint8_t":   {8, false},
	"uint16_t":  {16, false},
	"uint32_t":  {32, false},
	"uint64_t":  {64, false},
	"uint128_t": {128, false},
	"uint256_t": {256, false},
	"int8_t":    {8, true},
	"int16_t":   {16, true},
	"int32_t":   {32, true},
	"int64_t":   {64, true},

	"uint8":  {8, false},
	"uint16": {16, false},
	"uint32": {32, false},
	"uint64": {64, false},
	"int8":   {8, true},
	"int16":  {16, true},
	"int32":  {32, true},
	"int64":  {64, true},

	"byte":          {8, false},
	"bool":          {8, false},
	"char":          {8, false},
	"unsigned char": {8, false},
	"signed char":   {8, true},
}

// lookupScalar resolves a scalar type name against profile p. The second
// result is false if name isn't a scalar type at all.
func lookupScalar(name string, p archmode.Profile) (scalarSpec, bool) {
	name = strings.Join(strings.Fields(name), " ")
	if s, ok := fixedScalars[name]; ok {
		return s, true
	}
	switch name {
	case "short", "signed short", "short int":
		return scalarSpec{p.ShortBits, true}, true
	case "unsigned short", "unsigned short int":
		return scalarSpec{p.ShortBits, false}, true
	case "int", "signed", "signed int":
		return scalarSpec{p.IntBits, true}, true
	case "unsigned", "unsigned int", "uint":
		return scalarSpec{p.IntBits, false}, true
	case "long", "signed long", "long int":
		return scalarSpec{p.LongBits, true}, true
	case "unsigned long", "unsigned long int":
		return scalarSpec{p.LongBits, false}, true
	case "size_t", "uintptr_t":
		return scalarSpec{p.PointerBits, false}, true
	case "ssize_t", "intptr_t", "ptrdiff_t":
		return scalarSpec{p.PointerBits, true}, true
	}
	return scalarSpec{}, false
}
