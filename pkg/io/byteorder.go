package io

import (
	"fmt"
	"strings"
)

// ByteOrder selects how multi-byte integers are laid out.
type ByteOrder uint8

// Supported byte orders. LittleEndian is the zero value.
const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// String implements the fmt.Stringer interface.
func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("ByteOrder(%d)", uint8(o))
	}
}

// ParseByteOrder converts the textual form used in type files and configs.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "le", "lsb":
		return LittleEndian, nil
	case "big", "be", "msb", "network":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown byte order %q", s)
	}
}

// MarshalYAML implements the yaml.Marshaler interface.
func (o ByteOrder) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (o *ByteOrder) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseByteOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}
