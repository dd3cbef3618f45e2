// Package wideint provides a 64-bit unsigned integer that keeps full
// precision through its textual form. Hardware addresses (XBee 64-bit
// destination addresses and the like) travel through it.
package wideint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Uint64 is a 64-bit unsigned integer rendered as 0x-prefixed hex.
type Uint64 uint64

// ParseHex parses a hexadecimal string with or without the 0x prefix.
// Leading zeros are allowed, more than 64 significant bits are not.
func ParseHex(s string) (Uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if digits == "" {
		return 0, fmt.Errorf("wideint: empty hex string %q", s)
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	v, err := hexutil.DecodeUint64("0x" + strings.ToLower(digits))
	if err != nil {
		return 0, fmt.Errorf("wideint: %q: %w", s, err)
	}
	return Uint64(v), nil
}

// MustParseHex is like ParseHex but panics on error. Meant for constants
// and tests.
func MustParseHex(s string) Uint64 {
	v, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse accepts either 0x-prefixed hex or base 10.
func Parse(s string) (Uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ParseHex(s)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wideint: %w", err)
	}
	return Uint64(v), nil
}

// FromInt converts a 256-bit integer, failing if it doesn't fit.
func FromInt(v *uint256.Int) (Uint64, error) {
	if !v.IsUint64() {
		return 0, fmt.Errorf("wideint: %s exceeds 64 bits", v.Hex())
	}
	return Uint64(v.Uint64()), nil
}

// String implements the fmt.Stringer interface. The result parses back to
// the same value with ParseHex.
func (u Uint64) String() string {
	return hexutil.EncodeUint64(uint64(u))
}

// Decimal returns the base 10 representation.
func (u Uint64) Decimal() string {
	return strconv.FormatUint(uint64(u), 10)
}

// Int returns u as a 256-bit integer.
func (u Uint64) Int() *uint256.Int {
	return new(uint256.Int).SetUint64(uint64(u))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (u Uint64) MarshalText() ([]byte, error) {
	return hexutil.Uint64(u).MarshalText()
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (u *Uint64) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}
