package flags

import (
	"flag"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli"
)

// HexBytes is a wrapper for a byte slice with flag.Value methods.
type HexBytes struct {
	IsSet bool
	Value []byte
}

// HexBytesFlag is a flag with type HexBytes.
type HexBytesFlag struct {
	Name  string
	Usage string
	Value HexBytes
}

var (
	_ flag.Value = (*HexBytes)(nil)
	_ cli.Flag   = HexBytesFlag{}
)

// String implements fmt.Stringer interface.
func (h HexBytes) String() string {
	return hexutil.Encode(h.Value)
}

// Set implements flag.Value interface.
func (h *HexBytes) Set(s string) error {
	b, err := ParseHexBytes(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	h.IsSet = true
	h.Value = b
	return nil
}

// Bytes returns the parsed bytes.
func (h *HexBytes) Bytes() []byte {
	if !h.IsSet {
		// It is a programmer error to call this method without
		// checking if the value was provided.
		panic("hex bytes were not set")
	}
	return h.Value
}

// IsSet checks if flag was set to a non-default value.
func (f HexBytesFlag) IsSet() bool {
	return f.Value.IsSet
}

// String returns a readable representation of this value
// (for usage defaults).
func (f HexBytesFlag) String() string {
	var names []string
	eachName(f.Name, func(name string) {
		names = append(names, getNameHelp(name))
	})

	return strings.Join(names, ", ") + "\t" + f.Usage
}

func getNameHelp(name string) string {
	if len(name) == 1 {
		return fmt.Sprintf("-%s value", name)
	}
	return fmt.Sprintf("--%s value", name)
}

// GetName returns the name of the flag.
func (f HexBytesFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment
// Ignores errors.
func (f HexBytesFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// ParseHexBytes parses a hex string with or without the 0x prefix.
// Whitespace and ':' separators between bytes are ignored.
func ParseHexBytes(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', ':':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, fmt.Errorf("empty hex string")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex bytes %s: %w", s, err)
	}
	return b, nil
}
