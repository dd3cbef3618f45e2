package archmode

import (
	"sort"
	"strings"

	"github.com/pioneers/typpo/pkg/io"
)

// Profile fixes the byte order and C integer widths of a target.
type Profile struct {
	Name        string
	Order       io.ByteOrder
	ShortBits   int
	IntBits     int
	LongBits    int
	PointerBits int
}

// Known architecture names.
const (
	ARM    = "ARM"
	AVR    = "AVR"
	X86    = "X86"
	X86_64 = "X86_64"
	PPC    = "PPC"
	Net    = "NETWORK"
)

var profiles = map[string]Profile{
	ARM:    {Name: ARM, Order: io.LittleEndian, ShortBits: 16, IntBits: 32, LongBits: 32, PointerBits: 32},
	AVR:    {Name: AVR, Order: io.LittleEndian, ShortBits: 16, IntBits: 16, LongBits: 32, PointerBits: 16},
	X86:    {Name: X86, Order: io.LittleEndian, ShortBits: 16, IntBits: 32, LongBits: 32, PointerBits: 32},
	X86_64: {Name: X86_64, Order: io.LittleEndian, ShortBits: 16, IntBits: 32, LongBits: 64, PointerBits: 64},
	PPC:    {Name: PPC, Order: io.BigEndian, ShortBits: 16, IntBits: 32, LongBits: 32, PointerBits: 32},
	Net:    {Name: Net, Order: io.BigEndian, ShortBits: 16, IntBits: 32, LongBits: 32, PointerBits: 32},
}

var aliases = map[string]string{
	"ARM32":   ARM,
	"CORTEXM": ARM,
	"I386":    X86,
	"AMD64":   X86_64,
	"X64":     X86_64,
	"POWERPC": PPC,
	"BE":      Net,
}

// Lookup returns the profile registered under name (case-insensitive).
func Lookup(name string) (Profile, bool) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	p, ok := profiles[key]
	return p, ok
}

// Names returns canonical profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// String implements the stringer interface.
func (p Profile) String() string {
	if p.Name == "" {
		return "arch <unset>"
	}
	return p.Name + "/" + p.Order.String()
}
