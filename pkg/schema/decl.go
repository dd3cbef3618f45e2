package schema

// document is the parsed form of a type file.
type document struct {
	Types []typeDecl `yaml:"types"`
}

type typeDecl struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"`
	Endian string      `yaml:"endian"`
	Fields []fieldDecl `yaml:"fields"`
}

type fieldDecl struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Bits   *int   `yaml:"bits"`
	Endian string `yaml:"endian"`
	Length int    `yaml:"length"`

	// Variant fields only.
	On      string            `yaml:"on"`
	// Cases keys are integers, negative ones for signed discriminants.
	Cases   map[interface{}]string `yaml:"cases"`
	Default string                 `yaml:"default"`
}

// Reserved field type names that aren't scalars or type references.
const (
	declTrailing = "trailing"
	declBytes    = "bytes"
	declArray    = "array"
	declVariant  = "variant"
)
