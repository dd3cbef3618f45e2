package config

import (
	"errors"
	"fmt"

	"github.com/pioneers/typpo/pkg/config/archmode"
)

// CodecConfiguration represents the codec config.
type CodecConfiguration struct {
	// TargetType is the architecture profile type files are loaded for,
	// see archmode.Names for the accepted values.
	TargetType string `yaml:"TargetType"`
	// TypeFiles are loaded in order, later files may refer to types
	// declared by earlier ones.
	TypeFiles []string `yaml:"TypeFiles"`
	// SchemaCacheSize bounds the number of loaded schema sets kept for
	// reuse. Zero disables the cache.
	SchemaCacheSize int `yaml:"SchemaCacheSize"`
}

// Validate checks CodecConfiguration for internal consistency and returns
// error if anything inappropriate found.
func (c *CodecConfiguration) Validate() error {
	if c.SchemaCacheSize < 0 {
		return errors.New("SchemaCacheSize can't be negative")
	}
	if len(c.TypeFiles) != 0 && c.TargetType == "" {
		return errors.New("TargetType must be set to load TypeFiles")
	}
	if c.TargetType != "" {
		if _, ok := archmode.Lookup(c.TargetType); !ok {
			return fmt.Errorf("unknown TargetType %q", c.TargetType)
		}
	}
	return nil
}

// Profile returns the architecture profile named by TargetType.
func (c *CodecConfiguration) Profile() (archmode.Profile, bool) {
	return archmode.Lookup(c.TargetType)
}
