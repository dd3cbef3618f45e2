package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultSchemaCacheSize is the number of loaded schema sets kept for
	// reuse when the config doesn't say otherwise.
	DefaultSchemaCacheSize = 16
	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"
)

// Version the version of typpo, set at build time.
var Version string

// Config top level struct representing the config
// for the codec tools.
type Config struct {
	Codec  CodecConfiguration  `yaml:"Codec"`
	Logger LoggerConfiguration `yaml:"Logger"`
}

// LoggerConfiguration selects the log level and output encoding.
type LoggerConfiguration struct {
	Level string `yaml:"Level"`
	// Encoding is "console" or "json", empty picks console for terminals.
	Encoding string `yaml:"Encoding"`
	LogPath  string `yaml:"LogPath"`
}

// Load attempts to load the config from the given
// path for the given target name.
func Load(path string, target string) (Config, error) {
	configPath := fmt.Sprintf("%s/typpo.%s.yml", path, target)
	return LoadFile(configPath)
}

// LoadFile loads config from the provided path.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Parse(configData)
}

// Parse decodes and validates YAML config data.
func Parse(configData []byte) (Config, error) {
	config := Default()

	err := yaml.Unmarshal(configData, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Codec: CodecConfiguration{
			SchemaCacheSize: DefaultSchemaCacheSize,
		},
		Logger: LoggerConfiguration{
			Level: DefaultLogLevel,
		},
	}
}

// Validate checks the whole config for consistency.
func (c Config) Validate() error {
	if err := c.Codec.Validate(); err != nil {
		return err
	}
	switch c.Logger.Encoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log encoding %q", c.Logger.Encoding)
	}
	return nil
}
