package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/netwire/ofwire/std/log"
	"github.com/netwire/ofwire/std/ofp"
)

const (
	ParseStrict  = "strict"
	ParseLenient = "lenient"
)

// Config is the configuration of the ofwire tools.
type Config struct {
	// Handling of flag bits unknown to a version: strict or lenient.
	ParseMode string `json:"parse_mode"`
	// Logging level
	LogLevel string `json:"log_level"`
	// Default protocol version, e.g. "1.3"
	Version string `json:"version"`

	Stats struct {
		// Print decode counters after a run
		Enabled bool `json:"enabled"`
		// Metric name prefix
		Namespace string `json:"namespace"`
	} `json:"stats"`

	strict  bool
	level   log.Level
	version ofp.Version
}

func DefaultConfig() *Config {
	c := &Config{
		ParseMode: ParseStrict,
		LogLevel:  "INFO",
		Version:   ofp.V1_3.String(),
	}
	c.Stats.Enabled = true
	c.Stats.Namespace = "ofwire"

	if err := c.Parse(); err != nil {
		panic(err)
	}
	return c
}

// FromYaml reads a configuration over the defaults. Unknown keys are rejected.
func FromYaml(data []byte) (*Config, error) {
	c := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, c, yaml.Strict()); err != nil {
		return nil, err
	}
	if err := c.Parse(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse validates the configuration and caches the parsed values.
func (c *Config) Parse() (err error) {
	switch c.ParseMode {
	case ParseStrict, "":
		c.strict = true
	case ParseLenient:
		c.strict = false
	default:
		return fmt.Errorf("parse_mode must be %q or %q, got %q", ParseStrict, ParseLenient, c.ParseMode)
	}

	if c.level, err = log.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.version, err = ofp.ParseVersion(c.Version); err != nil {
		return err
	}

	if c.Stats.Namespace == "" {
		return fmt.Errorf("stats namespace must be set")
	}
	return nil
}

// Options returns the codec options of the parse mode.
func (c *Config) Options() ofp.Options {
	return ofp.Options{Strict: c.strict}
}

func (c *Config) Level() log.Level {
	return c.level
}

func (c *Config) ProtoVersion() ofp.Version {
	return c.version
}

// Apply installs the parse mode as the codec default and sets the log level.
// It must be called before decoding starts.
func (c *Config) Apply() {
	ofp.SetDefaultStrict(c.strict)
	log.Default().SetLevel(c.level)
}
