package tools

import (
	"github.com/netwire/ofwire/std/config"
	"github.com/netwire/ofwire/std/log"
	"github.com/netwire/ofwire/std/ofp"
	"github.com/netwire/ofwire/std/stats"
	"github.com/netwire/ofwire/std/utils/toolutils"
	"github.com/spf13/cobra"
)

// Common holds the flags shared by every command.
type Common struct {
	configFile string
	logLevel   string
	proto      string
	lenient    bool

	cfg *config.Config
}

// Shared is bound to the root command.
var Shared = &Common{}

func (c *Common) String() string {
	return "ofwire"
}

// Bind registers the persistent flags on the root command.
func (c *Common) Bind(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVarP(&c.configFile, "config", "c", "", "YAML configuration file")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level (TRACE, DEBUG, INFO, WARN, ERROR)")
	fs.StringVarP(&c.proto, "proto", "p", "", "OpenFlow version (1.0 to 1.3), overrides the configuration")
	fs.BoolVar(&c.lenient, "lenient", false, "Drop flag bits unknown to the version instead of failing")
}

// Config loads the configuration once, applies the flag overrides and
// installs it as the process default.
func (c *Common) Config() *config.Config {
	if c.cfg != nil {
		return c.cfg
	}

	cfg := toolutils.ReadConfig(c.configFile)
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.proto != "" {
		cfg.Version = c.proto
	}
	if c.lenient {
		cfg.ParseMode = config.ParseLenient
	}
	if err := cfg.Parse(); err != nil {
		log.Fatal(c, "Invalid configuration", "err", err)
	}
	cfg.Apply()

	log.Debug(c, "Configuration loaded", "version", cfg.ProtoVersion(), "strict", cfg.Options().Strict)
	c.cfg = cfg
	return cfg
}

func (c *Common) Version() ofp.Version {
	return c.Config().ProtoVersion()
}

func (c *Common) Stats() *stats.Stats {
	return stats.New(c.Config().Stats.Namespace)
}
