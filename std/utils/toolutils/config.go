package toolutils

import (
	"fmt"
	"os"

	"github.com/netwire/ofwire/std/config"
)

// ReadConfig loads a YAML configuration file over the defaults.
// An empty path yields the defaults. Failures exit the process.
func ReadConfig(file string) *config.Config {
	if file == "" {
		return config.DefaultConfig()
	}

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open configuration file: %+v\n", err)
		os.Exit(3)
	}

	c, err := config.FromYaml(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse configuration file: %+v\n", err)
		os.Exit(3)
	}
	return c
}
