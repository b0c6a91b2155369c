package main

import (
	"os"

	"github.com/netwire/ofwire/cmd"
)

func main() {
	if err := cmd.CmdOfwire.Execute(); err != nil {
		os.Exit(1)
	}
}
