package cmd

import (
	"github.com/netwire/ofwire/std/utils"
	"github.com/netwire/ofwire/tools"
	"github.com/spf13/cobra"
)

const banner = `
        __          _
  ___  / _|_      _(_)_ __ ___
 / _ \| |_\ \ /\ / / | '__/ _ \
| (_) |  _|\ V  V /| | | |  __/
 \___/|_|   \_/\_/ |_|_|  \___|

OpenFlow and LLDP wire codec
`

var CmdOfwire = &cobra.Command{
	Use:     "ofwire",
	Short:   "OpenFlow and LLDP wire codec",
	Long:    banner[1:],
	Version: utils.Version,
}

func init() {
	cobra.EnableCommandSorting = false
	CmdOfwire.Root().CompletionOptions.HiddenDefaultCmd = true
	CmdOfwire.PersistentFlags().BoolP("help", "h", false, "Print usage")
	CmdOfwire.PersistentFlags().Lookup("help").Hidden = true
	tools.Shared.Bind(CmdOfwire)

	CmdOfwire.AddGroup(&cobra.Group{ID: "decode", Title: "Decoders"})
	CmdOfwire.AddCommand(tools.CmdFrame())
	CmdOfwire.AddCommand(tools.CmdPcap())
	for _, sub := range tools.CmdElements() {
		CmdOfwire.AddCommand(sub)
	}
	CmdOfwire.AddCommand(tools.CmdFlags())
}
