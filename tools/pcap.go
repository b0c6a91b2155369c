package tools

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/netwire/ofwire/std/log"
	"github.com/netwire/ofwire/std/packet"
	"github.com/netwire/ofwire/std/stats"
	"github.com/netwire/ofwire/std/utils/toolutils"
	"github.com/spf13/cobra"
)

type Pcap struct {
	verbose bool
}

func CmdPcap() *cobra.Command {
	pc := Pcap{}

	cmd := &cobra.Command{
		GroupID: "decode",
		Use:     "pcap FILE",
		Short:   "Decode every frame of a capture file",
		Long: `Decode every Ethernet frame of a pcap file, one line per frame,
followed by the decode counters.`,
		Args:    cobra.ExactArgs(1),
		Example: `  ofwire pcap lldp.pcap -v`,
		Run:     pc.run,
	}

	cmd.Flags().BoolVarP(&pc.verbose, "verbose", "v", false, "Print every layer of each frame")
	return cmd
}

func (pc *Pcap) String() string {
	return "pcap"
}

func (pc *Pcap) run(_ *cobra.Command, args []string) {
	cfg := Shared.Config()

	f, err := os.Open(args[0])
	if err != nil {
		log.Fatal(pc, "Unable to open capture", "err", err)
		return
	}
	defer f.Close()

	st := Shared.Stats()
	if err := DescribePcap(os.Stdout, f, st, pc.verbose); err != nil {
		log.Fatal(pc, "Unable to read capture", "file", args[0], "err", err)
		return
	}

	if cfg.Stats.Enabled {
		printSamples(os.Stdout, st)
	}
}

// DescribePcap decodes the frames of a pcap stream and prints one line per frame.
// Frames that fail to decode are reported and counted, not fatal.
func DescribePcap(w io.Writer, r io.Reader, st *stats.Stats, verbose bool) error {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return err
	}
	if lt := pr.LinkType(); lt != layers.LinkTypeEthernet {
		return fmt.Errorf("unsupported link type %s", lt)
	}

	for n := 1; ; n++ {
		data, ci, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		st.Input("pcap", len(data))

		p, err := packet.Decode(packet.KindEthernet, data)
		if err != nil {
			st.Frame(packet.KindEthernet.String(), err)
			fmt.Fprintf(w, "#%d %s len=%d error: %v\n", n, ci.Timestamp.UTC().Format("15:04:05.000000"), len(data), err)
			continue
		}

		chain := Chain(p)
		err = p.Verify()
		st.Frame(chain, err)
		status := "ok"
		if err != nil {
			status = "corrupted"
		}
		fmt.Fprintf(w, "#%d %s len=%d %s %s\n", n, ci.Timestamp.UTC().Format("15:04:05.000000"), len(data), chain, status)
		if verbose {
			DescribePacket(w, p)
		}
	}
}

func printSamples(w io.Writer, st *stats.Stats) {
	samples, err := st.Samples()
	if err != nil {
		log.Error("counters", "Unable to gather counters", "err", err)
		return
	}
	sp := toolutils.StatusPrinter{File: w, Padding: 0}.Section("counters")
	for _, s := range samples {
		sp.Print(s.Name, s.Value)
	}
}
