package tools

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/netwire/ofwire/std/log"
	"github.com/netwire/ofwire/std/packet"
	"github.com/netwire/ofwire/std/utils"
	"github.com/netwire/ofwire/std/utils/toolutils"
	"github.com/spf13/cobra"
)

type Frame struct{}

func CmdFrame() *cobra.Command {
	f := Frame{}

	return &cobra.Command{
		GroupID: "decode",
		Use:     "frame HEX",
		Short:   "Decode an Ethernet frame",
		Long: `Decode an Ethernet frame given in hex and print its packet chain.
LLDP payloads are listed TLV by TLV. Use "-" to read the hex from stdin.`,
		Args:    cobra.ExactArgs(1),
		Example: `  ofwire frame 0180c200000e00112233445588cc...`,
		Run:     f.run,
	}
}

func (f *Frame) String() string {
	return "frame"
}

func (f *Frame) run(_ *cobra.Command, args []string) {
	Shared.Config()

	data, err := toolutils.ReadHex(args[0])
	if err != nil {
		log.Fatal(f, "Invalid input", "err", err)
		return
	}

	p, err := packet.Decode(packet.KindEthernet, data)
	if err != nil {
		log.Fatal(f, "Unable to decode frame", "err", err)
		return
	}
	DescribePacket(os.Stdout, p)
}

// Chain names the kinds of a packet chain, outermost first.
func Chain(p *packet.Packet) string {
	var kinds []string
	p.Walk(func(q, _ *packet.Packet) bool {
		kinds = append(kinds, q.Kind().String())
		return true
	})
	return strings.Join(kinds, "/")
}

// DescribePacket prints every layer of a decoded chain.
func DescribePacket(w io.Writer, p *packet.Packet) {
	sp := toolutils.StatusPrinter{File: w, Padding: 14}
	p.Walk(func(q, parent *packet.Packet) bool {
		title := q.Kind().String()
		if parent != nil {
			title = fmt.Sprintf("%s (in %s)", title, parent.Kind())
		}
		sec := sp.Section(title)

		switch q.Kind() {
		case packet.KindEthernet:
			sec.Print("dst", q.DestinationMAC())
			sec.Print("src", q.SourceMAC())
			sec.Print("ethertype", fmt.Sprintf("0x%04x", q.EtherType()))
		case packet.KindIPv4:
			src, _ := q.IPv4Addr(packet.IPv4Source)
			dst, _ := q.IPv4Addr(packet.IPv4Destination)
			sec.Print("src", src)
			sec.Print("dst", dst)
			sec.Print("protocol", q.FieldUint(packet.IPv4Protocol))
			sec.Print("ttl", q.FieldUint(packet.IPv4TTL))
			sec.Print("checksum", utils.If(q.Corrupted(), "bad", "ok"))
		case packet.KindLLDP:
			describeLLDP(sec, q.LLDP())
		}

		if raw := q.RawPayload(); raw != nil {
			sec.Print("payload", fmt.Sprintf("%d bytes", len(raw)))
		}
		return true
	})
}

func describeLLDP(sp toolutils.StatusPrinter, l *packet.LLDP) {
	if sub, id, ok := l.ChassisID(); ok {
		sp.Print("chassis-id", fmt.Sprintf("%d:%s", sub, idString(id)))
	}
	if sub, id, ok := l.PortID(); ok {
		sp.Print("port-id", fmt.Sprintf("%d:%s", sub, idString(id)))
	}
	if ttl, ok := l.TTL(); ok {
		sp.Print("ttl", ttl)
	}
	if name, ok := l.SystemName(); ok {
		sp.Print("system-name", name)
	}
	if sys, en, ok := l.Capabilities(); ok {
		sp.Print("capabilities", fmt.Sprintf("0x%04x/0x%04x", uint16(sys), uint16(en)))
	}
	for _, t := range l.Optional() {
		switch t.Type {
		case packet.TLVSystemName, packet.TLVCapabilities:
			continue
		}
		sp.Print(t.Type.String(), fmt.Sprintf("%x", t.Value))
	}
	for _, t := range l.Customs() {
		k, ok := t.CustomKey()
		if !ok {
			continue
		}
		sp.Print(k.String(), fmt.Sprintf("%x", t.Value[4:]))
	}
}

// idString prints an id as text when it is printable, hex otherwise.
func idString(id []byte) string {
	for _, c := range id {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("%x", id)
		}
	}
	return string(id)
}
