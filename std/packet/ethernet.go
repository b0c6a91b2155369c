package packet

import (
	"fmt"
	"net"

	"github.com/netwire/ofwire/std/bitbuf"
)

// Ethernet header fields.
const (
	EthDestination = "DestinationMAC"
	EthSource      = "SourceMAC"
	EthEtherType   = "EtherType"
)

const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeLLDP uint16 = 0x88cc
)

// LLDPMulticast is the nearest-bridge destination of LLDP frames.
var LLDPMulticast = net.HardwareAddr{0x01, 0x80, 0xc2, 0x00, 0x00, 0x0e}

var ethernetTable = FieldTable{
	{EthDestination, 48},
	{EthSource, 48},
	{EthEtherType, 16},
}

// etherTypes maps EtherType values to payload decoders.
var etherTypes = map[uint16]Kind{
	EtherTypeIPv4: KindIPv4,
	EtherTypeLLDP: KindLLDP,
}

// PayloadKind returns the kind decoded for an EtherType, if any.
func PayloadKind(etherType uint16) (Kind, bool) {
	k, ok := etherTypes[etherType]
	return k, ok
}

// NewEthernet returns an Ethernet header carrying payload.
// A nil payload leaves the frame without one.
func NewEthernet(dst, src net.HardwareAddr, etherType uint16, payload *Packet) (*Packet, error) {
	if len(dst) != 6 || len(src) != 6 {
		return nil, fmt.Errorf("packet: ethernet addresses must be 6 bytes, got %d and %d", len(dst), len(src))
	}
	p := New(KindEthernet)
	p.fields[EthDestination] = append([]byte(nil), dst...)
	p.fields[EthSource] = append([]byte(nil), src...)
	p.fields[EthEtherType] = bitbuf.ToByteArray(etherType, 16)
	p.payload = payload
	return p, nil
}

// NewLLDPFrame wraps l into an Ethernet frame sent to the LLDP multicast address.
func NewLLDPFrame(src net.HardwareAddr, l *LLDP) (*Packet, error) {
	return NewEthernet(LLDPMulticast, src, EtherTypeLLDP, NewLLDPPacket(l))
}

// DestinationMAC is the Ethernet destination, nil for other kinds.
func (p *Packet) DestinationMAC() net.HardwareAddr {
	return p.mac(EthDestination)
}

// SourceMAC is the Ethernet source, nil for other kinds.
func (p *Packet) SourceMAC() net.HardwareAddr {
	return p.mac(EthSource)
}

// EtherType is the Ethernet payload type, zero for other kinds.
func (p *Packet) EtherType() uint16 {
	if p.kind != KindEthernet {
		return 0
	}
	return uint16(p.FieldUint(EthEtherType))
}

func (p *Packet) mac(name string) net.HardwareAddr {
	if p.kind != KindEthernet {
		return nil
	}
	v, ok := p.fields[name]
	if !ok {
		return nil
	}
	return net.HardwareAddr(append([]byte(nil), v...))
}
