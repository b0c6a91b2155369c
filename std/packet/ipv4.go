package packet

import (
	"fmt"
	"net/netip"
)

// IPv4 header fields.
const (
	IPv4Version        = "Version"
	IPv4IHL            = "HeaderLength"
	IPv4DSCP           = "DSCP"
	IPv4ECN            = "ECN"
	IPv4TotalLength    = "TotalLength"
	IPv4Identification = "Identification"
	IPv4Flags          = "Flags"
	IPv4FragmentOffset = "FragmentOffset"
	IPv4TTL            = "TTL"
	IPv4Protocol       = "Protocol"
	IPv4Checksum       = "Checksum"
	IPv4Source         = "SourceAddress"
	IPv4Destination    = "DestinationAddress"
	IPv4Options        = "Options"
)

var ipv4Table = FieldTable{
	{IPv4Version, 4},
	{IPv4IHL, 4},
	{IPv4DSCP, 6},
	{IPv4ECN, 2},
	{IPv4TotalLength, 16},
	{IPv4Identification, 16},
	{IPv4Flags, 3},
	{IPv4FragmentOffset, 13},
	{IPv4TTL, 8},
	{IPv4Protocol, 8},
	{IPv4Checksum, 16},
	{IPv4Source, 32},
	{IPv4Destination, 32},
	{IPv4Options, Dynamic},
}

// NewIPv4 returns an option-less IPv4 header carrying a raw payload.
// The checksum is filled in by Encode.
func NewIPv4(src, dst netip.Addr, protocol, ttl uint8, payload []byte) (*Packet, error) {
	if !src.Is4() || !dst.Is4() {
		return nil, fmt.Errorf("packet: ipv4 addresses required, got %s and %s", src, dst)
	}
	p := New(KindIPv4)
	for name, v := range map[string]uint64{
		IPv4Version:     4,
		IPv4IHL:         5,
		IPv4TotalLength: uint64(20 + len(payload)),
		IPv4TTL:         uint64(ttl),
		IPv4Protocol:    uint64(protocol),
	} {
		if err := p.SetFieldUint(name, v); err != nil {
			return nil, err
		}
	}
	s, d := src.As4(), dst.As4()
	p.fields[IPv4Source] = s[:]
	p.fields[IPv4Destination] = d[:]
	p.SetRawPayload(payload)
	return p, nil
}

// IPv4Addr returns an address field of an IPv4 header.
func (p *Packet) IPv4Addr(name string) (netip.Addr, bool) {
	if p.kind != KindIPv4 {
		return netip.Addr{}, false
	}
	v, ok := p.fields[name]
	if !ok || len(v) != 4 {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte(v)), true
}

// ipv4Checksum is the Internet checksum of hdr. It is zero for a header
// whose checksum field is correct.
func ipv4Checksum(hdr []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(hdr); i += 2 {
		sum += uint32(hdr[i])<<8 | uint32(hdr[i+1])
	}
	if len(hdr)%2 == 1 {
		sum += uint32(hdr[len(hdr)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}
	return ^uint16(sum)
}
