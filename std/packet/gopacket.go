package packet

import (
	"encoding/binary"

	"github.com/google/gopacket/layers"
)

// FromLinkLayerDiscovery converts a gopacket LLDP layer into a TLV collection.
func FromLinkLayerDiscovery(d *layers.LinkLayerDiscovery) (*LLDP, error) {
	l := NewLLDP()
	mandatory := []TLV{
		NewChassisIDTLV(ChassisIDSubtype(d.ChassisID.Subtype), d.ChassisID.ID),
		NewPortIDTLV(PortIDSubtype(d.PortID.Subtype), d.PortID.ID),
		NewTTLTLV(d.TTL),
	}
	for _, t := range mandatory {
		if err := l.Set(t); err != nil {
			return nil, err
		}
	}
	for _, v := range d.Values {
		if err := l.Set(TLV{Type: TLVType(v.Type), Value: v.Value}); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// LinkLayerDiscovery converts the collection into a gopacket LLDP layer.
// Optional and custom TLVs become Values in encoding order.
func (l *LLDP) LinkLayerDiscovery() *layers.LinkLayerDiscovery {
	d := &layers.LinkLayerDiscovery{}
	if sub, id, ok := l.ChassisID(); ok {
		d.ChassisID = layers.LLDPChassisID{Subtype: layers.LLDPChassisIDSubType(sub), ID: id}
	}
	if sub, id, ok := l.PortID(); ok {
		d.PortID = layers.LLDPPortID{Subtype: layers.LLDPPortIDSubType(sub), ID: id}
	}
	if t, ok := l.mandatory[TLVTTL]; ok && len(t.Value) == 2 {
		d.TTL = binary.BigEndian.Uint16(t.Value)
	}
	for _, t := range append(l.Optional(), l.Customs()...) {
		d.Values = append(d.Values, layers.LinkLayerDiscoveryValue{
			Type:   layers.LLDPTLVType(t.Type),
			Length: uint16(len(t.Value)),
			Value:  t.Value,
		})
	}
	return d
}
