package packet

import (
	"encoding/binary"
	"fmt"
	"slices"

	enc "github.com/netwire/ofwire/std/encoding"
)

// ChassisIDSubtype is the first value byte of a chassis-id TLV.
type ChassisIDSubtype uint8

const (
	ChassisComponent ChassisIDSubtype = 1
	ChassisIfAlias   ChassisIDSubtype = 2
	ChassisPortComp  ChassisIDSubtype = 3
	ChassisMAC       ChassisIDSubtype = 4
	ChassisNetAddr   ChassisIDSubtype = 5
	ChassisIfName    ChassisIDSubtype = 6
	ChassisLocal     ChassisIDSubtype = 7
)

// PortIDSubtype is the first value byte of a port-id TLV.
type PortIDSubtype uint8

const (
	PortIfAlias   PortIDSubtype = 1
	PortComponent PortIDSubtype = 2
	PortMAC       PortIDSubtype = 3
	PortNetAddr   PortIDSubtype = 4
	PortIfName    PortIDSubtype = 5
	PortAgentCirc PortIDSubtype = 6
	PortLocal     PortIDSubtype = 7
)

// Capability is the system capabilities bitmask of a caps TLV.
type Capability uint16

const (
	CapOther       Capability = 0x0001
	CapRepeater    Capability = 0x0002
	CapBridge      Capability = 0x0004
	CapWLANAP      Capability = 0x0008
	CapRouter      Capability = 0x0010
	CapPhone       Capability = 0x0020
	CapDOCSIS      Capability = 0x0040
	CapStationOnly Capability = 0x0080
)

// CustomKey identifies an organizationally specific TLV.
type CustomKey struct {
	OUI     [3]byte
	Subtype uint8
}

func (k CustomKey) String() string {
	return fmt.Sprintf("%02x-%02x-%02x/%d", k.OUI[0], k.OUI[1], k.OUI[2], k.Subtype)
}

// CustomKey returns the key of a custom TLV.
func (t TLV) CustomKey() (CustomKey, bool) {
	if t.Type != TLVCustom || len(t.Value) < 4 {
		return CustomKey{}, false
	}
	return CustomKey{OUI: [3]byte(t.Value[:3]), Subtype: t.Value[3]}, true
}

var mandatoryOrder = []TLVType{TLVChassisID, TLVPortID, TLVTTL}

func isMandatory(t TLVType) bool {
	return t == TLVChassisID || t == TLVPortID || t == TLVTTL
}

// LLDP is the TLV collection of an LLDP PDU.
// Mandatory and optional TLVs hold one record per type; custom TLVs hold
// one record per (OUI, subtype).
type LLDP struct {
	mandatory   map[TLVType]TLV
	optional    map[TLVType]TLV
	optOrder    []TLVType
	custom      map[CustomKey]TLV
	customOrder []CustomKey
}

func NewLLDP() *LLDP {
	return &LLDP{
		mandatory: make(map[TLVType]TLV),
		optional:  make(map[TLVType]TLV),
		custom:    make(map[CustomKey]TLV),
	}
}

// NewLLDPPacket wraps l as a packet.
func NewLLDPPacket(l *LLDP) *Packet {
	p := New(KindLLDP)
	if l != nil {
		p.lldp = l
	}
	return p
}

// Set stores t in its slot, replacing a record of the same type or custom key.
// Custom records keep the position of the record they replace.
func (l *LLDP) Set(t TLV) error {
	t.Value = append([]byte(nil), t.Value...)
	switch {
	case t.Type == TLVEnd:
		return fmt.Errorf("packet: the end tlv cannot be stored")
	case t.Type == TLVCustom:
		k, ok := t.CustomKey()
		if !ok {
			return fmt.Errorf("packet: custom tlv needs 4 value bytes, got %d", len(t.Value))
		}
		if _, ok := l.custom[k]; !ok {
			l.customOrder = append(l.customOrder, k)
		}
		l.custom[k] = t
	case isMandatory(t.Type):
		l.mandatory[t.Type] = t
	default:
		if _, ok := l.optional[t.Type]; !ok {
			l.optOrder = append(l.optOrder, t.Type)
		}
		l.optional[t.Type] = t
	}
	return nil
}

// Get returns the mandatory or optional TLV of a type.
func (l *LLDP) Get(t TLVType) (TLV, bool) {
	if isMandatory(t) {
		v, ok := l.mandatory[t]
		return v, ok
	}
	v, ok := l.optional[t]
	return v, ok
}

// Custom returns the custom TLV stored under k.
func (l *LLDP) Custom(k CustomKey) (TLV, bool) {
	v, ok := l.custom[k]
	return v, ok
}

// Remove deletes the TLV of a non-custom type.
func (l *LLDP) Remove(t TLVType) {
	delete(l.mandatory, t)
	if _, ok := l.optional[t]; ok {
		delete(l.optional, t)
		l.optOrder = slices.DeleteFunc(l.optOrder, func(x TLVType) bool { return x == t })
	}
}

// RemoveCustom deletes the custom TLV stored under k.
func (l *LLDP) RemoveCustom(k CustomKey) {
	if _, ok := l.custom[k]; ok {
		delete(l.custom, k)
		l.customOrder = slices.DeleteFunc(l.customOrder, func(x CustomKey) bool { return x == k })
	}
}

// Mandatory returns the chassis-id, port-id and ttl TLVs that are present, in that order.
func (l *LLDP) Mandatory() []TLV {
	ret := make([]TLV, 0, len(mandatoryOrder))
	for _, t := range mandatoryOrder {
		if v, ok := l.mandatory[t]; ok {
			ret = append(ret, v)
		}
	}
	return ret
}

// Optional returns the optional TLVs in insertion order.
func (l *LLDP) Optional() []TLV {
	ret := make([]TLV, 0, len(l.optOrder))
	for _, t := range l.optOrder {
		ret = append(ret, l.optional[t])
	}
	return ret
}

// Customs returns the custom TLVs in insertion order.
func (l *LLDP) Customs() []TLV {
	ret := make([]TLV, 0, len(l.customOrder))
	for _, k := range l.customOrder {
		ret = append(ret, l.custom[k])
	}
	return ret
}

// TLVs returns all records in encoding order, without the terminator.
func (l *LLDP) TLVs() []TLV {
	return append(append(append([]TLV(nil), l.Mandatory()...), l.Optional()...), l.Customs()...)
}

// Bits is the encoded size, terminator included.
func (l *LLDP) Bits() int {
	n := tlvHeaderBits
	for _, t := range l.TLVs() {
		n += t.bits()
	}
	return n
}

// Encode writes mandatory, optional and custom TLVs followed by one end TLV.
func (l *LLDP) Encode() ([]byte, error) {
	buf := make([]byte, l.Bits()/8)
	off := 0
	for _, t := range append(l.TLVs(), TLV{Type: TLVEnd}) {
		p, err := t.packet()
		if err != nil {
			return nil, err
		}
		if err = p.encodeHeader(buf, off); err != nil {
			return nil, err
		}
		off += t.bits()
	}
	return buf, nil
}

// DecodeLLDP decodes an LLDP PDU.
func DecodeLLDP(data []byte) (*LLDP, error) {
	l := NewLLDP()
	if err := l.decode(data, 0, len(data)*8); err != nil {
		return nil, err
	}
	return l, nil
}

// decode reads TLVs until an end TLV or the end of the span.
// Bytes after the end TLV (frame padding) are ignored.
func (l *LLDP) decode(data []byte, start, numBits int) error {
	off, end := start, start+numBits
	for off < end {
		t, used, err := decodeTLV(data, off, end-off)
		if err != nil {
			return fmt.Errorf("lldp tlv at byte %d: %w", off/8, err)
		}
		off += used
		if t.Type == TLVEnd {
			if len(t.Value) != 0 {
				return enc.Decodef("lldp end tlv at byte %d has length %d", (off-used)/8, len(t.Value))
			}
			return nil
		}
		if err := l.Set(t); err != nil {
			return enc.ErrDecode{Msg: fmt.Sprintf("lldp tlv at byte %d", (off-used)/8), Err: err}
		}
	}
	return nil
}

func NewChassisIDTLV(sub ChassisIDSubtype, id []byte) TLV {
	return TLV{Type: TLVChassisID, Value: append([]byte{byte(sub)}, id...)}
}

func NewPortIDTLV(sub PortIDSubtype, id []byte) TLV {
	return TLV{Type: TLVPortID, Value: append([]byte{byte(sub)}, id...)}
}

func NewTTLTLV(seconds uint16) TLV {
	return TLV{Type: TLVTTL, Value: binary.BigEndian.AppendUint16(nil, seconds)}
}

// NewStringTLV builds a textual TLV such as sys-name or port-desc.
func NewStringTLV(t TLVType, s string) TLV {
	return TLV{Type: t, Value: []byte(s)}
}

func NewCapabilitiesTLV(system, enabled Capability) TLV {
	v := binary.BigEndian.AppendUint16(nil, uint16(system))
	return TLV{Type: TLVCapabilities, Value: binary.BigEndian.AppendUint16(v, uint16(enabled))}
}

func NewCustomTLV(oui [3]byte, subtype uint8, info []byte) TLV {
	v := append(oui[:], subtype)
	return TLV{Type: TLVCustom, Value: append(v, info...)}
}

// ChassisID returns the subtype and identifier of the chassis-id TLV.
func (l *LLDP) ChassisID() (ChassisIDSubtype, []byte, bool) {
	t, ok := l.mandatory[TLVChassisID]
	if !ok || len(t.Value) < 1 {
		return 0, nil, false
	}
	return ChassisIDSubtype(t.Value[0]), t.Value[1:], true
}

// PortID returns the subtype and identifier of the port-id TLV.
func (l *LLDP) PortID() (PortIDSubtype, []byte, bool) {
	t, ok := l.mandatory[TLVPortID]
	if !ok || len(t.Value) < 1 {
		return 0, nil, false
	}
	return PortIDSubtype(t.Value[0]), t.Value[1:], true
}

func (l *LLDP) TTL() (uint16, bool) {
	t, ok := l.mandatory[TLVTTL]
	if !ok || len(t.Value) != 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(t.Value), true
}

func (l *LLDP) SystemName() (string, bool) {
	t, ok := l.optional[TLVSystemName]
	return string(t.Value), ok
}

func (l *LLDP) Capabilities() (system, enabled Capability, ok bool) {
	t, ok := l.optional[TLVCapabilities]
	if !ok || len(t.Value) != 4 {
		return 0, 0, false
	}
	return Capability(binary.BigEndian.Uint16(t.Value)), Capability(binary.BigEndian.Uint16(t.Value[2:])), true
}
