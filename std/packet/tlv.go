package packet

import (
	"fmt"

	"github.com/netwire/ofwire/std/bitbuf"
)

const (
	tlvType   = "Type"
	tlvLength = "Length"
	tlvValue  = "Value"
)

var tlvTable = FieldTable{
	{tlvType, 7},
	{tlvLength, 9},
	{tlvValue, Dynamic},
}

const (
	tlvHeaderBits = 16
	// MaxTLVValue is the largest value a 9-bit length can describe.
	MaxTLVValue = 1<<9 - 1
)

// TLVType is the 7-bit type of an LLDP TLV.
type TLVType uint8

const (
	TLVEnd           TLVType = 0
	TLVChassisID     TLVType = 1
	TLVPortID        TLVType = 2
	TLVTTL           TLVType = 3
	TLVPortDesc      TLVType = 4
	TLVSystemName    TLVType = 5
	TLVSystemDesc    TLVType = 6
	TLVCapabilities  TLVType = 7
	TLVManagementAdr TLVType = 8
	TLVCustom        TLVType = 127
)

func (t TLVType) String() string {
	switch t {
	case TLVEnd:
		return "end"
	case TLVChassisID:
		return "chassis-id"
	case TLVPortID:
		return "port-id"
	case TLVTTL:
		return "ttl"
	case TLVPortDesc:
		return "port-desc"
	case TLVSystemName:
		return "sys-name"
	case TLVSystemDesc:
		return "sys-desc"
	case TLVCapabilities:
		return "caps"
	case TLVManagementAdr:
		return "mgmt-addr"
	case TLVCustom:
		return "custom"
	default:
		return fmt.Sprintf("tlv(%d)", uint8(t))
	}
}

// TLV is a type-length-value record. The length is that of Value.
type TLV struct {
	Type  TLVType
	Value []byte
}

// Len is the value length carried in the header.
func (t TLV) Len() int {
	return len(t.Value)
}

func (t TLV) bits() int {
	return tlvHeaderBits + 8*len(t.Value)
}

// packet builds the framed form of the record.
func (t TLV) packet() (*Packet, error) {
	if t.Type > 127 {
		return nil, fmt.Errorf("packet: tlv type %d does not fit in 7 bits", t.Type)
	}
	if len(t.Value) > MaxTLVValue {
		return nil, fmt.Errorf("packet: %s value of %d bytes does not fit in 9 bits", t.Type, len(t.Value))
	}
	p := New(KindTLV)
	p.fields[tlvType] = bitbuf.ToByteArray(t.Type, 7)
	p.fields[tlvLength] = bitbuf.ToByteArray(len(t.Value), 9)
	p.fields[tlvValue] = t.Value
	return p, nil
}

// decodeTLV reads one record at bit offset start, within numBits bits.
func decodeTLV(data []byte, start, numBits int) (TLV, int, error) {
	p := New(KindTLV)
	used, err := p.decodeHeader(data, start, numBits)
	if err != nil {
		return TLV{}, 0, err
	}
	return TLV{
		Type:  TLVType(p.FieldUint(tlvType)),
		Value: p.fields[tlvValue],
	}, used, nil
}
