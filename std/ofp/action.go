package ofp

import (
	"fmt"
	"net"
)

// ActionType is the logical kind of an action, independent of its wire code.
type ActionType uint8

const (
	ActOutput ActionType = iota + 1
	ActSetVlanVID
	ActSetVlanPCP
	ActStripVlan
	ActSetDlSrc
	ActSetDlDst
	ActSetNwSrc
	ActSetNwDst
	ActSetNwTos
	ActSetNwEcn
	ActSetTpSrc
	ActSetTpDst
	ActEnqueue
	ActCopyTTLOut
	ActCopyTTLIn
	ActSetMplsLabel
	ActSetMplsTc
	ActSetMplsTTL
	ActDecMplsTTL
	ActPushVlan
	ActPopVlan
	ActPushMpls
	ActPopMpls
	ActSetQueue
	ActGroup
	ActSetNwTTL
	ActDecNwTTL
	ActSetField
	ActPushPbb
	ActPopPbb
	ActExperimenter
)

var actionNames = map[ActionType]string{
	ActOutput:       "output",
	ActSetVlanVID:   "set_vlan_vid",
	ActSetVlanPCP:   "set_vlan_pcp",
	ActStripVlan:    "strip_vlan",
	ActSetDlSrc:     "set_dl_src",
	ActSetDlDst:     "set_dl_dst",
	ActSetNwSrc:     "set_nw_src",
	ActSetNwDst:     "set_nw_dst",
	ActSetNwTos:     "set_nw_tos",
	ActSetNwEcn:     "set_nw_ecn",
	ActSetTpSrc:     "set_tp_src",
	ActSetTpDst:     "set_tp_dst",
	ActEnqueue:      "enqueue",
	ActCopyTTLOut:   "copy_ttl_out",
	ActCopyTTLIn:    "copy_ttl_in",
	ActSetMplsLabel: "set_mpls_label",
	ActSetMplsTc:    "set_mpls_tc",
	ActSetMplsTTL:   "set_mpls_ttl",
	ActDecMplsTTL:   "dec_mpls_ttl",
	ActPushVlan:     "push_vlan",
	ActPopVlan:      "pop_vlan",
	ActPushMpls:     "push_mpls",
	ActPopMpls:      "pop_mpls",
	ActSetQueue:     "set_queue",
	ActGroup:        "group",
	ActSetNwTTL:     "set_nw_ttl",
	ActDecNwTTL:     "dec_nw_ttl",
	ActSetField:     "set_field",
	ActPushPbb:      "push_pbb",
	ActPopPbb:       "pop_pbb",
	ActExperimenter: "experimenter",
}

func (t ActionType) String() string {
	if s, ok := actionNames[t]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", uint8(t))
}

// ActionCodes holds the OFPAT_* codes of each version.
// 1.0 numbers its actions differently from 1.1, and 1.2 replaced the
// set-header actions with set-field.
var ActionCodes = buildActionCodes()

func buildActionCodes() *CodeTable[ActionType] {
	t := newCodeTable[ActionType]("action")

	v10 := []ActionType{
		ActOutput, ActSetVlanVID, ActSetVlanPCP, ActStripVlan, ActSetDlSrc, ActSetDlDst,
		ActSetNwSrc, ActSetNwDst, ActSetNwTos, ActSetTpSrc, ActSetTpDst, ActEnqueue,
	}
	for code, typ := range v10 {
		t.add(typ, uint16(code), V1_0)
	}

	v11 := []ActionType{
		ActOutput, ActSetVlanVID, ActSetVlanPCP, ActSetDlSrc, ActSetDlDst, ActSetNwSrc,
		ActSetNwDst, ActSetNwTos, ActSetNwEcn, ActSetTpSrc, ActSetTpDst, ActCopyTTLOut,
		ActCopyTTLIn, ActSetMplsLabel, ActSetMplsTc, ActSetMplsTTL, ActDecMplsTTL,
		ActPushVlan, ActPopVlan, ActPushMpls, ActPopMpls, ActSetQueue, ActGroup,
		ActSetNwTTL, ActDecNwTTL,
	}
	for code, typ := range v11 {
		t.add(typ, uint16(code), V1_1)
		if code == 0 || code >= 11 && code != 13 && code != 14 {
			t.add(typ, uint16(code), V1_2, V1_3)
		}
	}

	t.add(ActSetField, 25, V1_2, V1_3)
	t.add(ActPushPbb, 26, V1_3)
	t.add(ActPopPbb, 27, V1_3)
	return t.experimenter(ActExperimenter, 0xffff)
}

type actionShape uint8

const (
	shapeHeader actionShape = iota
	shapeOutput
	shapeEnqueue
	shapeU8
	shapeU16
	shapeU32
	shapeMAC
	shapeSetField
	shapeExperimenter
)

func (t ActionType) shape() actionShape {
	switch t {
	case ActOutput:
		return shapeOutput
	case ActEnqueue:
		return shapeEnqueue
	case ActSetVlanPCP, ActSetNwTos, ActSetNwEcn, ActSetMplsTc, ActSetMplsTTL, ActSetNwTTL:
		return shapeU8
	case ActSetVlanVID, ActSetTpSrc, ActSetTpDst, ActPushVlan, ActPushMpls, ActPushPbb, ActPopMpls:
		return shapeU16
	case ActSetNwSrc, ActSetNwDst, ActSetMplsLabel, ActSetQueue, ActGroup:
		return shapeU32
	case ActSetDlSrc, ActSetDlDst:
		return shapeMAC
	case ActSetField:
		return shapeSetField
	case ActExperimenter:
		return shapeExperimenter
	default:
		return shapeHeader
	}
}

// Action is one of the action structs of this package.
type Action interface {
	ActionType() ActionType
}

// HeaderAction is an action without a body, such as pop_vlan or dec_nw_ttl.
// Lists of header actions also advertise supported actions.
type HeaderAction struct {
	Type ActionType
}

func (a HeaderAction) ActionType() ActionType { return a.Type }

// OutputAction sends the packet to a port. The port is 16 bits wide in 1.0.
type OutputAction struct {
	Port   uint32
	MaxLen uint16
}

func (OutputAction) ActionType() ActionType { return ActOutput }

// EnqueueAction is the 1.0 form of set_queue followed by output.
type EnqueueAction struct {
	Port  uint16
	Queue uint32
}

func (EnqueueAction) ActionType() ActionType { return ActEnqueue }

// ByteAction carries an 8-bit value: a pcp, tos, ecn, mpls tc or a ttl.
type ByteAction struct {
	Type  ActionType
	Value uint8
}

func (a ByteAction) ActionType() ActionType { return a.Type }

// ShortAction carries a 16-bit value: a vlan id, a transport port or an ethertype.
type ShortAction struct {
	Type  ActionType
	Value uint16
}

func (a ShortAction) ActionType() ActionType { return a.Type }

// WordAction carries a 32-bit value: an IPv4 address, an mpls label, a queue or a group.
type WordAction struct {
	Type  ActionType
	Value uint32
}

func (a WordAction) ActionType() ActionType { return a.Type }

// MACAction sets an Ethernet address.
type MACAction struct {
	Type ActionType
	Addr net.HardwareAddr
}

func (a MACAction) ActionType() ActionType { return a.Type }

// SetFieldAction rewrites the header field described by an OXM.
type SetFieldAction struct {
	Field MatchField
}

func (SetFieldAction) ActionType() ActionType { return ActSetField }

// ExperimenterAction carries a vendor payload.
type ExperimenterAction struct {
	Experimenter uint32
	Data         []byte
}

func (ExperimenterAction) ActionType() ActionType { return ActExperimenter }

// Output is a shorthand for an output action without a length limit.
func Output(port uint32) OutputAction {
	return OutputAction{Port: port, MaxLen: 0xffff}
}

// ActionString formats an action for display.
func ActionString(a Action) string {
	switch a := a.(type) {
	case HeaderAction:
		return a.Type.String()
	case OutputAction:
		return fmt.Sprintf("output:%d", a.Port)
	case EnqueueAction:
		return fmt.Sprintf("enqueue:%d:%d", a.Port, a.Queue)
	case ByteAction:
		return fmt.Sprintf("%s:%d", a.Type, a.Value)
	case ShortAction:
		return fmt.Sprintf("%s:0x%04x", a.Type, a.Value)
	case WordAction:
		return fmt.Sprintf("%s:0x%08x", a.Type, a.Value)
	case MACAction:
		return fmt.Sprintf("%s:%s", a.Type, a.Addr)
	case SetFieldAction:
		return fmt.Sprintf("set_field:%s", a.Field)
	case ExperimenterAction:
		return fmt.Sprintf("experimenter:0x%08x:%x", a.Experimenter, a.Data)
	default:
		return fmt.Sprintf("%v", a)
	}
}
