package ofp

import "fmt"

// ActionFlags is the supported-actions bitmap of a features reply, where
// bit n announces the action with code n.
var ActionFlags = buildActionFlags()

func buildActionFlags() *FlagBitmap[ActionType] {
	b := newFlagBitmap[ActionType]("actions")
	for _, v := range Versions {
		for _, typ := range ActionCodes.Types(v) {
			code, err := ActionCodes.Encode(typ, v)
			if err != nil || code >= 32 {
				continue
			}
			b.add(typ, uint(code), v)
		}
	}
	return b
}

// Capability is a switch capability flag.
type Capability uint8

const (
	CapFlowStats Capability = iota + 1
	CapTableStats
	CapPortStats
	CapStp
	CapGroupStats
	CapIPReasm
	CapQueueStats
	CapArpMatchIP
	CapPortBlocked
)

var capabilityNames = map[Capability]string{
	CapFlowStats:   "flow_stats",
	CapTableStats:  "table_stats",
	CapPortStats:   "port_stats",
	CapStp:         "stp",
	CapGroupStats:  "group_stats",
	CapIPReasm:     "ip_reasm",
	CapQueueStats:  "queue_stats",
	CapArpMatchIP:  "arp_match_ip",
	CapPortBlocked: "port_blocked",
}

func (c Capability) String() string {
	if s, ok := capabilityNames[c]; ok {
		return s
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

// CapabilityFlags is the capabilities bitmap of a features reply.
var CapabilityFlags = newFlagBitmap[Capability]("capabilities").
	add(CapFlowStats, 0, Versions...).
	add(CapTableStats, 1, Versions...).
	add(CapPortStats, 2, Versions...).
	add(CapStp, 3, V1_0).
	add(CapGroupStats, 3, since(V1_1)...).
	add(CapIPReasm, 5, Versions...).
	add(CapQueueStats, 6, Versions...).
	add(CapArpMatchIP, 7, V1_0, V1_1).
	add(CapPortBlocked, 8, since(V1_2)...)

// FlowModFlag is a flag of a flow-mod message.
type FlowModFlag uint8

const (
	FlowSendFlowRem FlowModFlag = iota + 1
	FlowCheckOverlap
	FlowEmerg
	FlowResetCounts
	FlowNoPktCounts
	FlowNoBytCounts
)

var flowModNames = map[FlowModFlag]string{
	FlowSendFlowRem:  "send_flow_rem",
	FlowCheckOverlap: "check_overlap",
	FlowEmerg:        "emerg",
	FlowResetCounts:  "reset_counts",
	FlowNoPktCounts:  "no_pkt_counts",
	FlowNoBytCounts:  "no_byt_counts",
}

func (f FlowModFlag) String() string {
	if s, ok := flowModNames[f]; ok {
		return s
	}
	return fmt.Sprintf("flowmod(%d)", uint8(f))
}

// FlowModFlags is the flags bitmap of a flow-mod message.
var FlowModFlags = newFlagBitmap[FlowModFlag]("flowmod").
	add(FlowSendFlowRem, 0, Versions...).
	add(FlowCheckOverlap, 1, Versions...).
	add(FlowEmerg, 2, V1_0).
	add(FlowResetCounts, 2, since(V1_2)...).
	add(FlowNoPktCounts, 3, V1_3).
	add(FlowNoBytCounts, 4, V1_3)
