package ofp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"

	enc "github.com/netwire/ofwire/std/encoding"
)

// OXMClass is the class of an OXM header.
type OXMClass uint16

const (
	OXMClassNXM0         OXMClass = 0x0000
	OXMClassNXM1         OXMClass = 0x0001
	OXMClassBasic        OXMClass = 0x8000
	OXMClassExperimenter OXMClass = 0xffff
)

func (c OXMClass) String() string {
	switch c {
	case OXMClassNXM0:
		return "nxm0"
	case OXMClassNXM1:
		return "nxm1"
	case OXMClassBasic:
		return "openflow_basic"
	case OXMClassExperimenter:
		return "experimenter"
	default:
		return fmt.Sprintf("class(0x%04x)", uint16(c))
	}
}

// OXMField is a field number. Within the basic class it matches the
// OFPXMT_OFB_* wire value.
type OXMField uint8

const (
	OXMInPort OXMField = iota
	OXMInPhyPort
	OXMMetadata
	OXMEthDst
	OXMEthSrc
	OXMEthType
	OXMVlanVID
	OXMVlanPCP
	OXMIPDscp
	OXMIPEcn
	OXMIPProto
	OXMIPv4Src
	OXMIPv4Dst
	OXMTCPSrc
	OXMTCPDst
	OXMUDPSrc
	OXMUDPDst
	OXMSCTPSrc
	OXMSCTPDst
	OXMICMPv4Type
	OXMICMPv4Code
	OXMArpOp
	OXMArpSpa
	OXMArpTpa
	OXMArpSha
	OXMArpTha
	OXMIPv6Src
	OXMIPv6Dst
	OXMIPv6Flabel
	OXMICMPv6Type
	OXMICMPv6Code
	OXMIPv6NDTarget
	OXMIPv6NDSll
	OXMIPv6NDTll
	OXMMplsLabel
	OXMMplsTc
	OXMMplsBos
	OXMPbbIsid
	OXMTunnelID
	OXMIPv6Exthdr
)

type oxmInfo struct {
	name     string
	width    int
	maskable bool
}

var oxmInfos = map[OXMField]oxmInfo{
	OXMInPort:       {"in_port", 4, false},
	OXMInPhyPort:    {"in_phy_port", 4, false},
	OXMMetadata:     {"metadata", 8, true},
	OXMEthDst:       {"eth_dst", 6, true},
	OXMEthSrc:       {"eth_src", 6, true},
	OXMEthType:      {"eth_type", 2, false},
	OXMVlanVID:      {"vlan_vid", 2, true},
	OXMVlanPCP:      {"vlan_pcp", 1, false},
	OXMIPDscp:       {"ip_dscp", 1, false},
	OXMIPEcn:        {"ip_ecn", 1, false},
	OXMIPProto:      {"ip_proto", 1, false},
	OXMIPv4Src:      {"ipv4_src", 4, true},
	OXMIPv4Dst:      {"ipv4_dst", 4, true},
	OXMTCPSrc:       {"tcp_src", 2, false},
	OXMTCPDst:       {"tcp_dst", 2, false},
	OXMUDPSrc:       {"udp_src", 2, false},
	OXMUDPDst:       {"udp_dst", 2, false},
	OXMSCTPSrc:      {"sctp_src", 2, false},
	OXMSCTPDst:      {"sctp_dst", 2, false},
	OXMICMPv4Type:   {"icmpv4_type", 1, false},
	OXMICMPv4Code:   {"icmpv4_code", 1, false},
	OXMArpOp:        {"arp_op", 2, false},
	OXMArpSpa:       {"arp_spa", 4, true},
	OXMArpTpa:       {"arp_tpa", 4, true},
	OXMArpSha:       {"arp_sha", 6, true},
	OXMArpTha:       {"arp_tha", 6, true},
	OXMIPv6Src:      {"ipv6_src", 16, true},
	OXMIPv6Dst:      {"ipv6_dst", 16, true},
	OXMIPv6Flabel:   {"ipv6_flabel", 4, true},
	OXMICMPv6Type:   {"icmpv6_type", 1, false},
	OXMICMPv6Code:   {"icmpv6_code", 1, false},
	OXMIPv6NDTarget: {"ipv6_nd_target", 16, false},
	OXMIPv6NDSll:    {"ipv6_nd_sll", 6, false},
	OXMIPv6NDTll:    {"ipv6_nd_tll", 6, false},
	OXMMplsLabel:    {"mpls_label", 4, false},
	OXMMplsTc:       {"mpls_tc", 1, false},
	OXMMplsBos:      {"mpls_bos", 1, false},
	OXMPbbIsid:      {"pbb_isid", 3, true},
	OXMTunnelID:     {"tunnel_id", 8, true},
	OXMIPv6Exthdr:   {"ipv6_exthdr", 2, true},
}

func (f OXMField) String() string {
	if info, ok := oxmInfos[f]; ok {
		return info.name
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// Width is the value width in bytes of a basic field, 0 if unknown.
func (f OXMField) Width() int {
	return oxmInfos[f].width
}

// Maskable reports whether a basic field may carry a mask.
func (f OXMField) Maskable() bool {
	return oxmInfos[f].maskable
}

// OXMFields holds the basic-class field numbers of each version.
var OXMFields = buildOXMFields()

func buildOXMFields() *CodeTable[OXMField] {
	t := newCodeTable[OXMField]("oxm field")
	for f := OXMInPort; f <= OXMMplsTc; f++ {
		t.add(f, uint16(f), since(V1_2)...)
	}
	for f := OXMMplsBos; f <= OXMIPv6Exthdr; f++ {
		t.add(f, uint16(f), V1_3)
	}
	return t
}

const (
	oxmHeaderLen = 4
	maxOXMLen    = 0xff
)

// MatchField is one OXM TLV. Mask is nil for an exact match.
// Experimenter is set only for the experimenter class.
type MatchField struct {
	Class        OXMClass
	Field        OXMField
	Experimenter uint32
	Value        []byte
	Mask         []byte
}

func (m MatchField) HasMask() bool {
	return m.Mask != nil
}

// Len is the payload length carried in the OXM header.
func (m MatchField) Len() int {
	n := len(m.Value) + len(m.Mask)
	if m.Class == OXMClassExperimenter {
		n += experimenterLen
	}
	return n
}

func (m MatchField) header() uint32 {
	h := uint32(m.Class)<<16 | uint32(m.Field&0x7f)<<9 | uint32(m.Len())
	if m.HasMask() {
		h |= 1 << 8
	}
	return h
}

func (m MatchField) String() string {
	var name string
	switch m.Class {
	case OXMClassBasic:
		name = m.Field.String()
	case OXMClassExperimenter:
		name = fmt.Sprintf("experimenter(0x%08x,%d)", m.Experimenter, m.Field)
	default:
		name = fmt.Sprintf("%s(%d)", m.Class, m.Field)
	}
	if m.HasMask() {
		return fmt.Sprintf("%s=%x/%x", name, m.Value, m.Mask)
	}
	return fmt.Sprintf("%s=%x", name, m.Value)
}

// Equal compares two fields, treating an empty value like a nil one.
func (m MatchField) Equal(o MatchField) bool {
	return m.Class == o.Class && m.Field == o.Field && m.Experimenter == o.Experimenter &&
		bytes.Equal(m.Value, o.Value) && m.HasMask() == o.HasMask() && bytes.Equal(m.Mask, o.Mask)
}

func checkOXMVersion(v Version) error {
	if err := v.check(); err != nil {
		return err
	}
	if v < V1_2 {
		return mismatch(v, "oxm match fields are not defined")
	}
	return nil
}

// DecodeMatchField decodes one OXM TLV.
func DecodeMatchField(r *enc.Reader, v Version) (MatchField, error) {
	var m MatchField
	if err := checkOXMVersion(v); err != nil {
		return m, err
	}
	start := r.Pos()
	h, err := r.ReadU32()
	if err != nil {
		return m, err
	}
	m.Class = OXMClass(h >> 16)
	m.Field = OXMField(h >> 9 & 0x7f)
	hasMask := h>>8&1 == 1
	length := int(h & 0xff)

	body, err := r.Delegate(length)
	if err != nil {
		return m, fmt.Errorf("oxm at offset %d: %w", start, err)
	}

	switch m.Class {
	case OXMClassBasic:
		if _, err := OXMFields.Decode(uint16(m.Field), v); err != nil {
			return m, fmt.Errorf("oxm at offset %d: %w", start, err)
		}
		want := m.Field.Width()
		if hasMask {
			if !m.Field.Maskable() {
				return m, enc.Decodef("oxm %s at offset %d is not maskable", m.Field, start)
			}
			want *= 2
		}
		if length != want {
			return m, enc.Decodef("oxm %s at offset %d has length %d, want %d", m.Field, start, length, want)
		}
	case OXMClassExperimenter:
		if m.Experimenter, err = body.ReadU32(); err != nil {
			return m, fmt.Errorf("experimenter oxm at offset %d: %w", start, err)
		}
	}

	rest := body.Remaining()
	if hasMask && rest%2 != 0 {
		return m, enc.Decodef("masked oxm at offset %d has odd payload length %d", start, rest)
	}
	if hasMask {
		rest /= 2
	}
	if m.Value, err = body.ReadBuf(rest); err != nil {
		return m, err
	}
	if hasMask {
		if m.Mask, err = body.ReadBuf(rest); err != nil {
			return m, err
		}
	}
	return m, body.CheckEOF()
}

// EncodeMatchField appends one OXM TLV.
func EncodeMatchField(w *enc.Writer, m MatchField, v Version) error {
	if err := checkOXMVersion(v); err != nil {
		return err
	}
	if m.Field > 0x7f {
		return fmt.Errorf("ofp: oxm field %d does not fit 7 bits", m.Field)
	}
	if m.HasMask() && len(m.Mask) != len(m.Value) {
		return fmt.Errorf("ofp: oxm %s mask is %d bytes for a %d-byte value", m.Field, len(m.Mask), len(m.Value))
	}
	if m.Class == OXMClassBasic {
		if _, err := OXMFields.Encode(m.Field, v); err != nil {
			return err
		}
		if len(m.Value) != m.Field.Width() {
			return fmt.Errorf("ofp: oxm %s value is %d bytes, want %d", m.Field, len(m.Value), m.Field.Width())
		}
		if m.HasMask() && !m.Field.Maskable() {
			return fmt.Errorf("ofp: oxm %s is not maskable", m.Field)
		}
	}
	if m.Len() > maxOXMLen {
		return fmt.Errorf("ofp: oxm %s payload of %d bytes is too long", m.Field, m.Len())
	}

	w.WriteU32(m.header())
	if m.Class == OXMClassExperimenter {
		w.WriteU32(m.Experimenter)
	}
	w.Write(m.Value)
	w.Write(m.Mask)
	return nil
}

// DecodeMatchFields decodes OXM TLVs until the reader is exhausted.
func DecodeMatchFields(r *enc.Reader, v Version) ([]MatchField, error) {
	var ret []MatchField
	for r.Remaining() > 0 {
		m, err := DecodeMatchField(r, v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, m)
	}
	return ret, nil
}

// EncodeMatchFields appends a list of OXM TLVs.
func EncodeMatchFields(w *enc.Writer, ms []MatchField, v Version) error {
	for _, m := range ms {
		if err := EncodeMatchField(w, m, v); err != nil {
			return err
		}
	}
	return nil
}

const matchTypeOXM = 1

// DecodeMatch decodes an OXM ofp_match structure, padding included.
func DecodeMatch(r *enc.Reader, v Version) ([]MatchField, error) {
	if err := checkOXMVersion(v); err != nil {
		return nil, err
	}
	typ, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if typ != matchTypeOXM {
		return nil, enc.Decodef("match type %d is not oxm", typ)
	}
	length, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if length < oxmHeaderLen {
		return nil, enc.Decodef("match declares length %d", length)
	}
	body, err := r.Delegate(int(length) - oxmHeaderLen)
	if err != nil {
		return nil, err
	}
	fields, err := DecodeMatchFields(body, v)
	if err != nil {
		return nil, err
	}
	return fields, r.Skip(pad8(int(length)))
}

// EncodeMatch appends an OXM ofp_match structure padded to 8 bytes.
func EncodeMatch(w *enc.Writer, ms []MatchField, v Version) error {
	if err := checkOXMVersion(v); err != nil {
		return err
	}
	start := w.Len()
	w.WriteU16(matchTypeOXM)
	w.WriteU16(0)
	if err := EncodeMatchFields(w, ms, v); err != nil {
		return err
	}
	if err := w.PatchLen16(start+2, start); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	w.Pad(pad8(w.Len() - start))
	return nil
}

// ParseMatch decodes an ofp_match occupying all of buf.
func ParseMatch(buf []byte, v Version) ([]MatchField, error) {
	r := enc.NewReader(buf)
	fields, err := DecodeMatch(r, v)
	if err != nil {
		return nil, err
	}
	return fields, r.CheckEOF()
}

func basic(f OXMField, value []byte) MatchField {
	return MatchField{Class: OXMClassBasic, Field: f, Value: value}
}

// MatchInPort matches the ingress port.
func MatchInPort(port uint32) MatchField {
	return basic(OXMInPort, binary.BigEndian.AppendUint32(nil, port))
}

// MatchEthType matches the EtherType.
func MatchEthType(t uint16) MatchField {
	return basic(OXMEthType, binary.BigEndian.AppendUint16(nil, t))
}

// MatchEthDst matches the destination MAC.
func MatchEthDst(addr net.HardwareAddr) MatchField {
	return basic(OXMEthDst, bytes.Clone(addr))
}

// MatchIPv4Src matches an IPv4 source prefix. Prefixes shorter than /32 are masked.
func MatchIPv4Src(p netip.Prefix) MatchField {
	addr := p.Masked().Addr().As4()
	m := basic(OXMIPv4Src, addr[:])
	if p.Bits() < 32 {
		mask := net.CIDRMask(p.Bits(), 32)
		m.Mask = []byte(mask)
	}
	return m
}

// MatchVlanVID matches a tagged frame with the given VLAN id.
func MatchVlanVID(vid uint16) MatchField {
	const present = 0x1000
	return basic(OXMVlanVID, binary.BigEndian.AppendUint16(nil, vid|present))
}
