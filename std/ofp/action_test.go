package ofp_test

import (
	"net"
	"net/netip"
	"testing"

	enc "github.com/netwire/ofwire/std/encoding"
	"github.com/netwire/ofwire/std/ofp"
	tu "github.com/netwire/ofwire/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

var testMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

func actionsOf(v ofp.Version) []ofp.Action {
	vendor := ofp.ExperimenterAction{Experimenter: 0x2320, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	switch v {
	case ofp.V1_0:
		return []ofp.Action{
			ofp.Output(2),
			ofp.ShortAction{Type: ofp.ActSetVlanVID, Value: 10},
			ofp.ByteAction{Type: ofp.ActSetVlanPCP, Value: 3},
			ofp.HeaderAction{Type: ofp.ActStripVlan},
			ofp.MACAction{Type: ofp.ActSetDlSrc, Addr: testMAC},
			ofp.WordAction{Type: ofp.ActSetNwSrc, Value: 0x0a000001},
			ofp.ByteAction{Type: ofp.ActSetNwTos, Value: 0x10},
			ofp.ShortAction{Type: ofp.ActSetTpDst, Value: 80},
			ofp.EnqueueAction{Port: 1, Queue: 7},
			vendor,
		}
	case ofp.V1_1:
		return []ofp.Action{
			ofp.Output(0xfffffffd),
			ofp.MACAction{Type: ofp.ActSetDlDst, Addr: testMAC},
			ofp.ByteAction{Type: ofp.ActSetNwEcn, Value: 1},
			ofp.WordAction{Type: ofp.ActSetMplsLabel, Value: 100},
			ofp.ByteAction{Type: ofp.ActSetMplsTc, Value: 5},
			ofp.HeaderAction{Type: ofp.ActCopyTTLOut},
			ofp.ShortAction{Type: ofp.ActPushVlan, Value: 0x8100},
			ofp.HeaderAction{Type: ofp.ActPopVlan},
			ofp.WordAction{Type: ofp.ActGroup, Value: 5},
			ofp.ByteAction{Type: ofp.ActSetNwTTL, Value: 64},
			ofp.HeaderAction{Type: ofp.ActDecNwTTL},
			vendor,
		}
	case ofp.V1_2:
		return []ofp.Action{
			ofp.Output(1),
			ofp.SetFieldAction{Field: ofp.MatchEthType(0x0800)},
			ofp.SetFieldAction{Field: ofp.MatchVlanVID(42)},
			ofp.ShortAction{Type: ofp.ActPopMpls, Value: 0x0800},
			ofp.WordAction{Type: ofp.ActSetQueue, Value: 3},
			ofp.HeaderAction{Type: ofp.ActDecMplsTTL},
			vendor,
		}
	default:
		return []ofp.Action{
			ofp.Output(1),
			ofp.ShortAction{Type: ofp.ActPushPbb, Value: 0x88e7},
			ofp.HeaderAction{Type: ofp.ActPopPbb},
			ofp.SetFieldAction{Field: ofp.MatchField{
				Class: ofp.OXMClassBasic,
				Field: ofp.OXMTunnelID,
				Value: []byte{0, 0, 0, 0, 0, 0, 0x12, 0x34},
			}},
			ofp.SetFieldAction{Field: ofp.MatchEthDst(testMAC)},
			vendor,
		}
	}
}

func TestActionRoundTrip(t *testing.T) {
	tu.SetT(t)

	for _, v := range ofp.Versions {
		as := actionsOf(v)
		wire := tu.NoErr(ofp.MarshalActions(as, v))
		require.Zero(t, len(wire)%4, "version %s", v)
		require.Equal(t, as, tu.NoErr(ofp.ParseActions(wire, v)), "version %s", v)
	}
}

// sampleAction builds an action of typ by trying each body layout until v accepts one.
func sampleAction(t *testing.T, typ ofp.ActionType, v ofp.Version) ofp.Action {
	switch typ {
	case ofp.ActOutput:
		return ofp.Output(3)
	case ofp.ActEnqueue:
		return ofp.EnqueueAction{Port: 1, Queue: 2}
	case ofp.ActSetField:
		return ofp.SetFieldAction{Field: ofp.MatchEthType(0x86dd)}
	case ofp.ActExperimenter:
		return ofp.ExperimenterAction{Experimenter: 0x2320, Data: make([]byte, 16)}
	}
	for _, a := range []ofp.Action{
		ofp.HeaderAction{Type: typ},
		ofp.ByteAction{Type: typ, Value: 7},
		ofp.ShortAction{Type: typ, Value: 0x8847},
		ofp.WordAction{Type: typ, Value: 0x12345},
		ofp.MACAction{Type: typ, Addr: testMAC},
	} {
		if _, err := ofp.MarshalActions([]ofp.Action{a}, v); err == nil {
			return a
		}
	}
	require.Failf(t, "no body layout", "%s in %s", typ, v)
	return nil
}

func TestActionRoundTripEveryKind(t *testing.T) {
	tu.SetT(t)

	for _, v := range ofp.Versions {
		types := ofp.ActionCodes.Types(v)
		as := make([]ofp.Action, 0, len(types))
		for _, typ := range types {
			a := sampleAction(t, typ, v)
			wire := tu.NoErr(ofp.MarshalActions([]ofp.Action{a}, v))
			require.Zero(t, len(wire)%8, "%s in %s", typ, v)
			require.Equal(t, []ofp.Action{a}, tu.NoErr(ofp.ParseActions(wire, v)), "%s in %s", typ, v)
			as = append(as, a)
		}

		wire := tu.NoErr(ofp.MarshalActions(as, v))
		require.Equal(t, as, tu.NoErr(ofp.ParseActions(wire, v)), "version %s", v)
	}
}

func TestActionLengthLimit(t *testing.T) {
	tu.SetT(t)

	// 4-byte header, 4-byte id, data: the largest multiple of 8 that fits
	biggest := ofp.ExperimenterAction{Experimenter: 1, Data: make([]byte, 0xfff0)}
	wire := tu.NoErr(ofp.MarshalActions([]ofp.Action{biggest}, ofp.V1_3))
	require.Len(t, wire, 0xfff8)
	require.Equal(t, []ofp.Action{biggest}, tu.NoErr(ofp.ParseActions(wire, ofp.V1_3)))

	tu.Err(ofp.MarshalActions([]ofp.Action{ofp.ExperimenterAction{Experimenter: 1, Data: make([]byte, 0x10000)}}, ofp.V1_3))
}

func TestActionExperimenterAlignment(t *testing.T) {
	tu.SetT(t)

	odd := ofp.ExperimenterAction{Experimenter: 0x2320, Data: []byte{1, 2, 3}}
	for _, v := range ofp.Versions {
		tu.Err(ofp.MarshalActions([]ofp.Action{odd}, v))
	}

	err := tu.Err(ofp.ParseActions(tu.Hex("ffff 000c 00002320 01020304"), ofp.V1_3))
	require.True(t, enc.IsDecode(err))

	got := tu.NoErr(ofp.ParseActions(tu.Hex("ffff 0008 00002320"), ofp.V1_3))
	require.Equal(t, []ofp.Action{ofp.ExperimenterAction{Experimenter: 0x2320, Data: []byte{}}}, got)
}

func TestActionWire(t *testing.T) {
	tu.SetT(t)

	wire := tu.NoErr(ofp.MarshalActions([]ofp.Action{ofp.Output(1)}, ofp.V1_3))
	require.Equal(t, tu.Hex("0000 0010 00000001 ffff 000000000000"), []byte(wire))

	wire = tu.NoErr(ofp.MarshalActions([]ofp.Action{ofp.Output(1)}, ofp.V1_0))
	require.Equal(t, tu.Hex("0000 0008 0001 ffff"), []byte(wire))

	wire = tu.NoErr(ofp.MarshalActions([]ofp.Action{ofp.SetFieldAction{Field: ofp.MatchEthType(0x0800)}}, ofp.V1_3))
	require.Equal(t, tu.Hex("0019 0010 80000a02 0800 000000000000"), []byte(wire))

	wire = tu.NoErr(ofp.MarshalActions([]ofp.Action{ofp.EnqueueAction{Port: 3, Queue: 9}}, ofp.V1_0))
	require.Equal(t, tu.Hex("000b 0010 0003 000000000000 00000009"), []byte(wire))
}

func TestActionNewestOnOldest(t *testing.T) {
	tu.SetT(t)

	push := ofp.ShortAction{Type: ofp.ActPushPbb, Value: 0x88e7}
	tu.NoErr(ofp.MarshalActions([]ofp.Action{push}, ofp.V1_3))
	err := tu.Err(ofp.MarshalActions([]ofp.Action{push}, ofp.V1_0))
	require.True(t, enc.IsVersionMismatch(err))

	err = tu.Err(ofp.ParseActions(tu.Hex("001a 0008 88e7 0000"), ofp.V1_0))
	require.True(t, enc.IsVersionMismatch(err))
}

func TestActionMalformed(t *testing.T) {
	tu.SetT(t)

	cases := map[string]string{
		"unknown code":      "001c 0008 00000000",
		"length too small":  "0012 0002",
		"body too short":    "0000 000c 00000001 ffff 0000",
		"trailing bytes":    "0012 000c 00000000 00000000",
		"truncated list":    "0012 0008 0000",
		"set_field overpad": "0019 0018 80000a02 0800 0000000000000000000000000000",
		"set_field short":   "0019 0008 80000a02",
	}
	for name, hex := range cases {
		err := tu.Err(ofp.ParseActions(tu.Hex(hex), ofp.V1_3))
		require.True(t, enc.IsDecode(err), name)
		require.False(t, enc.IsVersionMismatch(err), name)
	}
}

func TestActionEncodeErrors(t *testing.T) {
	tu.SetT(t)

	tu.Err(ofp.MarshalActions([]ofp.Action{ofp.Output(0x10000)}, ofp.V1_0))
	tu.Err(ofp.MarshalActions([]ofp.Action{ofp.ByteAction{Type: ofp.ActOutput, Value: 1}}, ofp.V1_3))
	tu.Err(ofp.MarshalActions([]ofp.Action{ofp.MACAction{Type: ofp.ActSetDlSrc, Addr: testMAC[:4]}}, ofp.V1_0))

	// set_field needs oxm
	err := tu.Err(ofp.MarshalActions([]ofp.Action{ofp.SetFieldAction{Field: ofp.MatchInPort(1)}}, ofp.V1_1))
	require.True(t, enc.IsVersionMismatch(err))
}

func TestActionHeaders(t *testing.T) {
	tu.SetT(t)

	hdrs := []ofp.Action{
		ofp.HeaderAction{Type: ofp.ActOutput},
		ofp.HeaderAction{Type: ofp.ActGroup},
		ofp.ExperimenterAction{Experimenter: 0x2320, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	w := enc.NewWriter(0)
	require.NoError(t, ofp.EncodeActionHeaders(w, hdrs, ofp.V1_3))
	require.Equal(t, tu.Hex("0000 0004 0016 0004 ffff 0010 00002320 0102030405060708"), []byte(w.Bytes()))
	require.Equal(t, hdrs, tu.NoErr(ofp.DecodeActionHeaders(enc.NewReader(w.Bytes()), ofp.V1_3)))

	// headers padded to 8 bytes are accepted
	got := tu.NoErr(ofp.DecodeActionHeaders(enc.NewReader(tu.Hex("0000 0008 00000000")), ofp.V1_3))
	require.Equal(t, []ofp.Action{ofp.HeaderAction{Type: ofp.ActOutput}}, got)

	err := tu.Err(ofp.DecodeActionHeaders(enc.NewReader(tu.Hex("ffff 000c 00002320 01020304")), ofp.V1_3))
	require.True(t, enc.IsDecode(err))

	bad := []ofp.Action{ofp.ExperimenterAction{Experimenter: 1, Data: []byte{1}}}
	require.Error(t, ofp.EncodeActionHeaders(enc.NewWriter(0), bad, ofp.V1_3))
}

func TestMatchFieldWire(t *testing.T) {
	tu.SetT(t)

	w := enc.NewWriter(0)
	require.NoError(t, ofp.EncodeMatchField(w, ofp.MatchInPort(3), ofp.V1_3))
	require.Equal(t, tu.Hex("80000004 00000003"), []byte(w.Bytes()))

	w = enc.NewWriter(0)
	src := ofp.MatchIPv4Src(netip.MustParsePrefix("10.1.2.3/8"))
	require.NoError(t, ofp.EncodeMatchField(w, src, ofp.V1_2))
	require.Equal(t, tu.Hex("80001708 0a000000 ff000000"), []byte(w.Bytes()))
	got := tu.NoErr(ofp.DecodeMatchField(enc.NewReader(w.Bytes()), ofp.V1_2))
	require.True(t, src.Equal(got))
	require.Equal(t, "ipv4_src=0a000000/ff000000", got.String())

	host := ofp.MatchIPv4Src(netip.MustParsePrefix("10.1.2.3/32"))
	require.False(t, host.HasMask())
}

func TestMatchFieldLegality(t *testing.T) {
	tu.SetT(t)

	err := tu.Err(ofp.DecodeMatchField(enc.NewReader(tu.Hex("80000004 00000003")), ofp.V1_1))
	require.True(t, enc.IsVersionMismatch(err))

	tunnel := tu.Hex("80004c08 0000000000001234")
	tu.NoErr(ofp.DecodeMatchField(enc.NewReader(tunnel), ofp.V1_3))
	err = tu.Err(ofp.DecodeMatchField(enc.NewReader(tunnel), ofp.V1_2))
	require.True(t, enc.IsVersionMismatch(err))

	cases := map[string]string{
		"unknown field":    "80006401 00",
		"wrong width":      "80000a04 00000800",
		"mask not allowed": "80000b04 0800ffff",
		"truncated":        "80000004 0000",
		"odd masked":       "00010303 010203",
	}
	for name, hex := range cases {
		err := tu.Err(ofp.DecodeMatchField(enc.NewReader(tu.Hex(hex)), ofp.V1_3))
		require.True(t, enc.IsDecode(err), name)
		require.False(t, enc.IsVersionMismatch(err), name)
	}

	bad := ofp.MatchField{Class: ofp.OXMClassBasic, Field: ofp.OXMEthType, Value: []byte{1}}
	require.Error(t, ofp.EncodeMatchField(enc.NewWriter(0), bad, ofp.V1_3))
}

func TestMatchFieldOtherClasses(t *testing.T) {
	tu.SetT(t)

	fields := []ofp.MatchField{
		{Class: ofp.OXMClassExperimenter, Field: 1, Experimenter: 0x4f4e4600, Value: []byte{1, 2}},
		{Class: ofp.OXMClassNXM1, Field: 2, Value: []byte{1, 2, 3}, Mask: []byte{0xff, 0xff, 0}},
	}
	w := enc.NewWriter(0)
	require.NoError(t, ofp.EncodeMatchFields(w, fields, ofp.V1_3))
	require.Equal(t, tu.Hex("ffff0206 4f4e4600 0102 00010506 010203 ffff00"), []byte(w.Bytes()))

	got := tu.NoErr(ofp.DecodeMatchFields(enc.NewReader(w.Bytes()), ofp.V1_3))
	require.Len(t, got, 2)
	for i := range fields {
		require.True(t, fields[i].Equal(got[i]), "field %d: %s", i, got[i])
	}
}

func TestMatch(t *testing.T) {
	tu.SetT(t)

	fields := []ofp.MatchField{ofp.MatchInPort(1), ofp.MatchEthType(0x0800)}
	w := enc.NewWriter(0)
	require.NoError(t, ofp.EncodeMatch(w, fields, ofp.V1_3))
	require.Equal(t, tu.Hex("0001 0012 80000004 00000001 80000a02 0800 000000000000"), []byte(w.Bytes()))
	require.Equal(t, fields, tu.NoErr(ofp.ParseMatch(w.Bytes(), ofp.V1_3)))

	empty := enc.NewWriter(0)
	require.NoError(t, ofp.EncodeMatch(empty, nil, ofp.V1_3))
	require.Equal(t, tu.Hex("0001 0004 00000000"), []byte(empty.Bytes()))

	err := tu.Err(ofp.ParseMatch(tu.Hex("0000 0004 00000000"), ofp.V1_3))
	require.True(t, enc.IsDecode(err))
}

func TestMatchLengthLimit(t *testing.T) {
	tu.SetT(t)

	ports := func(n int) []ofp.MatchField {
		fields := make([]ofp.MatchField, n)
		for i := range fields {
			fields[i] = ofp.MatchInPort(uint32(i))
		}
		return fields
	}

	// 4-byte match header, 8 bytes per in_port field
	w := enc.NewWriter(0)
	require.NoError(t, ofp.EncodeMatch(w, ports(8191), ofp.V1_3))
	require.Equal(t, []byte{0xff, 0xfc}, []byte(w.Bytes()[2:4]))
	require.Len(t, tu.NoErr(ofp.ParseMatch(w.Bytes(), ofp.V1_3)), 8191)

	require.Error(t, ofp.EncodeMatch(enc.NewWriter(0), ports(8192), ofp.V1_3))
}
