package packet_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	enc "github.com/netwire/ofwire/std/encoding"
	"github.com/netwire/ofwire/std/packet"
	tu "github.com/netwire/ofwire/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

const lldpFrame = `
0180c200000e 001122334455 88cc
0207 04 001122334455
0405 05 65746830
0602 0078
0a03 737731
fe06 0026e1 01 aabb
0000
0000`

func TestDecodeLLDPFrame(t *testing.T) {
	tu.SetT(t)

	frame := tu.Hex(lldpFrame)
	p := tu.NoErr(packet.Decode(packet.KindEthernet, frame))
	require.Equal(t, packet.LLDPMulticast, p.DestinationMAC())
	require.Equal(t, uint16(0x88cc), p.EtherType())

	lp := p.Payload()
	require.NotNil(t, lp)
	require.Equal(t, packet.KindLLDP, lp.Kind())
	l := lp.LLDP()

	sub, id, ok := l.ChassisID()
	require.True(t, ok)
	require.Equal(t, packet.ChassisMAC, sub)
	require.Equal(t, []byte(srcMAC), id)

	psub, pid, ok := l.PortID()
	require.True(t, ok)
	require.Equal(t, packet.PortIfName, psub)
	require.Equal(t, []byte("eth0"), pid)

	require.Equal(t, uint16(120), tu.NoErr(ttlOf(l)))
	name, ok := l.SystemName()
	require.True(t, ok)
	require.Equal(t, "sw1", name)

	key := packet.CustomKey{OUI: [3]byte{0x00, 0x26, 0xe1}, Subtype: 1}
	custom, ok := l.Custom(key)
	require.True(t, ok)
	require.Equal(t, []byte{0x00, 0x26, 0xe1, 0x01, 0xaa, 0xbb}, custom.Value)

	// the terminator is consumed but not stored
	require.Len(t, l.TLVs(), 5)
	for _, tlv := range l.TLVs() {
		require.NotEqual(t, packet.TLVEnd, tlv.Type)
	}

	// re-encoding drops the frame padding after the terminator
	require.Equal(t, frame[:len(frame)-2], tu.NoErr(p.Encode()))
}

func ttlOf(l *packet.LLDP) (uint16, error) {
	v, ok := l.TTL()
	if !ok {
		return 0, enc.Decodef("no ttl")
	}
	return v, nil
}

func TestLLDPEncodeOrder(t *testing.T) {
	tu.SetT(t)

	oui := [3]byte{0x00, 0x80, 0xc2}
	l := packet.NewLLDP()
	require.NoError(t, l.Set(packet.NewCustomTLV(oui, 2, []byte{0x0a})))
	require.NoError(t, l.Set(packet.NewStringTLV(packet.TLVSystemDesc, "d")))
	require.NoError(t, l.Set(packet.NewCustomTLV(oui, 1, []byte{0x0b})))
	require.NoError(t, l.Set(packet.NewStringTLV(packet.TLVSystemName, "n")))
	require.NoError(t, l.Set(packet.NewTTLTLV(30)))
	require.NoError(t, l.Set(packet.NewPortIDTLV(packet.PortLocal, []byte{0x01})))
	require.NoError(t, l.Set(packet.NewChassisIDTLV(packet.ChassisLocal, []byte{0x02})))

	// same key replaces in place
	require.NoError(t, l.Set(packet.NewCustomTLV(oui, 2, []byte{0x0c})))

	want := tu.Hex(`
		0202 07 02
		0402 07 01
		0602 001e
		0c01 64
		0a01 6e
		fe05 0080c2 02 0c
		fe05 0080c2 01 0b
		0000`)
	buf := tu.NoErr(l.Encode())
	require.Equal(t, want, buf)
	require.Equal(t, len(want)*8, l.Bits())

	back := tu.NoErr(packet.DecodeLLDP(buf))
	if diff := cmp.Diff(l.TLVs(), back.TLVs()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	l.Remove(packet.TLVSystemDesc)
	l.RemoveCustom(packet.CustomKey{OUI: oui, Subtype: 2})
	require.Len(t, l.Optional(), 1)
	require.Len(t, l.Customs(), 1)
}

func TestLLDPEmpty(t *testing.T) {
	tu.SetT(t)

	l := packet.NewLLDP()
	require.Equal(t, []byte{0, 0}, tu.NoErr(l.Encode()))

	back := tu.NoErr(packet.DecodeLLDP(nil))
	require.Empty(t, back.TLVs())
}

func TestLLDPMalformed(t *testing.T) {
	tu.SetT(t)

	// value runs past the buffer
	err := tu.Err(packet.DecodeLLDP(tu.Hex("0207 04 0011")))
	require.True(t, enc.IsDecode(err))
	require.True(t, enc.IsRange(err))

	// dangling byte where a header should be
	require.True(t, enc.IsDecode(tu.Err(packet.DecodeLLDP(tu.Hex("0602 001e 00")))))

	// end tlv with a length
	require.True(t, enc.IsDecode(tu.Err(packet.DecodeLLDP(tu.Hex("0001 00")))))

	// custom tlv without OUI and subtype
	require.True(t, enc.IsDecode(tu.Err(packet.DecodeLLDP(tu.Hex("fe02 0080 0000")))))

	// buffer exhaustion without terminator is accepted
	l := tu.NoErr(packet.DecodeLLDP(tu.Hex("0602 001e")))
	require.Equal(t, uint16(30), tu.NoErr(ttlOf(l)))

	require.Error(t, packet.NewLLDP().Set(packet.TLV{Type: packet.TLVEnd}))
	big := packet.NewLLDP()
	require.NoError(t, big.Set(packet.TLV{Type: packet.TLVSystemDesc, Value: make([]byte, 512)}))
	tu.Err(big.Encode())
}

func TestLLDPCapabilities(t *testing.T) {
	tu.SetT(t)

	l := packet.NewLLDP()
	require.NoError(t, l.Set(packet.NewCapabilitiesTLV(packet.CapBridge|packet.CapRouter, packet.CapBridge)))
	sys, en, ok := l.Capabilities()
	require.True(t, ok)
	require.Equal(t, packet.CapBridge|packet.CapRouter, sys)
	require.Equal(t, packet.CapBridge, en)
	require.Equal(t, "caps", packet.TLVCapabilities.String())
}

func TestLLDPGopacketInterop(t *testing.T) {
	tu.SetT(t)

	frame := tu.Hex(lldpFrame)
	gp := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	layer, ok := gp.Layer(layers.LayerTypeLinkLayerDiscovery).(*layers.LinkLayerDiscovery)
	require.True(t, ok)

	mine := tu.NoErr(packet.Decode(packet.KindEthernet, frame)).Payload().LLDP()
	theirs := tu.NoErr(packet.FromLinkLayerDiscovery(layer))
	if diff := cmp.Diff(mine.TLVs(), theirs.TLVs()); diff != "" {
		t.Fatalf("gopacket disagrees (-ours +gopacket):\n%s", diff)
	}

	back := mine.LinkLayerDiscovery()
	require.Equal(t, layer.ChassisID, back.ChassisID)
	require.Equal(t, layer.PortID, back.PortID)
	require.Equal(t, layer.TTL, back.TTL)
	require.Len(t, back.Values, len(layer.Values))
	for i := range back.Values {
		require.Equal(t, layer.Values[i].Type, back.Values[i].Type)
		require.Equal(t, layer.Values[i].Value, back.Values[i].Value)
	}
}
