package tools_test

import (
	"bytes"
	"net"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/netwire/ofwire/std/ofp"
	"github.com/netwire/ofwire/std/packet"
	"github.com/netwire/ofwire/std/stats"
	tu "github.com/netwire/ofwire/std/utils/testutils"
	"github.com/netwire/ofwire/tools"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const lldpFrame = `
0180c200000e 001122334455 88cc
0207 04 001122334455
0405 05 65746830
0602 0078
0a03 737731
fe06 0026e1 01 aabb
0000`

func ipv4Frame(t *testing.T) []byte {
	ip := tu.NoErr(packet.NewIPv4(netip.MustParseAddr("10.0.0.1"), netip.MustParseAddr("10.0.0.2"), 17, 64, []byte("hello")))
	src := net.HardwareAddr{0x02, 0, 0, 0, 0, 1}
	dst := net.HardwareAddr{0x02, 0, 0, 0, 0, 2}
	eth := tu.NoErr(packet.NewEthernet(dst, src, packet.EtherTypeIPv4, ip))
	return tu.NoErr(eth.Encode())
}

func TestDescribePacket(t *testing.T) {
	tu.SetT(t)

	p := tu.NoErr(packet.Decode(packet.KindEthernet, tu.Hex(lldpFrame)))
	require.Equal(t, "ethernet/lldp", tools.Chain(p))

	var b bytes.Buffer
	tools.DescribePacket(&b, p)
	out := b.String()
	require.Contains(t, out, "ethernet:\n")
	require.Contains(t, out, "lldp (in ethernet):\n")
	require.Contains(t, out, "dst=01:80:c2:00:00:0e\n")
	require.Contains(t, out, "ethertype=0x88cc\n")
	require.Contains(t, out, "chassis-id=4:001122334455\n")
	require.Contains(t, out, "port-id=5:eth0\n")
	require.Contains(t, out, "ttl=120\n")
	require.Contains(t, out, "system-name=sw1\n")
	require.Contains(t, out, "00-26-e1/1=aabb\n")
}

func TestDescribeIPv4(t *testing.T) {
	tu.SetT(t)

	p := tu.NoErr(packet.Decode(packet.KindEthernet, ipv4Frame(t)))
	var b bytes.Buffer
	tools.DescribePacket(&b, p)
	out := b.String()
	require.Contains(t, out, "ipv4 (in ethernet):\n")
	require.Contains(t, out, "src=10.0.0.1\n")
	require.Contains(t, out, "protocol=17\n")
	require.Contains(t, out, "checksum=ok\n")
	require.Contains(t, out, "payload=5 bytes\n")
}

func TestDescribePcap(t *testing.T) {
	tu.SetT(t)

	good := ipv4Frame(t)
	bad := bytes.Clone(good)
	bad[14+10] ^= 0xff

	var capture bytes.Buffer
	pw := pcapgo.NewWriter(&capture)
	require.NoError(t, pw.WriteFileHeader(65536, layers.LinkTypeEthernet))
	for i, f := range [][]byte{tu.Hex(lldpFrame), {1, 2, 3, 4, 5}, good, bad} {
		ci := gopacket.CaptureInfo{Timestamp: time.Unix(int64(i), 0), CaptureLength: len(f), Length: len(f)}
		require.NoError(t, pw.WritePacket(ci, f))
	}

	st := stats.New("test")
	var out bytes.Buffer
	require.NoError(t, tools.DescribePcap(&out, &capture, st, false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasSuffix(lines[0], "ethernet/lldp ok"), lines[0])
	require.Contains(t, lines[1], "error:")
	require.True(t, strings.HasSuffix(lines[2], "ethernet/ipv4 ok"), lines[2])
	require.True(t, strings.HasSuffix(lines[3], "ethernet/ipv4 corrupted"), lines[3])

	require.Equal(t, 1.0, testutil.ToFloat64(st.Frames.WithLabelValues("ethernet/lldp", stats.ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(st.Frames.WithLabelValues("ethernet", stats.ResultDecode)))
	require.Equal(t, 1.0, testutil.ToFloat64(st.Frames.WithLabelValues("ethernet/ipv4", stats.ResultCorrupted)))
}

func TestDescribePcapLinkType(t *testing.T) {
	var capture bytes.Buffer
	pw := pcapgo.NewWriter(&capture)
	require.NoError(t, pw.WriteFileHeader(65536, layers.LinkTypeRaw))
	require.Error(t, tools.DescribePcap(&bytes.Buffer{}, &capture, stats.New("test"), false))
}

func TestDescribeElements(t *testing.T) {
	var b bytes.Buffer
	actions := tu.Hex("0000 0010 00000001 ffff 000000000000 0019 0010 80000a02 0800 000000000000")
	require.NoError(t, tools.DescribeElements(&b, tools.ElemActions, actions, ofp.V1_3, false))
	require.Equal(t, "output:1\nset_field:eth_type=0800\n", b.String())

	b.Reset()
	require.NoError(t, tools.DescribeElements(&b, tools.ElemActions, tu.Hex("0000 0004 0016 0004"), ofp.V1_3, true))
	require.Equal(t, "output\ngroup\n", b.String())

	b.Reset()
	insts := tu.Hex("0001 0008 02 000000")
	require.NoError(t, tools.DescribeElements(&b, tools.ElemInstructions, insts, ofp.V1_3, false))
	require.Equal(t, "goto_table:2\n", b.String())

	b.Reset()
	match := tu.Hex("0001 000c 80000004 00000001 00000000")
	require.NoError(t, tools.DescribeElements(&b, tools.ElemMatch, match, ofp.V1_3, false))
	require.Equal(t, "in_port=00000001\n", b.String())

	require.Error(t, tools.DescribeElements(&b, tools.ElemInstructions, insts, ofp.V1_0, false))
	require.Error(t, tools.DescribeElements(&b, tools.ElemMatch, append(match, 0), ofp.V1_3, false))
}

func TestDescribeFlags(t *testing.T) {
	var b bytes.Buffer
	require.Error(t, tools.DescribeFlags(&b, "capabilities", 0x1ef, ofp.V1_0, ofp.Options{Strict: true}))

	require.NoError(t, tools.DescribeFlags(&b, "capabilities", 0x1ef, ofp.V1_0, ofp.Options{Strict: false}))
	require.Equal(t, "flow_stats table_stats port_stats stp ip_reasm queue_stats arp_match_ip\n", b.String())

	b.Reset()
	require.NoError(t, tools.DescribeFlags(&b, "flowmod", 0x19, ofp.V1_3, ofp.Options{Strict: true}))
	require.Equal(t, "send_flow_rem no_pkt_counts no_byt_counts\n", b.String())

	require.Error(t, tools.DescribeFlags(&b, "ports", 1, ofp.V1_3, ofp.Options{}))
}
