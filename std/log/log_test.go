package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/netwire/ofwire/std/log"
	tu "github.com/netwire/ofwire/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

type tag string

func (t tag) String() string { return string(t) }

func TestParseLevel(t *testing.T) {
	tu.SetT(t)

	require.Equal(t, log.LevelTrace, tu.NoErr(log.ParseLevel("TRACE")))
	require.Equal(t, log.LevelWarn, tu.NoErr(log.ParseLevel("warn")))
	tu.Err(log.ParseLevel("LOUD"))

	var l log.Level
	require.NoError(t, l.UnmarshalText([]byte("debug")))
	require.Equal(t, log.LevelDebug, l)
	require.Equal(t, []byte("DEBUG"), tu.NoErr(l.MarshalText()))
}

func TestLevelFilter(t *testing.T) {
	tu.SetT(t)

	var buf bytes.Buffer
	old := log.Default()
	defer log.SetDefault(old)

	l := log.NewJson(&buf)
	log.SetDefault(l)
	require.Equal(t, log.LevelInfo, l.Level())
	require.False(t, l.Enabled(log.LevelDebug))

	log.Debug(tag("ofp"), "hidden")
	require.Zero(t, buf.Len())

	log.Warn(tag("ofp"), "dropping bits", "residual", 12)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "WARN", rec["level"])
	require.Equal(t, "ofp", rec["tag"])
	require.Equal(t, "dropping bits", rec["msg"])
	require.Equal(t, float64(12), rec["residual"])

	prev := l.SetLevel(log.LevelTrace)
	require.Equal(t, log.LevelInfo, prev)
	require.True(t, l.Enabled(log.LevelTrace))
	buf.Reset()
	log.Trace(nil, "visible")
	require.Contains(t, buf.String(), "TRACE")
	require.NotContains(t, buf.String(), "tag")
}

func TestDefaultText(t *testing.T) {
	tu.SetT(t)

	var buf bytes.Buffer
	old := log.Default()
	defer log.SetDefault(old)

	l := log.NewText(&buf)
	l.SetLevel(log.LevelDebug)
	log.SetDefault(l)

	log.Debug(tag("packet"), "raw payload", "ethertype", "0x9999")
	require.Contains(t, buf.String(), "level=DEBUG")
	require.Contains(t, buf.String(), "tag=packet")
	require.Contains(t, buf.String(), "ethertype=0x9999")

	buf.Reset()
	log.Info("pcap", "plain string tag")
	require.Contains(t, buf.String(), "tag=pcap")
}
