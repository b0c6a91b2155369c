// Package ofp encodes and decodes OpenFlow protocol elements (actions,
// instructions and OXM match fields) for wire versions 1.0 to 1.3.
//
// Every wire code and flag bit is looked up per version. A value that is
// well-formed but not defined in the version in effect fails with
// encoding.ErrVersionMismatch; a value never defined fails with
// encoding.ErrDecode.
package ofp

import (
	"fmt"
	"strings"

	enc "github.com/netwire/ofwire/std/encoding"
)

// Version is an OpenFlow wire version, as carried in the message header.
type Version uint8

const (
	V1_0 Version = 0x01
	V1_1 Version = 0x02
	V1_2 Version = 0x03
	V1_3 Version = 0x04
)

const numVersions = 4

// Versions lists the supported versions, oldest first.
var Versions = []Version{V1_0, V1_1, V1_2, V1_3}

func (v Version) String() string {
	switch v {
	case V1_0:
		return "1.0"
	case V1_1:
		return "1.1"
	case V1_2:
		return "1.2"
	case V1_3:
		return "1.3"
	default:
		return fmt.Sprintf("0x%02x", uint8(v))
	}
}

// Valid reports whether v is one of the supported versions.
func (v Version) Valid() bool {
	return v >= V1_0 && v <= V1_3
}

func (v Version) index() int {
	return int(v) - int(V1_0)
}

func (v Version) check() error {
	if !v.Valid() {
		return enc.Decodef("unsupported protocol version %s", v)
	}
	return nil
}

// ParseVersion accepts "1.3", "13" or the wire value "0x04".
func ParseVersion(s string) (Version, error) {
	for _, v := range Versions {
		if s == v.String() || s == strings.ReplaceAll(v.String(), ".", "") || s == fmt.Sprintf("0x%02x", uint8(v)) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("ofp: unknown protocol version %q", s)
}

func (v *Version) UnmarshalText(b []byte) error {
	x, err := ParseVersion(string(b))
	if err != nil {
		return err
	}
	*v = x
	return nil
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func mismatch(v Version, format string, args ...any) error {
	return enc.ErrVersionMismatch{Version: v.String(), Msg: fmt.Sprintf(format, args...)}
}

// since returns the versions from v onward.
func since(v Version) []Version {
	return Versions[v.index():]
}
