// Package packet implements a header/payload packet model driven by per-kind
// field tables, with Ethernet, IPv4, LLDP and LLDP TLV kinds.
//
// A decoded frame is a forward-only chain: each packet owns its payload, or the
// raw bytes that follow its header when no decoder is registered for the
// value of its discriminant field (e.g. EtherType).
package packet

import (
	"fmt"

	"github.com/netwire/ofwire/std/bitbuf"
	enc "github.com/netwire/ofwire/std/encoding"
	"github.com/netwire/ofwire/std/log"
)

// Kind is the closed set of packet types this package can decode.
type Kind uint8

const (
	KindEthernet Kind = iota + 1
	KindIPv4
	KindLLDP
	KindTLV
)

func (k Kind) String() string {
	switch k {
	case KindEthernet:
		return "ethernet"
	case KindIPv4:
		return "ipv4"
	case KindLLDP:
		return "lldp"
	case KindTLV:
		return "tlv"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Table returns the header layout of the kind.
// LLDP has no fixed header: its body is a TLV sequence.
func (k Kind) Table() FieldTable {
	switch k {
	case KindEthernet:
		return ethernetTable
	case KindIPv4:
		return ipv4Table
	case KindTLV:
		return tlvTable
	default:
		return nil
	}
}

// Dynamic is the width of a field known only while decoding,
// such as a TLV value whose size comes from the preceding length field.
const Dynamic = -1

// Field is one header field. Fields are laid out back to back in table order.
type Field struct {
	Name string
	Bits int
}

// BitSpan locates a field inside a header.
type BitSpan struct {
	Start int
	Bits  int
}

// FieldTable is the ordered header layout of a packet kind.
type FieldTable []Field

func (t FieldTable) field(name string) (Field, bool) {
	for _, f := range t {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Span returns the static position of a field. It fails for unknown fields
// and for fields placed after a dynamic one.
func (t FieldTable) Span(name string) (BitSpan, bool) {
	off := 0
	for _, f := range t {
		if f.Bits == Dynamic {
			if f.Name == name {
				return BitSpan{Start: off, Bits: Dynamic}, true
			}
			return BitSpan{}, false
		}
		if f.Name == name {
			return BitSpan{Start: off, Bits: f.Bits}, true
		}
		off += f.Bits
	}
	return BitSpan{}, false
}

// Packet is one node of a decoded chain.
type Packet struct {
	kind      Kind
	fields    map[string][]byte
	lldp      *LLDP
	payload   *Packet
	raw       []byte
	corrupted bool
}

// New returns an empty packet of the given kind.
func New(kind Kind) *Packet {
	p := &Packet{
		kind:   kind,
		fields: make(map[string][]byte),
	}
	if kind == KindLLDP {
		p.lldp = NewLLDP()
	}
	return p
}

func (p *Packet) String() string {
	return p.kind.String()
}

func (p *Packet) Kind() Kind {
	return p.kind
}

// Field returns the LSB-aligned value of a header field, if present.
func (p *Packet) Field(name string) ([]byte, bool) {
	v, ok := p.fields[name]
	return v, ok
}

// FieldUint returns a header field as an integer, or zero if absent.
func (p *Packet) FieldUint(name string) uint64 {
	return bitbuf.ToNumber(p.fields[name])
}

// SetField sets a header field from its LSB-aligned value.
// A fixed-width field takes exactly NumBytes(width) bytes; bits above the width are cleared.
func (p *Packet) SetField(name string, v []byte) error {
	f, ok := p.kind.Table().field(name)
	if !ok {
		return fmt.Errorf("packet: %s has no field %q", p.kind, name)
	}
	val := make([]byte, len(v))
	copy(val, v)
	if f.Bits != Dynamic {
		if len(v) != bitbuf.NumBytes(f.Bits) {
			return fmt.Errorf("packet: %s field %s takes %d bytes, got %d", p.kind, name, bitbuf.NumBytes(f.Bits), len(v))
		}
		if r := f.Bits % 8; r != 0 && len(val) > 0 {
			val[0] &= bitbuf.LSBMask(r)
		}
	}
	p.fields[name] = val
	return nil
}

// SetFieldUint sets a fixed-width header field from an integer, truncated to the field width.
func (p *Packet) SetFieldUint(name string, v uint64) error {
	f, ok := p.kind.Table().field(name)
	if !ok || f.Bits == Dynamic {
		return fmt.Errorf("packet: %s has no fixed-width field %q", p.kind, name)
	}
	p.fields[name] = bitbuf.ToByteArray(v, f.Bits)
	return nil
}

// Payload returns the decoded payload, if any.
func (p *Packet) Payload() *Packet {
	return p.payload
}

// SetPayload links q as the payload, dropping any raw payload.
func (p *Packet) SetPayload(q *Packet) {
	p.payload = q
	p.raw = nil
}

// RawPayload returns the undecoded bytes following the header.
func (p *Packet) RawPayload() []byte {
	return p.raw
}

// SetRawPayload stores a copy of b as payload, dropping any decoded payload.
func (p *Packet) SetRawPayload(b []byte) {
	p.raw = append([]byte(nil), b...)
	p.payload = nil
}

// LLDP returns the TLV collection of an LLDP packet, nil for other kinds.
func (p *Packet) LLDP() *LLDP {
	return p.lldp
}

// Corrupted reports whether the post-decode integrity check failed.
func (p *Packet) Corrupted() bool {
	return p.corrupted
}

// Verify returns ErrCorrupted if any packet of the chain failed its integrity check.
func (p *Packet) Verify() error {
	var err error
	p.Walk(func(q, _ *Packet) bool {
		if q.corrupted {
			err = fmt.Errorf("%s: %w", q.kind, enc.ErrCorrupted)
			return false
		}
		return true
	})
	return err
}

// Walk calls fn for each packet of the chain, outermost first, along with the
// packet that carries it (nil for p itself). It stops when fn returns false.
func (p *Packet) Walk(fn func(q, parent *Packet) bool) {
	var parent *Packet
	for q := p; q != nil; parent, q = q, q.payload {
		if !fn(q, parent) {
			return
		}
	}
}

// HeaderBits is the encoded size of the header fields.
func (p *Packet) HeaderBits() int {
	n := 0
	for _, f := range p.kind.Table() {
		if f.Bits == Dynamic {
			n += len(p.fields[f.Name]) * 8
		} else {
			n += f.Bits
		}
	}
	return n
}

// Decode decodes data as a packet of the given kind, with its payload chain.
func Decode(kind Kind, data []byte) (*Packet, error) {
	return DecodeBits(kind, data, 0, len(data)*8)
}

// DecodeBits decodes the numBits bits of data starting at bit offset start.
func DecodeBits(kind Kind, data []byte, start, numBits int) (*Packet, error) {
	if start < 0 || numBits < 0 || start+numBits > len(data)*8 {
		return nil, enc.ErrRange{Offset: start, NumBits: numBits, BufferBits: len(data) * 8}
	}

	p := New(kind)
	if kind == KindLLDP {
		if err := p.lldp.decode(data, start, numBits); err != nil {
			return nil, err
		}
		return p, nil
	}

	used, err := p.decodeHeader(data, start, numBits)
	if err != nil {
		return nil, err
	}

	if rest := numBits - used; rest > 0 {
		if next, ok := p.payloadKind(); ok {
			child, err := DecodeBits(next, data, start+used, rest)
			if err != nil {
				return nil, fmt.Errorf("%s payload: %w", kind, err)
			}
			p.payload = child
		} else {
			raw, err := bitbuf.GetBits(data, start+used, rest)
			if err == nil {
				raw, err = bitbuf.ShiftToMsb(raw, rest)
			}
			if err != nil {
				return nil, err
			}
			p.raw = raw
			log.Trace(p, "Payload kept raw", "bytes", len(raw))
		}
	}

	header, err := bitbuf.GetBits(data, start, used)
	if err == nil {
		header, err = bitbuf.ShiftToMsb(header, used)
	}
	if err != nil {
		return nil, err
	}
	p.afterDecode(header)
	return p, nil
}

// decodeHeader reads the header fields in table order and returns the bits consumed.
func (p *Packet) decodeHeader(data []byte, start, numBits int) (int, error) {
	off, limit := start, start+numBits
	for _, f := range p.kind.Table() {
		n := f.Bits
		if n == Dynamic {
			var err error
			if n, err = p.dynamicBits(limit - off); err != nil {
				return 0, err
			}
		}
		if off+n > limit {
			return 0, enc.ErrDecode{
				Msg: fmt.Sprintf("%s field %s", p.kind, f.Name),
				Err: enc.ErrRange{Offset: off, NumBits: n, BufferBits: limit},
			}
		}
		v, err := bitbuf.GetBits(data, off, n)
		if err != nil {
			return 0, enc.ErrDecode{Msg: fmt.Sprintf("%s field %s", p.kind, f.Name), Err: err}
		}
		p.fields[f.Name] = v
		off += n
	}
	return off - start, nil
}

// dynamicBits returns the width of the dynamic field of the kind,
// given the fields decoded so far.
func (p *Packet) dynamicBits(avail int) (int, error) {
	switch p.kind {
	case KindTLV:
		return int(p.FieldUint(tlvLength)) * 8, nil
	case KindIPv4:
		ihl := int(p.FieldUint(IPv4IHL))
		if ihl < 5 {
			return 0, enc.Decodef("ipv4 header length %d is below the minimum of 5", ihl)
		}
		return (ihl - 5) * 32, nil
	default:
		return avail, nil
	}
}

// payloadKind looks up the decoder registered for the discriminant value.
func (p *Packet) payloadKind() (Kind, bool) {
	switch p.kind {
	case KindEthernet:
		v, ok := p.fields[EthEtherType]
		if !ok {
			return 0, false
		}
		k, ok := etherTypes[uint16(bitbuf.ToNumber(v))]
		return k, ok
	default:
		return 0, false
	}
}

func (p *Packet) afterDecode(header []byte) {
	switch p.kind {
	case KindIPv4:
		if ipv4Checksum(header) != 0 {
			p.corrupted = true
			log.Debug(p, "Header checksum mismatch", "checksum", p.FieldUint(IPv4Checksum))
		}
	}
}

func (p *Packet) afterEncode(buf []byte) {
	switch p.kind {
	case KindIPv4:
		hdr := buf[:p.HeaderBits()/8]
		span, _ := ipv4Table.Span(IPv4Checksum)
		hdr[span.Start/8], hdr[span.Start/8+1] = 0, 0
		sum := ipv4Checksum(hdr)
		hdr[span.Start/8], hdr[span.Start/8+1] = byte(sum>>8), byte(sum)
		p.fields[IPv4Checksum] = []byte{byte(sum >> 8), byte(sum)}
	}
}

// Encode serializes the chain: payload first, then the header in table order
// into a buffer sized for both. Absent fixed-width fields are written as zeros.
func (p *Packet) Encode() ([]byte, error) {
	if p.kind == KindLLDP {
		return p.lldp.Encode()
	}

	payload := p.raw
	if p.payload != nil {
		var err error
		if payload, err = p.payload.Encode(); err != nil {
			return nil, fmt.Errorf("%s payload: %w", p.kind, err)
		}
	}

	hdrBits := p.HeaderBits()
	if hdrBits%8 != 0 {
		return nil, fmt.Errorf("packet: %s header is %d bits, not a whole number of bytes", p.kind, hdrBits)
	}
	buf := make([]byte, hdrBits/8+len(payload))
	if err := p.encodeHeader(buf, 0); err != nil {
		return nil, err
	}
	copy(buf[hdrBits/8:], payload)
	p.afterEncode(buf)
	return buf, nil
}

// encodeHeader writes the header fields into buf starting at bit offset start.
func (p *Packet) encodeHeader(buf []byte, start int) error {
	off := start
	for _, f := range p.kind.Table() {
		v, ok := p.fields[f.Name]
		n := f.Bits
		if n == Dynamic {
			n = len(v) * 8
		}
		if ok {
			if err := bitbuf.CopyBits(buf, v, off, n, bitbuf.LSB); err != nil {
				return fmt.Errorf("%s field %s: %w", p.kind, f.Name, err)
			}
		}
		off += n
	}
	return nil
}
