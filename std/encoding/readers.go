package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reader is a big-endian byte stream reader over a Buffer.
// Structures are decoded from a Reader delegated to their declared length,
// and must consume it exactly (see CheckEOF).
type Reader struct {
	buf Buffer
	pos int
}

// NewReader returns a reader positioned at the start of buf.
func NewReader(buf Buffer) *Reader {
	return &Reader{
		buf: buf,
		pos: 0,
	}
}

func (r *Reader) short(n int) error {
	return ErrDecode{
		Msg: fmt.Sprintf("need %d bytes at offset %d, %d left", n, r.pos, len(r.buf)-r.pos),
		Err: io.ErrUnexpectedEOF,
	}
}

// Read implements io.Reader.
func (r *Reader) Read(b []byte) (int, error) {
	if r.pos >= len(r.buf) && len(b) > 0 {
		return 0, io.EOF
	}
	n := copy(b, r.buf[r.pos:])
	r.pos += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	ret := r.buf[r.pos]
	r.pos++
	return ret, nil
}

func (r *Reader) UnreadByte() error {
	if r.pos == 0 {
		return fmt.Errorf("encoding.Reader.UnreadByte: negative position")
	}
	r.pos--
	return nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, r.short(1)
	}
	ret := r.buf[r.pos]
	r.pos++
	return ret, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, r.short(2)
	}
	ret := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return ret, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, r.short(4)
	}
	ret := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return ret, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, r.short(8)
	}
	ret := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return ret, nil
}

// PeekU16 reads the next two bytes without advancing.
func (r *Reader) PeekU16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, r.short(2)
	}
	return binary.BigEndian.Uint16(r.buf[r.pos:]), nil
}

// ReadBuf reads l bytes into a fresh copy.
func (r *Reader) ReadBuf(l int) (Buffer, error) {
	if l < 0 || r.pos+l > len(r.buf) {
		return nil, r.short(l)
	}
	ret := make(Buffer, l)
	copy(ret, r.buf[r.pos:r.pos+l])
	r.pos += l
	return ret, nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	newPos := r.pos + n
	if newPos < 0 {
		return fmt.Errorf("encoding.Reader.Skip: negative position")
	}
	if newPos > len(r.buf) {
		return r.short(n)
	}
	r.pos = newPos
	return nil
}

// Pos returns the current position in the buffer.
func (r *Reader) Pos() int {
	return r.pos
}

// Length returns the length of the buffer.
func (r *Reader) Length() int {
	return len(r.buf)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Delegate returns a reader over the next l bytes and advances past them.
func (r *Reader) Delegate(l int) (*Reader, error) {
	if l < 0 || r.pos+l > len(r.buf) {
		return nil, r.short(l)
	}
	sub := r.buf[r.pos : r.pos+l]
	r.pos += l
	return NewReader(sub), nil
}

// CheckEOF fails if the reader has not been consumed exactly.
func (r *Reader) CheckEOF() error {
	if r.pos != len(r.buf) {
		return Decodef("%d trailing bytes after structure of declared length %d", len(r.buf)-r.pos, len(r.buf))
	}
	return nil
}
