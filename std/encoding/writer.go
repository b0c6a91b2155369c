package encoding

import (
	"encoding/binary"
	"fmt"
)

// Writer is an append-only big-endian byte stream writer.
type Writer struct {
	buf Buffer
}

// NewWriter returns a writer with capacity for n bytes.
func NewWriter(n int) *Writer {
	return &Writer{buf: make(Buffer, 0, n)}
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// Write implements io.Writer. It never fails.
func (w *Writer) Write(b []byte) (int, error) {
	w.buf = append(w.buf, b...)
	return len(b), nil
}

// Pad appends n zero bytes.
func (w *Writer) Pad(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// PatchU16 overwrites two bytes at pos, e.g. a length reserved before the body was known.
func (w *Writer) PatchU16(pos int, v uint16) {
	binary.BigEndian.PutUint16(w.buf[pos:], v)
}

// PatchLen16 writes the byte count from start to the end of the stream as a
// 16-bit length at pos. A count above 0xffff is an error and leaves pos untouched.
func (w *Writer) PatchLen16(pos, start int) error {
	n := w.Len() - start
	if n > 0xffff {
		return fmt.Errorf("length %d does not fit a 16-bit length field", n)
	}
	w.PatchU16(pos, uint16(n))
	return nil
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes without copy.
func (w *Writer) Bytes() Buffer {
	return w.buf
}
