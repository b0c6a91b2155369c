package encoding

import (
	"errors"
	"fmt"
)

// Buffer is a buffer of bytes
type Buffer []byte

// ErrRange is returned when a bit span falls outside of its buffer.
type ErrRange struct {
	Offset     int
	NumBits    int
	BufferBits int
}

func (e ErrRange) Error() string {
	return fmt.Sprintf("bit span [%d,+%d) is outside of a %d-bit buffer", e.Offset, e.NumBits, e.BufferBits)
}

// ErrDecode is returned for malformed input: an unknown wire code, an inconsistent
// declared length, or a truncated structure.
type ErrDecode struct {
	Msg string
	Err error
}

func (e ErrDecode) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Msg, e.Err)
	}
	return "decode: " + e.Msg
}

func (e ErrDecode) Unwrap() error {
	return e.Err
}

// ErrVersionMismatch is returned for a well-formed value that is not defined
// in the protocol version in effect.
// Residual carries the offending bits when the value is a flag bitmap.
type ErrVersionMismatch struct {
	Version  string
	Msg      string
	Residual uint64
}

func (e ErrVersionMismatch) Error() string {
	if e.Residual != 0 {
		return fmt.Sprintf("version %s: %s (illegal bits 0x%x)", e.Version, e.Msg, e.Residual)
	}
	return fmt.Sprintf("version %s: %s", e.Version, e.Msg)
}

// ErrCorrupted reports a checksum mismatch on a decoded packet.
// Decoding never fails with it; see Packet.Verify.
var ErrCorrupted = errors.New("checksum mismatch")

// Decodef is a shorthand for a formatted ErrDecode.
func Decodef(format string, v ...any) error {
	return ErrDecode{Msg: fmt.Sprintf(format, v...)}
}

// IsDecode reports whether err is or wraps an ErrDecode.
func IsDecode(err error) bool {
	var e ErrDecode
	return errors.As(err, &e)
}

// IsVersionMismatch reports whether err is or wraps an ErrVersionMismatch.
func IsVersionMismatch(err error) bool {
	var e ErrVersionMismatch
	return errors.As(err, &e)
}

// IsRange reports whether err is or wraps an ErrRange.
func IsRange(err error) bool {
	var e ErrRange
	return errors.As(err, &e)
}
