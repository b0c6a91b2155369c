// Package bitbuf reads and writes bit fields of arbitrary length at arbitrary,
// non byte-aligned offsets of a byte slice.
//
// Wire fields are MSB-first: bit 0 is the most significant bit of byte 0.
// Values returned by GetBits and consumed by ToNumber are LSB-aligned, i.e.
// right-justified in the smallest number of bytes that holds them.
package bitbuf

import (
	"encoding/binary"

	enc "github.com/netwire/ofwire/std/encoding"
	"golang.org/x/exp/constraints"
)

// Alignment tells CopyBits where the significant bits of the source are.
type Alignment uint8

const (
	// LSB means the value occupies the low end of the source (right-justified).
	LSB Alignment = iota
	// MSB means the value starts at bit 0 of the source (left-justified).
	MSB
)

// NumBytes is the number of bytes needed to hold numBits bits.
func NumBytes(numBits int) int {
	return (numBits + 7) / 8
}

// MSBMask returns a byte with the n most significant bits set.
func MSBMask(n int) byte {
	return ^LSBMask(8 - n)
}

// LSBMask returns a byte with the n least significant bits set.
func LSBMask(n int) byte {
	if n >= 8 {
		return 0xff
	}
	if n <= 0 {
		return 0
	}
	return byte(1)<<n - 1
}

func checkSpan(data []byte, start, numBits int) error {
	if start < 0 || numBits < 0 || start+numBits > len(data)*8 {
		return enc.ErrRange{Offset: start, NumBits: numBits, BufferBits: len(data) * 8}
	}
	return nil
}

// GetBits reads numBits bits starting at bit offset start and returns them
// right-justified in NumBytes(numBits) bytes. The unused high bits of the
// first output byte are zero.
func GetBits(data []byte, start, numBits int) ([]byte, error) {
	if err := checkSpan(data, start, numBits); err != nil {
		return nil, err
	}
	out := make([]byte, NumBytes(numBits))
	if numBits == 0 {
		return out, nil
	}

	end := start + numBits
	span := data[start/8 : (end-1)/8+1]
	// bits of the last span byte that lie beyond the field
	shift := uint(len(span)*8 - (end - start/8*8))

	for j := len(out) - 1; j >= 0; j-- {
		k := len(span) - len(out) + j
		b := span[k] >> shift
		if k > 0 && shift > 0 {
			b |= span[k-1] << (8 - shift)
		}
		out[j] = b
	}
	if r := numBits % 8; r != 0 {
		out[0] &= LSBMask(r)
	}
	return out, nil
}

// readByteBits reads n <= 8 bits at offset start, right-justified.
// The span must already be validated.
func readByteBits(src []byte, start, n int) byte {
	i, off := start/8, start%8
	w := uint16(src[i]) << 8
	if off+n > 8 {
		w |= uint16(src[i+1])
	}
	return byte(w>>(16-off-n)) & LSBMask(n)
}

// CopyBits writes numBits bits taken from src into dest at bit offset destStart.
// The bits of dest outside of the written span are preserved.
//
// With LSB alignment the value is the last numBits bits of src, as produced by
// GetBits and ToByteArray. With MSB alignment it is the first numBits bits.
func CopyBits(dest, src []byte, destStart, numBits int, align Alignment) error {
	if err := checkSpan(dest, destStart, numBits); err != nil {
		return err
	}
	srcStart := 0
	if align == LSB {
		srcStart = len(src)*8 - numBits
	}
	if err := checkSpan(src, srcStart, numBits); err != nil {
		return err
	}

	sb := srcStart
	end := destStart + numBits
	for db := destStart; db < end; {
		off := db % 8
		n := min(8-off, end-db)
		shift := uint(8 - off - n)
		mask := LSBMask(n) << shift
		v := readByteBits(src, sb, n) << shift
		dest[db/8] = dest[db/8]&^mask | v&mask
		db += n
		sb += n
	}
	return nil
}

// ShiftToLsb converts an MSB-aligned value of numBits bits into its LSB-aligned form.
func ShiftToLsb(data []byte, numBits int) ([]byte, error) {
	return GetBits(data, 0, numBits)
}

// ShiftToMsb converts an LSB-aligned value of numBits bits into its MSB-aligned form.
func ShiftToMsb(data []byte, numBits int) ([]byte, error) {
	out := make([]byte, NumBytes(numBits))
	if err := CopyBits(out, data, 0, numBits, LSB); err != nil {
		return nil, err
	}
	return out, nil
}

// ToNumber folds a big-endian byte sequence into an unsigned integer.
// Only the last eight bytes contribute.
func ToNumber(data []byte) uint64 {
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return v
}

// ToNumberBits is ToNumber restricted to the low numBits bits.
func ToNumberBits(data []byte, numBits int) uint64 {
	v := ToNumber(data)
	if numBits < 64 {
		v &= 1<<uint(numBits) - 1
	}
	return v
}

// ToByteArray returns the low numBits bits of v, big-endian and LSB-aligned,
// in NumBytes(numBits) bytes. Negative values are taken as two's complement.
func ToByteArray[T constraints.Integer](v T, numBits int) []byte {
	out := make([]byte, NumBytes(numBits))
	x := uint64(v)
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = byte(x)
		x >>= 8
	}
	if r := numBits % 8; r != 0 {
		out[0] &= LSBMask(r)
	}
	return out
}

// Bytes returns v big-endian in the natural width of its type.
func Bytes[T constraints.Unsigned](v T) []byte {
	n := binary.Size(v)
	if n <= 0 {
		n = 8
	}
	return ToByteArray(v, n*8)
}

// GetByte returns the first byte of data.
func GetByte(data []byte) uint8 {
	return uint8(ToNumber(data[:min(1, len(data))]))
}

// GetShort folds up to the first two bytes of data.
func GetShort(data []byte) uint16 {
	return uint16(ToNumber(data[:min(2, len(data))]))
}

// GetInt folds up to the first four bytes of data.
func GetInt(data []byte) uint32 {
	return uint32(ToNumber(data[:min(4, len(data))]))
}

// GetLong folds up to the first eight bytes of data.
func GetLong(data []byte) uint64 {
	return ToNumber(data[:min(8, len(data))])
}
