package ofp

import (
	"fmt"
	"math/bits"
	"slices"

	enc "github.com/netwire/ofwire/std/encoding"
	"github.com/netwire/ofwire/std/log"
)

// CodeTable maps logical types to wire codes, per version.
// Tables are built at package initialization and read-only afterwards.
type CodeTable[T comparable] struct {
	name   string
	byCode [numVersions]map[uint16]T
	byType [numVersions]map[T]uint16
	known  map[uint16]bool

	hasExp  bool
	expCode uint16
	expType T
}

func newCodeTable[T comparable](name string) *CodeTable[T] {
	t := &CodeTable[T]{
		name:  name,
		known: make(map[uint16]bool),
	}
	for i := 0; i < numVersions; i++ {
		t.byCode[i] = make(map[uint16]T)
		t.byType[i] = make(map[T]uint16)
	}
	return t
}

func (t *CodeTable[T]) add(typ T, code uint16, vs ...Version) *CodeTable[T] {
	for _, v := range vs {
		t.byCode[v.index()][code] = typ
		t.byType[v.index()][typ] = code
	}
	t.known[code] = true
	return t
}

// experimenter registers the reserved code that maps to typ in every version.
func (t *CodeTable[T]) experimenter(typ T, code uint16) *CodeTable[T] {
	t.hasExp, t.expType, t.expCode = true, typ, code
	return t
}

// Decode returns the type of a wire code.
// A code defined only in other versions fails with ErrVersionMismatch,
// a code never defined with ErrDecode.
func (t *CodeTable[T]) Decode(code uint16, v Version) (T, error) {
	var zero T
	if err := v.check(); err != nil {
		return zero, err
	}
	if t.hasExp && code == t.expCode {
		return t.expType, nil
	}
	if typ, ok := t.byCode[v.index()][code]; ok {
		return typ, nil
	}
	if t.known[code] {
		return zero, mismatch(v, "%s code %d is not defined", t.name, code)
	}
	return zero, enc.Decodef("unknown %s code %d", t.name, code)
}

// Encode returns the wire code of a type.
// A type without a code in v fails with ErrVersionMismatch.
func (t *CodeTable[T]) Encode(typ T, v Version) (uint16, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	if t.hasExp && typ == t.expType {
		return t.expCode, nil
	}
	if code, ok := t.byType[v.index()][typ]; ok {
		return code, nil
	}
	for _, m := range t.byType {
		if _, ok := m[typ]; ok {
			return 0, mismatch(v, "%s %v is not defined", t.name, typ)
		}
	}
	return 0, enc.Decodef("unknown %s %v", t.name, typ)
}

// Types lists the types defined in v by increasing code, experimenter last.
func (t *CodeTable[T]) Types(v Version) []T {
	if !v.Valid() {
		return nil
	}
	m := t.byCode[v.index()]
	codes := make([]uint16, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	ret := make([]T, 0, len(codes)+1)
	for _, c := range codes {
		ret = append(ret, m[c])
	}
	if t.hasExp {
		ret = append(ret, t.expType)
	}
	return ret
}

func (t *CodeTable[T]) String() string {
	return t.name
}

// FlagBitmap maps logical flags to bit positions, per version.
type FlagBitmap[F comparable] struct {
	name  string
	bits  [numVersions]map[F]uint
	flags [numVersions]map[uint]F
}

func newFlagBitmap[F comparable](name string) *FlagBitmap[F] {
	b := &FlagBitmap[F]{name: name}
	for i := 0; i < numVersions; i++ {
		b.bits[i] = make(map[F]uint)
		b.flags[i] = make(map[uint]F)
	}
	return b
}

func (b *FlagBitmap[F]) add(f F, bit uint, vs ...Version) *FlagBitmap[F] {
	for _, v := range vs {
		b.bits[v.index()][f] = bit
		b.flags[v.index()][bit] = f
	}
	return b
}

func (b *FlagBitmap[F]) String() string {
	return b.name
}

// Mask returns the bits defined in v.
func (b *FlagBitmap[F]) Mask(v Version) uint32 {
	if !v.Valid() {
		return 0
	}
	var m uint32
	for bit := range b.flags[v.index()] {
		m |= 1 << bit
	}
	return m
}

// Decode decodes mask with the default options.
func (b *FlagBitmap[F]) Decode(mask uint32, v Version) ([]F, error) {
	return b.DecodeWith(mask, v, DefaultOptions())
}

// DecodeWith returns the flags set in mask, by increasing bit position.
// Bits not defined in v fail the call in strict mode; otherwise they are dropped.
func (b *FlagBitmap[F]) DecodeWith(mask uint32, v Version, opts Options) ([]F, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if residual := mask &^ b.Mask(v); residual != 0 {
		if opts.Strict {
			return nil, enc.ErrVersionMismatch{
				Version:  v.String(),
				Msg:      fmt.Sprintf("%s bitmap 0x%x has undefined bits", b.name, mask),
				Residual: uint64(residual),
			}
		}
		log.Debug(b, "Dropping undefined flag bits", "version", v, "bits", fmt.Sprintf("0x%x", residual))
		mask &^= residual
	}

	ret := make([]F, 0, bits.OnesCount32(mask))
	for mask != 0 {
		bit := uint(bits.TrailingZeros32(mask))
		ret = append(ret, b.flags[v.index()][bit])
		mask &^= 1 << bit
	}
	return ret, nil
}

// Encode returns the bitmap of flags. A flag without a bit in v is rejected.
func (b *FlagBitmap[F]) Encode(flags []F, v Version) (uint32, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	var mask uint32
	for _, f := range flags {
		bit, ok := b.bits[v.index()][f]
		if !ok {
			return 0, enc.Decodef("%s flag %v is not defined in version %s", b.name, f, v)
		}
		mask |= 1 << bit
	}
	return mask, nil
}
