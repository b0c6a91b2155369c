package ofp

import (
	"fmt"
	"net"

	enc "github.com/netwire/ofwire/std/encoding"
)

const (
	actionHeaderLen = 4
	experimenterLen = 4
)

// DecodeAction decodes one action. The reader is advanced past the declared
// length, which must match the body exactly.
func DecodeAction(r *enc.Reader, v Version) (Action, error) {
	start := r.Pos()
	code, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	length, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	typ, err := ActionCodes.Decode(code, v)
	if err != nil {
		return nil, fmt.Errorf("action at offset %d: %w", start, err)
	}
	if length < actionHeaderLen {
		return nil, enc.Decodef("%s action at offset %d declares length %d", typ, start, length)
	}
	body, err := r.Delegate(int(length) - actionHeaderLen)
	if err != nil {
		return nil, fmt.Errorf("%s action at offset %d: %w", typ, start, err)
	}

	a, err := decodeActionBody(body, typ, v)
	if err == nil {
		err = body.CheckEOF()
	}
	if err != nil {
		return nil, fmt.Errorf("%s action at offset %d: %w", typ, start, err)
	}
	return a, nil
}

func decodeActionBody(r *enc.Reader, typ ActionType, v Version) (Action, error) {
	switch typ.shape() {
	case shapeOutput:
		var a OutputAction
		if v == V1_0 {
			port, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			a.Port = uint32(port)
			a.MaxLen, err = r.ReadU16()
			return a, err
		}
		var err error
		if a.Port, err = r.ReadU32(); err != nil {
			return nil, err
		}
		if a.MaxLen, err = r.ReadU16(); err != nil {
			return nil, err
		}
		return a, r.Skip(6)

	case shapeEnqueue:
		var a EnqueueAction
		var err error
		if a.Port, err = r.ReadU16(); err != nil {
			return nil, err
		}
		if err = r.Skip(6); err != nil {
			return nil, err
		}
		a.Queue, err = r.ReadU32()
		return a, err

	case shapeU8:
		x, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		return ByteAction{Type: typ, Value: x}, r.Skip(3)

	case shapeU16:
		x, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		return ShortAction{Type: typ, Value: x}, r.Skip(2)

	case shapeU32:
		x, err := r.ReadU32()
		return WordAction{Type: typ, Value: x}, err

	case shapeMAC:
		addr, err := r.ReadBuf(6)
		if err != nil {
			return nil, err
		}
		return MACAction{Type: typ, Addr: net.HardwareAddr(addr)}, r.Skip(6)

	case shapeSetField:
		f, err := DecodeMatchField(r, v)
		if err != nil {
			return nil, err
		}
		if pad := r.Remaining(); pad >= 8 {
			return nil, enc.Decodef("set_field carries %d bytes after its field", pad)
		}
		return SetFieldAction{Field: f}, r.Skip(r.Remaining())

	case shapeExperimenter:
		id, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if r.Remaining()%8 != 0 {
			return nil, enc.Decodef("experimenter data of %d bytes is not a multiple of 8", r.Remaining())
		}
		data, err := r.ReadBuf(r.Remaining())
		return ExperimenterAction{Experimenter: id, Data: data}, err

	default:
		return HeaderAction{Type: typ}, r.Skip(4)
	}
}

// EncodeAction appends one action.
func EncodeAction(w *enc.Writer, a Action, v Version) error {
	typ := a.ActionType()
	code, err := ActionCodes.Encode(typ, v)
	if err != nil {
		return err
	}
	start := w.Len()
	w.WriteU16(code)
	w.WriteU16(0)

	if err := encodeActionBody(w, a, v); err != nil {
		return fmt.Errorf("%s action: %w", typ, err)
	}
	if err := w.PatchLen16(start+2, start); err != nil {
		return fmt.Errorf("%s action: %w", typ, err)
	}
	return nil
}

func encodeActionBody(w *enc.Writer, a Action, v Version) error {
	want := a.ActionType().shape()
	shapeErr := func(got actionShape) error {
		if got != want {
			return fmt.Errorf("ofp: %T cannot carry a %s action", a, a.ActionType())
		}
		return nil
	}

	switch a := a.(type) {
	case HeaderAction:
		if err := shapeErr(shapeHeader); err != nil {
			return err
		}
		w.Pad(4)
	case OutputAction:
		if v == V1_0 {
			if a.Port > 0xffff {
				return fmt.Errorf("ofp: port %d does not fit a 1.0 output action", a.Port)
			}
			w.WriteU16(uint16(a.Port))
			w.WriteU16(a.MaxLen)
			return nil
		}
		w.WriteU32(a.Port)
		w.WriteU16(a.MaxLen)
		w.Pad(6)
	case EnqueueAction:
		w.WriteU16(a.Port)
		w.Pad(6)
		w.WriteU32(a.Queue)
	case ByteAction:
		if err := shapeErr(shapeU8); err != nil {
			return err
		}
		w.WriteU8(a.Value)
		w.Pad(3)
	case ShortAction:
		if err := shapeErr(shapeU16); err != nil {
			return err
		}
		w.WriteU16(a.Value)
		w.Pad(2)
	case WordAction:
		if err := shapeErr(shapeU32); err != nil {
			return err
		}
		w.WriteU32(a.Value)
	case MACAction:
		if err := shapeErr(shapeMAC); err != nil {
			return err
		}
		if len(a.Addr) != 6 {
			return fmt.Errorf("ofp: hardware address %s is not 6 bytes", a.Addr)
		}
		w.Write(a.Addr)
		w.Pad(6)
	case SetFieldAction:
		start := w.Len() - actionHeaderLen
		if err := EncodeMatchField(w, a.Field, v); err != nil {
			return err
		}
		w.Pad(pad8(w.Len() - start))
	case ExperimenterAction:
		if len(a.Data)%8 != 0 {
			return fmt.Errorf("ofp: experimenter action data of %d bytes is not a multiple of 8", len(a.Data))
		}
		w.WriteU32(a.Experimenter)
		w.Write(a.Data)
	default:
		return fmt.Errorf("ofp: unsupported action %T", a)
	}
	return nil
}

// pad8 is the padding that brings n to a multiple of 8.
func pad8(n int) int {
	return (8 - n%8) % 8
}

// DecodeActions decodes actions until the reader is exhausted.
func DecodeActions(r *enc.Reader, v Version) ([]Action, error) {
	var ret []Action
	for r.Remaining() > 0 {
		a, err := DecodeAction(r, v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, a)
	}
	return ret, nil
}

// EncodeActions appends a list of actions.
func EncodeActions(w *enc.Writer, as []Action, v Version) error {
	for _, a := range as {
		if err := EncodeAction(w, a, v); err != nil {
			return err
		}
	}
	return nil
}

// ParseActions decodes an action list occupying all of buf.
func ParseActions(buf []byte, v Version) ([]Action, error) {
	return DecodeActions(enc.NewReader(buf), v)
}

// MarshalActions encodes an action list.
func MarshalActions(as []Action, v Version) ([]byte, error) {
	w := enc.NewWriter(8 * len(as))
	if err := EncodeActions(w, as, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeActionHeaders decodes a capability list of action headers.
// Experimenter entries carry their id and data, and a length divisible by 8.
func DecodeActionHeaders(r *enc.Reader, v Version) ([]Action, error) {
	var ret []Action
	for r.Remaining() > 0 {
		start := r.Pos()
		code, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		length, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		typ, err := ActionCodes.Decode(code, v)
		if err != nil {
			return nil, fmt.Errorf("action header at offset %d: %w", start, err)
		}

		if typ == ActExperimenter {
			if length < actionHeaderLen+experimenterLen || length%8 != 0 {
				return nil, enc.Decodef("experimenter action header at offset %d has length %d", start, length)
			}
			body, err := r.Delegate(int(length) - actionHeaderLen)
			if err != nil {
				return nil, err
			}
			a, err := decodeActionBody(body, typ, v)
			if err != nil {
				return nil, err
			}
			ret = append(ret, a)
			continue
		}

		// Some switches send headers padded to 8 bytes.
		if length < actionHeaderLen {
			return nil, enc.Decodef("%s action header at offset %d has length %d", typ, start, length)
		}
		if err := r.Skip(int(length) - actionHeaderLen); err != nil {
			return nil, err
		}
		ret = append(ret, HeaderAction{Type: typ})
	}
	return ret, nil
}

// EncodeActionHeaders appends a capability list. Every entry but experimenter
// ones is written as a bare 4-byte header.
func EncodeActionHeaders(w *enc.Writer, as []Action, v Version) error {
	for _, a := range as {
		if x, ok := a.(ExperimenterAction); ok {
			if len(x.Data)%8 != 0 {
				return fmt.Errorf("ofp: experimenter action header data of %d bytes is not a multiple of 8", len(x.Data))
			}
			if err := EncodeAction(w, x, v); err != nil {
				return err
			}
			continue
		}
		code, err := ActionCodes.Encode(a.ActionType(), v)
		if err != nil {
			return err
		}
		w.WriteU16(code)
		w.WriteU16(actionHeaderLen)
	}
	return nil
}
