package ofp

import (
	"fmt"

	enc "github.com/netwire/ofwire/std/encoding"
)

// InstructionType is the logical kind of an instruction.
type InstructionType uint8

const (
	InstGotoTable InstructionType = iota + 1
	InstWriteMetadata
	InstWriteActions
	InstApplyActions
	InstClearActions
	InstMeter
	InstExperimenter
)

var instructionNames = map[InstructionType]string{
	InstGotoTable:     "goto_table",
	InstWriteMetadata: "write_metadata",
	InstWriteActions:  "write_actions",
	InstApplyActions:  "apply_actions",
	InstClearActions:  "clear_actions",
	InstMeter:         "meter",
	InstExperimenter:  "experimenter",
}

func (t InstructionType) String() string {
	if s, ok := instructionNames[t]; ok {
		return s
	}
	return fmt.Sprintf("instruction(%d)", uint8(t))
}

// InstructionCodes holds the OFPIT_* codes. Instructions do not exist in 1.0.
var InstructionCodes = newCodeTable[InstructionType]("instruction").
	add(InstGotoTable, 1, since(V1_1)...).
	add(InstWriteMetadata, 2, since(V1_1)...).
	add(InstWriteActions, 3, since(V1_1)...).
	add(InstApplyActions, 4, since(V1_1)...).
	add(InstClearActions, 5, since(V1_1)...).
	add(InstMeter, 6, V1_3).
	experimenter(InstExperimenter, 0xffff)

// Instruction is one of the instruction structs of this package.
type Instruction interface {
	InstructionType() InstructionType
}

type GotoTable struct {
	Table uint8
}

func (GotoTable) InstructionType() InstructionType { return InstGotoTable }

type WriteMetadata struct {
	Metadata uint64
	Mask     uint64
}

func (WriteMetadata) InstructionType() InstructionType { return InstWriteMetadata }

// ActionsInstruction is write_actions, apply_actions or clear_actions.
// clear_actions never carries actions.
type ActionsInstruction struct {
	Type    InstructionType
	Actions []Action
}

func (i ActionsInstruction) InstructionType() InstructionType { return i.Type }

type MeterInstruction struct {
	Meter uint32
}

func (MeterInstruction) InstructionType() InstructionType { return InstMeter }

// ExperimenterInstruction carries a vendor payload whose length is a multiple of 8.
type ExperimenterInstruction struct {
	Experimenter uint32
	Data         []byte
}

func (ExperimenterInstruction) InstructionType() InstructionType { return InstExperimenter }

// InstructionHeader is a bodiless entry of a capability list.
type InstructionHeader struct {
	Type InstructionType
}

func (i InstructionHeader) InstructionType() InstructionType { return i.Type }

func checkInstructionVersion(v Version) error {
	if err := v.check(); err != nil {
		return err
	}
	if v == V1_0 {
		return mismatch(v, "instructions are not defined")
	}
	return nil
}

// DecodeInstruction decodes one instruction and its nested actions.
func DecodeInstruction(r *enc.Reader, v Version) (Instruction, error) {
	if err := checkInstructionVersion(v); err != nil {
		return nil, err
	}
	start := r.Pos()
	code, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	length, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	typ, err := InstructionCodes.Decode(code, v)
	if err != nil {
		return nil, fmt.Errorf("instruction at offset %d: %w", start, err)
	}
	if length < 8 {
		return nil, enc.Decodef("%s instruction at offset %d declares length %d", typ, start, length)
	}
	body, err := r.Delegate(int(length) - 4)
	if err != nil {
		return nil, fmt.Errorf("%s instruction at offset %d: %w", typ, start, err)
	}

	inst, err := decodeInstructionBody(body, typ, v)
	if err == nil {
		err = body.CheckEOF()
	}
	if err != nil {
		return nil, fmt.Errorf("%s instruction at offset %d: %w", typ, start, err)
	}
	return inst, nil
}

func decodeInstructionBody(r *enc.Reader, typ InstructionType, v Version) (Instruction, error) {
	switch typ {
	case InstGotoTable:
		t, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		return GotoTable{Table: t}, r.Skip(3)

	case InstWriteMetadata:
		if err := r.Skip(4); err != nil {
			return nil, err
		}
		var i WriteMetadata
		var err error
		if i.Metadata, err = r.ReadU64(); err != nil {
			return nil, err
		}
		i.Mask, err = r.ReadU64()
		return i, err

	case InstWriteActions, InstApplyActions, InstClearActions:
		if err := r.Skip(4); err != nil {
			return nil, err
		}
		as, err := DecodeActions(r, v)
		if err != nil {
			return nil, err
		}
		if typ == InstClearActions && len(as) > 0 {
			return nil, enc.Decodef("clear_actions carries %d actions", len(as))
		}
		return ActionsInstruction{Type: typ, Actions: as}, nil

	case InstMeter:
		m, err := r.ReadU32()
		return MeterInstruction{Meter: m}, err

	case InstExperimenter:
		id, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if r.Remaining()%8 != 0 {
			return nil, enc.Decodef("experimenter data of %d bytes is not a multiple of 8", r.Remaining())
		}
		data, err := r.ReadBuf(r.Remaining())
		return ExperimenterInstruction{Experimenter: id, Data: data}, err

	default:
		return nil, enc.Decodef("no body layout for %s", typ)
	}
}

// EncodeInstruction appends one instruction.
func EncodeInstruction(w *enc.Writer, inst Instruction, v Version) error {
	if err := checkInstructionVersion(v); err != nil {
		return err
	}
	typ := inst.InstructionType()
	code, err := InstructionCodes.Encode(typ, v)
	if err != nil {
		return err
	}
	start := w.Len()
	w.WriteU16(code)
	w.WriteU16(0)

	switch i := inst.(type) {
	case GotoTable:
		w.WriteU8(i.Table)
		w.Pad(3)
	case WriteMetadata:
		w.Pad(4)
		w.WriteU64(i.Metadata)
		w.WriteU64(i.Mask)
	case ActionsInstruction:
		if typ != InstWriteActions && typ != InstApplyActions && typ != InstClearActions {
			return fmt.Errorf("ofp: %s is not an action list instruction", typ)
		}
		if typ == InstClearActions && len(i.Actions) > 0 {
			return fmt.Errorf("ofp: clear_actions cannot carry actions")
		}
		w.Pad(4)
		if err := EncodeActions(w, i.Actions, v); err != nil {
			return fmt.Errorf("%s instruction: %w", typ, err)
		}
	case MeterInstruction:
		w.WriteU32(i.Meter)
	case ExperimenterInstruction:
		if len(i.Data)%8 != 0 {
			return fmt.Errorf("ofp: experimenter instruction data of %d bytes is not a multiple of 8", len(i.Data))
		}
		w.WriteU32(i.Experimenter)
		w.Write(i.Data)
	default:
		return fmt.Errorf("ofp: unsupported instruction %T", inst)
	}

	if err := w.PatchLen16(start+2, start); err != nil {
		return fmt.Errorf("%s instruction: %w", typ, err)
	}
	return nil
}

// DecodeInstructions decodes instructions until the reader is exhausted.
func DecodeInstructions(r *enc.Reader, v Version) ([]Instruction, error) {
	var ret []Instruction
	for r.Remaining() > 0 {
		inst, err := DecodeInstruction(r, v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, inst)
	}
	return ret, nil
}

// EncodeInstructions appends a list of instructions.
func EncodeInstructions(w *enc.Writer, is []Instruction, v Version) error {
	for _, inst := range is {
		if err := EncodeInstruction(w, inst, v); err != nil {
			return err
		}
	}
	return nil
}

// ParseInstructions decodes an instruction list occupying all of buf.
func ParseInstructions(buf []byte, v Version) ([]Instruction, error) {
	return DecodeInstructions(enc.NewReader(buf), v)
}

// DecodeInstructionHeaders decodes a capability list of instruction headers.
func DecodeInstructionHeaders(r *enc.Reader, v Version) ([]Instruction, error) {
	if err := checkInstructionVersion(v); err != nil {
		return nil, err
	}
	var ret []Instruction
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
		typ, err := InstructionCodes.Decode(code, v)
		if err != nil {
			return nil, fmt.Errorf("instruction header at offset %d: %w", start, err)
		}

		if typ == InstExperimenter {
			if length < 8 || length%8 != 0 {
				return nil, enc.Decodef("experimenter instruction header at offset %d has length %d", start, length)
			}
			body, err := r.Delegate(int(length) - 4)
			if err != nil {
				return nil, err
			}
			inst, err := decodeInstructionBody(body, typ, v)
			if err != nil {
				return nil, err
			}
			ret = append(ret, inst)
			continue
		}

		if length < 4 {
			return nil, enc.Decodef("%s instruction header at offset %d has length %d", typ, start, length)
		}
		if err := r.Skip(int(length) - 4); err != nil {
			return nil, err
		}
		ret = append(ret, InstructionHeader{Type: typ})
	}
	return ret, nil
}

// EncodeInstructionHeaders appends a capability list of 4-byte headers.
// Experimenter entries keep their id and data.
func EncodeInstructionHeaders(w *enc.Writer, is []Instruction, v Version) error {
	if err := checkInstructionVersion(v); err != nil {
		return err
	}
	for _, inst := range is {
		if x, ok := inst.(ExperimenterInstruction); ok {
			if err := EncodeInstruction(w, x, v); err != nil {
				return err
			}
			continue
		}
		code, err := InstructionCodes.Encode(inst.InstructionType(), v)
		if err != nil {
			return err
		}
		w.WriteU16(code)
		w.WriteU16(4)
	}
	return nil
}

// InstructionString formats an instruction for display.
func InstructionString(inst Instruction) string {
	switch i := inst.(type) {
	case GotoTable:
		return fmt.Sprintf("goto_table:%d", i.Table)
	case WriteMetadata:
		return fmt.Sprintf("write_metadata:0x%x/0x%x", i.Metadata, i.Mask)
	case ActionsInstruction:
		s := i.Type.String() + "("
		for n, a := range i.Actions {
			if n > 0 {
				s += ","
			}
			s += ActionString(a)
		}
		return s + ")"
	case MeterInstruction:
		return fmt.Sprintf("meter:%d", i.Meter)
	case ExperimenterInstruction:
		return fmt.Sprintf("experimenter:0x%08x:%x", i.Experimenter, i.Data)
	case InstructionHeader:
		return i.Type.String()
	default:
		return fmt.Sprintf("%v", inst)
	}
}
