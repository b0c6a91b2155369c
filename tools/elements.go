package tools

import (
	"fmt"
	"io"
	"os"

	enc "github.com/netwire/ofwire/std/encoding"
	"github.com/netwire/ofwire/std/log"
	"github.com/netwire/ofwire/std/ofp"
	"github.com/netwire/ofwire/std/utils/toolutils"
	"github.com/spf13/cobra"
)

// ElementKind is a list of protocol elements the CLI can decode.
type ElementKind string

const (
	ElemActions      ElementKind = "action"
	ElemInstructions ElementKind = "instruction"
	ElemMatch        ElementKind = "match"
)

type Elements struct {
	kind    ElementKind
	headers bool
}

func CmdElements() []*cobra.Command {
	return []*cobra.Command{
		cmdElements(ElemActions, "Decode a list of actions", true),
		cmdElements(ElemInstructions, "Decode a list of instructions", true),
		cmdElements(ElemMatch, "Decode an OXM match structure", false),
	}
}

func cmdElements(kind ElementKind, short string, hasHeaders bool) *cobra.Command {
	el := Elements{kind: kind}

	cmd := &cobra.Command{
		GroupID: "decode",
		Use:     string(kind) + " HEX...",
		Short:   short,
		Args:    cobra.MinimumNArgs(1),
		Example: fmt.Sprintf("  ofwire %s -p 1.3 00000010000000010000ffff00000000", kind),
		Run:     el.run,
	}

	if hasHeaders {
		cmd.Flags().BoolVar(&el.headers, "headers", false, "Decode a capability list of bodiless headers")
	}
	return cmd
}

func (el *Elements) String() string {
	return string(el.kind)
}

func (el *Elements) run(_ *cobra.Command, args []string) {
	cfg := Shared.Config()
	v := cfg.ProtoVersion()
	st := Shared.Stats()

	failed := 0
	for _, arg := range args {
		data, err := toolutils.ReadHex(arg)
		if err != nil {
			log.Fatal(el, "Invalid input", "err", err)
			return
		}
		st.Input("hex", len(data))

		if len(args) > 1 {
			fmt.Printf("# %s\n", arg)
		}
		err = DescribeElements(os.Stdout, el.kind, data, v, el.headers)
		st.Element(string(el.kind), v.String(), err)
		if err != nil {
			log.Error(el, "Unable to decode", "version", v, "err", err)
			failed++
		}
	}

	if len(args) > 1 && cfg.Stats.Enabled {
		printSamples(os.Stdout, st)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// DescribeElements decodes a list of elements and prints one per line.
func DescribeElements(w io.Writer, kind ElementKind, data []byte, v ofp.Version, headers bool) error {
	r := enc.NewReader(data)
	var lines []string

	switch kind {
	case ElemActions:
		decode := ofp.DecodeActions
		if headers {
			decode = ofp.DecodeActionHeaders
		}
		as, err := decode(r, v)
		if err != nil {
			return err
		}
		for _, a := range as {
			lines = append(lines, ofp.ActionString(a))
		}

	case ElemInstructions:
		decode := ofp.DecodeInstructions
		if headers {
			decode = ofp.DecodeInstructionHeaders
		}
		is, err := decode(r, v)
		if err != nil {
			return err
		}
		for _, i := range is {
			lines = append(lines, ofp.InstructionString(i))
		}

	case ElemMatch:
		fields, err := ofp.DecodeMatch(r, v)
		if err != nil {
			return err
		}
		if err := r.CheckEOF(); err != nil {
			return err
		}
		for _, f := range fields {
			lines = append(lines, f.String())
		}

	default:
		return fmt.Errorf("unknown element kind %q", kind)
	}

	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
