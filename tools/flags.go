package tools

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/netwire/ofwire/std/log"
	"github.com/netwire/ofwire/std/ofp"
	"github.com/netwire/ofwire/std/utils"
	"github.com/spf13/cobra"
)

type flagDecoder func(mask uint32, v ofp.Version, opts ofp.Options) ([]string, error)

func bitmapDecoder[F interface {
	comparable
	fmt.Stringer
}](b *ofp.FlagBitmap[F]) flagDecoder {
	return func(mask uint32, v ofp.Version, opts ofp.Options) ([]string, error) {
		flags, err := b.DecodeWith(mask, v, opts)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(flags))
		for i, f := range flags {
			names[i] = f.String()
		}
		return names, nil
	}
}

var flagKinds = map[string]flagDecoder{
	"actions":      bitmapDecoder(ofp.ActionFlags),
	"capabilities": bitmapDecoder(ofp.CapabilityFlags),
	"flowmod":      bitmapDecoder(ofp.FlowModFlags),
}

type Flags struct{}

func CmdFlags() *cobra.Command {
	fl := Flags{}

	return &cobra.Command{
		GroupID: "decode",
		Use:     "flags KIND MASK",
		Short:   "Decode a flag bitmap",
		Long: fmt.Sprintf(`Decode a flag bitmap of the given kind.
Kinds: %s.
Bits unknown to the version fail the decode unless --lenient is set.`,
			strings.Join(utils.SortedKeys(flagKinds), ", ")),
		Args:    cobra.ExactArgs(2),
		Example: `  ofwire flags capabilities 0x1ef -p 1.0 --lenient`,
		Run:     fl.run,
	}
}

func (fl *Flags) String() string {
	return "flags"
}

func (fl *Flags) run(_ *cobra.Command, args []string) {
	cfg := Shared.Config()

	mask, err := utils.ParseUint[uint32](args[1])
	if err != nil {
		log.Fatal(fl, "Invalid mask", "err", err)
		return
	}
	if err := DescribeFlags(os.Stdout, args[0], mask, cfg.ProtoVersion(), cfg.Options()); err != nil {
		log.Fatal(fl, "Unable to decode", "kind", args[0], "err", err)
		return
	}
}

// DescribeFlags decodes a flag bitmap and prints the flag names on one line.
func DescribeFlags(w io.Writer, kind string, mask uint32, v ofp.Version, opts ofp.Options) error {
	decode, ok := flagKinds[kind]
	if !ok {
		return fmt.Errorf("unknown flag kind %q", kind)
	}
	names, err := decode(mask, v, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.Join(names, " "))
	return err
}
