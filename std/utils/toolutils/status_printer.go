package toolutils

import (
	"fmt"
	"io"
	"strings"
)

// StatusPrinter prints right-aligned key=value lines.
type StatusPrinter struct {
	File    io.Writer
	Padding int
}

func (s StatusPrinter) Print(key string, value any) {
	fmt.Fprintf(s.File, "%s%s=%v\n", strings.Repeat(" ", max(0, s.Padding-len(key))), key, value)
}

// Section prints a heading followed by an indented printer for its entries.
func (s StatusPrinter) Section(title string) StatusPrinter {
	fmt.Fprintf(s.File, "%s:\n", title)
	return StatusPrinter{File: s.File, Padding: s.Padding + 2}
}
