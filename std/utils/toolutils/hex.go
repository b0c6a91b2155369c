package toolutils

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadHex decodes a hex argument, ignoring whitespace, colons and an 0x prefix.
// The argument "-" reads the hex text from stdin.
func ReadHex(arg string) ([]byte, error) {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		arg = string(b)
	}

	arg = strings.TrimPrefix(strings.TrimSpace(arg), "0x")
	arg = strings.NewReplacer(" ", "", "\n", "", "\r", "", "\t", "", ":", "").Replace(arg)
	b, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}
