package utils

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Version of ofwire from source control, set at link time.
var Version string = "unknown"

// If is the ternary operator (eager evaluation)
func If[T any](cond bool, t, f T) T {
	if cond {
		return t
	} else {
		return f
	}
}

// ParseUint parses a decimal, 0x-hex or 0b-binary number that must fit T.
func ParseUint[T constraints.Unsigned](s string) (T, error) {
	s = strings.ReplaceAll(s, "_", "")
	bits := 0
	for x := ^T(0); x != 0; x >>= 1 {
		bits++
	}
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %d-bit number %q", bits, s)
	}
	return T(v), nil
}

// SortedKeys returns the keys of a map in increasing order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
