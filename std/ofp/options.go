package ofp

// Options controls how decoders treat input that a version does not define.
type Options struct {
	// Strict rejects flag bits unknown to the version with ErrVersionMismatch.
	// Otherwise such bits are dropped and only the known flags are returned.
	Strict bool
}

var defaultOptions = Options{Strict: true}

// DefaultOptions returns the options used by decoders that are not given any.
func DefaultOptions() Options {
	return defaultOptions
}

// SetDefaultStrict sets the default parse mode and returns the previous one.
//
// The default is package state and is not safe to change while other
// goroutines decode. Set it once at startup, or save and restore it around
// a test:
//
//	defer ofp.SetDefaultStrict(ofp.SetDefaultStrict(false))
func SetDefaultStrict(strict bool) (prev bool) {
	prev = defaultOptions.Strict
	defaultOptions.Strict = strict
	return prev
}
