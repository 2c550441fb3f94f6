package census

import "errors"

// Sentinel errors.
var (
	// ErrNilContext indicates WaitUntil was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrUnknownConfigKey indicates a configuration block holds a key
	// FromConfig does not recognize.
	ErrUnknownConfigKey = errors.New("unknown configuration key")

	// ErrNegativeCompactionRatio indicates a configured compaction ratio
	// below zero.
	ErrNegativeCompactionRatio = errors.New("compaction ratio must not be negative")
)
