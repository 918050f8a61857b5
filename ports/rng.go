package ports

import "math/rand"

// RNG provides seeded random number generation for deterministic
// operations. The bootstrap test and the copy generator must produce
// identical output for identical inputs and seeds, so no component may
// reach for ambient global randomness.
type RNG interface {
	// SeededStream creates a deterministic generator for a named
	// operation. The same (name, seed) pair always yields a stream
	// producing the same sequence.
	SeededStream(name string, seed int64) *rand.Rand

	// Stream creates a deterministic generator scoped to one item
	// within a stage. Deriving a stream per item keeps results
	// reproducible even when items are processed concurrently.
	Stream(stage, itemKey string, baseSeed int64) *rand.Rand
}
