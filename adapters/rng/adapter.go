package rng

import (
	"hash/fnv"
	"math/rand"
)

// Adapter implements ports.RNG with streams derived from FNV-1a hashes of
// the stream name mixed with the base seed. Two streams with different
// names never share a sequence, and the same name and seed always
// reproduce the same sequence regardless of how many other streams were
// created in between.
type Adapter struct{}

// New creates a new RNG adapter.
func New() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic generator for a named operation.
func (a *Adapter) SeededStream(name string, seed int64) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(name, seed)))
}

// Stream creates a deterministic generator scoped to one item in a stage.
func (a *Adapter) Stream(stage, itemKey string, baseSeed int64) *rand.Rand {
	return a.SeededStream(stage+"/"+itemKey, baseSeed)
}

func deriveSeed(name string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(uint64(seed) >> (8 * i))
	}
	h.Write(buf[:])
	return int64(h.Sum64())
}
