// Package atomic supplies the lock-free value types used for per-connection
// state, built on go.uber.org/atomic with a byte-slice addition.
package atomic

import (
	uatomic "go.uber.org/atomic"
)

type (
	// String - go.uber.org/atomic.String
	String = uatomic.String
)

// Bytes is an atomically replaceable byte slice. The stored slice must be
// treated as immutable by all readers.
type Bytes struct {
	v uatomic.Value
}

// Load returns the stored slice, or nil if nothing has been stored.
func (b *Bytes) Load() []byte {
	if x, ok := b.v.Load().([]byte); ok {
		return x
	}
	return nil
}

// Store replaces the stored slice.
func (b *Bytes) Store(x []byte) {
	if x == nil {
		x = []byte{}
	}
	b.v.Store(x)
}
