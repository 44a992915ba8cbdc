// Package sha256 re-exports the SIMD accelerated sha256 used for event id
// hashing.
package sha256

import (
	"github.com/minio/sha256-simd"
)

// Size is the length of a sha256 digest.
const Size = sha256.Size

// Sum256 computes the sha256 digest of b.
func Sum256(b []byte) [Size]byte { return sha256.Sum256(b) }

// New returns a new hash.Hash computing sha256.
var New = sha256.New
