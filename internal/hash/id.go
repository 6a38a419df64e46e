package hash

import "github.com/cespare/xxhash/v2"

// SumParts computes the xxHash64 of the concatenation of parts without
// copying them into one buffer. The compressor hashes a program as its load
// address followed by its body, both in statistics and when verifying an
// unpacked image.
func SumParts(parts ...[]byte) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.Write(p)
	}

	return d.Sum64()
}
