package compress

// ZstdCompressor provides Zstandard compression, the strongest general
// purpose baseline crunch is compared against.
//
// The pure Go encoder from klauspost/compress is used by default. Building
// with cgo and the gozstd tag switches to the reference C library.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
