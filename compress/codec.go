package compress

import (
	"fmt"
	"time"

	"github.com/arloliu/crunch/format"
)

// maxPayload is the size of the C64 address space, the largest payload a
// program body can have.
const maxPayload = 1 << 16

// Compressor compresses a whole payload in one call.
//
// Payloads are C64 program bodies, so they never exceed 64 KiB:
//   - Code and data segments are small and full of short repeats
//   - Graphics and tables carry long runs of a single byte
//   - Memory management: the returned slice is owned by the caller and
//     the input slice is not modified
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Example:
//
//	decompressor := NewCrunchCompressor()
//	original, err := decompressor.Decompress(stream)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or truncated
	//   - Returns error if data was compressed with another algorithm
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression of a payload, so that crunch
// can be compared to general purpose codecs.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the data
	CompressionTimeNs int64

	// DecompressionTimeNs is the time taken to decompress the data
	DecompressionTimeNs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// Measure compresses and decompresses data with codec, checks the round
// trip and reports sizes and timings.
//
// Parameters:
//   - algorithm: compression type recorded in the stats
//   - codec: codec to measure
//   - data: payload
//
// Returns:
//   - CompressionStats: sizes and timings of both directions
//   - error: codec error, or a mismatch after the round trip
func Measure(algorithm format.CompressionType, codec Codec, data []byte) (CompressionStats, error) {
	stats := CompressionStats{Algorithm: algorithm, OriginalSize: int64(len(data))}

	begin := time.Now()
	compressed, err := codec.Compress(data)
	if err != nil {
		return stats, fmt.Errorf("%s compression failed: %w", algorithm, err)
	}
	stats.CompressionTimeNs = time.Since(begin).Nanoseconds()
	stats.CompressedSize = int64(len(compressed))

	begin = time.Now()
	decompressed, err := codec.Decompress(compressed)
	if err != nil {
		return stats, fmt.Errorf("%s decompression failed: %w", algorithm, err)
	}
	stats.DecompressionTimeNs = time.Since(begin).Nanoseconds()

	if len(decompressed) != len(data) || string(decompressed) != string(data) {
		return stats, fmt.Errorf("%s round trip mismatch", algorithm)
	}

	return stats, nil
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, LZ4 or Crunch)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Compressor instance for the specified type
//   - error: Invalid compression type error
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionCrunch:
		return NewCrunchCompressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone:   NewNoOpCompressor(),
	format.CompressionZstd:   NewZstdCompressor(),
	format.CompressionS2:     NewS2Compressor(),
	format.CompressionLZ4:    NewLZ4Compressor(),
	format.CompressionCrunch: NewCrunchCompressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
