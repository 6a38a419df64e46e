// Package errs defines the sentinel errors returned by crunch and its sub-packages.
//
// Callers should compare with errors.Is, since most errors are wrapped with
// additional context before they are returned.
package errs

import "errors"

// Compression errors.
var (
	// ErrInputTooLarge is returned when the input buffer exceeds 64 KiB.
	ErrInputTooLarge = errors.New("input exceeds 65536 bytes")
	// ErrBadLength is returned when a zero-length match reaches the cost function.
	ErrBadLength = errors.New("match with zero length")
	// ErrSearchExhausted is returned when no parse reaches the start of the buffer.
	ErrSearchExhausted = errors.New("no path to the end of the buffer")
	// ErrUnencodable is returned when a value has no interval in the cost model.
	ErrUnencodable = errors.New("value outside of the interval code")
	// ErrOutputOverflow is returned when the 64 KiB output buffer is exhausted.
	ErrOutputOverflow = errors.New("output buffer overflow")
	// ErrInvalidOption is returned when an option carries an out of range value.
	ErrInvalidOption = errors.New("invalid option")
)

// Decompressor layout errors.
var (
	// ErrLoadTooLow is returned when the safe load address is below the decruncher minimum.
	ErrLoadTooLow = errors.New("load address below decruncher minimum")
	// ErrRelocationOverflow is returned when the assembled image does not fit the address space.
	ErrRelocationOverflow = errors.New("image does not fit the address space")
	// ErrStreamTooShort is returned when a relocated stream is too short to
	// reach past stage 1, which would overwrite its trailer before it is read.
	ErrStreamTooShort = errors.New("stream too short to relocate under the decruncher")
)

// Decoding errors.
var (
	// ErrInvalidStream is returned when a compressed stream is truncated or malformed.
	ErrInvalidStream = errors.New("invalid compressed stream")
	// ErrInvalidImage is returned when a self-extracting image cannot be recognised.
	ErrInvalidImage = errors.New("invalid self-extracting image")
	// ErrOverlap is returned when in-place decompression would overwrite unread input.
	ErrOverlap = errors.New("write cursor passed read cursor")
	// ErrVerifyFailed is returned when an image does not unpack to its input.
	ErrVerifyFailed = errors.New("verification failed")
)
