// Package crunch is an optimal-parse LZ compressor producing self-extracting
// Commodore 64 programs.
//
// The compressor finds, for a whole buffer, the tiling into literals and
// back-references with the fewest bits under an adaptive interval code, then
// wraps the resulting stream in a 6502 decruncher that restores the data in
// place and jumps to it.
//
// # Core Features
//
//   - Exhaustive backward shortest-path parse over every candidate match
//   - Interval codes for lengths and offsets, re-fitted until the parse cost stops improving
//   - Offset classes for length 1, length 2 and longer sequences
//   - Dedicated handling of byte runs (offset 1 sequences)
//   - In-place decrunching with a computed safety margin
//   - Self-extracting PRG output with a BASIC SYS line
//
// # Basic Usage
//
// Crunching a program loaded at $0801 that starts at $080d:
//
//	import "github.com/arloliu/crunch"
//
//	image, err := crunch.Compress(body, 0x0801, 0x080d)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("game.prg", image, 0o644)
//
// Producing a bare stream and decoding it again:
//
//	stream, _ := crunch.Encode(data, 0xc000)
//	out, load, _ := decrunch.DecodeStream(stream.Data)
//
// Tuning the compressor:
//
//	c, _ := crunch.NewCompressor(
//	    crunch.WithMaxPasses(4),
//	    crunch.WithVerify(true),
//	    crunch.WithLogger(slog.Default()),
//	)
//	res, _ := c.Compress(body, 0x0801, 0x080d)
//	fmt.Println(res.Stats.Passes, res.Stats.ImageSize)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around Compressor.
// The sfx package assembles the decruncher, decrunch decodes streams and
// images in software, and compress exposes crunch next to general purpose
// codecs under a common interface.
package crunch

// Compress crunches src into a self-extracting image.
//
// Parameters:
//   - src: program body, without the PRG load address
//   - load: address src loads at
//   - start: address jumped to after decrunching
//   - opts: compressor options
//
// Returns:
//   - []byte: PRG file, load address included
//   - error: any error from option validation or compression
func Compress(src []byte, load, start uint16, opts ...Option) ([]byte, error) {
	c, err := NewCompressor(opts...)
	if err != nil {
		return nil, err
	}
	r, err := c.Compress(src, load, start)
	if err != nil {
		return nil, err
	}

	return r.Image, nil
}

// Encode crunches src into a bare stream that decrunches to load.
func Encode(src []byte, load uint16, opts ...Option) (*Stream, error) {
	c, err := NewCompressor(opts...)
	if err != nil {
		return nil, err
	}

	return c.Encode(src, load)
}
