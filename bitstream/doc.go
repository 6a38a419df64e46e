// Package bitstream implements the bit-level writer and reader of the crunch
// stream format.
//
// The Writer packs bits into a sentinel-topped accumulator: the accumulator
// starts at 1, each bit is shifted in at the bottom, and a byte is emitted as
// soon as the sentinel reaches bit 8. Raw bytes (literals, words, stub code)
// are written straight into the output between those bit bytes, so a stream
// interleaves both kinds of bytes.
//
// The stream is meant to be consumed backwards. The Reader starts at the end of
// a stream and mirrors the 6502 decruncher: bytes are fetched with a
// pre-decrement, bits come out of the accumulator lowest first and the
// accumulator is refilled lazily, only when a bit is needed and none is left.
// The net effect is that the Reader returns bits and bytes in exactly the
// reverse of the order the Writer produced them.
//
// # Shared window
//
// A Writer owns one 64 KiB window borrowed from internal/pool. The compressed
// stream and the decruncher stages are assembled inside the same window, with
// CopyBytes relocating data in place. The window is the whole 6502 address
// space, so writer positions are also C64 addresses.
package bitstream
