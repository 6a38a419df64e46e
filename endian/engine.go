// Package endian provides the byte order used for addresses and lengths in
// crunch streams and decruncher templates.
//
// The 6502 stores 16-bit words low byte first, so every word written into a
// stream or patched into a stub goes through the little-endian engine. The
// EndianEngine interface combines binary.ByteOrder and binary.AppendByteOrder
// so the same value can be patched in place or appended.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint16(image[19:], stage2Begin-4)
//	addr := endian.Word(image, 19)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used by the 6502.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// Word reads the 16-bit little-endian word at buf[off:off+2].
//
// It panics if the slice is too short, like the encoding/binary accessors.
func Word(buf []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(buf[off : off+2])
}

// PutWord writes v as a 16-bit little-endian word at buf[off:off+2].
func PutWord(buf []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:off+2], v)
}

// Lo returns the low byte of a 16-bit address.
func Lo(v uint16) byte {
	return byte(v & 0xff)
}

// Hi returns the high byte of a 16-bit address.
func Hi(v uint16) byte {
	return byte(v >> 8)
}
