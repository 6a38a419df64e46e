package bitstream

import (
	"fmt"

	"github.com/arloliu/crunch/errs"
)

// Reader consumes a crunch stream backwards.
//
// The Reader works on a memory image rather than a standalone buffer so that
// the in-place decruncher can read the stream out of the same memory it
// writes to.
type Reader struct {
	mem  []byte
	pos  int
	low  int
	bits byte
	err  error
}

// NewReader returns a reader whose next byte is mem[pos-1]. The accumulator is
// loaded with bits, which is the flushed byte written by Writer.Flush.
//
// Bytes below low are never read; reaching it is reported as a truncated
// stream.
func NewReader(mem []byte, pos, low int, bits byte) *Reader {
	return &Reader{mem: mem, pos: pos, low: low, bits: bits}
}

// ReadByte reads the byte before the current position.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.pos <= r.low || r.pos > len(r.mem) {
		r.err = fmt.Errorf("%w: read past stream start at $%04x", errs.ErrInvalidStream, r.pos)
		return 0, r.err
	}
	r.pos--

	return r.mem[r.pos], nil
}

// ReadBit reads one bit from the accumulator, refilling it from the stream
// when it runs dry.
func (r *Reader) ReadBit() (int, error) {
	carry := r.bits & 1
	r.bits >>= 1
	if r.bits == 0 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		carry = b & 1
		r.bits = 0x80 | b>>1
	}

	return int(carry), nil
}

// ReadBits reads count bits, first bit read as the most significant.
func (r *Reader) ReadBits(count int) (int, error) {
	v := 0
	for range count {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | b
	}

	return v, nil
}

// Pos returns the address of the last byte read. Unread stream bytes all lie
// below it.
func (r *Reader) Pos() int {
	return r.pos
}
