package bitstream

import (
	"fmt"

	"github.com/arloliu/crunch/endian"
	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/internal/pool"
)

// Writer appends bits and bytes to a 64 KiB window.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	bitbuf  uint32 // pending bits topped by a sentinel bit
	pos     int
	start   int
	buf     *pool.Window
	release func()
	err     error
}

// NewWriter borrows a zeroed window from the pool and returns a writer
// positioned at zero.
//
// Call Release when the writer is no longer needed.
func NewWriter() *Writer {
	buf, release := pool.GetWindow()

	return &Writer{
		bitbuf:  1,
		buf:     buf,
		release: release,
	}
}

// Release returns the window to the pool. The writer and any slice obtained
// from Bytes must not be used afterwards.
func (w *Writer) Release() {
	if w.release != nil {
		w.release()
		w.release = nil
		w.buf = nil
	}
}

// Bit writes a single bit.
func (w *Writer) Bit(v bool) {
	if v {
		w.bit(1)
	} else {
		w.bit(0)
	}
}

// Bits writes the count lowest bits of value, lowest bit first.
func (w *Writer) Bits(count int, value int) {
	for range count {
		w.bit(uint32(value) & 1)
		value >>= 1
	}
}

// Gamma writes the unary code of code: a one bit followed by code zero bits.
//
// Read backwards, the code appears as code zero bits terminated by a one bit.
func (w *Writer) Gamma(code int) {
	w.bit(1)
	for range code {
		w.bit(0)
	}
}

// Flush writes the pending bits together with their sentinel bit and resets
// the accumulator. The sentinel tells the reader where the valid bits end.
func (w *Writer) Flush() {
	w.Byte(byte(w.bitbuf & 0xff))
	w.bitbuf = 1
}

// Byte writes one raw byte at the current position.
func (w *Writer) Byte(b byte) {
	if w.pos >= pool.WindowSize {
		w.fail(w.pos)
		return
	}
	w.buf[w.pos] = b
	w.pos++
}

// Word writes v as a little-endian 16-bit word.
func (w *Writer) Word(v uint16) {
	w.Byte(endian.Lo(v))
	w.Byte(endian.Hi(v))
}

// Write writes p as raw bytes. It always reports len(p) unless the window
// overflows, in which case the sticky error is returned.
func (w *Writer) Write(p []byte) (int, error) {
	for _, b := range p {
		w.Byte(b)
	}
	if w.err != nil {
		return 0, w.err
	}

	return len(p), nil
}

// CopyBytes copies n bytes starting at window offset src to the current
// position and advances past them.
//
// Source and destination may overlap in either direction; the copy behaves
// like memmove, which is what in-place relocation of the stream relies on.
func (w *Writer) CopyBytes(src, n int) {
	if n <= 0 {
		return
	}
	if src < 0 || src+n > pool.WindowSize {
		w.fail(src + n)
		return
	}
	if w.pos+n > pool.WindowSize {
		w.fail(w.pos + n)
		return
	}
	copy(w.buf[w.pos:w.pos+n], w.buf[src:src+n])
	w.pos += n
}

// Pos returns the current write position.
func (w *Writer) Pos() int {
	return w.pos
}

// SetPos moves the write position. Positions past the window are recorded as
// an overflow.
func (w *Writer) SetPos(pos int) {
	if pos < 0 || pos > pool.WindowSize {
		w.fail(pos)
		return
	}
	w.pos = pos
}

// Start returns the first window offset reported by Bytes.
func (w *Writer) Start() int {
	return w.start
}

// SetStart sets the first window offset reported by Bytes.
func (w *Writer) SetStart(start int) {
	if start < 0 || start > pool.WindowSize {
		w.fail(start)
		return
	}
	w.start = start
}

// Bytes returns the window contents between Start and Pos.
//
// The slice aliases the window; clone it to keep it past Release or further
// writes.
func (w *Writer) Bytes() []byte {
	if w.pos < w.start {
		return nil
	}

	return w.buf[w.start:w.pos]
}

// Len returns the number of bytes between Start and Pos.
func (w *Writer) Len() int {
	return max(w.pos-w.start, 0)
}

// Err returns the first overflow recorded by the writer, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) bit(b uint32) {
	w.bitbuf = w.bitbuf<<1 | b
	if w.bitbuf&0x100 != 0 {
		w.Byte(byte(w.bitbuf & 0xff))
		w.bitbuf = 1
	}
}

func (w *Writer) fail(pos int) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: position $%05x", errs.ErrOutputOverflow, pos)
	}
}
