// Package sfx assembles the self-extracting C64 decruncher around a crunch
// stream.
//
// The image is built inside the writer window that already holds the
// stream, at the addresses it will occupy once loaded:
//
//	$07FF          stage 1 (PRG load address, BASIC SYS line, boot copy)
//	$081D          stream, relocated down to its safe load address
//	stream end     stage 2, the decruncher
//	               stage 3 and the saved stream head, when needed
//
// The stream is placed right after stage 1 unless the overlap margin of the
// stream forces it lower. In that case the head of the stream, which stage 1
// overwrites, is saved after stage 3 and copied back before decrunching.
package sfx

import (
	"fmt"

	"github.com/arloliu/crunch/bitstream"
	"github.com/arloliu/crunch/endian"
	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/internal/pool"
)

// Layout describes where Assemble placed each part of the image. Addresses
// are C64 addresses; Stage3Begin and Stage3End are zero without stage 3.
type Layout struct {
	Stage2Begin int
	Stage3Begin int
	Stage3End   int
	NewLoad     int // address of the first stream byte
	CopyLen     int // stream bytes saved after stage 3
	End         int // first address past the image
}

// HasStage3 reports whether the image carries the tail copy stage.
func (l *Layout) HasStage3() bool {
	return l.CopyLen > 0
}

// Assemble turns the stream held in w at [0, streamLen) into a runnable
// image. w is left with Start at Stage1Begin and Pos at the end of the
// image, so w.Bytes() is the PRG file.
//
// safeLoad is the highest address the stream may start at without being
// overwritten before it is read. start is the address jumped to once the
// data is decrunched.
func Assemble(w *bitstream.Writer, streamLen, safeLoad, start int) (*Layout, error) {
	if safeLoad < MinLoad {
		return nil, fmt.Errorf("%w: safe load $%04x, minimum $%04x", errs.ErrLoadTooLow, safeLoad, MinLoad)
	}

	newLoad := min(Stage1End, safeLoad)
	copyLen := Stage1End - newLoad
	// stage 1 copies the stream trailer and stage 2 out of the image
	if newLoad+streamLen-3 < Stage1End {
		return nil, fmt.Errorf("%w: %d bytes at $%04x end under stage 1", errs.ErrStreamTooShort, streamLen, newLoad)
	}
	end := newLoad + streamLen + stage2Len
	if copyLen > stage3ShortLimit {
		end += len(stage3Long) - 3 + copyLen
	} else if copyLen > 0 {
		end += len(stage3Short) - 3 + copyLen
	}
	if end > pool.WindowSize {
		return nil, fmt.Errorf("%w: image ends at $%05x", errs.ErrRelocationOverflow, end)
	}

	l := &Layout{NewLoad: newLoad, CopyLen: copyLen}

	w.SetStart(Stage1Begin)
	w.SetPos(newLoad)
	w.CopyBytes(0, streamLen)

	l.Stage2Begin = w.Pos()
	_, _ = w.Write(stage2[:])

	if l.HasStage3() {
		// stage 3 replaces the final JMP of stage 2
		l.Stage3Begin = w.Pos() - 3
		w.SetPos(l.Stage3Begin)
		if copyLen > stage3ShortLimit {
			_, _ = w.Write(stage3Long[:])
		} else {
			_, _ = w.Write(stage3Short[:])
		}
		l.Stage3End = w.Pos()
		w.CopyBytes(Stage1End-copyLen, copyLen)
	}
	l.End = w.Pos()

	w.SetPos(Stage1Begin)
	_, _ = w.Write(stage1[:])

	patchWord(w, Stage1Begin+stage1CopySrc, l.Stage2Begin-4)
	patchWord(w, Stage1Begin+stage1JmpStage2, l.Stage2Begin+decompEntry)
	patchWord(w, l.Stage2Begin+stage2GetByte, l.Stage2Begin-3)
	patchWord(w, l.Stage2Begin+stage2Start, start)

	switch {
	case copyLen > stage3ShortLimit:
		patchByte(w, l.Stage2Begin+stage2CopyLenLo, copyLen&0xff)
		patchByte(w, l.Stage3Begin+stage3LongCopyLenHi, copyLen>>8)
		patchWord(w, l.Stage3Begin+stage3LongDecSrcHi, l.Stage3Begin+stage3LongCopySrc+1)
		patchWord(w, l.Stage3Begin+stage3LongDecDestHi, l.Stage3Begin+stage3LongCopyDest+1)
		patchWord(w, l.Stage3Begin+stage3LongCopySrc, l.Stage3End+(copyLen&0xff00))
		patchWord(w, l.Stage3Begin+stage3LongCopyDest, Stage1End-(copyLen&0xff))
	case copyLen > 0:
		// the Y loop counts down to 0, so every length but 256 starts one
		// byte lower
		adjust := 0
		if copyLen != stage3ShortLimit {
			adjust = 1
		}
		patchByte(w, l.Stage2Begin+stage2CopyLenLo, copyLen)
		patchWord(w, l.Stage3Begin+stage3ShortCopySrc, l.Stage3End-adjust)
		patchWord(w, l.Stage3Begin+stage3ShortCopyDest, Stage1End-copyLen-adjust)
	}

	w.SetPos(l.End)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRelocationOverflow, err)
	}

	return l, nil
}

func patchWord(w *bitstream.Writer, addr, v int) {
	w.SetPos(addr)
	w.Word(uint16(v))
}

func patchByte(w *bitstream.Writer, addr, v int) {
	w.SetPos(addr)
	w.Byte(byte(v))
}

// PatchLineNumber sets the line number of the BASIC SYS line of image.
func PatchLineNumber(image []byte, n int) error {
	if len(image) < stage1Len {
		return fmt.Errorf("%w: %d bytes", errs.ErrInvalidImage, len(image))
	}
	if n < 0 || n > 63999 {
		return fmt.Errorf("%w: line number %d", errs.ErrInvalidOption, n)
	}
	endian.PutWord(image, stage1LineNumber, uint16(n))

	return nil
}

// LineNumber returns the line number of the BASIC SYS line of image.
func LineNumber(image []byte) (int, error) {
	if len(image) < stage1Len {
		return 0, fmt.Errorf("%w: %d bytes", errs.ErrInvalidImage, len(image))
	}

	return int(endian.Word(image, stage1LineNumber)), nil
}
