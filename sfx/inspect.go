package sfx

import (
	"bytes"
	"fmt"

	"github.com/arloliu/crunch/endian"
	"github.com/arloliu/crunch/errs"
)

// Header is the layout of an assembled image, recovered from its bytes.
type Header struct {
	Layout
	Start      uint16
	LineNumber int
}

// Inspect recovers the layout of an image produced by Assemble.
func Inspect(image []byte) (*Header, error) {
	if len(image) < stage1Len {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInvalidImage, len(image))
	}
	if !bytes.Equal(image[:stage1LineNumber], stage1[:stage1LineNumber]) ||
		!bytes.Equal(image[stage1LineNumber+2:stage1CopySrc], stage1[stage1LineNumber+2:stage1CopySrc]) ||
		!bytes.Equal(image[stage1CopySrc+2:stage1JmpStage2], stage1[stage1CopySrc+2:stage1JmpStage2]) {
		return nil, fmt.Errorf("%w: unknown boot code", errs.ErrInvalidImage)
	}

	end := Stage1Begin + len(image)
	at := func(addr int) int { return addr - Stage1Begin }

	h := &Header{LineNumber: int(endian.Word(image, stage1LineNumber))}
	h.End = end
	h.Stage2Begin = int(endian.Word(image, stage1CopySrc)) + 4
	if h.Stage2Begin-3 < Stage1End || h.Stage2Begin+stage2Len > end {
		return nil, fmt.Errorf("%w: stage 2 at $%04x", errs.ErrInvalidImage, h.Stage2Begin)
	}
	stage2At := at(h.Stage2Begin)
	if !bytes.Equal(image[stage2At:stage2At+stage2GetByte], stage2[:stage2GetByte]) {
		return nil, fmt.Errorf("%w: unknown decruncher", errs.ErrInvalidImage)
	}
	h.Start = endian.Word(image, stage2At+stage2Start)

	copyLo := int(image[stage2At+stage2CopyLenLo])
	switch image[stage2At+stage2FinalJmp] {
	case opcodeJmp:
		h.NewLoad = Stage1End
		return h, nil
	case opcodeLdaAbsY:
		h.CopyLen = copyLo
		if h.CopyLen == 0 {
			h.CopyLen = stage3ShortLimit
		}
		h.Stage3Begin = h.Stage2Begin + stage2FinalJmp
		h.Stage3End = h.Stage3Begin + len(stage3Short)
	case opcodeLdxImm:
		h.Stage3Begin = h.Stage2Begin + stage2FinalJmp
		h.Stage3End = h.Stage3Begin + len(stage3Long)
		if h.Stage3End > end {
			return nil, fmt.Errorf("%w: truncated stage 3", errs.ErrInvalidImage)
		}
		h.CopyLen = int(image[at(h.Stage3Begin)+stage3LongCopyLenHi])<<8 | copyLo
	default:
		return nil, fmt.Errorf("%w: unknown stage 3", errs.ErrInvalidImage)
	}

	h.NewLoad = Stage1End - h.CopyLen
	if h.NewLoad < MinLoad {
		return nil, fmt.Errorf("%w: stream relocated to $%04x, minimum $%04x", errs.ErrInvalidImage, h.NewLoad, MinLoad)
	}
	if h.Stage3End+h.CopyLen != end {
		return nil, fmt.Errorf("%w: saved stream head is %d bytes, want %d", errs.ErrInvalidImage, end-h.Stage3End, h.CopyLen)
	}

	return h, nil
}
