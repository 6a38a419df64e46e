package sfx

// Decruncher memory map.
const (
	// MinLoad is the lowest address the decruncher can relocate a stream to.
	MinLoad = 0x03d0
	// Stage1Begin is where the image is loaded, PRG load address included.
	Stage1Begin = 0x07ff
	// Stage1End is the first address past the boot code.
	Stage1End = Stage1Begin + stage1Len
	// DefaultLineNumber is the BASIC line number of the SYS line in stage 1.
	DefaultLineNumber = 2003

	// decompressor entry point, relative to the start of stage 2
	decompEntry = 0xb3
)

// Stage 1: PRG load address, BASIC line "2003 SYS2059" and a loop copying
// stage 2 into page 1 before jumping to it.
var stage1 = [...]byte{
	0x01, 0x08, 0x0B, 0x08, 0xD3, 0x07, 0x9E, 0x32,
	0x30, 0x35, 0x39, 0x00, 0xA0, 0x00, 0x78, 0xE6,
	0x01, 0xBA, 0xBD, 0x00, 0x00, 0x9D, 0xFC, 0x00,
	0xCA, 0xD0, 0xF7, 0x4C, 0x00, 0x00,
}

const (
	stage1Len        = len(stage1)
	stage1LineNumber = 4
	stage1CopySrc    = 19
	stage1JmpStage2  = 28
)

// Stage 2: the bit stream decruncher. Its final JMP is replaced by stage 3
// when part of the stream has to be moved back before decrunching.
var stage2 = [...]byte{
	0xE8, 0xA9, 0x00, 0x85, 0xFC, 0x85, 0xFB, 0xE0,
	0x01, 0x90, 0x21, 0xA5, 0xFD, 0x4A, 0xD0, 0x11,
	0xAD, 0x1C, 0x01, 0xD0, 0x03, 0xCE, 0x1D, 0x01,
	0xCE, 0x1C, 0x01, 0xAD, 0x1B, 0x08, 0x90, 0x1B,
	0x6A, 0x26, 0xFC, 0x26, 0xFB, 0xCA, 0xD0, 0xE5,
	0x85, 0xFD, 0xA5, 0xFC, 0x60, 0xC6, 0x01, 0x58,
	0x4C, 0x00, 0xC6, 0xCA, 0xC6, 0xFF, 0xC6, 0xAF,
	0x88, 0xB1, 0xAE, 0x91, 0xFE, 0x98, 0xD0, 0xF8,
	0x8A, 0xD0, 0xF0, 0x20, 0x00, 0x01, 0xF0, 0x0A,
	0xA5, 0xFE, 0xD0, 0x02, 0xC6, 0xFF, 0xC6, 0xFE,
	0x90, 0xBE, 0xC8, 0x20, 0x00, 0x01, 0xF0, 0xFA,
	0xC0, 0x11, 0xB0, 0xD1, 0xBE, 0x33, 0x03, 0x20,
	0x01, 0x01, 0x79, 0x67, 0x03, 0x85, 0xA7, 0xA5,
	0xFB, 0x79, 0x9B, 0x03, 0x48, 0xD0, 0x06, 0xA4,
	0xA7, 0xC0, 0x04, 0x90, 0x02, 0xA0, 0x03, 0xBE,
	0xAC, 0x01, 0x20, 0x01, 0x01, 0x79, 0xAF, 0x01,
	0xA8, 0x38, 0xA5, 0xFE, 0xE5, 0xA7, 0x85, 0xFE,
	0xB0, 0x02, 0xC6, 0xFF, 0xBE, 0x34, 0x03, 0x20,
	0x01, 0x01, 0x79, 0x68, 0x03, 0x90, 0x03, 0xE6,
	0xFB, 0x18, 0x65, 0xFE, 0x85, 0xAE, 0xA5, 0xFB,
	0x79, 0x9C, 0x03, 0x65, 0xFF, 0x85, 0xAF, 0xA4,
	0xA7, 0x68, 0xAA, 0x90, 0x90, 0x02, 0x04, 0x04,
	0x30, 0x20, 0x10, 0xE8, 0x98, 0x29, 0x0F, 0xF0,
	0x13, 0x8A, 0x4A, 0xA6, 0xFC, 0x2A, 0x26, 0xFB,
	0xCA, 0x10, 0xFA, 0x79, 0x67, 0x03, 0xAA, 0xA5,
	0xFB, 0x79, 0x9B, 0x03, 0x99, 0x9C, 0x03, 0x8A,
	0x99, 0x68, 0x03, 0xA2, 0x04, 0x20, 0x01, 0x01,
	0x99, 0x34, 0x03, 0xC8, 0xC0, 0x34, 0xD0, 0xD3,
	0xA0, 0x00, 0x4C, 0x43, 0x01,
}

const (
	stage2Len        = len(stage2)
	stage2GetByte    = 28
	stage2Start      = 49
	stage2CopyLenLo  = 225
	stage2FinalJmp   = stage2Len - 3
	opcodeJmp        = 0x4C
	opcodeLdaAbsY    = 0xB9
	opcodeLdxImm     = 0xA2
	stage3ShortLimit = 256
)

// Stage 3, short form: copies up to 256 bytes with a single Y loop.
var stage3Short = [...]byte{
	0xB9, 0x00, 0x00, 0x99, 0x00, 0x00, 0x88, 0xD0,
	0xF7, 0x4C, 0x43, 0x01,
}

const (
	stage3ShortCopySrc  = 1
	stage3ShortCopyDest = 4
)

// Stage 3, long form: page loop around the Y loop, moving the high bytes of
// its own operands down one page per iteration.
var stage3Long = [...]byte{
	0xA2, 0x00, 0xB0, 0x0E, 0xCA, 0xCE, 0x1A, 0x09,
	0xCE, 0x1D, 0x09, 0x88, 0xB9, 0x00, 0x00, 0x99,
	0x00, 0x00, 0x98, 0xD0, 0xF6, 0x8A, 0xD0, 0xEC,
	0x4C, 0x43, 0x01,
}

const (
	stage3LongCopyLenHi = 1
	stage3LongDecSrcHi  = 6
	stage3LongDecDestHi = 9
	stage3LongCopySrc   = 13
	stage3LongCopyDest  = 16
)
