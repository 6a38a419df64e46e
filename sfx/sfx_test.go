package sfx

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/crunch/bitstream"
	"github.com/arloliu/crunch/endian"
	"github.com/arloliu/crunch/errs"
)

func newStream(t *testing.T, n int) (*bitstream.Writer, []byte) {
	t.Helper()

	rng := rand.New(rand.NewSource(int64(n)))
	data := make([]byte, n)
	rng.Read(data)

	w := bitstream.NewWriter()
	t.Cleanup(w.Release)
	_, err := w.Write(data)
	require.NoError(t, err)

	return w, data
}

// at reads the image byte loaded at addr.
func at(image []byte, addr int) byte {
	return image[addr-Stage1Begin]
}

func word(image []byte, addr int) int {
	return int(endian.Word(image, addr-Stage1Begin))
}

func TestAssembleLayout(t *testing.T) {
	tests := []struct {
		name      string
		streamLen int
		safeLoad  int
		want      Layout
		stage3    byte
	}{
		{
			name:      "no stage 3",
			streamLen: 100,
			safeLoad:  0x0900,
			want:      Layout{Stage2Begin: 0x0881, NewLoad: 0x081d, End: 0x0881 + stage2Len},
			stage3:    opcodeJmp,
		},
		{
			name:      "safe load equals stage 1 end",
			streamLen: 10,
			safeLoad:  Stage1End,
			want:      Layout{Stage2Begin: 0x0827, NewLoad: 0x081d, End: 0x0827 + stage2Len},
			stage3:    opcodeJmp,
		},
		{
			name:      "short stage 3",
			streamLen: 100,
			safeLoad:  0x0800,
			want: Layout{
				Stage2Begin: 0x0864,
				Stage3Begin: 0x0864 + 226,
				Stage3End:   0x0864 + 226 + 12,
				NewLoad:     0x0800,
				CopyLen:     29,
				End:         0x0864 + 226 + 12 + 29,
			},
			stage3: opcodeLdaAbsY,
		},
		{
			name:      "short stage 3 full page",
			streamLen: 300,
			safeLoad:  0x071d,
			want: Layout{
				Stage2Begin: 0x0849,
				Stage3Begin: 0x0849 + 226,
				Stage3End:   0x0849 + 226 + 12,
				NewLoad:     0x071d,
				CopyLen:     256,
				End:         0x0849 + 226 + 12 + 256,
			},
			stage3: opcodeLdaAbsY,
		},
		{
			name:      "long stage 3",
			streamLen: 1000,
			safeLoad:  0x0500,
			want: Layout{
				Stage2Begin: 0x08e8,
				Stage3Begin: 0x08e8 + 226,
				Stage3End:   0x08e8 + 226 + 27,
				NewLoad:     0x0500,
				CopyLen:     0x031d,
				End:         0x08e8 + 226 + 27 + 0x031d,
			},
			stage3: opcodeLdxImm,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, data := newStream(t, tt.streamLen)

			l, err := Assemble(w, tt.streamLen, tt.safeLoad, 0x0810)
			require.NoError(t, err)
			require.Equal(t, tt.want, *l)
			require.Equal(t, tt.want.CopyLen > 0, l.HasStage3())

			image := w.Bytes()
			require.Len(t, image, l.End-Stage1Begin)
			require.Equal(t, []byte{0x01, 0x08}, image[:2])

			// patched stage 1 and stage 2 operands
			require.Equal(t, l.Stage2Begin-4, word(image, Stage1Begin+stage1CopySrc))
			require.Equal(t, l.Stage2Begin+decompEntry, word(image, Stage1Begin+stage1JmpStage2))
			require.Equal(t, l.Stage2Begin-3, word(image, l.Stage2Begin+stage2GetByte))
			require.Equal(t, 0x0810, word(image, l.Stage2Begin+stage2Start))
			require.Equal(t, tt.stage3, at(image, l.Stage2Begin+stage2FinalJmp))

			// the stream survives stage 1, split around it when relocated low
			require.Equal(t, data[l.CopyLen:], image[Stage1End-Stage1Begin:l.Stage2Begin-Stage1Begin])
			if l.HasStage3() {
				require.Equal(t, data[:l.CopyLen], image[l.Stage3End-Stage1Begin:])
				require.Equal(t, byte(l.CopyLen), at(image, l.Stage2Begin+stage2CopyLenLo))
			}
		})
	}
}

func TestAssembleShortStage3Operands(t *testing.T) {
	tests := []struct {
		name    string
		load    int
		copyLen int
		adjust  int
	}{
		{"partial page", 0x0800, 29, 1},
		{"full page", 0x071d, 256, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newStream(t, 300)
			l, err := Assemble(w, 300, tt.load, 0)
			require.NoError(t, err)
			require.Equal(t, tt.copyLen, l.CopyLen)

			image := w.Bytes()
			require.Equal(t, l.Stage3End-tt.adjust, word(image, l.Stage3Begin+stage3ShortCopySrc))
			require.Equal(t, Stage1End-tt.copyLen-tt.adjust, word(image, l.Stage3Begin+stage3ShortCopyDest))
		})
	}
}

func TestAssembleLongStage3Operands(t *testing.T) {
	w, _ := newStream(t, 1000)
	l, err := Assemble(w, 1000, 0x0500, 0)
	require.NoError(t, err)

	image := w.Bytes()
	require.Equal(t, byte(0x1d), at(image, l.Stage2Begin+stage2CopyLenLo))
	require.Equal(t, byte(0x03), at(image, l.Stage3Begin+stage3LongCopyLenHi))
	require.Equal(t, l.Stage3Begin+stage3LongCopySrc+1, word(image, l.Stage3Begin+stage3LongDecSrcHi))
	require.Equal(t, l.Stage3Begin+stage3LongCopyDest+1, word(image, l.Stage3Begin+stage3LongDecDestHi))
	require.Equal(t, l.Stage3End+0x0300, word(image, l.Stage3Begin+stage3LongCopySrc))
	require.Equal(t, Stage1End-0x1d, word(image, l.Stage3Begin+stage3LongCopyDest))
}

func TestAssembleErrors(t *testing.T) {
	t.Run("load too low", func(t *testing.T) {
		w, _ := newStream(t, 10)
		_, err := Assemble(w, 10, MinLoad-1, 0)
		require.ErrorIs(t, err, errs.ErrLoadTooLow)
	})

	t.Run("minimum load accepted", func(t *testing.T) {
		w, _ := newStream(t, 1200)
		l, err := Assemble(w, 1200, MinLoad, 0)
		require.NoError(t, err)
		require.Equal(t, Stage1End-MinLoad, l.CopyLen)
	})

	t.Run("trailer under stage 1", func(t *testing.T) {
		w, _ := newStream(t, 40)
		_, err := Assemble(w, 40, 0x07e0, 0)
		require.ErrorIs(t, err, errs.ErrStreamTooShort)
		require.NotErrorIs(t, err, errs.ErrLoadTooLow)
	})

	t.Run("image past 64k", func(t *testing.T) {
		w, _ := newStream(t, 0xff00)
		_, err := Assemble(w, 0xff00, 0xf000, 0)
		require.ErrorIs(t, err, errs.ErrRelocationOverflow)
	})
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name      string
		streamLen int
		safeLoad  int
	}{
		{"no stage 3", 100, 0x0900},
		{"short stage 3", 100, 0x0800},
		{"short stage 3 full page", 300, 0x071d},
		{"long stage 3", 1000, 0x0500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newStream(t, tt.streamLen)
			l, err := Assemble(w, tt.streamLen, tt.safeLoad, 0xc000)
			require.NoError(t, err)

			h, err := Inspect(w.Bytes())
			require.NoError(t, err)
			require.Equal(t, *l, h.Layout)
			require.Equal(t, uint16(0xc000), h.Start)
			require.Equal(t, DefaultLineNumber, h.LineNumber)
		})
	}
}

func TestInspectRejects(t *testing.T) {
	w, _ := newStream(t, 1000)
	_, err := Assemble(w, 1000, 0x0500, 0)
	require.NoError(t, err)
	image := w.Bytes()

	// forgeCopyLen rewrites the page count of stage 3 and pads the saved
	// head to match, leaving an otherwise consistent image.
	stage3 := 0x08e8 + stage2FinalJmp
	forgeCopyLen := func(hi byte) []byte {
		b := append([]byte(nil), image[:stage3+len(stage3Long)-Stage1Begin]...)
		b[stage3+stage3LongCopyLenHi-Stage1Begin] = hi
		return append(b, make([]byte, int(hi)<<8|0x1d)...)
	}

	tests := []struct {
		name  string
		image func() []byte
	}{
		{"too short", func() []byte { return image[:10] }},
		{"copy length past address 0", func() []byte { return forgeCopyLen(0x0c) }},
		{"copy length under minimum load", func() []byte { return forgeCopyLen(0x05) }},
		{"foreign boot code", func() []byte {
			b := append([]byte(nil), image...)
			b[12] = 0xea
			return b
		}},
		{"truncated", func() []byte { return image[:len(image)-1] }},
		{"stage 2 out of range", func() []byte {
			b := append([]byte(nil), image...)
			endian.PutWord(b, stage1CopySrc, 0xfff0)
			return b
		}},
		{"unknown stage 3", func() []byte {
			b := append([]byte(nil), image...)
			b[0x08e8+stage2FinalJmp-Stage1Begin] = 0x00
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.image())
			require.ErrorIs(t, err, errs.ErrInvalidImage)
		})
	}

	h, err := Inspect(forgeCopyLen(0x03))
	require.NoError(t, err)
	require.Equal(t, Layout{Stage2Begin: 0x08e8, Stage3Begin: stage3, Stage3End: stage3 + len(stage3Long), NewLoad: 0x0500, CopyLen: 0x031d, End: h.End}, h.Layout)
}

func TestLineNumber(t *testing.T) {
	w, _ := newStream(t, 10)
	_, err := Assemble(w, 10, 0x0900, 0)
	require.NoError(t, err)
	image := w.Bytes()

	n, err := LineNumber(image)
	require.NoError(t, err)
	require.Equal(t, DefaultLineNumber, n)

	require.NoError(t, PatchLineNumber(image, 10))
	n, err = LineNumber(image)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	require.ErrorIs(t, PatchLineNumber(image, 64000), errs.ErrInvalidOption)
	require.ErrorIs(t, PatchLineNumber(image[:5], 10), errs.ErrInvalidImage)

	_, err = LineNumber(nil)
	require.ErrorIs(t, err, errs.ErrInvalidImage)
}
