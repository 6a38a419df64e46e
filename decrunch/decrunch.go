// Package decrunch decodes crunch streams and unpacks self-extracting images.
//
// DecodeStream reads a bare stream as produced by crunch.Encode. Unpack
// emulates the C64 decruncher on a self-extracting image: it restores the
// relocated stream head the way stage 3 does and decrunches in place, so an
// image that would corrupt itself on the real machine fails here too.
package decrunch

import (
	"fmt"
	"slices"

	"github.com/arloliu/crunch/bitstream"
	"github.com/arloliu/crunch/endian"
	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/format"
	"github.com/arloliu/crunch/internal/options"
	"github.com/arloliu/crunch/internal/pool"
	"github.com/arloliu/crunch/sfx"
)

// Step describes one decoded token.
type Step struct {
	Kind   format.TokenKind
	Length int
	Offset int // zero for literals
	Write  int // write cursor after the token
	Read   int // read cursor after the token
}

// Program is an unpacked self-extracting image.
type Program struct {
	Load       uint16
	Start      uint16
	Data       []byte
	LineNumber int
	NewLoad    int // address the stream was relocated to
	CopyLen    int // stream bytes restored by stage 3
}

// Config holds the decoding options.
type Config struct {
	hook func(Step)
}

// Option configures DecodeStream and Unpack.
type Option = options.Option[*Config]

// WithStepHook registers fn to be called after every decoded token.
func WithStepHook(fn func(Step)) Option {
	return options.NoError(func(c *Config) {
		c.hook = fn
	})
}

func newConfig(opts []Option) (*Config, error) {
	c := &Config{}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// endAddress decodes the end word, where zero stands for the top of memory.
func endAddress(v uint16) int {
	if v == 0 {
		return pool.WindowSize
	}

	return int(v)
}

// DecodeStream decodes a bare crunch stream. It returns the data and the
// address it loads at.
func DecodeStream(stream []byte, opts ...Option) ([]byte, uint16, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, 0, err
	}
	if len(stream) < 3 {
		return nil, 0, fmt.Errorf("%w: %d bytes", errs.ErrInvalidStream, len(stream))
	}

	n := len(stream)
	end := endAddress(endian.Word(stream, n-2))

	win, release := pool.GetWindow()
	defer release()

	d := &decoder{
		r:    bitstream.NewReader(stream, n-3, 0, stream[n-3]),
		mem:  win[:],
		end:  end,
		hook: cfg.hook,
	}
	load, err := d.run()
	if err != nil {
		return nil, 0, err
	}

	return slices.Clone(win[load:end]), uint16(load), nil
}

// Unpack decrunches a self-extracting image the way the C64 would after
// RUN. image is the PRG file including its load address.
func Unpack(image []byte, opts ...Option) (*Program, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	h, err := sfx.Inspect(image)
	if err != nil {
		return nil, err
	}

	win, release := pool.GetWindow()
	defer release()
	mem := win[:]
	clear(mem)
	copy(mem[sfx.Stage1Begin:], image)

	// stage 3 moves the saved head back under stage 1
	copy(mem[h.NewLoad:sfx.Stage1End], mem[h.Stage3End:h.Stage3End+h.CopyLen])

	stream := h.Stage2Begin - 3
	end := endAddress(endian.Word(mem, h.Stage2Begin-2))
	d := &decoder{
		r:       bitstream.NewReader(mem, stream, h.NewLoad, mem[stream]),
		mem:     mem,
		end:     end,
		inPlace: true,
		hook:    cfg.hook,
	}
	load, err := d.run()
	if err != nil {
		return nil, err
	}

	return &Program{
		Load:       uint16(load),
		Start:      h.Start,
		Data:       slices.Clone(mem[load:end]),
		LineNumber: h.LineNumber,
		NewLoad:    h.NewLoad,
		CopyLen:    h.CopyLen,
	}, nil
}
