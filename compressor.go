package crunch

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/arloliu/crunch/bitstream"
	"github.com/arloliu/crunch/decrunch"
	"github.com/arloliu/crunch/endian"
	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/internal/hash"
	"github.com/arloliu/crunch/internal/match"
	"github.com/arloliu/crunch/internal/model"
	"github.com/arloliu/crunch/internal/options"
	"github.com/arloliu/crunch/internal/pool"
	"github.com/arloliu/crunch/internal/search"
	"github.com/arloliu/crunch/sfx"
)

// MaxInputSize is the largest input the compressor accepts.
const MaxInputSize = pool.WindowSize

// Stats describes a compression run.
type Stats struct {
	InputSize  int
	StreamSize int
	ImageSize  int // zero for bare streams

	// Passes is the number of parses run, including the final one that did
	// not improve.
	Passes    int
	PassCosts []float32
	// Cost is the cost of the emitted parse, in bits.
	Cost float32

	Literals  int
	Sequences int // includes runs
	Runs      int // sequences with offset 1

	MaxDiff int
	NewLoad int
	CopyLen int

	// InputHash is the xxHash64 of the load address, little endian, followed
	// by the input. It identifies the program and not just its bytes.
	InputHash uint64
}

// Ratio returns the output size relative to the input size.
func (s Stats) Ratio() float64 {
	if s.InputSize == 0 {
		return 0
	}
	size := s.StreamSize
	if s.ImageSize > 0 {
		size = s.ImageSize
	}

	return float64(size) / float64(s.InputSize)
}

// Stream is a bare crunch stream.
type Stream struct {
	Data []byte
	Load uint16
	// MaxDiff is how far the stream must sit below the data for in-place
	// decrunching to be safe.
	MaxDiff int
	Chain   *search.Chain
	Stats   Stats
}

// Result is a self-extracting image.
type Result struct {
	Image  []byte // PRG file, load address included
	Layout sfx.Layout
	Chain  *search.Chain
	Stats  Stats
}

// Compressor crunches buffers. It is immutable after construction and safe
// for concurrent use.
type Compressor struct {
	cfg Config
}

// NewCompressor creates a compressor with the given options.
//
// Parameters:
//   - opts: options overriding the defaults
//
// Returns:
//   - *Compressor: the compressor
//   - error: errs.ErrInvalidOption if an option is out of range
func NewCompressor(opts ...Option) (*Compressor, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Compressor{cfg: *cfg}, nil
}

// Encode compresses src into a bare stream that decrunches to load.
func (c *Compressor) Encode(src []byte, load uint16) (*Stream, error) {
	w := bitstream.NewWriter()
	defer w.Release()

	s, err := c.encode(w, src, load)
	if err != nil {
		return nil, err
	}
	s.Data = slices.Clone(w.Bytes())

	return s, nil
}

// Compress compresses src, which loads at load, into a self-extracting image
// that jumps to start once decrunched.
func (c *Compressor) Compress(src []byte, load, start uint16) (*Result, error) {
	w := bitstream.NewWriter()
	defer w.Release()

	s, err := c.encode(w, src, load)
	if err != nil {
		return nil, err
	}

	layout, err := sfx.Assemble(w, s.Stats.StreamSize, int(load)-s.MaxDiff, int(start))
	if err != nil {
		return nil, err
	}

	r := &Result{Image: slices.Clone(w.Bytes()), Layout: *layout, Chain: s.Chain, Stats: s.Stats}
	if err := sfx.PatchLineNumber(r.Image, c.cfg.lineNumber); err != nil {
		return nil, err
	}
	r.Stats.ImageSize = len(r.Image)
	r.Stats.NewLoad = layout.NewLoad
	r.Stats.CopyLen = layout.CopyLen

	c.cfg.logger.Info("image assembled",
		slog.Int("size", r.Stats.ImageSize),
		slog.Int("max_diff", s.MaxDiff),
		slog.Int("new_load", layout.NewLoad),
		slog.Int("copy_len", layout.CopyLen))

	if c.cfg.verify {
		if err := verify(r.Image, start, r.Stats.InputHash); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// encode writes the stream for src at the start of w.
func (c *Compressor) encode(w *bitstream.Writer, src []byte, load uint16) (*Stream, error) {
	if len(src) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInputTooLarge, len(src))
	}
	if int(load)+len(src) > pool.WindowSize {
		return nil, fmt.Errorf("%w: %d bytes at $%04x past $ffff", errs.ErrInputTooLarge, len(src), load)
	}

	log := c.cfg.logger
	ix := match.Build(src, c.cfg.maxOffset)

	// lengths come from the biased sweep, offsets from both
	m, err := model.Build(ix.Greedy(true), concat(ix.Greedy(false), ix.Greedy(true)))
	if err != nil {
		return nil, err
	}

	var (
		best      *search.Chain
		bestModel *model.Model
		costs     []float32
		oldCost   = float32(model.Unencodable)
	)
	for pass := 1; ; {
		chain, err := search.Parse(ix, m.Cost)
		if err != nil {
			return nil, err
		}
		costs = append(costs, chain.Cost)
		log.Debug("pass", slog.Int("pass", pass), slog.Float64("bits", float64(chain.Cost)), slog.Any("model", m))

		if chain.Cost >= oldCost {
			break
		}
		best, bestModel, oldCost = chain, m, chain.Cost

		pass++
		if pass > c.cfg.maxPasses {
			break
		}
		if m, err = model.Build(chain.Matches(), chain.Matches()); err != nil {
			return nil, err
		}
	}
	if best == nil {
		return nil, errs.ErrSearchExhausted
	}

	s := &Stream{
		Load:  load,
		Chain: best,
		Stats: Stats{
			InputSize: len(src),
			Passes:    len(costs),
			PassCosts: costs,
			Cost:      best.Cost,
			InputHash: programHash(load, src),
		},
	}
	if s.MaxDiff, err = emit(w, src, best, bestModel, &s.Stats); err != nil {
		return nil, err
	}
	w.Word(uint16(int(load) + len(src)))
	if err := w.Err(); err != nil {
		return nil, err
	}
	s.Stats.StreamSize = w.Pos()
	s.Stats.MaxDiff = s.MaxDiff

	log.Info("stream encoded",
		slog.Int("size", s.Stats.StreamSize),
		slog.Int("pass", s.Stats.Passes),
		slog.Float64("bits", float64(best.Cost)),
		slog.Int("max_diff", s.MaxDiff))

	return s, nil
}

// emit writes the header, the tokens and the tables of chain, without the
// end word. It returns the overlap margin.
func emit(w *bitstream.Writer, src []byte, chain *search.Chain, m *model.Model, st *Stats) (int, error) {
	// end marker, read last by the decruncher
	w.Gamma(16)
	w.Bits(1, 0)

	maxDiff := w.Pos()
	consumed := 0
	for _, l := range chain.Links {
		if l.Match.IsLiteral() {
			w.Byte(src[l.Pos])
			w.Bit(true)
			st.Literals++
		} else {
			if err := m.Encode(w, l.Match); err != nil {
				return 0, err
			}
			w.Bit(false)
			st.Sequences++
			if l.Match.Offset == 1 {
				st.Runs++
			}
		}
		consumed += int(l.Match.Len)
		maxDiff = max(maxDiff, w.Pos()-consumed)
	}

	m.WriteTables(w)
	w.Flush()

	return maxDiff, nil
}

// verify unpacks image and checks that it restores the program identified
// by want and then jumps to start.
func verify(image []byte, start uint16, want uint64) error {
	p, err := decrunch.Unpack(image)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrVerifyFailed, err)
	}
	if p.Start != start {
		return fmt.Errorf("%w: start $%04x, want $%04x", errs.ErrVerifyFailed, p.Start, start)
	}
	if programHash(p.Load, p.Data) != want {
		return fmt.Errorf("%w: $%04x-$%04x does not match the input", errs.ErrVerifyFailed, p.Load, int(p.Load)+len(p.Data))
	}

	return nil
}

func programHash(load uint16, data []byte) uint64 {
	return hash.SumParts(endian.GetLittleEndianEngine().AppendUint16(nil, load), data)
}

func concat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for v := range seq {
				if !yield(v) {
					return
				}
			}
		}
	}
}
