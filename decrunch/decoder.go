package decrunch

import (
	"fmt"

	"github.com/arloliu/crunch/bitstream"
	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/format"
)

const (
	lengthCodes = 16
	eofCode     = 16
)

// table is a decoded interval code: entry i covers [base[i], base[i]+2^bits[i]).
type table struct {
	base []int
	bits []int
}

func readTable(r *bitstream.Reader, entries int) (table, error) {
	t := table{base: make([]int, entries), bits: make([]int, entries)}
	base := 1
	for i := range entries {
		bits, err := r.ReadBits(4)
		if err != nil {
			return t, err
		}
		t.base[i] = base
		t.bits[i] = bits
		base += 1 << bits
	}

	return t, nil
}

func (t table) value(r *bitstream.Reader, i int) (int, error) {
	v, err := r.ReadBits(t.bits[i])
	if err != nil {
		return 0, err
	}

	return t.base[i] + v, nil
}

// decoder decrunches one stream backwards into mem, from end down.
type decoder struct {
	r   *bitstream.Reader
	mem []byte
	end int

	// inPlace checks that writes never pass the unread stream
	inPlace bool
	hook    func(Step)

	lengths, off0, off1, off7 table
}

func (d *decoder) readTables() error {
	var err error
	if d.lengths, err = readTable(d.r, 16); err != nil {
		return err
	}
	if d.off7, err = readTable(d.r, 16); err != nil {
		return err
	}
	if d.off1, err = readTable(d.r, 16); err != nil {
		return err
	}
	d.off0, err = readTable(d.r, 4)

	return err
}

// gamma reads a unary code: zero bits terminated by a one.
func (d *decoder) gamma() (int, error) {
	c := 0
	for {
		b, err := d.r.ReadBit()
		if err != nil {
			return 0, err
		}
		if b == 1 {
			return c, nil
		}
		c++
		if c > eofCode {
			return 0, fmt.Errorf("%w: length code overrun", errs.ErrInvalidStream)
		}
	}
}

func (d *decoder) offset(length int) (int, error) {
	t, width := d.off7, 4
	switch length {
	case 1:
		t, width = d.off0, 2
	case 2:
		t = d.off1
	}
	i, err := d.r.ReadBits(width)
	if err != nil {
		return 0, err
	}

	return t.value(d.r, i)
}

// run decodes tokens until the end marker and returns the final write
// position.
func (d *decoder) run() (int, error) {
	if err := d.readTables(); err != nil {
		return 0, err
	}

	w := d.end
	for {
		bit, err := d.r.ReadBit()
		if err != nil {
			return 0, err
		}

		step := Step{Kind: format.TokenLiteral, Length: 1}
		if bit == 1 {
			b, err := d.r.ReadByte()
			if err != nil {
				return 0, err
			}
			if w == 0 {
				return 0, fmt.Errorf("%w: literal below $0000", errs.ErrInvalidStream)
			}
			w--
			d.mem[w] = b
		} else {
			c, err := d.gamma()
			if err != nil {
				return 0, err
			}
			if c == eofCode {
				return w, nil
			}
			length, err := d.lengths.value(d.r, c)
			if err != nil {
				return 0, err
			}
			off, err := d.offset(length)
			if err != nil {
				return 0, err
			}
			if w-length < 0 || w-1+off >= d.end {
				return 0, fmt.Errorf("%w: sequence len %d offset %d at $%04x", errs.ErrInvalidStream, length, off, w)
			}
			for range length {
				w--
				d.mem[w] = d.mem[w+off]
			}
			step = Step{Kind: format.TokenSequence, Length: length, Offset: off}
			if off == 1 {
				step.Kind = format.TokenRun
			}
		}

		step.Write, step.Read = w, d.r.Pos()
		if d.inPlace && w < step.Read {
			return 0, fmt.Errorf("%w: write $%04x, read $%04x", errs.ErrOverlap, w, step.Read)
		}
		if d.hook != nil {
			d.hook(step)
		}
	}
}
