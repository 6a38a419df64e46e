package model

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/arloliu/crunch/bitstream"
	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/internal/match"
	"github.com/arloliu/crunch/internal/pool"
)

// Offset code classes by match length. Classes 2 to 6 are never populated.
const (
	classLen1   = 0
	classLen2   = 1
	classLonger = 7
	numClasses  = 8
)

// Table sizes as read by the decruncher.
const (
	len1Entries  = 4
	tableEntries = 16
)

// literalBits is the cost of a literal: the flag bit and the raw byte.
const literalBits = 9

// Model is the set of interval codes used by one parse: one for match
// lengths and one offset code per length class.
type Model struct {
	Lengths Tree
	Offsets [numClasses]Tree
}

func offsetClass(length uint16) int {
	switch length {
	case 1:
		return classLen1
	case 2:
		return classLen2
	default:
		return classLonger
	}
}

// Build derives a model from match statistics. lengths and offsets are
// enumerated once each; literals are ignored.
//
// The length code is built first. The offset histograms are then weighted
// with what each sequence saves over literals under that length code, which
// is the penalty for leaving an offset uncoded.
func Build(lengths, offsets iter.Seq[match.Match]) (*Model, error) {
	m := &Model{}

	lenArr, release := pool.GetInt64Slice(MaxValue)
	defer release()
	for mp := range lengths {
		if mp.Len == 0 {
			return nil, fmt.Errorf("%w: in length statistics", errs.ErrBadLength)
		}
		if mp.Offset > 0 {
			lenArr[mp.Len]++
		}
	}
	accumulate(lenArr)
	m.Lengths = Optimize(lenArr, nil, tableEntries, -1)

	var (
		counts    [numClasses][]int64
		penalties [numClasses][]int64
	)
	for _, class := range []int{classLen1, classLen2, classLonger} {
		var rc, rp func()
		counts[class], rc = pool.GetInt64Slice(MaxValue)
		penalties[class], rp = pool.GetInt64Slice(MaxValue)
		defer rc()
		defer rp()
	}

	for mp := range offsets {
		if mp.Len == 0 {
			return nil, fmt.Errorf("%w: in offset statistics", errs.ErrBadLength)
		}
		if mp.Offset == 0 {
			continue
		}
		threshold := int64(mp.Len)*literalBits - (1 + int64(m.Lengths.Cost(int(mp.Len))))
		class := offsetClass(mp.Len)
		penalties[class][mp.Offset] += threshold
		counts[class][mp.Offset]++
	}

	for _, class := range []int{classLen1, classLen2, classLonger} {
		accumulate(counts[class])
		accumulate(penalties[class])
	}
	m.Offsets[classLen1] = Optimize(counts[classLen1], penalties[classLen1], len1Entries, 2)
	m.Offsets[classLen2] = Optimize(counts[classLen2], penalties[classLen2], tableEntries, 4)
	m.Offsets[classLonger] = Optimize(counts[classLonger], penalties[classLonger], tableEntries, 4)

	return m, nil
}

// accumulate turns a histogram into counts of values >= i.
func accumulate(arr []int64) {
	for i := len(arr) - 2; i >= 0; i-- {
		arr[i] += arr[i+1]
	}
}

// Cost returns the number of bits m costs, flag bit included. Values the
// model cannot encode add Unencodable.
func (m *Model) Cost(mp match.Match) (float32, error) {
	if mp.Len == 0 {
		return 0, errs.ErrBadLength
	}
	if mp.IsLiteral() {
		return float32(literalBits * int(mp.Len)), nil
	}

	bits := float32(1)
	bits += m.Offsets[offsetClass(mp.Len)].Cost(int(mp.Offset))
	bits += m.Lengths.Cost(int(mp.Len))

	return bits, nil
}

// Encode writes the offset and length codes of the sequence mp. The flag bit
// is left to the caller.
func (m *Model) Encode(w *bitstream.Writer, mp match.Match) error {
	if mp.Len == 0 {
		return errs.ErrBadLength
	}
	if mp.IsLiteral() {
		return fmt.Errorf("%w: literal has no sequence code", errs.ErrUnencodable)
	}

	off, ok := m.Offsets[offsetClass(mp.Len)].Find(int(mp.Offset))
	if !ok {
		return fmt.Errorf("%w: offset %d of %v", errs.ErrUnencodable, mp.Offset, mp)
	}
	length, ok := m.Lengths.Find(int(mp.Len))
	if !ok {
		return fmt.Errorf("%w: length %d", errs.ErrUnencodable, mp.Len)
	}

	writeValue(w, off, int(mp.Offset))
	writeValue(w, length, int(mp.Len))

	return nil
}

func writeValue(w *bitstream.Writer, n Node, v int) {
	w.Bits(int(n.Bits), v-int(n.Start))
	if n.Gamma() {
		w.Gamma(int(n.Depth))
	} else {
		w.Bits(int(n.Prefix), int(n.Depth))
	}
}

// WriteTables writes the bit widths of every code as nibbles, in the order
// the decruncher expects after reading them backwards: lengths first, then
// the offset codes of long, two-byte and one-byte sequences.
func (m *Model) WriteTables(w *bitstream.Writer) {
	writeTable(w, m.Offsets[classLen1], len1Entries)
	writeTable(w, m.Offsets[classLen2], tableEntries)
	writeTable(w, m.Offsets[classLonger], tableEntries)
	writeTable(w, m.Lengths, tableEntries)
}

// writeTable writes entries nibbles, last interval first. Missing intervals
// are written as 15.
func writeTable(w *bitstream.Writer, t Tree, entries int) {
	for j := entries; j > 0; j-- {
		bits := 15
		if j <= len(t) {
			bits = int(t[j-1].Bits)
		}
		w.Bits(4, bits)
	}
}

// LogValue implements slog.LogValuer.
func (m *Model) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("lengths", m.Lengths.String()),
		slog.String("offsets1", m.Offsets[classLen1].String()),
		slog.String("offsets2", m.Offsets[classLen2].String()),
		slog.String("offsets", m.Offsets[classLonger].String()),
	)
}
