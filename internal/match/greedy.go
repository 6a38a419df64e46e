package match

import (
	"iter"
	"slices"
)

// Greedy enumerates a greedy tiling of the buffer from the end towards the
// start. It seeds the first cost model, before any optimal parse exists.
//
// At every position the longest kept sequence is taken unless the sequence
// found one position earlier is longer. With lookahead set, short (< 3)
// sequences at the earlier position count one byte longer, which biases the
// walk towards emitting the shorter current sequence.
func (ix *Index) Greedy(lookahead bool) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		pos := ix.Len() - 1
		for pos >= 0 {
			lit, seq, ok := ix.peek(pos)
			val := lit
			if ok {
				_, next, found := ix.peek(pos - 1)
				bias := 0
				if lookahead && found && next.Len < 3 {
					bias = 1
				}
				if !found || int(next.Len)+bias <= int(seq.Len) {
					val = seq
				}
			}
			if !yield(val) {
				return
			}
			pos -= int(val.Len)
		}
	}
}

// keep drops one byte sequences that are too far away to be worth a code.
func keep(m Match) bool {
	return m.Len != 1 || m.Offset <= 32
}

// peek returns the cheapest single byte candidate and the best sequence of
// pos.
//
// A run ending at pos is offered as a virtual offset 1 sequence covering the
// whole run. The one byte candidate is the literal unless a near sequence
// can be retargeted at the nearest copy of the byte inside its run.
func (ix *Index) peek(pos int) (lit, seq Match, ok bool) {
	if pos < 0 {
		return Match{}, Match{}, false
	}

	lit = Literal
	consider := func(val Match) {
		if keep(val) {
			if !ok || val.Len > seq.Len || (val.Len == seq.Len && val.Offset < seq.Offset) {
				seq = val
				ok = true
			}
		}
		if lit.Offset == 0 || lit.Offset > val.Offset {
			off := val.Offset
			diff := uint16(ix.rle[pos+int(off)])
			if off > diff {
				off -= diff
			} else {
				off = 1
			}
			if tmp := (Match{Offset: off, Len: 1}); keep(tmp) {
				lit = tmp
			}
		}
	}

	if ix.rleR[pos] > 0 {
		consider(Match{Offset: 1, Len: uint16(ix.rle[pos] + 1)})
	}
	for _, val := range slices.Backward(ix.Matches(pos)) {
		if val.Offset != 0 {
			consider(val)
		}
	}

	return lit, seq, ok
}
