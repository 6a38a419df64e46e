// Package match finds the back-reference candidates of every buffer position.
//
// Positions are processed from the end of the buffer towards the start, the
// direction the decruncher writes in: a match at position i copies Len bytes
// ending at i from Offset bytes above them.
package match

import (
	"fmt"
	"slices"
)

// Match is a back-reference candidate. An Offset of zero is a literal, whose
// Len is always 1.
type Match struct {
	Offset uint16
	Len    uint16
}

// Literal is the pseudo-match present at every position.
var Literal = Match{Offset: 0, Len: 1}

// IsLiteral reports whether m copies a raw byte.
func (m Match) IsLiteral() bool {
	return m.Offset == 0
}

// String implements fmt.Stringer.
func (m Match) String() string {
	if m.IsLiteral() {
		return fmt.Sprintf("lit(%d)", m.Len)
	}

	return fmt.Sprintf("seq(%d,%d)", m.Len, m.Offset)
}

type span struct {
	first int32
	n     int32
}

// Index holds the run tables and the match candidates of a buffer. It is
// read-only after Build and safe for concurrent use.
type Index struct {
	buf       []byte
	maxOffset int
	rle       []int32
	rleR      []int32
	next      []int32 // same-byte successor, -1 when the position has no node
	spans     []span
	arena     []Match
}

// Build indexes buf, considering back-references of at most maxOffset bytes.
//
// buf must not be modified while the index is in use.
func Build(buf []byte, maxOffset int) *Index {
	n := len(buf)
	ix := &Index{
		buf:       buf,
		maxOffset: maxOffset,
		rle:       make([]int32, n+1),
		rleR:      make([]int32, n+1),
		next:      make([]int32, n),
		spans:     make([]span, n),
		arena:     make([]Match, 0, 2*n),
	}
	if n == 0 {
		return ix
	}

	for i := 1; i < n; i++ {
		if buf[i] == buf[i-1] {
			ix.rle[i] = ix.rle[i-1] + 1
		}
	}
	for i := n - 2; i >= 0; i-- {
		if buf[i] == buf[i+1] {
			ix.rleR[i] = ix.rleR[i+1] + 1
		}
	}

	ix.linkSuccessors()

	for i := n - 1; i >= 0; i-- {
		ix.calc(i)
	}

	return ix
}

// Len returns the length of the indexed buffer.
func (ix *Index) Len() int {
	return len(ix.buf)
}

// RLE returns the number of bytes before position i equal to buf[i].
// Position Len() is valid and reports 0.
func (ix *Index) RLE(i int) int {
	return int(ix.rle[i])
}

// RLEReverse returns the number of bytes after position i equal to buf[i].
// Position Len() is valid and reports 0.
func (ix *Index) RLEReverse(i int) int {
	return int(ix.rleR[i])
}

// Matches returns the candidates of position i in creation order: the literal
// first, then every strictly better sequence. Walk it with slices.Backward for
// best first.
//
// The returned slice aliases the index and must not be modified.
func (ix *Index) Matches(i int) []Match {
	s := ix.spans[i]
	return ix.arena[s.first : s.first+s.n : s.first+s.n]
}

// linkSuccessors builds, for every byte value, the chain of positions that a
// match search starting at a position walks through. Long runs only
// contribute the positions whose run length has not been seen yet, so a run
// of n equal bytes costs O(distinct lengths) nodes rather than O(n).
func (ix *Index) linkSuccessors() {
	n := len(ix.buf)
	for i := range ix.next {
		ix.next[i] = -1
	}

	var positions [256][]int32
	for i, c := range ix.buf {
		positions[c] = append(positions[c], int32(i))
	}

	seen := make([]bool, n+2)
	hasNode := make([]bool, n)
	touched := make([]int32, 0, 64)
	reset := func() {
		for _, l := range touched {
			seen[l] = false
		}
		touched = touched[:0]
	}
	mark := func(l int32) {
		if !seen[l] {
			seen[l] = true
			touched = append(touched, l)
		}
	}

	for c := range positions {
		list := positions[c]
		if len(list) == 0 {
			continue
		}

		reset()
		prev := int32(-1)
		for _, i := range list {
			l := ix.rle[i]
			if !seen[l] && ix.rleR[i] > 16 {
				continue
			}
			hasNode[i] = true
			mark(l)
			if prev >= 0 {
				ix.next[prev] = i
			}
			prev = i
		}

		reset()
		prev = -1
		for _, i := range slices.Backward(list) {
			l := ix.rleR[i]
			if !hasNode[i] {
				if seen[l] && prev >= 0 && l > 0 {
					hasNode[i] = true
					ix.next[i] = prev
				}
			} else {
				prev = i
			}
			if ix.rleR[i] > 0 {
				continue
			}
			mark(ix.rle[i] + 1)
		}
	}
}

// calc computes the candidates of position index. Positions above index must
// already be computed.
func (ix *Index) calc(index int) {
	buf := ix.buf
	first := len(ix.arena)
	best := Literal
	ix.arena = append(ix.arena, best)

	for np := int(ix.next[index]); np >= 0; np = int(ix.next[np]) {
		if np > index+ix.maxOffset {
			break
		}

		bestLen := 0
		if best.Offset > 0 {
			bestLen = int(best.Len)
		}
		offset := np - index

		// Re-verify the previous best length, skipping over shared runs.
		// The first byte is known to match.
		l := bestLen
		pos := index + 1 - l
		for l > 1 && buf[pos] == buf[pos+offset] {
			skip := min(ix.rleR[pos], ix.rleR[pos+offset])
			l -= 1 + int(skip)
			pos += 1 + int(skip)
		}
		if l > 1 {
			continue
		}

		if offset < 17 {
			best = Match{Offset: uint16(offset), Len: 1}
			ix.arena = append(ix.arena, best)
		}

		l = bestLen
		pos = index - l
		for pos >= 0 && buf[pos] == buf[pos+offset] {
			l++
			pos--
		}
		if l > bestLen {
			best = Match{Offset: uint16(offset), Len: uint16(index - pos)}
			ix.arena = append(ix.arena, best)
		}
		if pos < 0 {
			break
		}
	}

	ix.spans[index] = span{first: int32(first), n: int32(len(ix.arena) - first)}
}
