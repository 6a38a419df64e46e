// Package model builds the interval codes used to encode match lengths and
// offsets, and prices matches with them.
//
// An interval code splits [1, 65536) into consecutive power-of-two sized
// intervals. A value is sent as the index of its interval (the prefix,
// either a gamma code or a fixed width field) followed by its distance to
// the interval start in Bits bits.
package model

import (
	"strings"
)

// MaxValue bounds every code; histograms have MaxValue entries.
const MaxValue = 1 << 16

// Unencodable is the cost of a value that no interval covers. Any parse
// whose cost reaches it is rejected.
const Unencodable = 1_000_000

// Node is one interval of a code.
type Node struct {
	Start  int32 // first value of the interval
	Bits   int8  // value bits, the interval holds 1<<Bits values
	Prefix int8  // prefix length in bits
	Depth  int8  // interval index
	Flags  int8  // prefix width for flat prefixes, negative for gamma
	Score  int64 // cost of this interval and every interval after it
}

// End returns the first value past the interval.
func (n Node) End() int {
	return int(n.Start) + 1<<n.Bits
}

// Gamma reports whether the interval index is sent as a gamma code.
func (n Node) Gamma() bool {
	return n.Flags < 0
}

// Tree is an interval code as the chain of its intervals, lowest first.
// A nil Tree has no code at all.
type Tree []Node

// Find returns the interval covering v.
func (t Tree) Find(v int) (Node, bool) {
	for _, n := range t {
		if v >= int(n.Start) && v < n.End() {
			return n, true
		}
	}

	return Node{}, false
}

// Cost returns the number of bits needed to encode v, or Unencodable.
func (t Tree) Cost(v int) float32 {
	n, ok := t.Find(v)
	if !ok {
		return Unencodable
	}

	return float32(int(n.Prefix) + int(n.Bits))
}

// String renders the bit widths of the intervals as hex digits.
func (t Tree) String() string {
	if len(t) == 0 {
		return "-"
	}

	var sb strings.Builder
	for _, n := range t {
		sb.WriteByte("0123456789ABCDEF"[n.Bits&0xf])
	}

	return sb.String()
}

type memoKey struct {
	start int32
	depth int8
}

type arenaNode struct {
	Node
	next int32
}

// optimizer is the state of one Optimize call. The memo and arena are
// dropped with it.
type optimizer struct {
	stats    []int64
	penalty  []int64
	maxDepth int
	flags    int
	memo     map[memoKey]int32
	arena    []arenaNode
}

// Optimize returns the cheapest interval code for the cumulative histogram
// stats, where stats[v] counts the values >= v.
//
// penalty holds, in the same cumulative form, the cost of leaving the values
// from an interval start upwards uncoded; nil makes leaving values uncoded
// cost Unencodable. The code has at most maxDepth intervals. A non-negative
// flags selects a flat prefix of that many bits, a negative one a gamma
// prefix.
//
// Optimize returns nil when stats[1] is zero.
func Optimize(stats, penalty []int64, maxDepth, flags int) Tree {
	o := &optimizer{
		stats:    stats,
		penalty:  penalty,
		maxDepth: maxDepth,
		flags:    flags,
		memo:     make(map[memoKey]int32),
	}

	var tree Tree
	for idx := o.optimize(1, 0); idx >= 0; idx = o.arena[idx].next {
		tree = append(tree, o.arena[idx].Node)
	}

	return tree
}

func (o *optimizer) optimize(start, depth int) int32 {
	if o.stats[start] == 0 {
		return -1
	}
	key := memoKey{start: int32(start), depth: int8(depth)}
	if idx, ok := o.memo[key]; ok {
		return idx
	}

	prefix := depth + 1
	if o.flags >= 0 {
		prefix = o.flags
	}

	var best arenaNode
	found := false
	for bits := range 16 {
		end := start + 1<<bits

		var startCount, endCount int64
		if start < MaxValue {
			startCount = o.stats[start]
			if end < MaxValue {
				endCount = o.stats[end]
			}
		}

		cand := arenaNode{
			Node: Node{
				Start:  int32(start),
				Bits:   int8(bits),
				Prefix: int8(prefix),
				Depth:  int8(depth),
				Flags:  int8(o.flags),
				Score:  (startCount - endCount) * int64(prefix+bits),
			},
			next: -1,
		}
		if endCount > 0 {
			// Values remain past this interval: either code them with
			// deeper intervals or pay the penalty for leaving them out.
			if depth+1 < o.maxDepth {
				cand.next = o.optimize(end, depth+1)
			}
			penalty := int64(Unencodable)
			if o.penalty != nil {
				penalty = o.penalty[end]
			}
			if cand.next >= 0 && o.arena[cand.next].Score < penalty {
				penalty = o.arena[cand.next].Score
			}
			cand.Score += penalty
		}
		if !found || cand.Score < best.Score {
			best = cand
			found = true
		}
	}

	o.arena = append(o.arena, best)
	idx := int32(len(o.arena) - 1)
	o.memo[key] = idx

	return idx
}
