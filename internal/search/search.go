// Package search finds the cheapest tiling of a buffer into literals and
// sequences under a given cost function.
package search

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/internal/match"
	"github.com/arloliu/crunch/internal/model"
)

// CostFunc returns the number of bits a match costs.
type CostFunc func(match.Match) (float32, error)

// Node is the best known way to encode the buffer from Index to its end.
type Node struct {
	Index      int
	Match      match.Match // token starting at Index, zero when unset
	MatchScore float32
	TotalScore float32
	Prev       int // node following the token, -1 at the end
}

// Link is one token of a chain.
type Link struct {
	Pos   int
	Match match.Match
	Score float32
}

// End returns the position after the token.
func (l Link) End() int {
	return l.Pos + int(l.Match.Len)
}

// Chain is a tiling of [0, len) in position order.
type Chain struct {
	Links []Link
	Cost  float32
}

// Matches enumerates the tokens of the chain in position order.
func (c *Chain) Matches() iter.Seq[match.Match] {
	return func(yield func(match.Match) bool) {
		for _, l := range c.Links {
			if !yield(l.Match) {
				return
			}
		}
	}
}

// Parse runs the backward shortest path search over the index.
//
// Nodes are settled from the end of the buffer down to position 1. At every
// node, the run it belongs to is first considered as a single offset 1
// sequence; then every candidate ending just below the node, and every
// shorter length of it, relaxes the node it starts at.
//
// Equal costs are resolved towards literals, then towards the smaller
// offset at equal length, so the result only depends on the input.
func Parse(ix *match.Index, cost CostFunc) (*Chain, error) {
	n := ix.Len()
	nodes := make([]Node, n+1)
	for i := range nodes {
		nodes[i] = Node{Index: i, Prev: -1}
	}

	bestRLE := -1
	for pos := n; pos >= 1; pos-- {
		snp := &nodes[pos]

		// Track the highest node reachable from here through a run.
		if bestRLE < 0 || pos+ix.RLEReverse(pos) < nodes[bestRLE].Index {
			bestRLE = -1
			if ix.RLE(pos) > 0 {
				bestRLE = pos
			}
		} else if ix.RLE(pos) > 0 && pos+ix.RLEReverse(pos) >= nodes[bestRLE].Index {
			best := &nodes[bestRLE]
			bestScore, err := cost(match.Match{Offset: 1, Len: uint16(ix.RLE(best.Index))})
			if err != nil {
				return nil, err
			}
			snpScore, err := cost(match.Match{Offset: 1, Len: uint16(ix.RLE(pos))})
			if err != nil {
				return nil, err
			}
			if snp.TotalScore+snpScore <= best.TotalScore+bestScore {
				bestRLE = pos
			}
		}
		if bestRLE >= 0 && bestRLE != pos {
			best := &nodes[bestRLE]
			rle := match.Match{Offset: 1, Len: uint16(best.Index - pos)}
			score, err := cost(rle)
			if err != nil {
				return nil, err
			}
			if total := best.TotalScore + score; snp.TotalScore > total {
				snp.TotalScore = total
				snp.MatchScore = score
				snp.Prev = bestRLE
				snp.Match = rle
			}
		}

		prev := snp.TotalScore
		for _, mp := range slices.Backward(ix.Matches(pos - 1)) {
			for l := mp.Len; l >= 1; l-- {
				tmp := match.Match{Offset: mp.Offset, Len: l}
				score, err := cost(tmp)
				if err != nil {
					return nil, err
				}
				total := prev + score
				t := &nodes[pos-int(l)]
				if total < model.Unencodable && replaces(t, tmp, total) {
					t.Index = pos - int(l)
					t.Match = tmp
					t.MatchScore = score
					t.TotalScore = total
					t.Prev = pos
				}
			}
		}
	}

	return collect(nodes)
}

func replaces(t *Node, cand match.Match, total float32) bool {
	switch {
	case t.Match.Len == 0:
		return true
	case total < t.TotalScore:
		return true
	case total == t.TotalScore:
		return cand.Offset == 0 || (t.Match.Len == cand.Len && t.Match.Offset > cand.Offset)
	default:
		return false
	}
}

func collect(nodes []Node) (*Chain, error) {
	n := len(nodes) - 1
	chain := &Chain{Cost: nodes[0].TotalScore}
	for i := 0; i < n; {
		nd := nodes[i]
		if nd.Match.Len == 0 || nd.Prev != i+int(nd.Match.Len) {
			return nil, fmt.Errorf("%w: position %d", errs.ErrSearchExhausted, i)
		}
		chain.Links = append(chain.Links, Link{Pos: i, Match: nd.Match, Score: nd.MatchScore})
		i = nd.Prev
	}

	return chain, nil
}
