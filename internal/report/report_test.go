package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/crunch/internal/match"
	"github.com/arloliu/crunch/internal/search"
)

func testChain() *search.Chain {
	return &search.Chain{
		Links: []search.Link{
			{Pos: 0, Match: match.Match{Offset: 5, Len: 3}, Score: 14},
			{Pos: 3, Match: match.Literal, Score: 9},
			{Pos: 4, Match: match.Literal, Score: 9},
			{Pos: 5, Match: match.Match{Offset: 1, Len: 3}, Score: 9},
		},
		Cost: 41,
	}
}

func TestNewProfile(t *testing.T) {
	p := NewProfile(testChain())
	require.Equal(t, []float64{0, 3, 4, 5, 8}, p.Positions)
	require.Equal(t, []float64{0, 14, 23, 32, 41}, p.Bits)

	empty := NewProfile(&search.Chain{})
	require.Equal(t, []float64{0}, empty.Positions)
	require.Equal(t, []float64{0}, empty.Bits)
}

func TestCostChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CostChart(&buf, "scenario", testChain()))
	require.Contains(t, buf.String(), "<svg")
	require.Contains(t, buf.String(), "scenario")

	require.ErrorIs(t, CostChart(&buf, "empty", &search.Chain{}), ErrEmptyChain)
}
