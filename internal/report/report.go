// Package report renders diagnostics of a parse.
package report

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/arloliu/crunch/internal/search"
)

// ErrEmptyChain is returned when there is no token to plot.
var ErrEmptyChain = errors.New("report: chain has no tokens")

// literalBits is what a byte costs when stored as a literal.
const literalBits = 9

// Profile is the cumulative cost of a chain at every token boundary.
type Profile struct {
	Positions []float64
	Bits      []float64
}

// NewProfile accumulates the token scores of chain.
func NewProfile(chain *search.Chain) Profile {
	p := Profile{
		Positions: make([]float64, 0, len(chain.Links)+1),
		Bits:      make([]float64, 0, len(chain.Links)+1),
	}
	p.Positions = append(p.Positions, 0)
	p.Bits = append(p.Bits, 0)

	var total float64
	for _, l := range chain.Links {
		total += float64(l.Score)
		p.Positions = append(p.Positions, float64(l.End()))
		p.Bits = append(p.Bits, total)
	}

	return p
}

// CostChart writes an SVG chart of the cumulative bit cost of chain against
// storing every byte as a literal.
func CostChart(w io.Writer, title string, chain *search.Chain) error {
	if len(chain.Links) == 0 {
		return ErrEmptyChain
	}

	p := NewProfile(chain)
	n := p.Positions[len(p.Positions)-1]

	graph := chart.Chart{
		Title: title,
		XAxis: chart.XAxis{Name: "offset"},
		YAxis: chart.YAxis{Name: "bits"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "crunch",
				XValues: p.Positions,
				YValues: p.Bits,
			},
			chart.ContinuousSeries{
				Name:    "literals",
				Style:   chart.Style{StrokeDashArray: []float64{5, 5}},
				XValues: []float64{0, n},
				YValues: []float64{0, n * literalBits},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.SVG, w)
}
