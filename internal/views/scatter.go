package views

import (
	"math"
	"strings"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Default scatter axes
const (
	DefaultScatterX = "PasTotCmp"
	DefaultScatterY = "PasTotAtt"
)

// ScatterOptions selects the axes and the per-axis minimums. Search only
// highlights points, it never removes them.
type ScatterOptions struct {
	X      string
	Y      string
	MinX   *float64
	MinY   *float64
	Search string
}

// ScatterPoint is one plotted player
type ScatterPoint struct {
	Name        string          `json:"name"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Category    models.Category `json:"category"`
	Selected    bool            `json:"selected"`
	SearchMatch bool            `json:"search_match"`
}

// Scatter is the data behind the scatterplot. Points are in draw order:
// plain points first, then search matches, then selected players on top.
type Scatter struct {
	X       string         `json:"x"`
	Y       string         `json:"y"`
	XDomain derived.Domain `json:"x_domain"`
	YDomain derived.Domain `json:"y_domain"`
	Points  []ScatterPoint `json:"points"`
}

// BuildScatter plots the filtered view on two columns. Players lacking a value
// on either axis are left out. Axis domains run from the requested minimum
// (or 0) to the largest plotted value.
func BuildScatter(eval *derived.Evaluator, filtered, selected []models.Player, opts ScatterOptions) Scatter {
	if opts.X == "" {
		opts.X = DefaultScatterX
	}
	if opts.Y == "" {
		opts.Y = DefaultScatterY
	}

	locked := make(map[string]bool, len(selected))
	for _, p := range selected {
		locked[p.Name()] = true
	}
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	var plain, matches, chosen []ScatterPoint
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range filtered {
		x, xok := eval.Value(p, opts.X)
		y, yok := eval.Value(p, opts.Y)
		if !xok || !yok {
			continue
		}
		if opts.MinX != nil && x < *opts.MinX {
			continue
		}
		if opts.MinY != nil && y < *opts.MinY {
			continue
		}

		pt := ScatterPoint{
			Name:     p.Name(),
			X:        x,
			Y:        y,
			Category: p.Category(),
			Selected: locked[p.Name()],
		}
		pt.SearchMatch = search != "" && strings.Contains(strings.ToLower(pt.Name), search)

		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)

		switch {
		case pt.Selected:
			chosen = append(chosen, pt)
		case pt.SearchMatch:
			matches = append(matches, pt)
		default:
			plain = append(plain, pt)
		}
	}

	points := make([]ScatterPoint, 0, len(plain)+len(matches)+len(chosen))
	points = append(points, plain...)
	points = append(points, matches...)
	points = append(points, chosen...)

	return Scatter{
		X:       opts.X,
		Y:       opts.Y,
		XDomain: axisDomain(opts.MinX, maxX),
		YDomain: axisDomain(opts.MinY, maxY),
		Points:  points,
	}
}

func axisDomain(lo *float64, hi float64) derived.Domain {
	d := derived.Domain{}
	if lo != nil {
		d.Min = *lo
	}
	if math.IsInf(hi, -1) {
		d.Max = d.Min
	} else {
		d.Max = hi
	}
	return d
}
