package derived

import (
	"math"
	"sort"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Percentile cut-offs for clipped color domains
const (
	clipLow  = 0.05
	clipHigh = 0.95
)

// Domain is a closed [Min, Max] interval used for color and axis scales
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Domain computes the value range of column over players. Values that are not
// numeric are skipped. When clipped is set the bounds come from the sorted
// values at indices floor(0.05n) and ceil(0.95n - 1) to damp outliers.
// Returns false when no numeric value exists.
func (e *Evaluator) Domain(players []models.Player, column string, clipped bool) (Domain, bool) {
	values := make([]float64, 0, len(players))
	for _, p := range players {
		if v, ok := e.Value(p, column); ok {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		return Domain{}, false
	}

	if !clipped {
		d := Domain{Min: values[0], Max: values[0]}
		for _, v := range values[1:] {
			d.Min = math.Min(d.Min, v)
			d.Max = math.Max(d.Max, v)
		}
		return d, true
	}

	sort.Float64s(values)
	n := float64(len(values))
	lo := clampIndex(int(math.Floor(clipLow*n)), len(values))
	hi := clampIndex(int(math.Ceil(clipHigh*n-1)), len(values))
	return Domain{Min: values[lo], Max: values[hi]}, true
}

// Domains computes one domain per column, skipping columns with no numeric values
func (e *Evaluator) Domains(players []models.Player, columns []string, clipped bool) map[string]Domain {
	out := make(map[string]Domain, len(columns))
	for _, column := range columns {
		if d, ok := e.Domain(players, column, clipped); ok {
			out[column] = d
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
