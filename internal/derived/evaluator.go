package derived

import (
	"math"
	"sort"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Built-in derived metrics
const (
	AbsAssists = "abs_assists"
	AbsGoals   = "abs_goals"
)

// MetricFunc computes a derived value for one player. It must never return NaN.
type MetricFunc func(p models.Player) float64

// Evaluator resolves column names to numbers, either from a raw field or from a
// registered derived metric. Filtering, sorting and color domains all go through
// it so a metric has exactly one definition.
type Evaluator struct {
	metrics map[string]MetricFunc
}

// NewEvaluator creates an evaluator with the built-in per-90 totals registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]MetricFunc),
	}
	e.Register(AbsAssists, PerNinetyTotal(models.FieldAssists))
	e.Register(AbsGoals, PerNinetyTotal(models.FieldGoals))
	return e
}

// Register adds or replaces a derived metric. Call during startup only.
func (e *Evaluator) Register(name string, fn MetricFunc) {
	e.metrics[name] = fn
}

// IsDerived reports whether column names a registered metric
func (e *Evaluator) IsDerived(column string) bool {
	_, ok := e.metrics[column]
	return ok
}

// Metrics returns the registered metric names, sorted
func (e *Evaluator) Metrics() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate returns the numeric value of column for p. Missing or malformed
// inputs evaluate to 0.
func (e *Evaluator) Evaluate(p models.Player, column string) float64 {
	v, _ := e.Value(p, column)
	return v
}

// Value is Evaluate plus whether a real number was found. Derived metrics always
// report true; raw columns report false when the field is absent or not numeric.
func (e *Evaluator) Value(p models.Player, column string) (float64, bool) {
	if fn, ok := e.metrics[column]; ok {
		v := fn(p)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, true
		}
		return v, true
	}
	return p.Number(column)
}

// PerNinetyTotal turns a per-90-minutes rate back into an absolute count:
// round(rate * Min / 90).
func PerNinetyTotal(field string) MetricFunc {
	return func(p models.Player) float64 {
		rate, _ := p.Number(field)
		minutes, _ := p.Number(models.FieldMinutes)
		return math.Round(rate * minutes / 90)
	}
}
