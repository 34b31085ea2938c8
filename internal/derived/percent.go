package derived

import (
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// PercentOfMax returns copies of players with every attribute rescaled to a
// percentage of the largest value of that attribute within the slice.
// Attributes without a positive maximum are left as they are.
func (e *Evaluator) PercentOfMax(players []models.Player, attributes []string) []models.Player {
	maxValues := make(map[string]float64, len(attributes))
	for _, p := range players {
		for _, attr := range attributes {
			if v, ok := e.Value(p, attr); ok && v > maxValues[attr] {
				maxValues[attr] = v
			}
		}
	}

	out := make([]models.Player, len(players))
	for i, p := range players {
		scaled := p.Clone()
		for _, attr := range attributes {
			v, ok := e.Value(p, attr)
			if !ok || maxValues[attr] == 0 {
				continue
			}
			scaled[attr] = v / maxValues[attr] * 100
		}
		out[i] = scaled
	}

	return out
}
