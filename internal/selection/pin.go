package selection

import "github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"

// PinToTop composes the list views render: the selection in its own order,
// then every entry of rest not already listed. Duplicates are removed by name
// and the selection's copy wins.
func PinToTop(selected, rest []models.Player) []models.Player {
	seen := make(map[string]bool, len(selected)+len(rest))
	out := make([]models.Player, 0, len(selected)+len(rest))

	for _, list := range [][]models.Player{selected, rest} {
		for _, p := range list {
			name := p.Name()
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, p)
		}
	}

	return out
}
