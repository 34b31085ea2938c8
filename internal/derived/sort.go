package derived

import (
	"fmt"
	"sort"
	"strings"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Order is a sort direction
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseOrder accepts "asc" or "desc" (case-insensitive); empty means asc
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return "", fmt.Errorf("invalid sort order %q", s)
	}
}

// Toggle flips the direction, used for repeated clicks on the same header
func (o Order) Toggle() Order {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// Sort returns a sorted copy of players. The input slice is never reordered.
// Numeric values compare numerically through the evaluator; rows without a
// numeric value sort after those with one and compare by lower-cased text.
func (e *Evaluator) Sort(players []models.Player, column string, order Order) []models.Player {
	out := make([]models.Player, len(players))
	copy(out, players)

	desc := order == Descending
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := e.Value(out[i], column)
		b, bok := e.Value(out[j], column)

		switch {
		case aok && bok:
			if desc {
				return a > b
			}
			return a < b
		case aok != bok:
			return aok
		}

		as := strings.ToLower(out[i].String(column))
		bs := strings.ToLower(out[j].String(column))
		if desc {
			return as > bs
		}
		return as < bs
	})

	return out
}

// Top returns at most n leading players; n <= 0 returns all of them
func Top(players []models.Player, n int) []models.Player {
	if n <= 0 || n >= len(players) {
		return players
	}
	return players[:n]
}
