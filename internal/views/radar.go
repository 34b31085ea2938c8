package views

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// MaxRadarPlayers caps how many players one radar matrix compares
const MaxRadarPlayers = 7

var (
	// ErrTooManyPlayers is returned when more than MaxRadarPlayers are compared
	ErrTooManyPlayers = errors.New("too many players for radar view")

	// ErrUnknownGroup is returned for an attribute group that is not configured
	ErrUnknownGroup = errors.New("unknown radar attribute group")
)

// DefaultRadarGroups are the attribute sets compared per position
var DefaultRadarGroups = map[string][]string{
	"striker":    {"Goals", "Shots", "SoT", "G/Sh", "Assists", "PKwon"},
	"defender":   {"Tkl", "TklWon", "Blocks", "Int", "Clr", "AerWon"},
	"midfielder": {"PasTotCmp", "PasTotAtt", "SCA", "GCA", "CarTotDist", "Fls"},
}

// RadarPlayer holds one player's values as percentages of the group maximum
type RadarPlayer struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Radar is the data behind the radar matrix
type Radar struct {
	Group      string        `json:"group"`
	Attributes []string      `json:"attributes"`
	Players    []RadarPlayer `json:"players"`
}

// BuildRadar rescales the group's attributes to percent-of-max across players.
// Values that are not numeric are reported as 0. Derived metrics may be used
// as attributes.
func BuildRadar(eval *derived.Evaluator, players []models.Player, group string, groups map[string][]string) (Radar, error) {
	if len(players) > MaxRadarPlayers {
		return Radar{}, fmt.Errorf("%w: %d selected, max %d", ErrTooManyPlayers, len(players), MaxRadarPlayers)
	}
	if groups == nil {
		groups = DefaultRadarGroups
	}

	key := strings.ToLower(strings.TrimSpace(group))
	attributes, ok := groups[key]
	if !ok {
		return Radar{}, fmt.Errorf("%w: %q (have %s)", ErrUnknownGroup, group, strings.Join(GroupNames(groups), ", "))
	}

	scaled := eval.PercentOfMax(players, attributes)

	radar := Radar{
		Group:      key,
		Attributes: attributes,
		Players:    make([]RadarPlayer, 0, len(scaled)),
	}
	for _, p := range scaled {
		values := make([]float64, len(attributes))
		for i, attr := range attributes {
			values[i], _ = p.Number(attr)
		}
		radar.Players = append(radar.Players, RadarPlayer{Name: p.Name(), Values: values})
	}

	return radar, nil
}

// GroupNames returns the configured group names, sorted
func GroupNames(groups map[string][]string) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
