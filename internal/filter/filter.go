package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// ErrInvalidCategory is returned when an update names an unknown position category
var ErrInvalidCategory = errors.New("invalid position category")

// Engine holds the filter configuration and evaluates it against players.
// It is not safe for concurrent use; the explorer manager serializes access.
type Engine struct {
	config models.FilterConfig
	eval   *derived.Evaluator
}

// NewEngine creates a filter engine starting from initial
func NewEngine(eval *derived.Evaluator, initial models.FilterConfig) *Engine {
	if initial.PositionCategory == "" {
		initial.PositionCategory = models.PositionAll
	}
	if initial.Leagues == nil {
		initial.Leagues = []string{}
	}
	return &Engine{
		config: initial,
		eval:   eval,
	}
}

// Config returns a copy of the current configuration
func (e *Engine) Config() models.FilterConfig {
	cfg := e.config
	cfg.Leagues = append([]string(nil), e.config.Leagues...)
	return cfg
}

// Merge applies a partial update. Every present field replaces the stored one
// wholesale, including AgeRange. An invalid update leaves the config untouched.
func (e *Engine) Merge(u models.FilterUpdate) error {
	if u.PositionCategory != nil && !models.ValidPositionCategory(*u.PositionCategory) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, *u.PositionCategory)
	}

	if u.AgeRange != nil {
		e.config.AgeRange = *u.AgeRange
	}
	if u.Leagues != nil {
		e.config.Leagues = append([]string{}, (*u.Leagues)...)
	}
	if u.SearchTerm != nil {
		e.config.SearchTerm = *u.SearchTerm
	}
	if u.PositionCategory != nil {
		e.config.PositionCategory = *u.PositionCategory
	}
	if u.MinMinutes != nil {
		e.config.MinMinutes = *u.MinMinutes
	}

	return nil
}

// Apply returns the players matching the current configuration, in input order
func (e *Engine) Apply(players []models.Player) []models.Player {
	m := newMatcher(e.config, e.eval)

	filtered := make([]models.Player, 0, len(players))
	for _, p := range players {
		if m.matches(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Matches reports whether a single player passes the current configuration
func (e *Engine) Matches(p models.Player) bool {
	return newMatcher(e.config, e.eval).matches(p)
}

// matcher is a FilterConfig prepared for repeated evaluation
type matcher struct {
	cfg     models.FilterConfig
	eval    *derived.Evaluator
	leagues map[string]bool
	search  string
}

func newMatcher(cfg models.FilterConfig, eval *derived.Evaluator) *matcher {
	leagues := make(map[string]bool, len(cfg.Leagues))
	for _, l := range cfg.Leagues {
		leagues[l] = true
	}
	return &matcher{
		cfg:     cfg,
		eval:    eval,
		leagues: leagues,
		search:  strings.ToLower(cfg.SearchTerm),
	}
}

func (m *matcher) matches(p models.Player) bool {
	return m.matchesAge(p) &&
		m.matchesLeague(p) &&
		m.matchesSearch(p) &&
		m.matchesPosition(p) &&
		m.matchesMinutes(p)
}

// An unreadable age only passes when the range is unbounded
func (m *matcher) matchesAge(p models.Player) bool {
	age, ok := m.eval.Value(p, models.FieldAge)
	if !ok {
		return m.cfg.AgeRange.Unbounded()
	}
	return m.cfg.AgeRange.Contains(age)
}

// No leagues selected = no league restriction
func (m *matcher) matchesLeague(p models.Player) bool {
	if len(m.leagues) == 0 {
		return true
	}
	return m.leagues[p.String(models.FieldLeague)]
}

func (m *matcher) matchesSearch(p models.Player) bool {
	if m.search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name()), m.search)
}

func (m *matcher) matchesPosition(p models.Player) bool {
	return m.cfg.PositionCategory == models.PositionAll ||
		string(p.Category()) == m.cfg.PositionCategory
}

func (m *matcher) matchesMinutes(p models.Player) bool {
	return m.eval.Evaluate(p, models.FieldMinutes) >= m.cfg.MinMinutes
}
