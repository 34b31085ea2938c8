package models

import (
	"encoding/json"
	"math"
	"strings"
)

// Category is the position bucket derived from the Pos column.
type Category string

const (
	CategoryDefensive Category = "defensive"
	CategoryMidfield  Category = "midfield"
	CategoryKeeper    Category = "keeper"
	CategoryAttacking Category = "attacking"

	// PositionAll disables the position clause of the filter.
	PositionAll = "all"
)

// CategoryFromPosition applies the prefix rule: DF, MF, GK, anything else attacking.
func CategoryFromPosition(pos string) Category {
	switch {
	case strings.HasPrefix(pos, "DF"):
		return CategoryDefensive
	case strings.HasPrefix(pos, "MF"):
		return CategoryMidfield
	case strings.HasPrefix(pos, "GK"):
		return CategoryKeeper
	default:
		return CategoryAttacking
	}
}

// ValidPositionCategory reports whether s is "all" or a known category.
func ValidPositionCategory(s string) bool {
	switch Category(s) {
	case CategoryDefensive, CategoryMidfield, CategoryKeeper, CategoryAttacking:
		return true
	}
	return s == PositionAll
}

// AgeRange is an inclusive age interval. Unbounded ends are -Inf/+Inf in
// memory and null on the wire.
type AgeRange struct {
	Min float64
	Max float64
}

// UnboundedAgeRange returns (-Inf, +Inf).
func UnboundedAgeRange() AgeRange {
	return AgeRange{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Contains reports whether age lies in the inclusive interval.
func (r AgeRange) Contains(age float64) bool {
	return age >= r.Min && age <= r.Max
}

// Unbounded reports whether neither end restricts anything.
func (r AgeRange) Unbounded() bool {
	return math.IsInf(r.Min, -1) && math.IsInf(r.Max, 1)
}

type ageRangeJSON struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// MarshalJSON encodes infinite bounds as null.
func (r AgeRange) MarshalJSON() ([]byte, error) {
	var out ageRangeJSON
	if !math.IsInf(r.Min, 0) {
		lo := r.Min
		out.Min = &lo
	}
	if !math.IsInf(r.Max, 0) {
		hi := r.Max
		out.Max = &hi
	}
	return json.Marshal(out)
}

// UnmarshalJSON treats absent or null bounds as unbounded.
func (r *AgeRange) UnmarshalJSON(data []byte) error {
	var in ageRangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = UnboundedAgeRange()
	if in.Min != nil {
		r.Min = *in.Min
	}
	if in.Max != nil {
		r.Max = *in.Max
	}
	return nil
}

// FilterConfig is the full filter state. An empty Leagues set means no
// league restriction.
type FilterConfig struct {
	AgeRange         AgeRange `json:"ageRange" yaml:"-"`
	Leagues          []string `json:"leagues" yaml:"leagues"`
	SearchTerm       string   `json:"searchTerm" yaml:"search_term"`
	PositionCategory string   `json:"positionCategory" yaml:"position_category"`
	MinMinutes       float64  `json:"minMinutes" yaml:"min_minutes"`
}

// DefaultFilterConfig returns the pass-everything configuration.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		AgeRange:         UnboundedAgeRange(),
		Leagues:          []string{},
		SearchTerm:       "",
		PositionCategory: PositionAll,
		MinMinutes:       0,
	}
}

// FilterUpdate is a partial FilterConfig. Nil fields keep their current value;
// a present AgeRange replaces the stored range as a whole.
type FilterUpdate struct {
	AgeRange         *AgeRange `json:"ageRange,omitempty"`
	Leagues          *[]string `json:"leagues,omitempty"`
	SearchTerm       *string   `json:"searchTerm,omitempty"`
	PositionCategory *string   `json:"positionCategory,omitempty"`
	MinMinutes       *float64  `json:"minMinutes,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u FilterUpdate) Empty() bool {
	return u.AgeRange == nil && u.Leagues == nil && u.SearchTerm == nil &&
		u.PositionCategory == nil && u.MinMinutes == nil
}
