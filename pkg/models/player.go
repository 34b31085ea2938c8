package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Dataset field names the core relies on. Every other field is passed through untouched.
const (
	FieldName     = "Player"
	FieldAltName  = "name"
	FieldAge      = "Age"
	FieldLeague   = "Comp"
	FieldPosition = "Pos"
	FieldSquad    = "Squad"
	FieldMinutes  = "Min"
	FieldGoals    = "Goals"
	FieldAssists  = "Assists"
	FieldCategory = "category"
)

// Player is one row of the dataset: a flat field -> value record.
// Identity is the display name; two rows sharing a name are indistinguishable
// to the selection store.
type Player map[string]interface{}

// Name returns the display name, preferring the dataset's "Player" column.
func (p Player) Name() string {
	if s, ok := p[FieldName].(string); ok && s != "" {
		return s
	}
	if s, ok := p[FieldAltName].(string); ok {
		return s
	}
	return ""
}

// String returns a field as text, or "" when absent.
func (p Player) String(field string) string {
	switch v := p[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Number coerces a field to a finite float64. The second return is false when
// the field is missing or not numeric.
func (p Player) Number(field string) (float64, bool) {
	return ToNumber(p[field])
}

// Category returns the derived position category attached at load time.
func (p Player) Category() Category {
	if c, ok := p[FieldCategory].(string); ok {
		return Category(c)
	}
	return CategoryFromPosition(p.String(FieldPosition))
}

// Clone returns a shallow copy of the record.
func (p Player) Clone() Player {
	out := make(Player, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ToNumber converts a raw dataset value to a finite float64.
func ToNumber(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// raw exports use decimal commas
			parsed, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
			if err != nil {
				return 0, false
			}
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FindByName returns the first player in the slice carrying name.
func FindByName(players []Player, name string) (Player, bool) {
	for _, p := range players {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Names returns the display names of players, in order.
func Names(players []Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name()
	}
	return names
}
