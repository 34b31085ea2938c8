package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Transform maps a raw field value to its processed value. It must be pure.
type Transform func(v interface{}) interface{}

// Transforms maps a field name to the transform applied to it at load time
type Transforms map[string]Transform

// NamedTransform returns one of the built-in transforms usable from configuration:
// int, float, string, trim, lower.
func NamedTransform(name string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int":
		return toInt, nil
	case "float", "number":
		return toFloat, nil
	case "string":
		return toString, nil
	case "trim":
		return trim, nil
	case "lower":
		return lower, nil
	default:
		return nil, fmt.Errorf("unknown column transform %q", name)
	}
}

// ParseTransforms builds Transforms from a field -> transform-name mapping
func ParseTransforms(names map[string]string) (Transforms, error) {
	out := make(Transforms, len(names))
	fields := make([]string, 0, len(names))
	for field := range names {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		fn, err := NamedTransform(names[field])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field, err)
		}
		out[field] = fn
	}
	return out, nil
}

// toInt keeps the leading integer, so "27-104" becomes 27. Values with no
// leading integer are returned unchanged and stay non-numeric.
func toInt(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		end := 0
		for end < len(s) && (unicode.IsDigit(rune(s[end])) || (end == 0 && (s[0] == '-' || s[0] == '+'))) {
			end++
		}
		n, err := strconv.Atoi(s[:end])
		if err != nil {
			return v
		}
		return float64(n)
	}
	if f, ok := models.ToNumber(v); ok {
		return math.Trunc(f)
	}
	return v
}

func toFloat(v interface{}) interface{} {
	if f, ok := models.ToNumber(v); ok {
		return f
	}
	return v
}

func toString(v interface{}) interface{} {
	return models.Player{"v": v}.String("v")
}

func trim(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

func lower(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}
