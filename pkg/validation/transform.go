package validation

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Transform coerces a raw input value before the kind check. A transform
// that cannot coerce its input returns it unchanged so the kind check reports
// the problem.
type Transform func(raw any) any

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ToNumber parses numeric strings into float64.
func ToNumber(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return raw
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return raw
	}
	return v
}

// ToDate parses ISO-8601 strings into time.Time.
func ToDate(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	if t, ok := parseISO(s); ok {
		return t
	}
	return raw
}

// ToBool parses boolean strings ("true", "false", "1", "0", ...).
func ToBool(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return raw
	}
	return v
}

// Trim strips surrounding whitespace from strings.
func Trim(raw any) any {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return raw
}

// Chain applies transforms left to right.
func Chain(transforms ...Transform) Transform {
	return func(raw any) any {
		for _, t := range transforms {
			if t != nil {
				raw = t(raw)
			}
		}
		return raw
	}
}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
