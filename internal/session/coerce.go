package session

import (
	"math"
	"strconv"
	"strings"
)

// ParseWeight converts a weight input buffer to kilograms. Comma decimals
// are accepted; anything unparseable, negative or non-finite becomes 0.
func ParseWeight(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseReps converts a reps input buffer to a count. Fractions are
// truncated; anything unparseable or negative becomes 0.
func ParseReps(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n > math.MaxInt32 {
			return 0
		}
		return max(n, 0)
	}
	v := ParseWeight(s)
	if v > math.MaxInt32 {
		return 0
	}
	return int(v)
}
