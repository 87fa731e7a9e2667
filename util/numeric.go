package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SafeNumeric converts v to a number. Integers stay int, everything else
// that parses becomes float64. Values that cannot be read as a number yield
// fallback.
func SafeNumeric(v any, fallback any) any {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case uint:
		return int(n)
	case uint32:
		return int(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	case fmt.Stringer:
		return SafeNumeric(n.String(), fallback)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// SafeInt is SafeNumeric restricted to integers; floats are truncated.
func SafeInt(v any, fallback int) int {
	switch n := SafeNumeric(v, nil).(type) {
	case int:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return int(n)
	}
	return fallback
}
