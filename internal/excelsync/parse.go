package excelsync

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeHeader canonicalizes a header cell: trimmed, lower-cased,
// spaces and dashes to underscores.
func NormalizeHeader(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}

// SafeString returns nil for empty cells, the trimmed value otherwise.
func SafeString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SafeFloat parses a cell as float64; empty or unparseable cells become nil.
func SafeFloat(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &f
}

// SafeInt parses a cell as an integer, accepting float-formatted values
// ("4.0"). The second return reports whether the cell parsed; callers that
// must surface the anomaly check it, callers that just coerce take the default.
func SafeInt(value string, def int) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return def, false
	}
	return int(f), true
}

// RoundCoordinate rounds a coordinate to 6 decimal places for export.
func RoundCoordinate(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return math.Round(*value*1e6) / 1e6
}
