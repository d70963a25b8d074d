package services

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// MissingLabel stands in for an absent label value.
const MissingLabel = "nan"

// LabelKey renders a model label or dataset value in canonical form so that
// 1, 1.0 and "1" compare equal.
func LabelKey(v any) string {
	switch t := v.(type) {
	case nil:
		return MissingLabel
	case string:
		return canonicalText(t)
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case bool:
		return strconv.FormatBool(t)
	default:
		return canonicalText(fmt.Sprint(t))
	}
}

func canonicalText(s string) string {
	trimmed := strings.TrimSpace(s)
	if isBool(trimmed) {
		return strings.ToLower(trimmed)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return formatFloat(f)
	}
	return s
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return MissingLabel
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SortLabels orders labels numerically when every label is a number and
// lexically otherwise. The input is not modified.
func SortLabels(labels []string) []string {
	out := slices.Clone(labels)
	numeric := true
	values := make(map[string]float64, len(out))
	for _, l := range out {
		f, err := strconv.ParseFloat(l, 64)
		if err != nil || math.IsNaN(f) {
			numeric = false
			break
		}
		values[l] = f
	}
	if numeric {
		slices.SortFunc(out, func(a, b string) int {
			switch {
			case values[a] < values[b]:
				return -1
			case values[a] > values[b]:
				return 1
			}
			return strings.Compare(a, b)
		})
		return out
	}
	slices.Sort(out)
	return out
}
