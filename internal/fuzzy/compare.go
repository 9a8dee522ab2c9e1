// Package fuzzy compares extracted attribute values. Vision extraction
// produces near-synonymous free text ("olive green" vs "sage green") that
// should not be penalized as a full mismatch, while truly different values
// must still score zero.
package fuzzy

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cliplens/match-cli/internal/schema"
)

// Graduated similarity levels. Exact equality scores 1.0; substring
// containment is treated as a shade variation; family co-membership as a
// close variant.
const (
	scoreExact     = 1.0
	scoreSubstring = 0.9
	scoreFamily    = 0.7
	scoreMismatch  = 0.0
)

// Similarity returns how alike two extracted values are for the named
// rubric attribute, in [0,1], with a human-readable reason. It is symmetric:
// Similarity(a,b) == Similarity(b,a).
func Similarity(attribute string, reference, candidate any, rubric *schema.Rubric) (float64, string) {
	// Non-string values use plain equality; no fuzziness for numbers/bools.
	refStr, refIsStr := reference.(string)
	candStr, candIsStr := candidate.(string)
	if !refIsStr || !candIsStr {
		if equalScalar(reference, candidate) {
			return scoreExact, "exact match"
		}
		return scoreMismatch, fmt.Sprintf("%v ≠ %v", reference, candidate)
	}

	ref := normalize(refStr)
	cand := normalize(candStr)
	if ref == "" || cand == "" {
		return scoreMismatch, "empty value"
	}

	if ref == cand {
		return scoreExact, "exact match"
	}

	if strings.Contains(ref, cand) || strings.Contains(cand, ref) {
		return scoreSubstring, fmt.Sprintf("shade variation (%s ~ %s)", refStr, candStr)
	}

	if attr := rubric.Attribute(attribute); attr != nil && attr.Family != nil {
		refFam := familyOf(ref, attr.Family)
		candFam := familyOf(cand, attr.Family)
		if refFam != "" && refFam == candFam {
			return scoreFamily, fmt.Sprintf("same %s family (%s ~ %s)", refFam, refStr, candStr)
		}
	}

	return scoreMismatch, fmt.Sprintf("%s ≠ %s", refStr, candStr)
}

// familyOf returns the name of the first family containing the value, or "".
// Membership is checked exact-first, then by containment, so "olive green"
// still lands in the green family. Families are visited in sorted name order
// so a value matching members of two families resolves the same way on every
// run.
func familyOf(value string, families map[string][]string) string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, m := range families[name] {
			if value == m {
				return name
			}
		}
	}
	for _, name := range names {
		for _, m := range families[name] {
			if strings.Contains(value, m) || strings.Contains(m, value) {
				return name
			}
		}
	}
	return ""
}

// equalScalar compares two non-string values: bools by identity, numbers by
// value regardless of concrete type (JSON decoding yields float64).
func equalScalar(a, b any) bool {
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return math.Abs(af-bf) < 1e-9
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
