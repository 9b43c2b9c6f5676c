// Package match decides whether a desired answer refers to one of a
// control's visible option labels.
package match

import "strings"

// Fuzzy reports whether candidate and desired match after trimming: either
// equal, or one contains the other. Empty strings never match.
//
// Containment is deliberately loose: a one-character option such as "是"
// matches any answer containing it.
func Fuzzy(candidate, desired string) bool {
	x := strings.TrimSpace(candidate)
	y := strings.TrimSpace(desired)
	if x == "" || y == "" {
		return false
	}
	if x == y {
		return true
	}
	return strings.Contains(x, y) || strings.Contains(y, x)
}

// PickBest returns the index of the first option whose label equals desired,
// else the first that fuzzy-matches it, else -1. Options with an empty
// label are skipped.
func PickBest(labels []string, desired string) int {
	wanted := strings.TrimSpace(desired)
	if wanted == "" {
		return -1
	}
	fuzzy := -1
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if label == wanted {
			return i
		}
		if fuzzy < 0 && Fuzzy(label, wanted) {
			fuzzy = i
		}
	}
	return fuzzy
}
