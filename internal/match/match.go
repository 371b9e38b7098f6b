/*
PURPOSE:
  Label matching between expected labels and API predictions.
  Pure functions, no I/O.

REQUIREMENTS:
  User-specified:
  - Case-insensitive, whitespace-normalized comparison.
  - Containment counts as a match in either direction ("apple scab" should
    match "apple apple scab").
  - Fall back to the full suggestion list when the top prediction misses.

  Implementation-discovered:
  - The NOT_A_PLANT sentinel needs its own rule; containment would otherwise
    never match it.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Uses: internal/model (sentinel constant only)

ERROR HANDLING:
  - None. Matching cannot fail.

IMPLEMENTATION RULES:
  - Keep this package free of side effects so it stays trivially testable.
  - Do not tighten the containment rule: short or generic expected labels can
    false-positive, and that is an accepted trade-off.

USAGE:
  ok := match.Matches("apple scab", pred.Label, pred.Suggestions)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - Update if the API starts returning structured taxonomy IDs instead of
    free-form names.
*/

package match

import (
	"strings"

	"github.com/verdantqa/plantcheck/internal/model"
)

// Normalize lowercases, trims, and collapses internal whitespace runs to
// single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// contains reports whether a and b are equal or either contains the other.
// Inputs must already be normalized.
func contains(a, b string) bool {
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// Matches reports whether the expected label matches the predicted label or
// any of the alternate suggestion names.
//
// The sentinel prediction only matches an expected label of "not a plant" or
// "not_a_plant". Everything else uses bidirectional containment on normalized
// strings, first against the top prediction and then against each alternate.
func Matches(expected, predicted string, alternates []string) bool {
	if predicted == model.NotAPlantLabel {
		e := strings.ToLower(expected)
		return e == "not_a_plant" || e == "not a plant"
	}

	e := Normalize(expected)
	if contains(e, Normalize(predicted)) {
		return true
	}

	for _, alt := range alternates {
		if contains(e, Normalize(alt)) {
			return true
		}
	}

	return false
}
