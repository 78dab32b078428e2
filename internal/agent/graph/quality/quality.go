// Package quality scores synthesized answers against fixed heuristics. The
// scorer is a pure function so the gate's routing is reproducible: the same
// response always yields the same score.
package quality

import "strings"

// Check names, reported alongside the aggregate score.
const (
	CheckLength        = "sufficient_length"
	CheckConcreteness  = "concreteness"
	CheckActionability = "actionability"
)

// minResponseRunes is the length floor for a useful answer.
const minResponseRunes = 50

var concretenessMarkers = []string{"구체적", "예시"}
var actionabilityMarkers = []string{"추천", "권장", "제안"}

// Report carries the aggregate score plus each heuristic's verdict.
type Report struct {
	Score  float64         `json:"score"`
	Checks map[string]bool `json:"checks"`
}

// Score evaluates a synthesized response. Three boolean heuristics — length,
// concreteness markers, actionability markers — averaged in steps of 1/3.
func Score(response string) float64 {
	return Evaluate(response).Score
}

// Evaluate runs the heuristics and returns the full report.
func Evaluate(response string) Report {
	checks := map[string]bool{
		CheckLength:        len([]rune(response)) > minResponseRunes,
		CheckConcreteness:  containsAny(response, concretenessMarkers),
		CheckActionability: containsAny(response, actionabilityMarkers),
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return Report{
		Score:  float64(passed) / float64(len(checks)),
		Checks: checks,
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
