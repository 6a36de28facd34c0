// Package confidence reads the self-reported confidence marker that the
// language model appends to every reply.
package confidence

import (
	"regexp"
	"strings"
)

// Level is the confidence a generated reply reports about itself
type Level string

const (
	High    Level = "High"
	Medium  Level = "Medium"
	Low     Level = "Low"
	Unknown Level = "Unknown"
)

// markerPattern matches "Confidence: <Level>" with an optional trailing period.
// Matching is case-sensitive on purpose: the model is told the exact spelling.
var markerPattern = regexp.MustCompile(`Confidence: (High|Medium|Low)\.?`)

// Extract returns the first confidence level found in text together with the
// text with every marker removed and surrounding whitespace trimmed. When no
// marker is present the level is Unknown.
func Extract(text string) (Level, string) {
	level := Unknown
	if m := markerPattern.FindStringSubmatch(text); m != nil {
		level = Level(m[1])
	}
	return level, Strip(text)
}

// Strip removes every confidence marker from text and trims it.
func Strip(text string) string {
	return strings.TrimSpace(markerPattern.ReplaceAllString(text, ""))
}

// IsLow reports whether the level asks for escalation
func (l Level) IsLow() bool {
	return l == Low
}
