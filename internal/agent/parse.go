package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:json)?[ \t]*\r?\n?")
	fenceClose = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// ParseDecision recovers a validated Decision from raw generator
// text, or nil when none can be found. It never returns an error;
// absence of a decision is the caller's problem.
//
// Strategy: strip an optional code fence, try the whole text as one
// JSON object, then fall back to scanning for brace-balanced
// substrings. When several substrings parse and carry a recognized
// action, the last one wins. Models that think out loud tend to emit
// an example object before the real one.
func ParseDecision(text string) *Decision {
	t := strings.TrimSpace(text)
	t = fenceOpen.ReplaceAllString(t, "")
	t = fenceClose.ReplaceAllString(t, "")
	t = strings.TrimSpace(t)

	if d := decodeDecision(t); d != nil {
		d.Raw = text
		return d
	}

	var best *Decision
	for start := 0; start < len(t); start++ {
		if t[start] != '{' {
			continue
		}
		depth := 0
	scan:
		for end := start; end < len(t); end++ {
			switch t[end] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					if d := decodeDecision(t[start : end+1]); d != nil {
						best = d
					}
					break scan
				}
			}
		}
	}
	if best != nil {
		best.Raw = text
	}
	return best
}

// decodeDecision parses candidate as a JSON object and requires the
// action discriminator to be present and recognized.
func decodeDecision(candidate string) *Decision {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil
	}
	rawAction, ok := probe["action"]
	if !ok {
		return nil
	}
	var action string
	if err := json.Unmarshal(rawAction, &action); err != nil {
		return nil
	}
	if !knownActions[Action(action)] {
		return nil
	}
	var d Decision
	if err := json.Unmarshal([]byte(candidate), &d); err != nil {
		return nil
	}
	return &d
}
