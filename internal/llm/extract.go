package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// fencePattern matches a markdown code fence with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.*?)```")

// ExtractJSON digs a JSON object or array out of a model response. Models
// routinely wrap structured output in markdown fences or surround it with
// prose; the stages always parse through this helper so that wrapping
// never counts as a schema failure. Fenced payloads are preferred over
// bare ones.
func ExtractJSON(response string) (string, error) {
	for _, m := range fencePattern.FindAllStringSubmatch(response, -1) {
		lang := strings.ToLower(m[1])
		if lang != "" && lang != "json" {
			continue
		}
		body := strings.TrimSpace(m[2])
		if parses(body) {
			return body, nil
		}
	}

	if body := firstBalancedJSON(response); body != "" && parses(body) {
		return body, nil
	}

	return "", types.NewError(types.LLM_RESPONSE_UNPARSEABLE,
		"no JSON object or array found in model response")
}

// ExtractJSONAs extracts and unmarshals in one step.
func ExtractJSONAs[T any](response string) (T, error) {
	var out T
	body, err := ExtractJSON(response)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, types.WrapError(types.LLM_RESPONSE_UNPARSEABLE,
			"extracted JSON does not fit target type", err)
	}
	return out, nil
}

// firstBalancedJSON returns the first bracket-balanced {...} or [...]
// span in s, respecting string literals and escapes. Empty if none.
func firstBalancedJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	open := s[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth, inString, escaped := 0, false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func parses(s string) bool {
	var raw json.RawMessage
	return json.Unmarshal([]byte(s), &raw) == nil
}
