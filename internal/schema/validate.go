package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Violation is one schema failure with the JSON path where it occurred,
// e.g. "$.definition_of_done[2]".
type Violation struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

func (v Violation) String() string {
	if v.Expected != "" {
		return fmt.Sprintf("%s: %s (expected %s, got %s)", v.Path, v.Message, v.Expected, v.Actual)
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks raw JSON against the schema and returns every violation
// found, folded into one error. Collecting all failures matters: the
// caller logs them once and regenerates, rather than fixing one field per
// round trip.
func (s *Schema) Validate(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return types.WrapError(types.PIPELINE_SCHEMA_MISMATCH, "payload is not valid JSON", err)
	}

	violations := s.check(value, "$")
	if len(violations) == 0 {
		return nil
	}

	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.String()
	}
	return types.NewError(types.PIPELINE_SCHEMA_MISMATCH, strings.Join(msgs, "; "))
}

// ValidateInto validates and, on success, unmarshals into target.
func (s *Schema) ValidateInto(data []byte, target any) error {
	if err := s.Validate(data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return types.WrapError(types.PIPELINE_SCHEMA_MISMATCH, "payload does not fit target type", err)
	}
	return nil
}

func (s *Schema) check(value any, path string) []Violation {
	var out []Violation

	if s.Type != "" {
		actual := jsonType(value)
		if !typeMatches(s.Type, actual, value) {
			return []Violation{{Path: path, Message: "type mismatch", Expected: s.Type, Actual: actual}}
		}
	}

	switch s.Type {
	case "object":
		out = append(out, s.checkObject(value.(map[string]any), path)...)
	case "array":
		out = append(out, s.checkArray(value.([]any), path)...)
	case "string":
		out = append(out, s.checkString(value.(string), path)...)
	case "number", "integer":
		out = append(out, s.checkNumber(asFloat(value), path)...)
	}

	if len(s.Enum) > 0 {
		out = append(out, s.checkEnum(value, path)...)
	}
	return out
}

func (s *Schema) checkObject(obj map[string]any, path string) []Violation {
	var out []Violation

	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			out = append(out, Violation{
				Path:    path + "." + name,
				Message: "required field missing",
			})
		}
	}

	if s.AdditionalProperties != nil && !*s.AdditionalProperties {
		for name := range obj {
			if _, declared := s.Properties[name]; !declared {
				out = append(out, Violation{
					Path:    path + "." + name,
					Message: "undeclared field",
				})
			}
		}
	}

	for name, val := range obj {
		prop, ok := s.Properties[name]
		if !ok {
			continue
		}
		out = append(out, prop.check(val, path+"."+name)...)
	}
	return out
}

func (s *Schema) checkArray(arr []any, path string) []Violation {
	var out []Violation

	if s.MinItems != nil && len(arr) < *s.MinItems {
		out = append(out, Violation{
			Path: path, Message: "too few items",
			Expected: fmt.Sprintf(">= %d items", *s.MinItems),
			Actual:   fmt.Sprintf("%d items", len(arr)),
		})
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		out = append(out, Violation{
			Path: path, Message: "too many items",
			Expected: fmt.Sprintf("<= %d items", *s.MaxItems),
			Actual:   fmt.Sprintf("%d items", len(arr)),
		})
	}

	if s.Items != nil {
		for i, item := range arr {
			out = append(out, s.Items.check(item, fmt.Sprintf("%s[%d]", path, i))...)
		}
	}
	return out
}

func (s *Schema) checkString(str, path string) []Violation {
	var out []Violation
	if s.MinLength != nil && len(str) < *s.MinLength {
		out = append(out, Violation{
			Path: path, Message: "string too short",
			Expected: fmt.Sprintf("length >= %d", *s.MinLength),
			Actual:   fmt.Sprintf("length %d", len(str)),
		})
	}
	if s.MaxLength != nil && len(str) > *s.MaxLength {
		out = append(out, Violation{
			Path: path, Message: "string too long",
			Expected: fmt.Sprintf("length <= %d", *s.MaxLength),
			Actual:   fmt.Sprintf("length %d", len(str)),
		})
	}
	return out
}

func (s *Schema) checkNumber(num float64, path string) []Violation {
	var out []Violation
	if s.Type == "integer" && num != float64(int64(num)) {
		out = append(out, Violation{
			Path: path, Message: "not an integer",
			Expected: "integer", Actual: fmt.Sprintf("%v", num),
		})
	}
	if s.Minimum != nil && num < *s.Minimum {
		out = append(out, Violation{
			Path: path, Message: "below minimum",
			Expected: fmt.Sprintf(">= %v", *s.Minimum), Actual: fmt.Sprintf("%v", num),
		})
	}
	if s.Maximum != nil && num > *s.Maximum {
		out = append(out, Violation{
			Path: path, Message: "above maximum",
			Expected: fmt.Sprintf("<= %v", *s.Maximum), Actual: fmt.Sprintf("%v", num),
		})
	}
	return out
}

func (s *Schema) checkEnum(value any, path string) []Violation {
	str := fmt.Sprintf("%v", value)
	for _, allowed := range s.Enum {
		if str == allowed {
			return nil
		}
	}
	return []Violation{{
		Path: path, Message: "value not in enum",
		Expected: "one of: " + strings.Join(s.Enum, ", "),
		Actual:   str,
	}}
}

// typeMatches treats whole-valued JSON numbers as integers, since
// encoding/json decodes every number to float64.
func typeMatches(expected, actual string, value any) bool {
	if expected == actual {
		return true
	}
	if expected == "integer" && actual == "number" {
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	}
	return false
}

func jsonType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

func asFloat(value any) float64 {
	f, _ := value.(float64)
	return f
}
