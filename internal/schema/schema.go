// Package schema implements the JSON Schema subset used to validate stage
// outputs and externally supplied contract templates: type, required,
// properties, items, enum, numeric ranges, string lengths, and array item
// counts. Validation failures report the full JSON path of the offending
// field so a bad model response is diagnosable from the error alone.
package schema

import "encoding/json"

// Schema is a recursive JSON Schema node (draft-07 subset). The same type
// describes objects, arrays, and scalar fields; which constraints apply
// depends on Type.
type Schema struct {
	Type                 string            `json:"type,omitempty"`
	Description          string            `json:"description,omitempty"`
	Properties           map[string]Schema `json:"properties,omitempty"`
	Required             []string          `json:"required,omitempty"`
	Items                *Schema           `json:"items,omitempty"`
	Enum                 []string          `json:"enum,omitempty"`
	Minimum              *float64          `json:"minimum,omitempty"`
	Maximum              *float64          `json:"maximum,omitempty"`
	MinLength            *int              `json:"minLength,omitempty"`
	MaxLength            *int              `json:"maxLength,omitempty"`
	MinItems             *int              `json:"minItems,omitempty"`
	MaxItems             *int              `json:"maxItems,omitempty"`
	AdditionalProperties *bool             `json:"additionalProperties,omitempty"`
}

// Parse decodes a JSON-encoded schema document, as supplied by callers for
// the contract template.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Object builds an object schema with the given properties and required list.
func Object(properties map[string]Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: properties, Required: required}
}

// Array builds an array schema over the given item schema.
func Array(items Schema) Schema {
	return Schema{Type: "array", Items: &items}
}

// Str builds a string schema.
func Str() Schema { return Schema{Type: "string"} }

// Num builds a number schema.
func Num() Schema { return Schema{Type: "number"} }

// Int builds an integer schema.
func Int() Schema { return Schema{Type: "integer"} }

// Bool builds a boolean schema.
func Bool() Schema { return Schema{Type: "boolean"} }

// WithEnum restricts the schema to the given values.
func (s Schema) WithEnum(values ...string) Schema {
	s.Enum = values
	return s
}

// WithRange bounds a numeric schema inclusively.
func (s Schema) WithRange(min, max float64) Schema {
	s.Minimum = &min
	s.Maximum = &max
	return s
}

// WithItemCount bounds the number of elements in an array schema.
func (s Schema) WithItemCount(min, max int) Schema {
	s.MinItems = &min
	s.MaxItems = &max
	return s
}

// WithMaxItems caps the number of elements in an array schema.
func (s Schema) WithMaxItems(max int) Schema {
	s.MaxItems = &max
	return s
}

// Closed disallows properties beyond those declared.
func (s Schema) Closed() Schema {
	f := false
	s.AdditionalProperties = &f
	return s
}
