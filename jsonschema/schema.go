// Package jsonschema implements the JSON Schema validator of spec §4.I:
// draft 2020-12 as the primary dialect (with enough of 2019-09/draft-07
// recognized to not misbehave on older documents), composition, conditional
// application, unevaluated-properties/items tracking, format/content
// validators, and an LRU-bounded cache of compiled regexes.
//
// No dialect-aware JSON Schema validator appears anywhere in the retrieved
// corpus (see DESIGN.md): the validation algorithm here is hand-written
// directly from the spec, using encoding/json and regexp from the standard
// library - both are the only viable choice since no third-party JSON
// Schema or PCRE-superset regex library is exercised by any example repo.
package jsonschema

import (
	"encoding/json"
	"fmt"
)

// Schema is a parsed JSON Schema document. Boolean schemas (`true`/`false`)
// are represented via BoolValue/IsBool; every other schema is an object
// whose recognized keywords are promoted to typed fields; other keywords are
// not decoded into fields, and the schema's raw bytes are kept in raw.
type Schema struct {
	IsBool   bool
	BoolValue bool

	ID     string `json:"$id,omitempty"`
	Schema string `json:"$schema,omitempty"`
	Ref    string `json:"$ref,omitempty"`

	Anchor        string `json:"$anchor,omitempty"`
	DynamicAnchor string `json:"$dynamicAnchor,omitempty"`
	DynamicRef    string `json:"$dynamicRef,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`

	Type  interface{}   `json:"type,omitempty"` // string or []string
	Enum  []interface{} `json:"enum,omitempty"`
	Const *interface{}  `json:"const,omitempty"`

	// String
	MinLength *int    `json:"minLength,omitempty"`
	MaxLength *int    `json:"maxLength,omitempty"`
	Pattern   string  `json:"pattern,omitempty"`
	Format    string  `json:"format,omitempty"`
	ContentEncoding string `json:"contentEncoding,omitempty"`
	ContentMediaType string `json:"contentMediaType,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`

	// Array
	Items       *Schema   `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	Contains    *Schema   `json:"contains,omitempty"`
	MinContains *int      `json:"minContains,omitempty"`
	MaxContains *int      `json:"maxContains,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`
	UniqueItems bool      `json:"uniqueItems,omitempty"`
	UnevaluatedItems *Schema `json:"unevaluatedItems,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PatternProperties    map[string]*Schema `json:"patternProperties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	UnevaluatedProperties *Schema           `json:"unevaluatedProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`
	PropertyNames        *Schema            `json:"propertyNames,omitempty"`
	DependentRequired    map[string][]string `json:"dependentRequired,omitempty"`
	DependentSchemas     map[string]*Schema  `json:"dependentSchemas,omitempty"`

	// Composition
	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	// Conditional
	If   *Schema `json:"if,omitempty"`
	Then *Schema `json:"then,omitempty"`
	Else *Schema `json:"else,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON recognizes the two schema forms defined by the spec: a
// boolean (`true` always passes, `false` always fails) and an object of
// keywords.
func (s *Schema) UnmarshalJSON(data []byte) error {
	s.raw = append(json.RawMessage(nil), data...)
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		s.IsBool = true
		s.BoolValue = b
		return nil
	}
	type alias Schema
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("jsonschema: invalid schema: %w", err)
	}
	*s = Schema(a)
	s.raw = data
	return nil
}

// Parse decodes a schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// typeNames normalizes the "type" keyword (string or array of strings) into
// a slice, returning nil when the keyword is absent (meaning: any type).
func (s *Schema) typeNames() []string {
	switch v := s.Type.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []interface{}:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				names = append(names, str)
			}
		}
		return names
	}
	return nil
}
