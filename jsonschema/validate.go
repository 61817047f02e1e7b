package jsonschema

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ValidationError describes a single keyword failure, located by a JSON
// Pointer into the instance that failed.
type ValidationError struct {
	InstancePath string
	Keyword      string
	Message      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.InstancePath, e.Keyword, e.Message)
}

// Result is the outcome of validating one instance against one schema.
type Result struct {
	Valid  bool
	Errors []*ValidationError
}

// evalState tracks, for a single object/array evaluation, which
// properties/items have already been accounted for by a keyword earlier in
// the same schema application - required by unevaluatedProperties/
// unevaluatedItems per spec §4.I.
type evalState struct {
	evaluatedProps map[string]bool
	evaluatedIdx   map[int]bool
}

func newEvalState() *evalState {
	return &evalState{evaluatedProps: map[string]bool{}, evaluatedIdx: map[int]bool{}}
}

func (e *evalState) merge(other *evalState) {
	if other == nil {
		return
	}
	for k := range other.evaluatedProps {
		e.evaluatedProps[k] = true
	}
	for k := range other.evaluatedIdx {
		e.evaluatedIdx[k] = true
	}
}

// Validator validates instances against a root schema, resolving local
// "$ref"/"$dynamicRef" pointers against that same root (external reference
// resolution over the network is out of scope, per spec's Non-goals).
type Validator struct {
	root  *Schema
	cache *Cache
}

// New constructs a Validator for root, using cache for compiled-regex
// reuse. A nil cache disables caching.
func New(root *Schema, cache *Cache) *Validator {
	return &Validator{root: root, cache: cache}
}

// Validate validates instance (already decoded via encoding/json, so
// numbers are float64, objects are map[string]interface{}, etc.) against
// the validator's root schema.
func (v *Validator) Validate(instance interface{}) *Result {
	res := &Result{Valid: true}
	v.validateAt(v.root, instance, "", res, newEvalState())
	res.Valid = len(res.Errors) == 0
	return res
}

func (v *Validator) fail(res *Result, path, keyword, msg string) {
	res.Errors = append(res.Errors, &ValidationError{InstancePath: path, Keyword: keyword, Message: msg})
}

// resolveRef resolves a local "#/..." JSON Pointer or "#name" anchor
// against the validator's root schema.
func (v *Validator) resolveRef(ref string) (*Schema, error) {
	if ref == "#" || ref == "" {
		return v.root, nil
	}
	if strings.HasPrefix(ref, "#/") {
		return v.resolvePointer(strings.TrimPrefix(ref, "#/"))
	}
	if strings.HasPrefix(ref, "#") {
		return v.resolveAnchor(strings.TrimPrefix(ref, "#"))
	}
	return nil, fmt.Errorf("jsonschema: external $ref resolution is not supported: %s", ref)
}

func (v *Validator) resolvePointer(pointer string) (*Schema, error) {
	cur := v.root
	if pointer == "" {
		return cur, nil
	}
	for _, tok := range strings.Split(pointer, "/") {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tok = strings.ReplaceAll(tok, "~0", "~")
		switch tok {
		case "$defs", "definitions":
			continue
		case "properties":
			continue
		default:
			if cur.Defs != nil {
				if next, ok := cur.Defs[tok]; ok {
					cur = next
					continue
				}
			}
			if cur.Properties != nil {
				if next, ok := cur.Properties[tok]; ok {
					cur = next
					continue
				}
			}
			return nil, fmt.Errorf("jsonschema: unresolved $ref segment %q", tok)
		}
	}
	return cur, nil
}

func (v *Validator) resolveAnchor(anchor string) (*Schema, error) {
	var found *Schema
	var walk func(s *Schema)
	walk = func(s *Schema) {
		if s == nil || found != nil {
			return
		}
		if s.Anchor == anchor || s.DynamicAnchor == anchor {
			found = s
			return
		}
		for _, def := range s.Defs {
			walk(def)
		}
		for _, p := range s.Properties {
			walk(p)
		}
	}
	walk(v.root)
	if found == nil {
		return nil, fmt.Errorf("jsonschema: unresolved anchor %q", anchor)
	}
	return found, nil
}

// validateAt validates instance against schema at instancePath, recording
// every keyword it successfully evaluated into state so a caller-level
// unevaluatedProperties/unevaluatedItems can see it.
func (v *Validator) validateAt(schema *Schema, instance interface{}, path string, res *Result, state *evalState) {
	if schema == nil {
		return
	}
	if schema.IsBool {
		if !schema.BoolValue {
			v.fail(res, path, "false-schema", "schema is the literal false, nothing validates")
		}
		return
	}

	ref := schema.Ref
	if ref == "" {
		ref = schema.DynamicRef
	}
	if ref != "" {
		target, err := v.resolveRef(ref)
		if err != nil {
			v.fail(res, path, "$ref", err.Error())
			return
		}
		v.validateAt(target, instance, path, res, state)
	}

	v.validateType(schema, instance, path, res)
	v.validateEnum(schema, instance, path, res)
	v.validateConst(schema, instance, path, res)

	switch val := instance.(type) {
	case string:
		v.validateString(schema, val, path, res)
	case float64:
		v.validateNumber(schema, val, path, res)
	case []interface{}:
		v.validateArray(schema, val, path, res, state)
	case map[string]interface{}:
		v.validateObject(schema, val, path, res, state)
	}

	v.validateComposition(schema, instance, path, res, state)
	v.validateConditional(schema, instance, path, res, state)
}

func (v *Validator) validateType(schema *Schema, instance interface{}, path string, res *Result) {
	names := schema.typeNames()
	if len(names) == 0 {
		return
	}
	actual := jsonType(instance)
	for _, name := range names {
		if name == actual {
			return
		}
		if name == "integer" && actual == "number" {
			if f, ok := instance.(float64); ok && f == math.Trunc(f) {
				return
			}
		}
	}
	v.fail(res, path, "type", fmt.Sprintf("expected type %v, got %s", names, actual))
}

func jsonType(instance interface{}) string {
	switch instance.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return "unknown"
}

func (v *Validator) validateEnum(schema *Schema, instance interface{}, path string, res *Result) {
	if len(schema.Enum) == 0 {
		return
	}
	for _, allowed := range schema.Enum {
		if deepEqual(allowed, instance) {
			return
		}
	}
	v.fail(res, path, "enum", "value is not one of the enumerated values")
}

func (v *Validator) validateConst(schema *Schema, instance interface{}, path string, res *Result) {
	if schema.Const == nil {
		return
	}
	if !deepEqual(*schema.Const, instance) {
		v.fail(res, path, "const", "value does not equal the required constant")
	}
}

// deepEqual compares two decoded-JSON values for JSON Schema's notion of
// equality (numbers compare by value, objects are unordered).
func deepEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v1 := range av {
			v2, ok := bv[k]
			if !ok || !deepEqual(v1, v2) {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Validator) validateComposition(schema *Schema, instance interface{}, path string, res *Result, state *evalState) {
	for _, sub := range schema.AllOf {
		v.validateAt(sub, instance, path, res, state)
	}
	if len(schema.AnyOf) > 0 {
		var matched bool
		for _, sub := range schema.AnyOf {
			sub := sub
			subRes := &Result{}
			subState := newEvalState()
			v.validateAt(sub, instance, path, subRes, subState)
			if len(subRes.Errors) == 0 {
				matched = true
				// §4.I: anyOf merges the evaluated set from every passing
				// branch, not just the first - evaluate all of them rather
				// than stopping early so unevaluatedProperties/Items sees
				// the full union.
				state.merge(subState)
			}
		}
		if !matched {
			v.fail(res, path, "anyOf", "value does not match any of the alternatives")
		}
	}
	if len(schema.OneOf) > 0 {
		matches := 0
		var matchedState *evalState
		for _, sub := range schema.OneOf {
			subRes := &Result{}
			subState := newEvalState()
			v.validateAt(sub, instance, path, subRes, subState)
			if len(subRes.Errors) == 0 {
				matches++
				matchedState = subState
			}
		}
		if matches != 1 {
			v.fail(res, path, "oneOf", fmt.Sprintf("value matches %d alternatives, expected exactly 1", matches))
		} else {
			state.merge(matchedState)
		}
	}
	if schema.Not != nil {
		subRes := &Result{}
		v.validateAt(schema.Not, instance, path, subRes, newEvalState())
		if len(subRes.Errors) == 0 {
			v.fail(res, path, "not", "value must not match the 'not' schema")
		}
	}
}

func (v *Validator) validateConditional(schema *Schema, instance interface{}, path string, res *Result, state *evalState) {
	if schema.If == nil {
		return
	}
	ifRes := &Result{}
	ifState := newEvalState()
	v.validateAt(schema.If, instance, path, ifRes, ifState)
	if len(ifRes.Errors) == 0 {
		state.merge(ifState)
		if schema.Then != nil {
			v.validateAt(schema.Then, instance, path, res, state)
		}
	} else if schema.Else != nil {
		v.validateAt(schema.Else, instance, path, res, state)
	}
}

func (v *Validator) regex(pattern string) (matcher, error) {
	if v.cache != nil {
		return v.cache.Regex(pattern)
	}
	return compileRegex(pattern)
}

// sortedKeys returns m's keys in sorted order, used wherever iteration
// order must be deterministic (the order in which object properties are
// validated).
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
