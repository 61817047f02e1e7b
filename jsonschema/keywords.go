package jsonschema

import (
	"fmt"
	"unicode/utf8"
)

func (v *Validator) validateString(schema *Schema, s string, path string, res *Result) {
	length := utf8.RuneCountInString(s)
	if schema.MinLength != nil && length < *schema.MinLength {
		v.fail(res, path, "minLength", fmt.Sprintf("length %d is less than minLength %d", length, *schema.MinLength))
	}
	if schema.MaxLength != nil && length > *schema.MaxLength {
		v.fail(res, path, "maxLength", fmt.Sprintf("length %d exceeds maxLength %d", length, *schema.MaxLength))
	}
	if schema.Pattern != "" {
		re, err := v.regex(schema.Pattern)
		if err != nil {
			v.fail(res, path, "pattern", "invalid pattern: "+err.Error())
		} else if !re.MatchString(s) {
			v.fail(res, path, "pattern", fmt.Sprintf("value does not match pattern %q", schema.Pattern))
		}
	}
	if schema.Format != "" {
		if err := validateFormat(schema.Format, s); err != nil {
			v.fail(res, path, "format", err.Error())
		}
	}
	if schema.ContentEncoding != "" || schema.ContentMediaType != "" {
		if err := validateContent(schema.ContentEncoding, schema.ContentMediaType, s); err != nil {
			v.fail(res, path, "contentEncoding", err.Error())
		}
	}
}

func (v *Validator) validateNumber(schema *Schema, n float64, path string, res *Result) {
	if schema.Minimum != nil && n < *schema.Minimum {
		v.fail(res, path, "minimum", fmt.Sprintf("%v is less than minimum %v", n, *schema.Minimum))
	}
	if schema.Maximum != nil && n > *schema.Maximum {
		v.fail(res, path, "maximum", fmt.Sprintf("%v exceeds maximum %v", n, *schema.Maximum))
	}
	if schema.ExclusiveMinimum != nil && n <= *schema.ExclusiveMinimum {
		v.fail(res, path, "exclusiveMinimum", fmt.Sprintf("%v is not greater than exclusiveMinimum %v", n, *schema.ExclusiveMinimum))
	}
	if schema.ExclusiveMaximum != nil && n >= *schema.ExclusiveMaximum {
		v.fail(res, path, "exclusiveMaximum", fmt.Sprintf("%v is not less than exclusiveMaximum %v", n, *schema.ExclusiveMaximum))
	}
	if schema.MultipleOf != nil && *schema.MultipleOf != 0 {
		quotient := n / *schema.MultipleOf
		if quotient != float64(int64(quotient)) {
			v.fail(res, path, "multipleOf", fmt.Sprintf("%v is not a multiple of %v", n, *schema.MultipleOf))
		}
	}
}

func (v *Validator) validateArray(schema *Schema, arr []interface{}, path string, res *Result, state *evalState) {
	if schema.MinItems != nil && len(arr) < *schema.MinItems {
		v.fail(res, path, "minItems", fmt.Sprintf("array has %d items, less than minItems %d", len(arr), *schema.MinItems))
	}
	if schema.MaxItems != nil && len(arr) > *schema.MaxItems {
		v.fail(res, path, "maxItems", fmt.Sprintf("array has %d items, exceeds maxItems %d", len(arr), *schema.MaxItems))
	}
	if schema.UniqueItems {
		for i := 0; i < len(arr); i++ {
			for j := i + 1; j < len(arr); j++ {
				if deepEqual(arr[i], arr[j]) {
					v.fail(res, path, "uniqueItems", fmt.Sprintf("items at index %d and %d are equal", i, j))
				}
			}
		}
	}

	itemState := newEvalState()
	for i, item := range schema.PrefixItems {
		if i >= len(arr) {
			break
		}
		v.validateAt(item, arr[i], fmt.Sprintf("%s/%d", path, i), res, itemState)
		itemState.evaluatedIdx[i] = true
	}
	if schema.Items != nil {
		start := len(schema.PrefixItems)
		for i := start; i < len(arr); i++ {
			v.validateAt(schema.Items, arr[i], fmt.Sprintf("%s/%d", path, i), res, itemState)
			itemState.evaluatedIdx[i] = true
		}
	}

	if schema.Contains != nil {
		matchCount := 0
		for i, item := range arr {
			subRes := &Result{}
			v.validateAt(schema.Contains, item, fmt.Sprintf("%s/%d", path, i), subRes, newEvalState())
			if len(subRes.Errors) == 0 {
				matchCount++
				itemState.evaluatedIdx[i] = true
			}
		}
		min := 1
		if schema.MinContains != nil {
			min = *schema.MinContains
		}
		if matchCount < min {
			v.fail(res, path, "contains", fmt.Sprintf("only %d items match 'contains', need at least %d", matchCount, min))
		}
		if schema.MaxContains != nil && matchCount > *schema.MaxContains {
			v.fail(res, path, "contains", fmt.Sprintf("%d items match 'contains', more than maxContains %d", matchCount, *schema.MaxContains))
		}
	}

	if schema.UnevaluatedItems != nil {
		for i, item := range arr {
			if itemState.evaluatedIdx[i] {
				continue
			}
			v.validateAt(schema.UnevaluatedItems, item, fmt.Sprintf("%s/%d", path, i), res, newEvalState())
			itemState.evaluatedIdx[i] = true
		}
	}
	state.merge(itemState)
}

func (v *Validator) validateObject(schema *Schema, obj map[string]interface{}, path string, res *Result, state *evalState) {
	if schema.MinProperties != nil && len(obj) < *schema.MinProperties {
		v.fail(res, path, "minProperties", fmt.Sprintf("object has %d properties, less than minProperties %d", len(obj), *schema.MinProperties))
	}
	if schema.MaxProperties != nil && len(obj) > *schema.MaxProperties {
		v.fail(res, path, "maxProperties", fmt.Sprintf("object has %d properties, exceeds maxProperties %d", len(obj), *schema.MaxProperties))
	}
	for _, name := range schema.Required {
		if _, ok := obj[name]; !ok {
			v.fail(res, path, "required", fmt.Sprintf("missing required property %q", name))
		}
	}
	for name, requires := range schema.DependentRequired {
		if _, ok := obj[name]; !ok {
			continue
		}
		for _, dep := range requires {
			if _, ok := obj[dep]; !ok {
				v.fail(res, path, "dependentRequired", fmt.Sprintf("property %q requires %q", name, dep))
			}
		}
	}
	for name, depSchema := range schema.DependentSchemas {
		if _, ok := obj[name]; !ok {
			continue
		}
		v.validateAt(depSchema, obj, path, res, state)
	}
	if schema.PropertyNames != nil {
		for _, name := range sortedKeys(obj) {
			v.validateAt(schema.PropertyNames, name, path+"/"+name, res, newEvalState())
		}
	}

	propState := newEvalState()
	for _, name := range sortedKeys(obj) {
		if propSchema, ok := schema.Properties[name]; ok {
			v.validateAt(propSchema, obj[name], path+"/"+name, res, newEvalState())
			propState.evaluatedProps[name] = true
		}
	}

	var patterns []string
	for pattern := range schema.PatternProperties {
		patterns = append(patterns, pattern)
	}
	for _, pattern := range patterns {
		re, err := v.regex(pattern)
		if err != nil {
			v.fail(res, path, "patternProperties", "invalid pattern: "+err.Error())
			continue
		}
		for _, name := range sortedKeys(obj) {
			if re.MatchString(name) {
				v.validateAt(schema.PatternProperties[pattern], obj[name], path+"/"+name, res, newEvalState())
				propState.evaluatedProps[name] = true
			}
		}
	}

	if schema.AdditionalProperties != nil {
		for _, name := range sortedKeys(obj) {
			if propState.evaluatedProps[name] {
				continue
			}
			v.validateAt(schema.AdditionalProperties, obj[name], path+"/"+name, res, newEvalState())
			propState.evaluatedProps[name] = true
		}
	}

	if schema.UnevaluatedProperties != nil {
		for _, name := range sortedKeys(obj) {
			if propState.evaluatedProps[name] {
				continue
			}
			v.validateAt(schema.UnevaluatedProperties, obj[name], path+"/"+name, res, newEvalState())
			propState.evaluatedProps[name] = true
		}
	}
	state.merge(propState)
}
