package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustValidate(t *testing.T, schemaJSON string, instance interface{}) *Result {
	t.Helper()
	schema, err := Parse([]byte(schemaJSON))
	assert.NoError(t, err)
	v := New(schema, NewCache(0))
	return v.Validate(instance)
}

func TestValidate_Type(t *testing.T) {
	res := mustValidate(t, `{"type":"string"}`, "hello")
	assert.True(t, res.Valid)

	res = mustValidate(t, `{"type":"string"}`, float64(1))
	assert.False(t, res.Valid)
}

func TestValidate_Integer(t *testing.T) {
	res := mustValidate(t, `{"type":"integer"}`, float64(3))
	assert.True(t, res.Valid)

	res = mustValidate(t, `{"type":"integer"}`, float64(3.5))
	assert.False(t, res.Valid)
}

func TestValidate_ObjectRequiredAndProperties(t *testing.T) {
	schema := `{
		"type":"object",
		"properties":{"name":{"type":"string"},"age":{"type":"integer","minimum":0}},
		"required":["name"]
	}`
	res := mustValidate(t, schema, map[string]interface{}{"name": "a", "age": float64(5)})
	assert.True(t, res.Valid)

	res = mustValidate(t, schema, map[string]interface{}{"age": float64(5)})
	assert.False(t, res.Valid)

	res = mustValidate(t, schema, map[string]interface{}{"name": "a", "age": float64(-1)})
	assert.False(t, res.Valid)
}

func TestValidate_AdditionalPropertiesFalse(t *testing.T) {
	schema := `{"type":"object","properties":{"a":{"type":"string"}},"additionalProperties":false}`
	res := mustValidate(t, schema, map[string]interface{}{"a": "x", "b": "y"})
	assert.False(t, res.Valid)

	res = mustValidate(t, schema, map[string]interface{}{"a": "x"})
	assert.True(t, res.Valid)
}

func TestValidate_AnyOfOneOf(t *testing.T) {
	anyOf := `{"anyOf":[{"type":"string"},{"type":"integer"}]}`
	assert.True(t, mustValidate(t, anyOf, "x").Valid)
	assert.True(t, mustValidate(t, anyOf, float64(1)).Valid)
	assert.False(t, mustValidate(t, anyOf, true).Valid)

	oneOf := `{"oneOf":[{"type":"number","multipleOf":2},{"type":"number","multipleOf":3}]}`
	assert.True(t, mustValidate(t, oneOf, float64(4)).Valid)  // only multiple of 2
	assert.False(t, mustValidate(t, oneOf, float64(6)).Valid) // multiple of both
}

func TestValidate_IfThenElse(t *testing.T) {
	schema := `{
		"if": {"properties":{"kind":{"const":"a"}}},
		"then": {"required":["aOnly"]},
		"else": {"required":["bOnly"]}
	}`
	res := mustValidate(t, schema, map[string]interface{}{"kind": "a", "aOnly": "x"})
	assert.True(t, res.Valid)

	res = mustValidate(t, schema, map[string]interface{}{"kind": "a"})
	assert.False(t, res.Valid)

	res = mustValidate(t, schema, map[string]interface{}{"kind": "b", "bOnly": "x"})
	assert.True(t, res.Valid)
}

func TestValidate_ArrayItemsAndUnique(t *testing.T) {
	schema := `{"type":"array","items":{"type":"number"},"uniqueItems":true}`
	res := mustValidate(t, schema, []interface{}{float64(1), float64(2)})
	assert.True(t, res.Valid)

	res = mustValidate(t, schema, []interface{}{float64(1), float64(1)})
	assert.False(t, res.Valid)
}

func TestValidate_Pattern(t *testing.T) {
	res := mustValidate(t, `{"type":"string","pattern":"^[a-z]+$"}`, "abc")
	assert.True(t, res.Valid)
	res = mustValidate(t, `{"type":"string","pattern":"^[a-z]+$"}`, "ABC")
	assert.False(t, res.Valid)
}

func TestValidate_BoolSchema(t *testing.T) {
	schema, err := Parse([]byte(`false`))
	assert.NoError(t, err)
	v := New(schema, nil)
	res := v.Validate("anything")
	assert.False(t, res.Valid)
}

func TestCache_EvictsOldest(t *testing.T) {
	c := NewCache(2)
	_, err := c.Regex("^a$")
	assert.NoError(t, err)
	_, err = c.Regex("^b$")
	assert.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	_, err = c.Regex("^c$")
	assert.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}
