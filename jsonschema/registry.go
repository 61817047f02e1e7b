package jsonschema

import "encoding/json"

// Registry compiles and validates against raw JSON Schema documents (such
// as a tool's inputSchema, carried as json.RawMessage on the wire),
// sharing one regex Cache across every schema it compiles.
type Registry struct {
	cache *Cache
}

// NewRegistry constructs a Registry backed by a cache bounded at
// maxCacheEntries.
func NewRegistry() *Registry {
	return &Registry{cache: NewCache(maxCacheEntries)}
}

// Compile parses raw into a Schema and returns a Validator sharing this
// Registry's cache.
func (r *Registry) Compile(raw json.RawMessage) (*Validator, error) {
	schema, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return New(schema, r.cache), nil
}

// ValidateAgainst is a convenience that compiles raw and validates instance
// (an already-decoded JSON value, e.g. the arguments passed to
// "tools/call") against it in one call.
func (r *Registry) ValidateAgainst(raw json.RawMessage, instance interface{}) (*Result, error) {
	v, err := r.Compile(raw)
	if err != nil {
		return nil, err
	}
	return v.Validate(instance), nil
}
