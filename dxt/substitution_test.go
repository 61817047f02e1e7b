package dxt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	ctx := SubstitutionContext{DirName: "/opt/ext", HomeDir: "/home/bob", UserConfig: map[string]interface{}{"apiKey": "secret123"}}
	out, err := Substitute("${__dirname}/server/index.js", ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, "/opt/ext/server/index.js", out)

	out, err = Substitute("${user_config.apiKey}", ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, "secret123", out)
}

func TestSubstitute_UnknownPlaceholder(t *testing.T) {
	_, err := Substitute("${nope}", SubstitutionContext{}, nil)
	assert.Error(t, err)
}

func TestSubstitute_MissingUserConfigUsesDefault(t *testing.T) {
	manifest := &Manifest{UserConfig: map[string]UserConfigField{"region": {Default: "us-east-1"}}}
	out, err := Substitute("${user_config.region}", SubstitutionContext{}, manifest)
	assert.NoError(t, err)
	assert.Equal(t, "us-east-1", out)
}

func TestCheckEntryPoint_Contained(t *testing.T) {
	manifest := &Manifest{Server: Server{EntryPoint: "server/index.js"}}
	identity := func(p string) (string, error) { return filepath.Clean(p), nil }
	err := CheckEntryPoint(manifest, "/opt/ext", identity)
	assert.NoError(t, err)
}

func TestCheckEntryPoint_Escapes(t *testing.T) {
	manifest := &Manifest{Server: Server{EntryPoint: "../../etc/passwd"}}
	identity := func(p string) (string, error) { return filepath.Clean(p), nil }
	err := CheckEntryPoint(manifest, "/opt/ext", identity)
	assert.Error(t, err)
}
