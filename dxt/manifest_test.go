package dxt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleManifest = `{
	"name": "sample-extension",
	"version": "1.0.0",
	"server": {
		"type": "node",
		"entry_point": "server/index.js",
		"mcp_config": {
			"command": "node",
			"args": ["${__dirname}/server/index.js"],
			"env": {"API_KEY": "${user_config.apiKey}"}
		}
	},
	"compatibility": {
		"platforms": ["darwin", "linux"],
		"runtimes": {"node": ">=18.0.0"}
	},
	"user_config": {
		"apiKey": {"type": "string", "required": true, "sensitive": true}
	}
}`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	assert.NoError(t, err)
	assert.Equal(t, "sample-extension", m.Name)
	assert.Equal(t, "server/index.js", m.Server.EntryPoint)
}

func TestParseManifest_MissingEntryPoint(t *testing.T) {
	_, err := ParseManifest([]byte(`{"server":{"mcp_config":{"command":"node"}}}`))
	assert.Error(t, err)
}

func TestCheckCompatibility(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	assert.NoError(t, err)

	assert.NoError(t, m.CheckCompatibility("darwin", map[string]string{"node": "20.1.0"}))
	assert.Error(t, m.CheckCompatibility("windows", map[string]string{"node": "20.1.0"}))
	assert.Error(t, m.CheckCompatibility("darwin", map[string]string{"node": "16.0.0"}))
}

func TestRequiredUserConfig(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	assert.NoError(t, err)
	assert.Equal(t, []string{"apiKey"}, m.RequiredUserConfig(nil))
	assert.Empty(t, m.RequiredUserConfig(map[string]interface{}{"apiKey": "x"}))
}
