// Package dxt implements the Desktop Extension packaging transport of
// spec §4.G: manifest parsing and compatibility validation, the
// ${...}-substitution catalogue, an entry-point containment check, and
// launch through a login shell.
//
// Grounded on the teacher's gosh-runner stdio launch (runner.AsPipeline,
// local.New) - the same pattern, generalized from a fixed command to the
// manifest-resolved one - and on the teacher's scy/cred/secret field for
// representing sensitive user-config values as secret resource references
// instead of plaintext. This module's transport/client/stdio uses os/exec
// and has no secret field.
package dxt

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/viant/mcpcore/corerr"
	"github.com/viant/mcpcore/semver"
)

var manifestValidate = validator.New()

// MCPConfig is the server.mcp_config block: the command line the manifest
// wants launched, with ${...} placeholders yet to be substituted.
type MCPConfig struct {
	Command string            `json:"command" validate:"required"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Server is the manifest's "server" block.
type Server struct {
	Type       string    `json:"type" validate:"omitempty,oneof=node python binary"`
	EntryPoint string    `json:"entry_point" validate:"required"`
	MCPConfig  MCPConfig `json:"mcp_config"`
}

// Compatibility is the manifest's "compatibility" block, naming the
// platforms and host runtime versions the extension supports.
type Compatibility struct {
	Platforms       []string `json:"platforms,omitempty"`
	Runtimes        map[string]string `json:"runtimes,omitempty"` // runtime name -> semver constraint
}

// UserConfigField describes one entry the host must collect from the user
// before launch and make available for ${user_config.KEY} substitution.
type UserConfigField struct {
	Type        string      `json:"type"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Sensitive   bool        `json:"sensitive,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// Manifest is a parsed DXT manifest.json document.
type Manifest struct {
	Name          string                     `json:"name" validate:"required"`
	Version       string                     `json:"version" validate:"required"`
	Description   string                     `json:"description,omitempty"`
	Server        Server                     `json:"server"`
	Compatibility Compatibility              `json:"compatibility,omitempty"`
	UserConfig    map[string]UserConfigField `json:"user_config,omitempty"`
}

// ParseManifest decodes a manifest.json document and validates its required
// fields and enumerated values (server.type, if set, must name a supported
// runner) via struct tags.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, corerr.Wrap(corerr.KindDXT, "dxt", "invalid manifest.json", err)
	}
	if err := manifestValidate.Struct(&m); err != nil {
		return nil, corerr.Wrap(corerr.KindDXT, "dxt", "invalid manifest.json", err)
	}
	return &m, nil
}

// CheckCompatibility validates that platform is among the manifest's
// supported platforms (when the list is non-empty) and that every named
// runtime version satisfies the manifest's semver constraint for it.
func (m *Manifest) CheckCompatibility(platform string, runtimeVersions map[string]string) error {
	if len(m.Compatibility.Platforms) > 0 {
		var ok bool
		for _, p := range m.Compatibility.Platforms {
			if p == platform {
				ok = true
				break
			}
		}
		if !ok {
			return corerr.New(corerr.KindDXT, "dxt", fmt.Sprintf("extension does not support platform %q", platform))
		}
	}
	for runtime, constraint := range m.Compatibility.Runtimes {
		versionStr, ok := runtimeVersions[runtime]
		if !ok {
			continue
		}
		version, err := semver.Parse(versionStr)
		if err != nil {
			return corerr.Wrap(corerr.KindDXT, "dxt", fmt.Sprintf("invalid runtime version for %q", runtime), err)
		}
		satisfies, err := version.Satisfies(constraint)
		if err != nil {
			return corerr.Wrap(corerr.KindDXT, "dxt", fmt.Sprintf("invalid runtime constraint for %q", runtime), err)
		}
		if !satisfies {
			return corerr.New(corerr.KindDXT, "dxt", fmt.Sprintf("runtime %q version %q does not satisfy %q", runtime, versionStr, constraint))
		}
	}
	return nil
}

// RequiredUserConfig returns the keys of every required user_config entry
// not present in provided, so a host can prompt for them before launch.
func (m *Manifest) RequiredUserConfig(provided map[string]interface{}) []string {
	var missing []string
	for key, field := range m.UserConfig {
		if !field.Required {
			continue
		}
		if _, ok := provided[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
