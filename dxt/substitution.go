package dxt

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/mcpcore/corerr"
)

// SubstitutionContext carries the values the ${...} catalogue resolves
// against, per spec §4.G: the extension's own install directory, the
// user's home directory, the platform-specific separator, and whatever
// values the host collected for the manifest's user_config fields.
type SubstitutionContext struct {
	DirName    string // ${__dirname}: the extension's unpacked root
	HomeDir    string // ${HOME} / ${USER_HOME}
	PathSep    string // ${/}  or ${pathSeparator}
	UserConfig map[string]interface{}
}

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Substitute resolves every ${...} placeholder in s against ctx. An
// unresolvable placeholder (an unknown name, or a user_config key with no
// value and no default) is an error rather than being left verbatim -
// per spec §4.G, a manifest referencing a field the host never collected is
// a packaging defect, not a runtime no-op.
func Substitute(s string, ctx SubstitutionContext, manifest *Manifest) (string, error) {
	var firstErr error
	result := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		value, err := resolvePlaceholder(name, ctx, manifest)
		if err != nil {
			firstErr = err
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

func resolvePlaceholder(name string, ctx SubstitutionContext, manifest *Manifest) (string, error) {
	switch name {
	case "__dirname":
		return ctx.DirName, nil
	case "HOME", "USER_HOME":
		return ctx.HomeDir, nil
	case "/", "pathSeparator":
		if ctx.PathSep != "" {
			return ctx.PathSep, nil
		}
		return string(filepath.Separator), nil
	}
	if key, ok := strings.CutPrefix(name, "user_config."); ok {
		if v, ok := ctx.UserConfig[key]; ok {
			return fmt.Sprintf("%v", v), nil
		}
		if manifest != nil {
			if field, ok := manifest.UserConfig[key]; ok && field.Default != nil {
				return fmt.Sprintf("%v", field.Default), nil
			}
		}
		return "", corerr.New(corerr.KindDXT, "dxt", fmt.Sprintf("no value provided for user_config.%s", key))
	}
	return "", corerr.New(corerr.KindDXT, "dxt", fmt.Sprintf("unknown substitution placeholder %q", name))
}

// SubstituteMCPConfig resolves every placeholder in cfg's command, args,
// and env values.
func SubstituteMCPConfig(cfg MCPConfig, ctx SubstitutionContext, manifest *Manifest) (MCPConfig, error) {
	out := MCPConfig{Env: make(map[string]string, len(cfg.Env))}
	var err error
	if out.Command, err = Substitute(cfg.Command, ctx, manifest); err != nil {
		return MCPConfig{}, err
	}
	for _, arg := range cfg.Args {
		resolved, err := Substitute(arg, ctx, manifest)
		if err != nil {
			return MCPConfig{}, err
		}
		out.Args = append(out.Args, resolved)
	}
	for k, v := range cfg.Env {
		resolved, err := Substitute(v, ctx, manifest)
		if err != nil {
			return MCPConfig{}, err
		}
		out.Env[k] = resolved
	}
	return out, nil
}

// CheckEntryPoint validates that manifest.Server.EntryPoint resolves, after
// symlink evaluation, to a path contained within dirName - a containment
// check that stops a manifest from launching a binary outside the
// extension's own unpacked directory.
func CheckEntryPoint(manifest *Manifest, dirName string, evalSymlinks func(string) (string, error)) error {
	entryAbs := filepath.Join(dirName, manifest.Server.EntryPoint)
	resolvedDir, err := evalSymlinks(dirName)
	if err != nil {
		return corerr.Wrap(corerr.KindDXT, "dxt", "failed to resolve extension directory", err)
	}
	resolvedEntry, err := evalSymlinks(entryAbs)
	if err != nil {
		return corerr.Wrap(corerr.KindDXT, "dxt", "failed to resolve entry_point", err)
	}
	rel, err := filepath.Rel(resolvedDir, resolvedEntry)
	if err != nil || strings.HasPrefix(rel, "..") {
		return corerr.New(corerr.KindDXT, "dxt", fmt.Sprintf("entry_point %q escapes extension directory", manifest.Server.EntryPoint))
	}
	return nil
}
