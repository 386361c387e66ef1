// Package tool declares the quality-tool descriptors the hook engine runs and
// the built-in per-phase registry they are loaded from.
package tool

import (
	"strings"
)

// Kind selects the directory a bare command name resolves against.
type Kind string

const (
	// KindVendor resolves against composer's vendor/bin.
	KindVendor Kind = "vendor"
	// KindNode resolves against node_modules/.bin.
	KindNode Kind = "node"
	// KindSystem resolves on the system PATH.
	KindSystem Kind = "system"
)

// FailurePolicy decides whether later groups still run after a tool fails.
type FailurePolicy string

const (
	Continue FailurePolicy = "continue"
	Stop     FailurePolicy = "stop"
)

// Descriptor describes one invocable quality tool. Descriptors are immutable
// once the effective list is built; their order in that list is the execution
// order.
type Descriptor struct {
	Name        string        `yaml:"name"`
	Command     string        `yaml:"command"`
	Kind        Kind          `yaml:"kind"`
	Args        []string      `yaml:"args"`
	Extensions  []string      `yaml:"extensions"`
	PerFile     bool          `yaml:"perFile"`
	PassFiles   bool          `yaml:"passFiles"`
	ReStage     bool          `yaml:"reStage"`
	OnFailure   FailurePolicy `yaml:"onFailure"`
	Group       string        `yaml:"group"`
	Description string        `yaml:"description"`
}

// Matches reports whether a changed file is of interest to this tool.
// An empty extension filter matches every file.
func (d Descriptor) Matches(file string) bool {
	if len(d.Extensions) == 0 {
		return true
	}
	for _, ext := range d.Extensions {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return false
}

// MatchingFiles filters the changed-file list down to the files this tool
// should see, preserving order.
func (d Descriptor) MatchingFiles(files []string) []string {
	if len(d.Extensions) == 0 {
		out := make([]string, len(files))
		copy(out, files)
		return out
	}
	var out []string
	for _, f := range files {
		if d.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// NormalizeName maps a display name to the SKIP_<NAME> environment-variable
// fragment: uppercased, every non-alphanumeric run collapsed to one underscore.
func NormalizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
