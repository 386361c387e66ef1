// Package resolve maps logical tool commands to runnable invocations: bin
// directory prefixing by runtime kind, system-PATH fallbacks, and docker
// compose wrapping for containerized projects.
package resolve

import (
	"path/filepath"
	"strings"

	"github.com/flarebyte/maat-hooks/internal/tool"
)

// systemCommands are universally-available binaries that are never prefixed
// with a local bin directory.
var systemCommands = map[string]bool{
	"git":      true,
	"composer": true,
	"docker":   true,
	"npm":      true,
	"npx":      true,
	"make":     true,
	"sh":       true,
	"bash":     true,
}

func binDir(kind tool.Kind) string {
	switch kind {
	case tool.KindVendor:
		return filepath.Join("vendor", "bin")
	case tool.KindNode:
		return filepath.Join("node_modules", ".bin")
	}
	return ""
}

// Command resolves a descriptor's logical command to the path the engine
// should invoke, relative to the project root. Pre-qualified commands
// (absolute, explicitly relative, or containing a separator) and allowlisted
// system binaries pass through unchanged.
func Command(d tool.Descriptor) string {
	c := d.Command
	if filepath.IsAbs(c) || strings.HasPrefix(c, "./") || strings.HasPrefix(c, "../") {
		return c
	}
	if strings.ContainsAny(c, "/\\") {
		return c
	}
	if systemCommands[c] {
		return c
	}
	dir := binDir(d.Kind)
	if dir == "" {
		return c
	}
	return filepath.Join(dir, c)
}
