package config

import (
	"sort"
	"strings"

	"github.com/flarebyte/maat-hooks/internal/tool"
	"go.uber.org/zap"
)

// Apply merges user tool entries onto the default descriptor list. The merge
// is pure and order-preserving: defaults keep their position, disabled tools
// are removed, and brand-new custom tools are appended at the end in a stable
// (name-sorted) order. An entry that matches no default and carries no
// command is dropped with a warning.
func Apply(defaults []tool.Descriptor, cfg *HooksConfig, log *zap.Logger) []tool.Descriptor {
	out := make([]tool.Descriptor, 0, len(defaults))
	matched := map[string]bool{}
	index := entryIndex(cfg, log)

	for _, d := range defaults {
		entry, key, ok := lookupEntry(cfg, index, d.Name)
		if !ok {
			out = append(out, d)
			continue
		}
		matched[key] = true
		if entry.HasEnabled && !entry.Enabled {
			continue
		}
		if entry.HasCommand {
			// Full replacement under an existing name keeps the display name.
			nd := descriptorFromEntry(d.Name, entry)
			out = append(out, nd)
			continue
		}
		out = append(out, overlay(d, entry))
	}

	// Unmatched entries become new custom tools, appended after the defaults.
	names := make([]string, 0, len(cfg.Tools))
	for name := range cfg.Tools {
		if !matched[strings.ToLower(name)] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		entry := cfg.Tools[name]
		if entry.HasEnabled && !entry.Enabled {
			continue
		}
		if !entry.HasCommand {
			log.Warn("ignoring config entry for unknown tool without command", zap.String("tool", name))
			continue
		}
		out = append(out, descriptorFromEntry(name, entry))
	}
	return out
}

// entryIndex maps lowercased entry names to the config keys carrying them,
// keys sorted so collisions resolve the same way on every run. Two keys
// differing only in case are a user mistake worth a warning.
func entryIndex(cfg *HooksConfig, log *zap.Logger) map[string][]string {
	index := map[string][]string{}
	for k := range cfg.Tools {
		lower := strings.ToLower(k)
		index[lower] = append(index[lower], k)
	}
	for lower, keys := range index {
		if len(keys) > 1 {
			sort.Strings(keys)
			log.Warn("config entries differ only in case, using the first",
				zap.String("tool", lower), zap.Strings("entries", keys))
		}
	}
	return index
}

func lookupEntry(cfg *HooksConfig, index map[string][]string, name string) (ToolEntry, string, bool) {
	lower := strings.ToLower(name)
	keys := index[lower]
	if len(keys) == 0 {
		return ToolEntry{}, "", false
	}
	return cfg.Tools[keys[0]], lower, true
}

func overlay(d tool.Descriptor, e ToolEntry) tool.Descriptor {
	if e.HasKind {
		d.Kind = tool.Kind(e.Kind)
	}
	if e.HasArgs {
		d.Args = append([]string(nil), e.Args...)
	}
	if e.HasExtensions {
		d.Extensions = append([]string(nil), e.Extensions...)
	}
	if e.HasPerFile {
		d.PerFile = e.PerFile
	}
	if e.HasPassFiles {
		d.PassFiles = e.PassFiles
	}
	if e.HasReStage {
		d.ReStage = e.ReStage
	}
	if e.HasOnFailure {
		d.OnFailure = tool.FailurePolicy(e.OnFailure)
	}
	if e.HasGroup {
		d.Group = e.Group
	}
	if e.HasDescription {
		d.Description = e.Description
	}
	return d
}

func descriptorFromEntry(name string, e ToolEntry) tool.Descriptor {
	d := tool.Descriptor{
		Name:      name,
		Command:   e.Command,
		Kind:      tool.KindSystem,
		OnFailure: tool.Continue,
	}
	return overlay(d, e)
}
