// Package config loads the optional per-project hooks configuration and
// merges user overrides onto the built-in tool registry. Loading is
// best-effort: a missing or unparsable file degrades to an empty config.
package config

// ToolEntry is one entry under "tools". It is either a partial override of an
// existing descriptor or a full custom tool; the presence of "command"
// discriminates the two. Has* flags record which optional fields were present
// in the file, so a partial override mutates only those.
type ToolEntry struct {
	Enabled    bool
	HasEnabled bool

	Command    string
	HasCommand bool

	Kind    string
	HasKind bool

	Args    []string
	HasArgs bool

	Extensions    []string
	HasExtensions bool

	PerFile    bool
	HasPerFile bool

	PassFiles    bool
	HasPassFiles bool

	ReStage    bool
	HasReStage bool

	OnFailure    string
	HasOnFailure bool

	Group    string
	HasGroup bool

	Description    string
	HasDescription bool
}

// Skip carries the per-phase opt-out flags.
type Skip struct {
	PreCommit bool
	PrePush   bool
	CommitMsg bool
	Tests     bool
	Artifacts bool
}

// Container configures the docker compose service tools run in, for
// containerized projects.
type Container struct {
	Service string
}

// Summary configures the optional user-supplied error-summary extractor.
type Summary struct {
	Script string
}

// HooksConfig is the decoded user configuration. The zero value is the empty
// config and leaves the built-in registry untouched.
type HooksConfig struct {
	// Tools is keyed by the name exactly as written; lookups against the
	// registry are case-insensitive.
	Tools     map[string]ToolEntry
	Verbose   bool
	Skip      Skip
	Container Container
	Summary   Summary
}

// SkipPhase reports whether the config disables the given hook phase name.
func (c *HooksConfig) SkipPhase(phase string) bool {
	switch phase {
	case "pre-commit":
		return c.Skip.PreCommit
	case "pre-push":
		return c.Skip.PrePush
	case "commit-msg":
		return c.Skip.CommitMsg
	}
	return false
}
