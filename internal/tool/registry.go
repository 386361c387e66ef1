package tool

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Phase is a git hook event the orchestrator is bound to.
type Phase string

const (
	PreCommit Phase = "pre-commit"
	PrePush   Phase = "pre-push"
	CommitMsg Phase = "commit-msg"
	// Tests and Artifacts are pre-push sub-phases with their own skip
	// switches; their tools extend the pre-push list unless skipped.
	Tests     Phase = "tests"
	Artifacts Phase = "artifacts"
)

// SkipEnvVar is the per-phase opt-out switch, e.g. SKIP_PRE_COMMIT.
func (p Phase) SkipEnvVar() string {
	return "SKIP_" + NormalizeName(string(p))
}

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	registryOnce sync.Once
	registry     map[Phase][]Descriptor
	registryErr  error
)

func loadRegistry() {
	var raw map[string][]Descriptor
	if err := yaml.Unmarshal(defaultsYAML, &raw); err != nil {
		registryErr = fmt.Errorf("invalid built-in registry: %v", err)
		return
	}
	registry = make(map[Phase][]Descriptor, len(raw))
	for phase, list := range raw {
		for i := range list {
			if list[i].OnFailure == "" {
				list[i].OnFailure = Continue
			}
			if list[i].Kind == "" {
				list[i].Kind = KindSystem
			}
		}
		registry[Phase(phase)] = list
	}
}

// Defaults returns a copy of the built-in descriptor list for a phase. The
// registry is parsed once per process; callers may mutate the returned slice.
func Defaults(phase Phase) ([]Descriptor, error) {
	registryOnce.Do(loadRegistry)
	if registryErr != nil {
		return nil, registryErr
	}
	src := registry[phase]
	out := make([]Descriptor, len(src))
	copy(out, src)
	return out, nil
}
