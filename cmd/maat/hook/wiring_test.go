package hook

import (
	"testing"

	"github.com/flarebyte/maat-hooks/internal/config"
	"github.com/flarebyte/maat-hooks/internal/tool"
	"go.uber.org/zap"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func listNames(list []tool.Descriptor) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.Name
	}
	return out
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestEffectiveList_PrePushExtended(t *testing.T) {
	list, err := effectiveList(tool.PrePush, &config.HooksConfig{}, env(nil), zap.NewNop())
	if err != nil {
		t.Fatalf("effectiveList: %v", err)
	}
	names := listNames(list)
	if !contains(names, "PHPUnit") || !contains(names, "Composer Audit") {
		t.Fatalf("pre-push must include tests and artifact tools: %+v", names)
	}
	// Tests run before the static analysis tools, artifacts after.
	if names[0] != "PHPUnit" {
		t.Fatalf("tests must lead the pre-push list: %+v", names)
	}
	if names[len(names)-1] != "Composer Audit" {
		t.Fatalf("artifacts must trail the pre-push list: %+v", names)
	}
}

func TestEffectiveList_SkipTestsConfig(t *testing.T) {
	cfg := &config.HooksConfig{Skip: config.Skip{Tests: true}}
	list, err := effectiveList(tool.PrePush, cfg, env(nil), zap.NewNop())
	if err != nil {
		t.Fatalf("effectiveList: %v", err)
	}
	if contains(listNames(list), "PHPUnit") {
		t.Fatalf("skip.tests must drop the test tools: %+v", listNames(list))
	}
}

func TestEffectiveList_SkipArtifactsEnv(t *testing.T) {
	e := env(map[string]string{"SKIP_ARTIFACTS": "1"})
	list, err := effectiveList(tool.PrePush, &config.HooksConfig{}, e, zap.NewNop())
	if err != nil {
		t.Fatalf("effectiveList: %v", err)
	}
	if contains(listNames(list), "Composer Audit") {
		t.Fatalf("SKIP_ARTIFACTS must drop the artifact tools: %+v", listNames(list))
	}
}

func TestEffectiveList_PreCommitNotExtended(t *testing.T) {
	list, err := effectiveList(tool.PreCommit, &config.HooksConfig{}, env(nil), zap.NewNop())
	if err != nil {
		t.Fatalf("effectiveList: %v", err)
	}
	names := listNames(list)
	if contains(names, "PHPUnit") || contains(names, "Composer Audit") {
		t.Fatalf("pre-commit must not carry pre-push sub-phases: %+v", names)
	}
}

func TestEffectiveList_OverridesApply(t *testing.T) {
	cfg := &config.HooksConfig{Tools: map[string]config.ToolEntry{
		"pint": {HasEnabled: true, Enabled: false},
	}}
	list, err := effectiveList(tool.PreCommit, cfg, env(nil), zap.NewNop())
	if err != nil {
		t.Fatalf("effectiveList: %v", err)
	}
	if contains(listNames(list), "Pint") {
		t.Fatalf("user overrides must apply on the extended list: %+v", listNames(list))
	}
}

func TestHookExitError(t *testing.T) {
	err := hookExitError{msg: "pre-commit failed"}
	if err.Error() != "pre-commit failed" || err.ExitCode() != 1 {
		t.Fatalf("exit error mismatch: %v, %d", err.Error(), err.ExitCode())
	}
}
