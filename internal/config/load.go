package config

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"go.uber.org/zap"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "GIT_HOOKS_CONFIG"

// configNames are the default candidate file names, tried in order after the
// environment override. The first existing, parseable file wins.
var configNames = []string{".git-hooks.config.json", ".githooks.json"}

//go:embed schema.cue
var schemaCUE string

var (
	cacheMu sync.Mutex
	cached  *HooksConfig
)

// Load returns the effective user configuration, memoized process-wide.
// It never fails: a missing file yields the empty config and a malformed one
// is logged as a warning and likewise degrades to empty.
func Load(getenv func(string) string, log *zap.Logger) *HooksConfig {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached != nil {
		return cached
	}
	cached = load(getenv, log)
	return cached
}

// Reset clears the memoized configuration so the next Load re-reads the file.
// Intended for tests.
func Reset() {
	cacheMu.Lock()
	cached = nil
	cacheMu.Unlock()
}

func load(getenv func(string) string, log *zap.Logger) *HooksConfig {
	path, ok := findConfigFile(getenv)
	if !ok {
		return &HooksConfig{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("config unreadable, using defaults", zap.String("path", path), zap.Error(err))
		return &HooksConfig{}
	}
	cfg, err := Parse(data)
	if err != nil {
		log.Warn("config invalid, using defaults", zap.String("path", path), zap.Error(err))
		return &HooksConfig{}
	}
	return cfg
}

func findConfigFile(getenv func(string) string) (string, bool) {
	candidates := make([]string, 0, len(configNames)+1)
	if p := getenv(EnvConfigPath); p != "" {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, configNames...)
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Parse validates the JSON document against the embedded CUE schema and
// decodes it. JSON is valid CUE, so the raw bytes compile directly.
func Parse(data []byte) (*HooksConfig, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("invalid schema: %v", err)
	}
	unified := schema.Unify(v)
	if err := unified.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	cfg := &HooksConfig{}
	if tv := v.LookupPath(cue.ParsePath("tools")); tv.Exists() {
		it, err := tv.Fields()
		if err != nil {
			return nil, fmt.Errorf("invalid tools section: %v", err)
		}
		cfg.Tools = map[string]ToolEntry{}
		for it.Next() {
			cfg.Tools[it.Selector().Unquoted()] = parseToolEntry(it.Value())
		}
	}
	decodeBool(v, "verbose", &cfg.Verbose, nil)
	if sv := v.LookupPath(cue.ParsePath("skip")); sv.Exists() {
		decodeBool(sv, "preCommit", &cfg.Skip.PreCommit, nil)
		decodeBool(sv, "prePush", &cfg.Skip.PrePush, nil)
		decodeBool(sv, "commitMsg", &cfg.Skip.CommitMsg, nil)
		decodeBool(sv, "tests", &cfg.Skip.Tests, nil)
		decodeBool(sv, "artifacts", &cfg.Skip.Artifacts, nil)
	}
	if cv := v.LookupPath(cue.ParsePath("container")); cv.Exists() {
		decodeString(cv, "service", &cfg.Container.Service, nil)
	}
	if sv := v.LookupPath(cue.ParsePath("summary")); sv.Exists() {
		decodeString(sv, "script", &cfg.Summary.Script, nil)
	}
	return cfg, nil
}

func parseToolEntry(v cue.Value) ToolEntry {
	var e ToolEntry
	decodeBool(v, "enabled", &e.Enabled, &e.HasEnabled)
	decodeString(v, "command", &e.Command, &e.HasCommand)
	decodeString(v, "kind", &e.Kind, &e.HasKind)
	decodeStrings(v, "args", &e.Args, &e.HasArgs)
	decodeStrings(v, "extensions", &e.Extensions, &e.HasExtensions)
	decodeBool(v, "perFile", &e.PerFile, &e.HasPerFile)
	decodeBool(v, "passFiles", &e.PassFiles, &e.HasPassFiles)
	decodeBool(v, "reStage", &e.ReStage, &e.HasReStage)
	decodeString(v, "onFailure", &e.OnFailure, &e.HasOnFailure)
	decodeString(v, "group", &e.Group, &e.HasGroup)
	decodeString(v, "description", &e.Description, &e.HasDescription)
	return e
}

func decodeBool(v cue.Value, name string, dst *bool, has *bool) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() || f.Kind() != cue.BoolKind {
		return
	}
	if err := f.Decode(dst); err == nil && has != nil {
		*has = true
	}
}

func decodeString(v cue.Value, name string, dst *string, has *bool) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() || f.Kind() != cue.StringKind {
		return
	}
	if err := f.Decode(dst); err == nil && has != nil {
		*has = true
	}
}

func decodeStrings(v cue.Value, name string, dst *[]string, has *bool) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() || f.Kind() != cue.ListKind {
		return
	}
	if err := f.Decode(dst); err == nil && has != nil {
		*has = true
	}
}
