// Package lifecycle wraps one hook invocation: global skip conditions, env
// file loading, timing, and the guarantee that no fault escapes to the shell
// unmapped. Exit-code translation stays with the CLI adapter; Run itself is
// a pure state machine over its dependencies.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/flarebyte/maat-hooks/internal/envfile"
	"github.com/flarebyte/maat-hooks/internal/tool"
	"github.com/flarebyte/maat-hooks/internal/ui"
	"go.uber.org/zap"
)

// Outcome is the terminal result of a hook invocation. A run moves
// Idle→Terminated directly when a skip condition holds, otherwise
// Idle→Running→Terminated; Outcome captures the Terminated leg.
type Outcome struct {
	OK       bool
	Skipped  bool
	Reason   string
	Duration time.Duration
}

// Deps wires the wrapper's collaborators.
type Deps struct {
	Getenv          func(string) string
	MergeInProgress func() bool
	Printer         *ui.Printer
	Log             *zap.Logger
}

// Run drives one hook phase. Transitions: Idle→Terminated(success) when a
// skip condition holds; otherwise Idle→Running→Terminated with the callback's
// boolean mapped through. A panic anywhere inside the callback terminates as
// failure, never as an escaped fault.
func Run(phase tool.Phase, skipConfigured bool, deps Deps, fn func(ctx context.Context) (bool, error)) Outcome {
	if truthy(deps.Getenv(phase.SkipEnvVar())) {
		deps.Printer.Skipped(string(phase), "disabled via "+phase.SkipEnvVar())
		return Outcome{OK: true, Skipped: true, Reason: "env"}
	}
	if skipConfigured {
		deps.Printer.Skipped(string(phase), "disabled via config")
		return Outcome{OK: true, Skipped: true, Reason: "config"}
	}
	if deps.MergeInProgress != nil && deps.MergeInProgress() {
		deps.Printer.Skipped(string(phase), "merge in progress")
		return Outcome{OK: true, Skipped: true, Reason: "merge"}
	}

	if path, err := envfile.Load(deps.Getenv); err != nil {
		deps.Log.Warn("env file not loaded", zap.String("path", path), zap.Error(err))
	} else if path != "" {
		deps.Log.Debug("env file loaded", zap.String("path", path))
	}

	start := time.Now()
	ok := run(fn, deps.Log)
	out := Outcome{OK: ok, Duration: time.Since(start)}
	deps.Printer.Summary(out.OK, out.Duration)
	return out
}

// run isolates the panic boundary: any uncaught fault in the pipeline maps
// to a failed run.
func run(fn func(ctx context.Context) (bool, error), log *zap.Logger) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("unexpected failure", zap.String("panic", fmt.Sprint(r)))
			ok = false
		}
	}()
	ok, err := fn(context.Background())
	if err != nil {
		log.Error("hook run failed", zap.Error(err))
		return false
	}
	return ok
}

func truthy(s string) bool {
	switch s {
	case "", "0", "false", "no":
		return false
	}
	return true
}
