// Package engine partitions the effective tool list into sequential and
// parallel groups, runs them against the changed-file set, and applies the
// failure policy. It owns no process-global state: everything it touches
// comes in through Deps.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/flarebyte/maat-hooks/internal/resolve"
	"github.com/flarebyte/maat-hooks/internal/summary"
	"github.com/flarebyte/maat-hooks/internal/tool"
	"github.com/flarebyte/maat-hooks/internal/ui"
	"go.uber.org/zap"
)

// FanOutLimit bounds how many per-file child processes run at once. The
// bound guards file-descriptor and process budgets, not correctness.
var FanOutLimit = 10

// RunResult is the outcome of one child-process invocation.
type RunResult struct {
	ExitCode int
	Output   string
	Err      error
}

// Runner launches one child process. In streaming mode output is forwarded
// live to the console as well as captured.
type Runner func(ctx context.Context, argv []string, streaming bool) RunResult

// Deps wires the engine's collaborators.
type Deps struct {
	Run        Runner
	Stage      func(files []string) error
	Sync       func() error
	Project    resolve.Project
	Printer    *ui.Printer
	Log        *zap.Logger
	Getenv     func(string) string
	Extractors []summary.Extractor
}

// Result is the ephemeral per-tool outcome driving the summarizer and the
// aggregate computation.
type Result struct {
	Name     string
	OK       bool
	Output   string
	Duration time.Duration
	Files    []string
}

// Report aggregates a whole hook run.
type Report struct {
	Results   []Result
	OK        bool
	StoppedBy string
}

type member struct {
	desc  tool.Descriptor
	files []string
}

// Run executes the descriptor list in declaration order. Groups run one
// after the other; a stop-policy failure aborts the remaining groups but
// never interrupts already-launched siblings in its own group.
func Run(ctx context.Context, list []tool.Descriptor, files []string, deps Deps) (Report, error) {
	report := Report{OK: true}
	for _, g := range groupDescriptors(list) {
		members := prepare(g, files, deps)
		if len(members) == 0 {
			deps.Log.Debug("group skipped, no runnable tools")
			continue
		}

		var results []Result
		if len(members) == 1 {
			results = []Result{runStreaming(ctx, members[0], deps)}
		} else {
			results = runBuffered(ctx, members, deps)
		}

		for _, r := range results {
			report.Results = append(report.Results, r)
			if !r.OK {
				report.OK = false
			}
		}

		// Re-staging happens here, in the main flow between groups, so two
		// tools never race on the git index.
		if err := reStage(members, results, deps); err != nil {
			return report, err
		}

		if name := firstStopFailure(members, results); name != "" {
			report.StoppedBy = name
			deps.Printer.Stopping(name)
			break
		}
	}
	return report, nil
}

// prepare screens group members: explicit env opt-out, extension filter, and
// tool availability. Each skip is reported and never counts as a failure.
func prepare(g group, files []string, deps Deps) []member {
	var members []member
	for _, d := range g.members {
		if truthy(deps.Getenv("SKIP_" + tool.NormalizeName(d.Name))) {
			deps.Printer.Skip(d.Name, "disabled via environment")
			continue
		}
		matching := d.MatchingFiles(files)
		if (len(d.Extensions) > 0 || d.PassFiles) && len(matching) == 0 {
			deps.Printer.Skip(d.Name, "no matching files")
			continue
		}
		if !deps.Project.Available(d) {
			deps.Printer.Skip(d.Name, "not installed")
			continue
		}
		members = append(members, member{desc: d, files: matching})
	}
	return members
}

// runStreaming handles the single-runnable-tool case with live output.
// Per-file members capture through the fan-out instead of streaming, so
// their output is relayed here.
func runStreaming(ctx context.Context, m member, deps Deps) Result {
	deps.Printer.Running(m.desc.Name, m.desc.Description)
	r := runMember(ctx, m, true, deps)
	if m.desc.PerFile {
		deps.Printer.Output(r.Output)
	}
	deps.Printer.Status(r.Name, r.OK, r.Duration)
	if !r.OK {
		deps.Printer.Fragment(summary.Summarize(r.Output, deps.Extractors))
	}
	return r
}

// runBuffered runs every member concurrently with captured output, then
// prints each member's result in declaration order, never interleaved.
func runBuffered(ctx context.Context, members []member, deps Deps) []Result {
	results := runIndexed(len(members), func(i int) Result {
		return runMember(ctx, members[i], false, deps)
	})
	for _, r := range results {
		deps.Printer.Output(r.Output)
		deps.Printer.Status(r.Name, r.OK, r.Duration)
		if !r.OK {
			deps.Printer.Fragment(summary.Summarize(r.Output, deps.Extractors))
		}
	}
	return results
}

func runMember(ctx context.Context, m member, streaming bool, deps Deps) Result {
	start := time.Now()
	var ok bool
	var output string
	if m.desc.PerFile {
		ok, output = runPerFile(ctx, m, deps)
	} else {
		argv := deps.Project.Argv(m.desc)
		if m.desc.PassFiles {
			argv = append(argv, m.files...)
		}
		rr := deps.Run(ctx, argv, streaming)
		ok = rr.Err == nil && rr.ExitCode == 0
		output = rr.Output
	}
	return Result{
		Name:     m.desc.Name,
		OK:       ok,
		Output:   output,
		Duration: time.Since(start),
		Files:    m.files,
	}
}

// runPerFile fans one invocation per file out in chunks of FanOutLimit; a
// chunk's calls start together and the next chunk waits for the previous one
// to fully resolve.
func runPerFile(ctx context.Context, m member, deps Deps) (bool, string) {
	ok := true
	var output string
	for lo := 0; lo < len(m.files); lo += FanOutLimit {
		hi := lo + FanOutLimit
		if hi > len(m.files) {
			hi = len(m.files)
		}
		chunk := m.files[lo:hi]
		results := runIndexed(len(chunk), func(i int) RunResult {
			argv := append(deps.Project.Argv(m.desc), chunk[i])
			return deps.Run(ctx, argv, false)
		})
		for i, rr := range results {
			if rr.Err != nil || rr.ExitCode != 0 {
				ok = false
			}
			if rr.Output != "" {
				output += chunk[i] + ":\n" + rr.Output
			}
		}
	}
	return ok, output
}

func reStage(members []member, results []Result, deps Deps) error {
	synced := false
	for i, m := range members {
		r := results[i]
		if !r.OK || !m.desc.ReStage || !m.desc.PassFiles || len(r.Files) == 0 {
			continue
		}
		if deps.Sync != nil && !synced {
			if err := deps.Sync(); err != nil {
				deps.Log.Warn("container sync failed", zap.Error(err))
			}
			synced = true
		}
		if err := deps.Stage(r.Files); err != nil {
			return fmt.Errorf("re-stage after %s: %w", m.desc.Name, err)
		}
		deps.Log.Debug("re-staged files", zap.String("tool", m.desc.Name), zap.Int("count", len(r.Files)))
	}
	return nil
}

func firstStopFailure(members []member, results []Result) string {
	for i, m := range members {
		if !results[i].OK && m.desc.OnFailure == tool.Stop {
			return m.desc.Name
		}
	}
	return ""
}

func truthy(s string) bool {
	switch s {
	case "", "0", "false", "no":
		return false
	}
	return true
}
