package hook

import (
	"context"
	"fmt"
	"os"

	"github.com/flarebyte/maat-hooks/internal/config"
	"github.com/flarebyte/maat-hooks/internal/engine"
	"github.com/flarebyte/maat-hooks/internal/gitindex"
	"github.com/flarebyte/maat-hooks/internal/lifecycle"
	"github.com/flarebyte/maat-hooks/internal/logging"
	"github.com/flarebyte/maat-hooks/internal/resolve"
	"github.com/flarebyte/maat-hooks/internal/summary"
	"github.com/flarebyte/maat-hooks/internal/tool"
	"github.com/flarebyte/maat-hooks/internal/ui"
	"go.uber.org/zap"
)

type hookExitError struct{ msg string }

func (e hookExitError) Error() string { return e.msg }
func (e hookExitError) ExitCode() int { return 1 }

// runPhase is the shared wiring for the three hook subcommands. Anything the
// run cannot safely proceed without (repository, container identity) returns
// a hard error; everything else degrades.
func runPhase(phase tool.Phase, filesFn func(*gitindex.Repo) ([]string, error)) error {
	getenv := os.Getenv
	verbose := truthy(getenv("GIT_HOOKS_VERBOSE"))
	log := logging.New(verbose)
	cfg := config.Load(getenv, log)
	if cfg.Verbose && !verbose {
		log = logging.New(true)
	}
	printer := ui.NewPrinter(os.Stdout)

	repo, err := gitindex.Open(".")
	if err != nil {
		return err
	}

	deps := lifecycle.Deps{
		Getenv:          getenv,
		MergeInProgress: repo.MergeInProgress,
		Printer:         printer,
		Log:             log,
	}
	outcome := lifecycle.Run(phase, cfg.SkipPhase(string(phase)), deps, func(ctx context.Context) (bool, error) {
		return runTools(ctx, phase, repo, cfg, filesFn, printer, log, getenv)
	})
	if !outcome.OK {
		return hookExitError{msg: string(phase) + " failed"}
	}
	return nil
}

func runTools(
	ctx context.Context,
	phase tool.Phase,
	repo *gitindex.Repo,
	cfg *config.HooksConfig,
	filesFn func(*gitindex.Repo) ([]string, error),
	printer *ui.Printer,
	log *zap.Logger,
	getenv func(string) string,
) (bool, error) {
	files, err := filesFn(repo)
	if err != nil {
		return false, err
	}
	list, err := effectiveList(phase, cfg, getenv, log)
	if err != nil {
		return false, err
	}
	project, err := resolve.DetectProject(repo.Root(), cfg.Container.Service)
	if err != nil {
		return false, err
	}

	extractors := summary.Default()
	if cfg.Summary.Script != "" {
		lx, err := summary.NewLuaExtractor(cfg.Summary.Script)
		if err != nil {
			log.Warn("summary script not loaded", zap.Error(err))
		} else {
			extractors = append([]summary.Extractor{lx}, extractors...)
		}
	}

	runner := engine.NewExecRunner(repo.Root())
	report, err := engine.Run(ctx, list, files, engine.Deps{
		Run:        runner,
		Stage:      repo.Add,
		Sync:       syncFn(runner, project),
		Project:    project,
		Printer:    printer,
		Log:        log,
		Getenv:     getenv,
		Extractors: extractors,
	})
	if err != nil {
		return false, err
	}
	return report.OK, nil
}

// effectiveList builds the descriptor list for a phase: built-in defaults,
// pre-push extended with tests and artifact tools unless skipped, then user
// overrides applied on top.
func effectiveList(phase tool.Phase, cfg *config.HooksConfig, getenv func(string) string, log *zap.Logger) ([]tool.Descriptor, error) {
	defaults, err := tool.Defaults(phase)
	if err != nil {
		return nil, err
	}
	if phase == tool.PrePush {
		if !cfg.Skip.Tests && !truthy(getenv(tool.Tests.SkipEnvVar())) {
			tests, err := tool.Defaults(tool.Tests)
			if err != nil {
				return nil, err
			}
			defaults = append(tests, defaults...)
		}
		if !cfg.Skip.Artifacts && !truthy(getenv(tool.Artifacts.SkipEnvVar())) {
			artifacts, err := tool.Defaults(tool.Artifacts)
			if err != nil {
				return nil, err
			}
			defaults = append(defaults, artifacts...)
		}
	}
	return config.Apply(defaults, cfg, log), nil
}

// syncFn returns the container filesystem flush hook, or nil on host-only
// projects.
func syncFn(runner engine.Runner, project resolve.Project) func() error {
	argv := project.SyncArgv()
	if argv == nil {
		return nil
	}
	return func() error {
		rr := runner(context.Background(), argv, false)
		if rr.Err != nil {
			return rr.Err
		}
		if rr.ExitCode != 0 {
			return fmt.Errorf("sync exited %d", rr.ExitCode)
		}
		return nil
	}
}

func truthy(s string) bool {
	switch s {
	case "", "0", "false", "no":
		return false
	}
	return true
}
