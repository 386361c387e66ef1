package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flarebyte/maat-hooks/internal/resolve"
	"github.com/flarebyte/maat-hooks/internal/summary"
	"github.com/flarebyte/maat-hooks/internal/tool"
	"github.com/flarebyte/maat-hooks/internal/ui"
	"go.uber.org/zap"
)

// fakeRunner records every invocation and answers from a per-tag script. The
// tag is the descriptor's second argv element, set via Args in the fixtures.
type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	failing map[string]bool
	output  map[string]string
	delay   map[string]time.Duration
}

func (f *fakeRunner) run(_ context.Context, argv []string, _ bool) RunResult {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), argv...))
	f.mu.Unlock()
	tag := ""
	if len(argv) > 1 {
		tag = argv[1]
	}
	if d := f.delay[tag]; d > 0 {
		time.Sleep(d)
	}
	r := RunResult{Output: f.output[tag]}
	if f.failing[tag] {
		r.ExitCode = 1
	}
	return r
}

func (f *fakeRunner) callTags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tags []string
	for _, c := range f.calls {
		if len(c) > 1 {
			tags = append(tags, c[1])
		}
	}
	return tags
}

// desc builds a runnable fixture descriptor. The command is sh so availability
// checks pass on any build host; the fake runner never actually executes it.
func desc(name, tag, grp string, policy tool.FailurePolicy) tool.Descriptor {
	return tool.Descriptor{
		Name:      name,
		Command:   "sh",
		Kind:      tool.KindSystem,
		Args:      []string{tag},
		OnFailure: policy,
		Group:     grp,
	}
}

func testDeps(f *fakeRunner, out *bytes.Buffer) Deps {
	return Deps{
		Run:        f.run,
		Stage:      func([]string) error { return nil },
		Project:    resolve.Project{Root: "."},
		Printer:    ui.NewPrinter(out),
		Log:        zap.NewNop(),
		Getenv:     func(string) string { return "" },
		Extractors: summary.Default(),
	}
}

func TestRun_ContinuePolicyRunsLaterGroups(t *testing.T) {
	f := &fakeRunner{failing: map[string]bool{"b": true}}
	var out bytes.Buffer
	list := []tool.Descriptor{
		desc("A", "a", "", tool.Continue),
		desc("B", "b", "", tool.Continue),
		desc("D", "d", "", tool.Continue),
	}
	report, err := Run(context.Background(), list, nil, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OK {
		t.Fatalf("aggregate must fail when any tool fails")
	}
	if report.StoppedBy != "" {
		t.Fatalf("continue policy must not stop: %+v", report)
	}
	tags := f.callTags()
	if len(tags) != 3 || tags[2] != "d" {
		t.Fatalf("later tools must still run: %+v", tags)
	}
}

func TestRun_ContinueFailureInGroupRunsNextGroup(t *testing.T) {
	f := &fakeRunner{failing: map[string]bool{"b": true}}
	var out bytes.Buffer
	list := []tool.Descriptor{
		desc("A", "a", "", tool.Continue),
		desc("B", "b", "x", tool.Continue),
		desc("C", "c", "x", tool.Continue),
		desc("D", "d", "", tool.Continue),
	}
	report, err := Run(context.Background(), list, nil, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OK || report.StoppedBy != "" {
		t.Fatalf("report mismatch: %+v", report)
	}
	ran := map[string]bool{}
	for _, tag := range f.callTags() {
		ran[tag] = true
	}
	for _, tag := range []string{"a", "b", "c", "d"} {
		if !ran[tag] {
			t.Fatalf("%s must run under continue policy: %+v", tag, ran)
		}
	}
	if len(report.Results) != 4 {
		t.Fatalf("results mismatch: %+v", report.Results)
	}
}

func TestRun_StopPolicyAbortsRemaining(t *testing.T) {
	f := &fakeRunner{failing: map[string]bool{"b": true}}
	var out bytes.Buffer
	list := []tool.Descriptor{
		desc("A", "a", "", tool.Continue),
		desc("B", "b", "", tool.Stop),
		desc("D", "d", "", tool.Continue),
	}
	report, err := Run(context.Background(), list, nil, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OK || report.StoppedBy != "B" {
		t.Fatalf("report mismatch: %+v", report)
	}
	for _, tag := range f.callTags() {
		if tag == "d" {
			t.Fatalf("tools after a stop failure must not run")
		}
	}
	if !strings.Contains(out.String(), "stopping") {
		t.Fatalf("expected a stopping line: %q", out.String())
	}
}

func TestRun_StopFailureFinishesOwnGroup(t *testing.T) {
	f := &fakeRunner{failing: map[string]bool{"b": true}}
	var out bytes.Buffer
	list := []tool.Descriptor{
		desc("B", "b", "static", tool.Stop),
		desc("C", "c", "static", tool.Continue),
		desc("D", "d", "", tool.Continue),
	}
	report, err := Run(context.Background(), list, nil, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tags := f.callTags()
	ran := map[string]bool{}
	for _, tag := range tags {
		ran[tag] = true
	}
	if !ran["c"] {
		t.Fatalf("group siblings must finish: %+v", tags)
	}
	if ran["d"] {
		t.Fatalf("next group must not start: %+v", tags)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results mismatch: %+v", report.Results)
	}
}

func TestRun_BufferedOutputInDeclarationOrder(t *testing.T) {
	f := &fakeRunner{
		output: map[string]string{"p": "out-p\n", "q": "out-q\n", "r": "out-r\n"},
		// Reverse the completion order so interleaving would show.
		delay: map[string]time.Duration{"p": 30 * time.Millisecond, "q": 15 * time.Millisecond},
	}
	var out bytes.Buffer
	list := []tool.Descriptor{
		desc("P", "p", "g", tool.Continue),
		desc("Q", "q", "g", tool.Continue),
		desc("R", "r", "g", tool.Continue),
	}
	report, err := Run(context.Background(), list, nil, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK {
		t.Fatalf("report mismatch: %+v", report)
	}
	s := out.String()
	ip, iq, ir := strings.Index(s, "out-p"), strings.Index(s, "out-q"), strings.Index(s, "out-r")
	if ip < 0 || iq < 0 || ir < 0 || !(ip < iq && iq < ir) {
		t.Fatalf("buffered output must print in declaration order: %q", s)
	}
}

func TestRun_EnvSkip(t *testing.T) {
	f := &fakeRunner{}
	var out bytes.Buffer
	deps := testDeps(f, &out)
	deps.Getenv = func(k string) string {
		if k == "SKIP_PHPSTAN" {
			return "1"
		}
		return ""
	}
	list := []tool.Descriptor{desc("PHPStan", "b", "", tool.Stop)}
	report, err := Run(context.Background(), list, nil, deps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK || len(report.Results) != 0 {
		t.Fatalf("skipped tool must not count: %+v", report)
	}
	if len(f.callTags()) != 0 {
		t.Fatalf("skipped tool must not run")
	}
	if !strings.Contains(out.String(), "disabled via environment") {
		t.Fatalf("expected a skip line: %q", out.String())
	}
}

func TestRun_NoMatchingFilesSkips(t *testing.T) {
	f := &fakeRunner{}
	var out bytes.Buffer
	d := desc("Pint", "a", "", tool.Continue)
	d.Extensions = []string{".php"}
	d.PassFiles = true
	report, err := Run(context.Background(), []tool.Descriptor{d}, []string{"main.js"}, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK || len(f.callTags()) != 0 {
		t.Fatalf("tool without matching files must be skipped: %+v", report)
	}
	if !strings.Contains(out.String(), "no matching files") {
		t.Fatalf("expected a skip reason: %q", out.String())
	}
}

func TestRun_NoFilterRunsWithoutFiles(t *testing.T) {
	f := &fakeRunner{}
	var out bytes.Buffer
	d := desc("PHPStan Full", "a", "", tool.Continue)
	report, err := Run(context.Background(), []tool.Descriptor{d}, nil, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK || len(f.callTags()) != 1 {
		t.Fatalf("unfiltered tool must run on an empty file list: %+v", report)
	}
}

func TestRun_PassFilesAppendsMatches(t *testing.T) {
	f := &fakeRunner{}
	var out bytes.Buffer
	d := desc("Pint", "a", "", tool.Continue)
	d.Extensions = []string{".php"}
	d.PassFiles = true
	files := []string{"app/A.php", "web.js", "app/B.php"}
	if _, err := Run(context.Background(), []tool.Descriptor{d}, files, testDeps(f, &out)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	call := f.calls[0]
	got := strings.Join(call, " ")
	if !strings.HasSuffix(got, "app/A.php app/B.php") {
		t.Fatalf("matching files must be appended: %+v", call)
	}
	if strings.Contains(got, "web.js") {
		t.Fatalf("non-matching files must not be passed: %+v", call)
	}
}

func TestRun_PerFileFanOut(t *testing.T) {
	prev := FanOutLimit
	FanOutLimit = 2
	defer func() { FanOutLimit = prev }()

	f := &fakeRunner{failing: map[string]bool{"t": false}}
	var out bytes.Buffer
	d := desc("Blade Formatter", "t", "", tool.Continue)
	d.Extensions = []string{".blade.php"}
	d.PerFile = true
	d.PassFiles = true
	files := []string{"a.blade.php", "b.blade.php", "c.blade.php", "d.blade.php", "e.blade.php"}
	report, err := Run(context.Background(), []tool.Descriptor{d}, files, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK {
		t.Fatalf("report mismatch: %+v", report)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) != len(files) {
		t.Fatalf("expected one invocation per file: %d", len(f.calls))
	}
	seen := map[string]bool{}
	for _, c := range f.calls {
		last := c[len(c)-1]
		if !strings.HasSuffix(last, ".blade.php") {
			t.Fatalf("each invocation must carry exactly one file: %+v", c)
		}
		seen[last] = true
	}
	if len(seen) != len(files) {
		t.Fatalf("every file must be visited once: %+v", seen)
	}
}

func TestRun_PerFileAggregatesFailures(t *testing.T) {
	f := &fakeRunner{failing: map[string]bool{"t": true}, output: map[string]string{"t": "bad\n"}}
	var out bytes.Buffer
	d := desc("Blade Formatter", "t", "", tool.Continue)
	d.PerFile = true
	d.PassFiles = true
	report, err := Run(context.Background(), []tool.Descriptor{d}, []string{"x.blade.php"}, testDeps(f, &out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OK {
		t.Fatalf("per-file failure must fail the tool")
	}
	if !strings.Contains(report.Results[0].Output, "x.blade.php:") {
		t.Fatalf("per-file output must be prefixed with the file: %q", report.Results[0].Output)
	}
}

func TestRun_PerFileSoleMemberRelaysOutput(t *testing.T) {
	f := &fakeRunner{
		failing: map[string]bool{"t": true},
		output:  map[string]string{"t": "expected 4 spaces of indentation\n"},
	}
	var out bytes.Buffer
	d := desc("Blade Formatter", "t", "", tool.Continue)
	d.Extensions = []string{".blade.php"}
	d.PerFile = true
	d.PassFiles = true
	if _, err := Run(context.Background(), []tool.Descriptor{d}, []string{"x.blade.php"}, testDeps(f, &out)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "expected 4 spaces of indentation") {
		t.Fatalf("per-file output must reach the console: %q", s)
	}
	if !strings.Contains(s, "x.blade.php:") {
		t.Fatalf("per-file output must carry the file prefix: %q", s)
	}
}

func TestRun_ReStageOnFixerSuccess(t *testing.T) {
	f := &fakeRunner{}
	var out bytes.Buffer
	var staged [][]string
	var synced int
	deps := testDeps(f, &out)
	deps.Stage = func(files []string) error {
		staged = append(staged, append([]string(nil), files...))
		return nil
	}
	deps.Sync = func() error { synced++; return nil }

	fixer := desc("Pint", "a", "g", tool.Continue)
	fixer.Extensions = []string{".php"}
	fixer.PassFiles = true
	fixer.ReStage = true
	other := desc("Prettier", "b", "g", tool.Continue)
	other.Extensions = []string{".php"}
	other.PassFiles = true
	other.ReStage = true

	files := []string{"a.php", "b.php"}
	if _, err := Run(context.Background(), []tool.Descriptor{fixer, other}, files, deps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(staged) != 2 {
		t.Fatalf("both fixers must re-stage: %+v", staged)
	}
	if synced != 1 {
		t.Fatalf("sync must run once per group: %d", synced)
	}
}

func TestRun_NoReStageOnFailure(t *testing.T) {
	f := &fakeRunner{failing: map[string]bool{"a": true}}
	var out bytes.Buffer
	staged := 0
	deps := testDeps(f, &out)
	deps.Stage = func([]string) error { staged++; return nil }

	fixer := desc("Pint", "a", "", tool.Continue)
	fixer.Extensions = []string{".php"}
	fixer.PassFiles = true
	fixer.ReStage = true
	if _, err := Run(context.Background(), []tool.Descriptor{fixer}, []string{"a.php"}, deps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if staged != 0 {
		t.Fatalf("failed fixer must not re-stage")
	}
}

func TestRun_StageErrorAborts(t *testing.T) {
	f := &fakeRunner{}
	var out bytes.Buffer
	deps := testDeps(f, &out)
	deps.Stage = func([]string) error { return errors.New("index locked") }

	fixer := desc("Pint", "a", "", tool.Continue)
	fixer.Extensions = []string{".php"}
	fixer.PassFiles = true
	fixer.ReStage = true
	_, err := Run(context.Background(), []tool.Descriptor{fixer}, []string{"a.php"}, deps)
	if err == nil || !strings.Contains(err.Error(), "re-stage after Pint") {
		t.Fatalf("stage failure must abort the run: %v", err)
	}
}

func TestRun_FailureFragmentPrinted(t *testing.T) {
	f := &fakeRunner{
		failing: map[string]bool{"a": true},
		output:  map[string]string{"a": "PHP Fatal error: oops in app/Bad.php on line 7\n"},
	}
	var out bytes.Buffer
	list := []tool.Descriptor{desc("PHPStan", "a", "", tool.Continue)}
	if _, err := Run(context.Background(), list, nil, testDeps(f, &out)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "app/Bad.php:7") {
		t.Fatalf("expected extracted fragment: %q", out.String())
	}
}
