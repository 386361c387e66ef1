package summary

import (
	"strings"
	"testing"
)

func TestSummarize_PHPFatal(t *testing.T) {
	raw := "some preamble\nPHP Fatal error: Call to undefined method foo() in app/Http/Kernel.php on line 42\ntrailer"
	got := Summarize(raw, Default())
	want := "app/Http/Kernel.php:42 Call to undefined method foo()"
	if got != want {
		t.Fatalf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarize_ParseErrorWithoutPrefix(t *testing.T) {
	raw := "Parse error: syntax error, unexpected '}' in routes/web.php on line 9"
	got := Summarize(raw, Default())
	if !strings.HasPrefix(got, "routes/web.php:9") {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarize_FileLineColumn(t *testing.T) {
	raw := "ERROR in build\nsrc/components/App.vue:17:3 'x' is defined but never used"
	got := Summarize(raw, Default())
	if got != "src/components/App.vue:17:3" {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarize_FirstShortLineFallback(t *testing.T) {
	raw := "\n\n  1 failing test\nlong detail follows"
	got := Summarize(raw, Default())
	if got != "1 failing test" {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarize_CollapseFallback(t *testing.T) {
	long := strings.Repeat("x", 200)
	raw := long + "\nmore " + long
	got := Summarize(raw, Default())
	if strings.ContainsAny(got, "\n") {
		t.Fatalf("fallback must be one line: %q", got)
	}
	if len(got) > shortLineMax*2 {
		t.Fatalf("fallback too long: %d", len(got))
	}
}

func TestSummarize_EmptyExtractorChain(t *testing.T) {
	got := Summarize("  a   b\nc  ", nil)
	if got != "a b c" {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarize_OrderFirstMatchWins(t *testing.T) {
	// Output containing both a fatal error and an earlier file:line pattern;
	// the fatal extractor sits first in the chain and must win.
	raw := "lint.js:1:1 warning\nPHP Fatal error: boom in a.php on line 2"
	got := Summarize(raw, Default())
	if !strings.HasPrefix(got, "a.php:2") {
		t.Fatalf("chain order violated: %q", got)
	}
}
