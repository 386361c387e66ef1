// Package summary extracts a short, actionable fragment from a failed tool's
// mixed stdout/stderr. Extraction is a pure, ordered chain of extractors; the
// first match wins and the raw text is the final fallback.
package summary

import (
	"regexp"
	"strings"
)

const shortLineMax = 120

// Extractor tries to pull a display fragment out of raw tool output.
type Extractor interface {
	Extract(raw string) (string, bool)
}

// Summarize runs the extractor chain over the raw output. It never fails:
// when nothing matches, the collapsed raw text is returned.
func Summarize(raw string, extractors []Extractor) string {
	for _, ex := range extractors {
		if frag, ok := ex.Extract(raw); ok {
			return frag
		}
	}
	return collapse(raw)
}

// Default returns the built-in extractor chain.
func Default() []Extractor {
	return []Extractor{phpFatal{}, fileLine{}, firstShortLine{max: shortLineMax}}
}

// phpFatal matches PHP's fatal/parse error format, the most common hard
// failure shape for the vendor toolchain.
type phpFatal struct{}

var phpFatalPattern = regexp.MustCompile(`(?m)(?:PHP )?(?:Fatal|Parse) error:\s*(.+?) in (\S+) on line (\d+)`)

func (phpFatal) Extract(raw string) (string, bool) {
	m := phpFatalPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[2] + ":" + m[3] + " " + m[1], true
}

// fileLine matches a generic path:line[:col] reference.
type fileLine struct{}

var fileLinePattern = regexp.MustCompile(`(?m)([\w./\\-]+\.\w+):(\d+)(?::(\d+))?`)

func (fileLine) Extract(raw string) (string, bool) {
	m := fileLinePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	frag := m[1] + ":" + m[2]
	if m[3] != "" {
		frag += ":" + m[3]
	}
	return frag, true
}

// firstShortLine falls back to the first non-empty line under a length
// ceiling.
type firstShortLine struct{ max int }

func (e firstShortLine) Extract(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) <= e.max {
			return line, true
		}
		return "", false
	}
	return "", false
}

// collapse flattens whitespace so the fallback stays a single line.
func collapse(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if len(s) > shortLineMax*2 {
		s = s[:shortLineMax*2]
	}
	return s
}
