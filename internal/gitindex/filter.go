package gitindex

import (
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// vendoredPatterns exclude dependency and generated directories from the
// changed-file list; tools never lint third-party code.
var vendoredPatterns = []string{
	"vendor/",
	"node_modules/",
	"storage/",
	".git/",
}

var vendoredMatcher = func() gitignore.Matcher {
	patterns := make([]gitignore.Pattern, 0, len(vendoredPatterns))
	for _, p := range vendoredPatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	return gitignore.NewMatcher(patterns)
}()

// FilterVendored drops paths under dependency directories, preserving order.
func FilterVendored(files []string) []string {
	var out []string
	for _, f := range files {
		comps := strings.Split(strings.TrimPrefix(f, "./"), "/")
		if vendoredMatcher.Match(comps, false) {
			continue
		}
		out = append(out, f)
	}
	return out
}
