// Package envfile loads an optional dotenv-style file into the process
// environment before any tool runs.
package envfile

import (
	"os"

	"github.com/joho/godotenv"
)

// EnvFilePath overrides the env file location when set.
const EnvFilePath = "GIT_HOOKS_ENV"

var defaultNames = []string{".git-hooks.env", ".env"}

// Load loads the first existing candidate file. A missing file is not an
// error; a malformed one is, so the caller can warn and continue.
func Load(getenv func(string) string) (string, error) {
	candidates := make([]string, 0, len(defaultNames)+1)
	if p := getenv(EnvFilePath); p != "" {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, defaultNames...)
	for _, p := range candidates {
		if st, err := os.Stat(p); err != nil || st.IsDir() {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return p, err
		}
		return p, nil
	}
	return "", nil
}
