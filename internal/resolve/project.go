package resolve

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/flarebyte/maat-hooks/internal/tool"
)

// composeFiles mark a containerized project when any of them is present.
var composeFiles = []string{"docker-compose.yml", "docker-compose.yaml", "compose.yaml"}

// trustedContainerCommands are assumed present inside the container without a
// path check, since the host cannot stat the container filesystem.
var trustedContainerCommands = map[string]bool{"php": true, "composer": true}

const defaultComposeService = "app"

// Project captures the execution environment tools run against.
type Project struct {
	Root          string
	Containerized bool
	Service       string

	// lookPath is a seam for tests; defaults to exec.LookPath.
	lookPath func(string) (string, error)
}

// DetectProject probes the project root for a container descriptor and the
// container runtime. A filesystem error other than absence is a hard error:
// the run cannot safely decide how to invoke tools.
func DetectProject(root, service string) (Project, error) {
	if service == "" {
		service = defaultComposeService
	}
	p := Project{Root: root, Service: service, lookPath: exec.LookPath}
	for _, name := range composeFiles {
		_, err := os.Stat(filepath.Join(root, name))
		if err == nil {
			p.Containerized = true
			break
		}
		if !os.IsNotExist(err) {
			return Project{}, fmt.Errorf("container probe failed: %w", err)
		}
	}
	if p.Containerized {
		if _, err := p.lookPath("docker"); err != nil {
			// Compose file without a runtime: run tools on the host.
			p.Containerized = false
		}
	}
	return p, nil
}

// Argv builds the full command line for a descriptor, wrapping vendor tools
// in docker compose exec for containerized projects.
func (p Project) Argv(d tool.Descriptor) []string {
	argv := append([]string{Command(d)}, d.Args...)
	if p.Containerized && d.Kind == tool.KindVendor {
		return append([]string{"docker", "compose", "exec", "-T", p.Service}, argv...)
	}
	return argv
}

// Available reports whether the descriptor can be invoked. Vendor tools in a
// containerized project trust the common entry commands unconditionally and
// otherwise check the mounted vendor path; everything else checks the
// resolved path, falling back to a system PATH lookup.
func (p Project) Available(d tool.Descriptor) bool {
	if p.Containerized && d.Kind == tool.KindVendor {
		if trustedContainerCommands[d.Command] {
			return true
		}
		return p.exists(Command(d))
	}
	if p.exists(Command(d)) {
		return true
	}
	look := p.lookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look(d.Command)
	return err == nil
}

// SyncArgv is the best-effort filesystem flush run before re-staging files a
// container-backed tool may have mutated through the mount.
func (p Project) SyncArgv() []string {
	if !p.Containerized {
		return nil
	}
	return []string{"docker", "compose", "exec", "-T", p.Service, "sync"}
}

func (p Project) exists(rel string) bool {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Root, rel)
	}
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
