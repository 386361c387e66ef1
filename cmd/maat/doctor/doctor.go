// Package doctor implements `maat doctor`: a diagnostic listing of every
// configured tool, how its command resolves, and whether it is available.
package doctor

import (
	"fmt"
	"os"

	"github.com/flarebyte/maat-hooks/internal/config"
	"github.com/flarebyte/maat-hooks/internal/gitindex"
	"github.com/flarebyte/maat-hooks/internal/logging"
	"github.com/flarebyte/maat-hooks/internal/resolve"
	"github.com/flarebyte/maat-hooks/internal/tool"
	"github.com/spf13/cobra"
)

var phases = []tool.Phase{tool.PreCommit, tool.PrePush, tool.Tests, tool.Artifacts, tool.CommitMsg}

// Cmd implements `maat doctor`.
var Cmd = &cobra.Command{
	Use:           "doctor",
	Short:         "Show tool resolution and availability per hook phase",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(false)
		cfg := config.Load(os.Getenv, log)

		root := "."
		if repo, err := gitindex.Open("."); err == nil {
			root = repo.Root()
		}
		project, err := resolve.DetectProject(root, cfg.Container.Service)
		if err != nil {
			return err
		}
		if project.Containerized {
			fmt.Fprintf(os.Stdout, "containerized project (service %q)\n", project.Service)
		}

		for _, phase := range phases {
			defaults, err := tool.Defaults(phase)
			if err != nil {
				return err
			}
			list := config.Apply(defaults, cfg, log)
			if len(list) == 0 {
				continue
			}
			fmt.Fprintf(os.Stdout, "%s:\n", phase)
			for _, d := range list {
				state := "missing"
				if project.Available(d) {
					state = "ok"
				}
				fmt.Fprintf(os.Stdout, "  %-20s %-8s %s\n", d.Name, state, resolve.Command(d))
			}
		}
		return nil
	},
}
