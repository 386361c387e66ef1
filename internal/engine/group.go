package engine

import "github.com/flarebyte/maat-hooks/internal/tool"

// group is a maximal run of contiguous descriptors sharing one non-empty
// parallel label, or a singleton. Grouping never reorders descriptors and
// never looks past a label boundary.
type group struct {
	label   string
	members []tool.Descriptor
}

func groupDescriptors(list []tool.Descriptor) []group {
	var groups []group
	for _, d := range list {
		if d.Group != "" && len(groups) > 0 {
			last := &groups[len(groups)-1]
			if last.label == d.Group {
				last.members = append(last.members, d)
				continue
			}
		}
		groups = append(groups, group{label: d.Group, members: []tool.Descriptor{d}})
	}
	return groups
}
