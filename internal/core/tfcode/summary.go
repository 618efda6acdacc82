package tfcode

import (
	"sort"
	"strings"
)

// BlockSummary is the compact per-block description injected into agent
// context.
type BlockSummary struct {
	Type         string `json:"type"`
	Address      string `json:"address,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	Name         string `json:"name,omitempty"`
	LocalNames   string `json:"local_names,omitempty"`
	FileName     string `json:"file_name"`
	GroupPath    string `json:"group_path"`
}

// ProjectSummary is the blocks-by-file view plus the flat dependency edge
// list for one branch's configuration.
type ProjectSummary struct {
	Files        map[string][]BlockSummary `json:"files"`
	Dependencies []Reference               `json:"dependencies"`
	ParseErrors  []ParseError              `json:"parse_errors,omitempty"`
}

// Summarize builds the agent-facing summary for a snapshot
func Summarize(s *Snapshot) *ProjectSummary {
	summary := &ProjectSummary{
		Files:       make(map[string][]BlockSummary),
		ParseErrors: s.Errors,
	}

	for _, b := range s.Blocks {
		bs := BlockSummary{
			Type:      string(b.Kind),
			Address:   b.Address,
			FileName:  b.FileName,
			GroupPath: b.GroupPath,
		}
		switch b.Kind {
		case KindResource, KindData:
			bs.ResourceType = b.Type
			bs.Name = b.Name
		case KindModule, KindOutput, KindVariable, KindProvider:
			bs.Name = b.Name
		case KindLocals:
			names := make([]string, 0, len(b.Config))
			for key := range b.Config {
				names = append(names, key)
			}
			sort.Strings(names)
			bs.LocalNames = strings.Join(names, ", ")
		}
		summary.Files[b.File] = append(summary.Files[b.File], bs)
	}

	summary.Dependencies = ExtractAll(s)

	return summary
}
