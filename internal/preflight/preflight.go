package preflight

import (
	"context"

	"highlighter/internal/config"
	"highlighter/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Report groups directory checks and tool availability.
type Report struct {
	Directories []Result
	Tools       []deps.Status
}

// Ready reports whether every directory is usable and every required tool
// resolved.
func (r Report) Ready() bool {
	for _, d := range r.Directories {
		if !d.Passed {
			return false
		}
	}
	for _, tool := range r.Tools {
		if !tool.Available && !tool.Optional {
			return false
		}
	}
	return true
}

// RunAll executes every check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) Report {
	if cfg == nil {
		return Report{}
	}
	return Report{
		Directories: []Result{
			CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
			CheckDirectoryAccess("Strip directory", cfg.Paths.StripDir),
			CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		},
		Tools: CheckSystemDeps(ctx, cfg),
	}
}
