package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Requirement names an external binary and how the engine uses it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether a requirement resolved on PATH and which build it is.
type Status struct {
	Requirement
	Path      string
	Version   string
	Available bool
	Detail    string
}

// Satisfied reports whether every non-optional requirement is available.
func Satisfied(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			return false
		}
	}
	return true
}

// Check resolves every requirement and probes the version of those found.
// Probes run concurrently; the result keeps the order of requirements. A
// failed version probe is recorded in Detail without marking the binary
// unavailable.
func Check(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	var group errgroup.Group
	group.SetLimit(4)
	for i, req := range requirements {
		group.Go(func() error {
			results[i] = check(ctx, req)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func check(ctx context.Context, req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Path = resolved
	status.Available = true

	version, err := ProbeVersion(ctx, resolved)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Version = version
	return status
}
