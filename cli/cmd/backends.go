package cmd

import (
	"context"

	"github.com/codesearchtools/seeker/cli/table"
	"github.com/codesearchtools/seeker/pkg/engine"
)

// runBackendsReport implements `--backends` (spec.md §6): report which
// search backends are usable on this host and which one Select would pick.
func runBackendsReport(ctx context.Context) error {
	reports := engine.ProbeBackends(ctx, rgPath, agPath)

	cols := []table.Column{
		{Header: "BACKEND", Width: 10, LeftAlign: true},
		{Header: "AVAILABLE", Width: 10, LeftAlign: true},
		{Header: "SELECTED", Width: 10, LeftAlign: true},
	}
	var rows []table.Row
	for _, r := range reports {
		avail := failStatus
		if r.Available {
			avail = okStatus
		}
		selected := ""
		if r.Selected {
			selected = okStatus
		}
		rows = append(rows, table.Row{r.Descriptor.String(), avail, selected})
	}

	t := table.NewTable(cols, rows)
	t.Render(stdout)
	return nil
}
