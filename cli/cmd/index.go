package cmd

import (
	"context"
	"fmt"

	"github.com/codesearchtools/seeker/cli/table"
	"github.com/codesearchtools/seeker/pkg/engine"
)

// runIndexReport implements `--index` (spec.md §6): build the symbol index
// once, print a summary, and exit, the way
// original_source/examples/search_comparison.rs's non-interactive mode and
// original_source/src/index_manager.rs's counters motivate (see
// SUPPLEMENTED FEATURES).
func runIndexReport(ctx context.Context) error {
	stats, filepaths := engine.IndexSummary(ctx, directory)

	fmt.Fprintf(stdout, "indexed %d files, %d symbols, %d skipped, %d errored\n",
		stats.FilesIndexed, stats.SymbolsStored, stats.FilesSkipped, stats.FilesErrored)
	if stats.LastError != "" {
		fmt.Fprintf(stdout, "last error: %s\n", stats.LastError)
	}

	cols := []table.Column{
		{Header: "FILE", Flexible: true, LeftAlign: true},
	}
	rows := make([]table.Row, 0, len(filepaths))
	for _, f := range filepaths {
		rows = append(rows, table.Row{f})
	}
	t := table.NewTable(cols, rows)
	t.Render(stdout)
	return nil
}
