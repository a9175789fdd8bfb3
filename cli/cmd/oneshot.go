package cmd

import (
	"context"
	"fmt"

	"github.com/codesearchtools/seeker/pkg/engine"
	"github.com/codesearchtools/seeker/pkg/result"
)

// runOneShot dispatches a single query through the engine and prints its
// results to stdout, the non-interactive mode
// examples/search_comparison.rs and examples/smart_search.rs demonstrate in
// original_source/ and SPEC_FULL carries forward as a first-class operation
// alongside the TUI.
func runOneShot(ctx context.Context, e *engine.Engine, query string) error {
	results, _, err := e.RunOnce(ctx, query)
	if err != nil {
		return err
	}

	if heading {
		printHeaded(results)
	} else {
		printFlat(results)
	}
	return nil
}

func printFlat(results []result.UIAppendResult) {
	for _, r := range results {
		if r.Line == 0 {
			fmt.Fprintf(stdout, "%s: %s\n", r.Filename, r.Content)
			continue
		}
		fmt.Fprintf(stdout, "%s:%d:%d: %s\n", r.Filename, r.Line, r.Column, r.Content)
	}
}

func printHeaded(results []result.UIAppendResult) {
	var lastFile string
	for _, r := range results {
		if r.Filename != lastFile {
			fmt.Fprintf(stdout, "%s\n", r.Filename)
			lastFile = r.Filename
		}
		if r.Line == 0 {
			fmt.Fprintf(stdout, "  %s\n", r.Content)
			continue
		}
		fmt.Fprintf(stdout, "  %d:%d: %s\n", r.Line, r.Column, r.Content)
	}
}
