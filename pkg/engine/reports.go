package engine

import (
	"context"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/backend"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/symbol"
	"github.com/codesearchtools/seeker/pkg/watch"
)

// BackendReport is one row of --backends' availability report.
type BackendReport struct {
	Descriptor backend.Descriptor
	Available  bool
	Selected   bool
}

// ProbeBackends reports every backend descriptor's availability and which
// one Select would pick, for the `--backends` flag (spec.md §6).
func ProbeBackends(ctx context.Context, rgPath, agPath string) []BackendReport {
	avail := backend.Probe(ctx, rgPath, agPath)
	selected := backend.Select(avail, rgPath, agPath, backend.DefaultNativeOptions()).Descriptor()
	return []BackendReport{
		{Descriptor: backend.Ripgrep, Available: avail.Ripgrep, Selected: selected == backend.Ripgrep},
		{Descriptor: backend.Ag, Available: avail.Ag, Selected: selected == backend.Ag},
		{Descriptor: backend.Native, Available: true, Selected: selected == backend.Native},
	}
}

// IndexSummary builds the symbol index for root once and returns its
// ingestion stats plus the sorted filepaths it covers, for the `--index`
// flag (spec.md §6). It runs entirely outside the actor graph: a one-shot
// scan has no need for the long-lived watch loop or the search actors.
func IndexSummary(ctx context.Context, root string) (symbol.Stats, []string) {
	cache := symbol.NewCache()
	stats := &symbol.Stats{}
	ix := symbol.NewIndex()

	w := watch.New(root, cache, stats, actor.SenderFunc(func(env message.Envelope) {
		ix.OnMessage(ctx, env, nil)
	}))
	w.ScanOnce(ctx)

	return stats.Snapshot(), symbol.SortedFilepaths(ix.Snapshot())
}
