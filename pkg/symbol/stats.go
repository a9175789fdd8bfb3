package symbol

import "sync"

// Stats tracks ingestion counters surfaced by --index and the TUI's
// index-status header segment (a supplement grounded on
// original_source/src/index_manager.rs, which tracks analogous counters
// that spec.md's distillation otherwise drops).
type Stats struct {
	mu            sync.Mutex
	FilesIndexed  int
	FilesSkipped  int
	FilesErrored  int
	SymbolsStored int
	LastError     string
}

// IncIndexed records a successful extraction of n symbols.
func (s *Stats) IncIndexed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FilesIndexed++
	s.SymbolsStored += n
}

// IncSkipped records a file skipped by extension/size/binary filtering.
func (s *Stats) IncSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FilesSkipped++
}

// IncErrored records a single-file IO error during ingestion (spec §7:
// logged, that file's index entry is cleared, ingestion continues).
func (s *Stats) IncErrored(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FilesErrored++
	if err != nil {
		s.LastError = err.Error()
	}
}

// Snapshot returns a copy safe to read without the lock.
func (s *Stats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		FilesIndexed:  s.FilesIndexed,
		FilesSkipped:  s.FilesSkipped,
		FilesErrored:  s.FilesErrored,
		SymbolsStored: s.SymbolsStored,
		LastError:     s.LastError,
	}
}
