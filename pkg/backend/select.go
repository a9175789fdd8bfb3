package backend

import "context"

// Availability records which descriptors are usable on this host, probed at
// startup (spec §3, §4.3).
type Availability struct {
	Ripgrep bool
	Ag      bool
}

// Probe checks rg/ag availability by running "--version" and interpreting
// exit success, honouring optional path overrides.
func Probe(ctx context.Context, rgPath, agPath string) Availability {
	rg := NewRipgrep(rgPath)
	ag := NewAg(agPath)
	return Availability{
		Ripgrep: rg.Probe(ctx),
		Ag:      ag.Probe(ctx),
	}
}

// Select returns the best available backend in preference order
// Ripgrep > Ag > Native (spec §3). Native is always available, so Select
// always returns a usable Backend.
func Select(avail Availability, rgPath, agPath string, nativeOpts NativeOptions) Backend {
	if avail.Ripgrep {
		return NewRipgrep(rgPath)
	}
	if avail.Ag {
		return NewAg(agPath)
	}
	return NewNative(nativeOpts)
}
