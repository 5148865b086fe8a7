package webhook

import "github.com/go-go-golems/cricket/pkg/webhook/wire"

// SurfaceCapabilities is a read-only view over the capability set of the
// surface the user is currently on.
type SurfaceCapabilities struct {
	capabilities map[string]struct{}
}

func newSurfaceCapabilities(s *wire.Surface) SurfaceCapabilities {
	caps := map[string]struct{}{}
	if s != nil {
		for _, c := range s.Capabilities {
			caps[c.Name] = struct{}{}
		}
	}
	return SurfaceCapabilities{capabilities: caps}
}

// Has reports whether the current surface advertises the capability.
func (s SurfaceCapabilities) Has(capability string) bool {
	_, ok := s.capabilities[capability]
	return ok
}

// AvailableSurfaces is a read-only view over the alternate surfaces available
// to the user; each alternate surface is a full capability set of its own.
type AvailableSurfaces struct {
	surfaces []SurfaceCapabilities
}

func newAvailableSurfaces(surfaces []wire.Surface) AvailableSurfaces {
	out := AvailableSurfaces{}
	for i := range surfaces {
		out.surfaces = append(out.surfaces, newSurfaceCapabilities(&surfaces[i]))
	}
	return out
}

// Has reports whether at least one alternate surface advertises the
// capability.
func (a AvailableSurfaces) Has(capability string) bool {
	for _, s := range a.surfaces {
		if s.Has(capability) {
			return true
		}
	}
	return false
}
