package config

import "muxer/core"

// DefaultSonataConfig returns the board's default routes as a configuration,
// so they can be edited and saved like any board file.
func DefaultSonataConfig() *BoardConfig {
	cfg := &BoardConfig{
		Name:            "sonata",
		DisableUnlisted: true,
		Routes:          map[string]RouteConfig{},
	}
	for _, r := range core.DefaultRoutes() {
		rc := RouteConfig{
			Pins:   make(map[string]uint8, len(r.Pins)),
			Blocks: make(map[string]uint8, len(r.Blocks)),
		}
		for _, sel := range r.Pins {
			rc.Pins[sel.Sink.String()] = sel.Source
		}
		for _, sel := range r.Blocks {
			rc.Blocks[sel.Sink.String()] = sel.Source
		}
		cfg.Routes[r.Name] = rc
	}
	return cfg
}
