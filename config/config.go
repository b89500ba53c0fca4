// Package config describes which routes a board connects through its
// pinmux. Configurations are JSON documents naming sinks by their table
// names, so they survive changes to the register order.
package config

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"muxer/core"
)

// BoardConfig is the pinmux configuration of one board
type BoardConfig struct {
	Name string `json:"name"`
	// DisableUnlisted disconnects every sink before the routes are applied,
	// so sinks no route names end up disabled.
	DisableUnlisted bool                   `json:"disable_unlisted"`
	Routes          map[string]RouteConfig `json:"routes"`
}

// RouteConfig maps sink names to the source each one selects
type RouteConfig struct {
	Pins   map[string]uint8 `json:"pins,omitempty"`
	Blocks map[string]uint8 `json:"blocks,omitempty"`
}

// LoadConfig parses a JSON board configuration
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var config BoardConfig

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse board config")
	}

	applyDefaults(&config)

	return &config, nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *BoardConfig) {
	if config.Name == "" {
		config.Name = "default"
	}
	if config.Routes == nil {
		config.Routes = map[string]RouteConfig{}
	}
}

// RouteNames returns the configured route names in sorted order
func (c *BoardConfig) RouteNames() []string {
	names := make([]string, 0, len(c.Routes))
	for name := range c.Routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Route resolves one named route through the sink tables
func (c *BoardConfig) Route(name string) (core.Route, error) {
	rc, ok := c.Routes[name]
	if !ok {
		return core.Route{}, errors.Errorf("route %q is not configured", name)
	}

	route := core.Route{Name: name}
	for _, sink := range sortedKeys(rc.Pins) {
		id, ok := core.ParsePinSink(sink)
		if !ok {
			return core.Route{}, errors.Wrapf(core.ErrUnknownSink, "route %s: pin %q", name, sink)
		}
		route.Pins = append(route.Pins, core.PinSelection{Sink: id, Source: rc.Pins[sink]})
	}
	for _, sink := range sortedKeys(rc.Blocks) {
		id, ok := core.ParseBlockSink(sink)
		if !ok {
			return core.Route{}, errors.Wrapf(core.ErrUnknownSink, "route %s: block %q", name, sink)
		}
		route.Blocks = append(route.Blocks, core.BlockSelection{Sink: id, Source: rc.Blocks[sink]})
	}

	if err := route.Validate(); err != nil {
		return core.Route{}, err
	}
	return route, nil
}

// ResolveRoutes resolves every configured route, sorted by name
func (c *BoardConfig) ResolveRoutes() ([]core.Route, error) {
	var routes []core.Route
	for _, name := range c.RouteNames() {
		route, err := c.Route(name)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// Apply writes the configuration to a pinmux. Every route is resolved
// before the first register write.
func (c *BoardConfig) Apply(mux *core.Pinmux) error {
	routes, err := c.ResolveRoutes()
	if err != nil {
		return err
	}

	if c.DisableUnlisted {
		mux.DisableAll()
	}
	for _, route := range routes {
		if err := mux.Apply(route); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]uint8) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
