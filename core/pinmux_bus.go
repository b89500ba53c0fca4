// Routed buses
// A bus block only reaches the board once the pinmux connects its signals.
// These wrappers apply a route on first use so drivers written against
// tinygo.org/x/drivers need no pinmux knowledge.
package core

import (
	"sync"

	"tinygo.org/x/drivers"
)

// routeGuard applies a route once and remembers the outcome
type routeGuard struct {
	mu      sync.Mutex
	mux     *Pinmux
	route   Route
	applied bool
}

func (g *routeGuard) ensure() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.applied {
		return nil
	}
	if err := g.mux.Apply(g.route); err != nil {
		return err
	}
	g.applied = true
	return nil
}

func (g *routeGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.applied {
		g.mux.Release(g.route)
		g.applied = false
	}
}

// RoutedI2C is an I2C bus whose signals are routed through the pinmux
// before the first transaction.
type RoutedI2C struct {
	bus   drivers.I2C
	guard routeGuard
}

var _ drivers.I2C = (*RoutedI2C)(nil)

// NewRoutedI2C wraps bus with the route connecting it to the board.
func NewRoutedI2C(mux *Pinmux, bus drivers.I2C, route Route) *RoutedI2C {
	return &RoutedI2C{
		bus:   bus,
		guard: routeGuard{mux: mux, route: route},
	}
}

// Tx routes the bus if needed, then performs the transaction.
func (b *RoutedI2C) Tx(addr uint16, w, r []byte) error {
	if err := b.guard.ensure(); err != nil {
		return err
	}
	return b.bus.Tx(addr, w, r)
}

// Release disconnects the bus signals; the next Tx routes them again.
func (b *RoutedI2C) Release() {
	b.guard.release()
}

// RoutedSPI is an SPI bus whose signals are routed through the pinmux
// before the first transfer.
type RoutedSPI struct {
	bus   drivers.SPI
	guard routeGuard
}

var _ drivers.SPI = (*RoutedSPI)(nil)

// NewRoutedSPI wraps bus with the route connecting it to the board.
func NewRoutedSPI(mux *Pinmux, bus drivers.SPI, route Route) *RoutedSPI {
	return &RoutedSPI{
		bus:   bus,
		guard: routeGuard{mux: mux, route: route},
	}
}

// Tx routes the bus if needed, then performs the transaction.
func (b *RoutedSPI) Tx(w, r []byte) error {
	if err := b.guard.ensure(); err != nil {
		return err
	}
	return b.bus.Tx(w, r)
}

// Transfer routes the bus if needed, then exchanges a single byte.
func (b *RoutedSPI) Transfer(w byte) (byte, error) {
	if err := b.guard.ensure(); err != nil {
		return 0, err
	}
	return b.bus.Transfer(w)
}

// Release disconnects the bus signals; the next transfer routes them again.
func (b *RoutedSPI) Release() {
	b.guard.release()
}
