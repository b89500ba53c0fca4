package core

// DefaultRoutes returns the routes connecting the board's standard
// peripherals, each on its default source. The firmware applies them at
// boot after disabling every sink.
func DefaultRoutes() []Route {
	return []Route{
		{
			Name:   "i2c0",
			Pins:   []PinSelection{{Sink: PinScl0, Source: 1}, {Sink: PinSda0, Source: 1}},
			Blocks: []BlockSelection{{Sink: BlockI2c0Scl, Source: 1}, {Sink: BlockI2c0Sda, Source: 1}},
		},
		{
			Name:   "i2c1",
			Pins:   []PinSelection{{Sink: PinScl1, Source: 1}, {Sink: PinSda1, Source: 1}},
			Blocks: []BlockSelection{{Sink: BlockI2c1Scl, Source: 1}, {Sink: BlockI2c1Sda, Source: 1}},
		},
		{
			Name:   "microsd",
			Pins:   []PinSelection{{Sink: PinMicroSDClk, Source: 1}, {Sink: PinMicroSDCmd, Source: 1}, {Sink: PinMicroSDDat3, Source: 1}},
			Blocks: []BlockSelection{{Sink: BlockSpi0Cipo, Source: 1}},
		},
		{
			Name:   "rph_spi",
			Pins:   []PinSelection{{Sink: PinRphG8Cs0, Source: 1}, {Sink: PinRphG10Copi, Source: 1}, {Sink: PinRphG11Sclk, Source: 1}},
			Blocks: []BlockSelection{{Sink: BlockSpi1Cipo, Source: 1}},
		},
		{
			Name:   "uart0",
			Pins:   []PinSelection{{Sink: PinSer0Tx, Source: 1}},
			Blocks: []BlockSelection{{Sink: BlockUart0Rx, Source: 1}},
		},
		{
			Name:   "uart1",
			Pins:   []PinSelection{{Sink: PinSer1Tx, Source: 1}},
			Blocks: []BlockSelection{{Sink: BlockUart1Rx, Source: 1}},
		},
	}
}

// ApplyDefaultRoutes disables every sink, then connects the default routes.
// All routes are validated before the first write.
func (p *Pinmux) ApplyDefaultRoutes() error {
	routes := DefaultRoutes()
	for _, r := range routes {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	p.DisableAll()
	for _, r := range routes {
		if err := p.Apply(r); err != nil {
			return err
		}
	}
	return nil
}
