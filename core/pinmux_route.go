package core

import "errors"

var (
	ErrUnknownBank      = errors.New("unknown pinmux bank")
	ErrUnknownSink      = errors.New("unknown pinmux sink")
	ErrSourceOutOfRange = errors.New("pinmux source out of range")
)

// PinmuxError carries the route and sink that failed along with the cause.
type PinmuxError struct {
	Route  string
	Sink   string
	Source uint8
	Err    error
}

func (e *PinmuxError) Error() string {
	msg := e.Err.Error() + ": sink=" + e.Sink + " source=" + itoa(int(e.Source))
	if e.Route != "" {
		msg = "route " + e.Route + ": " + msg
	}
	return msg
}

func (e *PinmuxError) Unwrap() error { return e.Err }

// PinSelection routes Source to a pin sink
type PinSelection struct {
	Sink   PinSink
	Source uint8
}

// BlockSelection routes Source to a block sink
type BlockSelection struct {
	Sink   BlockSink
	Source uint8
}

// Route is the set of selections that connect one peripheral to the board,
// e.g. a UART's TX pin and its RX block input.
type Route struct {
	Name   string
	Pins   []PinSelection
	Blocks []BlockSelection
}

// Validate checks every selection of r without writing any register.
func (p *Pinmux) Validate(r Route) error {
	return r.Validate()
}

// Validate checks that every sink of the route exists and accepts its source.
func (r Route) Validate() error {
	for _, sel := range r.Pins {
		if err := checkSelection(r.Name, sel.Sink, sel.Source); err != nil {
			return err
		}
	}
	for _, sel := range r.Blocks {
		if err := checkSelection(r.Name, sel.Sink, sel.Source); err != nil {
			return err
		}
	}
	return nil
}

type tableSink interface {
	SinkID
	Valid() bool
}

func checkSelection[T tableSink](route string, id T, source uint8) error {
	if !id.Valid() {
		return &PinmuxError{Route: route, Sink: id.String(), Source: source, Err: ErrUnknownSink}
	}
	if source >= id.SourcesNumber() {
		return &PinmuxError{Route: route, Sink: id.String(), Source: source, Err: ErrSourceOutOfRange}
	}
	return nil
}

// Apply validates the whole route and then writes it, pins first.
// Nothing is written if any selection is invalid.
func (p *Pinmux) Apply(r Route) error {
	if err := p.Validate(r); err != nil {
		return err
	}
	for _, sel := range r.Pins {
		p.Pins.Get(sel.Sink).Select(sel.Source)
	}
	for _, sel := range r.Blocks {
		p.Blocks.Get(sel.Sink).Select(sel.Source)
	}
	DebugPrintln("[PINMUX] route applied: " + r.Name)
	return nil
}

// Release disables every valid sink named by the route.
func (p *Pinmux) Release(r Route) {
	for _, sel := range r.Pins {
		if sel.Sink.Valid() {
			p.Pins.Get(sel.Sink).Disable()
		}
	}
	for _, sel := range r.Blocks {
		if sel.Sink.Valid() {
			p.Blocks.Get(sel.Sink).Disable()
		}
	}
}

// DisableAll disconnects every sink of both banks.
func (p *Pinmux) DisableAll() {
	for i := 0; i < NumPinSinks; i++ {
		p.Pins.Get(PinSink(i)).Disable()
	}
	for i := 0; i < NumBlockSinks; i++ {
		p.Blocks.Get(BlockSink(i)).Disable()
	}
}
