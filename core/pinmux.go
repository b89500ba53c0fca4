// Pinmux register model
// Every sink has one write-only byte register holding a one-hot source
// selection: bit 0 disables the sink, bit 1 routes the default source and
// bit k routes source k.
package core

// Register encodings
const (
	PinmuxDisabled uint8 = 1 << 0
	PinmuxDefault  uint8 = 1 << 1
)

// SinkID is implemented by the two sink identity tables.
type SinkID interface {
	~uint8
	SourcesNumber() uint8
	String() string
}

// Sink is a handle on exactly one sink register. It does not own the
// register; it stays valid for as long as the bank that issued it.
// Handles are not synchronized: concurrent writers to one sink must be
// serialized by the caller, otherwise the last write wins.
type Sink[T SinkID] struct {
	reg *register8
	id  T
}

// ID returns the identity of the sink behind the handle
func (s Sink[T]) ID() T {
	return s.id
}

// Select routes source to the sink.
// Returns false, leaving the register untouched, if the sink does not have
// that many sources. Select(0) and Select(1) write the same values as
// Disable and Default.
func (s Sink[T]) Select(source uint8) bool {
	if source >= s.id.SourcesNumber() {
		DebugPrintln("[PINMUX] select out of range: sink=" + s.id.String() +
			" source=" + itoa(int(source)) +
			" sources=" + itoa(int(s.id.SourcesNumber())))
		return false
	}
	s.reg.Set(1 << source)
	return true
}

// Disable disconnects the sink from every source
func (s Sink[T]) Disable() {
	s.reg.Set(PinmuxDisabled)
}

// Default routes the hardware default source to the sink
func (s Sink[T]) Default() {
	s.reg.Set(PinmuxDefault)
}

// Pinmux groups the pin and block banks of one pinmux block.
type Pinmux struct {
	Pins   *PinSinks
	Blocks *BlockSinks
}

// NewPinmux returns a pinmux backed by ordinary memory.
func NewPinmux() *Pinmux {
	return &Pinmux{
		Pins:   NewPinSinks(),
		Blocks: NewBlockSinks(),
	}
}

// Global singleton used by core code.
var pinmux *Pinmux

// SetPinmux is called by target-specific code once the banks are bound.
func SetPinmux(p *Pinmux) {
	pinmux = p
}

// MustPinmux returns the configured pinmux or panics if missing.
func MustPinmux() *Pinmux {
	if pinmux == nil {
		panic("pinmux not configured")
	}
	return pinmux
}
