package core

// noCopy lets `go vet` flag copies of a bank. A bank stands for one
// hardware register block and must only be used through a pointer.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// PinSinks is the register block of the output pin sinks, one byte per
// sink in PinSink order. The zero-size marker keeps the layout identical to
// the hardware block.
type PinSinks struct {
	_    noCopy
	regs [NumPinSinks]register8
}

// NewPinSinks allocates a pin bank in ordinary memory.
func NewPinSinks() *PinSinks {
	return new(PinSinks)
}

// Get returns the handle for one pin sink register.
func (b *PinSinks) Get(id PinSink) Sink[PinSink] {
	return Sink[PinSink]{reg: &b.regs[id], id: id}
}

// BlockSinks is the register block of the block input sinks, one byte per
// sink in BlockSink order.
type BlockSinks struct {
	_    noCopy
	regs [NumBlockSinks]register8
}

// NewBlockSinks allocates a block bank in ordinary memory.
func NewBlockSinks() *BlockSinks {
	return new(BlockSinks)
}

// Get returns the handle for one block sink register.
func (b *BlockSinks) Get(id BlockSink) Sink[BlockSink] {
	return Sink[BlockSink]{reg: &b.regs[id], id: id}
}
