// Package mcutest provides an in-process firmware for testing host code.
package mcutest

import (
	"io"
	"sync"

	"muxer/core"
	"muxer/protocol"
)

// Firmware runs the firmware command layer behind an io.ReadWriteCloser,
// the way the board sits behind its serial port. Every Write is parsed
// synchronously; ACKs and responses are queued for Read.
//
// The command layer is process global, so only one Firmware may be in
// use at a time.
type Firmware struct {
	Pinmux *core.Pinmux

	mu        sync.Mutex
	transport *protocol.Transport
	out       *protocol.ScratchOutput
	writes    int

	toHost    chan []byte
	pending   []byte
	closed    chan struct{}
	closeOnce sync.Once
}

var _ io.ReadWriteCloser = (*Firmware)(nil)

// NewFirmware registers the firmware commands, resets the firmware state
// and binds a fresh in-memory pinmux.
func NewFirmware() *Firmware {
	core.InitCoreCommands()
	core.InitPinmuxCommands()
	core.GetGlobalDictionary().BuildDictionary()

	core.ResetFirmwareState()
	mux := core.NewPinmux()
	core.SetPinmux(mux)

	f := &Firmware{
		Pinmux: mux,
		out:    protocol.NewScratchOutput(),
		toHost: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
	f.transport = protocol.NewTransport(f.out, core.DispatchCommand)
	core.SetGlobalTransport(f.transport)
	return f
}

// Writes returns how many writes the host has made
func (f *Firmware) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *Firmware) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++
	f.out.Reset()
	f.transport.Receive(protocol.NewSliceInputBuffer(data))
	if f.out.CurPosition() > 0 {
		f.toHost <- append([]byte(nil), f.out.Result()...)
	}
	return len(data), nil
}

// Read must only be called from one goroutine, as the host transport does
func (f *Firmware) Read(buf []byte) (int, error) {
	if len(f.pending) == 0 {
		select {
		case chunk := <-f.toHost:
			f.pending = chunk
		case <-f.closed:
			return 0, io.EOF
		}
	}
	n := copy(buf, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

// Close ends the session and detaches the firmware from the command layer
func (f *Firmware) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		core.SetGlobalTransport(nil)
	})
	return nil
}
